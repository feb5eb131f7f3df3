package mcp

import (
	"encoding/json"

	"stroke-mcs/internal/outcome"
	"stroke-mcs/internal/random"
	"stroke-mcs/internal/scenario"
)

func (s *Server) handleDescribeScenario(args DescribeArgs) (interface{}, error) {
	sc, err := args.Scenario.Build()
	if err != nil {
		return nil, err
	}
	p := sc.Profile
	names := newNamer(sc)

	model, err := outcome.NewModel(p, outcome.Uncertainty{}, nil)
	if err != nil {
		return nil, err
	}
	necessary, err := model.IsNecessary()
	if err != nil {
		return nil, err
	}

	var strategies []map[string]interface{}
	for _, st := range p.Strategies() {
		strategies = append(strategies, names.view(st))
	}

	res := map[string]interface{}{
		"race":                    p.RACE,
		"nihss":                   p.NIHSS(),
		"p_lvo":                   model.PLVO(),
		"nearest_primary":         names.key(p.NearestPrimary().ID),
		"nearest_comprehensive":   names.key(p.NearestComprehensive().ID),
		"candidate_strategies":    strategies,
		"within_treatment_window": necessary,
	}
	if !necessary {
		res["severity_cutoff"] = names.view(model.CutoffStrategy())
		res["_guidance"] = []string{
			"No route reaches a treatment window on median delays. evaluate_routing will return the severity cutoff instead of a modelled optimum.",
		}
	}
	return res, nil
}

func (s *Server) handleGenerateScenario(args GenerateArgs) (interface{}, error) {
	rng := random.NewTimeSeeded()
	if args.Seed != 0 {
		rng = random.New(args.Seed)
	}

	var f scenario.File
	if args.Nontrivial {
		var err error
		if f, err = scenario.RandomNontrivial(rng, scenario.DefaultMaxAttempts); err != nil {
			return nil, err
		}
	} else {
		f = scenario.Random(rng)
	}

	return map[string]interface{}{
		"scenario": f,
		"_guidance": []string{
			"Pass 'scenario' unchanged to evaluate_routing or simulate_routing, or edit centers and travel_minutes first.",
			"Each primary ships to its own comprehensive target that is not reachable directly.",
		},
	}, nil
}

func (s *Server) handleGetScenarioSchema() (interface{}, error) {
	schema, err := scenario.Schema()
	if err != nil {
		return nil, err
	}
	return json.RawMessage(schema), nil
}
