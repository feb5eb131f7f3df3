package mcp

import (
	"context"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"stroke-mcs/internal/scenario"
	"stroke-mcs/internal/simulation"
	"stroke-mcs/internal/visuals"
)

// MaxSimulations caps a single simulate_routing call.
const MaxSimulations = 100_000

func (s *Server) handleEvaluateRouting(args EvaluateArgs) (interface{}, error) {
	// 1. Build
	sc, err := args.Scenario.Build()
	if err != nil {
		return nil, err
	}
	engine, err := s.newEngine(sc, args.ThresholdICER, args.CostYear)
	if err != nil {
		return nil, err
	}

	// 2. Run on median delays
	res, err := engine.RunOnce(simulation.Options{})
	if err != nil {
		return nil, err
	}

	// 3. Shape
	names := newNamer(sc)
	cfg := engine.Config()
	out := map[string]interface{}{
		"optimal":        names.view(res.Optimal),
		"trivial":        res.Trivial,
		"threshold_icer": cfg.ThresholdICER,
		"cost_year":      cfg.CostYear,
	}
	if res.Trivial {
		out["_guidance"] = []string{
			"The patient is beyond every treatment window even on median delays. The choice follows the RACE severity cutoff (comprehensive at RACE >= 5), not the cost-effectiveness model.",
		}
		return out, nil
	}

	if res.MaxBenefit != nil {
		out["max_benefit"] = names.view(*res.MaxBenefit)
	}
	var rows []map[string]interface{}
	for _, st := range res.Strategies() {
		row := names.view(st)
		row["cost"] = res.Costs[st]
		row["qalys"] = res.QALYs[st]
		row["is_optimal"] = st == res.Optimal
		rows = append(rows, row)
	}
	out["strategies"] = rows
	out["_guidance"] = []string{
		"Costs are lifetime societal costs in USD of the cost year; QALYs are discounted lifetime quality-adjusted life years.",
		"The optimal strategy is the most effective one whose incremental cost-effectiveness ratio stays below the threshold. It can differ from max_benefit.",
		"Strategies missing from the list were infeasible (drip and ship past the thrombectomy window).",
	}

	if s.cfg.EnableMermaidCharts {
		out["visual_qalys"] = visuals.Markdown(visuals.GenerateQALYChart(res, sc.Profile.Centers))
		out["visual_costs"] = visuals.Markdown(visuals.GenerateCostChart(res, sc.Profile.Centers))
	}
	return out, nil
}

func (s *Server) handleSimulateRouting(ctx context.Context, req *sdk.CallToolRequest, args SimulateArgs) (interface{}, error) {
	// 1. Resolve defaults
	n := args.Simulations
	if n == 0 {
		n = s.cfg.Model.Simulations
	}
	if n < 0 || n > MaxSimulations {
		return nil, fmt.Errorf("simulations must be between 1 and %d, got %d", MaxSimulations, n)
	}
	opts := simulation.Options{
		TimeUncertainty: boolOr(args.TimeUncertainty, s.cfg.Model.TimeUncertainty),
		LVOUncertainty:  boolOr(args.LVOUncertainty, s.cfg.Model.LVOUncertainty),
	}

	sc, err := args.Scenario.Build()
	if err != nil {
		return nil, err
	}
	engine, err := s.newEngine(sc, args.ThresholdICER, args.CostYear)
	if err != nil {
		return nil, err
	}
	seed := args.Seed
	if seed == 0 {
		seed = s.cfg.Model.Seed
	}
	if seed != 0 {
		engine.SetSeed(seed)
	}

	// 2. Run, reporting progress when the client asked for it
	res, err := engine.RunMonteCarlo(ctx, n, opts, s.progressReporter(ctx, req, n))
	if err != nil {
		return nil, err
	}

	// 3. Shape
	names := newNamer(sc)
	out := map[string]interface{}{
		"batch_id":       res.BatchID,
		"runs":           res.Runs,
		"trivial_runs":   res.Trivial,
		"failed_runs":    res.Failed,
		"optimal":        names.view(res.Optimal),
		"options":        opts,
		"threshold_icer": engine.Config().ThresholdICER,
	}
	if res.MaxBenefit != nil {
		out["max_benefit"] = names.view(*res.MaxBenefit)
	}

	var rows []map[string]interface{}
	for _, st := range res.OrderedStrategies() {
		row := names.view(st)
		row["optimal_share"] = res.Percentages[st]
		row["max_benefit_share"] = res.MaxBenefitPercentages[st]
		if spread, ok := res.Spreads[st]; ok {
			row["qalys"] = spread.QALY
			row["costs"] = spread.Cost
		}
		rows = append(rows, row)
	}
	out["strategies"] = rows

	byCenter := make(map[string]float64)
	for id, share := range res.PercentagesByCenter() {
		byCenter[names.key(id)] = share
	}
	out["optimal_share_by_center"] = byCenter

	guidance := []string{
		"optimal_share is the fraction of runs in which the strategy was cost-effective at the threshold. It describes decision stability, not patient outcome probability.",
		"A drip-and-ship pick counts toward its primary center in optimal_share_by_center.",
	}
	if res.Trivial > 0 {
		guidance = append(guidance, fmt.Sprintf("%d runs were beyond every treatment window and fell back to the RACE severity cutoff.", res.Trivial))
	}
	if res.Failed > 0 {
		guidance = append(guidance, fmt.Sprintf("WARNING: %d runs failed and are excluded from every share.", res.Failed))
	}
	out["_guidance"] = guidance

	if s.cfg.EnableMermaidCharts {
		out["visual_selection_pie"] = visuals.Markdown(visuals.GenerateSelectionPie(res, sc.Profile.Centers))
		out["visual_selection_bars"] = visuals.Markdown(visuals.GenerateSelectionBars(res, sc.Profile.Centers))
		out["visual_qaly_spread"] = visuals.Markdown(visuals.GenerateSpreadChart(res, sc.Profile.Centers))
	}
	return out, nil
}

// progressReporter sends roughly twenty progress notifications per batch. It returns nil when the
// request carries no progress token.
func (s *Server) progressReporter(ctx context.Context, req *sdk.CallToolRequest, total int) func(simulation.Progress) {
	if req == nil || req.Session == nil || req.Params == nil {
		return nil
	}
	token := req.Params.GetProgressToken()
	if token == nil {
		return nil
	}
	step := max(1, total/20)
	return func(p simulation.Progress) {
		if p.Completed%step != 0 && p.Completed != total {
			return
		}
		err := req.Session.NotifyProgress(ctx, &sdk.ProgressNotificationParams{
			ProgressToken: token,
			Message:       fmt.Sprintf("%d runs, %d beyond treatment windows, %d failed", p.Completed, p.Trivial, p.Failed),
			Progress:      float64(p.Completed),
			Total:         float64(total),
		})
		if err != nil {
			log.Debug().Err(err).Msg("Failed to send progress notification")
		}
	}
}

func (s *Server) newEngine(sc *scenario.Scenario, threshold float64, costYear int) (*simulation.Engine, error) {
	cfg := simulation.Config{
		ThresholdICER: s.cfg.Model.ThresholdICER,
		CostYear:      s.cfg.Model.CostYear,
		Workers:       s.cfg.Model.Workers,
	}
	if threshold < 0 {
		return nil, fmt.Errorf("threshold_icer must be positive, got %v", threshold)
	}
	if threshold > 0 {
		cfg.ThresholdICER = threshold
	}
	if costYear != 0 {
		cfg.CostYear = costYear
	}

	engine, err := simulation.NewEngine(sc.Profile, cfg)
	if err != nil {
		return nil, err
	}
	engine.SetMetrics(s.metrics)
	return engine, nil
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
