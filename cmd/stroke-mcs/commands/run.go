package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"stroke-mcs/internal/random"
	"stroke-mcs/internal/report"
	"stroke-mcs/internal/scenario"
	"stroke-mcs/internal/simulation"
)

var (
	randomScenario bool
	scenarioSeed   uint64
)

var runCmd = &cobra.Command{
	Use:   "run [scenario.json]",
	Short: "Evaluate a scenario once on median door-to-treatment times",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := loadScenario(args)
		if err != nil {
			return err
		}
		engine, err := newEngine(sc.Profile)
		if err != nil {
			return err
		}
		res, err := engine.RunOnce(simulation.Options{})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		term := report.NewTerminal(out, sc.Profile.Centers)
		fmt.Fprintln(out, term.Profile(sc.Profile))
		fmt.Fprintln(out, term.Single(res))
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{runCmd, simulateCmd} {
		c.Flags().BoolVar(&randomScenario, "random", false, "evaluate a random nontrivial scenario instead of a file")
		c.Flags().Uint64Var(&scenarioSeed, "scenario-seed", 0, "seed for --random (random when 0)")
	}
}

func loadScenario(args []string) (*scenario.Scenario, error) {
	switch {
	case len(args) == 1 && randomScenario:
		return nil, errors.New("pass either a scenario file or --random, not both")
	case len(args) == 1:
		return scenario.Load(args[0])
	case randomScenario:
		rng := random.NewTimeSeeded()
		if scenarioSeed != 0 {
			rng = random.New(scenarioSeed)
		}
		f, err := scenario.RandomNontrivial(rng, scenario.DefaultMaxAttempts)
		if err != nil {
			return nil, err
		}
		return f.Build()
	default:
		return nil, errors.New("a scenario file or --random is required")
	}
}
