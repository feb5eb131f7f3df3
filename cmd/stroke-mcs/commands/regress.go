package commands

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"stroke-mcs/internal/scenario"
	"stroke-mcs/internal/simulation"
)

var regressCmd = &cobra.Command{
	Use:   "regress <lines.csv>",
	Short: "Re-run single-run regression lines and compare them with their recorded results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		cases, err := scenario.ReadSingleRunCases(f)
		if err != nil {
			return err
		}

		failed := 0
		for i, c := range cases {
			if err := checkCase(c); err != nil {
				failed++
				log.Error().Err(err).Int("case", i+1).Msg("Regression mismatch")
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%d/%d cases match\n", len(cases)-failed, len(cases))
		if failed > 0 {
			return fmt.Errorf("%d regression cases failed", failed)
		}
		return nil
	},
}

func checkCase(c scenario.SingleRunCase) error {
	p, err := c.Inputs.Profile()
	if err != nil {
		return err
	}
	engine, err := newEngine(p)
	if err != nil {
		return err
	}
	got, err := engine.RunOnce(simulation.Options{})
	if err != nil {
		return err
	}
	return c.Check(got)
}
