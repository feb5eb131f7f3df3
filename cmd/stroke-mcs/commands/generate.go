package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"stroke-mcs/internal/random"
	"stroke-mcs/internal/scenario"
)

var (
	genCount      int
	genSeed       uint64
	genNontrivial bool
	genOutDir     string
	genSchema     bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write random scenarios, or the scenario JSON Schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if genSchema {
			schema, err := scenario.Schema()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, string(schema))
			return err
		}

		if genCount < 1 {
			return fmt.Errorf("--count must be positive, got %d", genCount)
		}
		rng := random.NewTimeSeeded()
		if genSeed != 0 {
			rng = random.New(genSeed)
		}
		files, err := scenario.RandomSet(rng, genCount, genNontrivial)
		if err != nil {
			return err
		}

		if genOutDir == "" {
			var v any = files
			if len(files) == 1 {
				v = files[0]
			}
			data, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, string(data))
			return err
		}

		if err := os.MkdirAll(genOutDir, 0755); err != nil {
			return err
		}
		for i, f := range files {
			data, err := json.MarshalIndent(f, "", "  ")
			if err != nil {
				return err
			}
			path := filepath.Join(genOutDir, fmt.Sprintf("scenario-%03d.json", i+1))
			if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
				return err
			}
		}
		log.Info().Int("count", len(files)).Str("dir", genOutDir).Msg("Wrote scenarios")
		return nil
	},
}

func init() {
	f := generateCmd.Flags()
	f.IntVar(&genCount, "count", 1, "number of scenarios")
	f.Uint64Var(&genSeed, "seed", 0, "generator seed (random when 0)")
	f.BoolVar(&genNontrivial, "nontrivial", false, "only keep patients within reach of a treatment window")
	f.StringVar(&genOutDir, "out", "", "write one file per scenario into this directory instead of stdout")
	f.BoolVar(&genSchema, "schema", false, "print the scenario JSON Schema and exit")
}
