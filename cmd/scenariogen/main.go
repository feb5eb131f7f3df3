package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"stroke-mcs/cmd/scenariogen/fixtures"
	"stroke-mcs/internal/random"
	"stroke-mcs/internal/scenario"
)

func main() {
	kind := flag.String("kind", "scenarios", "What to generate: scenarios, single, multi")
	outDir := flag.String("out", "./.cache", "Output directory")
	count := flag.Int("count", 20, "Number of scenarios or lines to generate")
	seed := flag.Uint64("seed", 1, "Generator seed")
	nontrivial := flag.Bool("nontrivial", true, "Skip patients beyond every treatment window")
	runs := flag.Int("runs", 1000, "Monte Carlo runs per line (multi only)")
	flag.Parse()

	cfg := fixtures.GeneratorConfig{
		Kind:       *kind,
		Count:      *count,
		Seed:       *seed,
		Nontrivial: *nontrivial,
		Runs:       *runs,
	}

	fmt.Printf("Generating %d %s (seed %d) to %s...\n", cfg.Count, cfg.Kind, cfg.Seed, *outDir)

	if cfg.Kind == "scenarios" {
		files, err := scenario.RandomSet(random.New(cfg.Seed), cfg.Count, cfg.Nontrivial)
		if err != nil {
			fmt.Printf("Failed to generate scenarios: %v\n", err)
			os.Exit(1)
		}
		if _, err := fixtures.SaveScenarios(*outDir, files); err != nil {
			fmt.Printf("Failed to save scenarios: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Done.")
		return
	}

	lines, err := fixtures.Lines(context.Background(), cfg)
	if err != nil {
		fmt.Printf("Failed to generate lines: %v\n", err)
		os.Exit(1)
	}
	path := filepath.Join(*outDir, fmt.Sprintf("regression_%s.csv", cfg.Kind))
	header := fmt.Sprintf("generated by scenariogen -kind %s -seed %d", cfg.Kind, cfg.Seed)
	if err := fixtures.SaveLines(path, header, lines); err != nil {
		fmt.Printf("Failed to save lines: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Done.")
}
