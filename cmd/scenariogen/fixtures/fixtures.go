// Package fixtures produces scenario files and regression lines for exercising the model.
package fixtures

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"stroke-mcs/internal/random"
	"stroke-mcs/internal/scenario"
	"stroke-mcs/internal/simulation"
)

type GeneratorConfig struct {
	Kind       string // "scenarios", "single" or "multi"
	Count      int
	Seed       uint64
	Nontrivial bool
	Runs       int // Monte Carlo runs per multi line
}

// Lines draws cfg.Count single-primary patients and records the engine's answer for each in
// regression line form.
func Lines(ctx context.Context, cfg GeneratorConfig) ([]string, error) {
	rng := random.New(cfg.Seed)
	engineCfg := simulation.DefaultConfig()

	var lines []string
	for len(lines) < cfg.Count {
		// 1. Draw
		in := scenario.RandomLine(rng)
		p, err := in.Profile()
		if err != nil {
			return nil, err
		}
		engine, err := simulation.NewEngine(p, engineCfg)
		if err != nil {
			return nil, err
		}

		// 2. Evaluate
		single, err := engine.RunOnce(simulation.Options{})
		if err != nil {
			return nil, err
		}
		if cfg.Nontrivial && single.Trivial {
			continue
		}

		// 3. Format
		switch cfg.Kind {
		case "single":
			lines = append(lines, scenario.FormatSingleRunLine(in, single))
		case "multi":
			engine.SetSeed(random.NewLocked(rng).Uint64())
			multi, err := engine.RunMonteCarlo(ctx, cfg.Runs, simulation.Options{TimeUncertainty: true, LVOUncertainty: true}, nil)
			if err != nil {
				return nil, err
			}
			lines = append(lines, scenario.FormatMultiRunLine(in, multi))
		default:
			return nil, fmt.Errorf("unknown line kind %q", cfg.Kind)
		}
	}
	return lines, nil
}

// SaveLines writes lines to path, one per row, behind a header comment.
func SaveLines(path, header string, lines []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "# %s\n", header)
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
	return w.Flush()
}

// SaveScenarios writes one indented JSON file per scenario into outDir and returns their paths.
func SaveScenarios(outDir string, files []scenario.File) ([]string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(files))
	for i, sf := range files {
		data, err := json.MarshalIndent(sf, "", "  ")
		if err != nil {
			return nil, err
		}
		path := filepath.Join(outDir, fmt.Sprintf("scenario-%03d.json", i+1))
		if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
