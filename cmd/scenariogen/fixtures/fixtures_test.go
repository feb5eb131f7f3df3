package fixtures

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stroke-mcs/internal/scenario"
	"stroke-mcs/internal/simulation"
)

func TestLines_SingleReplay(t *testing.T) {
	cfg := GeneratorConfig{Kind: "single", Count: 5, Seed: 11, Nontrivial: true}
	lines, err := Lines(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Lines failed: %v", err)
	}
	if len(lines) != cfg.Count {
		t.Fatalf("got %d lines, want %d", len(lines), cfg.Count)
	}

	path := filepath.Join(t.TempDir(), "single.csv")
	if err := SaveLines(path, "test", lines); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	cases, err := scenario.ReadSingleRunCases(f)
	if err != nil {
		t.Fatalf("generated lines do not parse: %v", err)
	}
	for i, c := range cases {
		p, err := c.Inputs.Profile()
		if err != nil {
			t.Fatal(err)
		}
		engine, err := simulation.NewEngine(p, simulation.DefaultConfig())
		if err != nil {
			t.Fatal(err)
		}
		got, err := engine.RunOnce(simulation.Options{})
		if err != nil {
			t.Fatal(err)
		}
		if err := c.Check(got); err != nil {
			t.Errorf("case %d does not replay: %v", i+1, err)
		}
	}
}

func TestLines_MultiParses(t *testing.T) {
	lines, err := Lines(context.Background(), GeneratorConfig{Kind: "multi", Count: 2, Seed: 3, Nontrivial: true, Runs: 50})
	if err != nil {
		t.Fatalf("Lines failed: %v", err)
	}
	cases, err := scenario.ReadMultiRunCases(strings.NewReader(strings.Join(lines, "\n")))
	if err != nil {
		t.Fatalf("generated lines do not parse: %v", err)
	}
	if len(cases) != 2 {
		t.Errorf("got %d cases, want 2", len(cases))
	}
}

func TestLines_UnknownKind(t *testing.T) {
	if _, err := Lines(context.Background(), GeneratorConfig{Kind: "bogus", Count: 1, Seed: 1}); err == nil {
		t.Error("expected an error for an unknown kind")
	}
}

func TestSaveScenarios(t *testing.T) {
	dir := t.TempDir()
	race := 6.0
	files := []scenario.File{{
		Patient: scenario.PatientSpec{Sex: "male", Age: 70, RACE: &race, OnsetMinutes: 30},
		Centers: []scenario.CenterSpec{
			{Key: "c", Name: "Comprehensive", Type: "comprehensive"},
			{Key: "p", Name: "Primary", Type: "primary"},
		},
		TravelMinutes: map[string]float64{"c": 50, "p": 20},
	}}
	paths, err := SaveScenarios(dir, files)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 || filepath.Base(paths[0]) != "scenario-001.json" {
		t.Fatalf("paths = %v", paths)
	}
	if _, err := scenario.Load(paths[0]); err != nil {
		t.Errorf("saved scenario does not load: %v", err)
	}
}
