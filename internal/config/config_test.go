package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("DATA_PATH", dir)
	for _, key := range []string{"STROKE_ICER_THRESHOLD", "STROKE_COST_YEAR", "STROKE_SIMULATIONS", "STROKE_WORKERS", "STROKE_SEED", "STROKE_TIME_UNCERTAINTY", "STROKE_LVO_UNCERTAINTY"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	m := cfg.Model
	if m.ThresholdICER != 100000 || m.CostYear != 2016 || m.Simulations != 1000 || m.Seed != 0 {
		t.Errorf("unexpected defaults: %+v", m)
	}
	if m.Workers <= 0 {
		t.Errorf("Workers = %d", m.Workers)
	}
	if !m.TimeUncertainty || !m.LVOUncertainty {
		t.Error("uncertainty should default to on")
	}
	for _, sub := range []string{cfg.LogDir, cfg.ReportsDir} {
		if _, err := os.Stat(sub); err != nil {
			t.Errorf("directory %s not created: %v", sub, err)
		}
	}
	if cfg.ReportsDir != filepath.Join(dir, "reports") {
		t.Errorf("ReportsDir = %s", cfg.ReportsDir)
	}
}

func TestLoad_Overrides(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("DATA_PATH", dir)
	t.Setenv("STROKE_ICER_THRESHOLD", "50000")
	t.Setenv("STROKE_COST_YEAR", "2010")
	t.Setenv("STROKE_SIMULATIONS", "250")
	t.Setenv("STROKE_WORKERS", "3")
	t.Setenv("STROKE_SEED", "42")
	t.Setenv("STROKE_LVO_UNCERTAINTY", "false")
	t.Setenv("ENABLE_MERMAID_CHARTS", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := ModelConfig{
		ThresholdICER:   50000,
		CostYear:        2010,
		Simulations:     250,
		Workers:         3,
		Seed:            42,
		TimeUncertainty: true,
		LVOUncertainty:  false,
	}
	if cfg.Model != want {
		t.Errorf("Model = %+v, want %+v", cfg.Model, want)
	}
	if !cfg.EnableMermaidCharts {
		t.Error("EnableMermaidCharts not read")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"STROKE_ICER_THRESHOLD", "-1"},
		{"STROKE_ICER_THRESHOLD", "lots"},
		{"STROKE_COST_YEAR", "1800"},
		{"STROKE_SIMULATIONS", "0"},
		{"STROKE_WORKERS", "many"},
		{"STROKE_SEED", "-5"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			dir := t.TempDir()
			t.Chdir(dir)
			t.Setenv("DATA_PATH", dir)
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load accepted %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestDotenvFromWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	content := "STROKE_SIMULATIONS=77\nSTROKE_SEED='9'\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	env, err := godotenv.Read(filepath.Join(dir, ".env"))
	if err != nil {
		t.Fatalf("Error reading env: %v", err)
	}
	if env["STROKE_SEED"] != "9" {
		t.Errorf("quoted value read as %q", env["STROKE_SEED"])
	}

	t.Chdir(dir)
	t.Setenv("DATA_PATH", dir)
	t.Setenv("STROKE_SIMULATIONS", "")
	os.Unsetenv("STROKE_SIMULATIONS")
	t.Setenv("STROKE_SEED", "")
	os.Unsetenv("STROKE_SEED")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Model.Simulations != 77 || cfg.Model.Seed != 9 {
		t.Errorf("Model = %+v, want values from .env", cfg.Model)
	}
}
