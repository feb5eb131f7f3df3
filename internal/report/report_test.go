package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"stroke-mcs/internal/geography"
	"stroke-mcs/internal/patient"
	"stroke-mcs/internal/simulation"
	"stroke-mcs/internal/stats"
)

func baseCase(t *testing.T) (*patient.Profile, patient.Strategy, patient.Strategy, patient.Strategy) {
	t.Helper()
	reg := geography.NewRegistry()
	comp := reg.AddComprehensive("Massachusetts General Hospital", geography.WithShortName("MGH"), geography.WithTime(45))
	prim := reg.AddPrimary("Community Stroke Center", geography.WithShortName("Community"), geography.WithTime(30))
	if err := reg.SetTransfer(prim, comp, 60); err != nil {
		t.Fatal(err)
	}
	p, err := patient.NewProfile(patient.Female, 65, 7, 45, reg)
	if err != nil {
		t.Fatal(err)
	}
	return p,
		patient.Strategy{Kind: patient.KindComprehensive, Center: comp},
		patient.Strategy{Kind: patient.KindPrimary, Center: prim},
		patient.Strategy{Kind: patient.KindDripAndShip, Center: prim}
}

func TestTerminal_Single(t *testing.T) {
	p, comp, prim, drip := baseCase(t)
	best := comp
	res := simulation.SingleRunResult{
		Optimal:    comp,
		MaxBenefit: &best,
		Costs:      map[patient.Strategy]float64{prim: 104920.56, comp: 97791.92, drip: 100500.03},
		QALYs:      map[patient.Strategy]float64{prim: 12.4718, comp: 12.6520, drip: 12.5877},
	}

	var buf bytes.Buffer
	out := NewTerminal(&buf, p.Centers).Single(res)
	for _, want := range []string{"Routing Decision", "Comprehensive (MGH)", "Drip and Ship (Community to MGH)", "$97,792", "12.652"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("colour codes written for a non-terminal writer")
	}
}

func TestTerminal_SingleTrivial(t *testing.T) {
	p, comp, _, _ := baseCase(t)
	out := NewTerminal(&bytes.Buffer{}, p.Centers).Single(simulation.SingleRunResult{Optimal: comp, Trivial: true})
	if !strings.Contains(out, "Beyond every treatment window") || !strings.Contains(out, "MGH") {
		t.Errorf("trivial output:\n%s", out)
	}
}

func TestTerminal_MultiAndProfile(t *testing.T) {
	p, comp, prim, drip := baseCase(t)
	res := simulation.MultiRunResult{
		BatchID:               "3f1c2a9e-0000-4000-8000-000000000000",
		Optimal:               comp,
		Percentages:           map[patient.Strategy]float64{comp: 0.647, drip: 0.353},
		MaxBenefitPercentages: map[patient.Strategy]float64{comp: 0.9, prim: 0.1},
		Spreads: map[patient.Strategy]simulation.StrategySpread{
			comp: {QALY: stats.Spread{N: 647, P10: 11.9, Median: 12.6, P90: 13.2}},
		},
		Runs:   1000,
		Failed: 2,
	}
	term := NewTerminal(&bytes.Buffer{}, p.Centers)
	out := term.Multi(res)
	for _, want := range []string{"1000", "64.7%", "35.3%", "12.600", "11.900-13.200", "2 runs failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}

	prof := term.Profile(p)
	for _, want := range []string{"Female", "NIHSS", "ships to MGH in 60 min", "45 min"} {
		if !strings.Contains(prof, want) {
			t.Errorf("profile lacks %q:\n%s", want, prof)
		}
	}
}

func TestFmtMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0"},
		{999.4, "$999"},
		{97791.92, "$97,792"},
		{1234567.5, "$1,234,568"},
		{-2500, "-$2,500"},
	}
	for _, tt := range tests {
		if got := fmtMoney(tt.in); got != tt.want {
			t.Errorf("fmtMoney(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSaveHTML(t *testing.T) {
	p, comp, prim, _ := baseCase(t)
	single := simulation.SingleRunResult{
		Optimal: comp,
		Costs:   map[patient.Strategy]float64{prim: 104920.56, comp: 97791.92},
		QALYs:   map[patient.Strategy]float64{prim: 12.4718, comp: 12.6520},
	}
	multi, err := simulation.FromPercentages(map[patient.Strategy]float64{comp: 0.8, prim: 0.2})
	if err != nil {
		t.Fatal(err)
	}
	multi.BatchID = "abcdef12-3456"

	dir := filepath.Join(t.TempDir(), "reports")
	path, err := SaveHTML(dir, Page{
		Generated: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Profile:   p,
		Single:    &single,
		Multi:     &multi,
	})
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "routing-20260301-120000-abcdef12.html" {
		t.Errorf("path = %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	html := string(data)
	for _, want := range []string{"Massachusetts General Hospital", `class="optimal"`, `<pre class="mermaid">pie title`, "80.0%"} {
		if !strings.Contains(html, want) {
			t.Errorf("report lacks %q", want)
		}
	}
	if n := strings.Count(html, `<pre class="mermaid">`); n != 4 {
		t.Errorf("%d charts, want 4 (QALY, cost, pie, bars)", n)
	}
}
