package selection

import (
	"errors"
	"testing"

	"stroke-mcs/internal/geography"
	"stroke-mcs/internal/patient"
	"stroke-mcs/internal/random"
)

func strat(id int) patient.Strategy {
	return patient.Strategy{Kind: patient.KindComprehensive, Center: geography.CenterID(id)}
}

func TestOptimal(t *testing.T) {
	tests := []struct {
		name      string
		cands     []Candidate
		threshold float64
		want      int
	}{
		{
			name:      "Single",
			cands:     []Candidate{{Strategy: strat(0), Cost: 10, QALY: 1}},
			threshold: 100000,
			want:      0,
		},
		{
			name: "EqualQALYCheaperWins",
			cands: []Candidate{
				{Strategy: strat(1), Cost: 200, QALY: 10},
				{Strategy: strat(0), Cost: 100, QALY: 10},
			},
			threshold: 100000,
			want:      0,
		},
		{
			name: "AffordableMiddle",
			cands: []Candidate{
				{Strategy: strat(0), Cost: 0, QALY: 1},
				{Strategy: strat(1), Cost: 50000, QALY: 2},
				{Strategy: strat(2), Cost: 200000, QALY: 3},
			},
			threshold: 100000,
			want:      1,
		},
		{
			name: "AllAffordable",
			cands: []Candidate{
				{Strategy: strat(0), Cost: 0, QALY: 1},
				{Strategy: strat(1), Cost: 50000, QALY: 2},
				{Strategy: strat(2), Cost: 120000, QALY: 3},
			},
			threshold: 100000,
			want:      2,
		},
		{
			name: "ExtendedDominanceThresholdIsStrict",
			cands: []Candidate{
				{Strategy: strat(0), Cost: 0, QALY: 1},
				{Strategy: strat(1), Cost: 150000, QALY: 2},
				{Strategy: strat(2), Cost: 200000, QALY: 3},
			},
			threshold: 100000,
			want:      0,
		},
		{
			name: "ExtendedDominanceAffordable",
			cands: []Candidate{
				{Strategy: strat(0), Cost: 0, QALY: 1},
				{Strategy: strat(1), Cost: 150000, QALY: 2},
				{Strategy: strat(2), Cost: 200000, QALY: 3},
			},
			threshold: 150000,
			want:      2,
		},
		{
			name: "MoreEffectiveAndCheaper",
			cands: []Candidate{
				{Strategy: strat(0), Cost: 100, QALY: 1},
				{Strategy: strat(1), Cost: 50, QALY: 2},
			},
			threshold: 100000,
			want:      1,
		},
		{
			name: "IdenticalPointsKeepFirst",
			cands: []Candidate{
				{Strategy: strat(3), Cost: 10, QALY: 1},
				{Strategy: strat(4), Cost: 10, QALY: 1},
			},
			threshold: 100000,
			want:      3,
		},
		{
			name: "NothingAffordableFallsBackToAnchor",
			cands: []Candidate{
				{Strategy: strat(0), Cost: 1000, QALY: 5},
				{Strategy: strat(1), Cost: 900000, QALY: 6},
			},
			threshold: 100000,
			want:      0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := Optimal(tt.cands, tt.threshold)
			if err != nil {
				t.Fatalf("Optimal failed: %v", err)
			}
			if got != strat(tt.want) {
				t.Errorf("Optimal() = center %d, want %d", got.Center, tt.want)
			}
		})
	}
}

func TestOptimal_Empty(t *testing.T) {
	if _, _, err := Optimal(nil, 100000); !errors.Is(err, ErrNoCandidates) {
		t.Errorf("Optimal(nil) error = %v, want ErrNoCandidates", err)
	}
}

func TestOptimal_DoesNotMutateInput(t *testing.T) {
	cands := []Candidate{
		{Strategy: strat(1), Cost: 200, QALY: 3},
		{Strategy: strat(0), Cost: 100, QALY: 2},
		{Strategy: strat(2), Cost: 300, QALY: 3},
	}
	before := append([]Candidate(nil), cands...)
	if _, _, err := Optimal(cands, 100000); err != nil {
		t.Fatal(err)
	}
	for i := range cands {
		if cands[i] != before[i] {
			t.Fatalf("input[%d] changed: %+v -> %+v", i, before[i], cands[i])
		}
	}
}

func randomCandidates(rng random.Source, n int) []Candidate {
	out := make([]Candidate, n)
	for i := range out {
		out[i] = Candidate{
			Strategy: strat(i),
			QALY:     5 + 10*rng.Float64(),
			Cost:     50000 + 150000*rng.Float64(),
		}
	}
	return out
}

func TestOptimal_FrontierProperties(t *testing.T) {
	rng := random.New(7)
	for trial := 0; trial < 2000; trial++ {
		cands := randomCandidates(rng, 2+rng.IntN(5))
		got, frontier, err := Optimal(cands, 100000)
		if err != nil {
			t.Fatal(err)
		}

		onFrontier := false
		for _, c := range frontier {
			if c.Strategy == got {
				onFrontier = true
			}
		}
		if !onFrontier {
			t.Fatalf("trial %d: optimal %v not on frontier %+v", trial, got, frontier)
		}

		for i := 1; i < len(frontier); i++ {
			if frontier[i].QALY < frontier[i-1].QALY {
				t.Fatalf("trial %d: frontier not sorted by QALY", trial)
			}
			if i > 1 && frontier[i-1].ICER > frontier[i].ICER {
				t.Fatalf("trial %d: frontier ICERs decrease: %v > %v", trial, frontier[i-1].ICER, frontier[i].ICER)
			}
		}
	}
}

func TestOptimal_DominatedRemovalInvariance(t *testing.T) {
	rng := random.New(11)
	for trial := 0; trial < 2000; trial++ {
		cands := randomCandidates(rng, 2+rng.IntN(5))
		want, _, err := Optimal(cands, 100000)
		if err != nil {
			t.Fatal(err)
		}

		for i, x := range cands {
			dominated := false
			for _, y := range cands {
				if y.QALY > x.QALY && y.Cost < x.Cost {
					dominated = true
				}
			}
			if !dominated {
				continue
			}
			rest := append(append([]Candidate(nil), cands[:i]...), cands[i+1:]...)
			got, _, err := Optimal(rest, 100000)
			if err != nil {
				t.Fatal(err)
			}
			if got != want {
				t.Fatalf("trial %d: dropping dominated %v changed optimal %v -> %v", trial, x.Strategy, want, got)
			}
		}
	}
}

func TestICERs(t *testing.T) {
	got := ICERs([]Candidate{{Cost: 0, QALY: 1}, {Cost: 100, QALY: 3}, {Cost: 400, QALY: 4}})
	want := []float64{50, 300}
	if len(got) != len(want) {
		t.Fatalf("ICERs() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ICERs()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if ICERs([]Candidate{{}}) != nil {
		t.Error("ICERs of one candidate should be nil")
	}
}

func TestMaxBenefit(t *testing.T) {
	tests := []struct {
		name   string
		cands  []Candidate
		want   int
		wantOK bool
	}{
		{"Empty", nil, 0, false},
		{"Highest", []Candidate{{Strategy: strat(0), QALY: 3}, {Strategy: strat(1), QALY: 5}, {Strategy: strat(2), QALY: 4}}, 1, true},
		{"FirstOfTies", []Candidate{{Strategy: strat(2), QALY: 5}, {Strategy: strat(1), QALY: 5}}, 2, true},
		{"NonPositive", []Candidate{{Strategy: strat(0), QALY: 0}}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MaxBenefit(tt.cands)
			if ok != tt.wantOK {
				t.Fatalf("MaxBenefit() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != strat(tt.want) {
				t.Errorf("MaxBenefit() = %v, want center %d", got, tt.want)
			}
		})
	}
}
