package simulation

import (
	"maps"
	"math"
	"slices"

	"stroke-mcs/internal/geography"
	"stroke-mcs/internal/patient"
	"stroke-mcs/internal/stats"
)

// SingleRunResult is one pipeline pass. Trivial runs carry only Optimal.
type SingleRunResult struct {
	Optimal    patient.Strategy             `json:"optimal"`
	MaxBenefit *patient.Strategy            `json:"max_benefit,omitempty"`
	Costs      map[patient.Strategy]float64 `json:"costs,omitempty"`
	QALYs      map[patient.Strategy]float64 `json:"qalys,omitempty"`
	Trivial    bool                         `json:"trivial"`
}

// Strategies returns the evaluated strategies in (kind, center) order.
func (r SingleRunResult) Strategies() []patient.Strategy {
	out := make([]patient.Strategy, 0, len(r.Costs))
	for s := range r.Costs {
		out = append(out, s)
	}
	slices.SortFunc(out, compareStrategies)
	return out
}

// ApproxEqual compares picks exactly and values within 1e-2 (cost) and 1e-3 (QALY).
func (r SingleRunResult) ApproxEqual(o SingleRunResult) bool {
	if r.Optimal != o.Optimal || r.Trivial != o.Trivial {
		return false
	}
	if (r.MaxBenefit == nil) != (o.MaxBenefit == nil) {
		return false
	}
	if r.MaxBenefit != nil && *r.MaxBenefit != *o.MaxBenefit {
		return false
	}
	if len(r.Costs) != len(o.Costs) {
		return false
	}
	for s, cost := range r.Costs {
		other, ok := o.Costs[s]
		if !ok || math.Abs(cost-other) > 1e-2 {
			return false
		}
		if math.Abs(r.QALYs[s]-o.QALYs[s]) > 1e-3 {
			return false
		}
	}
	return true
}

// StrategySpread is the distribution of one strategy's values over the runs that evaluated it.
type StrategySpread struct {
	QALY stats.Spread `json:"qaly"`
	Cost stats.Spread `json:"cost"`
}

// MultiRunResult aggregates many runs. Counts are nil when it was built from percentages.
type MultiRunResult struct {
	BatchID               string                              `json:"batch_id,omitempty"`
	Optimal               patient.Strategy                    `json:"optimal"`
	MaxBenefit            *patient.Strategy                   `json:"max_benefit,omitempty"`
	Counts                map[patient.Strategy]int            `json:"counts,omitempty"`
	Percentages           map[patient.Strategy]float64        `json:"percentages"`
	MaxBenefitCounts      map[patient.Strategy]int            `json:"max_benefit_counts,omitempty"`
	MaxBenefitPercentages map[patient.Strategy]float64        `json:"max_benefit_percentages"`
	Spreads               map[patient.Strategy]StrategySpread `json:"spreads,omitempty"`
	Runs                  int                                 `json:"runs"`
	Trivial               int                                 `json:"trivial"`
	Failed                int                                 `json:"failed"`
}

// NewMultiRunResult aggregates an explicit list of runs.
func NewMultiRunResult(results []SingleRunResult) (MultiRunResult, error) {
	t := NewTally()
	for _, r := range results {
		t.Add(r)
	}
	return t.Result()
}

// FromPercentages builds a result from a fixed optimal-selection mapping, e.g. a regression
// fixture. The highest share is optimal; ties go to the lowest (kind, center).
func FromPercentages(percentages map[patient.Strategy]float64) (MultiRunResult, error) {
	if len(percentages) == 0 {
		return MultiRunResult{}, ErrEmptyPercentages
	}
	optimal, _ := mostFrequent(percentages)
	return MultiRunResult{
		Optimal:               optimal,
		Percentages:           maps.Clone(percentages),
		MaxBenefitPercentages: map[patient.Strategy]float64{},
	}, nil
}

// CountsByCenter sums optimal counts per center; a drip-and-ship pick counts for its primary.
// ok is false when the result has no counts.
func (m MultiRunResult) CountsByCenter() (map[geography.CenterID]int, bool) {
	if m.Counts == nil {
		return nil, false
	}
	out := make(map[geography.CenterID]int, len(m.Counts))
	for s, n := range m.Counts {
		out[s.Center] += n
	}
	return out, true
}

// PercentagesByCenter prefers exact counts and falls back to summing percentages.
func (m MultiRunResult) PercentagesByCenter() map[geography.CenterID]float64 {
	if counts, ok := m.CountsByCenter(); ok {
		total := 0
		for _, n := range counts {
			total += n
		}
		out := make(map[geography.CenterID]float64, len(counts))
		for id, n := range counts {
			out[id] = float64(n) / float64(total)
		}
		return out
	}
	out := make(map[geography.CenterID]float64, len(m.Percentages))
	for s, p := range m.Percentages {
		out[s.Center] += p
	}
	return out
}

// ApproxEqual compares optimal-selection shares with a 0.01 margin. A strategy missing on one
// side must have a share no larger than the margin on the other.
func (m MultiRunResult) ApproxEqual(o MultiRunResult) bool {
	const margin = 1e-2
	for s, p := range m.Percentages {
		if math.Abs(p-o.Percentages[s]) > margin {
			return false
		}
	}
	for s, p := range o.Percentages {
		if _, ok := m.Percentages[s]; !ok && p > margin {
			return false
		}
	}
	return true
}

// OrderedStrategies lists every strategy that appears in the result in (kind, center) order.
func (m MultiRunResult) OrderedStrategies() []patient.Strategy {
	seen := make(map[patient.Strategy]struct{})
	for s := range m.Percentages {
		seen[s] = struct{}{}
	}
	for s := range m.MaxBenefitPercentages {
		seen[s] = struct{}{}
	}
	for s := range m.Spreads {
		seen[s] = struct{}{}
	}
	out := make([]patient.Strategy, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	slices.SortFunc(out, compareStrategies)
	return out
}

func compareStrategies(a, b patient.Strategy) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	default:
		return 0
	}
}

// mostFrequent returns the key with the largest value, lowest strategy first on ties.
func mostFrequent[V int | float64](m map[patient.Strategy]V) (patient.Strategy, bool) {
	var best patient.Strategy
	var bestValue V
	found := false
	for s, v := range m {
		if !found || v > bestValue || (v == bestValue && s.Less(best)) {
			best, bestValue, found = s, v, true
		}
	}
	return best, found
}
