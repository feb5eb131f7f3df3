package simulation

import (
	"maps"
	"sync"

	"stroke-mcs/internal/patient"
	"stroke-mcs/internal/stats"
)

// Tally accumulates run results. Adds are serialised and Snapshot may be called concurrently
// from progress reporters.
type Tally struct {
	mu         sync.RWMutex
	runs       int
	trivial    int
	failed     int
	optimal    map[patient.Strategy]int
	maxBenefit map[patient.Strategy]int
	qalys      map[patient.Strategy][]float64
	costs      map[patient.Strategy][]float64
}

func NewTally() *Tally {
	return &Tally{
		optimal:    make(map[patient.Strategy]int),
		maxBenefit: make(map[patient.Strategy]int),
		qalys:      make(map[patient.Strategy][]float64),
		costs:      make(map[patient.Strategy][]float64),
	}
}

// Add records one successful run.
func (t *Tally) Add(r SingleRunResult) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.runs++
	t.optimal[r.Optimal]++
	if r.Trivial {
		t.trivial++
	}
	if r.MaxBenefit != nil {
		t.maxBenefit[*r.MaxBenefit]++
	}
	for s, cost := range r.Costs {
		t.costs[s] = append(t.costs[s], cost)
		t.qalys[s] = append(t.qalys[s], r.QALYs[s])
	}
}

// Fail records a run that errored. Failed runs are not part of any share.
func (t *Tally) Fail() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failed++
}

// Progress is a consistent view of a tally in flight.
type Progress struct {
	Completed int                      `json:"completed"`
	Failed    int                      `json:"failed"`
	Trivial   int                      `json:"trivial"`
	Optimal   map[patient.Strategy]int `json:"optimal"`
}

func (t *Tally) Snapshot() Progress {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Progress{
		Completed: t.runs + t.failed,
		Failed:    t.failed,
		Trivial:   t.trivial,
		Optimal:   maps.Clone(t.optimal),
	}
}

// Result freezes the tally into a MultiRunResult. It fails with ErrNoRuns when nothing succeeded.
func (t *Tally) Result() (MultiRunResult, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.runs == 0 {
		return MultiRunResult{Failed: t.failed}, ErrNoRuns
	}

	n := float64(t.runs)
	out := MultiRunResult{
		Counts:                maps.Clone(t.optimal),
		Percentages:           make(map[patient.Strategy]float64, len(t.optimal)),
		MaxBenefitCounts:      maps.Clone(t.maxBenefit),
		MaxBenefitPercentages: make(map[patient.Strategy]float64, len(t.maxBenefit)),
		Spreads:               make(map[patient.Strategy]StrategySpread, len(t.costs)),
		Runs:                  t.runs,
		Trivial:               t.trivial,
		Failed:                t.failed,
	}
	for s, c := range t.optimal {
		out.Percentages[s] = float64(c) / n
	}
	for s, c := range t.maxBenefit {
		out.MaxBenefitPercentages[s] = float64(c) / n
	}
	for s := range t.costs {
		out.Spreads[s] = StrategySpread{
			QALY: stats.Summarize(t.qalys[s]),
			Cost: stats.Summarize(t.costs[s]),
		}
	}

	out.Optimal, _ = mostFrequent(t.optimal)
	if best, ok := mostFrequent(t.maxBenefit); ok {
		out.MaxBenefit = &best
	}
	return out, nil
}
