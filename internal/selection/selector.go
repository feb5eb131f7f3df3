package selection

import (
	"errors"
	"fmt"
	"sort"

	"stroke-mcs/internal/patient"
)

var ErrNoCandidates = errors.New("no candidate strategies to select from")

// Candidate is one evaluated strategy. ICER is relative to the previous frontier point and is
// only set once the frontier has been built.
type Candidate struct {
	Strategy patient.Strategy
	Cost     float64
	QALY     float64
	ICER     float64
	HasICER  bool
}

// Optimal picks the most effective strategy whose ICER stays below threshold. It also returns
// the efficiency frontier in ascending QALY order.
func Optimal(cands []Candidate, threshold float64) (patient.Strategy, []Candidate, error) {
	if len(cands) == 0 {
		return patient.Strategy{}, nil, ErrNoCandidates
	}

	// 1. Sort by QALY, cheaper first on ties
	data := make([]Candidate, len(cands))
	copy(data, cands)
	for i := range data {
		data[i].ICER, data[i].HasICER = 0, false
	}
	sort.SliceStable(data, func(i, j int) bool {
		if data[i].QALY != data[j].QALY {
			return data[i].QALY < data[j].QALY
		}
		return data[i].Cost < data[j].Cost
	})

	// 2. Strict dominance, restarting after every removal
	data = removeDominated(data)
	if len(data) == 1 {
		return data[0].Strategy, data, nil
	}

	// 3. Extended dominance
	data, icers := removeExtendedDominated(data)
	for i := 1; i < len(data); i++ {
		data[i].ICER = icers[i-1]
		data[i].HasICER = true
	}

	// 4. Walk down from the most effective point
	for i := len(data) - 1; i >= 0; i-- {
		if !data[i].HasICER || data[i].ICER < threshold {
			return data[i].Strategy, data, nil
		}
	}
	// data[0] never has an ICER, so the walk always returns.
	panic(fmt.Sprintf("selection: frontier walk found no strategy among %d", len(data)))
}

func removeDominated(data []Candidate) []Candidate {
	for {
		removed := false
		for i := 0; i < len(data)-1; i++ {
			this, next := data[i], data[i+1]
			if this.QALY >= next.QALY && this.Cost < next.Cost {
				data = append(data[:i+1], data[i+2:]...)
				removed = true
				break
			}
		}
		if !removed {
			return data
		}
	}
}

func removeExtendedDominated(data []Candidate) ([]Candidate, []float64) {
	for {
		icers := ICERs(data)
		removed := false
		for i := 0; i < len(icers)-1; i++ {
			if icers[i] > icers[i+1] {
				data = append(data[:i+1], data[i+2:]...)
				removed = true
				break
			}
		}
		if !removed {
			return data, icers
		}
	}
}

// ICERs returns Δcost/ΔQALY between each candidate and its predecessor. Equal QALYs give an
// infinite or NaN ratio, which never passes a threshold comparison.
func ICERs(data []Candidate) []float64 {
	if len(data) < 2 {
		return nil
	}
	out := make([]float64, 0, len(data)-1)
	for i := 1; i < len(data); i++ {
		num := data[i].Cost - data[i-1].Cost
		den := data[i].QALY - data[i-1].QALY
		out = append(out, num/den)
	}
	return out
}

// MaxBenefit returns the candidate with the highest QALY. Only QALYs strictly above zero and
// strictly above the running best count, so the first of equal maxima wins.
func MaxBenefit(cands []Candidate) (patient.Strategy, bool) {
	var best patient.Strategy
	bestQALY := 0.0
	found := false
	for _, c := range cands {
		if c.QALY > bestQALY {
			best, bestQALY, found = c.Strategy, c.QALY, true
		}
	}
	return best, found
}
