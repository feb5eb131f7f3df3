package cohort

import "fmt"

// State is a Markov health state. The order is fixed and used as an array index.
type State int

const (
	GenPop State = iota
	MRS0
	MRS1
	MRS2
	MRS3
	MRS4
	MRS5
	Death

	NumStates = int(Death) + 1
)

func (s State) String() string {
	switch {
	case s == GenPop:
		return "GenPop"
	case s >= MRS0 && s <= MRS5:
		return fmt.Sprintf("mRS%d", int(s-MRS0))
	case s == Death:
		return "Death"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Distribution is the probability mass over the eight states.
type Distribution [NumStates]float64

func (d Distribution) Sum() float64 {
	total := 0.0
	for _, v := range d {
		total += v
	}
	return total
}

// hazardRatios multiply base mortality for each living state.
var hazardRatios = [Death]float64{
	GenPop: 1.00,
	MRS0:   1.53,
	MRS1:   1.52,
	MRS2:   2.17,
	MRS3:   3.18,
	MRS4:   4.55,
	MRS5:   6.55,
}

var utilities = [Death]float64{
	GenPop: 1.00,
	MRS0:   1.00,
	MRS1:   0.84,
	MRS2:   0.78,
	MRS3:   0.71,
	MRS4:   0.44,
	MRS5:   0.18,
}

// Mechanism shares among all stroke-alert calls.
const (
	pMimic       = (1635.0 + 191.0) / 2402.0
	pHemorrhagic = (16.0 + 85.0) / 2402.0
)

// deathShare is the 90-day mortality bucketed by NIHSS.
func deathShare(nihss float64) float64 {
	switch {
	case nihss < 7:
		return 0.042
	case nihss < 13:
		return 0.139
	case nihss < 21:
		return 0.316
	default:
		return 0.535
	}
}

// BreakUpStroke splits a stroke population into mRS grades given P(good outcome) and severity.
func BreakUpStroke(pGood, nihss float64) Distribution {
	var d Distribution
	d[Death] = deathShare(nihss)

	d[MRS0] = 0.205627706 * pGood
	d[MRS1] = 0.341991342 * pGood
	d[MRS2] = pGood - d[MRS1] - d[MRS0]

	bad := 1 - pGood - d[Death]
	d[MRS3] = 0.35678392 * bad
	d[MRS4] = 0.432160804 * bad
	d[MRS5] = 0.211055276 * bad
	return d
}
