package patient

// ToNIHSS maps a RACE score onto the NIHSS scale. RACE 0 is pinned to NIHSS 1.
func ToNIHSS(race float64) float64 {
	if race == 0 {
		return 1.0
	}
	return -0.39 + 2.39*race
}

// FromNIHSS inverts ToNIHSS.
func FromNIHSS(nihss float64) float64 {
	if nihss == 1.0 {
		return 0
	}
	return (nihss + 0.39) / 2.39
}

type Palsy int

const (
	PalsyAbsent Palsy = iota
	PalsyMild
	PalsyModerateSevere
)

type MotorImpairment int

const (
	MotorNormalMild MotorImpairment = iota
	MotorModerate
	MotorSevere
)

type GazeDeviation int

const (
	GazeAbsent GazeDeviation = iota
	GazePresent
)

// Agnosia records how many of the two agnosia items (asomatognosia, anosognosia) are recognised.
type Agnosia int

const (
	AgnosiaRecognisesBoth Agnosia = iota
	AgnosiaRecognisesOne
	AgnosiaRecognisesNeither
)

// RACEItems is one prehospital RACE assessment.
type RACEItems struct {
	Palsy     Palsy
	Arm       MotorImpairment
	Leg       MotorImpairment
	Deviation GazeDeviation
	Agnosia   Agnosia
}

// Score sums the RACE items into the 0-9 scale.
func (r RACEItems) Score() float64 {
	score := 0
	score += clamp(int(r.Palsy), 0, 2)
	score += clamp(int(r.Arm), 0, 2)
	score += clamp(int(r.Leg), 0, 2)
	score += clamp(int(r.Deviation), 0, 1)
	score += clamp(int(r.Agnosia), 0, 2)
	return float64(score)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
