package outcome

import (
	"math"

	"stroke-mcs/internal/random"
)

const (
	// ThrombolysisWindow is the latest onset-to-needle time, in minutes, at which tPA helps.
	ThrombolysisWindow = 270.0
	// EndovascularWindow is the latest onset-to-puncture time, in minutes, for thrombectomy.
	EndovascularWindow = 360.0
	// AngiographicSuccess is the share of thrombectomies that reperfuse.
	AngiographicSuccess = 0.71
)

type logisticCoefficients struct {
	beta0, beta1 float64
}

var (
	lvoCentral = logisticCoefficients{-2.9297, 0.5533}
	lvoLow     = logisticCoefficients{-3.6526, 0.4141}
	lvoHigh    = logisticCoefficients{-2.2067, 0.6925}
)

func (c logisticCoefficients) at(race float64) float64 {
	return 1.0 / (1.0 + math.Exp(-c.beta0-c.beta1*race))
}

// PLVO is the probability that an ischemic presentation with the given RACE score is a large
// vessel occlusion. With rng non-nil the value is drawn uniformly between the low and high curves.
func PLVO(race float64, rng random.Source) float64 {
	if rng == nil {
		return lvoCentral.at(race)
	}
	lower := lvoLow.at(race)
	upper := lvoHigh.at(race)
	return rng.Float64()*(upper-lower) + lower
}

// PGoodPostReperfusion is P(mRS 0-2) after successful thrombectomy.
func PGoodPostReperfusion(onsetToReperfusion, nihss float64) float64 {
	beta := -0.00879544 - 9.01419716e-05*onsetToReperfusion
	return math.Exp(beta * nihss)
}

// PGoodNoReperfusion is P(mRS 0-2) when no reperfusion therapy is given at all.
func PGoodNoReperfusion(nihss float64) float64 {
	if nihss >= 20 {
		return 0.05
	}
	return -0.0464*nihss + 1.0071
}

// PGoodThrombolysis is P(mRS 0-2) for a patient given tPA at onsetToNeedle minutes.
// Past the thrombolysis window the untreated baseline applies.
func PGoodThrombolysis(onsetToNeedle, nihss float64) float64 {
	baseline := 0.001*nihss*nihss - 0.0615*nihss + 1
	if onsetToNeedle > ThrombolysisWindow {
		return baseline
	}
	oddsRatio := -0.0031*onsetToNeedle + 2.068
	odds := baseline / (1 - baseline) * oddsRatio
	return odds / (1 + odds)
}
