package stats

import (
	"math"
	"slices"
)

// CalculateMedianContinuous finds the median value in a slice of floats.
func CalculateMedianContinuous(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	temp := sortedCopy(values)
	n := len(temp)
	if n%2 == 1 {
		return temp[n/2]
	}
	return (temp[n/2-1] + temp[n/2]) / 2.0
}

// CalculatePercentile returns the nearest-rank value at fraction p of the sorted sample (index n*p,
// clamped to the last element).
func CalculatePercentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	temp := sortedCopy(values)
	idx := int(float64(len(temp)) * p)
	return temp[max(0, min(idx, len(temp)-1))]
}

func sortedCopy(values []float64) []float64 {
	temp := make([]float64, len(values))
	copy(temp, values)
	slices.Sort(temp)
	return temp
}

// Spread summarizes a Monte Carlo sample.
type Spread struct {
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P10    float64 `json:"p10"`
	P90    float64 `json:"p90"`
	StdDev float64 `json:"std_dev"`
}

// Summarize computes the spread of a sample. An empty sample yields the zero Spread.
func Summarize(values []float64) Spread {
	if len(values) == 0 {
		return Spread{}
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	sq := 0.0
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}

	return Spread{
		N:      len(values),
		Mean:   mean,
		Median: CalculateMedianContinuous(values),
		P10:    CalculatePercentile(values, 0.10),
		P90:    CalculatePercentile(values, 0.90),
		StdDev: math.Sqrt(sq / float64(len(values))),
	}
}
