package scenario

import (
	"errors"
	"fmt"
	"math"

	"stroke-mcs/internal/outcome"
	"stroke-mcs/internal/patient"
	"stroke-mcs/internal/random"
)

// ErrNoNontrivial is returned when every attempt produced a patient beyond all treatment windows.
var ErrNoNontrivial = errors.New("no nontrivial scenario generated")

// DefaultMaxAttempts bounds the search in RandomNontrivial.
const DefaultMaxAttempts = 10000

// Random draws a scenario with 2 to 6 primary centers and one reachable comprehensive center.
// Each primary ships to its own comprehensive target that cannot be reached directly. The
// comprehensive center is never closer than the nearest primary.
func Random(rng random.Source) File {
	sex := patient.Sex(rng.IntN(2))
	age := 30 + rng.IntN(51)
	race := float64(rng.IntN(10))
	f := File{
		Patient: PatientSpec{
			Sex:          sex.String(),
			Age:          age,
			RACE:         &race,
			OnsetMinutes: 90*rng.Float64() + 10,
		},
		TravelMinutes: make(map[string]float64),
	}

	numPrimaries := 2 + rng.IntN(5)
	minPrimary := math.Inf(1)
	for i := range numPrimaries {
		travel := 140*rng.Float64() + 10
		minPrimary = min(minPrimary, travel)
		transfer := 200 * rng.Float64()

		primaryKey := fmt.Sprintf("primary-%d", i)
		targetKey := fmt.Sprintf("target-%d", i)
		f.Centers = append(f.Centers,
			CenterSpec{Key: targetKey, Name: fmt.Sprintf("Drip and ship target %d", i), Type: "comprehensive"},
			CenterSpec{
				Key:      primaryKey,
				Name:     fmt.Sprintf("Primary %d", i),
				Type:     "primary",
				Transfer: &TransferSpec{Destination: targetKey, Minutes: transfer},
			},
		)
		f.TravelMinutes[primaryKey] = travel
	}

	f.Centers = append(f.Centers, CenterSpec{Key: "comprehensive", Name: "Comprehensive", Type: "comprehensive"})
	f.TravelMinutes["comprehensive"] = minPrimary + (350-minPrimary)*rng.Float64()
	return f
}

// RandomNontrivial redraws until the patient is within reach of some treatment window, judged
// on median delays and the mean P(LVO).
func RandomNontrivial(rng random.Source, maxAttempts int) (File, error) {
	for range maxAttempts {
		f := Random(rng)
		sc, err := f.Build()
		if err != nil {
			return File{}, err
		}
		model, err := outcome.NewModel(sc.Profile, outcome.Uncertainty{}, nil)
		if err != nil {
			return File{}, err
		}
		necessary, err := model.IsNecessary()
		if err != nil {
			return File{}, err
		}
		if necessary {
			return f, nil
		}
	}
	return File{}, fmt.Errorf("%w after %d attempts", ErrNoNontrivial, maxAttempts)
}

// RandomSet draws n scenarios.
func RandomSet(rng random.Source, n int, nontrivialOnly bool) ([]File, error) {
	out := make([]File, 0, n)
	for range n {
		if !nontrivialOnly {
			out = append(out, Random(rng))
			continue
		}
		f, err := RandomNontrivial(rng, DefaultMaxAttempts)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// RandomLine draws a single-primary scenario in regression line form. The comprehensive center
// is never closer than the primary.
func RandomLine(rng random.Source) LineInputs {
	in := LineInputs{
		Sex:          patient.Sex(rng.IntN(2)),
		Age:          30 + rng.IntN(51),
		RACE:         float64(rng.IntN(10)),
		OnsetMinutes: 90*rng.Float64() + 10,
	}
	in.PrimaryMinutes = 140*rng.Float64() + 10
	in.TransferMinutes = 200 * rng.Float64()
	in.ComprehensiveMinutes = in.PrimaryMinutes + (350-in.PrimaryMinutes)*rng.Float64()
	return in
}
