package patient

import (
	"errors"
	"fmt"
	"math"

	"stroke-mcs/internal/geography"
)

var (
	ErrNoPrimary       = errors.New("no reachable primary center")
	ErrNoComprehensive = errors.New("no reachable comprehensive center")
	ErrInvalidProfile  = errors.New("invalid patient profile")
)

// MaxAge is the oldest age the cohort model can follow for at least one year.
const MaxAge = 99

type Sex int

const (
	Male Sex = iota
	Female
)

func (s Sex) String() string {
	switch s {
	case Male:
		return "Male"
	case Female:
		return "Female"
	default:
		return fmt.Sprintf("Sex(%d)", int(s))
	}
}

// ParseSex accepts "male"/"female" in any common spelling, "Sex.MALE"/"Sex.FEMALE", or "0"/"1".
func ParseSex(s string) (Sex, error) {
	switch s {
	case "0", "male", "Male", "MALE", "Sex.MALE", "M", "m":
		return Male, nil
	case "1", "female", "Female", "FEMALE", "Sex.FEMALE", "F", "f":
		return Female, nil
	default:
		return 0, fmt.Errorf("%w: unknown sex %q", ErrInvalidProfile, s)
	}
}

// Profile is one patient presentation together with the centers around the incident.
type Profile struct {
	Sex          Sex
	Age          int
	RACE         float64
	OnsetMinutes float64
	Centers      *geography.Registry
}

// NewProfile validates the demographics and that both center types are reachable.
func NewProfile(sex Sex, age int, race, onsetMinutes float64, centers *geography.Registry) (*Profile, error) {
	p := &Profile{
		Sex:          sex,
		Age:          age,
		RACE:         race,
		OnsetMinutes: onsetMinutes,
		Centers:      centers,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate re-checks the profile. Travel times may have been reassigned since construction.
func (p *Profile) Validate() error {
	if p.Sex != Male && p.Sex != Female {
		return fmt.Errorf("%w: sex %d", ErrInvalidProfile, int(p.Sex))
	}
	if p.Age < 0 || p.Age > MaxAge {
		return fmt.Errorf("%w: age %d", ErrInvalidProfile, p.Age)
	}
	if p.RACE < 0 || p.RACE > 9 || math.IsNaN(p.RACE) {
		return fmt.Errorf("%w: RACE %v outside 0-9", ErrInvalidProfile, p.RACE)
	}
	if p.OnsetMinutes < 0 || math.IsNaN(p.OnsetMinutes) {
		return fmt.Errorf("%w: onset %v", ErrInvalidProfile, p.OnsetMinutes)
	}
	if p.Centers == nil {
		return fmt.Errorf("%w: no centers", ErrInvalidProfile)
	}
	if len(p.Centers.Reachable(geography.Primary)) == 0 {
		return ErrNoPrimary
	}
	if len(p.Centers.Reachable(geography.Comprehensive)) == 0 {
		return ErrNoComprehensive
	}
	return nil
}

func (p *Profile) NIHSS() float64 {
	return ToNIHSS(p.RACE)
}

func (p *Profile) Primaries() []geography.Center {
	return p.Centers.Reachable(geography.Primary)
}

func (p *Profile) Comprehensives() []geography.Center {
	return p.Centers.Reachable(geography.Comprehensive)
}

// NearestPrimary panics on a profile that failed Validate.
func (p *Profile) NearestPrimary() geography.Center {
	c, ok := p.Centers.Nearest(geography.Primary)
	if !ok {
		panic(ErrNoPrimary)
	}
	return c
}

// NearestComprehensive panics on a profile that failed Validate.
func (p *Profile) NearestComprehensive() geography.Center {
	c, ok := p.Centers.Nearest(geography.Comprehensive)
	if !ok {
		panic(ErrNoComprehensive)
	}
	return c
}

// Strategies lists the candidates: nearest primary, nearest comprehensive, then one drip-and-ship
// per reachable primary with a transfer destination, in id order.
func (p *Profile) Strategies() []Strategy {
	out := []Strategy{
		{Kind: KindPrimary, Center: p.NearestPrimary().ID},
		{Kind: KindComprehensive, Center: p.NearestComprehensive().ID},
	}
	for _, c := range p.Primaries() {
		if _, ok := c.Transfer(); ok {
			out = append(out, Strategy{Kind: KindDripAndShip, Center: c.ID})
		}
	}
	return out
}

// PrimaryRoute is a primary center's travel time and transfer time onward.
type PrimaryRoute struct {
	Travel   float64
	Transfer float64
}

// NewProfileFromTimes builds a scenario of anonymous centers. Every primary transfers to the
// nearest comprehensive center.
func NewProfileFromTimes(sex Sex, age int, race, onsetMinutes float64, primaries []PrimaryRoute, comprehensiveTimes []float64) (*Profile, error) {
	reg := geography.NewRegistry()
	var destination geography.CenterID
	shortest := math.Inf(1)
	for i, t := range comprehensiveTimes {
		id := reg.AddComprehensive(fmt.Sprintf("Comprehensive %d", i+1), geography.WithTime(t))
		if t < shortest {
			shortest = t
			destination = id
		}
	}
	for i, route := range primaries {
		id := reg.AddPrimary(fmt.Sprintf("Primary %d", i+1), geography.WithTime(route.Travel))
		if len(comprehensiveTimes) > 0 {
			if err := reg.SetTransfer(id, destination, route.Transfer); err != nil {
				return nil, err
			}
		}
	}
	return NewProfile(sex, age, race, onsetMinutes, reg)
}
