package scenario

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"

	"stroke-mcs/internal/geography"
	"stroke-mcs/internal/patient"
)

var (
	ErrInvalidScenario = errors.New("invalid scenario")
	ErrUnknownKey      = errors.New("unknown center key")
)

// File is the on-disk description of one routing decision.
type File struct {
	Patient       PatientSpec        `json:"patient"`
	Centers       []CenterSpec       `json:"centers" jsonschema:"every center the patient could be routed to, including transfer-only destinations"`
	TravelMinutes map[string]float64 `json:"travel_minutes" jsonschema:"travel time from the incident location by center key; centers left out are not reachable"`
}

// PatientSpec carries the RACE severity either as a total score or as its five items, never both.
type PatientSpec struct {
	Sex          string         `json:"sex" jsonschema:"male or female"`
	Age          int            `json:"age"`
	RACE         *float64       `json:"race,omitempty" jsonschema:"RACE score from 0 to 9; omit when race_items is given"`
	RACEItems    *RACEItemsSpec `json:"race_items,omitempty" jsonschema:"the five RACE items; omit when race is given"`
	OnsetMinutes float64        `json:"onset_minutes" jsonschema:"minutes since symptom onset"`
}

type RACEItemsSpec struct {
	FacialPalsy   int `json:"facial_palsy" jsonschema:"0 absent, 1 mild, 2 moderate to severe"`
	ArmMotor      int `json:"arm_motor" jsonschema:"0 normal or mild, 1 moderate, 2 severe"`
	LegMotor      int `json:"leg_motor" jsonschema:"0 normal or mild, 1 moderate, 2 severe"`
	GazeDeviation int `json:"gaze_deviation" jsonschema:"0 absent, 1 present"`
	Agnosia       int `json:"agnosia" jsonschema:"0 recognises both items, 1 one, 2 neither"`
}

// Items checks every item against its grade range.
func (r RACEItemsSpec) Items() (patient.RACEItems, error) {
	grades := []struct {
		name  string
		value int
		max   int
	}{
		{"facial_palsy", r.FacialPalsy, 2},
		{"arm_motor", r.ArmMotor, 2},
		{"leg_motor", r.LegMotor, 2},
		{"gaze_deviation", r.GazeDeviation, 1},
		{"agnosia", r.Agnosia, 2},
	}
	for _, g := range grades {
		if g.value < 0 || g.value > g.max {
			return patient.RACEItems{}, fmt.Errorf("%w: race_items.%s is %d, want 0-%d", ErrInvalidScenario, g.name, g.value, g.max)
		}
	}
	return patient.RACEItems{
		Palsy:     patient.Palsy(r.FacialPalsy),
		Arm:       patient.MotorImpairment(r.ArmMotor),
		Leg:       patient.MotorImpairment(r.LegMotor),
		Deviation: patient.GazeDeviation(r.GazeDeviation),
		Agnosia:   patient.Agnosia(r.Agnosia),
	}, nil
}

func (p PatientSpec) score() (float64, error) {
	switch {
	case p.RACE != nil && p.RACEItems != nil:
		return 0, fmt.Errorf("%w: give either race or race_items, not both", ErrInvalidScenario)
	case p.RACE != nil:
		return *p.RACE, nil
	case p.RACEItems != nil:
		items, err := p.RACEItems.Items()
		if err != nil {
			return 0, err
		}
		return items.Score(), nil
	default:
		return 0, fmt.Errorf("%w: patient needs race or race_items", ErrInvalidScenario)
	}
}

type CenterSpec struct {
	Key            string                      `json:"key"`
	Name           string                      `json:"name"`
	ShortName      string                      `json:"short_name,omitempty"`
	Type           string                      `json:"type" jsonschema:"primary or comprehensive"`
	DoorToNeedle   *geography.TimeDistribution `json:"door_to_needle,omitempty" jsonschema:"door-to-needle minutes; defaults by center type"`
	DoorToPuncture *geography.TimeDistribution `json:"door_to_puncture,omitempty" jsonschema:"door-to-puncture minutes for comprehensive centers"`
	Transfer       *TransferSpec               `json:"transfer,omitempty" jsonschema:"drip-and-ship route for primary centers"`
}

type TransferSpec struct {
	Destination string  `json:"destination"`
	Minutes     float64 `json:"minutes"`
}

// Scenario is a built profile plus the mapping from file keys to registry ids.
type Scenario struct {
	Profile *patient.Profile
	Keys    map[string]geography.CenterID
}

var fileSchema = sync.OnceValues(func() (*jsonschema.Resolved, error) {
	s, err := jsonschema.For[File](nil)
	if err != nil {
		return nil, err
	}
	return s.Resolve(nil)
})

// Schema returns the JSON Schema scenario files are validated against.
func Schema() ([]byte, error) {
	s, err := jsonschema.For[File](nil)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(s, "", "  ")
}

// Load reads, validates and builds a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Parse validates raw JSON against the scenario schema before decoding it.
func Parse(data []byte) (*Scenario, error) {
	resolved, err := fileSchema()
	if err != nil {
		return nil, fmt.Errorf("building scenario schema: %w", err)
	}

	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	if err := resolved.Validate(instance); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	return f.Build()
}

// Build assembles the center registry, applies travel times and validates the patient.
func (f File) Build() (*Scenario, error) {
	sex, err := patient.ParseSex(f.Patient.Sex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	race, err := f.Patient.score()
	if err != nil {
		return nil, err
	}

	reg := geography.NewRegistry()
	keys := make(map[string]geography.CenterID, len(f.Centers))

	// 1. Centers, in file order
	for _, c := range f.Centers {
		if c.Key == "" {
			return nil, fmt.Errorf("%w: center %q has no key", ErrInvalidScenario, c.Name)
		}
		if _, dup := keys[c.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate center key %q", ErrInvalidScenario, c.Key)
		}
		opts := []geography.CenterOption{}
		if c.ShortName != "" {
			opts = append(opts, geography.WithShortName(c.ShortName))
		}
		if c.DoorToNeedle != nil {
			if err := c.DoorToNeedle.Validate(); err != nil {
				return nil, fmt.Errorf("%w: %q door_to_needle: %w", ErrInvalidScenario, c.Key, err)
			}
			opts = append(opts, geography.WithDoorToNeedle(*c.DoorToNeedle))
		}
		if c.DoorToPuncture != nil {
			if err := c.DoorToPuncture.Validate(); err != nil {
				return nil, fmt.Errorf("%w: %q door_to_puncture: %w", ErrInvalidScenario, c.Key, err)
			}
			opts = append(opts, geography.WithDoorToPuncture(*c.DoorToPuncture))
		}

		switch strings.ToLower(c.Type) {
		case "primary":
			keys[c.Key] = reg.AddPrimary(c.Name, opts...)
		case "comprehensive":
			keys[c.Key] = reg.AddComprehensive(c.Name, opts...)
		default:
			return nil, fmt.Errorf("%w: center %q has type %q", ErrInvalidScenario, c.Key, c.Type)
		}
	}

	// 2. Transfer routes, once every destination exists
	for _, c := range f.Centers {
		if c.Transfer == nil {
			continue
		}
		dest, ok := keys[c.Transfer.Destination]
		if !ok {
			return nil, fmt.Errorf("%w: %q transfers to %q", ErrUnknownKey, c.Key, c.Transfer.Destination)
		}
		if err := reg.SetTransfer(keys[c.Key], dest, c.Transfer.Minutes); err != nil {
			return nil, fmt.Errorf("%w: %q transfer: %w", ErrInvalidScenario, c.Key, err)
		}
	}

	// 3. Travel times
	if err := ApplyTravelTimes(reg, keys, f.TravelMinutes); err != nil {
		return nil, err
	}

	p, err := patient.NewProfile(sex, f.Patient.Age, race, f.Patient.OnsetMinutes, reg)
	if err != nil {
		return nil, err
	}
	return &Scenario{Profile: p, Keys: keys}, nil
}

// ApplyTravelTimes bulk-assigns travel minutes by center key. Centers without an entry become
// unreachable; keys that name no center are an error.
func ApplyTravelTimes(reg *geography.Registry, keys map[string]geography.CenterID, minutes map[string]float64) error {
	lookup := make(map[geography.CenterID]float64, len(minutes))
	for key, m := range minutes {
		id, ok := keys[key]
		if !ok {
			return fmt.Errorf("%w: travel time for %q", ErrUnknownKey, key)
		}
		if m < 0 {
			return fmt.Errorf("%w: negative travel time %v for %q", ErrInvalidScenario, m, key)
		}
		lookup[id] = m
	}
	reg.SetTimes(lookup)
	return nil
}
