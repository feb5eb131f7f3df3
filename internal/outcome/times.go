package outcome

import (
	"fmt"

	"stroke-mcs/internal/geography"
	"stroke-mcs/internal/patient"
	"stroke-mcs/internal/random"
)

// IntraHospitalTimes holds one draw of door-to-needle and door-to-puncture delays per center.
type IntraHospitalTimes struct {
	doorToNeedle   map[geography.CenterID]float64
	doorToPuncture map[geography.CenterID]float64
}

// SampleTimes draws delays for every reachable center and every transfer destination.
// With rng nil each delay is its center's median.
func SampleTimes(p *patient.Profile, rng random.Source) (IntraHospitalTimes, error) {
	t := IntraHospitalTimes{
		doorToNeedle:   make(map[geography.CenterID]float64),
		doorToPuncture: make(map[geography.CenterID]float64),
	}

	for _, prim := range p.Primaries() {
		if err := t.sampleNeedle(prim, rng); err != nil {
			return t, err
		}
		tr, ok := prim.Transfer()
		if !ok {
			continue
		}
		dest, err := p.Centers.Get(tr.Destination)
		if err != nil {
			return t, err
		}
		if err := t.sampleNeedle(dest, rng); err != nil {
			return t, err
		}
		if err := t.samplePuncture(dest, rng); err != nil {
			return t, err
		}
	}
	for _, comp := range p.Comprehensives() {
		if err := t.sampleNeedle(comp, rng); err != nil {
			return t, err
		}
		if err := t.samplePuncture(comp, rng); err != nil {
			return t, err
		}
	}
	return t, nil
}

func (t *IntraHospitalTimes) sampleNeedle(c geography.Center, rng random.Source) error {
	if _, done := t.doorToNeedle[c.ID]; done {
		return nil
	}
	d, err := c.DoorToNeedle()
	if err != nil {
		return err
	}
	t.doorToNeedle[c.ID] = d.Draw(draw(rng))
	return nil
}

func (t *IntraHospitalTimes) samplePuncture(c geography.Center, rng random.Source) error {
	if _, done := t.doorToPuncture[c.ID]; done {
		return nil
	}
	d, err := c.DoorToPuncture()
	if err != nil {
		return err
	}
	t.doorToPuncture[c.ID] = d.Draw(draw(rng))
	return nil
}

func draw(rng random.Source) *float64 {
	if rng == nil {
		return nil
	}
	u := rng.Float64()
	return &u
}

// DoorToNeedle returns the sampled delay for a center.
func (t IntraHospitalTimes) DoorToNeedle(id geography.CenterID) (float64, error) {
	v, ok := t.doorToNeedle[id]
	if !ok {
		return 0, fmt.Errorf("%w: no door-to-needle sample for center %d", geography.ErrMissingTiming, id)
	}
	return v, nil
}

// DoorToPuncture returns the sampled delay for a center.
func (t IntraHospitalTimes) DoorToPuncture(id geography.CenterID) (float64, error) {
	v, ok := t.doorToPuncture[id]
	if !ok {
		return 0, fmt.Errorf("%w: no door-to-puncture sample for center %d", geography.ErrMissingTiming, id)
	}
	return v, nil
}
