package outcome

import (
	"fmt"

	"stroke-mcs/internal/geography"
	"stroke-mcs/internal/patient"
	"stroke-mcs/internal/random"
)

// Outcome is the ischemic-stroke result of routing one patient with one strategy.
type Outcome struct {
	PGood     float64 `json:"p_good"`
	PTPA      float64 `json:"p_tpa"`
	PEVT      float64 `json:"p_evt"`
	PTransfer float64 `json:"p_transfer"`
}

// Uncertainty selects which inputs are drawn at random for a pass.
type Uncertainty struct {
	Time bool
	LVO  bool
}

// Model evaluates strategies for one profile under one draw of the uncertain parameters.
type Model struct {
	profile *patient.Profile
	times   IntraHospitalTimes
	pLVO    float64
	nihss   float64
}

// NewModel samples intra-hospital delays and P(LVO). rng may be nil when no uncertainty is requested.
func NewModel(p *patient.Profile, u Uncertainty, rng random.Source) (*Model, error) {
	var timeRNG, lvoRNG random.Source
	if u.Time {
		timeRNG = rng
	}
	if u.LVO {
		lvoRNG = rng
	}
	if (u.Time || u.LVO) && rng == nil {
		return nil, fmt.Errorf("outcome: uncertainty requested without a random source")
	}

	times, err := SampleTimes(p, timeRNG)
	if err != nil {
		return nil, err
	}
	return &Model{
		profile: p,
		times:   times,
		pLVO:    PLVO(p.RACE, lvoRNG),
		nihss:   p.NIHSS(),
	}, nil
}

func (m *Model) PLVO() float64 {
	return m.pLVO
}

func (m *Model) NIHSS() float64 {
	return m.nihss
}

func (m *Model) travel(c geography.Center) (float64, error) {
	minutes, ok := c.Time.Minutes()
	if !ok {
		return 0, fmt.Errorf("%w: %q is not reachable", geography.ErrMissingTiming, c.ShortName)
	}
	return minutes, nil
}

func (m *Model) onsetToNeedle(c geography.Center) (float64, error) {
	travel, err := m.travel(c)
	if err != nil {
		return 0, err
	}
	dtn, err := m.times.DoorToNeedle(c.ID)
	if err != nil {
		return 0, err
	}
	return m.profile.OnsetMinutes + travel + dtn, nil
}

func (m *Model) onsetToPunctureDirect(c geography.Center) (float64, error) {
	travel, err := m.travel(c)
	if err != nil {
		return 0, err
	}
	dtp, err := m.times.DoorToPuncture(c.ID)
	if err != nil {
		return 0, err
	}
	return m.profile.OnsetMinutes + travel + dtp, nil
}

func (m *Model) onsetToPunctureShipped(primary geography.Center) (float64, error) {
	tr, ok := primary.Transfer()
	if !ok {
		return 0, fmt.Errorf("%w: %q has no transfer route", geography.ErrMissingTiming, primary.ShortName)
	}
	needle, err := m.onsetToNeedle(primary)
	if err != nil {
		return 0, err
	}
	dtp, err := m.times.DoorToPuncture(tr.Destination)
	if err != nil {
		return 0, err
	}
	return needle + tr.Minutes + dtp, nil
}

// IsNecessary reports whether any route can still reach a treatment window. When false the
// outcome model adds nothing and CutoffStrategy decides.
func (m *Model) IsNecessary() (bool, error) {
	needle, err := m.onsetToNeedle(m.profile.NearestPrimary())
	if err != nil {
		return false, err
	}
	puncture, err := m.onsetToPunctureDirect(m.profile.NearestComprehensive())
	if err != nil {
		return false, err
	}
	return needle <= ThrombolysisWindow || puncture <= EndovascularWindow, nil
}

// CutoffStrategy is the severity-based fallback for patients beyond every treatment window.
func (m *Model) CutoffStrategy() patient.Strategy {
	if m.profile.RACE >= 5.0 {
		return patient.Strategy{Kind: patient.KindComprehensive, Center: m.profile.NearestComprehensive().ID}
	}
	return patient.Strategy{Kind: patient.KindPrimary, Center: m.profile.NearestPrimary().ID}
}

// Evaluate computes the outcome of a strategy. ok is false when the strategy is infeasible for
// this draw (a drip-and-ship puncture past the endovascular window); callers skip it.
func (m *Model) Evaluate(s patient.Strategy) (out Outcome, ok bool, err error) {
	c, err := m.profile.Centers.Get(s.Center)
	if err != nil {
		return Outcome{}, false, err
	}

	switch s.Kind {
	case patient.KindPrimary:
		needle, err := m.onsetToNeedle(c)
		if err != nil {
			return Outcome{}, false, err
		}
		return Outcome{
			PGood: m.pGood(needle, nil),
			PTPA:  1,
		}, true, nil

	case patient.KindComprehensive:
		needle, err := m.onsetToNeedle(c)
		if err != nil {
			return Outcome{}, false, err
		}
		puncture, err := m.onsetToPunctureDirect(c)
		if err != nil {
			return Outcome{}, false, err
		}
		out := Outcome{PEVT: m.pLVO, PGood: m.pGood(needle, &puncture)}
		if needle < ThrombolysisWindow {
			out.PTPA = 1
		}
		return out, true, nil

	case patient.KindDripAndShip:
		puncture, err := m.onsetToPunctureShipped(c)
		if err != nil {
			return Outcome{}, false, err
		}
		if puncture > EndovascularWindow {
			return Outcome{}, false, nil
		}
		needle, err := m.onsetToNeedle(c)
		if err != nil {
			return Outcome{}, false, err
		}
		return Outcome{
			PGood:     m.pGood(needle, &puncture),
			PTPA:      1,
			PEVT:      m.pLVO,
			PTransfer: 1,
		}, true, nil

	default:
		panic(fmt.Sprintf("outcome: unhandled strategy kind %d", int(s.Kind)))
	}
}

// pGood blends the non-LVO and unreperfused LVO population on the thrombolysis curve with the
// reperfused LVO share on the post-thrombectomy curve, floored at the thrombolysis value.
func (m *Model) pGood(onsetToNeedle float64, onsetToPuncture *float64) float64 {
	baseline := PGoodThrombolysis(onsetToNeedle, m.nihss)

	pGood := (1 - m.pLVO) * baseline

	pReperfused := 0.0
	pNotReperfused := m.pLVO
	if onsetToPuncture != nil {
		pReperfused = m.pLVO * AngiographicSuccess
		pNotReperfused -= pReperfused
	}
	pGood += pNotReperfused * baseline

	if onsetToPuncture != nil {
		reperfused := max(PGoodPostReperfusion(*onsetToPuncture, m.nihss), baseline)
		pGood += pReperfused * reperfused
	}
	return pGood
}
