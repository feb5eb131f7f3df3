package outcome

import (
	"errors"
	"math"
	"testing"

	"stroke-mcs/internal/geography"
	"stroke-mcs/internal/patient"
	"stroke-mcs/internal/random"
)

const tolerance = 1e-12

func baseCase(t *testing.T, transfer float64) (*patient.Profile, geography.CenterID, geography.CenterID) {
	t.Helper()
	reg := geography.NewRegistry()
	comp := reg.AddComprehensive("Comprehensive", geography.WithTime(45))
	prim := reg.AddPrimary("Primary", geography.WithTime(30))
	if err := reg.SetTransfer(prim, comp, transfer); err != nil {
		t.Fatal(err)
	}
	p, err := patient.NewProfile(patient.Female, 65, 7, 45, reg)
	if err != nil {
		t.Fatal(err)
	}
	return p, prim, comp
}

func TestModel_BaseCaseOutcomes(t *testing.T) {
	p, prim, comp := baseCase(t, 60)
	m, err := NewModel(p, Uncertainty{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(m.PLVO()-0.7197859296808218) > tolerance {
		t.Errorf("unexpected P(LVO) %v", m.PLVO())
	}

	tests := []struct {
		name     string
		strategy patient.Strategy
		want     Outcome
	}{
		{"Primary", patient.Strategy{Kind: patient.KindPrimary, Center: prim},
			Outcome{PGood: 0.36898687818559245, PTPA: 1}},
		{"Comprehensive", patient.Strategy{Kind: patient.KindComprehensive, Center: comp},
			Outcome{PGood: 0.4922526536728581, PTPA: 1, PEVT: 0.7197859296808218}},
		{"DripAndShip", patient.Strategy{Kind: patient.KindDripAndShip, Center: prim},
			Outcome{PGood: 0.4482811370425337, PTPA: 1, PEVT: 0.7197859296808218, PTransfer: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := m.Evaluate(tt.strategy)
			if err != nil || !ok {
				t.Fatalf("Evaluate() ok=%v err=%v", ok, err)
			}
			if math.Abs(got.PGood-tt.want.PGood) > tolerance ||
				math.Abs(got.PEVT-tt.want.PEVT) > tolerance ||
				got.PTPA != tt.want.PTPA || got.PTransfer != tt.want.PTransfer {
				t.Errorf("Evaluate() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestModel_DripAndShipPastWindowIsInfeasible(t *testing.T) {
	// 45 + 30 + 61 + 80 + 145 = 361 > 360
	p, prim, _ := baseCase(t, 80)
	m, err := NewModel(p, Uncertainty{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	_, ok, err := m.Evaluate(patient.Strategy{Kind: patient.KindDripAndShip, Center: prim})
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Errorf("drip and ship past the endovascular window must be infeasible")
	}
}

func TestModel_ComprehensiveNeedlePastWindowSkipsTPA(t *testing.T) {
	reg := geography.NewRegistry()
	reg.AddPrimary("Primary", geography.WithTime(30))
	comp := reg.AddComprehensive("Comprehensive", geography.WithTime(100))
	p, err := patient.NewProfile(patient.Male, 70, 6, 130, reg)
	if err != nil {
		t.Fatal(err)
	}
	m, err := NewModel(p, Uncertainty{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	// 130 + 100 + 52 = 282 > 270
	out, ok, err := m.Evaluate(patient.Strategy{Kind: patient.KindComprehensive, Center: comp})
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if out.PTPA != 0 {
		t.Errorf("expected no thrombolysis past the window, got %v", out.PTPA)
	}
	if out.PEVT != m.PLVO() {
		t.Errorf("expected P(EVT) = P(LVO)")
	}
}

func TestModel_CutoffStrategy(t *testing.T) {
	tests := []struct {
		name string
		race float64
		kind patient.Kind
	}{
		{"SevereGoesComprehensive", 5, patient.KindComprehensive},
		{"MildGoesPrimary", 4, patient.KindPrimary},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := geography.NewRegistry()
			reg.AddPrimary("Primary", geography.WithTime(30))
			reg.AddComprehensive("Comprehensive", geography.WithTime(60))
			p, err := patient.NewProfile(patient.Male, 70, tt.race, 400, reg)
			if err != nil {
				t.Fatal(err)
			}
			m, err := NewModel(p, Uncertainty{}, nil)
			if err != nil {
				t.Fatal(err)
			}
			necessary, err := m.IsNecessary()
			if err != nil {
				t.Fatal(err)
			}
			if necessary {
				t.Fatalf("onset of 400 minutes is past every window")
			}
			if got := m.CutoffStrategy().Kind; got != tt.kind {
				t.Errorf("CutoffStrategy() = %s, want %s", got, tt.kind)
			}
		})
	}
}

func TestModel_MissingTimingIsReported(t *testing.T) {
	reg := geography.NewRegistry()
	reg.AddPrimary("Primary", geography.WithTime(30))
	reg.AddBare("Bare Comprehensive", geography.Comprehensive, geography.WithTime(40))
	p, err := patient.NewProfile(patient.Male, 70, 6, 30, reg)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewModel(p, Uncertainty{}, nil); !errors.Is(err, geography.ErrMissingTiming) {
		t.Errorf("expected ErrMissingTiming, got %v", err)
	}
}

func TestModel_UncertaintyNeedsSource(t *testing.T) {
	p, _, _ := baseCase(t, 60)
	if _, err := NewModel(p, Uncertainty{Time: true}, nil); err == nil {
		t.Errorf("expected an error without a random source")
	}
}

func TestModel_TimeUncertaintyStaysInQuartiles(t *testing.T) {
	p, prim, comp := baseCase(t, 60)
	rng := random.New(3)
	for i := 0; i < 200; i++ {
		m, err := NewModel(p, Uncertainty{Time: true}, rng)
		if err != nil {
			t.Fatal(err)
		}
		dtn, _ := m.times.DoorToNeedle(prim)
		dtp, _ := m.times.DoorToPuncture(comp)
		if dtn < 47 || dtn > 83 {
			t.Fatalf("door-to-needle %v outside [47, 83]", dtn)
		}
		if dtp < 83 || dtp > 192 {
			t.Fatalf("door-to-puncture %v outside [83, 192]", dtp)
		}
		if m.PLVO() != lvoCentral.at(7) {
			t.Fatalf("P(LVO) must stay central without LVO uncertainty")
		}
	}
}

func TestPLVO_UncertaintyBand(t *testing.T) {
	rng := random.New(11)
	for race := 0.0; race <= 9; race++ {
		lo, hi := lvoLow.at(race), lvoHigh.at(race)
		for i := 0; i < 50; i++ {
			v := PLVO(race, rng)
			if v < min(lo, hi) || v > max(lo, hi) {
				t.Fatalf("P(LVO) %v outside band [%v, %v] at RACE %v", v, lo, hi, race)
			}
		}
	}
}

func TestCurves(t *testing.T) {
	nihss := -0.39 + 2.39*7
	if got := PGoodThrombolysis(300, nihss); math.Abs(got-0.26208560000000003) > tolerance {
		t.Errorf("past the window the baseline applies, got %v", got)
	}
	if got := PGoodThrombolysis(100, nihss); math.Abs(got-0.38438434977118396) > tolerance {
		t.Errorf("unexpected adjusted probability %v", got)
	}
	if got := PGoodNoReperfusion(25); got != 0.05 {
		t.Errorf("expected the 0.05 floor for NIHSS >= 20, got %v", got)
	}
	if got := PGoodNoReperfusion(10); math.Abs(got-(1.0071-0.464)) > tolerance {
		t.Errorf("unexpected linear value %v", got)
	}
	if PGoodPostReperfusion(100, nihss) <= PGoodPostReperfusion(300, nihss) {
		t.Errorf("earlier reperfusion must not be worse")
	}
}
