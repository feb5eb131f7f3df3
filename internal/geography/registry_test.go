package geography

import (
	"errors"
	"math"
	"testing"
)

func TestRegistry_IDsAreInsertionOrder(t *testing.T) {
	r := NewRegistry()
	p := r.AddPrimary("Primary 1")
	c := r.AddComprehensive("Comprehensive 1")

	if p != 0 || c != 1 {
		t.Fatalf("expected ids 0 and 1, got %d and %d", p, c)
	}
	if got := r.MustGet(c).Type; got != Comprehensive {
		t.Errorf("expected Comprehensive, got %s", got)
	}
	if _, err := r.Get(7); !errors.Is(err, ErrUnknownCenter) {
		t.Errorf("expected ErrUnknownCenter, got %v", err)
	}
}

func TestRegistry_SetTransfer(t *testing.T) {
	r := NewRegistry()
	p1 := r.AddPrimary("Primary 1")
	p2 := r.AddPrimary("Primary 2")
	c := r.AddComprehensive("Comprehensive")

	tests := []struct {
		name    string
		from    CenterID
		to      CenterID
		wantErr error
	}{
		{"PrimaryToComprehensive", p1, c, nil},
		{"PrimaryToPrimary", p1, p2, ErrTransferTarget},
		{"ComprehensiveSource", c, c, ErrCenterType},
		{"UnknownDestination", p1, 42, ErrUnknownCenter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.SetTransfer(tt.from, tt.to, 60)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("SetTransfer() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	tr, ok := r.MustGet(p1).Transfer()
	if !ok || tr.Destination != c || tr.Minutes != 60 {
		t.Errorf("unexpected transfer %+v (ok=%v)", tr, ok)
	}
	if _, ok := r.MustGet(p2).Transfer(); ok {
		t.Errorf("Primary 2 should have no transfer destination")
	}
}

func TestRegistry_SetTransferRejectsBadMinutes(t *testing.T) {
	r := NewRegistry()
	p := r.AddPrimary("Primary")
	c := r.AddComprehensive("Comprehensive")

	for _, minutes := range []float64{-1, -500, math.NaN(), math.Inf(1)} {
		if err := r.SetTransfer(p, c, minutes); !errors.Is(err, ErrInvalidTiming) {
			t.Errorf("SetTransfer(%v) error = %v, want ErrInvalidTiming", minutes, err)
		}
	}
	if _, ok := r.MustGet(p).Transfer(); ok {
		t.Error("rejected transfer was stored")
	}
	if err := r.SetTransfer(p, c, 0); err != nil {
		t.Errorf("zero transfer time rejected: %v", err)
	}
}

func TestTimeDistribution_Validate(t *testing.T) {
	tests := []struct {
		name    string
		d       TimeDistribution
		wantErr bool
	}{
		{"Defaults", DefaultDoorToPuncture, false},
		{"Degenerate", TimeDistribution{FirstQuartile: 30, Median: 30, ThirdQuartile: 30}, false},
		{"AllZero", TimeDistribution{}, false},
		{"NegativeQ1", TimeDistribution{FirstQuartile: -5, Median: 30, ThirdQuartile: 40}, true},
		{"Inverted", TimeDistribution{FirstQuartile: -300, Median: -200, ThirdQuartile: -400}, true},
		{"MedianAboveQ3", TimeDistribution{FirstQuartile: 10, Median: 50, ThirdQuartile: 40}, true},
		{"Q1AboveMedian", TimeDistribution{FirstQuartile: 35, Median: 30, ThirdQuartile: 40}, true},
		{"NaN", TimeDistribution{FirstQuartile: 10, Median: math.NaN(), ThirdQuartile: 40}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.d.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidTiming) {
				t.Errorf("error %v does not wrap ErrInvalidTiming", err)
			}
		})
	}
}

func TestRegistry_SetTimesExcludesMissing(t *testing.T) {
	r := NewRegistry()
	p1 := r.AddPrimary("Primary 1", WithTime(10))
	p2 := r.AddPrimary("Primary 2", WithTime(20))
	c := r.AddComprehensive("Comprehensive")

	r.SetTimes(map[CenterID]float64{p2: 35, c: 50})

	if r.MustGet(p1).Time.IsReachable() {
		t.Errorf("Primary 1 has no lookup entry and should be NotReachable")
	}
	primaries := r.Reachable(Primary)
	if len(primaries) != 1 || primaries[0].ID != p2 {
		t.Fatalf("expected only Primary 2 reachable, got %+v", primaries)
	}
	if m, _ := primaries[0].Time.Minutes(); m != 35 {
		t.Errorf("expected 35 minutes, got %v", m)
	}
}

func TestRegistry_NearestTieGoesToLowerID(t *testing.T) {
	r := NewRegistry()
	r.AddPrimary("Far", WithTime(50))
	a := r.AddPrimary("A", WithTime(20))
	r.AddPrimary("B", WithTime(20))

	got, ok := r.Nearest(Primary)
	if !ok || got.ID != a {
		t.Errorf("expected center %d, got %+v", a, got)
	}
	if _, ok := r.Nearest(Comprehensive); ok {
		t.Errorf("no comprehensive center was registered")
	}
}

func TestCenter_TimingDistributions(t *testing.T) {
	r := NewRegistry()
	p := r.MustGet(r.AddPrimary("Primary"))
	c := r.MustGet(r.AddComprehensive("Comprehensive", WithDoorToPuncture(TimeDistribution{100, 120, 140})))
	bare := r.MustGet(r.AddBare("Bare", Comprehensive))

	if _, err := p.DoorToPuncture(); !errors.Is(err, ErrMissingTiming) {
		t.Errorf("primary centers have no puncture timing, got %v", err)
	}
	dtn, err := p.DoorToNeedle()
	if err != nil || dtn != DefaultDoorToNeedlePrimary {
		t.Errorf("unexpected primary door-to-needle %+v (%v)", dtn, err)
	}
	dtp, err := c.DoorToPuncture()
	if err != nil || dtp.Median != 120 {
		t.Errorf("unexpected door-to-puncture %+v (%v)", dtp, err)
	}
	if _, err := bare.DoorToNeedle(); !errors.Is(err, ErrMissingTiming) {
		t.Errorf("bare center should report missing timing, got %v", err)
	}
}

func TestTimeDistribution_Draw(t *testing.T) {
	d := TimeDistribution{FirstQuartile: 40, Median: 50, ThirdQuartile: 80}
	half := 0.5
	zero := 0.0
	one := 1.0

	tests := []struct {
		name string
		u    *float64
		want float64
	}{
		{"Deterministic", nil, 50},
		{"Low", &zero, 40},
		{"Mid", &half, 60},
		{"High", &one, 80},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.Draw(tt.u); got != tt.want {
				t.Errorf("Draw() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRegistry_CloneIsIndependent(t *testing.T) {
	r := NewRegistry()
	p := r.AddPrimary("Primary", WithTime(10))
	clone := r.Clone()

	_ = r.SetTime(p, NotReachable())
	if !clone.MustGet(p).Time.IsReachable() {
		t.Errorf("clone observed an edit made after cloning")
	}
}
