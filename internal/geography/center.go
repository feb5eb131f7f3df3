package geography

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrUnknownCenter  = errors.New("unknown center")
	ErrCenterType     = errors.New("center has the wrong type")
	ErrTransferTarget = errors.New("transfer destination must be a comprehensive center")
	ErrMissingTiming  = errors.New("missing timing data")
	ErrInvalidTiming  = errors.New("invalid timing")
)

// CenterID is the stable arena index assigned when a center is added to a Registry.
type CenterID int

// CenterType distinguishes thrombolysis-only centers from centers that can also perform thrombectomy.
type CenterType int

const (
	Primary CenterType = iota
	Comprehensive
)

func (t CenterType) String() string {
	switch t {
	case Primary:
		return "Primary"
	case Comprehensive:
		return "Comprehensive"
	default:
		return fmt.Sprintf("CenterType(%d)", int(t))
	}
}

// Reachability is either NotReachable or ReachableAt(minutes). The zero value is NotReachable.
type Reachability struct {
	reachable bool
	minutes   float64
}

func NotReachable() Reachability {
	return Reachability{}
}

func ReachableAt(minutes float64) Reachability {
	return Reachability{reachable: true, minutes: minutes}
}

// Minutes returns the travel time and whether the center participates at all.
func (r Reachability) Minutes() (float64, bool) {
	return r.minutes, r.reachable
}

func (r Reachability) IsReachable() bool {
	return r.reachable
}

// TimeDistribution summarises a door-to-treatment interval by its quartiles, in minutes.
type TimeDistribution struct {
	FirstQuartile float64 `json:"q1"`
	Median        float64 `json:"median"`
	ThirdQuartile float64 `json:"q3"`
}

// Validate requires 0 <= Q1 <= median <= Q3.
func (d TimeDistribution) Validate() error {
	for _, v := range []float64{d.FirstQuartile, d.Median, d.ThirdQuartile} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: quartiles %v/%v/%v must be finite and non-negative",
				ErrInvalidTiming, d.FirstQuartile, d.Median, d.ThirdQuartile)
		}
	}
	if d.FirstQuartile > d.Median || d.Median > d.ThirdQuartile {
		return fmt.Errorf("%w: quartiles %v/%v/%v are out of order",
			ErrInvalidTiming, d.FirstQuartile, d.Median, d.ThirdQuartile)
	}
	return nil
}

// Draw returns the median when u is nil, otherwise Q1 + u*(Q3-Q1).
func (d TimeDistribution) Draw(u *float64) float64 {
	if u == nil {
		return d.Median
	}
	return d.FirstQuartile + *u*(d.ThirdQuartile-d.FirstQuartile)
}

var (
	DefaultDoorToNeedlePrimary       = TimeDistribution{FirstQuartile: 47, Median: 61, ThirdQuartile: 83}
	DefaultDoorToNeedleComprehensive = TimeDistribution{FirstQuartile: 39, Median: 52, ThirdQuartile: 70}
	DefaultDoorToPuncture            = TimeDistribution{FirstQuartile: 83, Median: 145, ThirdQuartile: 192}
)

// Transfer is a primary center's designated drip-and-ship route.
type Transfer struct {
	Destination CenterID
	Minutes     float64
}

// Center is a value snapshot of one arena entry. Cross references are ids into the same Registry.
type Center struct {
	ID        CenterID
	ShortName string
	FullName  string
	Type      CenterType
	Time      Reachability

	transfer       *Transfer
	doorToNeedle   *TimeDistribution
	doorToPuncture *TimeDistribution
}

func (c Center) IsPrimary() bool {
	return c.Type == Primary
}

func (c Center) IsComprehensive() bool {
	return c.Type == Comprehensive
}

// Transfer reports the designated transfer route, if any.
func (c Center) Transfer() (Transfer, bool) {
	if c.transfer == nil {
		return Transfer{}, false
	}
	return *c.transfer, true
}

// DoorToNeedle returns the thrombolysis timing distribution.
func (c Center) DoorToNeedle() (TimeDistribution, error) {
	if c.doorToNeedle == nil {
		return TimeDistribution{}, fmt.Errorf("%w: door-to-needle for %q", ErrMissingTiming, c.ShortName)
	}
	return *c.doorToNeedle, nil
}

// DoorToPuncture returns the endovascular timing distribution. Only comprehensive centers carry one.
func (c Center) DoorToPuncture() (TimeDistribution, error) {
	if c.doorToPuncture == nil {
		return TimeDistribution{}, fmt.Errorf("%w: door-to-puncture for %q", ErrMissingTiming, c.ShortName)
	}
	return *c.doorToPuncture, nil
}
