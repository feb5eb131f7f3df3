package geography

import (
	"fmt"
	"math"
	"sort"
)

// Registry is the arena owning every center of a scenario. Ids are insertion indices and never change.
// It is mutated while a scenario is assembled and treated as read-only once a simulation starts.
type Registry struct {
	centers []Center
}

func NewRegistry() *Registry {
	return &Registry{}
}

// CenterOption customises a center at insertion.
type CenterOption func(*Center)

// WithShortName overrides the short display name (defaults to the full name).
func WithShortName(name string) CenterOption {
	return func(c *Center) { c.ShortName = name }
}

// WithTime sets the travel time from the incident location.
func WithTime(minutes float64) CenterOption {
	return func(c *Center) { c.Time = ReachableAt(minutes) }
}

// WithDoorToNeedle overrides the default thrombolysis timing distribution.
func WithDoorToNeedle(d TimeDistribution) CenterOption {
	return func(c *Center) { c.doorToNeedle = &d }
}

// WithDoorToPuncture overrides the default endovascular timing distribution.
// It is ignored for primary centers.
func WithDoorToPuncture(d TimeDistribution) CenterOption {
	return func(c *Center) {
		if c.Type == Comprehensive {
			c.doorToPuncture = &d
		}
	}
}

// AddPrimary inserts a primary center with the default door-to-needle distribution.
func (r *Registry) AddPrimary(fullName string, opts ...CenterOption) CenterID {
	dtn := DefaultDoorToNeedlePrimary
	return r.add(Center{
		FullName:     fullName,
		ShortName:    fullName,
		Type:         Primary,
		doorToNeedle: &dtn,
	}, opts)
}

// AddComprehensive inserts a comprehensive center with default needle and puncture distributions.
func (r *Registry) AddComprehensive(fullName string, opts ...CenterOption) CenterID {
	dtn := DefaultDoorToNeedleComprehensive
	dtp := DefaultDoorToPuncture
	return r.add(Center{
		FullName:       fullName,
		ShortName:      fullName,
		Type:           Comprehensive,
		doorToNeedle:   &dtn,
		doorToPuncture: &dtp,
	}, opts)
}

// AddBare inserts a center without any timing distributions. Used for centers whose timings are
// supplied later or never, e.g. imported directories.
func (r *Registry) AddBare(fullName string, t CenterType, opts ...CenterOption) CenterID {
	return r.add(Center{FullName: fullName, ShortName: fullName, Type: t}, opts)
}

func (r *Registry) add(c Center, opts []CenterOption) CenterID {
	c.ID = CenterID(len(r.centers))
	for _, opt := range opts {
		opt(&c)
	}
	r.centers = append(r.centers, c)
	return c.ID
}

// Get returns a snapshot of the center with the given id.
func (r *Registry) Get(id CenterID) (Center, error) {
	if id < 0 || int(id) >= len(r.centers) {
		return Center{}, fmt.Errorf("%w: %d", ErrUnknownCenter, id)
	}
	return r.centers[id], nil
}

// MustGet is Get for ids produced by this registry. An unknown id is a programming error.
func (r *Registry) MustGet(id CenterID) Center {
	c, err := r.Get(id)
	if err != nil {
		panic(err)
	}
	return c
}

func (r *Registry) Len() int {
	return len(r.centers)
}

// SetTransfer designates the drip-and-ship destination of a primary center.
func (r *Registry) SetTransfer(primary, destination CenterID, minutes float64) error {
	if minutes < 0 || math.IsNaN(minutes) || math.IsInf(minutes, 0) {
		return fmt.Errorf("%w: transfer time %v", ErrInvalidTiming, minutes)
	}
	p, err := r.Get(primary)
	if err != nil {
		return err
	}
	if !p.IsPrimary() {
		return fmt.Errorf("%w: %q is %s, transfers start at primary centers", ErrCenterType, p.ShortName, p.Type)
	}
	d, err := r.Get(destination)
	if err != nil {
		return err
	}
	if !d.IsComprehensive() {
		return fmt.Errorf("%w: %q is %s", ErrTransferTarget, d.ShortName, d.Type)
	}
	r.centers[primary].transfer = &Transfer{Destination: destination, Minutes: minutes}
	return nil
}

// SetTime assigns a single center's travel time.
func (r *Registry) SetTime(id CenterID, reach Reachability) error {
	if _, err := r.Get(id); err != nil {
		return err
	}
	r.centers[id].Time = reach
	return nil
}

// SetTimes bulk-assigns travel times from an external lookup. Centers without an entry become
// NotReachable and drop out of the candidate set.
func (r *Registry) SetTimes(lookup map[CenterID]float64) {
	for i := range r.centers {
		if minutes, ok := lookup[r.centers[i].ID]; ok {
			r.centers[i].Time = ReachableAt(minutes)
		} else {
			r.centers[i].Time = NotReachable()
		}
	}
}

// Reachable returns the centers of type t that have a travel time, ordered by id.
func (r *Registry) Reachable(t CenterType) []Center {
	var out []Center
	for _, c := range r.centers {
		if c.Type == t && c.Time.IsReachable() {
			out = append(out, c)
		}
	}
	return out
}

// Nearest returns the reachable center of type t with the minimum travel time. Ties go to the lower id.
func (r *Registry) Nearest(t CenterType) (Center, bool) {
	candidates := r.Reachable(t)
	if len(candidates) == 0 {
		return Center{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		ti, _ := candidates[i].Time.Minutes()
		tj, _ := candidates[j].Time.Minutes()
		return ti < tj
	})
	return candidates[0], true
}

// Clone returns an independent copy so a running simulation never observes later edits.
func (r *Registry) Clone() *Registry {
	out := &Registry{centers: make([]Center, len(r.centers))}
	copy(out.centers, r.centers)
	return out
}
