package random

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Source is the uniform variate provider injected into the model.
type Source interface {
	// Float64 returns a uniform draw in [0, 1).
	Float64() float64
	// IntN returns a uniform integer in [0, n). It panics if n <= 0.
	IntN(n int) int
}

// New returns a deterministic PCG-backed source for the given seed.
func New(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewTimeSeeded returns a source seeded from the wall clock.
func NewTimeSeeded() Source {
	return New(uint64(time.Now().UnixNano()))
}

// Locked serialises access to an underlying Source so it can be shared across goroutines.
type Locked struct {
	mu  sync.Mutex
	src Source
}

func NewLocked(src Source) *Locked {
	return &Locked{src: src}
}

func (l *Locked) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Float64()
}

func (l *Locked) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.IntN(n)
}

// Uint64 draws a fresh seed for a derived source.
func (l *Locked) Uint64() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if u, ok := l.src.(interface{ Uint64() uint64 }); ok {
		return u.Uint64()
	}
	return uint64(l.src.Float64() * (1 << 53))
}

// Fixed replays a cyclic sequence of Float64 values. IntN maps the current value onto [0, n).
type Fixed struct {
	Values []float64
	i      int
}

func (f *Fixed) Float64() float64 {
	if len(f.Values) == 0 {
		return 0
	}
	v := f.Values[f.i%len(f.Values)]
	f.i++
	return v
}

func (f *Fixed) IntN(n int) int {
	if n <= 0 {
		panic("random: IntN with non-positive n")
	}
	k := int(f.Float64() * float64(n))
	if k >= n {
		k = n - 1
	}
	return k
}
