package random

import (
	"sync"
	"testing"
)

func TestSource_Ranges(t *testing.T) {
	src := New(42)
	minInt, maxInt := 100, -1
	minF, maxF := 2.0, -1.0

	for i := 0; i < 10_000; i++ {
		n := src.IntN(10)
		if n < 0 || n >= 10 {
			t.Fatalf("IntN(10) out of range: %d", n)
		}
		minInt = min(minInt, n)
		maxInt = max(maxInt, n)

		f := src.Float64()
		if f < 0 || f >= 1 {
			t.Fatalf("Float64() out of range: %v", f)
		}
		minF = min(minF, f)
		maxF = max(maxF, f)
	}

	if minInt != 0 || maxInt != 9 {
		t.Errorf("expected IntN to cover [0, 9], got [%d, %d]", minInt, maxInt)
	}
	if minF > 1e-2 || maxF < 1-1e-2 {
		t.Errorf("expected Float64 to cover the unit interval, got [%v, %v]", minF, maxF)
	}
}

func TestSource_SeedIsReproducible(t *testing.T) {
	a, b := New(7), New(7)
	for i := 0; i < 100; i++ {
		if a.Float64() != b.Float64() {
			t.Fatalf("draw %d differs between equally seeded sources", i)
		}
	}
}

func TestLocked_ConcurrentUse(t *testing.T) {
	l := NewLocked(New(1))
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				_ = l.Float64()
				_ = l.IntN(5)
				_ = l.Uint64()
			}
		}()
	}
	wg.Wait()
}

func TestFixed_Cycles(t *testing.T) {
	f := &Fixed{Values: []float64{0.1, 0.99}}
	if got := f.Float64(); got != 0.1 {
		t.Errorf("expected 0.1, got %v", got)
	}
	if got := f.IntN(10); got != 9 {
		t.Errorf("expected 9, got %d", got)
	}
	if got := f.Float64(); got != 0.1 {
		t.Errorf("expected the sequence to wrap, got %v", got)
	}
}
