package stats

import (
	"testing"
)

func TestCalculateMedianContinuous(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"Empty", []float64{}, 0},
		{"SingleItem", []float64{5.5}, 5.5},
		{"OddCount", []float64{1.1, 3.3, 2.2, 4.4, 5.5}, 3.3},
		{"EvenCount", []float64{1.1, 2.2, 3.3, 4.4}, 2.75},
		{"Unsorted", []float64{10.5, 2.5, 8.5, 4.5, 6.5}, 6.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateMedianContinuous(tt.values); got != tt.expected {
				t.Errorf("CalculateMedianContinuous() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCalculatePercentile(t *testing.T) {
	values := []float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}
	tests := []struct {
		name     string
		p        float64
		expected float64
	}{
		{"P10", 0.10, 2},
		{"P50", 0.50, 6},
		{"P90", 0.90, 10},
		{"P100Clamped", 1.0, 10},
		{"P0", 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculatePercentile(values, tt.p); got != tt.expected {
				t.Errorf("CalculatePercentile(%v) = %v, want %v", tt.p, got, tt.expected)
			}
		})
	}

	if got := CalculatePercentile(nil, 0.5); got != 0 {
		t.Errorf("CalculatePercentile(nil) = %v, want 0", got)
	}
	if values[0] != 10 {
		t.Error("CalculatePercentile mutated its input")
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if s.N != 8 || s.Mean != 5 || s.StdDev != 2 {
		t.Errorf("Summarize() = %+v, want N=8 Mean=5 StdDev=2", s)
	}
	if s.Median != 4.5 {
		t.Errorf("Median = %v, want 4.5", s.Median)
	}
	if s.P10 != 2 || s.P90 != 9 {
		t.Errorf("P10/P90 = %v/%v, want 2/9", s.P10, s.P90)
	}
	if (Summarize(nil) != Spread{}) {
		t.Error("Summarize(nil) should be the zero Spread")
	}
}
