package testutil

import (
	"math"
	"testing"
)

func TestMaxAbsDiff(t *testing.T) {
	d, err := MaxAbsDiff([]float64{1, 2, 3}, []float64{1, 2.5, 2})
	if err != nil {
		t.Fatalf("MaxAbsDiff failed: %v", err)
	}
	if math.Abs(d-1) > 1e-15 {
		t.Fatalf("got %v, want 1", d)
	}

	if _, err := MaxAbsDiff([]float64{1}, []float64{1, 2}); err == nil {
		t.Fatal("expected length mismatch error")
	}
}

func TestLinspace(t *testing.T) {
	got := Linspace(0, 1, 5)
	want := []float64{0, 0.25, 0.5, 0.75, 1}
	RequireSliceNearlyEqual(t, got, want, 1e-15)

	if one := Linspace(3, 7, 1); one[0] != 3 {
		t.Fatalf("single-point linspace: got %v", one[0])
	}
}
