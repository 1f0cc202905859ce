package leastsq

import (
	"math"
	"testing"
)

// expModel generates y = a*exp(b*x) samples for the recovery tests.
func expData(a, b float64, n int) (xs, ys []float64) {
	xs = make([]float64, n)
	ys = make([]float64, n)
	for i := range xs {
		xs[i] = float64(i) * 0.1
		ys[i] = a * math.Exp(b*xs[i])
	}
	return
}

func TestSolveRecoversExponential(t *testing.T) {
	xs, ys := expData(2.5, -1.3, 50)

	p := Problem{
		M: len(xs),
		F: func(params, dst []float64) {
			for i, x := range xs {
				dst[i] = params[0]*math.Exp(params[1]*x) - ys[i]
			}
		},
	}

	params, cost, err := Solve(p, []float64{1, -0.5}, Options{})
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if math.Abs(params[0]-2.5) > 1e-6 || math.Abs(params[1]+1.3) > 1e-6 {
		t.Fatalf("parameters not recovered: got %v", params)
	}
	if cost > 1e-12 {
		t.Fatalf("cost too high: %g", cost)
	}
}

func TestSolveRespectsBounds(t *testing.T) {
	xs, ys := expData(2.5, -1.3, 50)

	p := Problem{
		M:     len(xs),
		Lower: []float64{0, -1},
		Upper: []float64{2, 0},
		F: func(params, dst []float64) {
			for i, x := range xs {
				dst[i] = params[0]*math.Exp(params[1]*x) - ys[i]
			}
		},
	}

	params, _, err := Solve(p, []float64{1, -0.5}, Options{})
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if params[0] < 0 || params[0] > 2 || params[1] < -1 || params[1] > 0 {
		t.Fatalf("bounds violated: got %v", params)
	}
}

func TestSolveTwoTermSum(t *testing.T) {
	xs := make([]float64, 80)
	ys := make([]float64, 80)
	for i := range xs {
		xs[i] = float64(i) * 0.05
		ys[i] = 1.5*math.Exp(-0.7*xs[i]) + 0.5*math.Exp(-3.0*xs[i])
	}

	p := Problem{
		M: len(xs),
		F: func(params, dst []float64) {
			for i, x := range xs {
				dst[i] = params[0]*math.Exp(-params[1]*x) +
					params[2]*math.Exp(-params[3]*x) - ys[i]
			}
		},
	}

	_, cost, err := Solve(p, []float64{1, 1, 1, 2}, Options{})
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if cost > 1e-10 {
		t.Fatalf("cost too high: %g", cost)
	}
}

func TestSolveValidation(t *testing.T) {
	p := Problem{M: 1, F: func(params, dst []float64) { dst[0] = params[0] }}
	if _, _, err := Solve(p, []float64{1, 2}, Options{}); err == nil {
		t.Fatal("expected error for underdetermined problem")
	}

	p = Problem{
		M:     3,
		Lower: []float64{0},
		F:     func(params, dst []float64) {},
	}
	if _, _, err := Solve(p, []float64{1, 2}, Options{}); err == nil {
		t.Fatal("expected error for bound length mismatch")
	}
}
