package transform

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/interp"
)

// Interpolation errors.
var (
	ErrLengthMismatch = errors.New("transform: sample and axis lengths differ")
	ErrTooFewSamples  = errors.New("transform: too few samples for cubic interpolation")
	ErrUnsortedAxis   = errors.New("transform: axis values must be strictly increasing")
)

// Spline fits a not-a-knot cubic spline through (xs, ys) and returns a
// callable. Outside the sampled domain the spline is continued linearly
// using the boundary derivative, which keeps extrapolated tails from
// blowing up the way the boundary cubic would.
func Spline(xs, ys []float64) (func(float64) float64, error) {
	if len(xs) != len(ys) {
		return nil, ErrLengthMismatch
	}
	if len(xs) < 4 {
		return nil, ErrTooFewSamples
	}
	for i := 1; i < len(xs); i++ {
		if !(xs[i] > xs[i-1]) {
			return nil, ErrUnsortedAxis
		}
	}

	var cubic interp.NotAKnotCubic
	if err := cubic.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("transform: spline fit failed: %w", err)
	}

	x0, xn := xs[0], xs[len(xs)-1]
	y0, yn := ys[0], ys[len(ys)-1]
	d0 := cubic.PredictDerivative(x0)
	dn := cubic.PredictDerivative(xn)

	return func(x float64) float64 {
		switch {
		case x < x0:
			return y0 + d0*(x-x0)
		case x > xn:
			return yn + dn*(x-xn)
		default:
			return cubic.Predict(x)
		}
	}, nil
}

// ComplexSpline fits independent cubic splines through the real and
// imaginary parts of ys and composes them into one complex-valued callable.
func ComplexSpline(xs []float64, ys []complex128) (func(float64) complex128, error) {
	if len(xs) != len(ys) {
		return nil, ErrLengthMismatch
	}

	re := make([]float64, len(ys))
	im := make([]float64, len(ys))
	for i, v := range ys {
		re[i] = real(v)
		im[i] = imag(v)
	}

	reFn, err := Spline(xs, re)
	if err != nil {
		return nil, err
	}
	imFn, err := Spline(xs, im)
	if err != nil {
		return nil, err
	}

	return func(x float64) complex128 {
		return complex(reFn(x), imFn(x))
	}, nil
}

// sortedByAxis sorts (xs, ys) jointly by xs, in place.
func sortedByAxis(xs, ys []float64) {
	idx := make([]int, len(xs))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool { return xs[idx[i]] < xs[idx[j]] })

	sx := make([]float64, len(xs))
	sy := make([]float64, len(ys))
	for i, k := range idx {
		sx[i] = xs[k]
		sy[i] = ys[k]
	}
	copy(xs, sx)
	copy(ys, sy)
}
