package transform

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"
)

// Fourier transform errors.
var (
	ErrBadWindow = errors.New("transform: fourier window and step must be positive")
	ErrTinyGrid  = errors.New("transform: fourier grid too small, decrease dt or increase t0")
)

// PowerFromCorrelation computes the power spectrum
//
//	S(w) = integral C(t) e^{iwt} dt
//
// from the correlation function by a windowed FFT over [-t0, t0) with step
// dt, and returns a real-valued interpolant of S on the FFT frequency grid.
//
// The window half-width t0 must be large enough for C to have decayed and
// dt small enough that the highest frequency of interest stays below the
// grid Nyquist limit pi/dt; both are accuracy/cost trade-offs owned by the
// caller. The time grid is rounded up to a power of two, which widens the
// effective window slightly but never narrows it.
func PowerFromCorrelation(cf func(float64) complex128, t0, dt float64) (func(float64) float64, error) {
	if t0 <= 0 || dt <= 0 {
		return nil, ErrBadWindow
	}

	n := nextPow2(int(math.Ceil(2 * t0 / dt)))
	if n < 8 {
		return nil, ErrTinyGrid
	}

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, fmt.Errorf("transform: failed to create FFT plan: %w", err)
	}

	// Effective window [-half, half) with half = n*dt/2. Keeping the grid
	// aligned this way makes the negative-frequency phase factor exact.
	half := float64(n) * dt / 2

	samples := make([]complex128, n)
	for i := range samples {
		samples[i] = cf(-half + float64(i)*dt)
	}

	spec := make([]complex128, n)
	if err := plan.Inverse(spec, samples); err != nil {
		return nil, fmt.Errorf("transform: inverse FFT failed: %w", err)
	}

	// S(w_k) = dt e^{-i w_k t0} sum_n C_n e^{2 pi i k n / N}, where the
	// inverse transform supplies the sum up to a factor of N. Frequencies
	// above the midpoint wrap to the negative axis.
	ws := make([]float64, n)
	ss := make([]float64, n)
	scale := complex(dt*float64(n), 0)
	for k := 0; k < n; k++ {
		w := 2 * math.Pi * float64(k) / (float64(n) * dt)
		if k > n/2 {
			w -= 2 * math.Pi / dt
		}
		v := scale * spec[k] * cmplx.Exp(complex(0, -w*half))
		ws[k] = w
		ss[k] = real(v)
	}

	sortedByAxis(ws, ss)

	out, err := Spline(ws, ss)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
