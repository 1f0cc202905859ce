package fit

import (
	"math/cmplx"
	"time"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-bath/env"
	"github.com/cwbudde/algo-bath/exponent"
)

// defaultSpectralRMSE is the normalized RMSE below which the automatic
// term count search of a spectral density fit stops.
const defaultSpectralRMSE = 5e-6

// SpectralFitter approximates a sampled spectral density with a sum of
// underdamped modes in Meier-Tannor form,
//
//	J(w) = Σ_i 2·a_i·b_i·w / (((w+c_i)² + b_i²)·((w-c_i)² + b_i²))
//
// and expands each fitted mode into its Matsubara exponents.
//
// A fitter remembers its most recent result (see [SpectralFitter.LastResult])
// and is therefore not safe for concurrent Fit calls on the same instance.
type SpectralFitter struct {
	t    float64
	ws   []float64
	js   []float64
	last *SpectralResult
}

// NewSpectralFitter builds a fitter for the spectral density samples js on
// the frequency axis ws. The axis should cover at least twice the cutoff
// frequency of the density being fitted.
func NewSpectralFitter(T float64, ws, js []float64) (*SpectralFitter, error) {
	if len(ws) != len(js) {
		return nil, ErrLengthMismatch
	}
	if len(ws) == 0 {
		return nil, ErrNoSamples
	}
	return &SpectralFitter{t: T, ws: ws, js: js}, nil
}

// SpectralResult holds a fitted spectral density and its diagnostics.
type SpectralResult struct {
	// Bath is the exponential bath assembled from the fitted modes.
	Bath *exponent.Bath

	// A, B and C are the fitted Meier-Tannor parameters, one entry per
	// mode.
	A, B, C []float64

	// RMSE is the achieved normalized root mean squared error. A value
	// above the requested target means the term count search ran out of
	// orders; the result is still the best fit found.
	RMSE float64

	// N is the number of fitted modes and Nk the number of Matsubara terms
	// each mode was expanded with.
	N, Nk int

	Elapsed time.Duration
	Summary string
}

// Fit runs the fit and expands the result into an exponential bath.
// The term count is selected automatically unless [WithOrder] is given.
// It fails with the temperature error of [env.UnderdampedMatsubara] when
// the fitter was built with T = 0.
func (f *SpectralFitter) Fit(opts ...Option) (*SpectralResult, error) {
	cfg := applyOptions(opts)
	if cfg.target == 0 {
		cfg.target = defaultSpectralRMSE
	}
	if cfg.guess != nil && !cfg.guess.valid(3) {
		return nil, ErrInvalidGuess
	}

	start := time.Now()
	params, n, rmse, err := runFit(f.js, cfg.target, cfg.order, cfg.orderCap, f.setup(cfg.guess))
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	a, b, c := params[:n], params[n:2*n], params[2*n:]
	dec := make(exponent.Decomposition, 0, n*(cfg.nk+2)+2*n)
	for i := 0; i < n; i++ {
		// Invert the Meier-Tannor form back to an underdamped mode:
		// lam² = a, gamma = 2b, w0² = c² + b². Negative amplitudes give
		// complex lam, which the expansion supports.
		lam := cmplx.Sqrt(complex(a[i], 0))
		w0 := cmplx.Sqrt(complex(c[i]*c[i]+b[i]*b[i], 0))
		mode, err := env.UnderdampedMatsubara(lam, 2*b[i], w0, f.t, cfg.nk)
		if err != nil {
			return nil, err
		}
		dec = append(dec, mode...)
	}

	bath := exponent.FromDecomposition(cfg.coupling, dec,
		exponent.WithTemperature(f.t), exponent.WithTag(cfg.tag))
	res := &SpectralResult{
		Bath:    bath,
		A:       a,
		B:       b,
		C:       c,
		RMSE:    rmse,
		N:       n,
		Nk:      cfg.nk,
		Elapsed: elapsed,
		Summary: summarize("spectral density", rmse, elapsed,
			[]string{"a", "b", "c"}, a, b, c),
	}
	f.last = res
	return res, nil
}

// LastResult returns the result of the most recent successful Fit call,
// or nil when Fit has not succeeded yet.
func (f *SpectralFitter) LastResult() *SpectralResult { return f.last }

func (f *SpectralFitter) setup(guess *Guess) setup {
	maxJ := floats.Max(f.js)
	wc := f.ws[floats.MaxIdx(f.js)]
	if wc <= 0 {
		wc = f.ws[len(f.ws)-1] / 10
	}
	if wc <= 0 {
		wc = 1
	}

	scratch := make([]float64, len(f.ws))
	return func(n int) (model, []float64, []float64, []float64) {
		m := func(p, dst []float64) {
			clear(dst)
			for i := 0; i < n; i++ {
				a, b, c := p[i], p[n+i], p[2*n+i]
				for k, w := range f.ws {
					lo := (w+c)*(w+c) + b*b
					hi := (w-c)*(w-c) + b*b
					scratch[k] = 2 * a * b * w / (lo * hi)
				}
				vecmath.AddBlockInPlace(dst, scratch)
			}
		}
		if guess != nil {
			return m, spread(guess.Start, n), replicate(guess.Lower, n), replicate(guess.Upper, n)
		}
		return m,
			spread([]float64{maxJ, wc, wc}, n),
			replicate([]float64{-100 * maxJ, 0.1 * wc, 0.1 * wc}, n),
			replicate([]float64{100 * maxJ, 100 * wc, 100 * wc}, n)
	}
}
