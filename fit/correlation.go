package fit

import (
	"math"
	"time"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-bath/exponent"
)

// defaultCorrelationRMSE is the normalized RMSE below which the automatic
// term count search of a correlation function fit stops.
const defaultCorrelationRMSE = 2e-5

// CorrelationFitter approximates a sampled correlation function with a sum
// of damped oscillations,
//
//	C(t) = Σ_k (a_k + i·d_k)·e^(b_k·t)·e^(i·c_k·t)
//
// fitting the real and imaginary parts independently. The d amplitudes are
// only used with [WithFullAnsatz].
//
// A fitter remembers its most recent result (see
// [CorrelationFitter.LastResult]) and is therefore not safe for concurrent
// Fit calls on the same instance.
type CorrelationFitter struct {
	t    float64
	ts   []float64
	cs   []complex128
	last *CorrelationResult
}

// NewCorrelationFitter builds a fitter for the correlation samples cs on
// the time axis ts, which must cover t >= 0.
func NewCorrelationFitter(T float64, ts []float64, cs []complex128) (*CorrelationFitter, error) {
	if len(ts) != len(cs) {
		return nil, ErrLengthMismatch
	}
	if len(ts) == 0 {
		return nil, ErrNoSamples
	}
	return &CorrelationFitter{t: T, ts: ts, cs: cs}, nil
}

// Terms holds the fitted parameters of one channel, one entry per term.
// D is nil unless the fit used the full ansatz.
type Terms struct {
	A, B, C, D []float64
}

// CorrelationResult holds a fitted correlation function and its
// diagnostics for both channels.
type CorrelationResult struct {
	// Bath is the exponential bath assembled from the fitted terms.
	Bath *exponent.Bath

	// Real and Imag are the fitted parameters of the two channels.
	Real, Imag Terms

	// RMSEReal and RMSEImag are the achieved normalized errors per
	// channel. Values above the requested target mean the term count
	// search ran out of orders; the result is still the best fit found.
	RMSEReal, RMSEImag float64

	// Nr and Ni are the term counts of the two channels.
	Nr, Ni int

	ElapsedReal, ElapsedImag time.Duration
	Summary                  string
}

// Fit runs independent fits of the real and imaginary parts and assembles
// the result into an exponential bath of conjugate pairs. Term counts are
// selected automatically unless [WithOrders] is given.
func (f *CorrelationFitter) Fit(opts ...Option) (*CorrelationResult, error) {
	cfg := applyOptions(opts)
	if cfg.target == 0 {
		cfg.target = defaultCorrelationRMSE
	}
	nper := 3
	if cfg.fullAnsatz {
		nper = 4
	}
	if cfg.guess != nil && !cfg.guess.valid(nper) {
		return nil, ErrInvalidGuess
	}

	re := make([]float64, len(f.cs))
	im := make([]float64, len(f.cs))
	for i, c := range f.cs {
		re[i] = real(c)
		im[i] = imag(c)
	}

	startR := time.Now()
	pr, nr, rmseR, err := runFit(re, cfg.target, cfg.order, cfg.orderCap,
		f.setup(re, nper, false, cfg.guess))
	if err != nil {
		return nil, err
	}
	elapsedR := time.Since(startR)

	startI := time.Now()
	pi, ni, rmseI, err := runFit(im, cfg.target, cfg.orderImag, cfg.orderCap,
		f.setup(im, nper, true, cfg.guess))
	if err != nil {
		return nil, err
	}
	elapsedI := time.Since(startI)

	tr := unpackTerms(pr, nr, nper)
	ti := unpackTerms(pi, ni, nper)

	bath, err := assembleBath(tr, ti, f.t, cfg)
	if err != nil {
		return nil, err
	}

	cols := []string{"a", "b", "c"}
	if cfg.fullAnsatz {
		cols = append(cols, "d")
	}
	summary := "Real part:\n" +
		summarize("correlation function", rmseR, elapsedR, cols, tr.columns(cfg.fullAnsatz)...) +
		"\nImaginary part:\n" +
		summarize("correlation function", rmseI, elapsedI, cols, ti.columns(cfg.fullAnsatz)...)

	res := &CorrelationResult{
		Bath:        bath,
		Real:        tr,
		Imag:        ti,
		RMSEReal:    rmseR,
		RMSEImag:    rmseI,
		Nr:          nr,
		Ni:          ni,
		ElapsedReal: elapsedR,
		ElapsedImag: elapsedI,
		Summary:     summary,
	}
	f.last = res
	return res, nil
}

// LastResult returns the result of the most recent successful Fit call,
// or nil when Fit has not succeeded yet.
func (f *CorrelationFitter) LastResult() *CorrelationResult { return f.last }

// setup builds the per-channel ansatz. The real part of each term is
// e^(bt)·(a·cos(ct) - d·sin(ct)), the imaginary part
// e^(bt)·(a·sin(ct) + d·cos(ct)).
func (f *CorrelationFitter) setup(y []float64, nper int, imagPart bool, guess *Guess) setup {
	ymax := math.Max(math.Abs(floats.Max(y)), math.Abs(floats.Min(y)))
	if ymax == 0 {
		ymax = 1
	}
	span := f.ts[len(f.ts)-1] - f.ts[0]
	if span <= 0 {
		span = 1
	}
	wc := 2 * math.Pi / span

	scratch := make([]float64, len(f.ts))
	return func(n int) (model, []float64, []float64, []float64) {
		m := func(p, dst []float64) {
			clear(dst)
			for i := 0; i < n; i++ {
				a, b, c := p[i], p[n+i], p[2*n+i]
				d := 0.0
				if nper == 4 {
					d = p[3*n+i]
				}
				for k, t := range f.ts {
					e := math.Exp(b * t)
					if imagPart {
						scratch[k] = e * (a*math.Sin(c*t) + d*math.Cos(c*t))
					} else {
						scratch[k] = e * (a*math.Cos(c*t) - d*math.Sin(c*t))
					}
				}
				vecmath.AddBlockInPlace(dst, scratch)
			}
		}
		if guess != nil {
			return m, spread(guess.Start, n), replicate(guess.Lower, n), replicate(guess.Upper, n)
		}
		start := []float64{ymax, -wc, wc}
		lower := []float64{-20 * ymax, -100 * wc, -100 * wc}
		upper := []float64{20 * ymax, 0, 100 * wc}
		if nper == 4 {
			start = append(start, 0)
			lower = append(lower, -20*ymax)
			upper = append(upper, 20*ymax)
		}
		return m, spread(start, n), replicate(lower, n), replicate(upper, n)
	}
}

func unpackTerms(p []float64, n, nper int) Terms {
	t := Terms{A: p[:n], B: p[n : 2*n], C: p[2*n : 3*n]}
	if nper == 4 {
		t.D = p[3*n:]
	}
	return t
}

func (t Terms) columns(full bool) [][]float64 {
	if full {
		return [][]float64{t.A, t.B, t.C, t.D}
	}
	return [][]float64{t.A, t.B, t.C}
}

// assembleBath converts fitted oscillation terms into conjugate exponent
// pairs. The 0.5 factors split each cosine and sine into two complex
// exponentials.
func assembleBath(re, im Terms, T float64, cfg config) (*exponent.Bath, error) {
	nr, ni := len(re.A), len(im.A)
	ckReal := make([]complex128, 0, 2*nr)
	vkReal := make([]complex128, 0, 2*nr)
	for i := 0; i < nr; i++ {
		ck := 0.5 * complex(re.A[i], re.dval(i))
		ckReal = append(ckReal, ck)
		vkReal = append(vkReal, complex(-re.B[i], -re.C[i]))
	}
	for i := 0; i < nr; i++ {
		ckReal = append(ckReal, 0.5*complex(re.A[i], -re.dval(i)))
		vkReal = append(vkReal, complex(-re.B[i], re.C[i]))
	}

	ckImag := make([]complex128, 0, 2*ni)
	vkImag := make([]complex128, 0, 2*ni)
	for i := 0; i < ni; i++ {
		ckImag = append(ckImag, -0.5i*complex(im.A[i], im.dval(i)))
		vkImag = append(vkImag, complex(-im.B[i], -im.C[i]))
	}
	for i := 0; i < ni; i++ {
		ckImag = append(ckImag, 0.5i*complex(im.A[i], -im.dval(i)))
		vkImag = append(vkImag, complex(-im.B[i], im.C[i]))
	}

	return exponent.NewBath(cfg.coupling, ckReal, vkReal, ckImag, vkImag,
		exponent.WithTemperature(T), exponent.WithTag(cfg.tag))
}

// dval returns the full-ansatz amplitude of term i, zero when the reduced
// ansatz was fitted.
func (t Terms) dval(i int) float64 {
	if t.D == nil {
		return 0
	}
	return t.D[i]
}
