package fit

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-bath/internal/leastsq"
)

// Fitter errors.
var (
	// ErrLengthMismatch reports sample and axis slices of different length.
	ErrLengthMismatch = errors.New("fit: sample and axis lengths differ")

	// ErrNoSamples reports an empty data set.
	ErrNoSamples = errors.New("fit: no samples to fit")

	// ErrInvalidGuess reports a guess whose Start, Lower and Upper slices do
	// not all have one entry per term parameter.
	ErrInvalidGuess = errors.New("fit: guess parameter counts differ")
)

// Guess overrides the built-in initial parameters and box bounds of a
// fitter. Start, Lower and Upper hold one entry per term parameter (a, b, c
// and, with the full ansatz, d). The bounds apply to every term; the start
// values are staggered across terms so no two terms begin identical.
type Guess struct {
	Start, Lower, Upper []float64
}

func (g *Guess) valid(nper int) bool {
	return len(g.Start) == nper && len(g.Lower) == nper && len(g.Upper) == nper
}

// Option tunes a fitter.
type Option func(*config)

type config struct {
	coupling   any
	tag        string
	order      int // fixed term count, 0 = automatic
	orderImag  int // fixed term count for the imaginary channel
	orderCap   int
	target     float64 // normalized RMSE target, 0 = fitter default
	nk         int
	tol        float64 // rational approximation tolerance
	fullAnsatz bool
	guess      *Guess
}

func defaultConfig() config {
	return config{orderCap: 10, nk: 1, tol: 1e-6}
}

func applyOptions(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithCoupling attaches an opaque system-side coupling handle to the
// resulting bath.
func WithCoupling(coupling any) Option {
	return func(c *config) { c.coupling = coupling }
}

// WithTag sets the identifier of the resulting bath.
func WithTag(tag string) Option {
	return func(c *config) { c.tag = tag }
}

// WithOrder fixes the number of fit terms instead of selecting it
// automatically. For the correlation fitter it fixes the real channel.
func WithOrder(n int) Option {
	return func(c *config) { c.order = n }
}

// WithOrders fixes the term counts of the real and imaginary channels of a
// correlation fit.
func WithOrders(nr, ni int) Option {
	return func(c *config) { c.order = nr; c.orderImag = ni }
}

// WithOrderCap bounds the automatic term count search. Default 10.
func WithOrderCap(n int) Option {
	return func(c *config) { c.orderCap = n }
}

// WithTargetRMSE sets the normalized root mean squared error below which
// the automatic term count search stops. Defaults: 5e-6 for spectral
// density fits, 2e-5 for correlation function fits.
func WithTargetRMSE(rmse float64) Option {
	return func(c *config) { c.target = rmse }
}

// WithNk sets the number of Matsubara terms per fitted mode when a
// spectral density fit is expanded into exponents. Default 1.
func WithNk(nk int) Option {
	return func(c *config) { c.nk = nk }
}

// WithTolerance sets the relative tolerance of the rational power spectrum
// approximation. Default 1e-6.
func WithTolerance(tol float64) Option {
	return func(c *config) { c.tol = tol }
}

// WithFullAnsatz makes the correlation fitter use complex amplitudes
// (a+id), which can reach a given error with fewer terms when Im C(0) is
// not zero, at the price of a harder optimization.
func WithFullAnsatz() Option {
	return func(c *config) { c.fullAnsatz = true }
}

// WithGuess overrides the built-in initial parameters and bounds.
func WithGuess(g Guess) Option {
	return func(c *config) { c.guess = &g }
}

// model evaluates a fit ansatz over the whole data axis for one packed
// parameter vector.
type model func(params, dst []float64)

// setup produces, for a term count n, the ansatz and the packed initial
// parameters and box bounds.
type setup func(n int) (model, []float64, []float64, []float64)

// runFit minimizes the given ansatz against y. With order > 0 it fits that
// term count once; otherwise it grows the term count until the normalized
// RMSE drops below target or orderCap is reached, keeping the best result.
// Convergence shortfall is reported through the returned RMSE, not as an
// error.
func runFit(y []float64, target float64, order, orderCap int, mk setup) ([]float64, int, float64, error) {
	span := floats.Max(y) - floats.Min(y)
	if span == 0 {
		span = 1
	}

	try := func(n int) ([]float64, float64, error) {
		m, x0, lower, upper := mk(n)
		prob := leastsq.Problem{
			F: func(p, dst []float64) {
				m(p, dst)
				floats.Sub(dst, y)
			},
			M:     len(y),
			Lower: lower,
			Upper: upper,
		}
		params, cost, err := leastsq.Solve(prob, x0, leastsq.Options{})
		if err != nil {
			return nil, 0, err
		}
		return params, math.Sqrt(cost/float64(len(y))) / span, nil
	}

	if order > 0 {
		params, rmse, err := try(order)
		return params, order, rmse, err
	}

	var best []float64
	bestN, bestRMSE := 0, math.Inf(1)
	for n := 1; n <= orderCap; n++ {
		params, rmse, err := try(n)
		if errors.Is(err, leastsq.ErrNoResiduals) && best != nil {
			// The sample count no longer supports this many parameters.
			// Running out of headroom is a convergence shortfall, not a
			// failure: keep the best attempt found so far.
			break
		}
		if err != nil {
			return nil, 0, 0, err
		}
		if rmse < bestRMSE {
			best, bestN, bestRMSE = params, n, rmse
		}
		if bestRMSE <= target {
			break
		}
	}
	return best, bestN, bestRMSE, nil
}

// spread packs n staggered copies of the per-term start values per into
// parameter-major order, scaling copy i by (i+1)/n. Identical starting
// points would leave every term permutation-symmetric and the solver could
// never separate them.
func spread(per []float64, n int) []float64 {
	out := make([]float64, 0, len(per)*n)
	for _, v := range per {
		for i := 0; i < n; i++ {
			out = append(out, v*float64(i+1)/float64(n))
		}
	}
	return out
}

// replicate packs n copies of the per-term values per into parameter-major
// order: all a terms, then all b terms, and so on.
func replicate(per []float64, n int) []float64 {
	out := make([]float64, 0, len(per)*n)
	for _, v := range per {
		for i := 0; i < n; i++ {
			out = append(out, v)
		}
	}
	return out
}
