package env

import (
	"errors"
	"math"

	"github.com/cwbudde/algo-bath/internal/transform"
)

// Environment errors.
var (
	// ErrLengthMismatch reports that a sampled characterization was handed
	// sample and axis slices of different lengths.
	ErrLengthMismatch = errors.New("env: sample and axis lengths differ")

	// ErrZeroTemperature reports that a Matsubara expansion was requested
	// at T = 0, where the expansion is undefined.
	ErrZeroTemperature = errors.New("env: matsubara expansion requires T > 0")

	// ErrInvalidParameter reports a model parameter outside its physical
	// domain.
	ErrInvalidParameter = errors.New("env: model parameter outside valid range")

	// ErrNoTemperature reports a derivation that needs an occupation
	// number on an environment built with [WithoutTemperature].
	ErrNoTemperature = errors.New("env: environment has no temperature")
)

// Default tunables. These are accuracy/cost trade-offs, not exact
// constants: the frequency epsilon bounds the error of the w -> 0 limit of
// the power spectrum, and the Fourier window controls the truncation and
// aliasing errors of the correlation-function transform. Override them per
// environment with [WithOmegaEpsilon] and [WithFourierWindow].
const (
	// DefaultOmegaEps replaces w = 0 when evaluating the power spectrum,
	// where the Bose occupation is undefined.
	DefaultOmegaEps = 1e-6

	// DefaultFourierWindow is the half-width t0 of the FFT window used to
	// derive S(w) from C(t). C must have decayed within it.
	DefaultFourierWindow = 50.0

	// DefaultFourierStep is the FFT time step dt; frequencies up to pi/dt
	// are resolved without aliasing.
	DefaultFourierStep = 1e-3
)

// Environment is a bosonic bath characterized by its spectral density,
// power spectrum and correlation function. Implementations derive the
// functions they do not hold natively.
//
// All three methods are pure: evaluating them never mutates the
// environment, so values can be shared freely across goroutines.
type Environment interface {
	// SpectralDensity evaluates J(w), conventionally for w >= 0.
	SpectralDensity(w float64) float64

	// PowerSpectrum evaluates S(w) on the full real line.
	PowerSpectrum(w float64) float64

	// CorrelationFunction evaluates C(t); negative times follow from the
	// Hermitian symmetry C(-t) = conj(C(t)).
	CorrelationFunction(t float64) complex128

	// Temperature returns the bath temperature. ok is false when the
	// environment carries no notion of temperature; derivations that need
	// an occupation number are then unavailable (see the At variants on
	// the discretized types).
	Temperature() (t float64, ok bool)

	// Tag returns the caller-supplied identifier, possibly empty.
	Tag() string
}

// Occupation is the Bose-Einstein occupation number of mode w at
// temperature T. It is zero at T = 0. The w = 0 limit is undefined;
// Occupation returns 0 there and callers that need the limit substitute a
// small positive frequency first (see [DefaultOmegaEps]).
func Occupation(w, T float64) float64 {
	if T <= 0 || w == 0 {
		return 0
	}
	return 1 / (math.Exp(w/T) - 1)
}

// Option configures environment construction.
type Option func(*config)

type config struct {
	tag       string
	noT       bool
	omegaEps  float64
	fourierT0 float64
	fourierDt float64
	quad      transform.QuadOptions
}

func defaultConfig() config {
	return config{
		omegaEps:  DefaultOmegaEps,
		fourierT0: DefaultFourierWindow,
		fourierDt: DefaultFourierStep,
	}
}

func applyOptions(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithTag attaches an identifier to the environment.
func WithTag(tag string) Option {
	return func(c *config) { c.tag = tag }
}

// WithoutTemperature marks a discretized environment as having no notion
// of temperature. The temperature argument of its constructor is ignored,
// its native characterization stays fully usable, and any derivation that
// needs an occupation number fails with [ErrNoTemperature] (the plain
// interface methods report NaN). Note that this is distinct from T = 0,
// which is a well-defined physical limit.
func WithoutTemperature() Option {
	return func(c *config) { c.noT = true }
}

// WithOmegaEpsilon overrides the frequency used in place of w = 0 when
// evaluating the power spectrum.
func WithOmegaEpsilon(eps float64) Option {
	return func(c *config) { c.omegaEps = eps }
}

// WithFourierWindow overrides the FFT window half-width t0 and time step
// dt of the correlation-function to power-spectrum transform. Too small a
// t0 truncates slowly decaying correlations; too large a dt aliases high
// frequencies.
func WithFourierWindow(t0, dt float64) Option {
	return func(c *config) { c.fourierT0 = t0; c.fourierDt = dt }
}

// WithQuadTolerance overrides the absolute and relative error targets of
// the adaptive quadrature used for correlation-function derivations.
func WithQuadTolerance(abs, rel float64) Option {
	return func(c *config) { c.quad = transform.QuadOptions{AbsTol: abs, RelTol: rel} }
}

// regularize nudges w = 0 to the configured epsilon so the occupation
// number stays defined while the w -> 0 limit is captured.
func (c config) regularize(w float64) float64 {
	if w == 0 {
		return c.omegaEps
	}
	return w
}

// powerFromSpectralDensity applies the detailed-balance relation
//
//	S(w) = 2 sign(w) J(|w|) (n(w, T) + 1)        T > 0
//	S(w) = 2 Heaviside(w) J(w)                   T = 0
func powerFromSpectralDensity(j func(float64) float64, T, w float64) float64 {
	if T == 0 {
		if w <= 0 {
			return 0
		}
		return 2 * j(w)
	}
	sign := 1.0
	if w < 0 {
		sign = -1
	}
	return 2 * sign * j(math.Abs(w)) * (Occupation(w, T) + 1)
}

// spectralDensityFromPower inverts detailed balance, J = S / (2 (n + 1)).
func spectralDensityFromPower(s func(float64) float64, T, w float64) float64 {
	return s(w) / (Occupation(w, T) + 1) / 2
}

// correlationFromSpectralDensity evaluates the default J -> C path
//
//	C(t) = (1/pi) integral_0^inf J(w) [ (2 n(w,T) + 1) cos(wt) - i sin(wt) ] dw
//
// for the whole batch of times in one adaptive quadrature pass. Entries are
// NaN if the integrand misbehaves.
func correlationFromSpectralDensity(j func(float64) float64, T float64, ts []float64, q transform.QuadOptions) []complex128 {
	out, err := transform.SemiInfinite(func(w float64, dst []complex128) {
		jw := j(w) / math.Pi
		therm := jw * (2*Occupation(w, T) + 1)
		for i, t := range ts {
			dst[i] = complex(therm*math.Cos(w*t), -jw*math.Sin(w*t))
		}
	}, len(ts), q)
	if err != nil {
		out = make([]complex128, len(ts))
		for i := range out {
			out[i] = complex(math.NaN(), math.NaN())
		}
	}
	return out
}

// batchCorrelator is implemented by variants that can evaluate a whole
// time grid more cheaply than one point at a time.
type batchCorrelator interface {
	sampleCorrelationFunction(ts []float64) []complex128
}

// SampleSpectralDensity evaluates J on a frequency grid.
func SampleSpectralDensity(e Environment, ws []float64) []float64 {
	out := make([]float64, len(ws))
	for i, w := range ws {
		out[i] = e.SpectralDensity(w)
	}
	return out
}

// SamplePowerSpectrum evaluates S on a frequency grid.
func SamplePowerSpectrum(e Environment, ws []float64) []float64 {
	out := make([]float64, len(ws))
	for i, w := range ws {
		out[i] = e.PowerSpectrum(w)
	}
	return out
}

// SampleCorrelationFunction evaluates C on a time grid. Variants whose
// correlation function comes from the quadrature path batch the whole grid
// through a single adaptive pass.
func SampleCorrelationFunction(e Environment, ts []float64) []complex128 {
	if b, ok := e.(batchCorrelator); ok {
		return b.sampleCorrelationFunction(ts)
	}
	out := make([]complex128, len(ts))
	for i, t := range ts {
		out[i] = e.CorrelationFunction(t)
	}
	return out
}
