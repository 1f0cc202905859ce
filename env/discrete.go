package env

import (
	"fmt"
	"math"
	"math/cmplx"
	"sync"

	"github.com/cwbudde/algo-bath/internal/transform"
)

func nanComplex(n int) []complex128 {
	out := make([]complex128, n)
	for i := range out {
		out[i] = complex(math.NaN(), math.NaN())
	}
	return out
}

// SpectralDensityEnvironment is an environment characterized natively by
// its spectral density; the power spectrum follows from detailed balance
// and the correlation function from quadrature.
type SpectralDensityEnvironment struct {
	cfg  config
	t    float64
	hasT bool
	j    func(float64) float64
}

// FromSpectralDensity builds an environment from a spectral density
// callable, conventionally defined for w >= 0. With [WithoutTemperature]
// the T argument is ignored and only the spectral density itself can be
// evaluated.
func FromSpectralDensity(T float64, j func(float64) float64, opts ...Option) *SpectralDensityEnvironment {
	cfg := applyOptions(opts)
	if cfg.noT {
		T = 0
	}
	return &SpectralDensityEnvironment{cfg: cfg, t: T, hasT: !cfg.noT, j: j}
}

// FromSpectralDensitySamples builds an environment from a discretized
// spectral density. samples and ws must have equal length; the samples are
// interpolated with a cubic spline, extrapolating outside the axis.
func FromSpectralDensitySamples(T float64, samples, ws []float64, opts ...Option) (*SpectralDensityEnvironment, error) {
	if len(samples) != len(ws) {
		return nil, ErrLengthMismatch
	}
	j, err := transform.Spline(ws, samples)
	if err != nil {
		return nil, fmt.Errorf("env: spectral density interpolation: %w", err)
	}
	return FromSpectralDensity(T, j, opts...), nil
}

// SpectralDensity returns J(w).
func (e *SpectralDensityEnvironment) SpectralDensity(w float64) float64 { return e.j(w) }

// PowerSpectrum derives S(w) from J by detailed balance. It reports NaN
// when the environment has no temperature; see [SpectralDensityEnvironment.PowerSpectrumAt].
func (e *SpectralDensityEnvironment) PowerSpectrum(w float64) float64 {
	s, err := e.PowerSpectrumAt(w)
	if err != nil {
		return math.NaN()
	}
	return s
}

// PowerSpectrumAt derives S(w) from J by detailed balance, failing with
// [ErrNoTemperature] when the environment has no temperature.
func (e *SpectralDensityEnvironment) PowerSpectrumAt(w float64) (float64, error) {
	if !e.hasT {
		return 0, ErrNoTemperature
	}
	return powerFromSpectralDensity(e.j, e.t, e.cfg.regularize(w)), nil
}

// CorrelationFunction derives C(t) from J by adaptive quadrature. Callers
// evaluating a whole time grid should prefer [SampleCorrelationFunction],
// which shares one quadrature pass across the grid. It reports NaN when
// the environment has no temperature.
func (e *SpectralDensityEnvironment) CorrelationFunction(t float64) complex128 {
	return e.sampleCorrelationFunction([]float64{t})[0]
}

// CorrelationFunctionAt derives C(t) from J by adaptive quadrature,
// failing with [ErrNoTemperature] when the environment has no temperature.
func (e *SpectralDensityEnvironment) CorrelationFunctionAt(t float64) (complex128, error) {
	if !e.hasT {
		return 0, ErrNoTemperature
	}
	return e.CorrelationFunction(t), nil
}

func (e *SpectralDensityEnvironment) sampleCorrelationFunction(ts []float64) []complex128 {
	if !e.hasT {
		return nanComplex(len(ts))
	}
	return correlationFromSpectralDensity(e.j, e.t, ts, e.cfg.quad)
}

// Temperature returns the bath temperature; ok is false when the
// environment was built with [WithoutTemperature].
func (e *SpectralDensityEnvironment) Temperature() (float64, bool) { return e.t, e.hasT }

// Tag returns the environment identifier.
func (e *SpectralDensityEnvironment) Tag() string { return e.cfg.tag }

// PowerSpectrumEnvironment is an environment characterized natively by its
// power spectrum, valid on the full real line.
type PowerSpectrumEnvironment struct {
	cfg  config
	t    float64
	hasT bool
	s    func(float64) float64
}

// FromPowerSpectrum builds an environment from a power spectrum callable.
// With [WithoutTemperature] the T argument is ignored and only the power
// spectrum itself can be evaluated.
func FromPowerSpectrum(T float64, s func(float64) float64, opts ...Option) *PowerSpectrumEnvironment {
	cfg := applyOptions(opts)
	if cfg.noT {
		T = 0
	}
	return &PowerSpectrumEnvironment{cfg: cfg, t: T, hasT: !cfg.noT, s: s}
}

// FromPowerSpectrumSamples builds an environment from a discretized power
// spectrum. samples and ws must have equal length.
func FromPowerSpectrumSamples(T float64, samples, ws []float64, opts ...Option) (*PowerSpectrumEnvironment, error) {
	if len(samples) != len(ws) {
		return nil, ErrLengthMismatch
	}
	s, err := transform.Spline(ws, samples)
	if err != nil {
		return nil, fmt.Errorf("env: power spectrum interpolation: %w", err)
	}
	return FromPowerSpectrum(T, s, opts...), nil
}

// SpectralDensity derives J(w) by inverting detailed balance. It reports
// NaN when the environment has no temperature; see [PowerSpectrumEnvironment.SpectralDensityAt].
func (e *PowerSpectrumEnvironment) SpectralDensity(w float64) float64 {
	j, err := e.SpectralDensityAt(w)
	if err != nil {
		return math.NaN()
	}
	return j
}

// SpectralDensityAt derives J(w) by inverting detailed balance, failing
// with [ErrNoTemperature] when the environment has no temperature.
func (e *PowerSpectrumEnvironment) SpectralDensityAt(w float64) (float64, error) {
	if !e.hasT {
		return 0, ErrNoTemperature
	}
	return spectralDensityFromPower(e.s, e.t, e.cfg.regularize(w)), nil
}

// PowerSpectrum returns S(w).
func (e *PowerSpectrumEnvironment) PowerSpectrum(w float64) float64 { return e.s(w) }

// CorrelationFunction derives C(t) through the spectral density and the
// quadrature path. It reports NaN when the environment has no temperature.
func (e *PowerSpectrumEnvironment) CorrelationFunction(t float64) complex128 {
	return e.sampleCorrelationFunction([]float64{t})[0]
}

// CorrelationFunctionAt derives C(t) through the spectral density and the
// quadrature path, failing with [ErrNoTemperature] when the environment
// has no temperature.
func (e *PowerSpectrumEnvironment) CorrelationFunctionAt(t float64) (complex128, error) {
	if !e.hasT {
		return 0, ErrNoTemperature
	}
	return e.CorrelationFunction(t), nil
}

func (e *PowerSpectrumEnvironment) sampleCorrelationFunction(ts []float64) []complex128 {
	if !e.hasT {
		return nanComplex(len(ts))
	}
	return correlationFromSpectralDensity(e.SpectralDensity, e.t, ts, e.cfg.quad)
}

// Temperature returns the bath temperature; ok is false when the
// environment was built with [WithoutTemperature].
func (e *PowerSpectrumEnvironment) Temperature() (float64, bool) { return e.t, e.hasT }

// Tag returns the environment identifier.
func (e *PowerSpectrumEnvironment) Tag() string { return e.cfg.tag }

// CorrelationEnvironment is an environment characterized natively by its
// correlation function for t >= 0; negative times follow from Hermitian
// symmetry. The power spectrum is derived once, lazily, by a windowed FFT
// and cached for the lifetime of the environment.
type CorrelationEnvironment struct {
	cfg  config
	t    float64
	hasT bool
	cf   func(float64) complex128

	psOnce sync.Once
	ps     func(float64) float64
}

// FromCorrelationFunction builds an environment from a correlation
// function callable valid for t >= 0. With [WithoutTemperature] the T
// argument is ignored; the correlation function and the FFT-derived power
// spectrum stay usable, only the spectral density is unavailable.
func FromCorrelationFunction(T float64, cf func(float64) complex128, opts ...Option) *CorrelationEnvironment {
	cfg := applyOptions(opts)
	if cfg.noT {
		T = 0
	}
	return &CorrelationEnvironment{cfg: cfg, t: T, hasT: !cfg.noT, cf: cf}
}

// FromCorrelationFunctionSamples builds an environment from a discretized
// correlation function on a t >= 0 grid. samples and ts must have equal
// length; real and imaginary parts are splined independently.
func FromCorrelationFunctionSamples(T float64, samples []complex128, ts []float64, opts ...Option) (*CorrelationEnvironment, error) {
	if len(samples) != len(ts) {
		return nil, ErrLengthMismatch
	}
	cf, err := transform.ComplexSpline(ts, samples)
	if err != nil {
		return nil, fmt.Errorf("env: correlation function interpolation: %w", err)
	}
	return FromCorrelationFunction(T, cf, opts...), nil
}

// CorrelationFunction returns C(t), extending to negative times by
// C(-t) = conj(C(t)).
func (e *CorrelationEnvironment) CorrelationFunction(t float64) complex128 {
	if t >= 0 {
		return e.cf(t)
	}
	return cmplx.Conj(e.cf(-t))
}

// PowerSpectrum derives S(w) from C via the windowed FFT configured by
// [WithFourierWindow]. The transform runs once on first use; if it cannot
// be built the method returns NaN.
func (e *CorrelationEnvironment) PowerSpectrum(w float64) float64 {
	e.psOnce.Do(func() {
		ps, err := transform.PowerFromCorrelation(e.CorrelationFunction, e.cfg.fourierT0, e.cfg.fourierDt)
		if err != nil {
			ps = func(float64) float64 { return math.NaN() }
		}
		e.ps = ps
	})
	return e.ps(w)
}

// SpectralDensity derives J(w) by inverting detailed balance on the
// FFT-derived power spectrum. It reports NaN when the environment has no
// temperature; see [CorrelationEnvironment.SpectralDensityAt].
func (e *CorrelationEnvironment) SpectralDensity(w float64) float64 {
	j, err := e.SpectralDensityAt(w)
	if err != nil {
		return math.NaN()
	}
	return j
}

// SpectralDensityAt derives J(w) by inverting detailed balance on the
// FFT-derived power spectrum, failing with [ErrNoTemperature] when the
// environment has no temperature.
func (e *CorrelationEnvironment) SpectralDensityAt(w float64) (float64, error) {
	if !e.hasT {
		return 0, ErrNoTemperature
	}
	return spectralDensityFromPower(e.PowerSpectrum, e.t, e.cfg.regularize(w)), nil
}

// Temperature returns the bath temperature; ok is false when the
// environment was built with [WithoutTemperature].
func (e *CorrelationEnvironment) Temperature() (float64, bool) { return e.t, e.hasT }

// Tag returns the environment identifier.
func (e *CorrelationEnvironment) Tag() string { return e.cfg.tag }
