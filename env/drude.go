package env

import (
	"fmt"
	"math"
	"sync"

	"github.com/cwbudde/algo-bath/exponent"
	"github.com/cwbudde/algo-bath/internal/specfun"
)

// DefaultDrudeNk is the number of Matsubara terms used when evaluating the
// Drude-Lorentz correlation function. The expansion converges slowly near
// t=0, so the default is generous.
const DefaultDrudeNk = 15000

// DrudeLorentz describes a Drude-Lorentz bosonic environment with spectral
// density
//
//	J(w) = 2·λ·γ·w / (γ² + w²)
//
// where λ is the coupling strength and γ the cutoff frequency.
type DrudeLorentz struct {
	cfg config

	// T is the bath temperature, Lam the coupling strength and Gamma the
	// spectral density cutoff frequency.
	T, Lam, Gamma float64

	cfOnce sync.Once
	cfDec  exponent.Decomposition
}

// NewDrudeLorentz builds a Drude-Lorentz environment. Lam and Gamma must be
// positive and T non-negative.
func NewDrudeLorentz(T, lam, gamma float64, opts ...Option) (*DrudeLorentz, error) {
	switch {
	case lam <= 0:
		return nil, fmt.Errorf("%w: coupling strength must be positive", ErrInvalidParameter)
	case gamma <= 0:
		return nil, fmt.Errorf("%w: cutoff frequency must be positive", ErrInvalidParameter)
	case T < 0:
		return nil, fmt.Errorf("%w: temperature must be non-negative", ErrInvalidParameter)
	}
	return &DrudeLorentz{cfg: applyOptions(opts), T: T, Lam: lam, Gamma: gamma}, nil
}

// SpectralDensity returns J(w) = 2λγw / (γ² + w²).
func (e *DrudeLorentz) SpectralDensity(w float64) float64 {
	return 2 * e.Lam * e.Gamma * w / (e.Gamma*e.Gamma + w*w)
}

// PowerSpectrum derives S(w) from J by detailed balance.
func (e *DrudeLorentz) PowerSpectrum(w float64) float64 {
	return powerFromSpectralDensity(e.SpectralDensity, e.T, e.cfg.regularize(w))
}

// CorrelationFunction evaluates C(t) by summing DefaultDrudeNk Matsubara
// exponents; numerical integration of this spectral density is noisy, so
// the series is preferred whenever T > 0. At T = 0 the expansion is
// undefined and the quadrature path is used instead.
func (e *DrudeLorentz) CorrelationFunction(t float64) complex128 {
	return e.sampleCorrelationFunction([]float64{t})[0]
}

func (e *DrudeLorentz) sampleCorrelationFunction(ts []float64) []complex128 {
	if e.T == 0 {
		return correlationFromSpectralDensity(e.SpectralDensity, e.T, ts, e.cfg.quad)
	}
	e.cfOnce.Do(func() {
		e.cfDec, _ = e.Matsubara(DefaultDrudeNk)
	})
	out := make([]complex128, len(ts))
	for i, t := range ts {
		out[i] = evalHermitian(e.cfDec, t)
	}
	return out
}

// Matsubara returns the exponential decomposition of C(t) with one resonant
// term plus Nk Matsubara terms:
//
//	C_R(t) = λγ·cot(γ/2T)·e^(-γt) + Σ_k 8λγT·πkT/((2πkT)²-γ²)·e^(-2πkTt)
//	C_I(t) = -λγ·e^(-γt)
//
// It returns ErrZeroTemperature at T = 0, where the expansion is undefined.
func (e *DrudeLorentz) Matsubara(nk int) (exponent.Decomposition, error) {
	if e.T == 0 {
		return nil, ErrZeroTemperature
	}
	ckReal := make([]complex128, 0, nk+1)
	vkReal := make([]complex128, 0, nk+1)
	ckReal = append(ckReal, complex(e.Lam*e.Gamma*specfun.Cot(e.Gamma/(2*e.T)), 0))
	vkReal = append(vkReal, complex(e.Gamma, 0))
	for k := 1; k <= nk; k++ {
		nu := 2 * math.Pi * float64(k) * e.T
		ckReal = append(ckReal, complex(
			8*e.Lam*e.Gamma*e.T*math.Pi*float64(k)*e.T/(nu*nu-e.Gamma*e.Gamma), 0))
		vkReal = append(vkReal, complex(nu, 0))
	}
	ckImag := []complex128{complex(-e.Lam*e.Gamma, 0)}
	vkImag := []complex128{complex(e.Gamma, 0)}
	return exponent.Build(ckReal, vkReal, ckImag, vkImag)
}

// Temperature returns the bath temperature; analytic models always have
// one.
func (e *DrudeLorentz) Temperature() (float64, bool) { return e.T, true }

// Tag returns the environment identifier.
func (e *DrudeLorentz) Tag() string { return e.cfg.tag }

// evalHermitian evaluates a decomposition's correlation function for any
// sign of t using C(-t) = conj(C(t)).
func evalHermitian(d exponent.Decomposition, t float64) complex128 {
	if t >= 0 {
		return d.CorrelationFunction(t)
	}
	c := d.CorrelationFunction(-t)
	return complex(real(c), -imag(c))
}
