package env

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-bath/exponent"
	"github.com/cwbudde/algo-bath/internal/specfun"
)

// Underdamped describes an underdamped bosonic environment with spectral
// density
//
//	J(w) = λ²·γ·w / ((w² - w0²)² + γ²w²)
//
// where λ is the coupling strength, γ the damping rate and w0 the
// resonance frequency.
type Underdamped struct {
	cfg config

	// T is the bath temperature, Lam the coupling strength, Gamma the
	// damping rate and W0 the resonance frequency.
	T, Lam, Gamma, W0 float64
}

// NewUnderdamped builds an underdamped environment. Lam, Gamma and W0 must
// be positive and T non-negative.
func NewUnderdamped(T, lam, gamma, w0 float64, opts ...Option) (*Underdamped, error) {
	switch {
	case lam <= 0:
		return nil, fmt.Errorf("%w: coupling strength must be positive", ErrInvalidParameter)
	case gamma <= 0:
		return nil, fmt.Errorf("%w: damping rate must be positive", ErrInvalidParameter)
	case w0 <= 0:
		return nil, fmt.Errorf("%w: resonance frequency must be positive", ErrInvalidParameter)
	case T < 0:
		return nil, fmt.Errorf("%w: temperature must be non-negative", ErrInvalidParameter)
	}
	return &Underdamped{cfg: applyOptions(opts), T: T, Lam: lam, Gamma: gamma, W0: w0}, nil
}

// SpectralDensity returns J(w) = λ²γw / ((w²-w0²)² + γ²w²).
func (e *Underdamped) SpectralDensity(w float64) float64 {
	d := w*w - e.W0*e.W0
	return e.Lam * e.Lam * e.Gamma * w / (d*d + e.Gamma*e.Gamma*w*w)
}

// PowerSpectrum derives S(w) from J by detailed balance.
func (e *Underdamped) PowerSpectrum(w float64) float64 {
	return powerFromSpectralDensity(e.SpectralDensity, e.T, e.cfg.regularize(w))
}

// CorrelationFunction derives C(t) from J by adaptive quadrature, which is
// well behaved for this spectral density.
func (e *Underdamped) CorrelationFunction(t float64) complex128 {
	return e.sampleCorrelationFunction([]float64{t})[0]
}

func (e *Underdamped) sampleCorrelationFunction(ts []float64) []complex128 {
	return correlationFromSpectralDensity(e.SpectralDensity, e.T, ts, e.cfg.quad)
}

// Matsubara returns the exponential decomposition of C(t) with two resonant
// terms at rates Γ ∓ iΩ, Ω = sqrt(w0² - (γ/2)²), plus nk Matsubara terms.
// It returns ErrZeroTemperature at T = 0.
func (e *Underdamped) Matsubara(nk int) (exponent.Decomposition, error) {
	return UnderdampedMatsubara(complex(e.Lam, 0), e.Gamma, complex(e.W0, 0), e.T, nk)
}

// Temperature returns the bath temperature; analytic models always have
// one.
func (e *Underdamped) Temperature() (float64, bool) { return e.T, true }

// Tag returns the environment identifier.
func (e *Underdamped) Tag() string { return e.cfg.tag }

// UnderdampedMatsubara computes the Matsubara expansion of an underdamped
// mode with (possibly complex) coupling lam and resonance w0:
//
//	C_R(t) = λ²/(4Ω)·[coth(β(Ω+iΓ)/2)·e^(-(Γ-iΩ)t)
//	                + coth(β(Ω-iΓ)/2)·e^(-(Γ+iΩ)t)] + Matsubara terms
//	C_I(t) = i·λ²/(4Ω)·[e^(-(Γ-iΩ)t) - e^(-(Γ+iΩ)t)]
//
// with Γ = γ/2 and Ω = sqrt(w0² - Γ²). Complex lam and w0 arise when the
// expansion is applied to individual terms of a Meier-Tannor ansatz whose
// amplitudes may be negative. It returns ErrZeroTemperature at T = 0.
func UnderdampedMatsubara(lam complex128, gamma float64, w0 complex128, T float64, nk int) (exponent.Decomposition, error) {
	if T == 0 {
		return nil, ErrZeroTemperature
	}
	beta := 1 / T
	hg := complex(gamma/2, 0)
	om := cmplx.Sqrt(w0*w0 - hg*hg)
	lam2 := lam * lam

	ckReal := make([]complex128, 0, nk+2)
	vkReal := make([]complex128, 0, nk+2)
	ckReal = append(ckReal,
		lam2/(4*om)*specfun.Coth(complex(beta/2, 0)*(om+1i*hg)),
		lam2/(4*om)*specfun.Coth(complex(beta/2, 0)*(om-1i*hg)))
	vkReal = append(vkReal, -1i*om+hg, 1i*om+hg)
	for k := 1; k <= nk; k++ {
		nu := complex(2*math.Pi*float64(k)*T, 0)
		p := om + 1i*hg
		m := om - 1i*hg
		ckReal = append(ckReal,
			-2*lam2*complex(gamma*T, 0)*nu/((p*p+nu*nu)*(m*m+nu*nu)))
		vkReal = append(vkReal, nu)
	}

	ckImag := []complex128{1i * lam2 / (4 * om), -1i * lam2 / (4 * om)}
	vkImag := []complex128{-1i*om + hg, 1i*om + hg}
	return exponent.Build(ckReal, vkReal, ckImag, vkImag)
}
