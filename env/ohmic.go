package env

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-bath/internal/specfun"
)

// Ohmic describes an Ohmic bosonic environment (sub- and super-Ohmic
// included according to the choice of s) with spectral density
//
//	J(w) = α·|w|^s / wc^(s-1) · e^(-|w|/wc)
//
// where α is the coupling strength, wc the cutoff frequency and s the
// power of w. s < 1 is sub-Ohmic, s = 1 Ohmic, s > 1 super-Ohmic.
type Ohmic struct {
	cfg config

	// T is the bath temperature, Alpha the coupling strength, Wc the
	// cutoff frequency and S the power of w in the spectral density.
	T, Alpha, Wc, S float64
}

// NewOhmic builds an Ohmic environment. Alpha, Wc and S must be positive
// and T non-negative.
func NewOhmic(T, alpha, wc, s float64, opts ...Option) (*Ohmic, error) {
	switch {
	case alpha <= 0:
		return nil, fmt.Errorf("%w: coupling strength must be positive", ErrInvalidParameter)
	case wc <= 0:
		return nil, fmt.Errorf("%w: cutoff frequency must be positive", ErrInvalidParameter)
	case s <= 0:
		return nil, fmt.Errorf("%w: spectral density power must be positive", ErrInvalidParameter)
	case T < 0:
		return nil, fmt.Errorf("%w: temperature must be non-negative", ErrInvalidParameter)
	}
	return &Ohmic{cfg: applyOptions(opts), T: T, Alpha: alpha, Wc: wc, S: s}, nil
}

// SpectralDensity returns J(w) = α|w|^s/wc^(s-1)·e^(-|w|/wc). Using |w|
// keeps the expression defined for negative frequencies at non-integer s.
func (e *Ohmic) SpectralDensity(w float64) float64 {
	aw := math.Abs(w)
	return e.Alpha * math.Pow(aw, e.S) * math.Pow(e.Wc, e.S-1) * math.Exp(-aw/e.Wc)
}

// PowerSpectrum derives S(w) from J by detailed balance.
func (e *Ohmic) PowerSpectrum(w float64) float64 {
	return powerFromSpectralDensity(e.SpectralDensity, e.T, e.cfg.regularize(w))
}

// CorrelationFunction evaluates C(t) in closed form,
//
//	C(t) = (α/π)·wc^(1-s)·T^(s+1)·Γ(s+1)·
//	       [ζ(s+1, (1+wc/T-i·wc·t)·T/wc) + ζ(s+1, (1+i·wc·t)·T/wc)]
//
// with ζ the Hurwitz zeta function; at T = 0 the zeta terms collapse to
//
//	C(t) = (α/π)·wc^(s+1)·Γ(s+1)·(1+i·wc·t)^(-(s+1)).
func (e *Ohmic) CorrelationFunction(t float64) complex128 {
	gam := math.Gamma(e.S + 1)
	if e.T == 0 {
		pref := e.Alpha * math.Pow(e.Wc, e.S+1) / math.Pi * gam
		return complex(pref, 0) * cmplx.Pow(1+1i*complex(e.Wc*t, 0), complex(-(e.S+1), 0))
	}
	pref := e.Alpha * math.Pow(e.Wc, 1-e.S) / math.Pi * gam * math.Pow(e.T, e.S+1)
	bwc := e.Wc / e.T
	z1 := (complex(1+bwc, 0) - 1i*complex(e.Wc*t, 0)) / complex(bwc, 0)
	z2 := (1 + 1i*complex(e.Wc*t, 0)) / complex(bwc, 0)
	h1, err1 := specfun.HurwitzZeta(e.S+1, z1)
	h2, err2 := specfun.HurwitzZeta(e.S+1, z2)
	if err1 != nil || err2 != nil {
		return complex(math.NaN(), math.NaN())
	}
	return complex(pref, 0) * (h1 + h2)
}

// Temperature returns the bath temperature; analytic models always have
// one.
func (e *Ohmic) Temperature() (float64, bool) { return e.T, true }

// Tag returns the environment identifier.
func (e *Ohmic) Tag() string { return e.cfg.tag }
