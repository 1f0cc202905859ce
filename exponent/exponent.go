package exponent

import (
	"errors"
	"math"
	"math/cmplx"
)

// Decomposition errors.
var (
	ErrLengthMismatch = errors.New("exponent: coefficient and rate lengths differ")
	ErrNoTemperature  = errors.New("exponent: bath temperature must be specified for this operation")
)

// Kind classifies which part of the correlation function an exponent
// contributes to.
type Kind int

const (
	// Real marks a term contributing c*exp(-v*t) to C(t).
	Real Kind = iota

	// Imag marks a term contributing i*c*exp(-v*t) to C(t).
	Imag

	// RealImag marks a merged term contributing (c + i*c2)*exp(-v*t).
	RealImag
)

// String returns the conventional short label for the kind.
func (k Kind) String() string {
	switch k {
	case Real:
		return "R"
	case Imag:
		return "I"
	case RealImag:
		return "RI"
	default:
		return "?"
	}
}

// Exponent is a single damped-exponential term of a correlation function
// decomposition. Coeff is the coefficient of the real channel, SecondCoeff
// the imaginary-channel coefficient of a merged RealImag term, and Rate the
// complex decay rate; Re(Rate) >= 0 for physically stable decay.
type Exponent struct {
	Coeff       complex128
	SecondCoeff complex128
	Rate        complex128
	Kind        Kind
}

// weight returns the full complex coefficient of the term as it enters the
// correlation function.
func (e Exponent) weight() complex128 {
	switch e.Kind {
	case Imag:
		return 1i * e.Coeff
	case RealImag:
		return e.Coeff + 1i*e.SecondCoeff
	default:
		return e.Coeff
	}
}

// Decomposition is an ordered sum-of-exponentials approximation of a bath
// correlation function. It is immutable once built.
type Decomposition []Exponent

// Build assembles a decomposition from parallel coefficient/rate slices for
// the real and imaginary channels, in the layout produced by Matsubara
// expansions and correlation fits. Slice lengths must match per channel.
func Build(ckReal, vkReal, ckImag, vkImag []complex128) (Decomposition, error) {
	if len(ckReal) != len(vkReal) || len(ckImag) != len(vkImag) {
		return nil, ErrLengthMismatch
	}

	d := make(Decomposition, 0, len(ckReal)+len(ckImag))
	for i := range ckReal {
		d = append(d, Exponent{Coeff: ckReal[i], Rate: vkReal[i], Kind: Real})
	}
	for i := range ckImag {
		d = append(d, Exponent{Coeff: ckImag[i], Rate: vkImag[i], Kind: Imag})
	}
	return d, nil
}

// CorrelationFunction reconstructs the approximate correlation function at
// time t from the exponents.
func (d Decomposition) CorrelationFunction(t float64) complex128 {
	var c complex128
	for _, e := range d {
		c += e.weight() * cmplx.Exp(-e.Rate*complex(t, 0))
	}
	return c
}

// PowerSpectrum reconstructs the approximate power spectrum at frequency w,
// using the analytic Fourier transform of the exponent sum:
//
//	S(w) = sum_k 2 Re( c_k / (v_k - i w) )
func (d Decomposition) PowerSpectrum(w float64) float64 {
	s := 0.0
	for _, e := range d {
		s += 2 * real(e.weight()/(e.Rate-complex(0, w)))
	}
	return s
}

// SpectralDensity reconstructs the approximate spectral density at
// frequency w for bath temperature T by inverting the detailed-balance
// relation between S and J.
func (d Decomposition) SpectralDensity(w, T float64) float64 {
	return d.PowerSpectrum(w) / (boseEinstein(w, T) + 1) / 2
}

// Combine merges exponents with equal rates: Real terms sum coefficients,
// Real and Imag terms at the same rate merge into a RealImag term. The
// receiver is left untouched.
func (d Decomposition) Combine() Decomposition {
	type channel struct {
		rate       complex128
		real, imag complex128
	}

	groups := make([]channel, 0, len(d))
	for _, e := range d {
		idx := -1
		for i := range groups {
			if sameRate(groups[i].rate, e.Rate) {
				idx = i
				break
			}
		}
		if idx < 0 {
			groups = append(groups, channel{rate: e.Rate})
			idx = len(groups) - 1
		}

		switch e.Kind {
		case Imag:
			groups[idx].imag += e.Coeff
		case RealImag:
			groups[idx].real += e.Coeff
			groups[idx].imag += e.SecondCoeff
		default:
			groups[idx].real += e.Coeff
		}
	}

	out := make(Decomposition, 0, len(groups))
	for _, g := range groups {
		switch {
		case g.imag == 0:
			out = append(out, Exponent{Coeff: g.real, Rate: g.rate, Kind: Real})
		case g.real == 0:
			out = append(out, Exponent{Coeff: g.imag, Rate: g.rate, Kind: Imag})
		default:
			out = append(out, Exponent{
				Coeff: g.real, SecondCoeff: g.imag, Rate: g.rate, Kind: RealImag,
			})
		}
	}
	return out
}

// sameRate compares rates within a relative tolerance so rates assembled
// through different arithmetic paths still merge.
func sameRate(a, b complex128) bool {
	scale := math.Max(cmplx.Abs(a), cmplx.Abs(b))
	if scale == 0 {
		return true
	}
	return cmplx.Abs(a-b) <= 1e-12*scale
}

// boseEinstein is the Bose-Einstein occupation of mode w at temperature T.
// It is zero at T = 0 and at w = 0; callers regularize w before evaluating
// near zero.
func boseEinstein(w, T float64) float64 {
	if T <= 0 || w == 0 {
		return 0
	}
	return 1 / (math.Exp(w/T) - 1)
}
