// Package specfun provides the special functions needed by closed-form
// bath correlation functions: the Hurwitz zeta function for complex
// arguments and the complex hyperbolic cotangent.
package specfun

import (
	"errors"
	"math"
	"math/cmplx"
)

// ErrInvalidOrder is returned when the Hurwitz zeta order sits on the
// pole s = 1 or the argument lies outside the supported half-plane.
var ErrInvalidOrder = errors.New("specfun: hurwitz zeta requires s != 1 and Re(a) > 0")

// bernoulli holds B_2, B_4, ..., B_16, the even Bernoulli numbers used
// in the Euler-Maclaurin tail.
var bernoulli = [8]float64{
	1.0 / 6.0,
	-1.0 / 30.0,
	1.0 / 42.0,
	-1.0 / 30.0,
	5.0 / 66.0,
	-691.0 / 2730.0,
	7.0 / 6.0,
	-3617.0 / 510.0,
}

// factorial2j holds (2j)! for j = 1..8.
var factorial2j = [8]float64{
	2, 24, 720, 40320, 3628800, 479001600, 87178291200, 20922789888000,
}

// HurwitzZeta evaluates the Hurwitz zeta function
//
//	zeta(s, a) = sum_{k=0}^inf (a + k)^(-s)
//
// for real order s != 1 and complex argument a with Re(a) > 0, by
// Euler-Maclaurin summation: the series is summed directly until the
// shifted argument a+n is large, then the remainder is expanded into the
// integral term, the midpoint correction and a Bernoulli-number tail.
//
// The result carries close to full float64 precision for the argument
// ranges that occur in bath correlation functions (Re(a) > 0, moderate
// |Im(a)|).
func HurwitzZeta(s float64, a complex128) (complex128, error) {
	if s == 1 || real(a) <= 0 {
		return 0, ErrInvalidOrder
	}

	// Shift a until |a+n| is large enough for the asymptotic tail.
	shift := 16.0 + math.Abs(s)
	n := 0
	if d := shift - cmplx.Abs(a); d > 0 {
		n = int(math.Ceil(d))
	}

	sum := complex(0, 0)
	for k := 0; k < n; k++ {
		sum += cmplx.Pow(a+complex(float64(k), 0), complex(-s, 0))
	}

	b := a + complex(float64(n), 0)
	binv := 1 / b

	// Integral term and midpoint correction.
	sum += cmplx.Pow(b, complex(1-s, 0)) / complex(s-1, 0)
	sum += 0.5 * cmplx.Pow(b, complex(-s, 0))

	// Bernoulli tail: sum_j B_2j/(2j)! * s(s+1)...(s+2j-2) * b^(-s-2j+1).
	pow := cmplx.Pow(b, complex(-s-1, 0))
	poch := s
	for j := 0; j < len(bernoulli); j++ {
		term := complex(bernoulli[j]/factorial2j[j]*poch, 0) * pow
		sum += term
		if cmplx.Abs(term) < 1e-18*cmplx.Abs(sum) {
			break
		}
		pow *= binv * binv
		poch *= (s + float64(2*j+1)) * (s + float64(2*j+2))
	}

	return sum, nil
}

// Coth returns the complex hyperbolic cotangent 1/tanh(z).
func Coth(z complex128) complex128 {
	return 1 / cmplx.Tanh(z)
}

// Cot returns the real cotangent 1/tan(x).
func Cot(x float64) float64 {
	return 1 / math.Tan(x)
}
