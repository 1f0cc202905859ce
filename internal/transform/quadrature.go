package transform

import (
	"errors"
	"math/cmplx"
)

// Quadrature errors.
var (
	ErrNoOutputs      = errors.New("transform: integrand output count must be > 0")
	ErrQuadYieldedNaN = errors.New("transform: integrand produced a non-finite value")
)

// Integrand evaluates a vector-valued integrand at w, writing one value per
// output element into dst. Callers that need a whole output sequence (for
// example C(t) on a time grid) evaluate all elements in a single call so the
// quadrature subdivision is shared across the batch.
type Integrand func(w float64, dst []complex128)

// QuadOptions controls the adaptive quadrature.
type QuadOptions struct {
	// AbsTol is the absolute error target on the worst output component.
	// Zero selects 1e-10.
	AbsTol float64

	// RelTol is the relative error target on the worst output component.
	// Zero selects 1e-8.
	RelTol float64

	// MaxIntervals caps the number of subdivided panels. Zero selects 2048.
	MaxIntervals int
}

func (o QuadOptions) withDefaults() QuadOptions {
	if o.AbsTol == 0 {
		o.AbsTol = 1e-10
	}
	if o.RelTol == 0 {
		o.RelTol = 1e-8
	}
	if o.MaxIntervals == 0 {
		o.MaxIntervals = 2048
	}
	return o
}

// Gauss-Kronrod 7-15 nodes and weights on [-1, 1]. The odd-indexed Kronrod
// nodes coincide with the embedded 7-point Gauss rule.
var gkNodes = [8]float64{
	0.991455371120813,
	0.949107912342759,
	0.864864423359769,
	0.741531185599394,
	0.586087235467691,
	0.405845151377397,
	0.207784955007898,
	0.000000000000000,
}

var gkWeights = [8]float64{
	0.022935322010529,
	0.063092092629979,
	0.104790010322250,
	0.140653259715525,
	0.169004726639267,
	0.190350578064785,
	0.204432940075298,
	0.209482141084728,
}

var gaussWeights = [4]float64{
	0.129484966168870,
	0.279705391489277,
	0.381830050505119,
	0.417959183673469,
}

type panel struct {
	a, b float64
	sum  []complex128
	err  float64
}

// SemiInfinite integrates a vector-valued integrand over [0, inf) using
// adaptive Gauss-Kronrod quadrature after the substitution w = x/(1-x),
// which maps the half line onto the unit interval. n is the number of
// output components the integrand fills.
//
// The returned slice holds one integral per output component. Subdivision
// stops when the worst-component error estimate falls below the tolerance
// or the panel budget is exhausted; in the latter case the best available
// result is returned together with no error, since downstream consumers
// judge accuracy themselves.
func SemiInfinite(f Integrand, n int, opts QuadOptions) ([]complex128, error) {
	if n <= 0 {
		return nil, ErrNoOutputs
	}
	opts = opts.withDefaults()

	// Integrate g(x) = f(x/(1-x)) / (1-x)^2 over [0, 1).
	g := func(x float64, dst []complex128) {
		u := 1 - x
		f(x/u, dst)
		scale := complex(1/(u*u), 0)
		for i := range dst {
			dst[i] *= scale
		}
	}

	first, err := evalPanel(g, 0, 1, n)
	if err != nil {
		return nil, err
	}
	panels := []panel{first}

	total := make([]complex128, n)
	for iter := 0; iter < opts.MaxIntervals; iter++ {
		worst := 0
		errSum := 0.0
		for i := range panels {
			errSum += panels[i].err
			if panels[i].err > panels[worst].err {
				worst = i
			}
		}

		for i := range total {
			total[i] = 0
		}
		maxAbs := 0.0
		for i := range panels {
			for j := range total {
				total[j] += panels[i].sum[j]
			}
		}
		for j := range total {
			if a := cmplx.Abs(total[j]); a > maxAbs {
				maxAbs = a
			}
		}

		if errSum <= opts.AbsTol || errSum <= opts.RelTol*maxAbs {
			return total, nil
		}

		p := panels[worst]
		mid := 0.5 * (p.a + p.b)
		left, err := evalPanel(g, p.a, mid, n)
		if err != nil {
			return nil, err
		}
		right, err := evalPanel(g, mid, p.b, n)
		if err != nil {
			return nil, err
		}
		panels[worst] = left
		panels = append(panels, right)
	}

	for i := range total {
		total[i] = 0
	}
	for i := range panels {
		for j := range total {
			total[j] += panels[i].sum[j]
		}
	}
	return total, nil
}

// evalPanel applies the G7-K15 pair on [a, b] and estimates the error as
// the worst-component difference between the two rules.
func evalPanel(g Integrand, a, b float64, n int) (panel, error) {
	half := 0.5 * (b - a)
	center := 0.5 * (a + b)

	kronrod := make([]complex128, n)
	gauss := make([]complex128, n)
	buf := make([]complex128, n)

	for i, node := range gkNodes {
		xs := []float64{center - half*node, center + half*node}
		if node == 0 {
			xs = xs[:1]
		}
		for _, x := range xs {
			g(x, buf)
			for j, v := range buf {
				if cmplx.IsNaN(v) || cmplx.IsInf(v) {
					return panel{}, ErrQuadYieldedNaN
				}
				kronrod[j] += complex(gkWeights[i], 0) * v
				if i%2 == 1 {
					gauss[j] += complex(gaussWeights[i/2], 0) * v
				}
			}
		}
	}

	errEst := 0.0
	for j := range kronrod {
		kronrod[j] *= complex(half, 0)
		gauss[j] *= complex(half, 0)
		if d := cmplx.Abs(kronrod[j] - gauss[j]); d > errEst {
			errEst = d
		}
	}

	return panel{a: a, b: b, sum: kronrod, err: errEst}, nil
}
