// Package leastsq implements box-bounded nonlinear least squares via the
// Levenberg-Marquardt method with a forward-difference Jacobian. It is the
// workhorse behind the spectral-density and correlation-function fitters.
package leastsq

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Solver errors.
var (
	ErrDimensionMismatch = errors.New("leastsq: bound and parameter lengths differ")
	ErrNoResiduals       = errors.New("leastsq: residual count must be >= parameter count")
)

// Residuals evaluates the residual vector at params, writing one residual
// per data point into dst.
type Residuals func(params []float64, dst []float64)

// Problem describes a bounded least-squares problem.
type Problem struct {
	// F fills the residual vector.
	F Residuals

	// M is the number of residuals F produces.
	M int

	// Lower and Upper are optional box bounds, one entry per parameter.
	// Nil means unbounded on that side.
	Lower, Upper []float64
}

// Options tunes the solver. Zero values select defaults.
type Options struct {
	MaxIterations int     // default 300
	CostTol       float64 // relative decrease of the cost, default 1e-12
	StepTol       float64 // infinity norm of the step, default 1e-12
	InitialDamp   float64 // initial LM damping factor, default 1e-3
}

func (o Options) withDefaults() Options {
	if o.MaxIterations == 0 {
		o.MaxIterations = 300
	}
	if o.CostTol == 0 {
		o.CostTol = 1e-12
	}
	if o.StepTol == 0 {
		o.StepTol = 1e-12
	}
	if o.InitialDamp == 0 {
		o.InitialDamp = 1e-3
	}
	return o
}

// Solve minimizes the sum of squared residuals starting from x0, keeping
// every iterate inside the problem bounds. It returns the best parameters
// found and the final residual sum of squares. Failure to converge to the
// tolerances is not an error; the caller judges the achieved cost.
func Solve(p Problem, x0 []float64, opts Options) ([]float64, float64, error) {
	n := len(x0)
	if p.M < n {
		return nil, 0, ErrNoResiduals
	}
	if (p.Lower != nil && len(p.Lower) != n) || (p.Upper != nil && len(p.Upper) != n) {
		return nil, 0, ErrDimensionMismatch
	}
	opts = opts.withDefaults()

	x := make([]float64, n)
	copy(x, x0)
	clamp(x, p.Lower, p.Upper)

	r := make([]float64, p.M)
	rTrial := make([]float64, p.M)
	xTrial := make([]float64, n)
	jac := mat.NewDense(p.M, n, nil)

	p.F(x, r)
	cost := floats.Dot(r, r)
	damp := opts.InitialDamp

	for iter := 0; iter < opts.MaxIterations; iter++ {
		numJacobian(p, x, r, jac, xTrial, rTrial)

		// Normal equations: (J^T J + damp * diag(J^T J)) step = -J^T r.
		var jtj mat.Dense
		jtj.Mul(jac.T(), jac)

		g := make([]float64, n)
		for j := 0; j < n; j++ {
			s := 0.0
			for i := 0; i < p.M; i++ {
				s += jac.At(i, j) * r[i]
			}
			g[j] = -s
		}

		accepted := false
		var step []float64
		for try := 0; try < 25; try++ {
			var a mat.Dense
			a.CloneFrom(&jtj)
			for j := 0; j < n; j++ {
				d := jtj.At(j, j)
				if d == 0 {
					d = 1
				}
				a.Set(j, j, d*(1+damp))
			}

			var sol mat.VecDense
			if err := sol.SolveVec(&a, mat.NewVecDense(n, g)); err != nil {
				damp *= 10
				continue
			}

			step = sol.RawVector().Data
			for j := 0; j < n; j++ {
				xTrial[j] = x[j] + step[j]
			}
			clamp(xTrial, p.Lower, p.Upper)

			p.F(xTrial, rTrial)
			trialCost := floats.Dot(rTrial, rTrial)
			if math.IsNaN(trialCost) || trialCost >= cost {
				damp *= 10
				continue
			}

			copy(x, xTrial)
			copy(r, rTrial)
			improvement := cost - trialCost
			cost = trialCost
			damp = math.Max(damp*0.3, 1e-12)
			accepted = true

			if improvement <= opts.CostTol*math.Max(cost, 1e-300) {
				return x, cost, nil
			}
			break
		}

		if !accepted {
			return x, cost, nil
		}
		if step != nil && maxAbsStep(step, x) <= opts.StepTol {
			return x, cost, nil
		}
	}

	return x, cost, nil
}

// numJacobian fills jac with forward differences of the residuals, flipping
// to backward differences against an active upper bound.
func numJacobian(p Problem, x, r []float64, jac *mat.Dense, xBuf, rBuf []float64) {
	n := len(x)
	for j := 0; j < n; j++ {
		h := 1e-8 * math.Max(math.Abs(x[j]), 1)

		copy(xBuf, x)
		xBuf[j] = x[j] + h
		if p.Upper != nil && xBuf[j] > p.Upper[j] {
			h = -h
			xBuf[j] = x[j] + h
		}

		p.F(xBuf, rBuf)
		inv := 1 / h
		for i := 0; i < p.M; i++ {
			jac.Set(i, j, (rBuf[i]-r[i])*inv)
		}
	}
}

func clamp(x, lower, upper []float64) {
	for i := range x {
		if lower != nil && x[i] < lower[i] {
			x[i] = lower[i]
		}
		if upper != nil && x[i] > upper[i] {
			x[i] = upper[i]
		}
	}
}

func maxAbsStep(step, x []float64) float64 {
	m := 0.0
	for i := range step {
		rel := math.Abs(step[i]) / math.Max(math.Abs(x[i]), 1)
		if rel > m {
			m = rel
		}
	}
	return m
}
