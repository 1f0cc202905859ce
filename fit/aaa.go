package fit

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-bath/exponent"
	"github.com/cwbudde/algo-bath/internal/polyroot"
)

// residueFloor is the magnitude below which a pole is treated as spurious
// and dropped from the rational approximation.
const residueFloor = 1e-10

// AAAResult holds a rational approximation of a power spectrum and the
// exponential bath assembled from its stable poles.
type AAAResult struct {
	// Bath is the exponential bath assembled from the filtered poles.
	Bath *exponent.Bath

	// Poles and Residues describe the lower-half-plane part of the
	// approximation after filtering.
	Poles, Residues []complex128

	// MaxRelErr is the maximum deviation of the approximation on the data
	// grid, relative to the largest sample magnitude.
	MaxRelErr float64

	support []complex128
	fvals   []complex128
	weights []complex128
}

// FitPowerSpectrum approximates the power spectrum samples ss on the
// frequency axis ws with an adaptive barycentric rational interpolant,
// keeps the poles in the lower half plane and converts them into bath
// exponents with c = -i·res and v = i·pole. The iteration stops when the
// relative deviation drops below the [WithTolerance] threshold or the
// interpolant reaches twice the [WithOrderCap] support points.
func FitPowerSpectrum(T float64, ws, ss []float64, opts ...Option) (*AAAResult, error) {
	if len(ws) != len(ss) {
		return nil, ErrLengthMismatch
	}
	if len(ws) == 0 {
		return nil, ErrNoSamples
	}
	cfg := applyOptions(opts)

	zs := make([]complex128, len(ws))
	fs := make([]complex128, len(ws))
	maxAbsF := 0.0
	for i := range ws {
		zs[i] = complex(ws[i], 0)
		fs[i] = complex(ss[i], 0)
		maxAbsF = math.Max(maxAbsF, math.Abs(ss[i]))
	}
	if maxAbsF == 0 {
		maxAbsF = 1
	}

	support, fvals, weights, maxErr := aaa(zs, fs, cfg.tol*maxAbsF, 2*cfg.orderCap)

	poles := symmetrizePoles(baryPoles(support, weights))
	keptPoles := make([]complex128, 0, len(poles))
	keptRes := make([]complex128, 0, len(poles))
	for _, p := range poles {
		res := baryResidue(support, fvals, weights, p)
		if imag(p) < 0 && cmplx.Abs(res) > residueFloor {
			keptPoles = append(keptPoles, p)
			keptRes = append(keptRes, res)
		}
	}

	ck := make([]complex128, len(keptPoles))
	ckReal := make([]complex128, len(keptPoles))
	ckImag := make([]complex128, len(keptPoles))
	vk := make([]complex128, len(keptPoles))
	for i := range keptPoles {
		ck[i] = -1i * keptRes[i]
		ckReal[i] = complex(real(ck[i]), 0)
		ckImag[i] = complex(imag(ck[i]), 0)
		vk[i] = 1i * keptPoles[i]
	}
	bath, err := exponent.NewBath(cfg.coupling, ckReal, vk, ckImag, vk,
		exponent.WithTemperature(T), exponent.WithTag(cfg.tag))
	if err != nil {
		return nil, err
	}

	return &AAAResult{
		Bath:      bath,
		Poles:     keptPoles,
		Residues:  keptRes,
		MaxRelErr: maxErr / maxAbsF,
		support:   support,
		fvals:     fvals,
		weights:   weights,
	}, nil
}

// Eval evaluates the barycentric interpolant at w. Support points are
// reproduced exactly.
func (r *AAAResult) Eval(w float64) float64 {
	z := complex(w, 0)
	var n, d complex128
	for j, zj := range r.support {
		if z == zj {
			return real(r.fvals[j])
		}
		q := r.weights[j] / (z - zj)
		n += q * r.fvals[j]
		d += q
	}
	return real(n / d)
}

// aaa runs the adaptive barycentric iteration: the next support point is
// the sample with the largest residual, and the weights are the smallest
// right singular vector of the Loewner matrix over the remaining samples.
func aaa(zs, fs []complex128, absTol float64, maxIter int) (support, fvals, weights []complex128, maxErr float64) {
	m := len(zs)
	inSupport := make([]bool, m)

	var mean complex128
	for _, f := range fs {
		mean += f
	}
	mean /= complex(float64(m), 0)
	r := make([]complex128, m)
	for i := range r {
		r[i] = mean
	}

	for iter := 0; iter < maxIter && len(support) < m-1; iter++ {
		next, worst := -1, -1.0
		for i := range zs {
			if inSupport[i] {
				continue
			}
			if err := cmplx.Abs(fs[i] - r[i]); err > worst {
				next, worst = i, err
			}
		}
		// The Loewner solve needs at least as many remaining samples as
		// support points.
		if next < 0 || m-(len(support)+1) < len(support)+1 {
			break
		}
		inSupport[next] = true
		support = append(support, zs[next])
		fvals = append(fvals, fs[next])

		rows := m - len(support)
		loewner := make([][]complex128, 0, rows)
		rest := make([]int, 0, rows)
		for i := range zs {
			if inSupport[i] {
				continue
			}
			rest = append(rest, i)
			row := make([]complex128, len(support))
			for j := range support {
				row[j] = (fs[i] - fvals[j]) / (zs[i] - support[j])
			}
			loewner = append(loewner, row)
		}
		weights = smallestSingularVector(loewner)

		maxErr = 0
		for _, i := range rest {
			var n, d complex128
			for j := range support {
				q := weights[j] / (zs[i] - support[j])
				n += q * fvals[j]
				d += q
			}
			r[i] = n / d
			if err := cmplx.Abs(fs[i] - r[i]); err > maxErr {
				maxErr = err
			}
		}
		if maxErr <= absTol {
			break
		}
	}
	return support, fvals, weights, maxErr
}

// smallestSingularVector returns the right singular vector of the complex
// matrix a belonging to its smallest singular value, computed through the
// real 2m x 2n embedding [[Re, -Im], [Im, Re]].
func smallestSingularVector(a [][]complex128) []complex128 {
	rows, cols := len(a), len(a[0])
	b := mat.NewDense(2*rows, 2*cols, nil)
	for i, row := range a {
		for j, v := range row {
			b.Set(i, j, real(v))
			b.Set(i, cols+j, -imag(v))
			b.Set(rows+i, j, imag(v))
			b.Set(rows+i, cols+j, real(v))
		}
	}

	var svd mat.SVD
	svd.Factorize(b, mat.SVDThinV)
	var v mat.Dense
	svd.VTo(&v)

	last := 2*cols - 1
	w := make([]complex128, cols)
	for j := range w {
		w[j] = complex(v.At(j, last), v.At(cols+j, last))
	}
	return w
}

// symmetrizePoles snaps the pole set of a real-valued spectrum onto exact
// conjugate mirror pairs. The root finder breaks the symmetry at roundoff
// level; averaging each pair keeps the retained lower-half poles consistent
// with their discarded mirrors. A set that does not pair up within
// [polyroot.ConjugateTol] is returned unchanged.
func symmetrizePoles(poles []complex128) []complex128 {
	pairs, err := polyroot.PairConjugates(poles)
	if err != nil {
		return poles
	}
	out := make([]complex128, 0, len(poles))
	for _, pr := range pairs {
		re := 0.5 * (real(pr[0]) + real(pr[1]))
		im := 0.5 * (math.Abs(imag(pr[0])) + math.Abs(imag(pr[1])))
		out = append(out, complex(re, im), complex(re, -im))
	}
	return out
}

// baryPoles computes the poles of the barycentric interpolant as the roots
// of the weighted node polynomial sum_j w_j * prod_{k != j} (z - z_k).
func baryPoles(support, weights []complex128) []complex128 {
	if len(support) < 2 {
		return nil
	}
	coeff := make([]complex128, len(support))
	others := make([]complex128, 0, len(support)-1)
	for j := range support {
		others = others[:0]
		for k, z := range support {
			if k != j {
				others = append(others, z)
			}
		}
		polyroot.AddScaled(coeff, polyroot.FromRoots(others), weights[j])
	}

	maxAbs := 0.0
	for _, c := range coeff {
		maxAbs = math.Max(maxAbs, cmplx.Abs(c))
	}
	start := 0
	for start < len(coeff)-1 && cmplx.Abs(coeff[start]) < 1e-13*maxAbs {
		start++
	}
	roots, err := polyroot.DurandKerner(coeff[start:])
	if err != nil {
		return nil
	}
	return roots
}

// baryResidue evaluates the residue of the interpolant at pole p as
// n(p)/d'(p) with d'(p) = -sum_j w_j/(p - z_j)^2.
func baryResidue(support, fvals, weights []complex128, p complex128) complex128 {
	var n, dd complex128
	for j := range support {
		q := weights[j] / (p - support[j])
		n += q * fvals[j]
		dd -= q / (p - support[j])
	}
	return n / dd
}
