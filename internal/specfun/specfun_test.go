package specfun

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestHurwitzZetaKnownValues(t *testing.T) {
	cases := []struct {
		s    float64
		a    complex128
		want complex128
	}{
		{2, 1, complex(math.Pi*math.Pi/6, 0)},
		{2, 0.5, complex(math.Pi*math.Pi/2, 0)},
		{3, 1, complex(1.2020569031595943, 0)},
		{4, 1, complex(math.Pow(math.Pi, 4)/90, 0)},
		// zeta(2, 2) = pi^2/6 - 1
		{2, 2, complex(math.Pi*math.Pi/6-1, 0)},
	}

	for _, tc := range cases {
		got, err := HurwitzZeta(tc.s, tc.a)
		if err != nil {
			t.Fatalf("HurwitzZeta(%v, %v) failed: %v", tc.s, tc.a, err)
		}
		if cmplx.Abs(got-tc.want) > 1e-12*cmplx.Abs(tc.want) {
			t.Fatalf("HurwitzZeta(%v, %v): got %v want %v", tc.s, tc.a, got, tc.want)
		}
	}
}

func TestHurwitzZetaConjugateSymmetry(t *testing.T) {
	a := complex(1.5, 2.25)

	z1, err := HurwitzZeta(2.3, a)
	if err != nil {
		t.Fatalf("HurwitzZeta failed: %v", err)
	}
	z2, err := HurwitzZeta(2.3, cmplx.Conj(a))
	if err != nil {
		t.Fatalf("HurwitzZeta failed: %v", err)
	}

	if cmplx.Abs(z1-cmplx.Conj(z2)) > 1e-12*cmplx.Abs(z1) {
		t.Fatalf("conjugate symmetry violated: %v vs %v", z1, z2)
	}
}

func TestHurwitzZetaSeriesAgreement(t *testing.T) {
	// For large s the direct series converges quickly and provides an
	// independent reference.
	const s = 8.0
	a := complex(0.75, 0.5)

	direct := complex(0, 0)
	for k := 0; k < 200; k++ {
		direct += cmplx.Pow(a+complex(float64(k), 0), complex(-s, 0))
	}

	got, err := HurwitzZeta(s, a)
	if err != nil {
		t.Fatalf("HurwitzZeta failed: %v", err)
	}
	if cmplx.Abs(got-direct) > 1e-11*cmplx.Abs(direct) {
		t.Fatalf("series disagreement: got %v want %v", got, direct)
	}
}

func TestHurwitzZetaInvalid(t *testing.T) {
	if _, err := HurwitzZeta(1, 1); err == nil {
		t.Fatal("expected error at pole s = 1")
	}
	if _, err := HurwitzZeta(2, complex(-1, 0)); err == nil {
		t.Fatal("expected error for Re(a) <= 0")
	}
}

func TestCothIdentity(t *testing.T) {
	z := complex(0.7, -1.3)
	got := Coth(z)
	want := cmplx.Cosh(z) / cmplx.Sinh(z)
	if cmplx.Abs(got-want) > 1e-14 {
		t.Fatalf("coth mismatch: got %v want %v", got, want)
	}
}

func TestCot(t *testing.T) {
	if got, want := Cot(math.Pi/4), 1.0; math.Abs(got-want) > 1e-12 {
		t.Fatalf("cot mismatch: got %v want %v", got, want)
	}
}
