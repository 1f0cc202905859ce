package env

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/cwbudde/algo-bath/internal/testutil"
)

func TestOccupation(t *testing.T) {
	testutil.RequireNear(t, Occupation(1, 0), 0, 0)
	testutil.RequireNear(t, Occupation(0, 1), 0, 0)
	testutil.RequireNearRel(t, Occupation(1, 1), 1/(math.E-1), 1e-12)

	// n(-w) = -(n(w)+1)
	n := Occupation(0.7, 2.0)
	testutil.RequireNearRel(t, Occupation(-0.7, 2.0), -(n + 1), 1e-12)
}

func TestDrudeLorentzSpectralDensity(t *testing.T) {
	e, err := NewDrudeLorentz(1.0, 0.5, 2.0)
	if err != nil {
		t.Fatalf("NewDrudeLorentz: %v", err)
	}

	// J peaks at w = gamma with value lam.
	testutil.RequireNearRel(t, e.SpectralDensity(e.Gamma), e.Lam, 1e-12)

	// J is odd.
	for _, w := range []float64{0.3, 1.7, 9.2} {
		testutil.RequireNear(t, e.SpectralDensity(-w), -e.SpectralDensity(w), 1e-15)
	}
	testutil.RequireNear(t, e.SpectralDensity(0), 0, 0)
}

func TestPowerSpectrumDetailedBalance(t *testing.T) {
	e, err := NewDrudeLorentz(0.75, 0.5, 2.0)
	if err != nil {
		t.Fatalf("NewDrudeLorentz: %v", err)
	}
	for _, w := range []float64{0.2, 1.0, 3.5} {
		ratio := e.PowerSpectrum(-w) / e.PowerSpectrum(w)
		testutil.RequireNearRel(t, ratio, math.Exp(-w/e.T), 1e-10)
	}
	if s := e.PowerSpectrum(0); math.IsNaN(s) || math.IsInf(s, 0) {
		t.Fatalf("power spectrum at w=0 not finite: %v", s)
	}
}

func TestPowerSpectrumZeroTemperature(t *testing.T) {
	e, err := NewDrudeLorentz(0, 0.5, 2.0)
	if err != nil {
		t.Fatalf("NewDrudeLorentz: %v", err)
	}
	testutil.RequireNearRel(t, e.PowerSpectrum(1.3), 2*e.SpectralDensity(1.3), 1e-12)
	testutil.RequireNear(t, e.PowerSpectrum(-1.3), 0, 0)
}

func TestDrudeLorentzCorrelationHighTemperature(t *testing.T) {
	// At T >> gamma the correlation function approaches
	// 2*lam*T*exp(-gamma*t) - i*lam*gamma*exp(-gamma*t).
	e, err := NewDrudeLorentz(20.0, 0.5, 1.0)
	if err != nil {
		t.Fatalf("NewDrudeLorentz: %v", err)
	}
	for _, tt := range []float64{0.5, 1.0, 2.0} {
		c := e.CorrelationFunction(tt)
		decay := math.Exp(-e.Gamma * tt)
		testutil.RequireNearRel(t, real(c), 2*e.Lam*e.T*decay, 1e-3)
		testutil.RequireNearRel(t, imag(c), -e.Lam*e.Gamma*decay, 1e-10)
	}
}

func TestCorrelationHermitianSymmetry(t *testing.T) {
	e, err := NewDrudeLorentz(2.0, 0.5, 1.0)
	if err != nil {
		t.Fatalf("NewDrudeLorentz: %v", err)
	}
	c := e.CorrelationFunction(0.7)
	testutil.RequireComplexNear(t, e.CorrelationFunction(-0.7), cmplx.Conj(c), 1e-14)
}

func TestDrudeLorentzMatsubaraZeroTemperature(t *testing.T) {
	e, err := NewDrudeLorentz(0, 0.5, 1.0)
	if err != nil {
		t.Fatalf("NewDrudeLorentz: %v", err)
	}
	if _, err := e.Matsubara(100); !errors.Is(err, ErrZeroTemperature) {
		t.Fatalf("Matsubara at T=0: got %v, want ErrZeroTemperature", err)
	}
}

func TestUnderdampedMatsubaraMatchesQuadrature(t *testing.T) {
	e, err := NewUnderdamped(1.0, 0.5, 0.4, 1.0)
	if err != nil {
		t.Fatalf("NewUnderdamped: %v", err)
	}
	dec, err := e.Matsubara(2000)
	if err != nil {
		t.Fatalf("Matsubara: %v", err)
	}
	for _, tt := range []float64{0.1, 0.5, 1.5} {
		want := e.CorrelationFunction(tt)
		got := dec.CorrelationFunction(tt)
		testutil.RequireComplexNear(t, got, want, 1e-3*cmplx.Abs(want)+1e-6)
	}
}

func TestUnderdampedSpectralDensityResonance(t *testing.T) {
	e, err := NewUnderdamped(1.0, 0.5, 0.4, 1.0)
	if err != nil {
		t.Fatalf("NewUnderdamped: %v", err)
	}
	// At w = w0 the denominator reduces to gamma^2 * w0^2.
	testutil.RequireNearRel(t, e.SpectralDensity(e.W0),
		e.Lam*e.Lam/(e.Gamma*e.W0), 1e-12)
}

func TestUnderdampedMatsubaraZeroTemperature(t *testing.T) {
	if _, err := UnderdampedMatsubara(0.5, 0.4, 1.0, 0, 10); !errors.Is(err, ErrZeroTemperature) {
		t.Fatalf("UnderdampedMatsubara at T=0: got %v, want ErrZeroTemperature", err)
	}
}

func TestOhmicCorrelationMatchesQuadrature(t *testing.T) {
	// The closed zeta form and the generic quadrature path must agree for
	// an exponentially cut off spectral density.
	e, err := NewOhmic(1.0, 1.0, 1.0, 1.0)
	if err != nil {
		t.Fatalf("NewOhmic: %v", err)
	}
	ts := []float64{0.2, 0.5, 1.0, 2.0}
	quad := correlationFromSpectralDensity(e.SpectralDensity, e.T, ts, defaultConfig().quad)
	for i, tt := range ts {
		got := e.CorrelationFunction(tt)
		testutil.RequireComplexNear(t, got, quad[i], 1e-5*cmplx.Abs(quad[i])+1e-8)
	}
}

func TestOhmicZeroTemperatureClosedForm(t *testing.T) {
	e, err := NewOhmic(0, 1.0, 1.0, 1.0)
	if err != nil {
		t.Fatalf("NewOhmic: %v", err)
	}
	// s=1, T=0: C(t) = (alpha*wc^2/pi) * (1+i*wc*t)^-2.
	c := e.CorrelationFunction(0)
	testutil.RequireComplexNearRel(t, c, complex(1/math.Pi, 0), 1e-12)
	c = e.CorrelationFunction(1)
	want := complex(1/math.Pi, 0) / ((1 + 1i) * (1 + 1i))
	testutil.RequireComplexNearRel(t, c, want, 1e-12)
}

func TestModelValidation(t *testing.T) {
	cases := []error{
		func() error { _, err := NewDrudeLorentz(1, -0.5, 2); return err }(),
		func() error { _, err := NewDrudeLorentz(-1, 0.5, 2); return err }(),
		func() error { _, err := NewUnderdamped(1, 0.5, 0, 1); return err }(),
		func() error { _, err := NewUnderdamped(1, 0.5, 0.4, -1); return err }(),
		func() error { _, err := NewOhmic(1, 1, 1, 0); return err }(),
		func() error { _, err := NewOhmic(1, 1, -1, 1); return err }(),
	}
	for i, err := range cases {
		if !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("case %d: got %v, want ErrInvalidParameter", i, err)
		}
	}
}

func TestFromSpectralDensityRoundTrip(t *testing.T) {
	ref, err := NewDrudeLorentz(1.0, 0.5, 2.0)
	if err != nil {
		t.Fatalf("NewDrudeLorentz: %v", err)
	}
	sd := FromSpectralDensity(ref.T, ref.SpectralDensity)
	ps := FromPowerSpectrum(ref.T, sd.PowerSpectrum)
	for _, w := range []float64{-3, -0.5, 0.4, 1.0, 5.0} {
		testutil.RequireNearRel(t, ps.SpectralDensity(w), ref.SpectralDensity(w), 1e-10)
	}
}

func TestFromSpectralDensityCorrelation(t *testing.T) {
	ref, err := NewUnderdamped(1.0, 0.5, 0.4, 1.0)
	if err != nil {
		t.Fatalf("NewUnderdamped: %v", err)
	}
	sd := FromSpectralDensity(ref.T, ref.SpectralDensity)
	ts := []float64{0.0, 0.3, 1.2}
	got := SampleCorrelationFunction(sd, ts)
	want := SampleCorrelationFunction(ref, ts)
	for i := range ts {
		testutil.RequireComplexNear(t, got[i], want[i], 1e-10)
	}
}

func TestFromCorrelationFunctionPowerSpectrum(t *testing.T) {
	// C(t) = exp(-(1+i)t) for t >= 0 has S(w) = 2 / (1 + (w-1)^2).
	cf := func(t float64) complex128 {
		return cmplx.Exp(complex(-t, -t))
	}
	e := FromCorrelationFunction(1.0, cf, WithFourierWindow(25, 0.01))
	for _, w := range []float64{-2, 0, 1, 3} {
		want := 2 / (1 + (w-1)*(w-1))
		testutil.RequireNear(t, e.PowerSpectrum(w), want, 1e-3)
	}
}

func TestSampledConstructorsValidate(t *testing.T) {
	if _, err := FromSpectralDensitySamples(1, []float64{1, 2}, []float64{0}); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("spectral density samples: got %v, want ErrLengthMismatch", err)
	}
	if _, err := FromPowerSpectrumSamples(1, []float64{1, 2}, []float64{0}); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("power spectrum samples: got %v, want ErrLengthMismatch", err)
	}
	if _, err := FromCorrelationFunctionSamples(1, []complex128{1}, []float64{0, 1}); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("correlation samples: got %v, want ErrLengthMismatch", err)
	}
}

func TestFromSpectralDensitySamplesInterpolates(t *testing.T) {
	ref, err := NewDrudeLorentz(1.0, 0.5, 2.0)
	if err != nil {
		t.Fatalf("NewDrudeLorentz: %v", err)
	}
	ws := testutil.Linspace(0, 20, 400)
	e, err := FromSpectralDensitySamples(ref.T, SampleSpectralDensity(ref, ws), ws)
	if err != nil {
		t.Fatalf("FromSpectralDensitySamples: %v", err)
	}
	for _, w := range []float64{0.17, 1.83, 7.5} {
		testutil.RequireNearRel(t, e.SpectralDensity(w), ref.SpectralDensity(w), 1e-4)
	}
}

func TestDrudeLorentzMatsubaraTruncation(t *testing.T) {
	e, err := NewDrudeLorentz(1.0, 0.5, 1.0)
	if err != nil {
		t.Fatalf("NewDrudeLorentz: %v", err)
	}
	dec, err := e.Matsubara(500)
	if err != nil {
		t.Fatalf("Matsubara: %v", err)
	}

	// A 500-term truncation already reproduces the converged series.
	for _, tt := range []float64{0, 1, 5, 10} {
		want := e.CorrelationFunction(tt)
		testutil.RequireComplexNear(t, dec.CorrelationFunction(tt), want, 1e-3*cmplx.Abs(want)+1e-12)
	}
}

func TestSpectralDensityPositivity(t *testing.T) {
	drude, err := NewDrudeLorentz(1.0, 0.7, 1.3)
	if err != nil {
		t.Fatalf("NewDrudeLorentz: %v", err)
	}
	ud, err := NewUnderdamped(1.0, 0.8, 0.4, 2.0)
	if err != nil {
		t.Fatalf("NewUnderdamped: %v", err)
	}
	ohmic, err := NewOhmic(1.0, 0.5, 3.0, 1.5)
	if err != nil {
		t.Fatalf("NewOhmic: %v", err)
	}

	models := []Environment{drude, ud, ohmic}
	for _, m := range models {
		for w := 0.05; w < 20; w += 0.05 {
			if j := m.SpectralDensity(w); j < 0 {
				t.Fatalf("%T: J(%g) = %g < 0", m, w, j)
			}
		}
	}
}

func TestDrudeLorentzFourierPowerSpectrum(t *testing.T) {
	e, err := NewDrudeLorentz(1.0, 0.5, 1.0)
	if err != nil {
		t.Fatalf("NewDrudeLorentz: %v", err)
	}
	dec, err := e.Matsubara(100)
	if err != nil {
		t.Fatalf("Matsubara: %v", err)
	}

	// Derive S from the decomposition's correlation function by FFT and
	// compare against its closed-form power spectrum.
	fe := FromCorrelationFunction(1.0, dec.CorrelationFunction, WithFourierWindow(25, 0.005))
	for _, w := range []float64{0.5, 2, 6} {
		testutil.RequireNearRel(t, fe.PowerSpectrum(w), dec.PowerSpectrum(w), 5e-3)
	}
}

func TestFromCorrelationFunctionSpectralDensity(t *testing.T) {
	// Closing the C -> S -> J loop: the density recovered from a known
	// correlation function must match the analytic one.
	e, err := NewDrudeLorentz(1.0, 0.5, 1.0)
	if err != nil {
		t.Fatalf("NewDrudeLorentz: %v", err)
	}
	dec, err := e.Matsubara(100)
	if err != nil {
		t.Fatalf("Matsubara: %v", err)
	}
	fe := FromCorrelationFunction(1.0, dec.CorrelationFunction, WithFourierWindow(25, 0.005))
	for _, w := range []float64{0.5, 2, 6} {
		testutil.RequireNearRel(t, fe.SpectralDensity(w), e.SpectralDensity(w), 1e-2)
	}
}

func TestTagAndTemperature(t *testing.T) {
	e, err := NewOhmic(0.5, 1, 1, 1, WithTag("bath-A"))
	if err != nil {
		t.Fatalf("NewOhmic: %v", err)
	}
	if e.Tag() != "bath-A" {
		t.Fatalf("tag: got %q", e.Tag())
	}
	temp, ok := e.Temperature()
	if !ok {
		t.Fatal("analytic model reports no temperature")
	}
	testutil.RequireNear(t, temp, 0.5, 0)
}

func TestWithoutTemperature(t *testing.T) {
	j := func(w float64) float64 { return w * math.Exp(-w) }
	e := FromSpectralDensity(0, j, WithoutTemperature())

	if _, ok := e.Temperature(); ok {
		t.Fatal("environment reports a temperature")
	}
	testutil.RequireNearRel(t, e.SpectralDensity(1), j(1), 1e-12)

	if _, err := e.PowerSpectrumAt(1); !errors.Is(err, ErrNoTemperature) {
		t.Fatalf("PowerSpectrumAt error: got %v", err)
	}
	if _, err := e.CorrelationFunctionAt(1); !errors.Is(err, ErrNoTemperature) {
		t.Fatalf("CorrelationFunctionAt error: got %v", err)
	}
	if !math.IsNaN(e.PowerSpectrum(1)) {
		t.Fatal("power spectrum without temperature is not NaN")
	}
	if c := e.CorrelationFunction(1); !math.IsNaN(real(c)) {
		t.Fatal("correlation function without temperature is not NaN")
	}
	for _, c := range SampleCorrelationFunction(e, []float64{0, 1}) {
		if !math.IsNaN(real(c)) {
			t.Fatal("sampled correlation function without temperature is not NaN")
		}
	}

	ps := FromPowerSpectrum(0, func(w float64) float64 { return 2 / (1 + w*w) }, WithoutTemperature())
	testutil.RequireNearRel(t, ps.PowerSpectrum(1), 1.0, 1e-12)
	if _, err := ps.SpectralDensityAt(1); !errors.Is(err, ErrNoTemperature) {
		t.Fatalf("SpectralDensityAt error: got %v", err)
	}
	if _, err := ps.CorrelationFunctionAt(1); !errors.Is(err, ErrNoTemperature) {
		t.Fatalf("CorrelationFunctionAt error: got %v", err)
	}

	// The C -> S route needs no occupation number, so it stays available.
	ce := FromCorrelationFunction(0, func(t float64) complex128 {
		return cmplx.Exp(complex(-t, -t))
	}, WithoutTemperature(), WithFourierWindow(25, 0.01))
	testutil.RequireNearRel(t, ce.PowerSpectrum(1), 2.0, 1e-2)
	if _, err := ce.SpectralDensityAt(1); !errors.Is(err, ErrNoTemperature) {
		t.Fatalf("SpectralDensityAt error: got %v", err)
	}
}
