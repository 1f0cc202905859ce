package exponent

// Bath bundles an exponential decomposition with the bath temperature and
// the opaque coupling-operator handle consumed by downstream solvers. The
// handle is carried through untouched; this package never interprets it.
//
// A Bath is immutable after construction and safe for concurrent use.
type Bath struct {
	// Coupling is the system-bath coupling operator handle supplied by the
	// caller, passed through to the consuming solver.
	Coupling any

	// Exponents is the sum-of-exponentials representation of the bath
	// correlation function.
	Exponents Decomposition

	tag  string
	t    float64
	hasT bool
}

// BathOption configures bath construction.
type BathOption func(*bathConfig)

type bathConfig struct {
	tag     string
	t       float64
	hasT    bool
	combine bool
}

// WithTag attaches an identifier to the bath.
func WithTag(tag string) BathOption {
	return func(c *bathConfig) { c.tag = tag }
}

// WithTemperature records the bath temperature. Without it, operations that
// need the temperature (spectral-density reconstruction) fail with
// [ErrNoTemperature].
func WithTemperature(t float64) BathOption {
	return func(c *bathConfig) { c.t = t; c.hasT = true }
}

// WithoutCombine keeps same-rate exponents separate instead of merging
// them.
func WithoutCombine() BathOption {
	return func(c *bathConfig) { c.combine = false }
}

// NewBath builds a bath from parallel coefficient/rate slices for the real
// and imaginary channels of the correlation function. Same-rate exponents
// are merged unless [WithoutCombine] is given. Slice lengths must match per
// channel or the constructor fails with [ErrLengthMismatch] before any
// assembly happens.
func NewBath(coupling any, ckReal, vkReal, ckImag, vkImag []complex128, opts ...BathOption) (*Bath, error) {
	cfg := bathConfig{combine: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	d, err := Build(ckReal, vkReal, ckImag, vkImag)
	if err != nil {
		return nil, err
	}
	if cfg.combine {
		d = d.Combine()
	}

	return &Bath{
		Coupling:  coupling,
		Exponents: d,
		tag:       cfg.tag,
		t:         cfg.t,
		hasT:      cfg.hasT,
	}, nil
}

// FromDecomposition wraps an existing decomposition as a bath. Same-rate
// exponents are merged unless [WithoutCombine] is given.
func FromDecomposition(coupling any, d Decomposition, opts ...BathOption) *Bath {
	cfg := bathConfig{combine: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.combine {
		d = d.Combine()
	}

	return &Bath{
		Coupling:  coupling,
		Exponents: d,
		tag:       cfg.tag,
		t:         cfg.t,
		hasT:      cfg.hasT,
	}
}

// Tag returns the bath identifier.
func (b *Bath) Tag() string { return b.tag }

// Temperature returns the bath temperature and whether one was set.
func (b *Bath) Temperature() (float64, bool) { return b.t, b.hasT }

// CorrelationFunction evaluates the reconstructed correlation function.
func (b *Bath) CorrelationFunction(t float64) complex128 {
	return b.Exponents.CorrelationFunction(t)
}

// PowerSpectrum evaluates the reconstructed power spectrum.
func (b *Bath) PowerSpectrum(w float64) float64 {
	return b.Exponents.PowerSpectrum(w)
}

// SpectralDensityAt reconstructs the spectral density at frequency w. It
// requires a temperature; baths built without one return
// [ErrNoTemperature].
func (b *Bath) SpectralDensityAt(w float64) (float64, error) {
	if !b.hasT {
		return 0, ErrNoTemperature
	}
	return b.Exponents.SpectralDensity(w, b.t), nil
}
