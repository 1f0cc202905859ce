// Package env characterizes the bosonic environment of an open quantum
// system through three equivalent functions: the spectral density J(w), the
// power spectrum S(w) and the two-time correlation function C(t). Any one
// of them determines the other two; the package supplies the conversions.
//
// Environments are built either from a user-provided characterization
// ([FromSpectralDensity], [FromPowerSpectrum], [FromCorrelationFunction]
// and their sampled variants) or from one of the closed-form models
// ([NewDrudeLorentz], [NewUnderdamped], [NewOhmic]). All environment values
// are immutable after construction and safe for concurrent use.
package env
