// Package fit approximates bosonic environment characteristics with sums
// of decaying exponentials, the form required by hierarchical equation of
// motion solvers.
//
// Three routes are available. SpectralFitter matches a spectral density
// with underdamped modes in Meier-Tannor form and expands each mode into
// Matsubara exponents. CorrelationFitter matches the real and imaginary
// parts of a correlation function directly with damped oscillations.
// FitPowerSpectrum builds an adaptive barycentric rational interpolant of
// a power spectrum and converts its stable poles into exponents.
//
// All three return an exponent.Bath plus diagnostics; a fit that misses
// its error target reports the achieved error rather than failing.
package fit
