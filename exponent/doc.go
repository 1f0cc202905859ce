// Package exponent represents bath correlation functions as finite sums of
// damped exponentials
//
//	C(t) ~ sum_k c_k exp(-v_k t)
//
// the form consumed by hierarchical-equations-of-motion style solvers. A
// [Decomposition] is an ordered list of exponent records; a [Bath] bundles a
// decomposition with the bath temperature and the opaque system-bath
// coupling handle that downstream solvers interpret.
package exponent
