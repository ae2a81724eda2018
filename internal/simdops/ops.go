// Package simdops wraps the SIMD-accelerated float64 kernels used in the
// R-factor hot paths. Function pointers allow the callers to stay free of
// direct vendor imports while delegating to optimized implementations.
//
// With Profile-Guided Optimization (Go 1.22+), these indirect calls can be
// devirtualized and inlined in hot loops.
package simdops

import (
	"github.com/tphakala/simd/f64"
)

// Ops provides SIMD-accelerated float64 operations.
type Ops struct {
	// DotProductUnsafe computes the dot product without bounds checking.
	// Use only when slices are guaranteed to have equal length.
	DotProductUnsafe func(a, b []float64) float64

	// ConvolveValid computes valid convolution of signal with kernel.
	ConvolveValid func(dst, signal, kernel []float64)

	// Sum returns the sum of all elements.
	Sum func(a []float64) float64

	// Scale multiplies each element by scalar s: dst[i] = a[i] * s
	Scale func(dst, a []float64, s float64)
}

var ops = Ops{
	DotProductUnsafe: f64.DotProductUnsafe,
	ConvolveValid:    f64.ConvolveValid,
	Sum:              f64.Sum,
	Scale:            f64.Scale,
}

// Get returns the shared Ops instance.
func Get() *Ops {
	return &ops
}
