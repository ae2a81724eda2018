// Package grid provides utilities for working with uniform and strictly
// increasing 1D sample grids: monotonicity checks, step validation, and
// index arithmetic for windows and overlaps.
package grid

import (
	"errors"
	"fmt"
	"math"
)

// Relative tolerance for uniform step validation.
const stepTolerance = 1e-6

// ErrNotIncreasing indicates a grid whose values are not strictly increasing.
var ErrNotIncreasing = errors.New("grid: values not strictly increasing")

// ErrNotUniform indicates a grid whose spacing deviates from a uniform step.
var ErrNotUniform = errors.New("grid: spacing not uniform")

// StrictlyIncreasing reports whether xs is strictly increasing.
// Slices of length 0 or 1 are trivially increasing.
func StrictlyIncreasing(xs []float64) bool {
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return false
		}
	}
	return true
}

// UniformStep verifies that xs is strictly increasing with constant spacing
// step, within a relative tolerance. It returns the measured first spacing
// on success.
func UniformStep(xs []float64, step float64) (float64, error) {
	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return 0, fmt.Errorf("%w: step %v", ErrNotUniform, step)
	}
	if len(xs) < 2 {
		return step, nil
	}
	tol := stepTolerance * step
	for i := 1; i < len(xs); i++ {
		d := xs[i] - xs[i-1]
		if d <= 0 {
			return 0, fmt.Errorf("%w: at index %d", ErrNotIncreasing, i)
		}
		if math.Abs(d-step) > tol {
			return 0, fmt.Errorf("%w: spacing %v at index %d, want %v", ErrNotUniform, d, i, step)
		}
	}
	return xs[1] - xs[0], nil
}

// FirstAtOrAbove returns the index of the first element of xs that is >= x.
// If all elements are below x it returns len(xs). xs must be sorted ascending.
func FirstAtOrAbove(xs []float64, x float64) int {
	lo, hi := 0, len(xs)
	for lo < hi {
		mid := (lo + hi) / 2
		if xs[mid] < x {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// LastAtOrBelow returns the index of the last element of xs that is <= x.
// If all elements are above x it returns -1. xs must be sorted ascending.
func LastAtOrBelow(xs []float64, x float64) int {
	return FirstAtOrAbove(xs, math.Nextafter(x, math.Inf(1))) - 1
}

// Window returns the half-open index range [lo, hi) of elements of xs that
// lie within [xmin, xmax]. The range is empty when no element qualifies.
func Window(xs []float64, xmin, xmax float64) (lo, hi int) {
	lo = FirstAtOrAbove(xs, xmin)
	hi = LastAtOrBelow(xs, xmax) + 1
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// Overlap computes the intersection of two index intervals expressed on a
// shared grid: the first starts at index a1 with n1 samples, the second at
// a2 with n2 samples. It returns the start index of the intersection and its
// length; length 0 means the intervals are disjoint.
func Overlap(a1, n1, a2, n2 int) (lo, n int) {
	lo = a1
	if a2 > lo {
		lo = a2
	}
	hi := a1 + n1
	if h2 := a2 + n2; h2 < hi {
		hi = h2
	}
	if hi <= lo {
		return lo, 0
	}
	return lo, hi - lo
}
