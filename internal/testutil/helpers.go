// Package testutil provides reusable test helpers and synthetic curve
// generators for R-factor tests.
package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Default tolerances for various test scenarios.
const (
	DefaultTolerance = 1e-10
	InterpTolerance  = 1e-8
	RTolerance       = 1e-6
)

// AssertNoNaNOrInf verifies that no elements in the slice are NaN or Inf.
func AssertNoNaNOrInf(t *testing.T, s []float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if math.IsNaN(v) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(v, 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// AssertAllInRange verifies that all elements are within [min, max].
func AssertAllInRange(t *testing.T, s []float64, minVal, maxVal float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if v < minVal || v > maxVal {
			return assert.Fail(t, "value out of range",
				"s[%d]=%f is outside range [%f, %f]", i, v, minVal, maxVal)
		}
	}
	return true
}

// AssertInRange verifies that a value is within [min, max].
func AssertInRange(t *testing.T, value, minVal, maxVal float64, msgAndArgs ...any) bool {
	t.Helper()
	if value < minVal || value > maxVal {
		return assert.Fail(t, "value out of range",
			"value %f is outside range [%f, %f]", value, minVal, maxVal)
	}
	return true
}

// AssertUnitSum verifies that the coefficients sum to one.
func AssertUnitSum(t *testing.T, coeffs []float64, tolerance float64) bool {
	t.Helper()
	var sum float64
	for _, c := range coeffs {
		sum += c
	}
	return assert.InDelta(t, 1.0, sum, tolerance, "coefficient sum = %f, want 1", sum)
}

// AssertRelativeError verifies that the relative error between actual and
// expected is within tolerance.
func AssertRelativeError(t *testing.T, expected, actual, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if expected == 0 {
		return assert.InDelta(t, expected, actual, tolerance, msgAndArgs...)
	}
	relError := math.Abs(actual-expected) / math.Abs(expected)
	return assert.LessOrEqual(t, relError, tolerance,
		"relative error %e exceeds tolerance %e (expected=%f, actual=%f)",
		relError, tolerance, expected, actual)
}

// AssertSlicesClose verifies element-wise agreement within an absolute delta.
func AssertSlicesClose(t *testing.T, expected, actual []float64, delta float64, msgAndArgs ...any) bool {
	t.Helper()
	if !assert.Equal(t, len(expected), len(actual), "slice length mismatch") {
		return false
	}
	for i := range expected {
		if !assert.InDelta(t, expected[i], actual[i], delta,
			"mismatch at index %d", i) {
			return false
		}
	}
	return true
}

// UniformEnergies returns n energies starting at e0 with spacing step.
func UniformEnergies(e0, step float64, n int) []float64 {
	es := make([]float64, n)
	for i := range es {
		es[i] = e0 + float64(i)*step
	}
	return es
}

// LorentzianPeak returns a Lorentzian bump of the given center, half-width
// and height, on a constant background.
func LorentzianPeak(center, width, height, background float64) func(e float64) float64 {
	return func(e float64) float64 {
		u := (e - center) / width
		return background + height/(1+u*u)
	}
}

// Sample evaluates f on every energy in es.
func Sample(f func(float64) float64, es []float64) []float64 {
	out := make([]float64, len(es))
	for i, e := range es {
		out[i] = f(e)
	}
	return out
}
