// Package filter provides the modified-sinc (MS) smoothing kernel and
// same-length convolution used by the optional intensity smoothing stage.
//
// The MS kernel follows Schmid, Rath and Diebold, "Why and How
// Savitzky-Golay Filters Should Be Replaced", ACS Meas. Sci. Au 2022:
// a sinc core of degree-dependent frequency under a Gaussian-derived
// window, normalized to unit sum.
package filter

import (
	"errors"
	"fmt"
	"math"
)

// ErrKernelParams indicates invalid MS kernel parameters.
var ErrKernelParams = errors.New("filter: invalid kernel parameters")

// DefaultAlpha is the window width parameter recommended by the paper.
const DefaultAlpha = 4.0

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

// NewMSKernel builds a normalized modified-sinc smoothing kernel of the
// given degree (even, typically 2..8) and half-width m. The kernel has
// 2*m+1 taps. m must be at least degree/2+2.
func NewMSKernel(degree, m int, alpha float64) ([]float64, error) {
	if degree < 2 || degree%2 != 0 {
		return nil, fmt.Errorf("%w: degree %d must be a positive even number", ErrKernelParams, degree)
	}
	if minM := degree/2 + 2; m < minM {
		return nil, fmt.Errorf("%w: half-width %d too small for degree %d, need >= %d", ErrKernelParams, m, degree, minM)
	}
	if alpha <= 0 {
		return nil, fmt.Errorf("%w: alpha %v must be positive", ErrKernelParams, alpha)
	}

	kernel := make([]float64, 2*m+1)
	var sum float64
	for k := range kernel {
		x := float64(k-m) / (float64(m) + 1)

		window := math.Exp(-alpha*x*x) +
			math.Exp(-alpha*(x+2)*(x+2)) +
			math.Exp(-alpha*(x-2)*(x-2)) -
			2*math.Exp(-alpha) -
			math.Exp(-9*alpha)

		arg := (float64(degree) + 4) / 2 * x
		kernel[k] = window * sinc(arg)
		sum += kernel[k]
	}
	if sum == 0 {
		return nil, fmt.Errorf("%w: kernel sum is zero", ErrKernelParams)
	}
	for k := range kernel {
		kernel[k] /= sum
	}
	return kernel, nil
}

// SmoothSame convolves data with a symmetric unit-sum kernel and returns
// a result of the same length. Near the boundaries the kernel is
// renormalized over the in-range taps, so constant inputs remain
// constant everywhere.
func SmoothSame(data, kernel []float64) []float64 {
	n := len(data)
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	m := (len(kernel) - 1) / 2

	lo, hi := m, n-m // full-overlap output range [lo, hi)
	if lo < hi {
		convolveValid(out[lo:hi], data, kernel)
	} else {
		lo, hi = n, n
	}

	edge := func(i int) {
		var sum, wsum float64
		for k, w := range kernel {
			j := i + k - m
			if j < 0 || j >= n {
				continue
			}
			sum += data[j] * w
			wsum += w
		}
		if wsum != 0 {
			sum /= wsum
		}
		out[i] = sum
	}
	for i := 0; i < lo; i++ {
		edge(i)
	}
	for i := hi; i < n; i++ {
		edge(i)
	}
	return out
}
