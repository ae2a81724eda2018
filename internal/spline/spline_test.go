package spline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniform(x0, step float64, n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = x0 + float64(i)*step
	}
	return xs
}

func sample(f func(float64) float64, xs []float64) []float64 {
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = f(x)
	}
	return ys
}

func TestFitNaturalErrors(t *testing.T) {
	tests := []struct {
		name string
		x    []float64
		y    []float64
	}{
		{"too few points", uniform(0, 1, MinPoints-1), make([]float64, MinPoints-1)},
		{"length mismatch", uniform(0, 1, 10), make([]float64, 9)},
		{"not increasing", []float64{0, 1, 2, 2, 4, 5, 6, 7}, make([]float64, 8)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FitNatural(tt.x, tt.y)
			assert.ErrorIs(t, err, ErrBadInput)
		})
	}
}

func TestInterpolatesAtNodes(t *testing.T) {
	xs := uniform(0, 0.5, 21)
	ys := sample(math.Sin, xs)

	s, err := FitNatural(xs, ys)
	require.NoError(t, err)

	vals := make([]float64, len(xs))
	require.NoError(t, s.EvalAll(xs, vals, nil))
	for i := range xs {
		assert.InDelta(t, ys[i], vals[i], 1e-8, "node %d", i)
	}
}

func TestReproducesLineExactly(t *testing.T) {
	// A straight line has vanishing second derivative everywhere, so
	// the natural spline reproduces it exactly, including between nodes.
	xs := uniform(10, 1, 12)
	ys := sample(func(x float64) float64 { return 2*x + 1 }, xs)

	s, err := FitNatural(xs, ys)
	require.NoError(t, err)

	qs := uniform(10.25, 0.5, 22)
	vals := make([]float64, len(qs))
	derivs := make([]float64, len(qs))
	require.NoError(t, s.EvalAll(qs, vals, derivs))
	for i, q := range qs {
		assert.InDelta(t, 2*q+1, vals[i], 1e-9, "value at %v", q)
		assert.InDelta(t, 2.0, derivs[i], 1e-9, "derivative at %v", q)
	}
}

func TestDerivativeAccuracy(t *testing.T) {
	xs := uniform(0, 0.5, 21)
	ys := sample(math.Sin, xs)

	s, err := FitNatural(xs, ys)
	require.NoError(t, err)

	// Interior points only; natural boundary conditions perturb the
	// derivative near the ends when the true curvature is nonzero there.
	qs := uniform(2, 0.25, 25) // [2, 8]
	derivs := make([]float64, len(qs))
	require.NoError(t, s.EvalAll(qs, nil, derivs))
	for i, q := range qs {
		assert.InDelta(t, math.Cos(q), derivs[i], 0.02, "derivative at %v", q)
	}
}

func TestNaturalBoundaryConditions(t *testing.T) {
	xs := uniform(0, 0.5, 21)
	ys := sample(math.Sin, xs)

	s, err := FitNatural(xs, ys)
	require.NoError(t, err)

	// Estimate the second derivative at both ends by differencing the
	// first derivative over a short step.
	const h = 1e-4
	check := func(x0 float64, inward float64) {
		qs := []float64{x0, x0 + inward*h}
		if inward < 0 {
			qs = []float64{x0 + inward*h, x0}
		}
		derivs := make([]float64, 2)
		require.NoError(t, s.EvalAll(qs, nil, derivs))
		second := (derivs[1] - derivs[0]) / (qs[1] - qs[0])
		assert.InDelta(t, 0, second, 0.01, "second derivative near %v", x0)
	}
	check(s.Min(), +1)
	check(s.Max(), -1)
}

func TestEvalAllRangeChecks(t *testing.T) {
	xs := uniform(0, 1, 10)
	ys := sample(math.Sin, xs)
	s, err := FitNatural(xs, ys)
	require.NoError(t, err)

	t.Run("below range", func(t *testing.T) {
		err := s.EvalAll([]float64{-0.5}, make([]float64, 1), nil)
		assert.ErrorIs(t, err, ErrBadInput)
	})
	t.Run("above range", func(t *testing.T) {
		err := s.EvalAll([]float64{9.0001}, make([]float64, 1), nil)
		assert.ErrorIs(t, err, ErrBadInput)
	})
	t.Run("endpoints included", func(t *testing.T) {
		vals := make([]float64, 2)
		require.NoError(t, s.EvalAll([]float64{0, 9}, vals, nil))
		assert.InDelta(t, math.Sin(0), vals[0], 1e-8)
		assert.InDelta(t, math.Sin(9), vals[1], 1e-8)
	})
	t.Run("destination length mismatch", func(t *testing.T) {
		err := s.EvalAll([]float64{1, 2}, make([]float64, 1), nil)
		assert.ErrorIs(t, err, ErrBadInput)
	})
}

func TestNonUniformAbscissae(t *testing.T) {
	xs := []float64{0, 0.3, 1, 1.4, 2.2, 3, 3.1, 4, 5.5, 6}
	ys := sample(func(x float64) float64 { return math.Exp(-x / 3) }, xs)

	s, err := FitNatural(xs, ys)
	require.NoError(t, err)

	vals := make([]float64, len(xs))
	require.NoError(t, s.EvalAll(xs, vals, nil))
	for i := range xs {
		assert.InDelta(t, ys[i], vals[i], 1e-8, "node %d", i)
	}
}
