// Package spline implements natural cubic B-spline interpolation on
// strictly increasing abscissae.
//
// The fit uses the not-repeated interior knot vector
//
//	[x0 x0 x0 x0, x1 .. x(n-2), x(n-1) x(n-1) x(n-1) x(n-1)]
//
// which yields n+2 basis functions for n data points. The two extra
// degrees of freedom are fixed by natural boundary conditions
// (vanishing second derivative at both ends). The resulting square
// collocation system is reduced to its normal equations, which are
// symmetric positive definite and banded with bandwidth equal to the
// spline degree, and solved with a banded Cholesky factorization.
package spline

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Degree is the polynomial degree of the fitted splines.
const Degree = 3

// MinPoints is the minimum number of data points required for a fit.
const MinPoints = 2*Degree + 1

// ErrBadInput indicates abscissae that are too short or not strictly increasing.
var ErrBadInput = errors.New("spline: bad input")

// ErrSingular indicates a collocation system whose factorization failed.
var ErrSingular = errors.New("spline: singular system")

// Spline is a fitted natural cubic B-spline.
type Spline struct {
	knots  []float64
	coeffs []float64
	xmin   float64
	xmax   float64
}

// naturalKnots builds the clamped knot vector for abscissae x.
// The result has len(x)+2*Degree entries.
func naturalKnots(x []float64) []float64 {
	n := len(x)
	t := make([]float64, n+2*Degree)
	for i := 0; i <= Degree; i++ {
		t[i] = x[0]
		t[n+Degree-1+i] = x[n-1]
	}
	copy(t[Degree+1:], x[1:n-1])
	return t
}

// basisRow fills vals[0..Degree] with the nonzero cubic basis functions
// B(ell-Degree+j) evaluated at x, for the knot interval ell
// (t[ell] <= x < t[ell+1]). Cox-de Boor recurrence.
func basisRow(t []float64, ell int, x float64, vals *[Degree + 1]float64) {
	vals[0] = 1
	for k := 1; k <= Degree; k++ {
		saved := 0.0
		for j := 0; j < k; j++ {
			term := vals[j] / (t[ell+j+1] - t[ell-k+j+1])
			vals[j] = saved + (t[ell+j+1]-x)*term
			saved = (x - t[ell-k+j+1]) * term
		}
		vals[k] = saved
	}
}

// lowerRow computes the nonzero basis functions of degree deg at x for
// interval ell. Only entries 0..deg are meaningful.
func lowerRow(t []float64, ell int, x float64, deg int, vals *[Degree + 1]float64) {
	vals[0] = 1
	for k := 1; k <= deg; k++ {
		saved := 0.0
		for j := 0; j < k; j++ {
			term := vals[j] / (t[ell+j+1] - t[ell-k+j+1])
			vals[j] = saved + (t[ell+j+1]-x)*term
			saved = (x - t[ell-k+j+1]) * term
		}
		vals[k] = saved
	}
}

// ratio returns b[m-base] / (t[m+d] - t[m]) with zero-denominator and
// out-of-range terms dropped, as the derivative recurrences require.
func ratio(t []float64, b []float64, base, m, d int) float64 {
	i := m - base
	if i < 0 || i >= len(b) {
		return 0
	}
	den := t[m+d] - t[m]
	if den == 0 {
		return 0
	}
	return b[i] / den
}

// derivRow fills d1[0..Degree] with the first derivatives of the nonzero
// cubic basis functions at x for interval ell.
func derivRow(t []float64, ell int, x float64, d1 *[Degree + 1]float64) {
	var q [Degree + 1]float64
	lowerRow(t, ell, x, Degree-1, &q)
	b2 := q[:Degree] // B(ell-2+i, 2) for i = 0..2
	base := ell - Degree + 1
	for j := 0; j <= Degree; j++ {
		m := ell - Degree + j
		d1[j] = Degree * (ratio(t, b2, base, m, Degree) - ratio(t, b2, base, m+1, Degree))
	}
}

// secondDerivRow fills d2[0..Degree] with the second derivatives of the
// nonzero cubic basis functions at x for interval ell.
func secondDerivRow(t []float64, ell int, x float64, d2 *[Degree + 1]float64) {
	var q [Degree + 1]float64
	lowerRow(t, ell, x, Degree-2, &q)
	b1 := q[:Degree-1] // B(ell-1+i, 1) for i = 0..1
	base1 := ell - Degree + 2

	// First derivatives of the quadratic basis functions B(m, 2),
	// m = ell-2 .. ell.
	var dq [Degree]float64
	base2 := ell - Degree + 1
	for j := 0; j < Degree; j++ {
		m := base2 + j
		dq[j] = (Degree - 1) * (ratio(t, b1, base1, m, Degree-1) - ratio(t, b1, base1, m+1, Degree-1))
	}

	for j := 0; j <= Degree; j++ {
		m := ell - Degree + j
		d2[j] = Degree * (dratio(t, dq[:], base2, m, Degree) - dratio(t, dq[:], base2, m+1, Degree))
	}
}

func dratio(t []float64, dq []float64, base, m, d int) float64 {
	i := m - base
	if i < 0 || i >= len(dq) {
		return 0
	}
	den := t[m+d] - t[m]
	if den == 0 {
		return 0
	}
	return dq[i] / den
}

// interval returns the knot interval index ell for x, with the right
// endpoint closed. ell ranges over [Degree, len(x)+Degree-2].
func interval(t []float64, n int, x float64) int {
	lo, hi := Degree, n+Degree-2
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if t[mid] <= x {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// FitNatural fits a natural cubic B-spline through the points (x, y).
// x must be strictly increasing with at least MinPoints entries.
func FitNatural(x, y []float64) (*Spline, error) {
	n := len(x)
	if n < MinPoints {
		return nil, fmt.Errorf("%w: need at least %d points, got %d", ErrBadInput, MinPoints, n)
	}
	if len(y) != n {
		return nil, fmt.Errorf("%w: len(x)=%d len(y)=%d", ErrBadInput, n, len(y))
	}
	for i := 1; i < n; i++ {
		if x[i] <= x[i-1] {
			return nil, fmt.Errorf("%w: abscissae not strictly increasing at index %d", ErrBadInput, i)
		}
	}

	t := naturalKnots(x)
	nt := n + 2 // number of basis functions

	// Accumulate the normal equations of the (n+2)x(n+2) collocation
	// system: n interpolation rows plus two natural-boundary rows.
	a := mat.NewSymBandDense(nt, Degree, nil)
	b := mat.NewVecDense(nt, nil)

	addRow := func(j0 int, vals []float64, rhs float64) {
		for p := 0; p < len(vals); p++ {
			if vals[p] == 0 {
				continue
			}
			for q := p; q < len(vals); q++ {
				i, j := j0+p, j0+q
				a.SetSymBand(i, j, a.At(i, j)+vals[p]*vals[q])
			}
			if rhs != 0 {
				b.SetVec(j0+p, b.AtVec(j0+p)+vals[p]*rhs)
			}
		}
	}

	var row [Degree + 1]float64
	for i := 0; i < n; i++ {
		ell := interval(t, n, x[i])
		basisRow(t, ell, x[i], &row)
		addRow(ell-Degree, row[:], y[i])
	}

	// Natural boundary rows: S''(x0) = 0 and S''(x(n-1)) = 0.
	ellLo := Degree
	secondDerivRow(t, ellLo, x[0], &row)
	addRow(ellLo-Degree, row[:], 0)

	ellHi := n + Degree - 2
	secondDerivRow(t, ellHi, x[n-1], &row)
	addRow(ellHi-Degree, row[:], 0)

	var ch mat.BandCholesky
	if ok := ch.Factorize(a); !ok {
		return nil, ErrSingular
	}
	coefs := mat.NewVecDense(nt, nil)
	if err := ch.SolveVecTo(coefs, b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}

	return &Spline{
		knots:  t,
		coeffs: coefs.RawVector().Data,
		xmin:   x[0],
		xmax:   x[n-1],
	}, nil
}

// Min returns the lower end of the fitted range.
func (s *Spline) Min() float64 { return s.xmin }

// Max returns the upper end of the fitted range.
func (s *Spline) Max() float64 { return s.xmax }

// EvalAll evaluates the spline at the non-decreasing abscissae xs.
// Values are written to vals and first derivatives to derivs; either
// destination may be nil to skip that output. All xs must lie within
// [Min, Max].
func (s *Spline) EvalAll(xs, vals, derivs []float64) error {
	if vals != nil && len(vals) != len(xs) {
		return fmt.Errorf("%w: len(vals)=%d len(xs)=%d", ErrBadInput, len(vals), len(xs))
	}
	if derivs != nil && len(derivs) != len(xs) {
		return fmt.Errorf("%w: len(derivs)=%d len(xs)=%d", ErrBadInput, len(derivs), len(xs))
	}

	n := len(s.coeffs) - 2
	ellMax := n + Degree - 2
	ell := Degree

	var row, drow [Degree + 1]float64
	for i, x := range xs {
		if x < s.xmin || x > s.xmax {
			return fmt.Errorf("%w: x=%v outside [%v, %v]", ErrBadInput, x, s.xmin, s.xmax)
		}
		for ell < ellMax && x >= s.knots[ell+1] {
			ell++
		}
		j0 := ell - Degree
		if vals != nil {
			basisRow(s.knots, ell, x, &row)
			v := 0.0
			for j := 0; j <= Degree; j++ {
				v += s.coeffs[j0+j] * row[j]
			}
			vals[i] = v
		}
		if derivs != nil {
			derivRow(s.knots, ell, x, &drow)
			d := 0.0
			for j := 0; j <= Degree; j++ {
				d += s.coeffs[j0+j] * drow[j]
			}
			derivs[i] = d
		}
	}
	return nil
}
