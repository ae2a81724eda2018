// Package parabola provides weighted least-squares fitting of a parabola
// y = a*x^2 + b*x + c through scattered points, with goodness-of-fit
// evaluation. The 3x3 normal equations are solved with a dense Cholesky
// factorization.
package parabola

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ErrSingular indicates normal equations that could not be factorized,
// typically from fewer than three distinct abscissae or all-zero weights.
var ErrSingular = errors.New("parabola: singular normal equations")

// Coeffs holds the fitted coefficients of y = A*x^2 + B*x + C.
type Coeffs struct {
	A, B, C float64
}

// Fit computes the weighted least-squares parabola through (x, y) with
// weights w. Points with zero weight do not contribute. w may be nil for
// an unweighted fit.
func Fit(x, y, w []float64) (Coeffs, error) {
	var s0, s1, s2, s3, s4 float64
	var sy, sxy, sx2y float64
	for i := range x {
		wi := 1.0
		if w != nil {
			wi = w[i]
		}
		if wi == 0 {
			continue
		}
		xi, yi := x[i], y[i]
		x2 := xi * xi
		s0 += wi
		s1 += wi * xi
		s2 += wi * x2
		s3 += wi * x2 * xi
		s4 += wi * x2 * x2
		sy += wi * yi
		sxy += wi * xi * yi
		sx2y += wi * x2 * yi
	}

	a := mat.NewSymDense(3, []float64{
		s4, s3, s2,
		s3, s2, s1,
		s2, s1, s0,
	})
	rhs := mat.NewVecDense(3, []float64{sx2y, sxy, sy})

	var ch mat.Cholesky
	if ok := ch.Factorize(a); !ok {
		return Coeffs{}, ErrSingular
	}
	sol := mat.NewVecDense(3, nil)
	if err := ch.SolveVecTo(sol, rhs); err != nil {
		return Coeffs{}, ErrSingular
	}
	return Coeffs{A: sol.AtVec(0), B: sol.AtVec(1), C: sol.AtVec(2)}, nil
}

// Eval returns the parabola value at x.
func (c Coeffs) Eval(x float64) float64 {
	return (c.A*x+c.B)*x + c.C
}

// MinX returns the abscissa of the extremum, -B/(2A).
// The result is not meaningful when A is zero.
func (c Coeffs) MinX() float64 {
	return -c.B / (2 * c.A)
}

// MinY returns the ordinate of the extremum, C - B^2/(4A).
func (c Coeffs) MinY() float64 {
	return c.C - c.B*c.B/(4*c.A)
}

// RSquared returns the weighted coefficient of determination of the fit c
// against the points (x, y) with weights w. Zero-weight points are skipped.
// Returns NaN when fewer than two points carry weight.
func RSquared(x, y, w []float64, c Coeffs) float64 {
	est := make([]float64, 0, len(x))
	obs := make([]float64, 0, len(x))
	var wts []float64
	if w != nil {
		wts = make([]float64, 0, len(x))
	}
	for i := range x {
		if w != nil && w[i] == 0 {
			continue
		}
		est = append(est, c.Eval(x[i]))
		obs = append(obs, y[i])
		if w != nil {
			wts = append(wts, w[i])
		}
	}
	if len(obs) < 2 {
		return math.NaN()
	}
	return stat.RSquaredFrom(est, obs, wts)
}
