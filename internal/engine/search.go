// Package engine implements the inner-potential shift search: a
// parabola-guided descent over an integer grid of shifts with a
// brute-force fallback. The search is an explicit finite-state loop so
// the evaluated set, the fitting weights, and the running best are all
// visible in one place.
package engine

import (
	"errors"
	"math"

	"github.com/tphakala/go-leed-rfactor/internal/parabola"
)

const (
	// MinSteps is the smallest usable shift grid.
	MinSteps = 6

	// minParabolaPoints is the number of evaluated points required in
	// the fitting window before a parabola refit is attempted.
	minParabolaPoints = 4

	// minCurvature is the smallest acceptable second-derivative
	// coefficient 2a of the fitted parabola.
	minCurvature = 0.005

	// fitRangeSlack and minFitRangeFloor bound how far the fitting
	// window may shrink: floor = max(initial - fitRangeSlack, minFitRangeFloor).
	fitRangeSlack    = 6
	minFitRangeFloor = 5

	// maxItersPerStep bounds Refine iterations relative to the grid size.
	maxItersPerStep = 4
)

// Sentinel errors. ErrRangeTooSmall, ErrSingularParabola and ErrNoFiniteR
// are fatal; the remainder are informational and returned on
// Result.Warning alongside a valid best point.
var (
	ErrRangeTooSmall    = errors.New("shift search: fewer than 6 grid points")
	ErrAllEvaluated     = errors.New("shift search: ran out of unevaluated points")
	ErrOutOfRange       = errors.New("shift search: parabola window leaves grid")
	ErrParabolaPoor     = errors.New("shift search: parabola fit poor")
	ErrWeakMinimum      = errors.New("shift search: weak minimum, returned best grid point")
	ErrSingularParabola = errors.New("shift search: singular parabola fit")
	ErrNoFiniteR        = errors.New("shift search: no finite objective value")
)

// Objective evaluates the aggregate R-factor at grid index i in
// [0, NSteps). It may return NaN; NaN points never become the best and
// carry zero weight in parabola fits.
type Objective func(i int) float64

// Params configures a Search call.
type Params struct {
	NSteps   int    // number of grid points
	SMin     int    // shift represented by index 0
	Guesses  [3]int // initial grid indices
	TolR     float64
	TolR2    float64
	FitRange int  // initial half-width of the fitting window
	Brute    bool // skip the parabola stages entirely
}

// Result is the outcome of a Search.
type Result struct {
	BestIdx   int     // best evaluated grid index
	BestR     float64 // objective at BestIdx
	RealShift float64 // interpolated shift (grid-step units)
	RealR     float64 // interpolated objective at RealShift
	NEval     int
	Warning   error // informational condition, or nil
}

type searchState struct {
	eval      Objective
	nSteps    int
	sMin      int
	evaluated []bool
	values    []float64
	bestIdx   int
	bestR     float64
	nEval     int
}

func (st *searchState) evaluate(i int) {
	if st.evaluated[i] {
		return
	}
	r := st.eval(i)
	st.evaluated[i] = true
	st.values[i] = r
	st.nEval++
	if !math.IsNaN(r) && (st.bestIdx < 0 || r < st.bestR) {
		st.bestIdx = i
		st.bestR = r
	}
}

// windowPoints collects the evaluated points inside [lo, hi] as shift
// abscissae with weight 1 for finite values and 0 for NaN.
func (st *searchState) windowPoints(lo, hi int) (xs, ys, ws []float64, nFinite int) {
	for i := lo; i <= hi; i++ {
		if !st.evaluated[i] {
			continue
		}
		w := 1.0
		if math.IsNaN(st.values[i]) {
			w = 0
		} else {
			nFinite++
		}
		xs = append(xs, float64(st.sMin+i))
		ys = append(ys, st.values[i])
		ws = append(ws, w)
	}
	return xs, ys, ws, nFinite
}

// nextMissing returns the first unevaluated index in [lo, hi] in the
// order c, c-1, c+1, c-2, c+2, ... and whether one exists.
func (st *searchState) nextMissing(c, lo, hi int) (int, bool) {
	if !st.evaluated[c] {
		return c, true
	}
	for d := 1; ; d++ {
		left, right := c-d, c+d
		if left < lo && right > hi {
			return 0, false
		}
		if left >= lo && !st.evaluated[left] {
			return left, true
		}
		if right <= hi && !st.evaluated[right] {
			return right, true
		}
	}
}

func (st *searchState) brute(warning error) (*Result, error) {
	fresh := 0
	for i := 0; i < st.nSteps; i++ {
		if !st.evaluated[i] {
			st.evaluate(i)
			fresh++
		}
	}
	if st.bestIdx < 0 {
		return nil, ErrNoFiniteR
	}
	if warning == nil && fresh == 0 {
		warning = ErrAllEvaluated
	}
	return &Result{
		BestIdx:   st.bestIdx,
		BestR:     st.bestR,
		RealShift: float64(st.sMin + st.bestIdx),
		RealR:     st.bestR,
		NEval:     st.nEval,
		Warning:   warning,
	}, nil
}

// Search runs the shift optimization. The three guesses must already be
// clamped to [0, NSteps). Fatal conditions return a nil Result; soft
// conditions return a valid Result with Warning set.
func Search(eval Objective, p Params) (*Result, error) {
	if p.NSteps < MinSteps {
		return nil, ErrRangeTooSmall
	}
	st := &searchState{
		eval:      eval,
		nSteps:    p.NSteps,
		sMin:      p.SMin,
		evaluated: make([]bool, p.NSteps),
		values:    make([]float64, p.NSteps),
		bestIdx:   -1,
	}

	if p.Brute {
		return st.brute(nil)
	}

	// Init, Init2, Init3: evaluate the guesses and fit a first parabola.
	for _, g := range p.Guesses {
		st.evaluate(g)
	}
	xs, ys, ws, nFinite := st.windowPoints(0, p.NSteps-1)
	if nFinite < 3 {
		return st.brute(nil)
	}
	coef, err := parabola.Fit(xs, ys, ws)
	if err != nil {
		return nil, ErrSingularParabola
	}
	center, ok := predictCenter(coef, st.sMin, p.NSteps)
	if !ok {
		return st.brute(ErrOutOfRange)
	}

	// Refine.
	fitRange := p.FitRange
	minFitRange := p.FitRange - fitRangeSlack
	if minFitRange < minFitRangeFloor {
		minFitRange = minFitRangeFloor
	}
	maxIters := maxItersPerStep * p.NSteps
	for iter := 0; iter < maxIters; iter++ {
		lo, hi := center-fitRange, center+fitRange
		if lo < 0 || hi > p.NSteps-1 {
			return st.brute(ErrOutOfRange)
		}

		xs, ys, ws, nFinite := st.windowPoints(lo, hi)
		if nFinite < minParabolaPoints {
			i, found := st.nextMissing(center, lo, hi)
			if !found {
				return st.brute(nil)
			}
			st.evaluate(i)
			continue
		}

		coef, err := parabola.Fit(xs, ys, ws)
		if err != nil {
			return nil, ErrSingularParabola
		}
		if 2*coef.A <= minCurvature {
			return st.brute(ErrParabolaPoor)
		}
		newCenter, ok := predictCenter(coef, st.sMin, p.NSteps)
		if !ok {
			return st.brute(ErrOutOfRange)
		}
		if newCenter == lo || newCenter == hi {
			return st.brute(ErrParabolaPoor)
		}

		r2 := parabola.RSquared(xs, ys, ws, coef)
		switch {
		case r2 > p.TolR:
			if st.bestIdx < 0 {
				return nil, ErrNoFiniteR
			}
			return &Result{
				BestIdx:   st.bestIdx,
				BestR:     st.bestR,
				RealShift: coef.MinX(),
				RealR:     coef.MinY(),
				NEval:     st.nEval,
				Warning:   nil,
			}, nil
		case nFinite < 2*fitRange+1:
			i, found := st.nextMissing(newCenter, lo, hi)
			if !found {
				return st.brute(nil)
			}
			st.evaluate(i)
			center = newCenter
		case r2 > p.TolR2:
			fitRange--
			if fitRange < minFitRange {
				if st.bestIdx < 0 {
					return nil, ErrNoFiniteR
				}
				return &Result{
					BestIdx:   st.bestIdx,
					BestR:     st.bestR,
					RealShift: float64(st.sMin + st.bestIdx),
					RealR:     st.bestR,
					NEval:     st.nEval,
					Warning:   ErrWeakMinimum,
				}, nil
			}
			center = newCenter
		default:
			return st.brute(ErrParabolaPoor)
		}
	}
	return st.brute(ErrParabolaPoor)
}

// predictCenter maps the fitted parabola minimum to a grid index.
// ok is false when the prediction is non-finite or far outside the grid.
func predictCenter(c parabola.Coeffs, sMin, nSteps int) (int, bool) {
	minx := c.MinX()
	if math.IsNaN(minx) || math.IsInf(minx, 0) {
		return 0, false
	}
	idx := math.Round(minx) - float64(sMin)
	if idx < -float64(nSteps) || idx > 2*float64(nSteps) {
		return 0, false
	}
	i := int(idx)
	if i < 0 {
		i = 0
	}
	if i > nSteps-1 {
		i = nSteps - 1
	}
	return i, true
}
