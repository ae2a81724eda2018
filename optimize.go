package rfactor

import (
	"fmt"

	"github.com/tphakala/go-leed-rfactor/internal/engine"
)

// ShiftOptions configures OptimizeShift. Min and Max bound the integer
// shift grid (inclusive); the grid must have at least 6 points.
type ShiftOptions struct {
	Min int
	Max int

	// Guesses are the three starting shifts of the parabola search.
	// The zero value picks quartile points of the range. Out-of-range
	// guesses are clamped.
	Guesses [3]int

	// TolR and TolR2 are the R-squared acceptance thresholds of the
	// parabola fit; zero selects DefaultTolR and DefaultTolR2.
	TolR  float64
	TolR2 float64

	// FitRange is the initial half-width of the fitting window in
	// grid steps; zero selects DefaultFitRange.
	FitRange int

	// Brute skips the parabola search and evaluates every shift.
	Brute bool
}

// ShiftResult is the outcome of a shift optimization.
type ShiftResult struct {
	// BestShift is the best evaluated grid shift and BestR the
	// aggregate R observed there.
	BestShift int
	BestR     float64

	// ShiftReal and RReal are the parabola-interpolated minimum; they
	// coincide with the grid values when the search ended by brute
	// force or with a weak minimum.
	ShiftReal float64
	RReal     float64

	// Beams holds the per-beam results at BestShift.
	Beams        []BeamResult
	TotalOverlap int

	// NEval counts objective evaluations.
	NEval int

	// Warning carries the informational search condition (ErrOutOfRange,
	// ErrParabolaPoor, ErrWeakMinimum, ErrAllEvaluated); when the search
	// reports none, it carries the beam-level warnings at the best shift.
	Warning error
}

// OptimizeShift finds the integer shift of theo against exp minimizing
// the aggregate Pendry R-factor, using a parabola-guided search with
// brute-force fallback. Per-shift beam-set results are cached so no
// shift is evaluated twice.
func OptimizeShift(exp, theo *Prepared, opt *ShiftOptions) (*ShiftResult, error) {
	if opt == nil {
		return nil, fmt.Errorf("%w: nil options", ErrRangeTooSmall)
	}
	if err := compatible(exp, theo); err != nil {
		return nil, err
	}
	nSteps := opt.Max - opt.Min + 1
	if nSteps < engine.MinSteps {
		return nil, fmt.Errorf("%w: [%d, %d] has %d grid points",
			ErrRangeTooSmall, opt.Min, opt.Max, nSteps)
	}

	tolR := opt.TolR
	if tolR <= 0 {
		tolR = DefaultTolR
	}
	tolR2 := opt.TolR2
	if tolR2 <= 0 {
		tolR2 = DefaultTolR2
	}
	fitRange := opt.FitRange
	if fitRange <= 0 {
		fitRange = DefaultFitRange
	}

	guesses := opt.Guesses
	if guesses == [3]int{} {
		guesses = [3]int{
			opt.Min + nSteps/4,
			opt.Min + nSteps/2,
			opt.Min + 3*nSteps/4,
		}
	}
	var idxGuesses [3]int
	for i, g := range guesses {
		idx := g - opt.Min
		if idx < 0 {
			idx = 0
		}
		if idx > nSteps-1 {
			idx = nSteps - 1
		}
		idxGuesses[i] = idx
	}

	cache := make([]*SetResult, nSteps)
	eval := func(i int) float64 {
		sr := beamSetR(exp, theo, opt.Min+i)
		cache[i] = sr
		return sr.RTotal
	}

	res, err := engine.Search(eval, engine.Params{
		NSteps:   nSteps,
		SMin:     opt.Min,
		Guesses:  idxGuesses,
		TolR:     tolR,
		TolR2:    tolR2,
		FitRange: fitRange,
		Brute:    opt.Brute,
	})
	if err != nil {
		return nil, err
	}

	best := cache[res.BestIdx]
	warning := res.Warning
	if warning == nil {
		warning = best.Warning
	}
	return &ShiftResult{
		BestShift:    opt.Min + res.BestIdx,
		BestR:        res.BestR,
		ShiftReal:    res.RealShift,
		RReal:        res.RealR,
		Beams:        best.Beams,
		TotalOverlap: best.TotalOverlap,
		NEval:        res.NEval,
		Warning:      warning,
	}, nil
}
