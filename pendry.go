package rfactor

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/tphakala/go-leed-rfactor/internal/grid"
	"github.com/tphakala/go-leed-rfactor/internal/simdops"
)

// PendryY evaluates Y = I*I' / (I^2 + V0i^2*I'^2) pointwise into dst.
// The denominator is strictly positive for finite inputs when v0i > 0,
// unless I and I' both vanish; a vanishing denominator yields Y = 0.
func PendryY(dst, intensity, deriv []float64, v0i float64) {
	for i := range dst {
		ii := intensity[i]
		dd := deriv[i]
		den := ii*ii + v0i*v0i*dd*dd
		if den == 0 {
			dst[i] = 0
			continue
		}
		dst[i] = ii * dd / den
	}
}

// BeamResult is the outcome of a single-beam R evaluation.
type BeamResult struct {
	R           float64
	Numerator   float64
	Denominator float64

	// Overlap is the number of common samples; 0 flags a pair with
	// no usable overlap (R is NaN).
	Overlap int
}

// BeamR computes the Pendry R-factor between two Y-functions on a
// shared uniform grid of step eStep, with y2 translated by shift grid
// steps. Both numerator and denominator are trapezoid integrals over
// the overlap of the two spans.
func BeamR(y1, y2 []float64, span1, span2 Span, shift int, eStep float64) BeamResult {
	lo, n := grid.Overlap(span1.Start, span1.Len, span2.Start+shift, span2.Len)
	if n < 2 {
		return BeamResult{R: math.NaN()}
	}

	u := y1[lo : lo+n]
	v := y2[lo-shift : lo-shift+n]

	ops := simdops.Get()
	duu := ops.DotProductUnsafe(u, u)
	dvv := ops.DotProductUnsafe(v, v)
	duv := ops.DotProductUnsafe(u, v)

	d0 := u[0] - v[0]
	dn := u[n-1] - v[n-1]
	num := eStep * (duu - 2*duv + dvv - 0.5*(d0*d0+dn*dn))
	den := eStep * (duu + dvv - 0.5*(u[0]*u[0]+v[0]*v[0]+u[n-1]*u[n-1]+v[n-1]*v[n-1]))

	// The integrand of the numerator is a square; tiny negative
	// values are cancellation residue.
	if num < 0 {
		num = 0
	}

	return BeamResult{
		R:           num / den,
		Numerator:   num,
		Denominator: den,
		Overlap:     n,
	}
}

// SetResult is the outcome of a beam-set R evaluation.
type SetResult struct {
	// RTotal is the overlap-weighted aggregate over all beams with
	// usable overlap; NaN when any contributing beam R is NaN.
	RTotal float64

	Beams        []BeamResult
	TotalOverlap int

	// Warning reports ErrNoOverlap and ErrBeamNaN conditions; the
	// per-beam results remain valid.
	Warning error
}

// BeamSetR evaluates the per-beam R-factors of two prepared sets at a
// common integer shift and aggregates them weighted by overlap count.
// Beams without usable overlap are excluded from the aggregate and
// reported on Warning; empty beams are skipped silently.
func BeamSetR(exp, theo *Prepared, shift int) (*SetResult, error) {
	if err := compatible(exp, theo); err != nil {
		return nil, err
	}
	return beamSetR(exp, theo, shift), nil
}

func beamSetR(exp, theo *Prepared, shift int) *SetResult {
	nBeams := exp.NBeams()
	res := &SetResult{Beams: make([]BeamResult, nBeams)}

	if exp.parallel && theo.parallel && nBeams > 1 {
		var wg sync.WaitGroup
		for b := 0; b < nBeams; b++ {
			wg.Add(1)
			go func(b int) {
				defer wg.Done()
				res.Beams[b] = BeamR(exp.Y[b], theo.Y[b], exp.Spans[b], theo.Spans[b], shift, exp.Step)
			}(b)
		}
		wg.Wait()
	} else {
		for b := 0; b < nBeams; b++ {
			res.Beams[b] = BeamR(exp.Y[b], theo.Y[b], exp.Spans[b], theo.Spans[b], shift, exp.Step)
		}
	}

	var warnings []error
	var sumRN, sumN float64
	nanSeen := false
	for b, br := range res.Beams {
		if br.Overlap == 0 {
			if exp.Spans[b].Len > 0 && theo.Spans[b].Len > 0 {
				warnings = append(warnings, fmt.Errorf("beam %d: %w", b, ErrNoOverlap))
			}
			continue
		}
		if math.IsNaN(br.R) {
			nanSeen = true
			warnings = append(warnings, fmt.Errorf("beam %d: %w", b, ErrBeamNaN))
			continue
		}
		sumRN += br.R * float64(br.Overlap)
		sumN += float64(br.Overlap)
		res.TotalOverlap += br.Overlap
	}

	switch {
	case nanSeen || sumN == 0:
		res.RTotal = math.NaN()
		if !nanSeen {
			warnings = append(warnings, ErrNoOverlap)
		}
	default:
		res.RTotal = sumRN / sumN
	}
	res.Warning = errors.Join(warnings...)
	return res
}

// GroupResult is the aggregate R of one beam-type group.
type GroupResult struct {
	Label        int
	R            float64
	TotalOverlap int
}

// BeamGroupR evaluates the per-beam R-factors at a common shift and
// aggregates them per beam-type label in addition to the joint total.
// labels assigns an integer type to each beam; groups are returned in
// ascending label order.
func BeamGroupR(exp, theo *Prepared, labels []int, shift int) ([]GroupResult, *SetResult, error) {
	if err := compatible(exp, theo); err != nil {
		return nil, nil, err
	}
	if len(labels) != exp.NBeams() {
		return nil, nil, fmt.Errorf("%w: %d labels for %d beams",
			ErrSchemeInvalid, len(labels), exp.NBeams())
	}

	set := beamSetR(exp, theo, shift)

	type acc struct {
		sumRN, sumN float64
		overlap     int
		nan         bool
	}
	accs := make(map[int]*acc)
	for b, br := range set.Beams {
		a := accs[labels[b]]
		if a == nil {
			a = &acc{}
			accs[labels[b]] = a
		}
		if br.Overlap == 0 {
			continue
		}
		if math.IsNaN(br.R) {
			a.nan = true
			continue
		}
		a.sumRN += br.R * float64(br.Overlap)
		a.sumN += float64(br.Overlap)
		a.overlap += br.Overlap
	}

	keys := make([]int, 0, len(accs))
	for k := range accs {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	groups := make([]GroupResult, 0, len(keys))
	for _, k := range keys {
		a := accs[k]
		g := GroupResult{Label: k, TotalOverlap: a.overlap}
		if a.nan || a.sumN == 0 {
			g.R = math.NaN()
		} else {
			g.R = a.sumRN / a.sumN
		}
		groups = append(groups, g)
	}
	return groups, set, nil
}
