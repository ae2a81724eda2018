package rfactor

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tphakala/go-leed-rfactor/internal/grid"
	"github.com/tphakala/go-leed-rfactor/internal/simdops"
	"github.com/tphakala/go-leed-rfactor/internal/spline"
)

// PrepareBeams runs the preparation pipeline on one curve set: range
// limiting to the output grid, averaging of symmetry-equivalent beams,
// optional smoothing, natural B-spline interpolation with first
// derivatives onto the uniform output grid, and the Pendry Y-function.
//
// outEnergies must be strictly uniform. Beams whose support becomes
// shorter than MinBeamSamples are dropped and reported on the result's
// Warning; group-level failures are fatal.
func PrepareBeams(set *BeamSet, outEnergies []float64, cfg *Config) (*Prepared, error) {
	if err := set.Validate(); err != nil {
		return nil, err
	}
	if len(outEnergies) < 2 {
		return nil, fmt.Errorf("%w: output grid needs at least 2 energies, got %d",
			ErrBadGrid, len(outEnergies))
	}
	step, err := grid.UniformStep(outEnergies, outEnergies[1]-outEnergies[0])
	if err != nil {
		return nil, fmt.Errorf("%w: output grid: %v", ErrBadGrid, err)
	}

	nBeams := set.NBeams()
	if cfg != nil {
		if err := cfg.Validate(nBeams); err != nil {
			return nil, err
		}
	}
	conf := cfg.withDefaults(nBeams)

	scheme := make([]int, nBeams)
	copy(scheme, conf.Scheme)

	var warnings []error

	// Stage 1: clip per-beam supports to the output grid range.
	spans := make([]Span, nBeams)
	copy(spans, set.Spans)
	if !conf.Skip.RangeLimit {
		iLo := grid.FirstAtOrAbove(set.Energies, outEnergies[0])
		iHi := grid.LastAtOrBelow(set.Energies, outEnergies[len(outEnergies)-1])
		for b := range spans {
			start, n := grid.Overlap(spans[b].Start, spans[b].Len, iLo, iHi-iLo+1)
			spans[b] = Span{Start: start, Len: n}
			if n < MinBeamSamples && scheme[b] != 0 {
				scheme[b] = 0
				warnings = append(warnings, fmt.Errorf("beam %d: %w", b, ErrBeamTooShort))
			}
		}
	}

	// Stage 2: average equivalent beams onto the output beam layout.
	var avgI [][]float64
	var avgSpans []Span
	if conf.Skip.Averaging {
		if conf.NBeamsOut != nBeams {
			return nil, fmt.Errorf("%w: %d input beams, NBeamsOut=%d",
				ErrSchemeMismatch, nBeams, conf.NBeamsOut)
		}
		avgI = make([][]float64, nBeams)
		avgSpans = make([]Span, nBeams)
		for b := 0; b < nBeams; b++ {
			avgI[b] = set.Intensity[b]
			if scheme[b] == 0 {
				avgSpans[b] = Span{Start: spans[b].Start}
			} else {
				avgSpans[b] = spans[b]
			}
		}
	} else {
		avgI, avgSpans, err = averageBeams(set, spans, scheme, conf.NBeamsOut)
		if err != nil {
			return nil, err
		}
	}
	nOut := len(avgI)

	// Stage 3: smoothing hook.
	if !conf.Skip.Smoothing && conf.Smoother != nil {
		for b := 0; b < nOut; b++ {
			sp := avgSpans[b]
			if sp.Len == 0 {
				continue
			}
			smoothed, err := conf.Smoother.Smooth(avgI[b][sp.Start:sp.End()])
			if err != nil {
				return nil, fmt.Errorf("smoothing beam %d: %w", b, err)
			}
			if len(smoothed) != sp.Len {
				return nil, fmt.Errorf("smoothing beam %d: smoother returned %d samples for %d",
					b, len(smoothed), sp.Len)
			}
			row := make([]float64, len(set.Energies))
			copy(row[sp.Start:], smoothed)
			avgI[b] = row
		}
	}

	p := &Prepared{
		Energies: outEnergies,
		Step:     step,
		I:        make([][]float64, nOut),
		Deriv:    make([][]float64, nOut),
		Y:        make([][]float64, nOut),
		Spans:    make([]Span, nOut),
		parallel: conf.EnableParallel,
	}

	// Stage 4: interpolate onto the output grid with derivatives.
	if conf.Skip.Interpolation {
		if err := copyWithFiniteDiff(p, set.Energies, avgI, avgSpans, outEnergies, step); err != nil {
			return nil, err
		}
	} else {
		dropped, err := interpolateBeams(p, set.Energies, avgI, avgSpans, outEnergies, conf.EnableParallel)
		if err != nil {
			return nil, err
		}
		for _, b := range dropped {
			warnings = append(warnings, fmt.Errorf("output beam %d: %w", b, ErrBeamTooShort))
		}
	}

	// Stage 5: Pendry Y. When skipped, Y carries the interpolated
	// intensity unchanged.
	for b := 0; b < nOut; b++ {
		sp := p.Spans[b]
		p.Y[b] = make([]float64, len(outEnergies))
		if sp.Len == 0 {
			continue
		}
		if conf.Skip.YFunction {
			copy(p.Y[b][sp.Start:sp.End()], p.I[b][sp.Start:sp.End()])
			continue
		}
		PendryY(p.Y[b][sp.Start:sp.End()], p.I[b][sp.Start:sp.End()], p.Deriv[b][sp.Start:sp.End()], conf.V0Imag)
	}

	p.Warning = errors.Join(warnings...)
	return p, nil
}

// averageBeams forms each output beam as the arithmetic mean of its
// group members on the intersection of their supports.
func averageBeams(set *BeamSet, spans []Span, scheme []int, nOut int) ([][]float64, []Span, error) {
	avgI := make([][]float64, nOut)
	avgSpans := make([]Span, nOut)
	nGrid := len(set.Energies)
	ops := simdops.Get()

	for g := 1; g <= nOut; g++ {
		var members []int
		for b, sb := range scheme {
			if sb == g {
				members = append(members, b)
			}
		}
		if len(members) == 0 {
			return nil, nil, fmt.Errorf("%w: output group %d is empty", ErrSchemeInvalid, g)
		}

		start, end := 0, nGrid
		for _, b := range members {
			if spans[b].Start > start {
				start = spans[b].Start
			}
			if spans[b].End() < end {
				end = spans[b].End()
			}
		}
		n := end - start
		if n < MinBeamSamples {
			return nil, nil, fmt.Errorf("%w: output group %d has %d common samples, need %d",
				ErrGroupTooShort, g, n, MinBeamSamples)
		}

		row := make([]float64, nGrid)
		for _, b := range members {
			src := set.Intensity[b]
			for k := start; k < end; k++ {
				row[k] += src[k]
			}
		}
		if len(members) > 1 {
			seg := row[start:end]
			ops.Scale(seg, seg, 1/float64(len(members)))
		}
		avgI[g-1] = row
		avgSpans[g-1] = Span{Start: start, Len: n}
	}
	return avgI, avgSpans, nil
}

// interpolateBeams fits a natural B-spline per beam and evaluates value
// and first derivative on the contained portion of the output grid.
// It returns the indices of beams dropped for insufficient output support.
func interpolateBeams(p *Prepared, inEnergies []float64, avgI [][]float64, avgSpans []Span, outEnergies []float64, parallel bool) ([]int, error) {
	nOut := len(avgI)
	droppedRows := make([]bool, nOut)

	interpOne := func(b int) error {
		sp := avgSpans[b]
		p.I[b] = make([]float64, len(outEnergies))
		p.Deriv[b] = make([]float64, len(outEnergies))
		if sp.Len == 0 {
			return nil
		}

		xs := inEnergies[sp.Start:sp.End()]
		ys := avgI[b][sp.Start:sp.End()]
		spl, err := spline.FitNatural(xs, ys)
		if err != nil {
			if errors.Is(err, spline.ErrSingular) {
				return fmt.Errorf("beam %d: %w", b, ErrSingularSpline)
			}
			return fmt.Errorf("%w: beam %d: %v", ErrBadGrid, b, err)
		}

		outLo := grid.FirstAtOrAbove(outEnergies, xs[0])
		outHi := grid.LastAtOrBelow(outEnergies, xs[len(xs)-1])
		n := outHi - outLo + 1
		if n < MinBeamSamples {
			droppedRows[b] = true
			return nil
		}
		if err := spl.EvalAll(outEnergies[outLo:outHi+1], p.I[b][outLo:outHi+1], p.Deriv[b][outLo:outHi+1]); err != nil {
			return fmt.Errorf("%w: beam %d: %v", ErrBadGrid, b, err)
		}
		p.Spans[b] = Span{Start: outLo, Len: n}
		return nil
	}

	if parallel && nOut > 1 {
		var wg sync.WaitGroup
		errChan := make(chan error, nOut)
		for b := 0; b < nOut; b++ {
			wg.Add(1)
			go func(b int) {
				defer wg.Done()
				if err := interpOne(b); err != nil {
					errChan <- err
				}
			}(b)
		}
		wg.Wait()
		close(errChan)
		for err := range errChan {
			if err != nil {
				return nil, err
			}
		}
	} else {
		for b := 0; b < nOut; b++ {
			if err := interpOne(b); err != nil {
				return nil, err
			}
		}
	}

	var dropped []int
	for b, d := range droppedRows {
		if d {
			dropped = append(dropped, b)
		}
	}
	return dropped, nil
}

// copyWithFiniteDiff carries intensities through unchanged when
// interpolation is skipped, which requires the input grid to already be
// the output grid. Derivatives come from central finite differences,
// one-sided at the span ends.
func copyWithFiniteDiff(p *Prepared, inEnergies []float64, avgI [][]float64, avgSpans []Span, outEnergies []float64, step float64) error {
	if len(inEnergies) != len(outEnergies) {
		return fmt.Errorf("%w: interpolation skipped but grids differ in length (%d vs %d)",
			ErrBadGrid, len(inEnergies), len(outEnergies))
	}
	for i := range inEnergies {
		if diff := inEnergies[i] - outEnergies[i]; diff > gridTolerance*step || diff < -gridTolerance*step {
			return fmt.Errorf("%w: interpolation skipped but grids differ at index %d", ErrBadGrid, i)
		}
	}
	for b := range avgI {
		n := len(outEnergies)
		p.I[b] = make([]float64, n)
		p.Deriv[b] = make([]float64, n)
		sp := avgSpans[b]
		p.Spans[b] = sp
		if sp.Len == 0 {
			continue
		}
		copy(p.I[b][sp.Start:sp.End()], avgI[b][sp.Start:sp.End()])

		row := p.I[b]
		der := p.Deriv[b]
		lo, hi := sp.Start, sp.End()-1
		if sp.Len == 1 {
			der[lo] = 0
			continue
		}
		der[lo] = (row[lo+1] - row[lo]) / step
		der[hi] = (row[hi] - row[hi-1]) / step
		for k := lo + 1; k < hi; k++ {
			der[k] = (row[k+1] - row[k-1]) / (2 * step)
		}
	}
	return nil
}
