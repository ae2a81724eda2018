package rfactor

import (
	"fmt"
	"math"
)

// Span marks the valid sample range of one beam on an energy grid:
// indices [Start, Start+Len). Samples outside the span are undefined
// and never read.
type Span struct {
	Start int
	Len   int
}

// End returns the index one past the last valid sample.
func (s Span) End() int { return s.Start + s.Len }

// BeamSet packs a set of I(E) curves sharing one energy grid.
// Intensity is indexed [beam][sample]; each row has the full grid
// length, with only the samples inside Spans[beam] defined.
type BeamSet struct {
	Energies  []float64
	Intensity [][]float64
	Spans     []Span
}

// NBeams returns the number of beams in the set.
func (bs *BeamSet) NBeams() int { return len(bs.Intensity) }

// Validate checks structural consistency: a strictly increasing grid,
// matching row and span counts, and spans contained in the grid.
func (bs *BeamSet) Validate() error {
	n := len(bs.Energies)
	if n < 2 {
		return fmt.Errorf("%w: need at least 2 energies, got %d", ErrBadGrid, n)
	}
	for i := 1; i < n; i++ {
		if bs.Energies[i] <= bs.Energies[i-1] {
			return fmt.Errorf("%w: energies not strictly increasing at index %d", ErrBadGrid, i)
		}
	}
	if len(bs.Spans) != len(bs.Intensity) {
		return fmt.Errorf("%w: %d intensity rows but %d spans", ErrBadGrid, len(bs.Intensity), len(bs.Spans))
	}
	for b, sp := range bs.Spans {
		if sp.Start < 0 || sp.Len < 0 || sp.End() > n {
			return fmt.Errorf("%w: beam %d span [%d, %d) outside grid of %d samples",
				ErrBadGrid, b, sp.Start, sp.End(), n)
		}
		if len(bs.Intensity[b]) != n {
			return fmt.Errorf("%w: beam %d intensity row has %d samples, grid has %d",
				ErrBadGrid, b, len(bs.Intensity[b]), n)
		}
	}
	return nil
}

// Prepared holds the outcome of beam preparation: interpolated
// intensities, first derivatives and Pendry Y-functions on the uniform
// output grid, with per-beam spans. All downstream evaluation respects
// the spans.
type Prepared struct {
	// Energies is the uniform output grid, Step its spacing.
	Energies []float64
	Step     float64

	// I, Deriv and Y are indexed [beam][sample]; rows span the full
	// output grid, defined only inside Spans.
	I     [][]float64
	Deriv [][]float64
	Y     [][]float64
	Spans []Span

	// Warning collects informational per-beam conditions such as
	// ErrBeamTooShort; nil when preparation was clean.
	Warning error

	parallel bool
}

// NBeams returns the number of prepared beams.
func (p *Prepared) NBeams() int { return len(p.Y) }

// compatible verifies that two prepared sets share grid and beam count.
func compatible(a, b *Prepared) error {
	if a.NBeams() != b.NBeams() {
		return fmt.Errorf("%w: %d beams vs %d beams", ErrSchemeMismatch, a.NBeams(), b.NBeams())
	}
	if len(a.Energies) != len(b.Energies) {
		return fmt.Errorf("%w: output grids differ in length (%d vs %d)",
			ErrBadGrid, len(a.Energies), len(b.Energies))
	}
	if math.Abs(a.Step-b.Step) > gridTolerance*a.Step {
		return fmt.Errorf("%w: output grid steps differ (%v vs %v)", ErrBadGrid, a.Step, b.Step)
	}
	return nil
}

// gridTolerance is the relative tolerance for grid comparisons.
const gridTolerance = 1e-6
