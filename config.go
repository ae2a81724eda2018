package rfactor

import (
	"fmt"
)

// SkipStages selects preparation stages to bypass. The zero value
// executes every stage.
type SkipStages struct {
	RangeLimit    bool
	Averaging     bool
	Smoothing     bool
	Interpolation bool
	YFunction     bool
}

// Smoother smooths one intensity curve. Implementations must return a
// slice of the same length as the input.
type Smoother interface {
	Smooth(data []float64) ([]float64, error)
}

// Config controls beam preparation.
type Config struct {
	// V0Imag is the imaginary inner potential in eV. Zero or negative
	// selects DefaultV0Imag.
	V0Imag float64

	// Scheme maps each input beam to an output group in
	// [1, NBeamsOut]; 0 discards the beam. Beams sharing a nonzero
	// value are averaged. A nil Scheme keeps every beam as its own
	// output (identity).
	Scheme []int

	// NBeamsOut is the number of output beams. Zero with a nil
	// Scheme means "same as input".
	NBeamsOut int

	// Skip bypasses individual preparation stages.
	Skip SkipStages

	// Smoother, when non-nil and smoothing is not skipped, is applied
	// to each averaged intensity curve before interpolation.
	Smoother Smoother

	// EnableParallel fans per-beam interpolation and per-beam R
	// evaluation out across goroutines.
	EnableParallel bool
}

// Validate checks the configuration against an input beam count.
func (c *Config) Validate(nBeams int) error {
	if c.Scheme == nil {
		if c.NBeamsOut != 0 && c.NBeamsOut != nBeams {
			return fmt.Errorf("%w: NBeamsOut=%d without a scheme for %d beams",
				ErrSchemeInvalid, c.NBeamsOut, nBeams)
		}
		return nil
	}
	if len(c.Scheme) != nBeams {
		return fmt.Errorf("%w: scheme has %d entries for %d beams",
			ErrSchemeInvalid, len(c.Scheme), nBeams)
	}
	nOut := c.NBeamsOut
	if nOut <= 0 {
		return fmt.Errorf("%w: NBeamsOut=%d", ErrSchemeInvalid, nOut)
	}
	if nOut > nBeams {
		return fmt.Errorf("%w: NBeamsOut=%d exceeds %d input beams",
			ErrSchemeInvalid, nOut, nBeams)
	}
	for b, g := range c.Scheme {
		if g < 0 || g > nOut {
			return fmt.Errorf("%w: scheme[%d]=%d outside [0, %d]",
				ErrSchemeInvalid, b, g, nOut)
		}
	}
	return nil
}

// withDefaults returns a copy of c with zero values replaced by the
// package defaults, normalized for nBeams input beams.
func (c *Config) withDefaults(nBeams int) Config {
	out := Config{}
	if c != nil {
		out = *c
	}
	if out.V0Imag <= 0 {
		out.V0Imag = DefaultV0Imag
	}
	if out.Scheme == nil {
		scheme := make([]int, nBeams)
		for b := range scheme {
			scheme[b] = b + 1
		}
		out.Scheme = scheme
		out.NBeamsOut = nBeams
	}
	return out
}
