package rfactor

import (
	"github.com/tphakala/go-leed-rfactor/internal/filter"
	"github.com/tphakala/go-leed-rfactor/internal/spline"
)

// Default physical and numerical parameters.
const (
	// DefaultV0Imag is the imaginary inner potential in eV.
	DefaultV0Imag = 5.0

	// DefaultEnergyStep is the customary output grid step in eV.
	DefaultEnergyStep = 0.5

	// SplineDegree is the interpolation spline degree.
	SplineDegree = spline.Degree

	// MinBeamSamples is the smallest per-beam support that can be
	// interpolated: 2*SplineDegree+1.
	MinBeamSamples = spline.MinPoints
)

// Shift optimizer defaults.
const (
	// DefaultTolR is the R-squared threshold above which a parabola
	// fit is accepted as good.
	DefaultTolR = 0.98

	// DefaultTolR2 is the R-squared threshold above which a fit is
	// acceptable after shrinking the fitting window.
	DefaultTolR2 = 0.90

	// DefaultFitRange is the initial half-width of the parabola
	// fitting window, in grid steps.
	DefaultFitRange = 10
)

// Smoother defaults.
const (
	// DefaultMSDegree is the default modified-sinc kernel degree.
	DefaultMSDegree = 4

	// DefaultMSAlpha is the default window width parameter.
	DefaultMSAlpha = filter.DefaultAlpha
)
