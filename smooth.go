package rfactor

import (
	"github.com/tphakala/go-leed-rfactor/internal/filter"
)

// msSmoother applies a precomputed modified-sinc kernel.
type msSmoother struct {
	kernel []float64
}

// NewModifiedSincSmoother returns a Smoother using a modified-sinc
// kernel of the given degree (even, typically 2..8) and half-width.
// halfWidth must be at least degree/2+2; alpha <= 0 selects
// DefaultMSAlpha. The kernel preserves constant curves everywhere,
// including near the span boundaries.
func NewModifiedSincSmoother(degree, halfWidth int, alpha float64) (Smoother, error) {
	if alpha <= 0 {
		alpha = DefaultMSAlpha
	}
	kernel, err := filter.NewMSKernel(degree, halfWidth, alpha)
	if err != nil {
		return nil, err
	}
	return &msSmoother{kernel: kernel}, nil
}

func (m *msSmoother) Smooth(data []float64) ([]float64, error) {
	return filter.SmoothSame(data, m.kernel), nil
}
