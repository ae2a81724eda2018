package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrictlyIncreasing(t *testing.T) {
	tests := []struct {
		name string
		xs   []float64
		want bool
	}{
		{"empty", nil, true},
		{"single", []float64{1}, true},
		{"increasing", []float64{1, 2, 3.5}, true},
		{"duplicate", []float64{1, 2, 2}, false},
		{"decreasing", []float64{3, 2, 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StrictlyIncreasing(tt.xs))
		})
	}
}

func TestUniformStep(t *testing.T) {
	t.Run("uniform grid accepted", func(t *testing.T) {
		xs := []float64{50, 50.5, 51, 51.5, 52}
		got, err := UniformStep(xs, 0.5)
		require.NoError(t, err)
		assert.InDelta(t, 0.5, got, 1e-12)
	})

	t.Run("non-uniform rejected", func(t *testing.T) {
		xs := []float64{0, 0.5, 1.2}
		_, err := UniformStep(xs, 0.5)
		assert.ErrorIs(t, err, ErrNotUniform)
	})

	t.Run("non-increasing rejected", func(t *testing.T) {
		xs := []float64{0, 0.5, 0.5}
		_, err := UniformStep(xs, 0.5)
		assert.ErrorIs(t, err, ErrNotIncreasing)
	})

	t.Run("bad step rejected", func(t *testing.T) {
		_, err := UniformStep([]float64{0, 1}, 0)
		assert.ErrorIs(t, err, ErrNotUniform)
	})
}

func TestIndexSearch(t *testing.T) {
	xs := []float64{10, 20, 30, 40, 50}

	tests := []struct {
		name      string
		x         float64
		wantFirst int
		wantLast  int
	}{
		{"below all", 5, 0, -1},
		{"exact first", 10, 0, 0},
		{"between", 25, 2, 1},
		{"exact interior", 30, 2, 2},
		{"exact last", 50, 4, 4},
		{"above all", 55, 5, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantFirst, FirstAtOrAbove(xs, tt.x), "FirstAtOrAbove")
			assert.Equal(t, tt.wantLast, LastAtOrBelow(xs, tt.x), "LastAtOrBelow")
		})
	}
}

func TestWindow(t *testing.T) {
	xs := []float64{10, 20, 30, 40, 50}

	tests := []struct {
		name       string
		xmin, xmax float64
		wantLo     int
		wantHi     int
	}{
		{"full cover", 0, 100, 0, 5},
		{"interior", 15, 45, 1, 4},
		{"exact bounds", 20, 40, 1, 4},
		{"empty", 21, 29, 2, 2},
		{"all below", 60, 70, 5, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := Window(xs, tt.xmin, tt.xmax)
			assert.Equal(t, tt.wantLo, lo)
			assert.Equal(t, tt.wantHi, hi)
		})
	}
}

func TestOverlap(t *testing.T) {
	tests := []struct {
		name           string
		a1, n1, a2, n2 int
		wantLo, wantN  int
	}{
		{"identical", 0, 10, 0, 10, 0, 10},
		{"partial", 0, 10, 5, 10, 5, 5},
		{"contained", 0, 20, 5, 5, 5, 5},
		{"touching", 0, 5, 5, 5, 5, 0},
		{"disjoint", 0, 5, 100, 5, 100, 0},
		{"empty input", 3, 0, 0, 10, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, n := Overlap(tt.a1, tt.n1, tt.a2, tt.n2)
			assert.Equal(t, tt.wantN, n, "overlap length")
			if n > 0 {
				assert.Equal(t, tt.wantLo, lo, "overlap start")
			}
		})
	}
}
