package rfactor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/integrate"

	"github.com/tphakala/go-leed-rfactor/internal/testutil"
)

// preparedFrom builds a Prepared set directly from Y-function rows for
// white-box evaluation tests.
func preparedFrom(step float64, spans []Span, rows [][]float64) *Prepared {
	return &Prepared{
		Energies: UniformGrid(100, step, len(rows[0])),
		Step:     step,
		Y:        rows,
		Spans:    spans,
	}
}

func TestPendryYValues(t *testing.T) {
	tests := []struct {
		name     string
		i, deriv float64
		v0i      float64
		want     float64
	}{
		{"flat curve", 1, 0, 5, 0},
		{"zero intensity", 0, 1, 5, 0},
		{"both zero", 0, 0, 5, 0},
		{"generic", 2, 3, 5, 6.0 / (4 + 25*9)},
		{"negative slope", 2, -3, 5, -6.0 / (4 + 25*9)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := make([]float64, 1)
			PendryY(dst, []float64{tt.i}, []float64{tt.deriv}, tt.v0i)
			assert.InDelta(t, tt.want, dst[0], 1e-15)
		})
	}
}

func TestPendryYScaleInvariant(t *testing.T) {
	es := testutil.UniformEnergies(50, 0.5, 120)
	peak := testutil.LorentzianPeak(80, 10, 4, 0.5)
	intensity := testutil.Sample(peak, es)
	deriv := make([]float64, len(es))
	for i := range deriv {
		deriv[i] = (peak(es[i]+1e-6) - peak(es[i]-1e-6)) / 2e-6
	}

	y := make([]float64, len(es))
	PendryY(y, intensity, deriv, DefaultV0Imag)

	scaledI := make([]float64, len(es))
	scaledD := make([]float64, len(es))
	for i := range es {
		scaledI[i] = 37.5 * intensity[i]
		scaledD[i] = 37.5 * deriv[i]
	}
	yScaled := make([]float64, len(es))
	PendryY(yScaled, scaledI, scaledD, DefaultV0Imag)

	testutil.AssertSlicesClose(t, y, yScaled, 1e-12, "Y is invariant under intensity scaling")
}

func TestPendryYBounded(t *testing.T) {
	// |Y| never exceeds 1/(2*V0i) for positive intensities.
	es := testutil.UniformEnergies(50, 0.5, 200)
	peak := testutil.LorentzianPeak(90, 6, 8, 0.2)
	intensity := testutil.Sample(peak, es)
	deriv := make([]float64, len(es))
	for i := range deriv {
		deriv[i] = (peak(es[i]+1e-6) - peak(es[i]-1e-6)) / 2e-6
	}

	y := make([]float64, len(es))
	PendryY(y, intensity, deriv, DefaultV0Imag)
	bound := 1 / (2 * DefaultV0Imag)
	testutil.AssertAllInRange(t, y, -bound, bound)
	testutil.AssertNoNaNOrInf(t, y)
}

func TestBeamRIdenticalCurves(t *testing.T) {
	n := 80
	y := make([]float64, n)
	for i := range y {
		y[i] = math.Sin(float64(i)/7) + 0.2
	}
	span := Span{Start: 0, Len: n}

	res := BeamR(y, y, span, span, 0, 0.5)
	assert.Equal(t, 0.0, res.R, "identical curves give exactly zero")
	assert.Equal(t, 0.0, res.Numerator)
	assert.Positive(t, res.Denominator)
	assert.Equal(t, n, res.Overlap)
}

func TestBeamRAntiCorrelated(t *testing.T) {
	// y2 = -y1 maximizes the R-factor at its theoretical ceiling of 2.
	n := 64
	y1 := make([]float64, n)
	y2 := make([]float64, n)
	for i := range y1 {
		y1[i] = math.Cos(float64(i) / 5)
		y2[i] = -y1[i]
	}
	span := Span{Start: 0, Len: n}

	res := BeamR(y1, y2, span, span, 0, 0.5)
	assert.InDelta(t, 2.0, res.R, 1e-12)
}

func TestBeamRRange(t *testing.T) {
	n := 100
	y1 := make([]float64, n)
	y2 := make([]float64, n)
	for i := range y1 {
		y1[i] = math.Sin(float64(i) / 9)
		y2[i] = 0.7*math.Cos(float64(i)/6) + 0.1
	}
	span := Span{Start: 0, Len: n}

	for shift := -5; shift <= 5; shift++ {
		res := BeamR(y1, y2, span, span, shift, 0.5)
		require.Positive(t, res.Overlap, "shift %d", shift)
		testutil.AssertInRange(t, res.R, 0, 2, "shift %d", shift)
	}
}

func TestBeamRMatchesTrapezoid(t *testing.T) {
	// Both integrals are trapezoid sums over the overlap grid.
	n := 90
	eStep := 0.5
	y1 := make([]float64, n)
	y2 := make([]float64, n)
	for i := range y1 {
		y1[i] = math.Sin(float64(i)/7) + 0.2
		y2[i] = 0.8 * math.Cos(float64(i)/9)
	}
	span := Span{Start: 0, Len: n}
	res := BeamR(y1, y2, span, span, 0, eStep)

	xs := testutil.UniformEnergies(0, eStep, n)
	d2 := make([]float64, n)
	s2 := make([]float64, n)
	for i := range y1 {
		d := y1[i] - y2[i]
		d2[i] = d * d
		s2[i] = y1[i]*y1[i] + y2[i]*y2[i]
	}
	wantNum := integrate.Trapezoidal(xs, d2)
	wantDen := integrate.Trapezoidal(xs, s2)

	testutil.AssertRelativeError(t, wantNum, res.Numerator, 1e-12)
	testutil.AssertRelativeError(t, wantDen, res.Denominator, 1e-12)
	testutil.AssertRelativeError(t, wantNum/wantDen, res.R, 1e-12)
}

func TestBeamRSymmetry(t *testing.T) {
	// Swapping the curves and negating the shift evaluates the same
	// overlap, so the R-factor is unchanged.
	n := 70
	y1 := make([]float64, n)
	y2 := make([]float64, n)
	for i := range y1 {
		y1[i] = math.Sin(float64(i)/8) + 0.3
		y2[i] = math.Cos(float64(i)/11) - 0.1
	}
	s1 := Span{Start: 5, Len: 60}
	s2 := Span{Start: 0, Len: 65}

	for _, shift := range []int{-3, -1, 0, 2, 4} {
		fwd := BeamR(y1, y2, s1, s2, shift, 0.5)
		rev := BeamR(y2, y1, s2, s1, -shift, 0.5)
		require.Equal(t, fwd.Overlap, rev.Overlap, "shift %d", shift)
		assert.InDelta(t, fwd.R, rev.R, 1e-14, "shift %d", shift)
	}
}

func TestBeamRShiftAlignment(t *testing.T) {
	// y2 carries the same curve displaced by s grid steps; evaluating at
	// shift s realigns it and the residual vanishes.
	n := 60
	s := 4
	f := func(i int) float64 { return math.Sin(float64(i)/6) + 0.5 }
	y1 := make([]float64, n)
	y2 := make([]float64, n)
	for i := 0; i < n; i++ {
		y1[i] = f(i)
	}
	for j := 0; j < n-s; j++ {
		y2[j] = f(j + s)
	}

	res := BeamR(y1, y2, Span{0, n}, Span{0, n - s}, s, 0.5)
	assert.Equal(t, n-s, res.Overlap)
	assert.Equal(t, 0.0, res.R)
}

func TestBeamRNoOverlap(t *testing.T) {
	n := 40
	y := make([]float64, n)
	for i := range y {
		y[i] = 1 + float64(i)
	}

	tests := []struct {
		name   string
		s1, s2 Span
		shift  int
	}{
		{"disjoint spans", Span{0, 10}, Span{20, 10}, 0},
		{"shifted out of range", Span{0, 10}, Span{0, 10}, 15},
		{"single common sample", Span{0, 10}, Span{9, 10}, 0},
		{"empty span", Span{0, 0}, Span{0, 10}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := BeamR(y, y, tt.s1, tt.s2, tt.shift, 0.5)
			assert.True(t, math.IsNaN(res.R), "R must be NaN without overlap")
			assert.Equal(t, 0, res.Overlap)
		})
	}
}

func TestBeamSetRAggregate(t *testing.T) {
	n := 50
	rowsA := make([][]float64, 2)
	rowsB := make([][]float64, 2)
	for b := 0; b < 2; b++ {
		rowsA[b] = make([]float64, n)
		rowsB[b] = make([]float64, n)
		for i := 0; i < n; i++ {
			rowsA[b][i] = math.Sin(float64(i)/(5+float64(b))) + 0.2
			rowsB[b][i] = math.Cos(float64(i)/(7+float64(b))) - 0.1
		}
	}
	spansA := []Span{{0, n}, {10, 30}}
	spansB := []Span{{0, n}, {5, 40}}

	exp := preparedFrom(0.5, spansA, rowsA)
	theo := preparedFrom(0.5, spansB, rowsB)

	res, err := BeamSetR(exp, theo, 0)
	require.NoError(t, err)
	require.Len(t, res.Beams, 2)
	assert.NoError(t, res.Warning)

	var sumRN, sumN float64
	for b := 0; b < 2; b++ {
		br := BeamR(rowsA[b], rowsB[b], spansA[b], spansB[b], 0, 0.5)
		assert.Equal(t, br, res.Beams[b], "beam %d", b)
		sumRN += br.R * float64(br.Overlap)
		sumN += float64(br.Overlap)
	}
	assert.InDelta(t, sumRN/sumN, res.RTotal, 1e-14, "overlap-weighted aggregate")
	assert.Equal(t, int(sumN), res.TotalOverlap)
}

func TestBeamSetRNoOverlapBeam(t *testing.T) {
	n := 40
	row := make([]float64, n)
	for i := range row {
		row[i] = math.Sin(float64(i) / 4)
	}
	exp := preparedFrom(0.5, []Span{{0, n}, {0, 15}}, [][]float64{row, row})
	theo := preparedFrom(0.5, []Span{{0, n}, {25, 15}}, [][]float64{row, row})

	res, err := BeamSetR(exp, theo, 0)
	require.NoError(t, err)

	assert.ErrorIs(t, res.Warning, ErrNoOverlap)
	assert.Equal(t, 0, res.Beams[1].Overlap)
	assert.Equal(t, 0.0, res.RTotal, "aggregate comes from the remaining beam")
	assert.Equal(t, n, res.TotalOverlap)
}

func TestBeamSetREmptyBeamSilent(t *testing.T) {
	// A beam with an empty span is excluded without a warning.
	n := 40
	row := make([]float64, n)
	for i := range row {
		row[i] = math.Cos(float64(i) / 5)
	}
	empty := make([]float64, n)
	exp := preparedFrom(0.5, []Span{{0, n}, {0, 0}}, [][]float64{row, empty})
	theo := preparedFrom(0.5, []Span{{0, n}, {0, 0}}, [][]float64{row, empty})

	res, err := BeamSetR(exp, theo, 0)
	require.NoError(t, err)
	assert.NoError(t, res.Warning)
	assert.Equal(t, 0.0, res.RTotal)
}

func TestBeamSetRNaNBeamPoisonsAggregate(t *testing.T) {
	// An all-zero Y-function has a vanishing denominator; its NaN R
	// must surface in the aggregate rather than vanish silently.
	n := 40
	row := make([]float64, n)
	zero := make([]float64, n)
	for i := range row {
		row[i] = math.Sin(float64(i) / 4)
	}
	spans := []Span{{0, n}, {0, n}}
	exp := preparedFrom(0.5, spans, [][]float64{row, zero})
	theo := preparedFrom(0.5, spans, [][]float64{row, zero})

	res, err := BeamSetR(exp, theo, 0)
	require.NoError(t, err)

	assert.ErrorIs(t, res.Warning, ErrBeamNaN)
	assert.True(t, math.IsNaN(res.RTotal))
	assert.True(t, math.IsNaN(res.Beams[1].R))
	assert.Equal(t, 0.0, res.Beams[0].R, "healthy beam result stays valid")
}

func TestBeamSetRAllEmpty(t *testing.T) {
	n := 20
	zeroSpans := []Span{{0, 0}}
	row := [][]float64{make([]float64, n)}
	res, err := BeamSetR(preparedFrom(0.5, zeroSpans, row), preparedFrom(0.5, zeroSpans, row), 0)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(res.RTotal))
	assert.ErrorIs(t, res.Warning, ErrNoOverlap)
}

func TestBeamSetRIncompatible(t *testing.T) {
	n := 30
	row := make([]float64, n)
	one := preparedFrom(0.5, []Span{{0, n}}, [][]float64{row})
	two := preparedFrom(0.5, []Span{{0, n}, {0, n}}, [][]float64{row, row})
	coarse := preparedFrom(1.0, []Span{{0, n}}, [][]float64{row})

	t.Run("beam count", func(t *testing.T) {
		_, err := BeamSetR(one, two, 0)
		assert.ErrorIs(t, err, ErrSchemeMismatch)
	})
	t.Run("grid step", func(t *testing.T) {
		_, err := BeamSetR(one, coarse, 0)
		assert.ErrorIs(t, err, ErrBadGrid)
	})
}

func TestBeamSetRParallelMatchesSequential(t *testing.T) {
	n := 60
	nBeams := 8
	rowsA := make([][]float64, nBeams)
	rowsB := make([][]float64, nBeams)
	spans := make([]Span, nBeams)
	for b := 0; b < nBeams; b++ {
		rowsA[b] = make([]float64, n)
		rowsB[b] = make([]float64, n)
		for i := 0; i < n; i++ {
			rowsA[b][i] = math.Sin(float64(i+b) / 6)
			rowsB[b][i] = math.Cos(float64(i-b) / 8)
		}
		spans[b] = Span{Start: b, Len: n - 2*b}
	}

	seq1 := preparedFrom(0.5, spans, rowsA)
	seq2 := preparedFrom(0.5, spans, rowsB)
	par1 := preparedFrom(0.5, spans, rowsA)
	par2 := preparedFrom(0.5, spans, rowsB)
	par1.parallel = true
	par2.parallel = true

	want, err := BeamSetR(seq1, seq2, 2)
	require.NoError(t, err)
	got, err := BeamSetR(par1, par2, 2)
	require.NoError(t, err)

	assert.Equal(t, want.Beams, got.Beams)
	assert.Equal(t, want.RTotal, got.RTotal)
	assert.Equal(t, want.TotalOverlap, got.TotalOverlap)
}

func TestBeamGroupR(t *testing.T) {
	n := 50
	nBeams := 4
	rowsA := make([][]float64, nBeams)
	rowsB := make([][]float64, nBeams)
	spans := make([]Span, nBeams)
	for b := 0; b < nBeams; b++ {
		rowsA[b] = make([]float64, n)
		rowsB[b] = make([]float64, n)
		for i := 0; i < n; i++ {
			rowsA[b][i] = math.Sin(float64(i)/(4+float64(b))) + 0.1
			rowsB[b][i] = math.Cos(float64(i)/(6+float64(b))) - 0.2
		}
		spans[b] = Span{Start: 0, Len: n}
	}
	exp := preparedFrom(0.5, spans, rowsA)
	theo := preparedFrom(0.5, spans, rowsB)

	// Integer and fractional-order beams grouped separately.
	labels := []int{2, 1, 2, 1}
	groups, set, err := BeamGroupR(exp, theo, labels, 0)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, 1, groups[0].Label, "ascending label order")
	assert.Equal(t, 2, groups[1].Label)

	for _, g := range groups {
		var sumRN, sumN float64
		for b, br := range set.Beams {
			if labels[b] != g.Label {
				continue
			}
			sumRN += br.R * float64(br.Overlap)
			sumN += float64(br.Overlap)
		}
		assert.InDelta(t, sumRN/sumN, g.R, 1e-14, "group %d", g.Label)
		assert.Equal(t, int(sumN), g.TotalOverlap, "group %d", g.Label)
	}

	joint, err := BeamSetR(exp, theo, 0)
	require.NoError(t, err)
	assert.Equal(t, joint.RTotal, set.RTotal, "joint total matches plain evaluation")
}

func TestBeamGroupRLabelCount(t *testing.T) {
	n := 30
	row := make([]float64, n)
	p := preparedFrom(0.5, []Span{{0, n}}, [][]float64{row})
	_, _, err := BeamGroupR(p, p, []int{1, 2}, 0)
	assert.ErrorIs(t, err, ErrSchemeInvalid)
}
