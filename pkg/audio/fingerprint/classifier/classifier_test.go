package classifier

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/chromaprint/pkg/audio/image"
)

const (
	testRows    = 8
	testColumns = 12
)

func testSource() []float64 {
	src := make([]float64, testRows*testColumns)
	for i := range src {
		src[i] = float64((i*7)%11) + 0.5
	}
	return src
}

func sum(src []float64, x1, y1, x2, y2 int) float64 {
	total := 0.0
	for x := x1; x <= x2; x++ {
		for y := y1; y <= y2; y++ {
			total += src[x*testColumns+y]
		}
	}
	return total
}

func integral(t *testing.T, src []float64) *image.IntegralImage {
	t.Helper()
	img, err := image.FromData(testColumns, src)
	require.NoError(t, err)
	return image.NewIntegralImage(img, false)
}

func TestFilterRegions(t *testing.T) {
	src := testSource()
	ii := integral(t, src)
	const x, y, w, h = 1, 2, 6, 6

	tests := []struct {
		kind FilterKind
		a, b float64
	}{
		{FilterWhole, sum(src, x, y, x+w-1, y+h-1), 0},
		{FilterBandHalves, sum(src, x, y+3, x+w-1, y+h-1), sum(src, x, y, x+w-1, y+2)},
		{FilterTimeHalves, sum(src, x+3, y, x+w-1, y+h-1), sum(src, x, y, x+2, y+h-1)},
		{
			FilterQuadrants,
			sum(src, x, y+3, x+2, y+h-1) + sum(src, x+3, y, x+w-1, y+2),
			sum(src, x, y, x+2, y+2) + sum(src, x+3, y+3, x+w-1, y+h-1),
		},
		{FilterBandThirds, sum(src, x, y+2, x+w-1, y+3), sum(src, x, y, x+w-1, y+1) + sum(src, x, y+4, x+w-1, y+h-1)},
		{FilterTimeThirds, sum(src, x+2, y, x+3, y+h-1), sum(src, x, y, x+1, y+h-1) + sum(src, x+4, y, x+w-1, y+h-1)},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			f, err := NewFilter(tt.kind, y, h, w, Subtract)
			require.NoError(t, err)
			got, err := f.Apply(ii, x)
			require.NoError(t, err)
			assert.InDelta(t, tt.a-tt.b, got, 1e-9)

			f, err = NewFilter(tt.kind, y, h, w, LogRatio)
			require.NoError(t, err)
			got, err = f.Apply(ii, x)
			require.NoError(t, err)
			assert.InDelta(t, math.Log((1+tt.a)/(1+tt.b)), got, 1e-9)
		})
	}
}

func TestFilterValidation(t *testing.T) {
	_, err := NewFilter(FilterKind(6), 0, 1, 1, Subtract)
	assert.ErrorIs(t, err, ErrInvalidFilter)
	_, err = NewFilter(FilterWhole, 0, 1, 1, Comparison(2))
	assert.ErrorIs(t, err, ErrInvalidFilter)
	_, err = NewFilter(FilterWhole, 0, 0, 1, Subtract)
	assert.ErrorIs(t, err, ErrInvalidFilter)
	_, err = NewFilter(FilterWhole, -1, 1, 1, Subtract)
	assert.ErrorIs(t, err, ErrInvalidFilter)

	f, err := NewFilter(FilterQuadrants, 4, 3, 15, LogRatio)
	require.NoError(t, err)
	assert.Equal(t, FilterQuadrants, f.Kind())
	assert.Equal(t, LogRatio, f.Comparison())
	assert.Equal(t, 4, f.Y())
	assert.Equal(t, 3, f.Height())
	assert.Equal(t, 15, f.Width())
}

func TestLogRatioNonFinite(t *testing.T) {
	src := make([]float64, testRows*testColumns)
	src[0] = -1
	ii := integral(t, src)

	// b covers the -1 cell and a sums to zero: 1/0
	f, err := NewFilter(FilterTimeHalves, 0, 1, 2, LogRatio)
	require.NoError(t, err)
	_, err = f.Apply(ii, 0)
	assert.ErrorIs(t, err, ErrNonFiniteLogRatio)

	// a sums to -1: log(0)
	f, err = NewFilter(FilterWhole, 0, 1, 1, LogRatio)
	require.NoError(t, err)
	_, err = f.Apply(ii, 0)
	assert.ErrorIs(t, err, ErrNonFiniteLogRatio)

	f, err = NewFilter(FilterTimeHalves, 0, 1, 2, Subtract)
	require.NoError(t, err)
	v, err := f.Apply(ii, 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
}

func TestKindStrings(t *testing.T) {
	assert.Equal(t, "whole", FilterWhole.String())
	assert.Equal(t, "time-thirds", FilterTimeThirds.String())
	assert.Equal(t, "FilterKind(9)", FilterKind(9).String())
	assert.Equal(t, "log-ratio", LogRatio.String())
	assert.Equal(t, "Comparison(5)", Comparison(5).String())
}

func TestQuantizerBoundaries(t *testing.T) {
	for _, th := range [][3]float64{
		{-1, 0, 1},
		{2.10543, 2.45354, 2.69414},
		{-0.0771619, -0.00991999, 0.0575406},
	} {
		q, err := NewQuantizer(th[0], th[1], th[2])
		require.NoError(t, err)

		const eps = 1e-6
		assert.Equal(t, 0, q.Quantize(th[0]-eps))
		assert.Equal(t, 1, q.Quantize(th[0]))
		assert.Equal(t, 1, q.Quantize(th[1]-eps))
		assert.Equal(t, 2, q.Quantize(th[1]))
		assert.Equal(t, 2, q.Quantize(th[2]-eps))
		assert.Equal(t, 3, q.Quantize(th[2]))
		assert.Equal(t, 3, q.Quantize(math.Inf(1)))
	}
}

func TestQuantizerRejectsUnorderedThresholds(t *testing.T) {
	for _, th := range [][3]float64{{1, 0, 2}, {0, 2, 1}, {1, 1, 2}, {0, 1, 1}} {
		_, err := NewQuantizer(th[0], th[1], th[2])
		assert.ErrorIs(t, err, ErrThresholdOrder, "%v", th)
	}

	q, err := NewQuantizer(1, 2, 3)
	require.NoError(t, err)
	t0, t1, t2 := q.Thresholds()
	assert.Equal(t, [3]float64{1, 2, 3}, [3]float64{t0, t1, t2})
}

func TestClassify(t *testing.T) {
	src := testSource()
	ii := integral(t, src)

	f, err := NewFilter(FilterWhole, 0, 2, 2, Subtract)
	require.NoError(t, err)
	whole := sum(src, 3, 0, 4, 1)

	for code, th := range [][3]float64{
		{whole + 1, whole + 2, whole + 3},
		{whole - 1, whole + 1, whole + 2},
		{whole - 2, whole - 1, whole + 1},
		{whole - 3, whole - 2, whole - 1},
	} {
		q, err := NewQuantizer(th[0], th[1], th[2])
		require.NoError(t, err)
		c := New(f, q)
		got, err := c.Classify(ii, 3)
		require.NoError(t, err)
		assert.Equal(t, code, got)
		assert.Equal(t, f, c.Filter())
		assert.Equal(t, q, c.Quantizer())
	}
}

func TestClassifyPropagatesFilterError(t *testing.T) {
	src := make([]float64, testRows*testColumns)
	src[0] = -1
	ii := integral(t, src)

	f, err := NewFilter(FilterWhole, 0, 1, 1, LogRatio)
	require.NoError(t, err)
	q, err := NewQuantizer(0, 1, 2)
	require.NoError(t, err)

	_, err = New(f, q).Classify(ii, 0)
	assert.ErrorIs(t, err, ErrNonFiniteLogRatio)
}
