package increments

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumturb/internal/models"
)

// rampField returns a field whose value is i*width+j, so increments are
// easy to predict.
func rampField(t *testing.T, width, height int) *models.Field {
	t.Helper()
	data := make([]float64, width*height)
	for idx := range data {
		data[idx] = float64(idx)
	}
	f, err := models.NewField(width, height, data)
	require.NoError(t, err)
	return f
}

func TestExpectedLen(t *testing.T) {
	tests := []struct {
		name        string
		h, w, scale int
		want        int
	}{
		{"both directions", 4, 6, 1, 4*5 + 6*3},
		{"scale equals height", 3, 5, 3, 3 * 2},
		{"scale equals width", 5, 3, 3, 3 * 2},
		{"dimension minus one", 4, 4, 3, 4 + 4},
		{"beyond both", 4, 4, 4, 0},
		{"single pixel", 1, 1, 1, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExpectedLen(tc.h, tc.w, tc.scale))
		})
	}
}

func TestSampleLengths(t *testing.T) {
	f := rampField(t, 7, 5)
	scales := models.ScaleSet{1, 2, 4, 5, 6, 7, 9}

	samples, err := Sample(context.Background(), f, scales, Options{Workers: 3})
	require.NoError(t, err)
	require.Len(t, samples, len(scales))

	for _, s := range scales {
		assert.Len(t, samples[s], ExpectedLen(f.Height, f.Width, s), "scale %d", s)
	}
	assert.Empty(t, samples[7])
	assert.Empty(t, samples[9])
}

func TestSampleValuesNonNegative(t *testing.T) {
	f, err := models.FieldFromRows([][]float64{
		{10, 0, 255, 3},
		{7, 200, 1, 1},
		{0, 0, 50, 90},
	})
	require.NoError(t, err)

	samples, err := Sample(context.Background(), f, models.ScaleSet{1, 2}, Options{})
	require.NoError(t, err)
	for s, sample := range samples {
		for _, v := range sample {
			assert.GreaterOrEqual(t, v, 0.0, "scale %d", s)
		}
	}
}

func TestSampleRampValues(t *testing.T) {
	// Horizontal increments on a ramp equal the scale, vertical ones equal
	// scale*width.
	f := rampField(t, 5, 4)
	samples, err := Sample(context.Background(), f, models.ScaleSet{2}, Options{})
	require.NoError(t, err)

	var horiz, vert int
	for _, v := range samples[2] {
		switch v {
		case 2:
			horiz++
		case 10:
			vert++
		default:
			t.Fatalf("unexpected increment %v", v)
		}
	}
	assert.Equal(t, 4*3, horiz)
	assert.Equal(t, 5*2, vert)
}

func TestSampleUniformField(t *testing.T) {
	data := make([]float64, 6*4)
	for i := range data {
		data[i] = 128
	}
	f, err := models.NewField(6, 4, data)
	require.NoError(t, err)

	samples, err := Sample(context.Background(), f, models.DefaultScales, Options{})
	require.NoError(t, err)
	for s, sample := range samples {
		for _, v := range sample {
			assert.Zero(t, v, "scale %d", s)
		}
	}
}

func TestSampleSinglePixel(t *testing.T) {
	const p = 42.0
	f, err := models.FieldFromRows([][]float64{
		{0, 0, 0},
		{0, p, 0},
		{0, 0, 0},
	})
	require.NoError(t, err)

	samples, err := Sample(context.Background(), f, models.ScaleSet{1}, Options{})
	require.NoError(t, err)

	got := append([]float64(nil), samples[1]...)
	sort.Float64s(got)
	want := []float64{0, 0, 0, 0, 0, 0, 0, 0, p, p, p, p}
	assert.Equal(t, want, got)
}

func TestSampleInvalidScale(t *testing.T) {
	f := rampField(t, 3, 3)
	for _, scales := range []models.ScaleSet{{1, 0}, {-2}, {}} {
		_, err := Sample(context.Background(), f, scales, Options{})
		assert.ErrorIs(t, err, models.ErrInvalidScale, "scales %v", scales)
	}

	_, err := Sample(context.Background(), f, models.ScaleSet{1, 1}, Options{})
	assert.ErrorIs(t, err, models.ErrDuplicateScale)

	var scaleErr *models.ScaleError
	_, err = Sample(context.Background(), f, models.ScaleSet{3, -1}, Options{})
	require.True(t, errors.As(err, &scaleErr))
	assert.Equal(t, -1, scaleErr.Scale)
}

func TestSampleCanceled(t *testing.T) {
	f := rampField(t, 8, 8)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Sample(ctx, f, models.ScaleSet{1, 2, 3}, Options{Workers: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSampleIdempotent(t *testing.T) {
	f := rampField(t, 9, 6)
	scales := models.ScaleSet{1, 3, 5}

	first, err := Sample(context.Background(), f, scales, Options{Workers: 4})
	require.NoError(t, err)
	second, err := Sample(context.Background(), f, scales, Options{Workers: 1})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSampleSubsampling(t *testing.T) {
	f := rampField(t, 20, 20)
	scales := models.ScaleSet{1, 2}
	opts := Options{MaxSamples: 50, Seed: 7}

	first, err := Sample(context.Background(), f, scales, opts)
	require.NoError(t, err)
	second, err := Sample(context.Background(), f, scales, opts)
	require.NoError(t, err)

	for _, s := range scales {
		assert.Len(t, first[s], 50)
	}
	assert.Equal(t, first, second, "same seed must select the same subsample")

	full, err := Sample(context.Background(), f, scales, Options{})
	require.NoError(t, err)
	allowed := map[float64]bool{}
	for _, v := range full[1] {
		allowed[v] = true
	}
	for _, v := range first[1] {
		assert.True(t, allowed[v], "subsampled value %v not in full sample", v)
	}

	_, err = Sample(context.Background(), f, scales, Options{MaxSamples: -1})
	assert.Error(t, err)
}

func TestDirectional(t *testing.T) {
	f := rampField(t, 4, 3)
	h, v, err := Directional(f, 1)
	require.NoError(t, err)
	assert.Len(t, h, 3*3)
	assert.Len(t, v, 4*2)
	for _, x := range h {
		assert.Equal(t, 1.0, x)
	}
	for _, x := range v {
		assert.Equal(t, 4.0, x)
	}

	h, v, err = Directional(f, 3)
	require.NoError(t, err)
	assert.Len(t, h, 3)
	assert.Empty(t, v)

	_, _, err = Directional(f, 0)
	assert.ErrorIs(t, err, models.ErrInvalidScale)
}
