package compare

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumturb/internal/models"
	"lumturb/pkg/structure"
)

func TestTwoSampleStudent(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{2, 4, 6, 8, 10}

	tt, err := TwoSample(x, y, false)
	require.NoError(t, err)
	assert.InDelta(t, -1.8973665961010275, tt.Statistic, 1e-12)
	assert.Equal(t, 8.0, tt.DF)
	assert.InDelta(t, 0.0943497728, tt.PValue, 1e-6)

	// Swapping the groups flips the sign only.
	rev, err := TwoSample(y, x, false)
	require.NoError(t, err)
	assert.InDelta(t, -tt.Statistic, rev.Statistic, 1e-12)
	assert.InDelta(t, tt.PValue, rev.PValue, 1e-12)
}

func TestTwoSampleWelch(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{2, 4, 6, 8, 10}

	student, err := TwoSample(x, y, false)
	require.NoError(t, err)
	welch, err := TwoSample(x, y, true)
	require.NoError(t, err)

	// Equal group sizes give the same statistic with fewer degrees of freedom.
	assert.InDelta(t, student.Statistic, welch.Statistic, 1e-12)
	assert.InDelta(t, 6.25/1.0625, welch.DF, 1e-12)
	assert.Greater(t, welch.PValue, student.PValue)

	_, err = TwoSample([]float64{1}, y, true)
	assert.ErrorIs(t, err, models.ErrInsufficientData)
}

func TestTwoSampleIdentical(t *testing.T) {
	x := []float64{0.3, 1.7, 2.2, 9.1}
	tt, err := TwoSample(x, append([]float64(nil), x...), false)
	require.NoError(t, err)
	assert.InDelta(t, 0, tt.Statistic, 1e-12)
	assert.InDelta(t, 1, tt.PValue, 1e-12)
}

func TestTwoSampleZeroVariance(t *testing.T) {
	tt, err := TwoSample([]float64{0, 0, 0}, []float64{0, 0}, false)
	require.NoError(t, err)
	assert.Equal(t, TTest{Statistic: 0, PValue: 1, DF: 3}, tt)

	tt, err = TwoSample([]float64{1, 1}, []float64{3, 3}, true)
	require.NoError(t, err)
	assert.True(t, math.IsInf(tt.Statistic, -1))
	assert.Zero(t, tt.PValue)
	assert.Equal(t, 2.0, tt.DF)
}

func TestTwoSampleInsufficient(t *testing.T) {
	_, err := TwoSample(nil, []float64{1, 2}, false)
	assert.ErrorIs(t, err, models.ErrInsufficientData)

	_, err = TwoSample([]float64{1}, []float64{2}, false)
	assert.ErrorIs(t, err, models.ErrInsufficientData)

	// One value against several is still a valid pooled test.
	tt, err := TwoSample([]float64{4}, []float64{1, 2, 3}, false)
	require.NoError(t, err)
	assert.Equal(t, 2.0, tt.DF)
	assert.Greater(t, tt.Statistic, 0.0)
}

func TestCompare(t *testing.T) {
	a := &structure.Moments{Values: map[int][]float64{
		1: {1, 2, 3},
		2: {4, 5, 6},
		3: {1, 1, 2},
	}}
	b := &structure.Moments{Values: map[int][]float64{
		1: {1, 2, 3},
		2: {10, 11, 12, 13},
	}}

	res, err := Compare(a, b, Options{})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, res.Orders())
	assert.InDelta(t, 0, res[1].Statistic, 1e-12)
	assert.InDelta(t, 1, res[1].PValue, 1e-12)
	assert.Less(t, res[2].Statistic, 0.0)
	assert.Equal(t, 5.0, res[2].DF)
	assert.Equal(t, []int{2}, res.Significant(0.05))
	assert.Empty(t, res.Significant(0))
}

func TestCompareErrors(t *testing.T) {
	a := &structure.Moments{Values: map[int][]float64{1: {1, 2}}}
	b := &structure.Moments{Values: map[int][]float64{2: {1, 2}}}
	_, err := Compare(a, b, Options{})
	assert.ErrorIs(t, err, models.ErrInsufficientData)

	c := &structure.Moments{Values: map[int][]float64{1: {}}}
	_, err = Compare(a, c, Options{})
	assert.ErrorIs(t, err, models.ErrInsufficientData)
}
