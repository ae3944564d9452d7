package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPOW(t *testing.T) {
	for p := -10; p <= 10; p++ {
		assert.InDeltaf(t, math.Pow(1.3, float64(p)), POW(1.3, p), 1.e-12, "p = %d", p)
	}
	assert.Equal(t, 8., Power(2, 3))
	assert.InDelta(t, math.Sqrt(2), Power(2, 0.5), 1.e-15)
}

func TestSecant(t *testing.T) {
	{ // Cube root of 2
		f := func(x float64) (float64, error) { return x*x*x - 2, nil }
		x, fx, iter, err := Secant(f, 1, 2, 1.e-12, 1.e-12, 50)
		require.NoError(t, err)
		assert.InDelta(t, math.Cbrt(2), x, 1.e-10)
		assert.InDelta(t, 0, fx, 1.e-12)
		assert.Greater(t, iter, 1)
	}
	{ // Starting on the root returns immediately
		f := func(x float64) (float64, error) { return x - 3, nil }
		x, _, iter, err := Secant(f, 3, 4, 1.e-12, 0, 50)
		require.NoError(t, err)
		assert.Equal(t, 3., x)
		assert.Equal(t, 0, iter)
	}
	{ // Iteration budget exhausted
		f := func(x float64) (float64, error) { return math.Exp(x) - 1.e6, nil }
		_, _, _, err := Secant(f, 0, 1, 1.e-14, 1.e-14, 2)
		assert.ErrorIs(t, err, ErrNoConvergence)
	}
}

func TestInterpolate(t *testing.T) {
	xs := []float64{0, 1, 2}
	ys := []float64{0, 10, 30}
	out, err := Interpolate(xs, ys, []float64{-1, 0.5, 1.5, 2, 5})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 5, 20, 30, 30}, out)

	_, err = Interpolate([]float64{0, 0}, []float64{1, 2}, []float64{0})
	assert.Error(t, err)
	_, err = Interpolate([]float64{0}, []float64{1}, []float64{0})
	assert.Error(t, err)
}

func TestStatistics(t *testing.T) {
	r := []float64{3, -4}
	assert.InDelta(t, math.Sqrt(12.5), RMSE(r), 1.e-15)
	assert.InDelta(t, 3.5, MAE(r), 1.e-15)
	assert.Equal(t, 0., RMSE(nil))
	assert.InDelta(t, 2., Trapezoid([]float64{0, 1, 2}, []float64{1, 1, 1}), 1.e-15)

	v := []float64{1, 3}
	assert.Equal(t, 4., Normalize(v))
	assert.Equal(t, []float64{0.25, 0.75}, v)
	assert.True(t, HasNonFinite([]float64{1, math.NaN()}))
	assert.Equal(t, []float64{0, 2}, ClampSlice([]float64{-1, 5}, []float64{0, 0}, []float64{1, 2}))
}

func TestPartitionMap(t *testing.T) {
	{
		pm := NewPartitionMap(3, 10)
		assert.Equal(t, [][2]int{{0, 4}, {4, 7}, {7, 10}}, pm.Partitions)
		kMin, kMax := pm.GetBucketRange(1)
		assert.Equal(t, 4, kMin)
		assert.Equal(t, 7, kMax)
	}
	{ // More workers than items
		pm := NewPartitionMap(8, 3)
		assert.Equal(t, 3, pm.ParallelDegree)
		assert.Equal(t, [][2]int{{0, 1}, {1, 2}, {2, 3}}, pm.Partitions)
	}
	{
		var (
			out = make([]int, 17)
		)
		ParallelFor(4, len(out), func(i int) { out[i] = i * i })
		for i, v := range out {
			assert.Equal(t, i*i, v)
		}
		ParallelFor(0, 0, func(i int) { t.Fatal("called for empty range") })
	}
	{
		pm := NewPartitionMap(0, 5)
		assert.Equal(t, [][2]int{{0, 5}}, pm.Partitions)
	}
	{
		mem := GetMemUsage()
		assert.LessOrEqual(t, mem.Alloc, mem.Sys)
	}
}
