package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func TestCalculateChangePercent(t *testing.T) {
	assert.InDelta(t, 10.0, CalculateChangePercent(110, 100), 1e-9)
	assert.InDelta(t, -50.0, CalculateChangePercent(50, 100), 1e-9)
	assert.True(t, math.IsNaN(CalculateChangePercent(100, 0)))
	assert.True(t, math.IsNaN(CalculateChangePercent(math.NaN(), 100)))
	assert.True(t, math.IsNaN(CalculateChangePercent(100, math.NaN())))
}

// -----------------------------------------------------------------------------

func TestTrailingChangePercent(t *testing.T) {
	values := []float64{100, 102, 105, 110}
	out := TrailingChangePercent(values, 2)

	require.Len(t, out, 4)
	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))
	assert.InDelta(t, 5.0, out[2], 1e-9)
	assert.InDelta(t, 110.0/102.0*100.0-100.0, out[3], 1e-9)
}

func TestTrailingChangePercentOffsetLongerThanSeries(t *testing.T) {
	out := TrailingChangePercent([]float64{100, 101}, 12)
	for _, v := range out {
		assert.True(t, math.IsNaN(v))
	}
}

// -----------------------------------------------------------------------------

func TestForwardFill(t *testing.T) {
	nan := math.NaN()
	out := ForwardFill([]float64{nan, 1, nan, nan, 2, nan})

	assert.True(t, math.IsNaN(out[0]), "leading gap stays missing")
	assert.Equal(t, 1.0, out[1])
	assert.Equal(t, 1.0, out[2])
	assert.Equal(t, 1.0, out[3])
	assert.Equal(t, 2.0, out[4])
	assert.Equal(t, 2.0, out[5])
}

// -----------------------------------------------------------------------------

func TestScale(t *testing.T) {
	out := Scale([]float64{1e6, math.NaN(), 2.5e6}, 1e6)
	assert.Equal(t, 1.0, out[0])
	assert.True(t, math.IsNaN(out[1]))
	assert.Equal(t, 2.5, out[2])
}

// -----------------------------------------------------------------------------

func TestLastValidAndPriorValid(t *testing.T) {
	nan := math.NaN()
	values := []float64{nan, 1, 2, nan, 3, nan}

	assert.Equal(t, 4, LastValid(values))
	assert.Equal(t, 2, PriorValid(values, 4, 1), "skips over the gap at index 3")
	assert.Equal(t, 1, PriorValid(values, 4, 3))
	assert.Equal(t, -1, PriorValid(values, 1, 1))
	assert.Equal(t, -1, LastValid([]float64{nan, nan}))
}

// -----------------------------------------------------------------------------

func TestAllDefined(t *testing.T) {
	assert.True(t, AllDefined(1, 2, 3))
	assert.False(t, AllDefined(1, math.NaN(), 3))
	assert.True(t, AllDefined())
}
