package engine

import (
	"math"
	"testing"
	"time"

	"macro-observer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func TestSimulateCompoundsAndUsesActualBases(t *testing.T) {
	// 13 months ending at 310: bases for the projection are 299..310.
	history := make([]models.MObservation, 13)
	for i := range history {
		history[i] = obs(day(2024, time.June, 1).AddDate(0, i, 0), 298.0+float64(i))
	}
	last := history[12] // 310 at 2025-06-01

	points, err := Simulate(history, 0.002, 6)
	require.NoError(t, err)
	require.Len(t, points, 6)

	level := last.Value
	for i, p := range points {
		level *= 1.002

		assert.Equal(t, last.Date.AddDate(0, i+1, 0), p.Date)
		assert.InDelta(t, level, p.Level, 1e-9)

		// Base for projected month i+1 is history[i+1] (= 299+i)
		base := history[i+1].Value
		require.True(t, p.Defined)
		assert.InDelta(t, (p.Level-base)/base*100.0, p.YoY, 1e-9)
	}
}

// -----------------------------------------------------------------------------

func TestSimulateUndefinedBeyondBaseHistory(t *testing.T) {
	// Only 3 months of history: projections 1..3 would need bases from
	// 10-12 months ago which do not exist.
	history := []models.MObservation{
		obs(day(2025, time.April, 1), 308.0),
		obs(day(2025, time.May, 1), 309.0),
		obs(day(2025, time.June, 1), 310.0),
	}

	points, err := Simulate(history, 0.002, 3)
	require.NoError(t, err)

	for _, p := range points {
		assert.False(t, p.Defined)
		assert.True(t, math.IsNaN(p.YoY))
		assert.Greater(t, p.Level, 310.0, "levels still compound")
	}
}

// -----------------------------------------------------------------------------

func TestSimulateHorizonPastTwelveMonths(t *testing.T) {
	history := make([]models.MObservation, 24)
	for i := range history {
		history[i] = obs(day(2023, time.July, 1).AddDate(0, i, 0), 290.0+float64(i))
	}

	points, err := Simulate(history, 0.0, 14)
	require.NoError(t, err)
	require.Len(t, points, 14)

	// Months 1-12 compare against actual prints, 13-14 have no base.
	for i := 0; i < 12; i++ {
		assert.True(t, points[i].Defined, "month %d", i+1)
	}
	assert.False(t, points[12].Defined)
	assert.False(t, points[13].Defined)
}

// -----------------------------------------------------------------------------

func TestSimulateRejectsBadInput(t *testing.T) {
	_, err := Simulate(nil, 0.002, 6)
	assert.Error(t, err)

	_, err = Simulate([]models.MObservation{obs(day(2025, time.June, 1), 310.0)}, 0.002, 0)
	assert.Error(t, err)
}
