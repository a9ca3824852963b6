package engine

import (
	"fmt"
	"math"

	"macro-observer/src/engine/core"
	"macro-observer/src/models"
)

// -----------------------------------------------------------------------------
// Base-effect simulator. Projects the anchor index forward at an assumed
// month-over-month rate and recomputes YoY against the already-published
// history, showing how last year's prints mechanically pull the headline
// number even when the assumed run-rate is flat.
// -----------------------------------------------------------------------------

// Simulate compounds the last observed level forward horizon months at the
// given per-month rate. Each projected month's YoY uses the actual print
// from twelve months before it; once the projection runs past the available
// base history the YoY is undefined rather than projected-on-projected.
func Simulate(history []models.MObservation, rate float64, horizon int) ([]models.MProjectionPoint, error) {
	if len(history) == 0 {
		return nil, fmt.Errorf("no observations to project from")
	}
	if horizon < 1 {
		return nil, fmt.Errorf("horizon must be at least 1, got %d", horizon)
	}

	last := history[len(history)-1]
	points := make([]models.MProjectionPoint, horizon)

	level := last.Value
	for i := 1; i <= horizon; i++ {
		level *= 1.0 + rate

		point := models.MProjectionPoint{
			Date:  last.Date.AddDate(0, i, 0),
			Level: level,
			YoY:   math.NaN(),
		}

		// Projected month i sits twelve months after history index
		// len-13+i; beyond the last actual print there is no base.
		baseIdx := len(history) - 13 + i
		if baseIdx >= 0 && baseIdx < len(history) {
			point.YoY = core.CalculateChangePercent(level, history[baseIdx].Value)
			point.Defined = !math.IsNaN(point.YoY)
		}

		points[i-1] = point
	}

	return points, nil
}
