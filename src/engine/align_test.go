package engine

import (
	"math"
	"testing"
	"time"

	"macro-observer/src/catalog"
	"macro-observer/src/helpers"
	"macro-observer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func series(code string, obs ...models.MObservation) models.MSeries {
	spec, _ := catalog.ByCode(code)
	return models.MSeries{Code: code, Name: spec.Name, Obs: obs}
}

func obs(date time.Time, value float64) models.MObservation {
	return models.MObservation{Date: date, Value: value}
}

// -----------------------------------------------------------------------------

func TestAlignBuildsUnionGridWithForwardFill(t *testing.T) {
	dataset := models.MRawDataset{Series: map[string]models.MSeries{
		// Monthly anchor
		"CPIAUCSL": series("CPIAUCSL",
			obs(day(2025, time.January, 1), 310.0),
			obs(day(2025, time.February, 1), 311.0),
		),
		// Daily yield overlapping the monthly prints
		"DGS10": series("DGS10",
			obs(day(2025, time.January, 1), 4.5),
			obs(day(2025, time.January, 15), 4.6),
			obs(day(2025, time.February, 1), 4.7),
		),
	}}

	table, err := Align(dataset, catalog.Anchor())
	require.NoError(t, err)

	// Union of all observed dates
	require.Equal(t, []time.Time{
		day(2025, time.January, 1),
		day(2025, time.January, 15),
		day(2025, time.February, 1),
	}, table.Dates)

	// Monthly column carries its last print across the daily row
	cpi, ok := table.Column("CPI (Headline)")
	require.True(t, ok)
	assert.Equal(t, []float64{310.0, 310.0, 311.0}, cpi)

	yield, ok := table.Column("US 10Y Yield")
	require.True(t, ok)
	assert.Equal(t, []float64{4.5, 4.6, 4.7}, yield)
}

// -----------------------------------------------------------------------------

func TestAlignDropsRowsBeforeAnchor(t *testing.T) {
	dataset := models.MRawDataset{Series: map[string]models.MSeries{
		"CPIAUCSL": series("CPIAUCSL",
			obs(day(2025, time.February, 1), 311.0),
		),
		"DGS10": series("DGS10",
			obs(day(2025, time.January, 2), 4.5),
			obs(day(2025, time.February, 1), 4.7),
		),
	}}

	table, err := Align(dataset, catalog.Anchor())
	require.NoError(t, err)

	// The January row predates the anchor's first print and is dropped.
	require.Equal(t, []time.Time{day(2025, time.February, 1)}, table.Dates)

	yield, _ := table.Column("US 10Y Yield")
	assert.Equal(t, []float64{4.7}, yield)
}

// -----------------------------------------------------------------------------

func TestAlignFailsWithoutAnchor(t *testing.T) {
	dataset := models.MRawDataset{Series: map[string]models.MSeries{
		"DGS10": series("DGS10", obs(day(2025, time.January, 2), 4.5)),
	}}

	_, err := Align(dataset, catalog.Anchor())
	require.Error(t, err)

	var anchorErr *helpers.AnchorError
	assert.ErrorAs(t, err, &anchorErr)
}

// -----------------------------------------------------------------------------

func TestAlignLeavesLeadingGapsMissing(t *testing.T) {
	dataset := models.MRawDataset{Series: map[string]models.MSeries{
		"CPIAUCSL": series("CPIAUCSL",
			obs(day(2025, time.January, 1), 310.0),
			obs(day(2025, time.February, 1), 311.0),
		),
		// Starts reporting after the anchor
		"DGS10": series("DGS10", obs(day(2025, time.February, 1), 4.7)),
	}}

	table, err := Align(dataset, catalog.Anchor())
	require.NoError(t, err)

	yield, _ := table.Column("US 10Y Yield")
	require.Len(t, yield, 2)
	assert.True(t, math.IsNaN(yield[0]), "nothing to fill forward from")
	assert.Equal(t, 4.7, yield[1])
}
