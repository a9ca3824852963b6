package engine

import (
	"math"
	"sort"
	"time"

	"macro-observer/src/catalog"
	"macro-observer/src/engine/core"
	"macro-observer/src/helpers"
	"macro-observer/src/models"
)

// -----------------------------------------------------------------------------

// Align joins every fetched series onto one shared date grid. The grid is
// the union of all observed dates; each column is forward-filled so slower
// series carry their last known value between publications. Rows before the
// anchor series first reports are dropped, since nothing can be compared
// against them.
func Align(dataset models.MRawDataset, anchor catalog.SeriesSpec) (*models.MMacroTable, error) {
	if !dataset.Has(anchor.Code) {
		return nil, helpers.NewAnchorError(anchor.Name, nil)
	}

	dates := unionDates(dataset)
	index := make(map[time.Time]int, len(dates))
	for i, d := range dates {
		index[d] = i
	}

	table := models.NewMacroTable(dates)

	// Registry order keeps column order stable across runs.
	for _, spec := range catalog.Registry {
		series, ok := dataset.Series[spec.Code]
		if !ok || series.IsEmpty() {
			continue
		}
		table.AddColumn(spec.Name, fillOnGrid(series, index, len(dates)))
	}

	trimToAnchor(table, anchor.Name)
	return table, nil
}

// -----------------------------------------------------------------------------

func unionDates(dataset models.MRawDataset) []time.Time {
	seen := make(map[time.Time]struct{})
	for _, series := range dataset.Series {
		for _, obs := range series.Obs {
			seen[obs.Date] = struct{}{}
		}
	}

	dates := make([]time.Time, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// -----------------------------------------------------------------------------

func fillOnGrid(series models.MSeries, index map[time.Time]int, size int) []float64 {
	column := make([]float64, size)
	for i := range column {
		column[i] = math.NaN()
	}
	for _, obs := range series.Obs {
		if i, ok := index[obs.Date]; ok {
			column[i] = obs.Value
		}
	}
	return core.ForwardFill(column)
}

// -----------------------------------------------------------------------------

// trimToAnchor drops leading rows where the anchor column is still NaN.
// After forward-fill a NaN can only be leading, so one cut suffices.
func trimToAnchor(table *models.MMacroTable, anchorName string) {
	anchorCol, ok := table.Column(anchorName)
	if !ok {
		return
	}
	first := 0
	for first < len(anchorCol) && math.IsNaN(anchorCol[first]) {
		first++
	}
	if first == 0 {
		return
	}

	table.Dates = table.Dates[first:]
	for name, col := range table.Columns {
		table.Columns[name] = col[first:]
	}
}
