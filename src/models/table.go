package models

import (
	"encoding/json"
	"math"
	"time"
)

// -----------------------------------------------------------------------------
// MMacroTable is the date-indexed analytical table: one row per calendar
// date, one float64 column per series or derived metric. Missing cells are
// NaN in memory and null on the wire.
// -----------------------------------------------------------------------------

type MMacroTable struct {
	Dates       []time.Time
	ColumnOrder []string
	Columns     map[string][]float64
}

// -----------------------------------------------------------------------------

func NewMacroTable(dates []time.Time) *MMacroTable {
	return &MMacroTable{
		Dates:   dates,
		Columns: make(map[string][]float64),
	}
}

// -----------------------------------------------------------------------------

// AddColumn attaches a column. The slice length must equal len(Dates);
// callers own that invariant.
func (t *MMacroTable) AddColumn(name string, values []float64) {
	if _, exists := t.Columns[name]; !exists {
		t.ColumnOrder = append(t.ColumnOrder, name)
	}
	t.Columns[name] = values
}

// -----------------------------------------------------------------------------

// HasColumn is the capability query presentation surfaces use before
// rendering a metric.
func (t *MMacroTable) HasColumn(name string) bool {
	_, ok := t.Columns[name]
	return ok
}

// -----------------------------------------------------------------------------

func (t *MMacroTable) Column(name string) ([]float64, bool) {
	col, ok := t.Columns[name]
	return col, ok
}

// -----------------------------------------------------------------------------

func (t *MMacroTable) Rows() int {
	return len(t.Dates)
}

// -----------------------------------------------------------------------------

// LatestValid returns the last defined value of a column and its row index.
func (t *MMacroTable) LatestValid(name string) (float64, int, bool) {
	col, ok := t.Columns[name]
	if !ok {
		return 0, -1, false
	}
	for i := len(col) - 1; i >= 0; i-- {
		if !math.IsNaN(col[i]) {
			return col[i], i, true
		}
	}
	return 0, -1, false
}

// -----------------------------------------------------------------------------

// ValidAt returns the last defined value of a column at row index <= idx.
func (t *MMacroTable) ValidAt(name string, idx int) (float64, bool) {
	col, ok := t.Columns[name]
	if !ok || idx < 0 {
		return 0, false
	}
	if idx >= len(col) {
		idx = len(col) - 1
	}
	for i := idx; i >= 0; i-- {
		if !math.IsNaN(col[i]) {
			return col[i], true
		}
	}
	return 0, false
}

// -----------------------------------------------------------------------------
// JSON shape consumed by the dashboard: ISO dates plus nullable columns.
// -----------------------------------------------------------------------------

type tableJSON struct {
	Dates   []string              `json:"dates"`
	Order   []string              `json:"column_order"`
	Columns map[string][]*float64 `json:"columns"`
}

func (t *MMacroTable) MarshalJSON() ([]byte, error) {
	out := tableJSON{
		Dates:   make([]string, len(t.Dates)),
		Order:   t.ColumnOrder,
		Columns: make(map[string][]*float64, len(t.Columns)),
	}
	for i, d := range t.Dates {
		out.Dates[i] = d.Format("2006-01-02")
	}
	for name, col := range t.Columns {
		cells := make([]*float64, len(col))
		for i := range col {
			if !math.IsNaN(col[i]) {
				v := col[i]
				cells[i] = &v
			}
		}
		out.Columns[name] = cells
	}
	return json.Marshal(out)
}
