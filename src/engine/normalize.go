package engine

import (
	"macro-observer/src/catalog"
	"macro-observer/src/engine/core"
	"macro-observer/src/models"
)

// -----------------------------------------------------------------------------

// Normalize rescales balance-sheet columns to trillions of dollars in place,
// so series published in millions and billions become directly comparable
// and composable. Index and rate columns are left untouched.
func Normalize(table *models.MMacroTable) {
	for _, spec := range catalog.Registry {
		if !spec.Normalize {
			continue
		}
		col, ok := table.Column(spec.Name)
		if !ok {
			continue
		}
		divisor := spec.Unit.TrillionsDivisor()
		if divisor == 1 {
			continue
		}
		table.Columns[spec.Name] = core.Scale(col, divisor)
	}
}
