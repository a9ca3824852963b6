package models

import (
	"encoding/json"
	"math"
	"time"
)

// -----------------------------------------------------------------------------

// MProjectionPoint is one simulated future step: the compounded level and
// the implied YoY rate against the realized base period a year earlier.
// Defined is false when the base history does not reach that step.
type MProjectionPoint struct {
	Date    time.Time `json:"date"`
	Level   float64   `json:"level"`
	YoY     float64   `json:"yoy"`
	Defined bool      `json:"defined"`
}

// MarshalJSON emits null for the YoY of an undefined step so chart
// consumers get a gap instead of a bogus number.
func (p MProjectionPoint) MarshalJSON() ([]byte, error) {
	var yoy *float64
	if p.Defined && !math.IsNaN(p.YoY) {
		v := p.YoY
		yoy = &v
	}
	return json.Marshal(struct {
		Date    string   `json:"date"`
		Level   float64  `json:"level"`
		YoY     *float64 `json:"yoy"`
		Defined bool     `json:"defined"`
	}{
		Date:    p.Date.Format("2006-01-02"),
		Level:   p.Level,
		YoY:     yoy,
		Defined: p.Defined,
	})
}
