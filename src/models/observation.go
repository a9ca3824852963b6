package models

import "time"

// -----------------------------------------------------------------------------

// MObservation is a single dated value of one economic series.
// A missing provider observation is never stored; gaps are visible as
// absent dates and are handled by the alignment engine.
type MObservation struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// -----------------------------------------------------------------------------

// MSeries is an ordered run of observations for one series code.
// Observations are sorted ascending by date.
type MSeries struct {
	Code string         `json:"code"`
	Name string         `json:"name"`
	Obs  []MObservation `json:"observations"`
}

// -----------------------------------------------------------------------------

// Latest returns the last observation, or false when the series is empty.
func (s MSeries) Latest() (MObservation, bool) {
	if len(s.Obs) == 0 {
		return MObservation{}, false
	}
	return s.Obs[len(s.Obs)-1], true
}

// -----------------------------------------------------------------------------

// IsEmpty reports whether the series carries no observations at all.
func (s MSeries) IsEmpty() bool {
	return len(s.Obs) == 0
}
