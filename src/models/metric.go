package models

import "time"

// -----------------------------------------------------------------------------

// MMetricCard is one summary card: the latest value of a metric, the value
// one reporting period earlier, and their delta. Daily metrics compare
// against one week back, monthly metrics against the prior month.
type MMetricCard struct {
	Name     string    `json:"name"`
	Latest   float64   `json:"latest"`
	Prior    float64   `json:"prior"`
	Delta    float64   `json:"delta"`
	Unit     string    `json:"unit"`
	AsOf     time.Time `json:"as_of"`
	HasPrior bool      `json:"has_prior"`
}

// -----------------------------------------------------------------------------

// MPipelineMetrics reports timings and counts of one render cycle.
type MPipelineMetrics struct {
	FetchTimeSeconds  float64 `json:"fetch_time_seconds"`
	DeriveTimeSeconds float64 `json:"derive_time_seconds"`
	SeriesRequested   int     `json:"series_requested"`
	SeriesFetched     int     `json:"series_fetched"`
	RowCount          int     `json:"row_count"`
	CacheHit          bool    `json:"cache_hit"`
}
