package models

import "time"

// -----------------------------------------------------------------------------
// Per-series fetch outcomes. A failed code never aborts the batch; its
// failure is collected here and surfaced to the operator instead.
// -----------------------------------------------------------------------------

type MFetchResult struct {
	Code   string
	Name   string
	Series MSeries
	Err    error
}

// -----------------------------------------------------------------------------

func (r MFetchResult) Failed() bool {
	return r.Err != nil
}

// -----------------------------------------------------------------------------

// MSeriesFailure is the serializable record of one failed fetch, carried in
// the dataset so the presentation layer can flag the absent series.
type MSeriesFailure struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// -----------------------------------------------------------------------------

// MRawDataset is the merged pre-alignment result of one batch fetch: every
// successfully fetched series keyed by code, plus the failures of the rest.
// This is the unit the fetch cache memoizes.
type MRawDataset struct {
	Series    map[string]MSeries `json:"series"`
	Failures  []MSeriesFailure   `json:"failures"`
	FetchedAt time.Time          `json:"fetched_at"`
}

// -----------------------------------------------------------------------------

func (d MRawDataset) Has(code string) bool {
	s, ok := d.Series[code]
	return ok && !s.IsEmpty()
}
