package interfaces

import (
	"context"
	"time"

	"macro-observer/src/models"
)

// -----------------------------------------------------------------------------
// ISeriesSource is the contract for fetching economic time series from an
// external provider.
// -----------------------------------------------------------------------------

type ISeriesSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// FetchSeries retrieves one series from its start date onward.
	// A provider failure is returned as an error; it never panics.
	FetchSeries(ctx context.Context, code string, start time.Time) (models.MSeries, error)

	// -----------------------------------------------------------------------------

	// FetchBatch retrieves many series with bounded concurrency. One result
	// per requested code, success or failure; the batch itself never fails
	// because a single code did.
	FetchBatch(ctx context.Context, codes []string, start time.Time) []models.MFetchResult
}
