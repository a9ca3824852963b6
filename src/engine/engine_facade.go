// Package engine turns raw fetched series into the published dashboard
// snapshot: align, normalize, derive, summarize.
package engine

import (
	"context"
	"sync"
	"time"

	"macro-observer/src/cache"
	"macro-observer/src/catalog"
	"macro-observer/src/logger"
	"macro-observer/src/models"
)

// -----------------------------------------------------------------------------

// Engine owns one render cycle end to end and keeps the last snapshot
// around for request-time consumers (simulator, ERP).
type Engine struct {
	Config *models.MConfig
	Cache  *cache.FetchCache
	Logger *logger.Logger

	mu          sync.RWMutex
	lastTable   *models.MMacroTable
	lastDataset models.MRawDataset
}

// -----------------------------------------------------------------------------

func NewEngine(cfg *models.MConfig, fetchCache *cache.FetchCache, log *logger.Logger) *Engine {
	return &Engine{
		Config: cfg,
		Cache:  fetchCache,
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

// Run executes one full cycle: fetch (through the cache), align onto the
// shared grid, normalize balances, derive metrics, build cards. Only a
// missing anchor series fails the cycle; individual series failures are
// reported in the snapshot and the rest of the table publishes.
func (e *Engine) Run(ctx context.Context, snapshotType string) (*models.MLatestData, error) {
	codes := catalog.Codes()

	fetchStart := time.Now()
	dataset, cacheHit, err := e.Cache.GetOrFetch(ctx, codes, e.Config.Data.LookbackYears)
	if err != nil {
		return nil, err
	}
	fetchElapsed := time.Since(fetchStart)

	deriveStart := time.Now()
	table, err := Align(dataset, catalog.Anchor())
	if err != nil {
		return nil, err
	}
	Normalize(table)
	Derive(table, dataset)
	cards := BuildCards(table)
	deriveElapsed := time.Since(deriveStart)

	e.mu.Lock()
	e.lastTable = table
	e.lastDataset = dataset
	e.mu.Unlock()

	e.Logger.Info("Cycle complete: %d/%d series, %d rows, fetch %.2fs derive %.3fs (cache hit: %v)",
		len(dataset.Series), len(codes), table.Rows(), fetchElapsed.Seconds(), deriveElapsed.Seconds(), cacheHit)

	return &models.MLatestData{
		Type:      snapshotType,
		Table:     table,
		Cards:     cards,
		Failures:  dataset.Failures,
		Timestamp: time.Now().UnixMilli(),
		PipelineMetrics: models.MPipelineMetrics{
			FetchTimeSeconds:  fetchElapsed.Seconds(),
			DeriveTimeSeconds: deriveElapsed.Seconds(),
			SeriesRequested:   len(codes),
			SeriesFetched:     len(dataset.Series),
			RowCount:          table.Rows(),
			CacheHit:          cacheHit,
		},
	}, nil
}

// -----------------------------------------------------------------------------

// Table returns the table from the last completed cycle, or nil before the
// first one.
func (e *Engine) Table() *models.MMacroTable {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastTable
}

// -----------------------------------------------------------------------------

// AnchorHistory returns the anchor series' native observations from the last
// cycle. The simulator projects from these, not from the aligned grid.
func (e *Engine) AnchorHistory() []models.MObservation {
	e.mu.RLock()
	defer e.mu.RUnlock()
	series, ok := e.lastDataset.Series[catalog.AnchorCode]
	if !ok {
		return nil
	}
	return series.Obs
}

// -----------------------------------------------------------------------------

// AnchorAsOf returns the date of the anchor's newest native observation,
// or false before the first cycle.
func (e *Engine) AnchorAsOf() (time.Time, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	obs, ok := e.lastDataset.Series[catalog.AnchorCode].Latest()
	return obs.Date, ok
}

// -----------------------------------------------------------------------------

// Flush clears the fetch cache so the next Run goes back upstream.
func (e *Engine) Flush() {
	e.Cache.Flush()
}
