package cache

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"macro-observer/src/helpers"
	"macro-observer/src/interfaces"
	"macro-observer/src/logger"
	"macro-observer/src/models"

	"golang.org/x/sync/singleflight"
)

// -----------------------------------------------------------------------------

// FetchCache fronts a series source with TTL-bounded snapshots. Concurrent
// callers asking for the same key share one upstream fetch.
type FetchCache struct {
	Config *models.MConfig
	Source interfaces.ISeriesSource
	Store  interfaces.ICacheStore
	Logger *logger.Logger

	// Now is the clock used for TTL checks. Tests substitute it.
	Now func() time.Time

	group singleflight.Group

	mu        sync.Mutex
	fetchedAt map[string]time.Time
}

// -----------------------------------------------------------------------------

func NewFetchCache(cfg *models.MConfig, source interfaces.ISeriesSource, store interfaces.ICacheStore, log *logger.Logger) *FetchCache {
	return &FetchCache{
		Config:    cfg,
		Source:    source,
		Store:     store,
		Logger:    log,
		Now:       time.Now,
		fetchedAt: make(map[string]time.Time),
	}
}

// -----------------------------------------------------------------------------

// CacheKey identifies a snapshot by its request, not its payload: the sorted
// code set plus the lookback window. Code order in the request is irrelevant.
func CacheKey(codes []string, lookbackYears int) string {
	sorted := make([]string, len(codes))
	copy(sorted, codes)
	sort.Strings(sorted)
	return fmt.Sprintf("%s|%dy", strings.Join(sorted, ","), lookbackYears)
}

// -----------------------------------------------------------------------------

// GetOrFetch returns the cached snapshot for (codes, lookbackYears) when it
// is younger than the configured TTL, otherwise fetches a fresh one and
// stores it. The returned flag reports a cache hit.
func (c *FetchCache) GetOrFetch(ctx context.Context, codes []string, lookbackYears int) (models.MRawDataset, bool, error) {
	key := CacheKey(codes, lookbackYears)
	ttl := time.Duration(c.Config.Cache.TTLSeconds) * time.Second

	if dataset, ok := c.loadFresh(key, ttl); ok {
		c.Logger.Debug("Cache hit for %d series (age %.0fs)", len(codes), c.Now().Sub(dataset.FetchedAt).Seconds())
		return dataset, true, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Re-check under the flight: a concurrent caller may have
		// refreshed the snapshot while this one queued.
		if dataset, ok := c.loadFresh(key, ttl); ok {
			return dataset, nil
		}
		return c.fetch(ctx, key, codes, lookbackYears)
	})
	if err != nil {
		return models.MRawDataset{}, false, err
	}

	return v.(models.MRawDataset), false, nil
}

// -----------------------------------------------------------------------------

func (c *FetchCache) loadFresh(key string, ttl time.Duration) (models.MRawDataset, bool) {
	c.mu.Lock()
	at, known := c.fetchedAt[key]
	c.mu.Unlock()

	if !known || c.Now().Sub(at) >= ttl {
		return models.MRawDataset{}, false
	}

	dataset, found, err := c.Store.LoadSnapshot(key)
	if err != nil {
		c.Logger.Warning("Failed to load cached snapshot: %v", err)
		return models.MRawDataset{}, false
	}
	if !found {
		return models.MRawDataset{}, false
	}
	// Store timestamps are second-truncated; the in-memory one drives TTL.
	dataset.FetchedAt = at
	return dataset, true
}

// -----------------------------------------------------------------------------

func (c *FetchCache) fetch(ctx context.Context, key string, codes []string, lookbackYears int) (models.MRawDataset, error) {
	now := c.Now()
	start := now.AddDate(-lookbackYears, 0, 0)

	c.Logger.Info("Fetching %d series from %s (lookback %dy)", len(codes), c.Source.Name(), lookbackYears)
	results := c.Source.FetchBatch(ctx, codes, start)

	dataset := models.MRawDataset{
		Series:    make(map[string]models.MSeries),
		FetchedAt: now,
	}
	for _, result := range results {
		if result.Failed() {
			c.Logger.Warning("Series %s unavailable: %v", result.Code, result.Err)
			dataset.Failures = append(dataset.Failures, models.MSeriesFailure{
				Code:   result.Code,
				Name:   result.Name,
				Reason: result.Err.Error(),
			})
			continue
		}
		dataset.Series[result.Code] = result.Series
	}

	if len(dataset.Series) == 0 {
		return models.MRawDataset{}, helpers.NewCacheError("all series failed to fetch", nil)
	}

	if err := c.Store.SaveSnapshot(key, dataset); err != nil {
		// A failed save costs the next caller a refetch, nothing more.
		c.Logger.Warning("Failed to persist snapshot: %v", err)
		return dataset, nil
	}

	c.mu.Lock()
	c.fetchedAt[key] = now
	c.mu.Unlock()

	return dataset, nil
}

// -----------------------------------------------------------------------------

// Flush discards every snapshot so the next GetOrFetch goes upstream.
func (c *FetchCache) Flush() {
	c.mu.Lock()
	keys := make([]string, 0, len(c.fetchedAt))
	for key := range c.fetchedAt {
		keys = append(keys, key)
	}
	c.fetchedAt = make(map[string]time.Time)
	c.mu.Unlock()

	for _, key := range keys {
		if err := c.Store.DeleteSnapshot(key); err != nil {
			c.Logger.Warning("Failed to delete snapshot: %v", err)
		}
	}
	c.Logger.Info("Cache flushed (%d snapshots)", len(keys))
}
