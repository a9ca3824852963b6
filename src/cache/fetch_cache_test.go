package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"macro-observer/src/logger"
	"macro-observer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// Fakes
// -----------------------------------------------------------------------------

type fakeSource struct {
	calls int
	fail  map[string]error
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) FetchSeries(ctx context.Context, code string, start time.Time) (models.MSeries, error) {
	if err, ok := f.fail[code]; ok {
		return models.MSeries{}, err
	}
	return models.MSeries{
		Code: code,
		Name: code,
		Obs:  []models.MObservation{{Date: start, Value: 1.0}},
	}, nil
}

func (f *fakeSource) FetchBatch(ctx context.Context, codes []string, start time.Time) []models.MFetchResult {
	f.calls++
	results := make([]models.MFetchResult, len(codes))
	for i, code := range codes {
		series, err := f.FetchSeries(ctx, code, start)
		results[i] = models.MFetchResult{Code: code, Name: code, Series: series, Err: err}
	}
	return results
}

// -----------------------------------------------------------------------------

type memStore struct {
	snapshots map[string]models.MRawDataset
}

func newMemStore() *memStore {
	return &memStore{snapshots: make(map[string]models.MRawDataset)}
}

func (m *memStore) Initialize() error { return nil }
func (m *memStore) Close() error      { return nil }

func (m *memStore) SaveSnapshot(key string, dataset models.MRawDataset) error {
	m.snapshots[key] = dataset
	return nil
}

func (m *memStore) LoadSnapshot(key string) (models.MRawDataset, bool, error) {
	dataset, ok := m.snapshots[key]
	return dataset, ok, nil
}

func (m *memStore) DeleteSnapshot(key string) error {
	delete(m.snapshots, key)
	return nil
}

// -----------------------------------------------------------------------------

func testConfig(ttlSeconds int) *models.MConfig {
	return &models.MConfig{
		Cache: models.MCacheConfig{TTLSeconds: ttlSeconds, DSN: ":memory:"},
	}
}

func newTestCache(source *fakeSource, now *time.Time) *FetchCache {
	c := NewFetchCache(testConfig(3600), source, newMemStore(), logger.NewLogger(nil, "test"))
	c.Now = func() time.Time { return *now }
	return c
}

// -----------------------------------------------------------------------------

func TestCacheKeyIgnoresCodeOrder(t *testing.T) {
	a := CacheKey([]string{"DGS10", "CPIAUCSL"}, 5)
	b := CacheKey([]string{"CPIAUCSL", "DGS10"}, 5)
	assert.Equal(t, a, b)

	c := CacheKey([]string{"CPIAUCSL", "DGS10"}, 10)
	assert.NotEqual(t, a, c, "lookback is part of the identity")
}

// -----------------------------------------------------------------------------

func TestGetOrFetchCachesWithinTTL(t *testing.T) {
	now := time.Date(2025, time.June, 4, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{}
	c := newTestCache(source, &now)

	codes := []string{"CPIAUCSL", "DGS10"}

	_, hit, err := c.GetOrFetch(context.Background(), codes, 5)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 1, source.calls)

	// Within TTL: served from the store, no upstream call
	now = now.Add(30 * time.Minute)
	dataset, hit, err := c.GetOrFetch(context.Background(), codes, 5)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, source.calls)
	assert.Len(t, dataset.Series, 2)
}

// -----------------------------------------------------------------------------

func TestGetOrFetchRefetchesAfterTTL(t *testing.T) {
	now := time.Date(2025, time.June, 4, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{}
	c := newTestCache(source, &now)

	codes := []string{"CPIAUCSL"}

	_, _, err := c.GetOrFetch(context.Background(), codes, 5)
	require.NoError(t, err)

	now = now.Add(3601 * time.Second)
	_, hit, err := c.GetOrFetch(context.Background(), codes, 5)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, source.calls)
}

// -----------------------------------------------------------------------------

func TestDifferentLookbacksAreSeparateSnapshots(t *testing.T) {
	now := time.Date(2025, time.June, 4, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{}
	c := newTestCache(source, &now)

	_, _, err := c.GetOrFetch(context.Background(), []string{"CPIAUCSL"}, 5)
	require.NoError(t, err)
	_, hit, err := c.GetOrFetch(context.Background(), []string{"CPIAUCSL"}, 10)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, source.calls)
}

// -----------------------------------------------------------------------------

func TestFlushForcesRefetch(t *testing.T) {
	now := time.Date(2025, time.June, 4, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{}
	c := newTestCache(source, &now)

	codes := []string{"CPIAUCSL"}
	_, _, err := c.GetOrFetch(context.Background(), codes, 5)
	require.NoError(t, err)

	c.Flush()

	_, hit, err := c.GetOrFetch(context.Background(), codes, 5)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, source.calls)
}

// -----------------------------------------------------------------------------

func TestPartialFailureIsRecordedNotFatal(t *testing.T) {
	now := time.Date(2025, time.June, 4, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{fail: map[string]error{"DGS10": errors.New("rate limited")}}
	c := newTestCache(source, &now)

	dataset, _, err := c.GetOrFetch(context.Background(), []string{"CPIAUCSL", "DGS10"}, 5)
	require.NoError(t, err)

	assert.Len(t, dataset.Series, 1)
	require.Len(t, dataset.Failures, 1)
	assert.Equal(t, "DGS10", dataset.Failures[0].Code)
	assert.Contains(t, dataset.Failures[0].Reason, "rate limited")
}

// -----------------------------------------------------------------------------

func TestAllSeriesFailedIsAnError(t *testing.T) {
	now := time.Date(2025, time.June, 4, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{fail: map[string]error{"CPIAUCSL": errors.New("down")}}
	c := newTestCache(source, &now)

	_, _, err := c.GetOrFetch(context.Background(), []string{"CPIAUCSL"}, 5)
	assert.Error(t, err)
}
