package interfaces

import "macro-observer/src/models"

// -----------------------------------------------------------------------------
// ICacheStore is the backing store for the fetch cache. One snapshot per
// cache key; writes and reads are each one transaction so a reader never
// observes a half-refreshed dataset.
// -----------------------------------------------------------------------------

type ICacheStore interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the store schema.
	Initialize() error

	// -----------------------------------------------------------------------------

	// SaveSnapshot replaces the snapshot held under key.
	SaveSnapshot(key string, dataset models.MRawDataset) error

	// -----------------------------------------------------------------------------

	// LoadSnapshot returns the snapshot under key, or ok=false when absent.
	LoadSnapshot(key string) (models.MRawDataset, bool, error)

	// -----------------------------------------------------------------------------

	// DeleteSnapshot drops the snapshot under key.
	DeleteSnapshot(key string) error

	// -----------------------------------------------------------------------------

	// Close the store
	Close() error
}
