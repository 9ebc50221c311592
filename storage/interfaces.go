package storage

import (
	"context"

	"github.com/loamlabs/loam/core"
)

// ManifestRepository provides durable per-item ingestion state.
// Implementations must be thread-safe and support concurrent access to
// different keys.
type ManifestRepository interface {
	// UpsertEntry stores an entry, replacing any existing entry with the
	// same key (full-row replace). Sets UpdatedAt. Idempotent.
	UpsertEntry(ctx context.Context, entry *core.ManifestEntry) error

	// GetEntry retrieves a single entry by item key.
	// Returns ErrNotFound if no entry exists.
	GetEntry(ctx context.Context, key string) (*core.ManifestEntry, error)

	// ListByStatus retrieves all entries whose status is one of the given
	// states, ordered by key.
	ListByStatus(ctx context.Context, statuses ...core.Status) ([]*core.ManifestEntry, error)

	// AllEntries retrieves every entry in the manifest, ordered by key.
	AllEntries(ctx context.Context) ([]*core.ManifestEntry, error)

	// Stats aggregates entry counts by status plus the total chunk count.
	Stats(ctx context.Context) (*core.ManifestStats, error)

	// Clear removes all entries. Irreversible.
	Clear(ctx context.Context) error

	// Close closes the storage backend and releases resources.
	Close() error
}
