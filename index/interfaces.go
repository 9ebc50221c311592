package index

import (
	"context"

	"github.com/loamlabs/loam/core"
)

// VectorIndex is an opaque external vector index.
// Implementations must be thread-safe for concurrent use.
type VectorIndex interface {
	// EnsureCollection creates the named collection with the given vector
	// dimensionality if it does not already exist.
	EnsureCollection(ctx context.Context, name string, dims int) error

	// Upsert inserts or replaces the given points in the named collection.
	// Point IDs are deterministic per (source, chunk index), so repeated
	// ingestion of unchanged content overwrites rather than duplicates.
	Upsert(ctx context.Context, name string, points []core.VectorPoint) error

	// Close releases the underlying connection.
	Close() error
}
