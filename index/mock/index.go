// Package mock provides a test double for index.VectorIndex.
package mock

import (
	"context"
	"sync"

	"github.com/loamlabs/loam/core"
	"github.com/loamlabs/loam/index"
)

// MockIndex records collections and upserted points for test assertions.
// It allows custom behavior injection via function fields.
type MockIndex struct {
	// UpsertFunc is called by Upsert if set.
	UpsertFunc func(ctx context.Context, name string, points []core.VectorPoint) error

	// EnsureCollectionFunc is called by EnsureCollection if set.
	EnsureCollectionFunc func(ctx context.Context, name string, dims int) error

	mu          sync.Mutex
	collections map[string]int
	points      map[string]core.VectorPoint
	upsertCalls int
}

var _ index.VectorIndex = (*MockIndex)(nil)

// NewMockIndex creates an empty mock index.
func NewMockIndex() *MockIndex {
	return &MockIndex{
		collections: make(map[string]int),
		points:      make(map[string]core.VectorPoint),
	}
}

// EnsureCollection records the collection and its dimensionality.
func (m *MockIndex) EnsureCollection(ctx context.Context, name string, dims int) error {
	if m.EnsureCollectionFunc != nil {
		return m.EnsureCollectionFunc(ctx, name, dims)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[name] = dims
	return nil
}

// Upsert stores points keyed by point ID, replacing existing entries.
func (m *MockIndex) Upsert(ctx context.Context, name string, points []core.VectorPoint) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, name, points)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertCalls++
	for _, p := range points {
		m.points[p.ID] = p
	}
	return nil
}

// Close is a no-op.
func (m *MockIndex) Close() error {
	return nil
}

// PointCount returns the number of distinct point IDs stored.
func (m *MockIndex) PointCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.points)
}

// UpsertCalls returns how many Upsert batches were received.
func (m *MockIndex) UpsertCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.upsertCalls
}

// Point returns the stored point for an ID, if present.
func (m *MockIndex) Point(id string) (core.VectorPoint, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.points[id]
	return p, ok
}

// Dims returns the recorded dimensionality for a collection.
func (m *MockIndex) Dims(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.collections[name]
}
