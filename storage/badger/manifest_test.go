package badger

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loamlabs/loam/core"
	"github.com/loamlabs/loam/storage"
)

func newTestRepo(t *testing.T) storage.ManifestRepository {
	t.Helper()
	repo, _, err := NewMemoryManifest()
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestUpsertEntry_GetEntry(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	entry := &core.ManifestEntry{
		Key:      "/docs/a.pdf",
		Checksum: "sum-a",
		Status:   core.StatusQueued,
	}
	require.NoError(t, repo.UpsertEntry(ctx, entry))
	assert.False(t, entry.UpdatedAt.IsZero(), "upsert must stamp UpdatedAt")

	got, err := repo.GetEntry(ctx, "/docs/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "sum-a", got.Checksum)
	assert.Equal(t, core.StatusQueued, got.Status)
}

func TestUpsertEntry_FullRowReplace(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertEntry(ctx, &core.ManifestEntry{
		Key:    "/docs/a.pdf",
		Status: core.StatusError,
		Error:  "embedding service unreachable",
	}))
	require.NoError(t, repo.UpsertEntry(ctx, &core.ManifestEntry{
		Key:         "/docs/a.pdf",
		Checksum:    "sum-a",
		Status:      core.StatusCompleted,
		ChunksCount: 4,
	}))

	got, err := repo.GetEntry(ctx, "/docs/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, core.StatusCompleted, got.Status)
	assert.Empty(t, got.Error, "replace must not carry over the old error")
	assert.Equal(t, 4, got.ChunksCount)
}

func TestUpsertEntry_Invalid(t *testing.T) {
	repo := newTestRepo(t)
	err := repo.UpsertEntry(context.Background(), &core.ManifestEntry{Status: core.StatusQueued})
	assert.ErrorIs(t, err, core.ErrEmptyKey)
}

func TestGetEntry_NotFound(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.GetEntry(context.Background(), "/missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListByStatus(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seed := map[string]core.Status{
		"/a": core.StatusQueued,
		"/b": core.StatusProcessing,
		"/c": core.StatusCompleted,
		"/d": core.StatusError,
		"/e": core.StatusQueued,
	}
	for key, status := range seed {
		require.NoError(t, repo.UpsertEntry(ctx, &core.ManifestEntry{Key: key, Status: status}))
	}

	pending, err := repo.ListByStatus(ctx, core.StatusQueued, core.StatusProcessing)
	require.NoError(t, err)
	assert.Len(t, pending, 3)

	errored, err := repo.ListByStatus(ctx, core.StatusError)
	require.NoError(t, err)
	require.Len(t, errored, 1)
	assert.Equal(t, "/d", errored[0].Key)
}

func TestStats(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertEntry(ctx, &core.ManifestEntry{Key: "/a", Status: core.StatusCompleted, ChunksCount: 3}))
	require.NoError(t, repo.UpsertEntry(ctx, &core.ManifestEntry{Key: "/b", Status: core.StatusCompleted, ChunksCount: 5}))
	require.NoError(t, repo.UpsertEntry(ctx, &core.ManifestEntry{Key: "/c", Status: core.StatusError}))
	require.NoError(t, repo.UpsertEntry(ctx, &core.ManifestEntry{Key: "/d", Status: core.StatusQueued}))

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Completed)
	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 8, stats.ChunksTotal)
}

func TestClear(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, repo.UpsertEntry(ctx, &core.ManifestEntry{
			Key:    fmt.Sprintf("/docs/%d.txt", i),
			Status: core.StatusCompleted,
		}))
	}

	require.NoError(t, repo.Clear(ctx))

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Total)
}

func TestConcurrentUpserts_DistinctKeys(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			entry := &core.ManifestEntry{
				Key:    fmt.Sprintf("/docs/%d.txt", n),
				Status: core.StatusCompleted,
			}
			assert.NoError(t, repo.UpsertEntry(ctx, entry))
		}(i)
	}
	wg.Wait()

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, stats.Total)
	assert.Equal(t, 50, stats.Completed)
}
