package ingest

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aimock "github.com/loamlabs/loam/ai/mock"
	"github.com/loamlabs/loam/core"
	indexmock "github.com/loamlabs/loam/index/mock"
)

func fastConfig() *Config {
	cfg := DefaultConfig()
	cfg.MaxRetries = 3
	cfg.RetryBaseDelay = time.Millisecond
	cfg.RetryMaxDelay = 5 * time.Millisecond
	return cfg
}

func TestEmbedAll_BatchesBySize(t *testing.T) {
	embedder := aimock.NewMockEmbedder()

	var batchSizes []int
	embedder.EmbedTextsFunc = func(_ context.Context, texts []string) ([][]float32, error) {
		batchSizes = append(batchSizes, len(texts))
		vectors := make([][]float32, len(texts))
		for i := range texts {
			vectors[i] = []float32{float32(i)}
		}
		return vectors, nil
	}

	cfg := fastConfig()
	cfg.EmbedBatchSize = 4

	texts := make([]string, 10)
	for i := range texts {
		texts[i] = "chunk"
	}

	vectors, err := NewEmbedBatcher(embedder, cfg).EmbedAll(context.Background(), texts)
	require.NoError(t, err)
	assert.Len(t, vectors, 10)
	assert.Equal(t, []int{4, 4, 2}, batchSizes, "ten texts at batch size four should yield 4+4+2")
}

func TestEmbedAll_RetriesTransientFailure(t *testing.T) {
	embedder := aimock.NewMockEmbedder()

	var calls atomic.Int32
	embedder.EmbedTextsFunc = func(_ context.Context, texts []string) ([][]float32, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("rate limited")
		}
		vectors := make([][]float32, len(texts))
		for i := range texts {
			vectors[i] = []float32{1}
		}
		return vectors, nil
	}

	vectors, err := NewEmbedBatcher(embedder, fastConfig()).EmbedAll(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vectors, 2)
	assert.Equal(t, int32(2), calls.Load(), "first attempt fails, second succeeds")
}

func TestEmbedAll_ExhaustedRetries(t *testing.T) {
	embedder := aimock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return nil, errors.New("service down")
	}

	_, err := NewEmbedBatcher(embedder, fastConfig()).EmbedAll(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmbeddingFailed)
}

func TestEmbedAll_CountMismatch(t *testing.T) {
	embedder := aimock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return [][]float32{{1}}, nil
	}

	_, err := NewEmbedBatcher(embedder, fastConfig()).EmbedAll(context.Background(), []string{"a", "b"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmbeddingFailed)
	assert.Contains(t, err.Error(), "count mismatch")
}

func TestEmbedAll_Empty(t *testing.T) {
	embedder := aimock.NewMockEmbedder()

	vectors, err := NewEmbedBatcher(embedder, fastConfig()).EmbedAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
	assert.Equal(t, 0, embedder.CallCount(), "no texts means no embedding calls")
}

func TestUpsertAll_BatchesBySize(t *testing.T) {
	idx := indexmock.NewMockIndex()

	cfg := fastConfig()
	cfg.UpsertBatchSize = 3

	points := make([]core.VectorPoint, 7)
	for i := range points {
		points[i] = core.VectorPoint{ID: core.PointID("doc", i), Vector: []float32{1}}
	}

	err := NewUpsertBatcher(idx, cfg).UpsertAll(context.Background(), points)
	require.NoError(t, err)
	assert.Equal(t, 3, idx.UpsertCalls(), "seven points at batch size three should yield 3+3+1")
	assert.Equal(t, 7, idx.PointCount())
}

func TestUpsertAll_ExhaustedRetries(t *testing.T) {
	idx := indexmock.NewMockIndex()

	var calls atomic.Int32
	idx.UpsertFunc = func(context.Context, string, []core.VectorPoint) error {
		calls.Add(1)
		return errors.New("connection refused")
	}

	cfg := fastConfig()
	err := NewUpsertBatcher(idx, cfg).UpsertAll(context.Background(),
		[]core.VectorPoint{{ID: core.PointID("doc", 0), Vector: []float32{1}}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpsertFailed)
	assert.Equal(t, int32(cfg.MaxRetries), calls.Load(), "should retry up to the budget")
}
