package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/loamlabs/loam/ai"
	"github.com/loamlabs/loam/core"
	"github.com/loamlabs/loam/index"
)

// EmbedBatcher generates embeddings for chunk texts in bounded batches.
type EmbedBatcher struct {
	embedder       ai.Embedder
	batchSize      int
	maxRetries     int
	retryBaseDelay time.Duration
	retryMaxDelay  time.Duration
}

// NewEmbedBatcher creates a new embedding batcher.
func NewEmbedBatcher(embedder ai.Embedder, cfg *Config) *EmbedBatcher {
	return &EmbedBatcher{
		embedder:       embedder,
		batchSize:      cfg.EmbedBatchSize,
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: cfg.RetryBaseDelay,
		retryMaxDelay:  cfg.RetryMaxDelay,
	}
}

// EmbedAll embeds every text, batch by batch, with retry per batch.
// On retry exhaustion the whole call fails and partial results are
// discarded: embedding is all-or-nothing per item so a resumed run never
// sees a half-embedded document.
func (b *EmbedBatcher) EmbedAll(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += b.batchSize {
		end := start + b.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		var batchVectors [][]float32
		err := RetryWithBackoff(ctx, func() error {
			var embErr error
			batchVectors, embErr = b.embedder.EmbedTexts(ctx, batch)
			return embErr
		}, b.maxRetries, b.retryBaseDelay, b.retryMaxDelay)
		if err != nil {
			return nil, fmt.Errorf("%w: after %d attempts: %w", ErrEmbeddingFailed, b.maxRetries, err)
		}

		if len(batchVectors) != len(batch) {
			return nil, fmt.Errorf("%w: count mismatch: expected %d, got %d",
				ErrEmbeddingFailed, len(batch), len(batchVectors))
		}

		vectors = append(vectors, batchVectors...)
	}

	return vectors, nil
}

// UpsertBatcher writes vector points to the external index in bounded
// batches.
type UpsertBatcher struct {
	index          index.VectorIndex
	collection     string
	batchSize      int
	maxRetries     int
	retryBaseDelay time.Duration
	retryMaxDelay  time.Duration
}

// NewUpsertBatcher creates a new upsert batcher.
func NewUpsertBatcher(vectorIndex index.VectorIndex, cfg *Config) *UpsertBatcher {
	return &UpsertBatcher{
		index:          vectorIndex,
		collection:     cfg.Collection,
		batchSize:      cfg.UpsertBatchSize,
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: cfg.RetryBaseDelay,
		retryMaxDelay:  cfg.RetryMaxDelay,
	}
}

// UpsertAll upserts every point, batch by batch, with retry per batch.
func (b *UpsertBatcher) UpsertAll(ctx context.Context, points []core.VectorPoint) error {
	for start := 0; start < len(points); start += b.batchSize {
		end := start + b.batchSize
		if end > len(points) {
			end = len(points)
		}
		batch := points[start:end]

		err := RetryWithBackoff(ctx, func() error {
			return b.index.Upsert(ctx, b.collection, batch)
		}, b.maxRetries, b.retryBaseDelay, b.retryMaxDelay)
		if err != nil {
			return fmt.Errorf("%w: after %d attempts: %w", ErrUpsertFailed, b.maxRetries, err)
		}
	}

	return nil
}
