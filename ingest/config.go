package ingest

import (
	"fmt"
	"time"

	"github.com/loamlabs/loam/chunk"
	"github.com/loamlabs/loam/core"
)

// Config holds tuning parameters for the ingestion pipeline.
type Config struct {
	// Concurrency is the worker slot count. No more than this many items
	// are in flight at once, bounding memory and outbound request load.
	Concurrency int

	// EmbedBatchSize is the number of chunk texts per embedding call.
	EmbedBatchSize int

	// UpsertBatchSize is the number of points per vector index upsert.
	UpsertBatchSize int

	// ChunkSize is the sliding window size in characters.
	ChunkSize int

	// ChunkOverlap is the window overlap in characters. Must be < ChunkSize.
	ChunkOverlap int

	// Collection is the vector index collection name.
	Collection string

	// MaxRetries is the retry budget for embedding and upsert calls.
	MaxRetries int

	// RetryBaseDelay is the base delay for exponential backoff.
	RetryBaseDelay time.Duration

	// RetryMaxDelay caps the backoff delay.
	RetryMaxDelay time.Duration
}

// DefaultConfig returns a Config with the documented defaults.
func DefaultConfig() *Config {
	return &Config{
		Concurrency:     6,
		EmbedBatchSize:  128,
		UpsertBatchSize: 256,
		ChunkSize:       chunk.DefaultSize,
		ChunkOverlap:    chunk.DefaultOverlap,
		Collection:      "loam",
		MaxRetries:      5,
		RetryBaseDelay:  500 * time.Millisecond,
		RetryMaxDelay:   30 * time.Second,
	}
}

// Validate checks the configuration for usable values.
func (c *Config) Validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.EmbedBatchSize < 1 {
		return fmt.Errorf("embed batch size must be at least 1, got %d", c.EmbedBatchSize)
	}
	if c.UpsertBatchSize < 1 {
		return fmt.Errorf("upsert batch size must be at least 1, got %d", c.UpsertBatchSize)
	}
	if c.Collection == "" {
		return fmt.Errorf("collection name required")
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max retries must be at least 1, got %d", c.MaxRetries)
	}
	return core.ValidateChunking(c.ChunkSize, c.ChunkOverlap)
}
