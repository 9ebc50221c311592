// Copyright 2025 Loam Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/loamlabs/loam/ai"
	"github.com/loamlabs/loam/chunk"
	"github.com/loamlabs/loam/core"
	"github.com/loamlabs/loam/extract"
	"github.com/loamlabs/loam/index"
	"github.com/loamlabs/loam/storage"
)

// fatalError marks a run-level failure. Manifest store errors are wrapped
// in it so workers can tell "this item failed" from "the run must stop".
type fatalError struct {
	err error
}

func (e *fatalError) Error() string { return e.err.Error() }
func (e *fatalError) Unwrap() error { return e.err }

func fatalf(format string, args ...any) error {
	return &fatalError{err: fmt.Errorf(format, args...)}
}

// Pipeline drives bulk ingestion: for each item it checksums, consults the
// manifest, extracts, chunks, embeds and upserts, recording the outcome
// durably. Items are processed concurrently on a bounded worker pool.
type Pipeline struct {
	manifest    storage.ManifestRepository
	embedder    ai.Embedder
	index       index.VectorIndex
	extractors  *extract.Registry
	cfg         *Config
	broadcaster *Broadcaster
	operations  *OperationRegistry
	pool        *ants.Pool
	logger      *slog.Logger
}

// Option configures a Pipeline during construction.
type Option func(*Pipeline) error

// WithConfig overrides the default pipeline configuration.
func WithConfig(cfg *Config) Option {
	return func(p *Pipeline) error {
		if cfg == nil {
			return fmt.Errorf("config cannot be nil")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		p.cfg = cfg
		return nil
	}
}

// WithExtractors overrides the default extractor registry.
func WithExtractors(r *extract.Registry) Option {
	return func(p *Pipeline) error {
		if r == nil {
			return fmt.Errorf("extractor registry cannot be nil")
		}
		p.extractors = r
		return nil
	}
}

// WithBroadcaster sets the progress broadcaster shared with subscribers.
func WithBroadcaster(b *Broadcaster) Option {
	return func(p *Pipeline) error {
		if b == nil {
			return fmt.Errorf("broadcaster cannot be nil")
		}
		p.broadcaster = b
		return nil
	}
}

// WithOperations sets the operation registry shared with the control surface.
func WithOperations(r *OperationRegistry) Option {
	return func(p *Pipeline) error {
		if r == nil {
			return fmt.Errorf("operation registry cannot be nil")
		}
		p.operations = r
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a pipeline over the given manifest, embedder and
// vector index. The caller owns those dependencies and closes them after
// the pipeline is closed.
func NewPipeline(manifest storage.ManifestRepository, embedder ai.Embedder, vectorIndex index.VectorIndex, opts ...Option) (*Pipeline, error) {
	if manifest == nil {
		return nil, ErrManifestRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if vectorIndex == nil {
		return nil, ErrIndexRequired
	}

	p := &Pipeline{
		manifest:    manifest,
		embedder:    embedder,
		index:       vectorIndex,
		extractors:  extract.DefaultRegistry(),
		cfg:         DefaultConfig(),
		broadcaster: NewBroadcaster(),
		operations:  NewOperationRegistry(),
		logger:      slog.Default().With("component", "pipeline"),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	pool, err := ants.NewPool(p.cfg.Concurrency)
	if err != nil {
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}
	p.pool = pool

	return p, nil
}

// Broadcaster returns the progress broadcaster for subscribing to events.
func (p *Pipeline) Broadcaster() *Broadcaster { return p.broadcaster }

// Operations returns the operation registry.
func (p *Pipeline) Operations() *OperationRegistry { return p.operations }

// Config returns the active configuration.
func (p *Pipeline) Config() *Config { return p.cfg }

// Extractors returns the extractor registry the pipeline dispatches to.
func (p *Pipeline) Extractors() *extract.Registry { return p.extractors }

// Close releases the worker pool. In-flight runs finish their current items.
func (p *Pipeline) Close() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// Run processes the items synchronously under the given operation ID and
// returns the final operation summary. The returned error is non-nil only
// for run-level failures; individual item errors are recorded in the
// manifest and counted in the summary.
func (p *Pipeline) Run(ctx context.Context, operationID string, items []Item) (core.Operation, error) {
	ctx, cancel := context.WithCancel(ctx)
	if err := p.operations.Register(operationID, cancel); err != nil {
		cancel()
		return core.Operation{}, err
	}
	defer cancel()

	return p.run(ctx, operationID, items)
}

// Start launches a detached run under the given operation ID and returns
// once the operation is registered. The run outlives the caller's context;
// progress is observable through the broadcaster and the registry.
func (p *Pipeline) Start(ctx context.Context, operationID string, items []Item) error {
	return p.StartWith(ctx, operationID, func(context.Context) ([]Item, error) {
		return items, nil
	})
}

// StartWith launches a detached run whose items are produced by discover
// after the operation is registered. Slow discovery (a large directory
// walk, a site crawl) then happens inside the background run instead of
// blocking the caller.
func (p *Pipeline) StartWith(ctx context.Context, operationID string, discover func(context.Context) ([]Item, error)) error {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	if err := p.operations.Register(operationID, cancel); err != nil {
		cancel()
		return err
	}

	go func() {
		defer cancel()

		items, err := discover(runCtx)
		if err != nil {
			p.logger.Error("discovery failed", "operation", operationID, "error", err)
			p.publish(EventDone, core.Operation{
				ID:     operationID,
				Status: core.OperationFailed,
				Error:  err.Error(),
			})
			return
		}

		if _, err := p.run(runCtx, operationID, items); err != nil {
			p.logger.Error("background run failed", "operation", operationID, "error", err)
		}
	}()

	return nil
}

// run executes an already-registered operation.
func (p *Pipeline) run(ctx context.Context, operationID string, items []Item) (core.Operation, error) {
	logger := p.logger.With("operation", operationID)
	started := time.Now()

	op := core.Operation{
		ID:     operationID,
		Status: core.OperationStarting,
		Total:  len(items),
	}
	p.publish(EventProgress, op)

	if err := p.ensureCollection(ctx); err != nil {
		op.Status = core.OperationFailed
		op.Error = err.Error()
		p.publish(EventDone, op)
		return op, err
	}

	op.Status = core.OperationProcessing
	p.publish(EventProgress, op)

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		fatalErr error
	)

	for _, item := range items {
		item := item
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()

			if ctx.Err() != nil {
				return
			}

			chunks, skipped, err := p.processItem(ctx, item)

			mu.Lock()
			switch {
			case err != nil:
				var fe *fatalError
				if errors.As(err, &fe) {
					if fatalErr == nil {
						fatalErr = fe.err
					}
					mu.Unlock()
					// Stop handing out new work; in-flight items drain.
					p.operations.Cancel(operationID)
					return
				}
				op.Errors++
				logger.Warn("item failed", "key", item.Key(), "error", err)
			case skipped:
				op.Skipped++
			default:
				op.Completed++
				op.ChunksTotal += chunks
			}
			snapshot := op
			mu.Unlock()

			p.publish(EventProgress, snapshot)
		})
		if err != nil {
			wg.Done()
			mu.Lock()
			if fatalErr == nil {
				fatalErr = fmt.Errorf("submitting work: %w", err)
			}
			mu.Unlock()
			break
		}
	}

	wg.Wait()

	mu.Lock()
	if fatalErr == nil && ctx.Err() != nil {
		fatalErr = ctx.Err()
	}
	if fatalErr != nil {
		op.Status = core.OperationFailed
		op.Error = fatalErr.Error()
	} else {
		op.Status = core.OperationCompleted
	}
	final := op
	mu.Unlock()

	p.publish(EventDone, final)
	logger.Info("run finished",
		"status", final.Status,
		"total", final.Total,
		"completed", final.Completed,
		"skipped", final.Skipped,
		"errors", final.Errors,
		"chunks", final.ChunksTotal,
		"elapsed", time.Since(started).Round(time.Millisecond))

	return final, fatalErr
}

// publish updates the registry snapshot and notifies subscribers.
func (p *Pipeline) publish(kind EventKind, op core.Operation) {
	p.operations.Update(op)
	p.broadcaster.Publish(op.ID, Event{Kind: kind, Operation: op})
}

// ensureCollection probes the embedder for its dimensionality and creates
// the target collection if missing.
func (p *Pipeline) ensureCollection(ctx context.Context) error {
	var probe []float32
	err := RetryWithBackoff(ctx, func() error {
		var embErr error
		probe, embErr = p.embedder.EmbedText(ctx, "dimension probe")
		return embErr
	}, p.cfg.MaxRetries, p.cfg.RetryBaseDelay, p.cfg.RetryMaxDelay)
	if err != nil {
		return fmt.Errorf("probing embedding dimensions: %w", err)
	}
	if len(probe) == 0 {
		return fmt.Errorf("embedder returned an empty probe vector")
	}

	if err := p.index.EnsureCollection(ctx, p.cfg.Collection, len(probe)); err != nil {
		return fmt.Errorf("ensuring collection %q: %w", p.cfg.Collection, err)
	}
	return nil
}

// processItem runs one item through the full flow. Item-local failures are
// recorded in the manifest and returned as plain errors; manifest store
// failures come back wrapped in fatalError and stop the run.
func (p *Pipeline) processItem(ctx context.Context, item Item) (chunksCount int, skipped bool, err error) {
	key := item.Key()

	checksum, err := item.Checksum(ctx)
	if err != nil {
		return 0, false, p.markError(ctx, key, item.Title(), "", fmt.Errorf("checksum: %w", err))
	}

	existing, err := p.manifest.GetEntry(ctx, key)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return 0, false, fatalf("reading manifest entry %s: %w", key, err)
	}

	// Unchanged completed items skip every expensive stage. The checksum
	// comparison also catches content edited since the last run.
	if existing != nil && existing.Status == core.StatusCompleted && existing.Checksum == checksum {
		p.logger.Debug("skipping unchanged item", "key", key)
		return existing.ChunksCount, true, nil
	}

	// Errored entries with unchanged content are retried only by an
	// explicit resume, never silently by a repeat bulk run.
	if existing != nil && existing.Status == core.StatusError && existing.Checksum == checksum {
		return 0, false, fmt.Errorf("previously errored (%s), run resume to retry", existing.Error)
	}

	entry := &core.ManifestEntry{
		Key:      key,
		Checksum: checksum,
		Status:   core.StatusProcessing,
		Title:    item.Title(),
	}
	if existing != nil {
		entry.Metadata = existing.Metadata
	}
	if err := p.manifest.UpsertEntry(ctx, entry); err != nil {
		return 0, false, fatalf("marking %s processing: %w", key, err)
	}

	data, err := item.Content(ctx)
	if err != nil {
		return 0, false, p.markError(ctx, key, entry.Title, checksum, fmt.Errorf("reading content: %w", err))
	}

	result, err := p.extractors.Extract(ctx, data, item.TypeHint(), extract.Options{})
	if err != nil {
		return 0, false, p.markError(ctx, key, entry.Title, checksum, fmt.Errorf("extracting: %w", err))
	}
	title := entry.Title
	if title == "" {
		title = result.Title
	}

	chunks := chunk.SplitSource(key, result.Text, p.cfg.ChunkSize, p.cfg.ChunkOverlap)
	if len(chunks) == 0 {
		return 0, false, p.markError(ctx, key, title, checksum, extract.ErrEmptyDocument)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	embedBatcher := NewEmbedBatcher(p.embedder, p.cfg)
	vectors, err := embedBatcher.EmbedAll(ctx, texts)
	if err != nil {
		return 0, false, p.markError(ctx, key, title, checksum, err)
	}

	ingestedAt := time.Now().UTC()
	points := make([]core.VectorPoint, len(chunks))
	for i, c := range chunks {
		points[i] = core.VectorPoint{
			ID:     core.PointID(key, c.Index),
			Vector: vectors[i],
			Payload: core.PointPayload{
				SourceID:   key,
				ChunkIndex: c.Index,
				ChunkTotal: len(chunks),
				Text:       c.Text,
				Title:      title,
				IngestedAt: ingestedAt,
			},
		}
	}

	upsertBatcher := NewUpsertBatcher(p.index, p.cfg)
	if err := upsertBatcher.UpsertAll(ctx, points); err != nil {
		return 0, false, p.markError(ctx, key, title, checksum, err)
	}

	done := &core.ManifestEntry{
		Key:         key,
		Checksum:    checksum,
		Status:      core.StatusCompleted,
		ChunksCount: len(chunks),
		Title:       title,
		Metadata:    entry.Metadata,
	}
	if err := p.manifest.UpsertEntry(ctx, done); err != nil {
		return 0, false, fatalf("marking %s completed: %w", key, err)
	}

	return len(chunks), false, nil
}

// markError records an item failure in the manifest and returns the item
// error. A failing manifest write escalates to a fatal run error.
func (p *Pipeline) markError(ctx context.Context, key, title, checksum string, itemErr error) error {
	entry := &core.ManifestEntry{
		Key:      key,
		Checksum: checksum,
		Status:   core.StatusError,
		Error:    itemErr.Error(),
		Title:    title,
	}
	if err := p.manifest.UpsertEntry(ctx, entry); err != nil {
		return fatalf("recording error for %s: %w", key, err)
	}
	return itemErr
}
