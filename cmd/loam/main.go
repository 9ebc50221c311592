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

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/loamlabs/loam/ai"
	"github.com/loamlabs/loam/ai/openai"
	"github.com/loamlabs/loam/core"
	"github.com/loamlabs/loam/crawl"
	"github.com/loamlabs/loam/index"
	"github.com/loamlabs/loam/index/qdrant"
	"github.com/loamlabs/loam/ingest"
	"github.com/loamlabs/loam/server"
	"github.com/loamlabs/loam/storage"
	"github.com/loamlabs/loam/storage/badger"
)

func main() {
	app := &cli.App{
		Name:   "loam",
		Usage:  "Bulk-load documents and websites into a searchable knowledge store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest all supported documents under a directory",
				ArgsUsage: "<dir>",
				Action:    ingestCommand,
				Flags: append(pipelineFlags(),
					&cli.StringSliceFlag{
						Name:  "type",
						Usage: "Restrict to the given file types (e.g. pdf, docx); repeatable",
					},
				),
			},
			{
				Name:      "add",
				Usage:     "Ingest a single document",
				ArgsUsage: "<file>",
				Action:    addCommand,
				Flags:     pipelineFlags(),
			},
			{
				Name:      "crawl",
				Usage:     "Crawl a website and ingest its pages",
				ArgsUsage: "<seed-url>",
				Action:    crawlCommand,
				Flags: append(pipelineFlags(),
					&cli.IntFlag{
						Name:  "max-pages",
						Usage: "Hard cap on pages visited",
						Value: crawl.DefaultMaxPages,
					},
					&cli.DurationFlag{
						Name:  "crawl-delay",
						Usage: "Politeness delay between page fetches",
						Value: crawl.DefaultDelay,
					},
				),
			},
			{
				Name:   "resume",
				Usage:  "Retry unfinished and errored entries within an explicit scope",
				Action: resumeCommand,
				Flags: append(pipelineFlags(),
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Resume file entries under this directory",
					},
					&cli.StringFlag{
						Name:  "seed",
						Usage: "Resume page entries on this seed URL's host",
					},
				),
			},
			{
				Name:   "stats",
				Usage:  "Show manifest statistics",
				Action: statsCommand,
				Flags:  storageFlags(),
			},
			{
				Name:   "clear",
				Usage:  "Wipe the manifest (irreversible)",
				Action: clearCommand,
				Flags: append(storageFlags(),
					&cli.BoolFlag{
						Name:  "yes",
						Usage: "Skip the confirmation prompt",
					},
				),
			},
			{
				Name:   "serve",
				Usage:  "Run the HTTP control server",
				Action: serveCommand,
				Flags: append(pipelineFlags(),
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address",
						Value: ":8092",
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// storageFlags are the flags every command touching the manifest needs.
func storageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB manifest directory",
			Required: true,
		},
	}
}

// pipelineFlags are the flags shared by every command that runs the full
// ingestion pipeline.
func pipelineFlags() []cli.Flag {
	return append(storageFlags(),
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:     "embedding-model",
			Usage:    "Embedding model name",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "embedding-token",
			Usage: "Embedding service API token",
			Value: "none",
		},
		&cli.StringFlag{
			Name:  "qdrant-host",
			Usage: "Qdrant server host",
			Value: "localhost",
		},
		&cli.IntFlag{
			Name:  "qdrant-port",
			Usage: "Qdrant gRPC port",
			Value: 6334,
		},
		&cli.StringFlag{
			Name:  "collection",
			Usage: "Vector collection name",
			Value: "loam",
		},
		&cli.IntFlag{
			Name:  "concurrency",
			Usage: "Concurrent items in flight",
			Value: 6,
		},
		&cli.IntFlag{
			Name:  "chunk-size",
			Usage: "Chunk window size in characters",
			Value: 500,
		},
		&cli.IntFlag{
			Name:  "chunk-overlap",
			Usage: "Chunk window overlap in characters",
			Value: 200,
		},
		&cli.IntFlag{
			Name:  "embed-batch-size",
			Usage: "Chunk texts per embedding call",
			Value: 128,
		},
		&cli.IntFlag{
			Name:  "upsert-batch-size",
			Usage: "Points per vector upsert",
			Value: 256,
		},
		&cli.IntFlag{
			Name:  "max-retries",
			Usage: "Retry attempts for embedding and upsert calls",
			Value: 5,
		},
		&cli.DurationFlag{
			Name:  "retry-delay",
			Usage: "Base delay for exponential backoff",
			Value: 500 * time.Millisecond,
		},
	)
}

// services holds everything a pipeline command needs, with one Close.
type services struct {
	manifest storage.ManifestRepository
	embedder ai.Embedder
	index    index.VectorIndex
	pipeline *ingest.Pipeline
}

func (s *services) Close() {
	if s.pipeline != nil {
		s.pipeline.Close()
	}
	if s.index != nil {
		s.index.Close()
	}
	if s.manifest != nil {
		s.manifest.Close()
	}
}

func openManifest(c *cli.Context) (storage.ManifestRepository, error) {
	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	repo, err := badger.NewManifestRepository(backend)
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("failed to create manifest repository: %w", err)
	}
	return repo, nil
}

func buildServices(c *cli.Context) (*services, error) {
	manifest, err := openManifest(c)
	if err != nil {
		return nil, err
	}

	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithModel(c.String("embedding-model")),
		ai.WithToken(c.String("embedding-token")),
	)
	if err := aiConfig.Validate(); err != nil {
		manifest.Close()
		return nil, fmt.Errorf("invalid embedding configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		manifest.Close()
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	vectorIndex, err := qdrant.New(c.String("qdrant-host"), c.Int("qdrant-port"))
	if err != nil {
		manifest.Close()
		return nil, fmt.Errorf("failed to connect to vector index: %w", err)
	}

	cfg := &ingest.Config{
		Concurrency:     c.Int("concurrency"),
		EmbedBatchSize:  c.Int("embed-batch-size"),
		UpsertBatchSize: c.Int("upsert-batch-size"),
		ChunkSize:       c.Int("chunk-size"),
		ChunkOverlap:    c.Int("chunk-overlap"),
		Collection:      c.String("collection"),
		MaxRetries:      c.Int("max-retries"),
		RetryBaseDelay:  c.Duration("retry-delay"),
		RetryMaxDelay:   30 * time.Second,
	}

	pipeline, err := ingest.NewPipeline(manifest, embedder, vectorIndex, ingest.WithConfig(cfg))
	if err != nil {
		vectorIndex.Close()
		manifest.Close()
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}

	return &services{
		manifest: manifest,
		embedder: embedder,
		index:    vectorIndex,
		pipeline: pipeline,
	}, nil
}

// signalContext cancels on SIGINT/SIGTERM so an interrupted run leaves the
// manifest in a resumable state.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func ingestCommand(c *cli.Context) error {
	dir := c.Args().First()
	if dir == "" {
		return fmt.Errorf("directory argument is required")
	}

	svc, err := buildServices(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	items, err := ingest.EnumerateDir(dir, svc.pipeline.Extractors(), c.StringSlice("type")...)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Found %d documents under %s\n", len(items), dir)

	ctx, cancel := signalContext()
	defer cancel()

	return runAndReport(ctx, svc.pipeline, items)
}

func addCommand(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("file argument is required")
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}

	svc, err := buildServices(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := signalContext()
	defer cancel()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	return runAndReport(ctx, svc.pipeline, []ingest.Item{ingest.NewFileItem(abs)})
}

func crawlCommand(c *cli.Context) error {
	seed := c.Args().First()
	if seed == "" {
		return fmt.Errorf("seed URL argument is required")
	}

	svc, err := buildServices(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	crawler, err := crawl.NewCrawler(
		crawl.WithMaxPages(c.Int("max-pages")),
		crawl.WithDelay(c.Duration("crawl-delay")),
	)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Fprintf(os.Stderr, "Crawling %s (up to %d pages)\n", seed, c.Int("max-pages"))
	pages, err := crawler.Crawl(ctx, seed)
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Crawled %d pages\n", len(pages))

	items := make([]ingest.Item, len(pages))
	for i, page := range pages {
		items[i] = ingest.NewPageItem(page.URL, page.Title, page.Text)
	}

	return runAndReport(ctx, svc.pipeline, items)
}

func resumeCommand(c *cli.Context) error {
	scope := ingest.Scope{Dir: c.String("dir"), Seed: c.String("seed")}
	if scope.Empty() {
		return fmt.Errorf("resume requires --dir or --seed")
	}

	svc, err := buildServices(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := signalContext()
	defer cancel()

	var fetch ingest.PageFetchFunc
	if scope.Seed != "" {
		crawler, err := crawl.NewCrawler()
		if err != nil {
			return err
		}
		fetch = func(ctx context.Context, pageURL string) (ingest.Item, error) {
			page, err := crawler.FetchPage(ctx, pageURL)
			if err != nil {
				return nil, err
			}
			return ingest.NewPageItem(page.URL, page.Title, page.Text), nil
		}
	}

	items, err := svc.pipeline.PendingItems(ctx, scope, fetch)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Resuming %d pending entries\n", len(items))

	return runAndReport(ctx, svc.pipeline, items)
}

// runAndReport runs the items synchronously, printing progress events as
// they arrive and a final summary.
func runAndReport(ctx context.Context, pipeline *ingest.Pipeline, items []ingest.Item) error {
	operationID := uuid.NewString()

	events, cancelSub := pipeline.Broadcaster().Subscribe(operationID)
	defer cancelSub()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for event := range events {
			op := event.Operation
			if event.Kind == ingest.EventProgress && op.Status == core.OperationProcessing {
				fmt.Fprintf(os.Stderr, "\r%d/%d done, %d skipped, %d errors",
					op.Completed, op.Total, op.Skipped, op.Errors)
			}
		}
	}()

	op, err := pipeline.Run(ctx, operationID, items)
	cancelSub()
	<-done
	fmt.Fprintln(os.Stderr)

	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Operation %s: %d completed, %d skipped, %d errors, %d chunks\n",
		op.ID, op.Completed, op.Skipped, op.Errors, op.ChunksTotal)
	if op.Errors > 0 {
		fmt.Fprintln(os.Stderr, "Errored entries remain in the manifest; rerun with `loam resume` to retry them.")
	}
	return nil
}

func statsCommand(c *cli.Context) error {
	manifest, err := openManifest(c)
	if err != nil {
		return err
	}
	defer manifest.Close()

	stats, err := manifest.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("reading stats: %w", err)
	}

	fmt.Printf("Total:     %d\n", stats.Total)
	fmt.Printf("Completed: %d\n", stats.Completed)
	fmt.Printf("Errors:    %d\n", stats.Errors)
	fmt.Printf("Pending:   %d\n", stats.Pending)
	fmt.Printf("Chunks:    %d\n", stats.ChunksTotal)
	return nil
}

func clearCommand(c *cli.Context) error {
	if !c.Bool("yes") {
		fmt.Fprint(os.Stderr, "This wipes every manifest entry and cannot be undone. Continue? [y/N] ")
		var answer string
		fmt.Fscanln(os.Stdin, &answer)
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Fprintln(os.Stderr, "Aborted.")
			return nil
		}
	}

	manifest, err := openManifest(c)
	if err != nil {
		return err
	}
	defer manifest.Close()

	if err := manifest.Clear(context.Background()); err != nil {
		return fmt.Errorf("clearing manifest: %w", err)
	}
	fmt.Fprintln(os.Stderr, "Manifest cleared.")
	return nil
}

func serveCommand(c *cli.Context) error {
	svc, err := buildServices(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	srv, err := server.New(svc.pipeline, svc.manifest)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	return srv.ListenAndServe(ctx, c.String("addr"))
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
