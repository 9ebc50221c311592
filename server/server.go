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

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/loamlabs/loam/crawl"
	"github.com/loamlabs/loam/ingest"
	"github.com/loamlabs/loam/storage"
)

const defaultHeartbeat = 15 * time.Second

// Server is the HTTP control surface over a pipeline and its manifest.
type Server struct {
	pipeline  *ingest.Pipeline
	crawler   *crawl.Crawler
	manifest  storage.ManifestRepository
	logger    *slog.Logger
	heartbeat time.Duration
}

// Option configures a Server during construction.
type Option func(*Server) error

// WithCrawler sets the crawler used by crawl and seed-scoped resume runs.
func WithCrawler(c *crawl.Crawler) Option {
	return func(s *Server) error {
		if c == nil {
			return fmt.Errorf("crawler cannot be nil")
		}
		s.crawler = c
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		s.logger = logger
		return nil
	}
}

// WithHeartbeat overrides the SSE heartbeat interval.
func WithHeartbeat(d time.Duration) Option {
	return func(s *Server) error {
		if d <= 0 {
			return fmt.Errorf("heartbeat must be positive")
		}
		s.heartbeat = d
		return nil
	}
}

// New creates a server. A default crawler is constructed unless one is
// provided.
func New(pipeline *ingest.Pipeline, manifest storage.ManifestRepository, opts ...Option) (*Server, error) {
	if pipeline == nil {
		return nil, fmt.Errorf("pipeline required")
	}
	if manifest == nil {
		return nil, ingest.ErrManifestRequired
	}

	s := &Server{
		pipeline:  pipeline,
		manifest:  manifest,
		logger:    slog.Default().With("component", "server"),
		heartbeat: defaultHeartbeat,
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if s.crawler == nil {
		crawler, err := crawl.NewCrawler()
		if err != nil {
			return nil, err
		}
		s.crawler = crawler
	}

	return s, nil
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /ingest", s.handleIngest)
	mux.HandleFunc("POST /crawl", s.handleCrawl)
	mux.HandleFunc("POST /resume", s.handleResume)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("DELETE /manifest", s.handleClear)
	mux.HandleFunc("GET /operations", s.handleOperations)
	mux.HandleFunc("GET /operations/{id}", s.handleOperation)
	mux.HandleFunc("GET /operations/{id}/events", s.handleEvents)
	return mux
}

// ListenAndServe serves until the context is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type ingestRequest struct {
	OperationID string   `json:"operation_id"`
	Dir         string   `json:"dir"`
	Types       []string `json:"types,omitempty"`
}

type crawlRequest struct {
	OperationID string `json:"operation_id"`
	Seed        string `json:"seed"`
	MaxPages    int    `json:"max_pages,omitempty"`
}

type resumeRequest struct {
	OperationID string `json:"operation_id"`
	Dir         string `json:"dir,omitempty"`
	Seed        string `json:"seed,omitempty"`
}

type acceptedResponse struct {
	OperationID string `json:"operation_id"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}
	if req.Dir == "" {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("dir is required"))
		return
	}
	// Fail fast on a bad root; the walk itself runs in the background.
	if info, err := os.Stat(req.Dir); err != nil || !info.IsDir() {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %s", ingest.ErrRootNotFound, req.Dir))
		return
	}

	id := s.operationID(req.OperationID)
	err := s.pipeline.StartWith(r.Context(), id, func(ctx context.Context) ([]ingest.Item, error) {
		return ingest.EnumerateDir(req.Dir, s.pipeline.Extractors(), req.Types...)
	})
	if err != nil {
		s.writeStartError(w, err)
		return
	}

	s.logger.Info("ingest accepted", "operation", id, "dir", req.Dir)
	s.writeJSON(w, http.StatusAccepted, acceptedResponse{OperationID: id})
}

func (s *Server) handleCrawl(w http.ResponseWriter, r *http.Request) {
	var req crawlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}
	if u, err := url.Parse(req.Seed); err != nil || u.Hostname() == "" {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %q", crawl.ErrInvalidSeed, req.Seed))
		return
	}

	crawler := s.crawler
	if req.MaxPages > 0 {
		// Keep the configured client, user agent and delay; only the cap
		// changes for this request.
		c, err := s.crawler.Limit(req.MaxPages)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		crawler = c
	}

	id := s.operationID(req.OperationID)
	err := s.pipeline.StartWith(r.Context(), id, func(ctx context.Context) ([]ingest.Item, error) {
		pages, err := crawler.Crawl(ctx, req.Seed)
		if err != nil {
			return nil, err
		}
		items := make([]ingest.Item, len(pages))
		for i, page := range pages {
			items[i] = ingest.NewPageItem(page.URL, page.Title, page.Text)
		}
		return items, nil
	})
	if err != nil {
		s.writeStartError(w, err)
		return
	}

	s.logger.Info("crawl accepted", "operation", id, "seed", req.Seed)
	s.writeJSON(w, http.StatusAccepted, acceptedResponse{OperationID: id})
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	var req resumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}

	scope := ingest.Scope{Dir: req.Dir, Seed: req.Seed}
	if scope.Empty() {
		s.writeError(w, http.StatusBadRequest, ingest.ErrNoScope)
		return
	}

	var fetch ingest.PageFetchFunc
	if req.Seed != "" {
		fetch = func(ctx context.Context, pageURL string) (ingest.Item, error) {
			page, err := s.crawler.FetchPage(ctx, pageURL)
			if err != nil {
				return nil, err
			}
			return ingest.NewPageItem(page.URL, page.Title, page.Text), nil
		}
	}

	id := s.operationID(req.OperationID)
	err := s.pipeline.StartWith(r.Context(), id, func(ctx context.Context) ([]ingest.Item, error) {
		return s.pipeline.PendingItems(ctx, scope, fetch)
	})
	if err != nil {
		s.writeStartError(w, err)
		return
	}

	s.logger.Info("resume accepted", "operation", id, "dir", req.Dir, "seed", req.Seed)
	s.writeJSON(w, http.StatusAccepted, acceptedResponse{OperationID: id})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.manifest.Stats(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := s.manifest.Clear(r.Context()); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.logger.Warn("manifest cleared")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleOperations(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.pipeline.Operations().List())
}

func (s *Server) handleOperation(w http.ResponseWriter, r *http.Request) {
	op, err := s.pipeline.Operations().Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	s.writeJSON(w, http.StatusOK, op)
}

// operationID returns the client-chosen ID or generates one.
func (s *Server) operationID(requested string) string {
	if requested != "" {
		return requested
	}
	return uuid.NewString()
}

func (s *Server) writeStartError(w http.ResponseWriter, err error) {
	if errors.Is(err, ingest.ErrOperationExists) {
		s.writeError(w, http.StatusConflict, err)
		return
	}
	s.writeError(w, http.StatusInternalServerError, err)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("writing response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
