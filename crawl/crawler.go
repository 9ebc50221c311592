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

package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultMaxPages caps how many pages one crawl visits.
	DefaultMaxPages = 50

	// DefaultDelay is the politeness pause between page fetches.
	DefaultDelay = 200 * time.Millisecond

	// DefaultTimeout bounds a single page fetch.
	DefaultTimeout = 15 * time.Second

	// DefaultUserAgent identifies the crawler to servers.
	DefaultUserAgent = "loam-crawler/1.0 (+https://github.com/loamlabs/loam)"
)

// Crawler walks a single website breadth-first from a seed URL. Only links
// on the seed's hostname are followed; fragments and query strings are
// stripped before dedup so cosmetic URL variants are fetched once.
type Crawler struct {
	fetcher   *Fetcher
	client    *http.Client
	maxPages  int
	delay     time.Duration
	userAgent string
	logger    *slog.Logger
}

// Option configures a Crawler during construction.
type Option func(*Crawler) error

// WithMaxPages overrides the page cap.
func WithMaxPages(n int) Option {
	return func(c *Crawler) error {
		if n < 1 {
			return fmt.Errorf("max pages must be at least 1, got %d", n)
		}
		c.maxPages = n
		return nil
	}
}

// WithDelay overrides the inter-request politeness delay.
func WithDelay(d time.Duration) Option {
	return func(c *Crawler) error {
		if d < 0 {
			return fmt.Errorf("delay cannot be negative")
		}
		c.delay = d
		return nil
	}
}

// WithTimeout overrides the per-fetch timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Crawler) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be positive")
		}
		c.client.Timeout = d
		return nil
	}
}

// WithUserAgent overrides the user-agent header.
func WithUserAgent(ua string) Option {
	return func(c *Crawler) error {
		if ua == "" {
			return fmt.Errorf("user agent cannot be empty")
		}
		c.userAgent = ua
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithClient replaces the HTTP client, keeping its timeout.
func WithClient(client *http.Client) Option {
	return func(c *Crawler) error {
		if client == nil {
			return fmt.Errorf("client cannot be nil")
		}
		c.client = client
		return nil
	}
}

// NewCrawler creates a crawler with default limits.
func NewCrawler(opts ...Option) (*Crawler, error) {
	c := &Crawler{
		client:    &http.Client{Timeout: DefaultTimeout},
		maxPages:  DefaultMaxPages,
		delay:     DefaultDelay,
		userAgent: DefaultUserAgent,
		logger:    slog.Default().With("component", "crawler"),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	c.fetcher = NewFetcher(c.client, c.userAgent)
	return c, nil
}

// Limit returns a copy of the crawler with a different page cap. The HTTP
// client, user agent, delay and logger are shared with the receiver, which
// is left unchanged.
func (c *Crawler) Limit(maxPages int) (*Crawler, error) {
	if maxPages < 1 {
		return nil, fmt.Errorf("max pages must be at least 1, got %d", maxPages)
	}
	clone := *c
	clone.maxPages = maxPages
	return &clone, nil
}

// Crawl traverses the site breadth-first from seed and returns the visited
// pages in discovery order. Per-page fetch failures are logged and skipped;
// only an unusable seed is an error.
func (c *Crawler) Crawl(ctx context.Context, seed string) ([]*Page, error) {
	seedURL, err := url.Parse(seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}
	if seedURL.Hostname() == "" || (seedURL.Scheme != "http" && seedURL.Scheme != "https") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSeed, seed)
	}

	host := seedURL.Hostname()
	logger := c.logger.With("host", host)

	// Advisory only. Disallowed pages are warned about, not blocked.
	robots := fetchRobots(ctx, c.client, seedURL, c.userAgent)

	queue := []string{Canonicalize(seedURL)}
	visited := make(map[string]bool, c.maxPages)
	var pages []*Page

	for len(queue) > 0 && len(pages) < c.maxPages {
		if err := ctx.Err(); err != nil {
			return pages, err
		}

		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		if u, err := url.Parse(current); err == nil && robots.Disallowed(u.Path) {
			logger.Warn("page disallowed by robots.txt, fetching anyway", "url", current)
		}

		page, err := c.fetcher.Fetch(ctx, current)
		if err != nil {
			logger.Warn("skipping page", "url", current, "error", err)
			continue
		}
		pages = append(pages, page)
		logger.Debug("fetched page", "url", current, "links", len(page.Links), "chars", len(page.Text))

		for _, link := range page.Links {
			u, err := url.Parse(link)
			if err != nil || u.Hostname() != host {
				continue
			}
			if !visited[link] {
				queue = append(queue, link)
			}
		}

		if len(queue) > 0 && len(pages) < c.maxPages && c.delay > 0 {
			timer := time.NewTimer(c.delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return pages, ctx.Err()
			case <-timer.C:
			}
		}
	}

	logger.Info("crawl finished", "pages", len(pages), "visited", len(visited))
	return pages, nil
}

// FetchPage retrieves a single page outside of a traversal, for re-fetching
// known URLs during a resume.
func (c *Crawler) FetchPage(ctx context.Context, pageURL string) (*Page, error) {
	return c.fetcher.Fetch(ctx, pageURL)
}
