package ingest

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/loamlabs/loam/core"
)

// Scope names what a resumed run covers. Exactly the pending manifest
// entries inside the scope are retried; entries outside it are untouched.
// At least one of Dir and Seed must be set.
type Scope struct {
	// Dir scopes the resume to file entries under this directory.
	Dir string

	// Seed scopes the resume to page entries on the seed URL's host.
	Seed string
}

// Empty reports whether the scope names nothing.
func (s Scope) Empty() bool {
	return s.Dir == "" && s.Seed == ""
}

// PageFetchFunc re-fetches a page by URL for resumed crawl entries.
type PageFetchFunc func(ctx context.Context, pageURL string) (Item, error)

// PendingItems collects the manifest entries still pending inside the scope
// and turns them into runnable items, resetting each to queued. Entries
// whose source no longer exists are marked error and excluded. fetch may be
// nil when the scope has no seed.
func (p *Pipeline) PendingItems(ctx context.Context, scope Scope, fetch PageFetchFunc) ([]Item, error) {
	if scope.Empty() {
		return nil, ErrNoScope
	}

	var dirPrefix string
	if scope.Dir != "" {
		info, err := os.Stat(scope.Dir)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrRootNotFound, scope.Dir, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%w: %s is not a directory", ErrRootNotFound, scope.Dir)
		}
		abs, err := filepath.Abs(scope.Dir)
		if err != nil {
			return nil, err
		}
		dirPrefix = strings.TrimSuffix(abs, string(os.PathSeparator)) + string(os.PathSeparator)
	}

	var seedHost string
	if scope.Seed != "" {
		u, err := url.Parse(scope.Seed)
		if err != nil || u.Hostname() == "" {
			return nil, fmt.Errorf("%w: invalid seed %q", ErrNoScope, scope.Seed)
		}
		seedHost = u.Hostname()
	}

	pending, err := p.manifest.ListByStatus(ctx,
		core.StatusQueued, core.StatusProcessing, core.StatusError)
	if err != nil {
		return nil, fmt.Errorf("listing pending entries: %w", err)
	}

	var items []Item
	for _, entry := range pending {
		switch {
		case isWebKey(entry.Key):
			if seedHost == "" {
				continue
			}
			u, err := url.Parse(entry.Key)
			if err != nil || u.Hostname() != seedHost {
				continue
			}
			if fetch == nil {
				continue
			}
			item, err := fetch(ctx, entry.Key)
			if err != nil {
				if merr := p.markError(ctx, entry.Key, entry.Title, entry.Checksum,
					fmt.Errorf("re-fetching: %w", err)); isFatal(merr) {
					return nil, merr
				}
				p.logger.Warn("skipping unfetchable page", "key", entry.Key, "error", err)
				continue
			}
			items = append(items, item)

		default:
			if dirPrefix == "" || !strings.HasPrefix(entry.Key, dirPrefix) {
				continue
			}
			if _, err := os.Stat(entry.Key); err != nil {
				if merr := p.markError(ctx, entry.Key, entry.Title, entry.Checksum,
					fmt.Errorf("source file gone: %w", err)); isFatal(merr) {
					return nil, merr
				}
				p.logger.Warn("skipping missing file", "key", entry.Key)
				continue
			}
			items = append(items, NewFileItem(entry.Key))
		}

		entry.Status = core.StatusQueued
		entry.Error = ""
		if err := p.manifest.UpsertEntry(ctx, entry); err != nil {
			return nil, fmt.Errorf("requeueing %s: %w", entry.Key, err)
		}
	}

	return items, nil
}

// Resume retries every pending entry inside the scope synchronously under
// the given operation ID.
func (p *Pipeline) Resume(ctx context.Context, operationID string, scope Scope, fetch PageFetchFunc) (core.Operation, error) {
	items, err := p.PendingItems(ctx, scope, fetch)
	if err != nil {
		return core.Operation{}, err
	}
	return p.Run(ctx, operationID, items)
}

// isWebKey reports whether a manifest key is a page URL rather than a path.
func isWebKey(key string) bool {
	return strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://")
}

// isFatal reports whether an error carries a run-level failure.
func isFatal(err error) bool {
	var fe *fatalError
	return errors.As(err, &fe)
}
