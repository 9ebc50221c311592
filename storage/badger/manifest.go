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


package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/loamlabs/loam/core"
	"github.com/loamlabs/loam/storage"
)

// ManifestRepository implements storage.ManifestRepository for BadgerDB.
type ManifestRepository struct {
	backend *Backend
}

var _ storage.ManifestRepository = (*ManifestRepository)(nil)

// NewManifestRepository creates a new ManifestRepository.
func NewManifestRepository(backend *Backend) (*ManifestRepository, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend required")
	}
	return &ManifestRepository{backend: backend}, nil
}

// UpsertEntry stores an entry, replacing any existing entry with the same key.
func (r *ManifestRepository) UpsertEntry(ctx context.Context, entry *core.ManifestEntry) error {
	if err := core.ValidateEntry(entry); err != nil {
		return err
	}

	entry.UpdatedAt = time.Now().UTC()
	value, err := storage.MarshalEntry(entry)
	if err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeManifestKey(entry.Key), value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetEntry retrieves a single entry by item key.
func (r *ManifestRepository) GetEntry(ctx context.Context, key string) (*core.ManifestEntry, error) {
	var entry *core.ManifestEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeManifestKey(key))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			entry, unmarshalErr = storage.UnmarshalEntry(val)
			return unmarshalErr
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ListByStatus retrieves all entries whose status is one of the given states.
func (r *ManifestRepository) ListByStatus(ctx context.Context, statuses ...core.Status) ([]*core.ManifestEntry, error) {
	wanted := make(map[core.Status]bool, len(statuses))
	for _, s := range statuses {
		wanted[s] = true
	}

	var entries []*core.ManifestEntry
	err := r.scan(func(entry *core.ManifestEntry) {
		if wanted[entry.Status] {
			entries = append(entries, entry)
		}
	})
	return entries, err
}

// AllEntries retrieves every entry in the manifest.
func (r *ManifestRepository) AllEntries(ctx context.Context) ([]*core.ManifestEntry, error) {
	var entries []*core.ManifestEntry
	err := r.scan(func(entry *core.ManifestEntry) {
		entries = append(entries, entry)
	})
	return entries, err
}

// Stats aggregates entry counts by status plus the total chunk count.
func (r *ManifestRepository) Stats(ctx context.Context) (*core.ManifestStats, error) {
	stats := &core.ManifestStats{}
	err := r.scan(func(entry *core.ManifestEntry) {
		stats.Total++
		stats.ChunksTotal += entry.ChunksCount
		switch entry.Status {
		case core.StatusCompleted:
			stats.Completed++
		case core.StatusError:
			stats.Errors++
		default:
			stats.Pending++
		}
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Clear removes all manifest entries.
func (r *ManifestRepository) Clear(ctx context.Context) error {
	return r.backend.DropPrefix(manifestKeyPrefix())
}

// Close closes the underlying backend.
func (r *ManifestRepository) Close() error {
	return r.backend.Close()
}

// scan iterates every manifest entry in key order within a read transaction.
func (r *ManifestRepository) scan(visit func(*core.ManifestEntry)) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = manifestKeyPrefix()
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var entry *core.ManifestEntry
			err := iter.Item().Value(func(val []byte) error {
				var unmarshalErr error
				entry, unmarshalErr = storage.UnmarshalEntry(val)
				return unmarshalErr
			})
			if err != nil {
				return err
			}
			visit(entry)
		}
		return nil
	}, false)
}
