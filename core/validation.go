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


package core

import "fmt"

// ValidateEntry validates a ManifestEntry according to domain rules.
//
// Validation rules:
//   - Key must not be empty
//   - Status must be a known lifecycle state
//   - ChunksCount must not be negative
//
// NOT validated (populated by the pipeline):
//   - Checksum (empty until the item has been read)
//   - Error (only set for StatusError entries)
func ValidateEntry(entry *ManifestEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidEntry)
	}

	if entry.Key == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyKey)
	}

	if !entry.Status.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidEntry, ErrInvalidStatus, entry.Status)
	}

	if entry.ChunksCount < 0 {
		return fmt.Errorf("%w: negative chunk count %d", ErrInvalidEntry, entry.ChunksCount)
	}

	return nil
}

// ValidateChunking validates a chunk size/overlap pair. Overlap must be
// non-negative and strictly smaller than the chunk size, otherwise the
// chunker would never advance.
func ValidateChunking(size, overlap int) error {
	if size <= 0 {
		return fmt.Errorf("%w: size %d", ErrInvalidChunking, size)
	}
	if overlap < 0 || overlap >= size {
		return fmt.Errorf("%w: overlap %d for size %d", ErrInvalidChunking, overlap, size)
	}
	return nil
}
