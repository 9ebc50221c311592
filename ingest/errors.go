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

import "errors"

var (
	// ErrManifestRequired is returned when a manifest repository is not provided.
	ErrManifestRequired = errors.New("manifest repository required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrIndexRequired is returned when a vector index is not provided.
	ErrIndexRequired = errors.New("vector index required")

	// ErrInvalidMaxAttempts is returned for a non-positive retry budget.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

	// ErrEmbeddingFailed indicates the embedding service failed after the
	// retry budget was exhausted. The item is marked error; the run continues.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrUpsertFailed indicates the vector index rejected an upsert after
	// the retry budget was exhausted. The item is marked error; the run
	// continues.
	ErrUpsertFailed = errors.New("vector upsert failed")

	// ErrRootNotFound indicates the enumeration root is missing or
	// unreadable. Fatal: the run never starts.
	ErrRootNotFound = errors.New("root path not found")

	// ErrOperationExists indicates an operation ID is already running.
	ErrOperationExists = errors.New("operation already exists")

	// ErrOperationNotFound indicates an unknown operation ID.
	ErrOperationNotFound = errors.New("operation not found")

	// ErrNoScope is returned when a resume request names neither a
	// directory nor a crawl seed.
	ErrNoScope = errors.New("resume requires an explicit scope")
)
