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


// Package storage defines the persistence contracts for the ingestion
// manifest.
//
// The manifest is the only shared mutable resource in a run: one durable
// entry per source item, keyed by normalized path or canonical URL. Writes
// are atomic per key; each key is owned by exactly one in-flight worker at
// a time, so implementations need no locking beyond per-key atomicity.
//
// Store-level I/O failures are fatal to a run and are never retried.
package storage
