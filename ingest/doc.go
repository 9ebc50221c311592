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


// Package ingest provides the resumable bulk content-ingestion pipeline.
//
// The Pipeline runs each discovered source item through checksum dedup,
// text extraction, chunking, batched embedding and batched vector upserts
// on a bounded worker pool, recording per-item state in a durable manifest.
// A failing item is marked and the run continues; a run interrupted at any
// point can be resumed from the manifest without reprocessing completed
// work.
package ingest
