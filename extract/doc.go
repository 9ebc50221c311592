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


// Package extract converts raw document bytes into plain text.
//
// One extractor is registered per supported format and selected by file
// extension or declared type hint. Adding a format means registering a new
// implementation, not branching core logic. Extraction failures are local
// to the item being processed and never abort a bulk run.
package extract
