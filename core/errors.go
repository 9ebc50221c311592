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

import "errors"

// Domain validation errors
var (
	// ErrInvalidEntry indicates a ManifestEntry failed validation.
	ErrInvalidEntry = errors.New("invalid manifest entry")

	// ErrEmptyKey indicates the entry Key field is empty.
	ErrEmptyKey = errors.New("item key cannot be empty")

	// ErrInvalidStatus indicates an unknown lifecycle status value.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidChunking indicates an invalid chunk size/overlap combination.
	ErrInvalidChunking = errors.New("invalid chunking parameters")
)
