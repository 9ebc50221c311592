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

import "errors"

var (
	// ErrInvalidSeed is returned when the seed URL cannot be parsed or has
	// no hostname.
	ErrInvalidSeed = errors.New("invalid seed URL")

	// ErrFetchFailed indicates a page could not be retrieved.
	ErrFetchFailed = errors.New("fetch failed")
)
