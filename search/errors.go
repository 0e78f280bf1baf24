// Copyright 2025 Poiesic Systems
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


package search

import "errors"

var (
	// ErrSongRepositoryRequired is returned when a song repository is not provided.
	ErrSongRepositoryRequired = errors.New("song repository required")

	// ErrSectionRepositoryRequired is returned when a section repository is not provided.
	ErrSectionRepositoryRequired = errors.New("section repository required")

	// ErrManifestRepositoryRequired is returned when a manifest repository is not provided.
	ErrManifestRepositoryRequired = errors.New("manifest repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrEmbeddingModelMismatch is returned when the index was built with a
	// different embedding model than the one the searcher was given.
	// Vectors from different models are not comparable; the index must be
	// rebuilt or the embedder reconfigured.
	ErrEmbeddingModelMismatch = errors.New("index embedding model does not match configured embedder")

	// ErrEmptyQuery is returned when the search query has no content.
	ErrEmptyQuery = errors.New("query is empty")
)
