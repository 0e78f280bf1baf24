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


// Package ai provides abstractions for the embedding services used in Lyrica.
//
// This package defines the Embedder interface for turning lyric text and
// search queries into vectors, plus an AIProvider that owns embedder
// lifecycle. The core and search packages depend on these abstractions
// rather than on a concrete API client.
//
// # Implementations
//
//   - ai/openai: production implementation for OpenAI-compatible APIs
//     (Ollama, LocalAI, vLLM, OpenAI itself)
//   - ai/mock: deterministic test doubles, no network required
//
// # Model identity
//
// Every Embedder reports the model it wraps via Model(). Vectors from
// different models live in different spaces, so the model id is written
// into the index manifest at ingestion time and checked again before
// any search runs. A mismatch is a configuration error, not something
// to paper over at query time.
//
// # Usage
//
//	cfg := ai.NewConfig(
//	    ai.WithEmbeddingHost("http://localhost:11434"),
//	    ai.WithEmbeddingModel("all-mpnet-base-v2"),
//	)
//	provider, err := openai.NewProvider(cfg)
//	if err != nil {
//	    // handle
//	}
//	defer provider.Close()
//
//	vec, err := provider.Embedder().EmbedText(ctx, "songs about heartbreak")
package ai
