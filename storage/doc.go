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


// Package storage provides the storage abstraction layer for lyrica.
//
// This package defines repository interfaces that decouple storage
// implementation from the ranking engine. Two logical collections exist:
// songs (one vector per track, embedded from the full lyrics) and sections
// (one vector per verse/chorus/bridge occurrence). Each collection is an
// opaque nearest-neighbor oracle: FindSimilar(vector, k) returns matches
// ordered by ascending cosine distance, and the engine treats the indexing
// algorithm behind it as out of scope.
//
// # Constructor Return Type Pattern
//
// Public constructors return interface types to enforce abstraction and allow
// multiple backends:
//
//	repo, err := badger.NewSongRepository(backend) // returns storage.SongRepository
//
// Two backends are provided:
//
//   - storage/badger: embedded BadgerDB with a brute-force cosine scan,
//     suitable for a personal-scale corpus
//   - storage/qdrant: a Qdrant server over gRPC for larger corpora
//
// # Thread Safety
//
// All repository implementations must be thread-safe. Ingestion runs as a
// separate phase before search traffic; during search the collections are
// read-only and concurrent searches never contend with a writer.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation and timeout
// support.
package storage
