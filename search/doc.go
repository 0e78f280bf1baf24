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


// Package search implements hybrid lyric search over two vector
// collections.
//
// A query is first split into genre terms and residual text by a genre
// lexicon, longest phrase first. The residual text is embedded once and
// run concurrently against the whole-song collection and the lyric
// section collection. The two candidate sets are fused into one entry
// per song:
//
//	combined = songWeight*songSimilarity + sectionWeight*bestSectionSimilarity
//
// where similarity is 1 minus cosine distance and a missing component
// contributes zero. Songs whose genres match a query genre term have
// their combined score multiplied by the genre boost. Results are
// ranked by combined score, with song-level similarity and then song id
// breaking ties, and truncated to the requested hit count.
//
// Every result carries the text of the best-matching section, so a
// caller can show why a song was retrieved without another lookup.
package search
