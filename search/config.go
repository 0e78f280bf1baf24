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

const (
	// DefaultSongWeight scales the whole-song similarity contribution.
	DefaultSongWeight = 0.5

	// DefaultSectionWeight scales the best-section similarity contribution.
	// The weights intentionally do not sum to 1: sections are weighted
	// slightly above songs so a sharply matching verse or chorus can
	// outrank a diffuse full-lyrics match.
	DefaultSectionWeight = 0.6

	// DefaultGenreBoost multiplies the combined score of results whose
	// genres match a genre term in the query. A boost of 1 disables
	// boosting.
	DefaultGenreBoost = 1.5

	// DefaultSongCandidates is how many whole-song neighbors to pull
	// before fusion. Over-fetched relative to typical result sizes so
	// fusion and dedup have enough candidates to work with.
	DefaultSongCandidates = 50

	// DefaultSectionCandidates is how many section neighbors to pull
	// before fusion. Twice the song count: several sections of the same
	// song can occupy candidate slots.
	DefaultSectionCandidates = 100

	// DefaultMaxHits is the result count used when the caller asks for
	// zero or fewer hits.
	DefaultMaxHits = 10
)

// Config holds the tuning knobs of a Searcher.
type Config struct {
	SongWeight        float32
	SectionWeight     float32
	GenreBoost        float32
	SongCandidates    int
	SectionCandidates int
}

// DefaultSearchConfig returns the standard fusion configuration.
func DefaultSearchConfig() Config {
	return Config{
		SongWeight:        DefaultSongWeight,
		SectionWeight:     DefaultSectionWeight,
		GenreBoost:        DefaultGenreBoost,
		SongCandidates:    DefaultSongCandidates,
		SectionCandidates: DefaultSectionCandidates,
	}
}
