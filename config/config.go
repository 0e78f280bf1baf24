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


package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/poiesic/lyrica/search"
)

// Backend names accepted in [storage].
const (
	BackendBadger = "badger"
	BackendQdrant = "qdrant"
)

var (
	// ErrUnknownBackend is returned for a storage backend other than badger or qdrant
	ErrUnknownBackend = errors.New("unknown storage backend")

	// ErrInvalidWeight is returned for negative fusion weights
	ErrInvalidWeight = errors.New("fusion weights must not be negative")

	// ErrInvalidCandidates is returned for non-positive candidate counts
	ErrInvalidCandidates = errors.New("candidate counts must be positive")
)

// Config is the optional lyrica.toml file. Every field has a default,
// so an absent file and an empty file behave identically.
type Config struct {
	Storage   StorageConfig   `toml:"storage"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Search    SearchConfig    `toml:"search"`
	Genres    GenresConfig    `toml:"genres"`
}

// StorageConfig selects and parameterizes the storage backend.
type StorageConfig struct {
	Backend    string `toml:"backend"`     // badger or qdrant
	Path       string `toml:"path"`        // badger database directory
	QdrantAddr string `toml:"qdrant_addr"` // host:port of the qdrant gRPC endpoint
}

// EmbeddingConfig points at the OpenAI-compatible embedding service.
type EmbeddingConfig struct {
	Host  string `toml:"host"`
	Model string `toml:"model"`
}

// SearchConfig carries the retrieval tuning knobs.
type SearchConfig struct {
	SongWeight        float64 `toml:"song_weight"`
	SectionWeight     float64 `toml:"section_weight"`
	GenreBoost        float64 `toml:"genre_boost"`
	SongCandidates    int     `toml:"song_candidates"`
	SectionCandidates int     `toml:"section_candidates"`
	MaxHits           int     `toml:"max_hits"`
}

// GenresConfig extends the built-in genre lexicon.
type GenresConfig struct {
	// Extra phrases recognized as genre terms in queries, merged with
	// the built-in lexicon.
	Extra []string `toml:"extra"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend:    BackendBadger,
			Path:       "lyrica.db",
			QdrantAddr: "localhost:6334",
		},
		Embedding: EmbeddingConfig{
			Host:  "http://localhost:11434/v1",
			Model: "all-mpnet-base-v2",
		},
		Search: SearchConfig{
			SongWeight:        search.DefaultSongWeight,
			SectionWeight:     search.DefaultSectionWeight,
			GenreBoost:        search.DefaultGenreBoost,
			SongCandidates:    search.DefaultSongCandidates,
			SectionCandidates: search.DefaultSectionCandidates,
			MaxHits:           search.DefaultMaxHits,
		},
	}
}

// Load reads a TOML config file over the defaults. A missing file is
// not an error: the defaults are returned, so callers can always point
// Load at the conventional location.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the values a file could plausibly get wrong.
func (c *Config) Validate() error {
	if c.Storage.Backend != BackendBadger && c.Storage.Backend != BackendQdrant {
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Storage.Backend)
	}
	if c.Search.SongWeight < 0 || c.Search.SectionWeight < 0 || c.Search.GenreBoost < 0 {
		return ErrInvalidWeight
	}
	if c.Search.SongCandidates <= 0 || c.Search.SectionCandidates <= 0 || c.Search.MaxHits <= 0 {
		return ErrInvalidCandidates
	}
	return nil
}

// SearchConfig converts the file values to the searcher's config type.
func (c *Config) SearchConfig() search.Config {
	return search.Config{
		SongWeight:        float32(c.Search.SongWeight),
		SectionWeight:     float32(c.Search.SectionWeight),
		GenreBoost:        float32(c.Search.GenreBoost),
		SongCandidates:    c.Search.SongCandidates,
		SectionCandidates: c.Search.SectionCandidates,
	}
}

// Lexicon builds the genre lexicon: the built-in phrases plus any
// [genres] extras from the file.
func (c *Config) Lexicon() *search.Lexicon {
	lexicon := search.DefaultLexicon()
	if len(c.Genres.Extra) == 0 {
		return lexicon
	}
	return lexicon.With(c.Genres.Extra...)
}
