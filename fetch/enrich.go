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


package fetch

import (
	"context"
	"log/slog"

	"github.com/poiesic/lyrica/core"
	"github.com/poiesic/lyrica/storage"
)

// ArtistLookup resolves an artist name to catalog metadata.
// CatalogClient satisfies it.
type ArtistLookup interface {
	ArtistInfo(ctx context.Context, artistName string) (*ArtistInfo, error)
}

// Enricher backfills genre and popularity metadata on stored songs by
// looking up their artists in the catalog. Lookups are cached per run
// since a corpus typically has many songs per artist.
//
// Section records carry denormalized copies of the song's genres, used
// for genre-aware ranking when a song surfaces through a section hit
// alone, so enrichment rewrites a song's sections along with the song.
//
// Enrichment touches metadata only; vectors are untouched, so no
// reembedding is needed afterwards.
type Enricher struct {
	lookup      ArtistLookup
	songRepo    storage.SongRepository
	sectionRepo storage.SectionRepository
	logger      *slog.Logger
	cache       map[string]*ArtistInfo
}

// EnrichOption configures an Enricher.
type EnrichOption func(*Enricher)

// WithEnrichLogger sets the logger.
func WithEnrichLogger(logger *slog.Logger) EnrichOption {
	return func(e *Enricher) {
		e.logger = logger
	}
}

// NewEnricher creates an enricher over the given lookup client and
// repositories.
func NewEnricher(lookup ArtistLookup, songRepo storage.SongRepository, sectionRepo storage.SectionRepository, opts ...EnrichOption) (*Enricher, error) {
	if lookup == nil {
		return nil, ErrArtistLookupRequired
	}
	if songRepo == nil {
		return nil, ErrSongRepositoryRequired
	}
	if sectionRepo == nil {
		return nil, ErrSectionRepositoryRequired
	}

	enricher := &Enricher{
		lookup:      lookup,
		songRepo:    songRepo,
		sectionRepo: sectionRepo,
		logger:      slog.Default(),
		cache:       make(map[string]*ArtistInfo),
	}
	for _, opt := range opts {
		opt(enricher)
	}
	return enricher, nil
}

// EnrichResult summarizes an enrichment run.
type EnrichResult struct {
	Updated int // songs that received genres or popularity
	Skipped int // songs that already had genres
	Failed  int // songs whose artist lookup failed
}

// EnrichAll walks every stored song and fills in missing genres and
// popularity. Songs that already carry genres are left alone, so the
// operation is idempotent. A failed artist lookup is counted and the
// walk continues.
func (e *Enricher) EnrichAll(ctx context.Context) (*EnrichResult, error) {
	songs, err := e.songRepo.AllSongs(ctx)
	if err != nil {
		return nil, err
	}

	result := &EnrichResult{}
	for _, song := range songs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if len(song.Genres) > 0 {
			result.Skipped++
			continue
		}

		info, err := e.artistInfo(ctx, song.Artist)
		if err != nil {
			e.logger.Warn("artist lookup failed", "artist", song.Artist, "error", err)
			result.Failed++
			continue
		}

		if err := e.apply(ctx, song, info); err != nil {
			return result, err
		}
		result.Updated++
	}

	e.logger.Info("enrichment complete",
		"updated", result.Updated, "skipped", result.Skipped, "failed", result.Failed)
	return result, nil
}

// EnrichSong fills in metadata for a single song by id. Unknown ids
// are a no-op.
func (e *Enricher) EnrichSong(ctx context.Context, songId core.ID) error {
	song, err := e.songRepo.GetSong(ctx, songId)
	if err != nil {
		return err
	}
	if song == nil || len(song.Genres) > 0 {
		return nil
	}

	info, err := e.artistInfo(ctx, song.Artist)
	if err != nil {
		return err
	}

	return e.apply(ctx, song, info)
}

// apply writes the looked-up metadata to the song and mirrors the new
// genres onto its section records, which keep a denormalized copy.
func (e *Enricher) apply(ctx context.Context, song *core.Song, info *ArtistInfo) error {
	song.Genres = info.Genres
	if song.Popularity == 0 {
		song.Popularity = info.Popularity
	}

	if _, err := e.songRepo.UpdateSongs(ctx, song); err != nil {
		return err
	}
	if len(info.Genres) == 0 {
		return nil
	}

	sections, err := e.sectionRepo.GetSectionsBySong(ctx, song.Id)
	if err != nil {
		return err
	}
	if len(sections) == 0 {
		return nil
	}
	for _, section := range sections {
		section.Genres = info.Genres
	}
	_, err = e.sectionRepo.UpdateSections(ctx, sections...)
	return err
}

func (e *Enricher) artistInfo(ctx context.Context, artist string) (*ArtistInfo, error) {
	if info, ok := e.cache[artist]; ok {
		return info, nil
	}
	info, err := e.lookup.ArtistInfo(ctx, artist)
	if err != nil {
		return nil, err
	}
	e.cache[artist] = info
	return info, nil
}
