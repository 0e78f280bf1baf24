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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lyrica/core"
	"github.com/poiesic/lyrica/storage"
	"github.com/poiesic/lyrica/storage/badger"
)

type stubLookup struct {
	infos   map[string]*ArtistInfo
	calls   int
	failFor string
}

func (s *stubLookup) ArtistInfo(ctx context.Context, artistName string) (*ArtistInfo, error) {
	s.calls++
	if artistName == s.failFor {
		return nil, errors.New("lookup failed")
	}
	if info, ok := s.infos[artistName]; ok {
		return info, nil
	}
	return &ArtistInfo{}, nil
}

type enrichFixture struct {
	songs    storage.SongRepository
	sections storage.SectionRepository
	lookup   *stubLookup
	enricher *Enricher
}

func newEnrichFixture(t *testing.T) *enrichFixture {
	t.Helper()

	songRepo, sectionRepo, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		sectionRepo.Close()
		songRepo.Close()
		backend.Close()
	})

	lookup := &stubLookup{infos: map[string]*ArtistInfo{
		"The Weeknd": {Genres: []string{"canadian pop", "r&b"}, Popularity: 92},
		"Queen":      {Genres: []string{"classic rock"}, Popularity: 85},
	}}

	enricher, err := NewEnricher(lookup, songRepo, sectionRepo)
	require.NoError(t, err)
	return &enrichFixture{songs: songRepo, sections: sectionRepo, lookup: lookup, enricher: enricher}
}

func addPlainSong(t *testing.T, repo storage.SongRepository, id core.ID, title, artist string, genres []string) {
	t.Helper()

	_, err := repo.AddSongs(context.Background(), &core.Song{
		Id:         id,
		SourceId:   title,
		Title:      title,
		Artist:     artist,
		Genres:     genres,
		FullLyrics: "la la la",
		Vector:     []float32{1, 0},
	})
	require.NoError(t, err)
}

func TestNewEnricher_Validation(t *testing.T) {
	f := newEnrichFixture(t)

	_, err := NewEnricher(nil, f.songs, f.sections)
	assert.ErrorIs(t, err, ErrArtistLookupRequired)

	_, err = NewEnricher(&stubLookup{}, nil, f.sections)
	assert.ErrorIs(t, err, ErrSongRepositoryRequired)

	_, err = NewEnricher(&stubLookup{}, f.songs, nil)
	assert.ErrorIs(t, err, ErrSectionRepositoryRequired)
}

func TestEnrichAll(t *testing.T) {
	f := newEnrichFixture(t)
	ctx := context.Background()

	addPlainSong(t, f.songs, 1, "Blinding Lights", "The Weeknd", nil)
	addPlainSong(t, f.songs, 2, "Bohemian Rhapsody", "Queen", nil)
	addPlainSong(t, f.songs, 3, "Already Tagged", "Queen", []string{"rock"})

	result, err := f.enricher.EnrichAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Updated)
	assert.Equal(t, 1, result.Skipped)
	assert.Zero(t, result.Failed)

	song, err := f.songs.GetSong(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"canadian pop", "r&b"}, song.Genres)
	assert.Equal(t, 92, song.Popularity)

	// Pre-existing genres are untouched.
	song, err = f.songs.GetSong(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"rock"}, song.Genres)
}

func TestEnrichAll_RewritesSectionGenres(t *testing.T) {
	f := newEnrichFixture(t)
	ctx := context.Background()

	// Sections carry a denormalized copy of the song's genres, so the
	// backfill has to reach them too.
	addPlainSong(t, f.songs, 1, "Blinding Lights", "The Weeknd", nil)
	_, err := f.sections.AddSections(ctx,
		&core.Section{
			Id: core.SectionIDFor(1, 0), SongId: 1,
			Title: "Blinding Lights", Artist: "The Weeknd",
			Type: "verse", Number: 1, Position: 0,
			Text: "verse text", Vector: []float32{1, 0},
		},
		&core.Section{
			Id: core.SectionIDFor(1, 1), SongId: 1,
			Title: "Blinding Lights", Artist: "The Weeknd",
			Type: "chorus", Number: 1, Position: 1,
			Text: "chorus text", Vector: []float32{0, 1},
		},
	)
	require.NoError(t, err)

	_, err = f.enricher.EnrichAll(ctx)
	require.NoError(t, err)

	sections, err := f.sections.GetSectionsBySong(ctx, 1)
	require.NoError(t, err)
	require.Len(t, sections, 2)
	for _, section := range sections {
		assert.Equal(t, []string{"canadian pop", "r&b"}, section.Genres)
	}
}

func TestEnrichAll_CachesArtistLookups(t *testing.T) {
	f := newEnrichFixture(t)
	ctx := context.Background()

	addPlainSong(t, f.songs, 1, "Bohemian Rhapsody", "Queen", nil)
	addPlainSong(t, f.songs, 2, "Somebody to Love", "Queen", nil)
	addPlainSong(t, f.songs, 3, "Under Pressure", "Queen", nil)

	_, err := f.enricher.EnrichAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, f.lookup.calls, "one lookup per artist, not per song")
}

func TestEnrichAll_CountsFailures(t *testing.T) {
	f := newEnrichFixture(t)
	f.lookup.failFor = "The Weeknd"
	ctx := context.Background()

	addPlainSong(t, f.songs, 1, "Blinding Lights", "The Weeknd", nil)
	addPlainSong(t, f.songs, 2, "Bohemian Rhapsody", "Queen", nil)

	result, err := f.enricher.EnrichAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, result.Failed)
}

func TestEnrichAll_Idempotent(t *testing.T) {
	f := newEnrichFixture(t)
	ctx := context.Background()

	addPlainSong(t, f.songs, 1, "Blinding Lights", "The Weeknd", nil)

	first, err := f.enricher.EnrichAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Updated)

	second, err := f.enricher.EnrichAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, second.Updated)
	assert.Equal(t, 1, second.Skipped)
}

func TestEnrichSong(t *testing.T) {
	f := newEnrichFixture(t)
	ctx := context.Background()

	addPlainSong(t, f.songs, 1, "Blinding Lights", "The Weeknd", nil)

	require.NoError(t, f.enricher.EnrichSong(ctx, 1))

	song, err := f.songs.GetSong(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"canadian pop", "r&b"}, song.Genres)

	// Unknown id is a no-op.
	require.NoError(t, f.enricher.EnrichSong(ctx, 999))
}
