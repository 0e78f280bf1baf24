package badger

import (
	"context"
	"testing"

	"github.com/poiesic/lyrica/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSection(songId core.ID, number, position int, text string) *core.Section {
	return &core.Section{
		Id:       core.SectionIDFor(songId, position),
		SongId:   songId,
		Title:    "Parent Song",
		Artist:   "Test Artist",
		Genres:   []string{"indie"},
		Type:     "verse",
		Number:   number,
		Position: position,
		Text:     text,
		Vector:   core.NormalizeVector([]float32{0.3, 0.7}),
	}
}

func TestAddSections(t *testing.T) {
	_, sectionRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		sectionRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	songId := core.SongIDFromSource("spotify:s1")
	section := newSection(songId, 1, 0, "first verse text")

	added, err := sectionRepo.AddSections(ctx, section)
	require.NoError(t, err)
	require.Len(t, added, 1)

	count, err := sectionRepo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestGetSection(t *testing.T) {
	_, sectionRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		sectionRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	songId := core.SongIDFromSource("spotify:s2")
	section := newSection(songId, 1, 0, "chorus text")
	section.Type = "chorus"
	_, err = sectionRepo.AddSections(ctx, section)
	require.NoError(t, err)

	got, err := sectionRepo.GetSection(ctx, section.Id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "chorus", got.Type)
	assert.Equal(t, "chorus text", got.Text)
	assert.Equal(t, songId, got.SongId)
	assert.Equal(t, "Parent Song", got.Title)
}

func TestGetSectionsBySong_LyricOrder(t *testing.T) {
	_, sectionRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		sectionRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	songId := core.SongIDFromSource("spotify:s3")

	// Insert out of lyric order; retrieval follows position.
	third := newSection(songId, 2, 2, "verse two")
	first := newSection(songId, 1, 0, "verse one")
	second := newSection(songId, 1, 1, "chorus")
	second.Type = "chorus"
	_, err = sectionRepo.AddSections(ctx, third, first, second)
	require.NoError(t, err)

	got, err := sectionRepo.GetSectionsBySong(ctx, songId)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "verse one", got[0].Text)
	assert.Equal(t, "chorus", got[1].Text)
	assert.Equal(t, "verse two", got[2].Text)
}

func TestGetSectionsBySong_IsolatedBySong(t *testing.T) {
	_, sectionRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		sectionRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	firstSong := core.SongIDFromSource("spotify:s4")
	secondSong := core.SongIDFromSource("spotify:s5")
	_, err = sectionRepo.AddSections(ctx,
		newSection(firstSong, 1, 0, "alpha"),
		newSection(secondSong, 1, 0, "beta"),
		newSection(secondSong, 2, 1, "gamma"),
	)
	require.NoError(t, err)

	got, err := sectionRepo.GetSectionsBySong(ctx, secondSong)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestDeleteSectionsBySong(t *testing.T) {
	_, sectionRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		sectionRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	songId := core.SongIDFromSource("spotify:s6")
	_, err = sectionRepo.AddSections(ctx,
		newSection(songId, 1, 0, "doomed one"),
		newSection(songId, 2, 1, "doomed two"),
	)
	require.NoError(t, err)

	err = sectionRepo.DeleteSectionsBySong(ctx, songId)
	require.NoError(t, err)

	got, err := sectionRepo.GetSectionsBySong(ctx, songId)
	require.NoError(t, err)
	assert.Empty(t, got)

	count, err := sectionRepo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestFindSimilarSections_SkipsEmptyVectors(t *testing.T) {
	_, sectionRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		sectionRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	songId := core.SongIDFromSource("spotify:s7")
	embedded := newSection(songId, 1, 0, "has a vector")
	bare := newSection(songId, 2, 1, "no vector yet")
	bare.Vector = nil
	_, err = sectionRepo.AddSections(ctx, embedded, bare)
	require.NoError(t, err)

	matches, err := sectionRepo.FindSimilar(ctx, core.NormalizeVector([]float32{0.3, 0.7}), 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "has a vector", matches[0].Section.Text)
}
