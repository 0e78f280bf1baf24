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


package reembed

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lyrica/core"
	"github.com/poiesic/lyrica/storage"
	"github.com/poiesic/lyrica/storage/badger"
)

func newTestRepositories(t *testing.T) (storage.SongRepository, storage.SectionRepository, storage.ManifestRepository) {
	t.Helper()

	songRepo, sectionRepo, manifestRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		songRepo.Close()
		sectionRepo.Close()
		backend.Close()
	})

	return songRepo, sectionRepo, manifestRepo
}

func seedSongs(t *testing.T, repo storage.SongRepository, count int) []*core.Song {
	t.Helper()

	ctx := context.Background()
	songs := make([]*core.Song, count)
	for i := range songs {
		songs[i] = &core.Song{
			Id:         core.ID(i + 1),
			SourceId:   fmt.Sprintf("src-%d", i+1),
			Title:      fmt.Sprintf("Song %d", i+1),
			Artist:     "Test Artist",
			FullLyrics: fmt.Sprintf("lyrics for song %d", i+1),
			Vector:     []float32{1, 0},
		}
	}
	_, err := repo.AddSongs(ctx, songs...)
	require.NoError(t, err)
	return songs
}

func seedSections(t *testing.T, repo storage.SectionRepository, songId core.ID, count int) []*core.Section {
	t.Helper()

	ctx := context.Background()
	sections := make([]*core.Section, count)
	for i := range sections {
		sections[i] = &core.Section{
			Id:       core.SectionIDFor(songId, i),
			SongId:   songId,
			Title:    "Song",
			Artist:   "Test Artist",
			Type:     "verse",
			Number:   i + 1,
			Position: i,
			Text:     fmt.Sprintf("section %d text", i+1),
			Vector:   []float32{0, 1},
		}
	}
	_, err := repo.AddSections(ctx, sections...)
	require.NoError(t, err)
	return sections
}

func TestSongIterator_ForEach(t *testing.T) {
	songRepo, _, _ := newTestRepositories(t)
	seedSongs(t, songRepo, 7)

	iterator := NewSongIterator(songRepo, 3)

	var batchSizes []int
	seen := make(map[core.ID]bool)
	err := iterator.ForEach(context.Background(), func(songs []*core.Song) error {
		batchSizes = append(batchSizes, len(songs))
		for _, song := range songs {
			seen[song.Id] = true
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []int{3, 3, 1}, batchSizes)
	assert.Len(t, seen, 7)
}

func TestSongIterator_EmptyRepository(t *testing.T) {
	songRepo, _, _ := newTestRepositories(t)

	iterator := NewSongIterator(songRepo, 10)

	calls := 0
	err := iterator.ForEach(context.Background(), func(songs []*core.Song) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Zero(t, calls)
}

func TestSongIterator_StopsOnError(t *testing.T) {
	songRepo, _, _ := newTestRepositories(t)
	seedSongs(t, songRepo, 10)

	iterator := NewSongIterator(songRepo, 2)

	calls := 0
	err := iterator.ForEach(context.Background(), func(songs []*core.Song) error {
		calls++
		if calls == 2 {
			return assert.AnError
		}
		return nil
	})

	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 2, calls)
}

func TestSongIterator_ContextCancellation(t *testing.T) {
	songRepo, _, _ := newTestRepositories(t)
	seedSongs(t, songRepo, 10)

	ctx, cancel := context.WithCancel(context.Background())

	iterator := NewSongIterator(songRepo, 2)

	calls := 0
	err := iterator.ForEach(ctx, func(songs []*core.Song) error {
		calls++
		cancel()
		return nil
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestSongIterator_InvalidBatchSizeUsesDefault(t *testing.T) {
	songRepo, _, _ := newTestRepositories(t)
	seedSongs(t, songRepo, 3)

	iterator := NewSongIterator(songRepo, 0)
	assert.Equal(t, DefaultBatchSize, iterator.batchSize)

	batches := 0
	err := iterator.ForEach(context.Background(), func(songs []*core.Song) error {
		batches++
		assert.Len(t, songs, 3)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, batches)
}

func TestSectionIterator_ForEach(t *testing.T) {
	_, sectionRepo, _ := newTestRepositories(t)
	seedSections(t, sectionRepo, core.ID(1), 5)

	iterator := NewSectionIterator(sectionRepo, 2)

	var batchSizes []int
	err := iterator.ForEach(context.Background(), func(sections []*core.Section) error {
		batchSizes = append(batchSizes, len(sections))
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 1}, batchSizes)
}

func TestSectionIterator_EmptyRepository(t *testing.T) {
	_, sectionRepo, _ := newTestRepositories(t)

	iterator := NewSectionIterator(sectionRepo, 10)

	calls := 0
	err := iterator.ForEach(context.Background(), func(sections []*core.Section) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Zero(t, calls)
}
