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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lyrica/ai/mock"
	"github.com/poiesic/lyrica/core"
)

func TestBatchProcessor_ProcessSongs(t *testing.T) {
	songRepo, sectionRepo, _ := newTestRepositories(t)
	songs := seedSongs(t, songRepo, 3)

	embedder := mock.NewMockEmbedder()
	processor := NewBatchProcessor(songRepo, sectionRepo, embedder, 3, time.Millisecond)

	ctx := context.Background()
	err := processor.ProcessSongs(ctx, songs)
	require.NoError(t, err)

	for _, song := range songs {
		stored, err := songRepo.GetSong(ctx, song.Id)
		require.NoError(t, err)
		require.NotNil(t, stored)

		assert.Len(t, stored.Vector, 384)
		assert.NotEqual(t, []float32{1, 0}, stored.Vector)

		var norm float64
		for _, v := range stored.Vector {
			norm += float64(v) * float64(v)
		}
		assert.InDelta(t, 1.0, norm, 1e-4)
	}
}

func TestBatchProcessor_ProcessSections(t *testing.T) {
	songRepo, sectionRepo, _ := newTestRepositories(t)
	sections := seedSections(t, sectionRepo, core.ID(1), 4)

	embedder := mock.NewMockEmbedder()
	processor := NewBatchProcessor(songRepo, sectionRepo, embedder, 3, time.Millisecond)

	ctx := context.Background()
	err := processor.ProcessSections(ctx, sections)
	require.NoError(t, err)

	stored, err := sectionRepo.GetSectionsBySong(ctx, core.ID(1))
	require.NoError(t, err)
	require.Len(t, stored, 4)
	for _, section := range stored {
		assert.Len(t, section.Vector, 384)
	}
}

func TestBatchProcessor_EmptyBatchIsNoop(t *testing.T) {
	songRepo, sectionRepo, _ := newTestRepositories(t)

	embedder := mock.NewMockEmbedder()
	processor := NewBatchProcessor(songRepo, sectionRepo, embedder, 3, time.Millisecond)

	ctx := context.Background()
	require.NoError(t, processor.ProcessSongs(ctx, nil))
	require.NoError(t, processor.ProcessSections(ctx, nil))
	assert.Zero(t, embedder.CallCount())
}

func TestBatchProcessor_RetriesTransientFailures(t *testing.T) {
	songRepo, sectionRepo, _ := newTestRepositories(t)
	songs := seedSongs(t, songRepo, 2)

	attempts := 0
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("embedding service unavailable")
		}
		vectors := make([][]float32, len(texts))
		for i := range vectors {
			vectors[i] = []float32{3, 4}
		}
		return vectors, nil
	}

	processor := NewBatchProcessor(songRepo, sectionRepo, embedder, 3, time.Millisecond)

	err := processor.ProcessSongs(context.Background(), songs)
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)

	stored, err := songRepo.GetSong(context.Background(), songs[0].Id)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, float64(stored.Vector[0]), 1e-6)
	assert.InDelta(t, 0.8, float64(stored.Vector[1]), 1e-6)
}

func TestBatchProcessor_ExhaustsRetries(t *testing.T) {
	songRepo, sectionRepo, _ := newTestRepositories(t)
	songs := seedSongs(t, songRepo, 1)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("embedding service unavailable")
	}

	processor := NewBatchProcessor(songRepo, sectionRepo, embedder, 2, time.Millisecond)

	err := processor.ProcessSongs(context.Background(), songs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
}

func TestBatchProcessor_CountMismatch(t *testing.T) {
	songRepo, sectionRepo, _ := newTestRepositories(t)
	songs := seedSongs(t, songRepo, 2)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1, 0}}, nil
	}

	processor := NewBatchProcessor(songRepo, sectionRepo, embedder, 1, time.Millisecond)

	err := processor.ProcessSongs(context.Background(), songs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count mismatch")
}
