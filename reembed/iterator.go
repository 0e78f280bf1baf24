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

	"github.com/poiesic/lyrica/core"
	"github.com/poiesic/lyrica/storage"
)

const (
	// DefaultBatchSize is the default number of records to embed per batch
	DefaultBatchSize = 100
)

// SongIterator walks every song in the index in batches.
type SongIterator struct {
	repo      storage.SongRepository
	batchSize int
}

// NewSongIterator creates a song iterator.
// batchSize: number of songs per batch (must be > 0)
func NewSongIterator(repo storage.SongRepository, batchSize int) *SongIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &SongIterator{repo: repo, batchSize: batchSize}
}

// ForEach calls fn for each batch of songs. Iteration stops on the first
// error from fn; context cancellation is checked between batches.
func (it *SongIterator) ForEach(ctx context.Context, fn func([]*core.Song) error) error {
	songs, err := it.repo.AllSongs(ctx)
	if err != nil {
		return err
	}
	return forEachBatch(ctx, songs, it.batchSize, fn)
}

// SectionIterator walks every section in the index in batches.
type SectionIterator struct {
	repo      storage.SectionRepository
	batchSize int
}

// NewSectionIterator creates a section iterator.
func NewSectionIterator(repo storage.SectionRepository, batchSize int) *SectionIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &SectionIterator{repo: repo, batchSize: batchSize}
}

// ForEach calls fn for each batch of sections.
func (it *SectionIterator) ForEach(ctx context.Context, fn func([]*core.Section) error) error {
	sections, err := it.repo.AllSections(ctx)
	if err != nil {
		return err
	}
	return forEachBatch(ctx, sections, it.batchSize, fn)
}

func forEachBatch[T any](ctx context.Context, items []T, batchSize int, fn func([]T) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	for i := 0; i < len(items); i += batchSize {
		end := i + batchSize
		if end > len(items) {
			end = len(items)
		}

		if err := fn(items[i:end]); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
	return nil
}
