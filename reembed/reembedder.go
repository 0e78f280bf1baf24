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
	"io"
	"time"

	"github.com/poiesic/lyrica/ai"
	"github.com/poiesic/lyrica/core"
	"github.com/poiesic/lyrica/storage"
)

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of records to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of records)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reembedder rewrites every vector in the index with a new embedding
// model: all songs, all sections, and finally the manifest. This is the
// only supported way to switch models on an existing corpus.
type Reembedder struct {
	songRepo     storage.SongRepository
	sectionRepo  storage.SectionRepository
	manifestRepo storage.ManifestRepository
	embedder     ai.Embedder
	config       *Config
	progress     io.Writer
	processor    *BatchProcessor
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(
	songRepo storage.SongRepository,
	sectionRepo storage.SectionRepository,
	manifestRepo storage.ManifestRepository,
	embedder ai.Embedder,
	config *Config,
	progress io.Writer,
) *Reembedder {
	if config == nil {
		config = DefaultConfig()
	}

	return &Reembedder{
		songRepo:     songRepo,
		sectionRepo:  sectionRepo,
		manifestRepo: manifestRepo,
		embedder:     embedder,
		config:       config,
		progress:     progress,
		processor:    NewBatchProcessor(songRepo, sectionRepo, embedder, config.MaxRetries, config.RetryDelay),
	}
}

// Run reembeds the whole index. Progress is reported to the configured
// writer. The manifest is rewritten with the new model id only after
// both collections have been processed, so a run that dies midway
// leaves the old manifest (and the mismatch check) in place.
func (r *Reembedder) Run(ctx context.Context) error {
	songCount, err := r.songRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count songs: %w", err)
	}
	sectionCount, err := r.sectionRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count sections: %w", err)
	}

	total := songCount + sectionCount
	if total == 0 {
		fmt.Fprintf(r.progress, "Index is empty, nothing to reembed\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Reembedding %d songs and %d sections with %s (batch size: %d)\n",
		songCount, sectionCount, r.embedder.Model(), r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	processed := 0
	dimensions := 0

	songIterator := NewSongIterator(r.songRepo, r.config.BatchSize)
	err = songIterator.ForEach(ctx, func(songs []*core.Song) error {
		if err := r.processor.ProcessSongs(ctx, songs); err != nil {
			return fmt.Errorf("failed to process song batch: %w", err)
		}
		if dimensions == 0 && len(songs) > 0 {
			dimensions = len(songs[0].Vector)
		}
		processed += len(songs)
		tracker.Update(processed)
		return nil
	})
	if err != nil {
		return err
	}

	sectionIterator := NewSectionIterator(r.sectionRepo, r.config.BatchSize)
	err = sectionIterator.ForEach(ctx, func(sections []*core.Section) error {
		if err := r.processor.ProcessSections(ctx, sections); err != nil {
			return fmt.Errorf("failed to process section batch: %w", err)
		}
		if dimensions == 0 && len(sections) > 0 {
			dimensions = len(sections[0].Vector)
		}
		processed += len(sections)
		tracker.Update(processed)
		return nil
	})
	if err != nil {
		return err
	}

	tracker.Finish()

	manifest, err := r.manifestRepo.LoadManifest(ctx)
	if err != nil {
		return fmt.Errorf("failed to load manifest: %w", err)
	}
	if manifest == nil {
		manifest = &core.IndexManifest{}
	}
	manifest.EmbeddingModel = r.embedder.Model()
	manifest.Dimensions = dimensions
	if err := r.manifestRepo.SaveManifest(ctx, manifest); err != nil {
		return fmt.Errorf("failed to save manifest: %w", err)
	}

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d records in %v (%.1f records/sec)\n",
		total, elapsed.Round(time.Second), float64(total)/elapsed.Seconds())

	return nil
}
