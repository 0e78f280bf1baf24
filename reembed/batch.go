package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/lyrica/ai"
	"github.com/poiesic/lyrica/core"
	"github.com/poiesic/lyrica/storage"
)

// BatchProcessor regenerates embeddings for batches of songs and
// sections and writes them back in place.
type BatchProcessor struct {
	songRepo       storage.SongRepository
	sectionRepo    storage.SectionRepository
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(songRepo storage.SongRepository, sectionRepo storage.SectionRepository, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		songRepo:       songRepo,
		sectionRepo:    sectionRepo,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// ProcessSongs reembeds a batch of songs from their full lyrics.
// Vectors are normalized before storage so cosine scans stay valid.
func (bp *BatchProcessor) ProcessSongs(ctx context.Context, songs []*core.Song) error {
	if len(songs) == 0 {
		return nil
	}

	texts := make([]string, len(songs))
	for i, song := range songs {
		texts[i] = song.FullLyrics
	}

	embeddings, err := bp.embedBatch(ctx, texts)
	if err != nil {
		return err
	}
	if len(embeddings) != len(songs) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(songs), len(embeddings))
	}

	for i := range songs {
		songs[i].Vector = core.NormalizeVector(embeddings[i])
	}

	if _, err := bp.songRepo.UpdateSongs(ctx, songs...); err != nil {
		return fmt.Errorf("failed to update songs: %w", err)
	}
	return nil
}

// ProcessSections reembeds a batch of sections from their text.
func (bp *BatchProcessor) ProcessSections(ctx context.Context, sections []*core.Section) error {
	if len(sections) == 0 {
		return nil
	}

	texts := make([]string, len(sections))
	for i, section := range sections {
		texts[i] = section.Text
	}

	embeddings, err := bp.embedBatch(ctx, texts)
	if err != nil {
		return err
	}
	if len(embeddings) != len(sections) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(sections), len(embeddings))
	}

	for i := range sections {
		sections[i].Vector = core.NormalizeVector(embeddings[i])
	}

	if _, err := bp.sectionRepo.UpdateSections(ctx, sections...); err != nil {
		return fmt.Errorf("failed to update sections: %w", err)
	}
	return nil
}

func (bp *BatchProcessor) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}
	return embeddings, nil
}
