package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/lyrica/ai"
	"github.com/poiesic/lyrica/core"
	"github.com/poiesic/lyrica/storage"
)

// Pipeline builds the search index from song documents. Each document
// is parsed into a song plus its lyric sections, embedded in one batch,
// and written to both collections. Songs are processed concurrently on
// a worker pool.
type Pipeline struct {
	songRepository     storage.SongRepository
	sectionRepository  storage.SectionRepository
	manifestRepository storage.ManifestRepository
	embedder           ai.Embedder
	pool               *ants.Pool
	logger             *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	songRepository storage.SongRepository,
	sectionRepository storage.SectionRepository,
	manifestRepository storage.ManifestRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if songRepository == nil {
		return nil, ErrSongRepositoryRequired
	}
	if sectionRepository == nil {
		return nil, ErrSectionRepositoryRequired
	}
	if manifestRepository == nil {
		return nil, ErrManifestRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		songRepository:     songRepository,
		sectionRepository:  sectionRepository,
		manifestRepository: manifestRepository,
		embedder:           provider.Embedder(),
		pool:               pool,
		logger:             slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Result summarizes an ingestion run.
type Result struct {
	// Ingested is the number of songs written to the index.
	Ingested int

	// Skipped is the number of documents whose song was already indexed.
	Skipped int

	// Failed is the number of documents that could not be processed.
	// Failures are logged and do not abort the run.
	Failed int

	// Dimensions is the embedding dimensionality observed during the run.
	Dimensions int
}

// Ingest processes song documents and updates the index manifest. Songs
// already present in the index are skipped, so re-running ingestion over
// the same corpus is cheap and idempotent. Individual document failures
// are logged and counted, not fatal.
func (p *Pipeline) Ingest(ctx context.Context, documents ...*SongDocument) (*Result, error) {
	manifest, err := p.manifestRepository.LoadManifest(ctx)
	if err != nil {
		return nil, err
	}
	if manifest != nil && manifest.EmbeddingModel != p.embedder.Model() {
		return nil, ErrEmbeddingModelMismatch
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result Result
	)

	for _, doc := range documents {
		doc := doc
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			outcome := p.ingestOne(ctx, doc)

			mu.Lock()
			defer mu.Unlock()
			switch outcome.status {
			case ingestOK:
				result.Ingested++
				if result.Dimensions == 0 {
					result.Dimensions = outcome.dimensions
				}
			case ingestSkipped:
				result.Skipped++
			case ingestFailed:
				result.Failed++
			}
		})
		if submitErr != nil {
			wg.Done()
			return nil, submitErr
		}
	}
	wg.Wait()

	if result.Ingested > 0 {
		updated := &core.IndexManifest{
			EmbeddingModel: p.embedder.Model(),
			Dimensions:     result.Dimensions,
		}
		if manifest != nil {
			updated.BuiltAt = manifest.BuiltAt
		}
		if err := p.manifestRepository.SaveManifest(ctx, updated); err != nil {
			return nil, err
		}
	}

	p.logger.Info("ingestion run complete",
		"ingested", result.Ingested, "skipped", result.Skipped, "failed", result.Failed)
	return &result, nil
}

type ingestStatus int

const (
	ingestOK ingestStatus = iota
	ingestSkipped
	ingestFailed
)

type ingestOutcome struct {
	status     ingestStatus
	dimensions int
}

func (p *Pipeline) ingestOne(ctx context.Context, doc *SongDocument) ingestOutcome {
	song, sections, err := doc.build()
	if err != nil {
		p.logger.Warn("skipping malformed document",
			"title", doc.Title, "artist", doc.Artist, "err", err)
		return ingestOutcome{status: ingestFailed}
	}

	existing, err := p.songRepository.GetSong(ctx, song.Id)
	if err != nil {
		p.logger.Error("error checking for existing song", "title", song.Title, "err", err)
		return ingestOutcome{status: ingestFailed}
	}
	if existing != nil {
		p.logger.Debug("song already indexed", "title", song.Title, "artist", song.Artist)
		return ingestOutcome{status: ingestSkipped}
	}

	// One batch per song: full lyrics first, then each section.
	texts := make([]string, 0, len(sections)+1)
	texts = append(texts, song.FullLyrics)
	for _, section := range sections {
		texts = append(texts, section.Text)
	}

	vectors, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		p.logger.Error("error embedding song", "title", song.Title, "err", err)
		return ingestOutcome{status: ingestFailed}
	}
	if len(vectors) != len(texts) {
		p.logger.Error("embedding result mismatch",
			"title", song.Title, "expected", len(texts), "received", len(vectors))
		return ingestOutcome{status: ingestFailed}
	}

	song.Vector = core.NormalizeVector(vectors[0])
	for i, section := range sections {
		section.Vector = core.NormalizeVector(vectors[i+1])
	}

	if _, err := p.songRepository.AddSongs(ctx, song); err != nil {
		p.logger.Error("error storing song", "title", song.Title, "err", err)
		return ingestOutcome{status: ingestFailed}
	}
	if len(sections) > 0 {
		if _, err := p.sectionRepository.AddSections(ctx, sections...); err != nil {
			p.logger.Error("error storing sections", "title", song.Title, "err", err)
			return ingestOutcome{status: ingestFailed}
		}
	}

	return ingestOutcome{status: ingestOK, dimensions: len(song.Vector)}
}

// Delete removes a song and all of its sections from the index.
func (p *Pipeline) Delete(ctx context.Context, songId core.ID) error {
	if err := p.sectionRepository.DeleteSectionsBySong(ctx, songId); err != nil {
		return err
	}
	return p.songRepository.DeleteSongs(ctx, songId)
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
