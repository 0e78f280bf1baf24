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


package lyrica

import (
	"context"
	"io"
	"log/slog"

	"github.com/poiesic/lyrica/ai"
	"github.com/poiesic/lyrica/ai/openai"
	"github.com/poiesic/lyrica/ingestion"
	"github.com/poiesic/lyrica/reembed"
	"github.com/poiesic/lyrica/search"
	"github.com/poiesic/lyrica/storage"
	"github.com/poiesic/lyrica/storage/badger"
	"github.com/poiesic/lyrica/storage/qdrant"
)

// Database bundles a storage backend, its repositories and the AI
// provider into one handle, and hands out the higher-level components
// (pipeline, searcher, reembedder) wired to them.
type Database struct {
	backend       io.Closer
	qdrantBackend *qdrant.Backend // set only for the qdrant backend
	songRepo      storage.SongRepository
	sectionRepo   storage.SectionRepository
	manifestRepo  storage.ManifestRepository
	provider      ai.AIProvider
	logger        *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
	logger   *slog.Logger
}

// WithAIConfig sets the embedding service configuration.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

// WithProvider injects a pre-built AI provider instead of constructing
// the OpenAI-compatible one. Used by tests with the mock provider.
func WithProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithDatabaseLogger sets the logger.
func WithDatabaseLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		o.logger = logger
	}
}

func applyDatabaseOptions(opts []DatabaseOption) (*databaseOptions, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	if options.provider == nil {
		provider, err := openai.NewProvider(options.aiConfig)
		if err != nil {
			return nil, err
		}
		options.provider = provider
	}
	return options, nil
}

// NewDatabase opens a badger-backed database at filePath, creating it
// if necessary.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options, err := applyDatabaseOptions(opts)
	if err != nil {
		return nil, err
	}

	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	songRepo, err := badger.NewSongRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	sectionRepo, err := badger.NewSectionRepository(backend)
	if err != nil {
		songRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:      backend,
		songRepo:     songRepo,
		sectionRepo:  sectionRepo,
		manifestRepo: badger.NewManifestRepository(backend),
		provider:     options.provider,
		logger:       options.logger,
	}, nil
}

// NewQdrantDatabase connects to a qdrant server at addr (gRPC,
// host:port). Collections are not created here; call
// EnsureCollections once the embedding dimensionality is known.
func NewQdrantDatabase(addr string, opts ...DatabaseOption) (*Database, error) {
	options, err := applyDatabaseOptions(opts)
	if err != nil {
		return nil, err
	}

	backend, err := qdrant.OpenBackend(addr, options.logger)
	if err != nil {
		return nil, err
	}

	songRepo, err := qdrant.NewSongRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	sectionRepo, err := qdrant.NewSectionRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	manifestRepo, err := qdrant.NewManifestRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:       backend,
		qdrantBackend: backend,
		songRepo:      songRepo,
		sectionRepo:   sectionRepo,
		manifestRepo:  manifestRepo,
		provider:      options.provider,
		logger:        options.logger,
	}, nil
}

// EnsureCollections creates the vector collections on a qdrant backend
// if they don't exist yet. A no-op for badger, which needs no schema.
func (db *Database) EnsureCollections(ctx context.Context, dimensions int) error {
	if db.qdrantBackend == nil {
		return nil
	}
	return db.qdrantBackend.EnsureCollections(ctx, dimensions)
}

func (db *Database) Close() error {
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.sectionRepo.Close(); err != nil {
		db.logger.Error("error closing section repository", "err", err)
		return err
	}
	if err := db.songRepo.Close(); err != nil {
		db.logger.Error("error closing song repository", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) SongRepository() storage.SongRepository {
	return db.songRepo
}

func (db *Database) SectionRepository() storage.SectionRepository {
	return db.sectionRepo
}

func (db *Database) ManifestRepository() storage.ManifestRepository {
	return db.manifestRepo
}

func (db *Database) Provider() ai.AIProvider {
	return db.provider
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(db.songRepo, db.sectionRepo, db.manifestRepo, db.provider, opts...)
}

func (db *Database) NewSearcher(ctx context.Context, opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(ctx, db.songRepo, db.sectionRepo, db.manifestRepo, db.provider, opts...)
}

func (db *Database) NewReembedder(config *reembed.Config, progress io.Writer) *reembed.Reembedder {
	return reembed.NewReembedder(db.songRepo, db.sectionRepo, db.manifestRepo, db.provider.Embedder(), config, progress)
}
