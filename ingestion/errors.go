package ingestion

import "errors"

var (
	// ErrSongRepositoryRequired is returned when a song repository is not provided.
	ErrSongRepositoryRequired = errors.New("song repository required")

	// ErrSectionRepositoryRequired is returned when a section repository is not provided.
	ErrSectionRepositoryRequired = errors.New("section repository required")

	// ErrManifestRepositoryRequired is returned when a manifest repository is not provided.
	ErrManifestRepositoryRequired = errors.New("manifest repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrEmbeddingModelMismatch is returned when new songs would be
	// embedded with a different model than the one that built the
	// existing index.
	ErrEmbeddingModelMismatch = errors.New("index embedding model does not match configured embedder")
)
