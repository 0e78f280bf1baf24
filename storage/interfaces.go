package storage

import (
	"context"

	"github.com/poiesic/lyrica/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access: the
// retrieval path is read-only, and concurrent searches against the same index
// must be safe to run in parallel.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// SongRepository provides the songs collection: full-lyric vectors plus song
// metadata, keyed by song id.
type SongRepository interface {
	Repository

	// AddSongs adds one or more songs to storage. Song IDs must be set by the
	// caller (content-derived). Sets InsertedAt/UpdatedAt timestamps.
	AddSongs(ctx context.Context, songs ...*core.Song) ([]*core.Song, error)

	// UpdateSongs updates existing songs, refreshing UpdatedAt.
	// Returns ErrNotFound if any song doesn't exist.
	UpdateSongs(ctx context.Context, songs ...*core.Song) ([]*core.Song, error)

	// DeleteSongs removes songs by their IDs.
	// Returns ErrNotFound if any song doesn't exist.
	DeleteSongs(ctx context.Context, ids ...core.ID) error

	// GetSong retrieves a single song by ID.
	// Returns nil, nil if the song doesn't exist.
	GetSong(ctx context.Context, id core.ID) (*core.Song, error)

	// GetSongs retrieves multiple songs by their IDs.
	// Returns only the songs that exist (no error for missing songs).
	GetSongs(ctx context.Context, ids ...core.ID) ([]*core.Song, error)

	// FindSimilar runs a nearest-neighbor query over song vectors.
	// Returns up to limit matches ordered by ascending cosine distance.
	// An empty collection yields an empty slice, not an error.
	FindSimilar(ctx context.Context, vector []float32, limit int) ([]*core.SongMatch, error)

	// AllSongs returns every song in the collection. Intended for
	// maintenance jobs like reembedding, not the query path.
	AllSongs(ctx context.Context) ([]*core.Song, error)

	// Count returns the number of songs in the collection.
	Count(ctx context.Context) (int, error)
}

// SectionRepository provides the sections collection: one vector per
// verse/chorus/bridge occurrence, with denormalized display metadata.
type SectionRepository interface {
	Repository

	// AddSections adds one or more sections to storage. Section IDs and the
	// owning SongId must be set by the caller.
	AddSections(ctx context.Context, sections ...*core.Section) ([]*core.Section, error)

	// GetSection retrieves a single section by ID.
	// Returns nil, nil if the section doesn't exist.
	GetSection(ctx context.Context, id core.ID) (*core.Section, error)

	// GetSectionsBySong retrieves all sections owned by a song, in lyric order.
	GetSectionsBySong(ctx context.Context, songId core.ID) ([]*core.Section, error)

	// DeleteSectionsBySong removes every section owned by a song.
	// Deleting sections of an unknown song is not an error.
	DeleteSectionsBySong(ctx context.Context, songId core.ID) error

	// FindSimilar runs a nearest-neighbor query over section vectors.
	// Returns up to limit matches ordered by ascending cosine distance.
	// An empty collection yields an empty slice, not an error.
	FindSimilar(ctx context.Context, vector []float32, limit int) ([]*core.SectionMatch, error)

	// UpdateSections replaces existing section records. Used by
	// maintenance jobs to rewrite vectors in place.
	UpdateSections(ctx context.Context, sections ...*core.Section) ([]*core.Section, error)

	// AllSections returns every section in the collection. Intended for
	// maintenance jobs like reembedding, not the query path.
	AllSections(ctx context.Context) ([]*core.Section, error)

	// Count returns the number of sections in the collection.
	Count(ctx context.Context) (int, error)
}

// ManifestRepository persists the index-build manifest used for the
// model-identifier check at query time.
type ManifestRepository interface {
	// SaveManifest persists the manifest, refreshing UpdatedAt.
	SaveManifest(ctx context.Context, manifest *core.IndexManifest) error

	// LoadManifest retrieves the manifest.
	// Returns nil, nil if the index has never been built.
	LoadManifest(ctx context.Context) (*core.IndexManifest, error)
}
