package badger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/poiesic/lyrica/core"
	"github.com/poiesic/lyrica/storage"
)

// Backend wraps a BadgerDB instance and provides low-level operations.
type Backend struct {
	db     *badger.DB
	logger *slog.Logger
}

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// OpenBackend opens a BadgerDB database at the specified path.
// Creates the directory if it doesn't exist.
func OpenBackend(filePath string, inMemory bool) (*Backend, error) {
	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		// Ensure directory exists
		info, err := os.Stat(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(filePath, 0755); err != nil {
					return nil, err
				}
				info, err = os.Stat(filePath)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", filePath)
		}
		opts = badger.DefaultOptions(filePath)
	}

	opts.Logger = &badgerLoggerAdapter{logger: slog.Default()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Backend{
		db:     db,
		logger: slog.Default(),
	}, nil
}

// Close closes the BadgerDB database.
func (b *Backend) Close() error {
	return b.db.Close()
}

// IsClosed returns true if the database is closed.
func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}

// WithTx executes a function within a BadgerDB transaction.
// If isWrite is true, creates a read-write transaction.
// The transaction is automatically discarded if fn returns an error.
func (b *Backend) WithTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	tx := b.db.NewTransaction(isWrite)
	defer tx.Discard()
	return fn(tx)
}

// WithTransaction executes a function within a transaction.
func (b *Backend) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return b.WithTx(func(tx *badger.Txn) error {
		if err := fn(ctx); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// FindSimilarSongs scans all song vectors and returns up to limit matches
// ordered by ascending cosine distance. Vectors are unit length, so the
// distance is 1 minus the dot product. An empty collection yields an empty
// slice, not an error.
func (b *Backend) FindSimilarSongs(ctx context.Context, vector []float32, limit int) ([]*core.SongMatch, error) {
	if limit <= 0 || len(vector) == 0 {
		return nil, storage.ErrInvalidQuery
	}

	var matches []*core.SongMatch

	err := b.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(songRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var song *core.Song
			err := iter.Item().Value(func(val []byte) error {
				var err error
				song, err = storage.UnmarshalSong(val)
				return err
			})
			if err != nil {
				return err
			}
			if song == nil || len(song.Vector) == 0 {
				continue
			}

			matches = append(matches, &core.SongMatch{
				Song:     song,
				Distance: core.CosineDistance(vector, song.Vector),
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	sortByDistance(matches, func(m *core.SongMatch) float32 { return m.Distance })
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// FindSimilarSections scans all section vectors and returns up to limit
// matches ordered by ascending cosine distance.
func (b *Backend) FindSimilarSections(ctx context.Context, vector []float32, limit int) ([]*core.SectionMatch, error) {
	if limit <= 0 || len(vector) == 0 {
		return nil, storage.ErrInvalidQuery
	}

	var matches []*core.SectionMatch

	err := b.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(sectionRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var section *core.Section
			err := iter.Item().Value(func(val []byte) error {
				var err error
				section, err = storage.UnmarshalSection(val)
				return err
			})
			if err != nil {
				return err
			}
			if section == nil || len(section.Vector) == 0 {
				continue
			}

			matches = append(matches, &core.SectionMatch{
				Section:  section,
				Distance: core.CosineDistance(vector, section.Vector),
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	sortByDistance(matches, func(m *core.SectionMatch) float32 { return m.Distance })
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// countPrefix counts keys under a prefix without loading values.
func (b *Backend) countPrefix(prefix []byte) (int, error) {
	count := 0
	err := b.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// sortByDistance sorts matches ascending by distance.
func sortByDistance[T any](matches []T, distance func(T) float32) {
	slices.SortFunc(matches, func(a, b T) int {
		da, db := distance(a), distance(b)
		if da < db {
			return -1
		}
		if da > db {
			return 1
		}
		return 0
	})
}
