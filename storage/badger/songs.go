package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/lyrica/core"
	"github.com/poiesic/lyrica/storage"
)

// SongRepository implements storage.SongRepository for BadgerDB.
type SongRepository struct {
	backend *Backend
}

var _ storage.SongRepository = (*SongRepository)(nil)

// NewSongRepository creates a new SongRepository.
func NewSongRepository(backend *Backend) (*SongRepository, error) {
	return &SongRepository{
		backend: backend,
	}, nil
}

// Close releases resources. SongRepository has no resources to release.
func (r *SongRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *SongRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// FindSimilar delegates to the backend's song-collection scan.
func (r *SongRepository) FindSimilar(ctx context.Context, vector []float32, limit int) ([]*core.SongMatch, error) {
	return r.backend.FindSimilarSongs(ctx, vector, limit)
}

// AddSongs adds one or more songs to storage. Song IDs are content-derived
// and must be set by the caller.
func (r *SongRepository) AddSongs(ctx context.Context, songs ...*core.Song) ([]*core.Song, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, song := range songs {
			if song.Id == 0 {
				return storage.ErrInvalidQuery
			}

			song.InsertedAt = time.Now().UTC()
			song.UpdatedAt = song.InsertedAt

			key := makeSongKey(song.Id)
			if err := tx.Set(key, storage.MarshalSong(song)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return songs, err
}

// UpdateSongs updates existing songs.
func (r *SongRepository) UpdateSongs(ctx context.Context, songs ...*core.Song) ([]*core.Song, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, song := range songs {
			key := makeSongKey(song.Id)

			old, err := r.readSong(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			song.InsertedAt = old.InsertedAt
			song.UpdatedAt = time.Now().UTC()

			if err := tx.Set(key, storage.MarshalSong(song)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return songs, err
}

// DeleteSongs removes songs by their IDs.
func (r *SongRepository) DeleteSongs(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeSongKey(id)

			if _, err := tx.Get(key); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					return storage.ErrNotFound
				}
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetSong retrieves a single song by ID, returning nil if absent.
func (r *SongRepository) GetSong(ctx context.Context, id core.ID) (*core.Song, error) {
	var song *core.Song
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		song, err = r.readSong(tx, makeSongKey(id))
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return song, nil
}

// GetSongs retrieves multiple songs by their IDs.
// Returns only the songs that exist.
func (r *SongRepository) GetSongs(ctx context.Context, ids ...core.ID) ([]*core.Song, error) {
	songs := make([]*core.Song, 0, len(ids))
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			song, err := r.readSong(tx, makeSongKey(id))
			if err != nil {
				return err
			}
			if song != nil {
				songs = append(songs, song)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return songs, nil
}

// AllSongs returns every song in the collection.
func (r *SongRepository) AllSongs(ctx context.Context) ([]*core.Song, error) {
	var songs []*core.Song
	err := r.backend.WithTx(func(tx *badger.Txn) error {
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
			songs = append(songs, song)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return songs, nil
}

// Count returns the number of songs in the collection.
func (r *SongRepository) Count(ctx context.Context) (int, error) {
	return r.backend.countPrefix([]byte(songRecordPrefix))
}

// readSong reads and unmarshals a song record, returning nil if absent.
func (r *SongRepository) readSong(tx *badger.Txn, key []byte) (*core.Song, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var song *core.Song
	err = item.Value(func(val []byte) error {
		var err error
		song, err = storage.UnmarshalSong(val)
		return err
	})
	return song, err
}
