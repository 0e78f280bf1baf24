package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/lyrica/core"
	"github.com/poiesic/lyrica/storage"
)

// SectionRepository implements storage.SectionRepository for BadgerDB.
type SectionRepository struct {
	backend *Backend
}

var _ storage.SectionRepository = (*SectionRepository)(nil)

// NewSectionRepository creates a new SectionRepository.
func NewSectionRepository(backend *Backend) (*SectionRepository, error) {
	return &SectionRepository{
		backend: backend,
	}, nil
}

// Close releases resources. SectionRepository has no resources to release.
func (r *SectionRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *SectionRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// FindSimilar delegates to the backend's section-collection scan.
func (r *SectionRepository) FindSimilar(ctx context.Context, vector []float32, limit int) ([]*core.SectionMatch, error) {
	return r.backend.FindSimilarSections(ctx, vector, limit)
}

// AddSections adds one or more sections to storage, maintaining the
// song->sections index in lyric order.
func (r *SectionRepository) AddSections(ctx context.Context, sections ...*core.Section) ([]*core.Section, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, section := range sections {
			if section.Id == 0 || section.SongId == 0 {
				return storage.ErrInvalidQuery
			}

			key := makeSectionKey(section.Id)
			if err := tx.Set(key, storage.MarshalSection(section)); err != nil {
				return err
			}

			songKey := makeSectionSongKey(section.SongId, section.Position)
			if err := tx.Set(songKey, storage.MarshalID(section.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return sections, err
}

// GetSection retrieves a single section by ID, returning nil if absent.
func (r *SectionRepository) GetSection(ctx context.Context, id core.ID) (*core.Section, error) {
	var section *core.Section
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		section, err = r.readSection(tx, makeSectionKey(id))
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return section, nil
}

// GetSectionsBySong retrieves all sections owned by a song, in lyric order.
func (r *SectionRepository) GetSectionsBySong(ctx context.Context, songId core.ID) ([]*core.Section, error) {
	var sections []*core.Section

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeSectionSongScanPrefix(songId)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var sectionId core.ID
			err := iter.Item().Value(func(val []byte) error {
				var err error
				sectionId, err = storage.UnmarshalID(val)
				return err
			})
			if err != nil {
				return err
			}

			section, err := r.readSection(tx, makeSectionKey(sectionId))
			if err != nil {
				return err
			}
			if section != nil {
				sections = append(sections, section)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return sections, nil
}

// DeleteSectionsBySong removes every section owned by a song.
func (r *SectionRepository) DeleteSectionsBySong(ctx context.Context, songId core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeSectionSongScanPrefix(songId)
		iter := tx.NewIterator(opts)

		var indexKeys [][]byte
		var sectionIds []core.ID
		for iter.Rewind(); iter.Valid(); iter.Next() {
			var sectionId core.ID
			err := iter.Item().Value(func(val []byte) error {
				var err error
				sectionId, err = storage.UnmarshalID(val)
				return err
			})
			if err != nil {
				iter.Close()
				return err
			}
			indexKeys = append(indexKeys, iter.Item().KeyCopy(nil))
			sectionIds = append(sectionIds, sectionId)
		}
		iter.Close()

		for i, sectionId := range sectionIds {
			if err := tx.Delete(makeSectionKey(sectionId)); err != nil {
				return err
			}
			if err := tx.Delete(indexKeys[i]); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// UpdateSections replaces existing section records.
func (r *SectionRepository) UpdateSections(ctx context.Context, sections ...*core.Section) ([]*core.Section, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, section := range sections {
			key := makeSectionKey(section.Id)

			old, err := r.readSection(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			if err := tx.Set(key, storage.MarshalSection(section)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return sections, err
}

// AllSections returns every section in the collection.
func (r *SectionRepository) AllSections(ctx context.Context) ([]*core.Section, error) {
	var sections []*core.Section
	err := r.backend.WithTx(func(tx *badger.Txn) error {
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
			sections = append(sections, section)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return sections, nil
}

// Count returns the number of sections in the collection.
func (r *SectionRepository) Count(ctx context.Context) (int, error) {
	return r.backend.countPrefix([]byte(sectionRecordPrefix))
}

// readSection reads and unmarshals a section record, returning nil if absent.
func (r *SectionRepository) readSection(tx *badger.Txn, key []byte) (*core.Section, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var section *core.Section
	err = item.Value(func(val []byte) error {
		var err error
		section, err = storage.UnmarshalSection(val)
		return err
	})
	return section, err
}
