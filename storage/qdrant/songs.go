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

package qdrant

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/lyrica/core"
	"github.com/poiesic/lyrica/storage"
	pb "github.com/qdrant/go-client/qdrant"
)

// SongRepository stores whole songs as qdrant points keyed by the
// content-derived song id.
type SongRepository struct {
	backend *Backend
}

func NewSongRepository(backend *Backend) (storage.SongRepository, error) {
	if backend == nil {
		return nil, fmt.Errorf("%w: backend is required", storage.ErrInvalidQuery)
	}
	return &SongRepository{backend: backend}, nil
}

func (r *SongRepository) Close() error {
	return nil
}

// WithTransaction runs fn directly. Qdrant has no multi-point
// transactions; upserts are atomic per request.
func (r *SongRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (r *SongRepository) AddSongs(ctx context.Context, songs ...*core.Song) ([]*core.Song, error) {
	now := time.Now()
	for _, song := range songs {
		if song.Id == 0 {
			return nil, fmt.Errorf("%w: song %q has no id", storage.ErrInvalidQuery, song.Title)
		}
		song.InsertedAt = now
		song.UpdatedAt = now
	}
	if err := r.upsert(ctx, songs); err != nil {
		return nil, err
	}
	return songs, nil
}

func (r *SongRepository) UpdateSongs(ctx context.Context, songs ...*core.Song) ([]*core.Song, error) {
	now := time.Now()
	for _, song := range songs {
		existing, err := r.GetSong(ctx, song.Id)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, fmt.Errorf("%w: song %d", storage.ErrNotFound, song.Id)
		}
		song.InsertedAt = existing.InsertedAt
		song.UpdatedAt = now
	}
	if err := r.upsert(ctx, songs); err != nil {
		return nil, err
	}
	return songs, nil
}

func (r *SongRepository) upsert(ctx context.Context, songs []*core.Song) error {
	points := make([]*pb.PointStruct, len(songs))
	for i, song := range songs {
		points[i] = &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Num{Num: uint64(song.Id)},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: song.Vector},
				},
			},
			Payload: songPayload(song),
		}
	}

	wait := true
	_, err := r.backend.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: songCollection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("qdrant: upsert %d songs: %w", len(songs), err)
	}
	return nil
}

func (r *SongRepository) DeleteSongs(ctx context.Context, ids ...core.ID) error {
	pointIds := make([]*pb.PointId, len(ids))
	for i, id := range ids {
		pointIds[i] = &pb.PointId{PointIdOptions: &pb.PointId_Num{Num: uint64(id)}}
	}

	wait := true
	_, err := r.backend.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: songCollection,
		Wait:           &wait,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Points{
				Points: &pb.PointsIdsList{Ids: pointIds},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("qdrant: delete %d songs: %w", len(ids), err)
	}
	return nil
}

func (r *SongRepository) GetSong(ctx context.Context, id core.ID) (*core.Song, error) {
	songs, err := r.GetSongs(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(songs) == 0 {
		return nil, nil
	}
	return songs[0], nil
}

func (r *SongRepository) GetSongs(ctx context.Context, ids ...core.ID) ([]*core.Song, error) {
	pointIds := make([]*pb.PointId, len(ids))
	for i, id := range ids {
		pointIds[i] = &pb.PointId{PointIdOptions: &pb.PointId_Num{Num: uint64(id)}}
	}

	resp, err := r.backend.points.Get(ctx, &pb.GetPoints{
		CollectionName: songCollection,
		Ids:            pointIds,
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
		WithVectors:    &pb.WithVectorsSelector{SelectorOptions: &pb.WithVectorsSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: get songs: %w", err)
	}

	songs := make([]*core.Song, 0, len(resp.GetResult()))
	for _, point := range resp.GetResult() {
		song := songFromPayload(core.ID(point.GetId().GetNum()), point.GetPayload())
		song.Vector = point.GetVectors().GetVector().GetData()
		songs = append(songs, song)
	}
	return songs, nil
}

// FindSimilar returns up to limit songs ordered by ascending cosine
// distance from the query vector.
func (r *SongRepository) FindSimilar(ctx context.Context, vector []float32, limit int) ([]*core.SongMatch, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidQuery)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: query vector is empty", storage.ErrInvalidQuery)
	}

	resp, err := r.backend.points.Search(ctx, &pb.SearchPoints{
		CollectionName: songCollection,
		Vector:         vector,
		Limit:          uint64(limit),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: search songs: %w", err)
	}

	matches := make([]*core.SongMatch, 0, len(resp.GetResult()))
	for _, point := range resp.GetResult() {
		song := songFromPayload(core.ID(point.GetId().GetNum()), point.GetPayload())
		matches = append(matches, &core.SongMatch{
			Song: song,
			// Qdrant reports cosine similarity; repositories speak distance.
			Distance: 1 - point.GetScore(),
		})
	}
	return matches, nil
}

// AllSongs scrolls the full song collection, vectors included.
func (r *SongRepository) AllSongs(ctx context.Context) ([]*core.Song, error) {
	var songs []*core.Song
	var offset *pb.PointId
	for {
		limit := uint32(256)
		resp, err := r.backend.points.Scroll(ctx, &pb.ScrollPoints{
			CollectionName: songCollection,
			Limit:          &limit,
			Offset:         offset,
			WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
			WithVectors:    &pb.WithVectorsSelector{SelectorOptions: &pb.WithVectorsSelector_Enable{Enable: true}},
		})
		if err != nil {
			return nil, fmt.Errorf("qdrant: scroll songs: %w", err)
		}
		for _, point := range resp.GetResult() {
			song := songFromPayload(core.ID(point.GetId().GetNum()), point.GetPayload())
			song.Vector = point.GetVectors().GetVector().GetData()
			songs = append(songs, song)
		}
		offset = resp.GetNextPageOffset()
		if offset == nil {
			break
		}
	}
	return songs, nil
}

func (r *SongRepository) Count(ctx context.Context) (int, error) {
	return r.backend.countCollection(ctx, songCollection)
}
