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
	"sort"

	"github.com/poiesic/lyrica/core"
	"github.com/poiesic/lyrica/storage"
	pb "github.com/qdrant/go-client/qdrant"
)

// SectionRepository stores lyric sections as qdrant points. The parent
// song id lives in the payload so per-song operations filter on it.
type SectionRepository struct {
	backend *Backend
}

func NewSectionRepository(backend *Backend) (storage.SectionRepository, error) {
	if backend == nil {
		return nil, fmt.Errorf("%w: backend is required", storage.ErrInvalidQuery)
	}
	return &SectionRepository{backend: backend}, nil
}

func (r *SectionRepository) Close() error {
	return nil
}

func (r *SectionRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (r *SectionRepository) AddSections(ctx context.Context, sections ...*core.Section) ([]*core.Section, error) {
	points := make([]*pb.PointStruct, len(sections))
	for i, section := range sections {
		if section.Id == 0 || section.SongId == 0 {
			return nil, fmt.Errorf("%w: section %d has no id or song id", storage.ErrInvalidQuery, i)
		}
		points[i] = &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Num{Num: uint64(section.Id)},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: section.Vector},
				},
			},
			Payload: sectionPayload(section),
		}
	}

	wait := true
	_, err := r.backend.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: sectionCollection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: upsert %d sections: %w", len(sections), err)
	}
	return sections, nil
}

func (r *SectionRepository) GetSection(ctx context.Context, id core.ID) (*core.Section, error) {
	resp, err := r.backend.points.Get(ctx, &pb.GetPoints{
		CollectionName: sectionCollection,
		Ids: []*pb.PointId{
			{PointIdOptions: &pb.PointId_Num{Num: uint64(id)}},
		},
		WithPayload: &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
		WithVectors: &pb.WithVectorsSelector{SelectorOptions: &pb.WithVectorsSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: get section %d: %w", id, err)
	}
	if len(resp.GetResult()) == 0 {
		return nil, nil
	}

	point := resp.GetResult()[0]
	section := sectionFromPayload(core.ID(point.GetId().GetNum()), point.GetPayload())
	section.Vector = point.GetVectors().GetVector().GetData()
	return section, nil
}

// GetSectionsBySong scrolls all sections of a song and returns them in
// lyric order.
func (r *SectionRepository) GetSectionsBySong(ctx context.Context, songId core.ID) ([]*core.Section, error) {
	var sections []*core.Section
	var offset *pb.PointId
	for {
		limit := uint32(256)
		resp, err := r.backend.points.Scroll(ctx, &pb.ScrollPoints{
			CollectionName: sectionCollection,
			Filter: &pb.Filter{
				Must: []*pb.Condition{fieldMatchInt("song_id", int64(songId))},
			},
			Limit:       &limit,
			Offset:      offset,
			WithPayload: &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
		})
		if err != nil {
			return nil, fmt.Errorf("qdrant: scroll sections of song %d: %w", songId, err)
		}
		for _, point := range resp.GetResult() {
			sections = append(sections, sectionFromPayload(core.ID(point.GetId().GetNum()), point.GetPayload()))
		}
		offset = resp.GetNextPageOffset()
		if offset == nil {
			break
		}
	}

	sort.Slice(sections, func(i, j int) bool {
		return sections[i].Position < sections[j].Position
	})
	return sections, nil
}

func (r *SectionRepository) DeleteSectionsBySong(ctx context.Context, songId core.ID) error {
	wait := true
	_, err := r.backend.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: sectionCollection,
		Wait:           &wait,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Filter{
				Filter: &pb.Filter{
					Must: []*pb.Condition{fieldMatchInt("song_id", int64(songId))},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("qdrant: delete sections of song %d: %w", songId, err)
	}
	return nil
}

func (r *SectionRepository) FindSimilar(ctx context.Context, vector []float32, limit int) ([]*core.SectionMatch, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidQuery)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: query vector is empty", storage.ErrInvalidQuery)
	}

	resp, err := r.backend.points.Search(ctx, &pb.SearchPoints{
		CollectionName: sectionCollection,
		Vector:         vector,
		Limit:          uint64(limit),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: search sections: %w", err)
	}

	matches := make([]*core.SectionMatch, 0, len(resp.GetResult()))
	for _, point := range resp.GetResult() {
		section := sectionFromPayload(core.ID(point.GetId().GetNum()), point.GetPayload())
		matches = append(matches, &core.SectionMatch{
			Section:  section,
			Distance: 1 - point.GetScore(),
		})
	}
	return matches, nil
}

// UpdateSections rewrites section records. Upserts are idempotent in
// qdrant, so this shares the AddSections write path.
func (r *SectionRepository) UpdateSections(ctx context.Context, sections ...*core.Section) ([]*core.Section, error) {
	return r.AddSections(ctx, sections...)
}

// AllSections scrolls the full section collection, vectors included.
func (r *SectionRepository) AllSections(ctx context.Context) ([]*core.Section, error) {
	var sections []*core.Section
	var offset *pb.PointId
	for {
		limit := uint32(256)
		resp, err := r.backend.points.Scroll(ctx, &pb.ScrollPoints{
			CollectionName: sectionCollection,
			Limit:          &limit,
			Offset:         offset,
			WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
			WithVectors:    &pb.WithVectorsSelector{SelectorOptions: &pb.WithVectorsSelector_Enable{Enable: true}},
		})
		if err != nil {
			return nil, fmt.Errorf("qdrant: scroll sections: %w", err)
		}
		for _, point := range resp.GetResult() {
			section := sectionFromPayload(core.ID(point.GetId().GetNum()), point.GetPayload())
			section.Vector = point.GetVectors().GetVector().GetData()
			sections = append(sections, section)
		}
		offset = resp.GetNextPageOffset()
		if offset == nil {
			break
		}
	}
	return sections, nil
}

func (r *SectionRepository) Count(ctx context.Context) (int, error) {
	return r.backend.countCollection(ctx, sectionCollection)
}
