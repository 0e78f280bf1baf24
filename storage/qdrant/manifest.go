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

// ManifestRepository keeps the index manifest as a single point in a
// dedicated bookkeeping collection.
type ManifestRepository struct {
	backend *Backend
}

func NewManifestRepository(backend *Backend) (storage.ManifestRepository, error) {
	if backend == nil {
		return nil, fmt.Errorf("%w: backend is required", storage.ErrInvalidQuery)
	}
	return &ManifestRepository{backend: backend}, nil
}

func (r *ManifestRepository) Close() error {
	return nil
}

func (r *ManifestRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (r *ManifestRepository) SaveManifest(ctx context.Context, manifest *core.IndexManifest) error {
	now := time.Now()
	if manifest.BuiltAt.IsZero() {
		manifest.BuiltAt = now
	}
	manifest.UpdatedAt = now

	wait := true
	_, err := r.backend.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: manifestCollection,
		Wait:           &wait,
		Points: []*pb.PointStruct{
			{
				Id: &pb.PointId{
					PointIdOptions: &pb.PointId_Num{Num: manifestPointId},
				},
				Vectors: &pb.Vectors{
					VectorsOptions: &pb.Vectors_Vector{
						Vector: &pb.Vector{Data: []float32{0}},
					},
				},
				Payload: map[string]*pb.Value{
					"embedding_model": stringValue(manifest.EmbeddingModel),
					"dimensions":      intValue(int64(manifest.Dimensions)),
					"built_at":        intValue(manifest.BuiltAt.UnixMicro()),
					"updated_at":      intValue(manifest.UpdatedAt.UnixMicro()),
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("qdrant: save manifest: %w", err)
	}
	return nil
}

// LoadManifest returns nil without error when the index has never been
// built.
func (r *ManifestRepository) LoadManifest(ctx context.Context) (*core.IndexManifest, error) {
	resp, err := r.backend.points.Get(ctx, &pb.GetPoints{
		CollectionName: manifestCollection,
		Ids: []*pb.PointId{
			{PointIdOptions: &pb.PointId_Num{Num: manifestPointId}},
		},
		WithPayload: &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: load manifest: %w", err)
	}
	if len(resp.GetResult()) == 0 {
		return nil, nil
	}

	payload := resp.GetResult()[0].GetPayload()
	manifest := &core.IndexManifest{}
	for k, v := range payload {
		switch k {
		case "embedding_model":
			manifest.EmbeddingModel = v.GetStringValue()
		case "dimensions":
			manifest.Dimensions = int(v.GetIntegerValue())
		case "built_at":
			manifest.BuiltAt = time.UnixMicro(v.GetIntegerValue())
		case "updated_at":
			manifest.UpdatedAt = time.UnixMicro(v.GetIntegerValue())
		}
	}
	return manifest, nil
}
