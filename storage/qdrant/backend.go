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

// Package qdrant provides repository implementations backed by a Qdrant
// server over gRPC. It mirrors the badger backend's contracts: one
// collection for whole songs, one for lyric sections, cosine distance
// for both. Use it when the corpus outgrows a brute-force scan.
package qdrant

import (
	"context"
	"fmt"
	"log/slog"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	songCollection     = "lyrica_songs"
	sectionCollection  = "lyrica_sections"
	manifestCollection = "lyrica_manifest"

	// Single well-known point id for the index manifest.
	manifestPointId = uint64(1)
)

// Backend owns the gRPC connection and the points/collections clients
// shared by the repositories.
type Backend struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	logger      *slog.Logger
}

// OpenBackend dials the Qdrant server at addr (host:port).
func OpenBackend(addr string, logger *slog.Logger) (*Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant: dial %s: %w", addr, err)
	}
	return &Backend{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		logger:      logger,
	}, nil
}

// Close closes the underlying gRPC connection.
func (b *Backend) Close() error {
	return b.conn.Close()
}

// EnsureCollections creates the song and section collections if they do
// not exist yet. dims is the embedding dimensionality; both collections
// use cosine distance.
func (b *Backend) EnsureCollections(ctx context.Context, dims int) error {
	if err := b.ensureCollection(ctx, songCollection, dims); err != nil {
		return err
	}
	if err := b.ensureCollection(ctx, sectionCollection, dims); err != nil {
		return err
	}
	// The manifest collection holds a single bookkeeping point; its
	// vector is a placeholder.
	return b.ensureCollection(ctx, manifestCollection, 1)
}

func (b *Backend) ensureCollection(ctx context.Context, name string, dims int) error {
	list, err := b.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("qdrant: list collections: %w", err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == name {
			return nil
		}
	}

	_, err = b.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: name,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(dims),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("qdrant: create collection %s: %w", name, err)
	}
	b.logger.Info("created qdrant collection", "name", name, "dims", dims)
	return nil
}

func (b *Backend) countCollection(ctx context.Context, name string) (int, error) {
	exact := true
	resp, err := b.points.Count(ctx, &pb.CountPoints{
		CollectionName: name,
		Exact:          &exact,
	})
	if err != nil {
		return 0, fmt.Errorf("qdrant: count %s: %w", name, err)
	}
	return int(resp.GetResult().GetCount()), nil
}

func fieldMatchInt(key string, value int64) *pb.Condition {
	return &pb.Condition{
		ConditionOneOf: &pb.Condition_Field{
			Field: &pb.FieldCondition{
				Key: key,
				Match: &pb.Match{
					MatchValue: &pb.Match_Integer{Integer: value},
				},
			},
		},
	}
}
