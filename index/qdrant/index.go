package qdrant

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/qdrant/go-client/qdrant"

	"github.com/loamlabs/loam/core"
	"github.com/loamlabs/loam/index"
)

// Index implements index.VectorIndex backed by a Qdrant server.
type Index struct {
	client *qdrant.Client
	logger *slog.Logger
}

var _ index.VectorIndex = (*Index)(nil)

// New connects to a Qdrant server at the given host and gRPC port.
func New(host string, port int) (*Index, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to qdrant: %w", err)
	}

	return &Index{
		client: client,
		logger: slog.Default().With("component", "qdrant-index"),
	}, nil
}

// EnsureCollection creates the collection with cosine distance if missing.
func (i *Index) EnsureCollection(ctx context.Context, name string, dims int) error {
	exists, err := i.client.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("checking collection %q: %w", name, err)
	}
	if exists {
		return nil
	}

	i.logger.Info("creating collection", "collection", name, "dims", dims)
	err = i.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dims),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("creating collection %q: %w", name, err)
	}
	return nil
}

// Upsert inserts or replaces the given points in the collection.
func (i *Index) Upsert(ctx context.Context, name string, points []core.VectorPoint) error {
	if len(points) == 0 {
		return nil
	}

	converted := make([]*qdrant.PointStruct, len(points))
	for n, p := range points {
		converted[n] = &qdrant.PointStruct{
			Id:      qdrant.NewID(p.ID),
			Vectors: qdrant.NewVectors(p.Vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				"source_id":   p.Payload.SourceID,
				"chunk_index": int64(p.Payload.ChunkIndex),
				"chunk_total": int64(p.Payload.ChunkTotal),
				"text":        p.Payload.Text,
				"title":       p.Payload.Title,
				"ingested_at": p.Payload.IngestedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
			}),
		}
	}

	i.logger.Debug("upserting points", "collection", name, "count", len(converted))
	_, err := i.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: name,
		Points:         converted,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("upserting %d points into %q: %w", len(converted), name, err)
	}
	return nil
}

// Close closes the gRPC connection.
func (i *Index) Close() error {
	return i.client.Close()
}
