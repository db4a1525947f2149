package qdrantdb

import (
	"context"
	"fmt"

	"eventsrag/repository"

	"github.com/qdrant/go-client/qdrant"
)

const (
	payloadText       = "text"
	payloadSourceFile = "source_file"
)

// Recreate drops the collection if present and creates it empty with cosine
// distance.
func (c *ArticleClient) Recreate(ctx context.Context) error {
	exists, err := c.Client.CollectionExists(ctx, c.collection)
	if err != nil {
		return fmt.Errorf("check collection %s: %w", c.collection, err)
	}
	if exists {
		if err := c.Client.DeleteCollection(ctx, c.collection); err != nil {
			return fmt.Errorf("delete collection %s: %w", c.collection, err)
		}
	}

	err = c.Client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: c.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     c.dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("err create collection %s: %w", c.collection, err)
	}
	return nil
}

func (c *ArticleClient) Upsert(ctx context.Context, points []repository.IndexPoint) error {
	if len(points) == 0 {
		return nil
	}
	_, err := c.Client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: c.collection,
		Wait:           qdrant.PtrOf(true),
		Points:         toPointStructs(points),
	})
	if err != nil {
		return fmt.Errorf("upsert %d points: %w", len(points), err)
	}
	return nil
}

// Search returns the nearest paragraphs to vector, best first.
func (c *ArticleClient) Search(ctx context.Context, vector []float32, limit uint64) ([]repository.SearchHit, error) {
	points, err := c.Client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: c.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(limit),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("query collection %s: %w", c.collection, err)
	}
	return hitsFrom(points), nil
}

func (c *ArticleClient) Count(ctx context.Context) (uint64, error) {
	n, err := c.Client.Count(ctx, &qdrant.CountPoints{
		CollectionName: c.collection,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("count collection %s: %w", c.collection, err)
	}
	return n, nil
}

func toPointStructs(points []repository.IndexPoint) []*qdrant.PointStruct {
	out := make([]*qdrant.PointStruct, 0, len(points))
	for _, p := range points {
		out = append(out, &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(p.ID),
			Vectors: qdrant.NewVectorsDense(p.Vector),
			Payload: qdrant.NewValueMap(map[string]any{
				payloadText:       p.Payload.Text,
				payloadSourceFile: p.Payload.SourceFile,
			}),
		})
	}
	return out
}

func hitsFrom(points []*qdrant.ScoredPoint) []repository.SearchHit {
	hits := make([]repository.SearchHit, 0, len(points))
	for _, p := range points {
		hits = append(hits, repository.SearchHit{
			Payload: payloadFrom(p.GetPayload()),
			Score:   p.GetScore(),
		})
	}
	return hits
}

func payloadFrom(values map[string]*qdrant.Value) repository.Payload {
	return repository.Payload{
		Text:       values[payloadText].GetStringValue(),
		SourceFile: values[payloadSourceFile].GetStringValue(),
	}
}

var _ repository.VectorIndex = (*ArticleClient)(nil)
