package repository

import "context"

// VectorIndex is the collection the ingestor writes to and the answerer reads from.
type VectorIndex interface {
	Recreate(ctx context.Context) error
	Upsert(ctx context.Context, points []IndexPoint) error
	Search(ctx context.Context, vector []float32, limit uint64) ([]SearchHit, error)
}

type IndexPoint struct {
	ID      uint64
	Vector  []float32
	Payload Payload
}

type Payload struct {
	Text       string `json:"text"`
	SourceFile string `json:"source_file"`
}

type SearchHit struct {
	Payload Payload
	Score   float32
}
