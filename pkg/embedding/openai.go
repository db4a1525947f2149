package embedding

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
)

// OpenAI embeds texts through an OpenAI-compatible embeddings endpoint.
// Texts are sent verbatim; newlines are not stripped.
type OpenAI struct {
	embedder *embeddings.EmbedderImpl
}

func NewOpenAI(client embeddings.EmbedderClient, batchSize int) (*OpenAI, error) {
	embedder, err := embeddings.NewEmbedder(client,
		embeddings.WithBatchSize(batchSize),
		embeddings.WithStripNewLines(false),
	)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	return &OpenAI{embedder: embedder}, nil
}

func (o *OpenAI) GetEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vectors, err := o.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed documents: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embed documents: got %d vectors for %d texts", len(vectors), len(texts))
	}
	return vectors, nil
}

var _ Client = (*OpenAI)(nil)
