package embedding

import "context"

type Client interface {
	// GetEmbeddings returns one vector per input text, in input order.
	GetEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}
