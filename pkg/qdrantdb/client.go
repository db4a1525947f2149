package qdrantdb

import (
	"fmt"

	"github.com/qdrant/go-client/qdrant"
)

type Config struct {
	Host       string
	Port       int // gRPC port
	APIKey     string
	UseTLS     bool
	Collection string
	Dimension  uint64
}

// ArticleClient is the vector index for article paragraphs.
type ArticleClient struct {
	Client     *qdrant.Client
	collection string
	dimension  uint64
}

func NewClient(cfg Config) (*ArticleClient, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("connect qdrant %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return &ArticleClient{
		Client:     client,
		collection: cfg.Collection,
		dimension:  cfg.Dimension,
	}, nil
}

func (c *ArticleClient) Close() error {
	return c.Client.Close()
}
