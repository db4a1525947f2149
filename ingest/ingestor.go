package ingest

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"eventsrag/pkg/embedding"
	"eventsrag/pkg/runctx"
	"eventsrag/repository"

	"go.uber.org/zap"
)

var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// ArticleSource is the stored article set to index.
type ArticleSource interface {
	List(ctx context.Context) ([]string, error)
	Load(ctx context.Context, name string) (*repository.ArticleRecord, error)
}

type Options struct {
	MinParagraphChars int
	EmbedBatchSize    int
	UpsertBatchSize   int
	Dimension         int
}

func DefaultOptions() Options {
	return Options{
		MinParagraphChars: 20,
		EmbedBatchSize:    50,
		UpsertBatchSize:   20,
		Dimension:         1536,
	}
}

type Ingestor struct {
	index    repository.VectorIndex
	embedder embedding.Client
	opts     Options
	logger   *zap.Logger
}

func New(index repository.VectorIndex, embedder embedding.Client, opts Options, logger *zap.Logger) *Ingestor {
	def := DefaultOptions()
	if opts.EmbedBatchSize <= 0 {
		opts.EmbedBatchSize = def.EmbedBatchSize
	}
	if opts.UpsertBatchSize <= 0 {
		opts.UpsertBatchSize = def.UpsertBatchSize
	}
	return &Ingestor{
		index:    index,
		embedder: embedder,
		opts:     opts,
		logger:   logger,
	}
}

// Qualifies reports whether a paragraph is long enough to be indexed.
func (i *Ingestor) Qualifies(paragraph string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(paragraph)) > i.opts.MinParagraphChars
}

// Ingest rebuilds the index from scratch: the collection is recreated, every
// qualifying paragraph is embedded and upserted with ids 0..n-1 in article
// file order. It returns the number of points written.
func (i *Ingestor) Ingest(ctx context.Context, source ArticleSource) (int, error) {
	logger := runctx.Logger(ctx, i.logger)

	if err := i.index.Recreate(ctx); err != nil {
		return 0, fmt.Errorf("recreate index: %w", err)
	}

	texts, payloads, err := i.collect(ctx, source)
	if err != nil {
		return 0, err
	}
	logger.Info("paragraphs collected", zap.Int("paragraphs", len(texts)))
	if len(texts) == 0 {
		return 0, nil
	}

	vectors, err := i.embed(ctx, texts)
	if err != nil {
		return 0, err
	}

	points := make([]repository.IndexPoint, len(texts))
	for n := range texts {
		points[n] = repository.IndexPoint{
			ID:      uint64(n),
			Vector:  vectors[n],
			Payload: payloads[n],
		}
	}

	written := 0
	for batch := range slices.Chunk(points, i.opts.UpsertBatchSize) {
		if err := i.index.Upsert(ctx, batch); err != nil {
			return written, fmt.Errorf("upsert points %d-%d: %w", written, written+len(batch)-1, err)
		}
		written += len(batch)
		logger.Debug("points upserted", zap.Int("written", written), zap.Int("total", len(points)))
	}

	logger.Info("ingest finished", zap.Int("points", written))
	return written, nil
}

func (i *Ingestor) collect(ctx context.Context, source ArticleSource) ([]string, []repository.Payload, error) {
	names, err := source.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list articles: %w", err)
	}

	var texts []string
	var payloads []repository.Payload
	for _, name := range names {
		article, err := source.Load(ctx, name)
		if err != nil {
			return nil, nil, err
		}
		for _, para := range article.Paragraphs {
			if !i.Qualifies(para) {
				continue
			}
			texts = append(texts, para)
			payloads = append(payloads, repository.Payload{Text: para, SourceFile: name})
		}
	}
	return texts, payloads, nil
}

func (i *Ingestor) embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for batch := range slices.Chunk(texts, i.opts.EmbedBatchSize) {
		got, err := i.embedder.GetEmbeddings(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("embed paragraphs %d-%d: %w", len(vectors), len(vectors)+len(batch)-1, err)
		}
		if len(got) != len(batch) {
			return nil, fmt.Errorf("embed paragraphs: got %d vectors for %d texts", len(got), len(batch))
		}
		for _, v := range got {
			if len(v) != i.opts.Dimension {
				return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(v), i.opts.Dimension)
			}
		}
		vectors = append(vectors, got...)
	}
	return vectors, nil
}
