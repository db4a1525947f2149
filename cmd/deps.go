package main

import (
	"fmt"
	"path/filepath"

	"eventsrag/answer"
	"eventsrag/crawler"
	"eventsrag/pkg/embedding"
	"eventsrag/pkg/qdrantdb"
	"eventsrag/translate"

	"github.com/tmc/langchaingo/llms/openai"
)

func (a *app) newLLM() (*openai.LLM, error) {
	if err := a.cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	opts := []openai.Option{
		openai.WithToken(a.cfg.OpenAI.APIKey),
		openai.WithModel(a.cfg.OpenAI.CompletionModel),
		openai.WithEmbeddingModel(a.cfg.OpenAI.EmbeddingModel),
	}
	if a.cfg.OpenAI.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(a.cfg.OpenAI.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}
	return llm, nil
}

func (a *app) newEmbedder(llm *openai.LLM) (*embedding.OpenAI, error) {
	return embedding.NewOpenAI(llm, a.cfg.Ingest.EmbedBatchSize)
}

func (a *app) newQdrant() (*qdrantdb.ArticleClient, error) {
	q := a.cfg.Qdrant
	return qdrantdb.NewClient(qdrantdb.Config{
		Host:       q.Host,
		Port:       q.Port,
		APIKey:     q.APIKey,
		UseTLS:     q.UseTLS,
		Collection: q.Collection,
		Dimension:  uint64(q.Dimension),
	})
}

func (a *app) newTranslator(llm *openai.LLM) *translate.LLMTranslator {
	o := a.cfg.OpenAI
	return translate.NewLLMTranslator(llm, o.TranslationModel, o.TranslationTemperature, o.TranslationMaxTokens)
}

// newFetcher returns the fetcher and a cleanup func for its optional state db.
func (a *app) newFetcher() (*crawler.CollyFetcher, func(), error) {
	s := a.cfg.Scrape
	transport, err := crawler.NewTransport(s.ProxyURL)
	if err != nil {
		return nil, nil, err
	}

	opts := crawler.FetcherOptions{
		UserAgent: s.UserAgent,
		Timeout:   s.RequestTimeout,
		Transport: transport,
	}
	cleanup := func() {}
	if s.StatePath != "" {
		state := crawler.NewBoltStorage(filepath.Clean(s.StatePath))
		opts.Storage = state
		cleanup = func() { state.Close() }
	}

	fetcher, err := crawler.NewCollyFetcher(opts)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return fetcher, cleanup, nil
}

// newAnswerer wires the answer pipeline and returns a cleanup func.
func (a *app) newAnswerer() (*answer.Answerer, func(), error) {
	llm, err := a.newLLM()
	if err != nil {
		return nil, nil, err
	}
	embedder, err := a.newEmbedder(llm)
	if err != nil {
		return nil, nil, err
	}
	index, err := a.newQdrant()
	if err != nil {
		return nil, nil, err
	}

	ans := answer.New(embedder, index, llm, a.cfg.OpenAI.CompletionModel, a.cfg.Qdrant.TopK, a.logger)
	return ans, func() { index.Close() }, nil
}
