package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"eventsrag/pkg/embedding"
	"eventsrag/pkg/runctx"
	"eventsrag/repository"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/prompts"
	"go.uber.org/zap"
)

const promptTemplate = `You are a helpful assistant answering questions about events in Prague based on the provided context.

Use only the facts from the CONTEXT when answering the QUESTION.

CONTEXT:
{context}

QUESTION:
{question}

Answer in English.`

var ErrEmptyAnswer = errors.New("completion returned no content")

// Searcher finds the stored paragraphs closest to a query vector.
type Searcher interface {
	Search(ctx context.Context, vector []float32, limit uint64) ([]repository.SearchHit, error)
}

type Answerer struct {
	embedder  embedding.Client
	index     Searcher
	model     llms.Model
	modelName string
	topK      int
	prompt    prompts.PromptTemplate
	logger    *zap.Logger
}

func New(embedder embedding.Client, index Searcher, model llms.Model, modelName string, topK int, logger *zap.Logger) *Answerer {
	return &Answerer{
		embedder:  embedder,
		index:     index,
		model:     model,
		modelName: modelName,
		topK:      topK,
		prompt: prompts.PromptTemplate{
			Template:       promptTemplate,
			InputVariables: []string{"context", "question"},
			TemplateFormat: prompts.TemplateFormatFString,
		},
		logger: logger,
	}
}

// Retrieve embeds the question and returns up to topK hits, best first.
func (a *Answerer) Retrieve(ctx context.Context, question string) ([]repository.SearchHit, error) {
	vectors, err := a.embedder.GetEmbeddings(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embed question: got %d vectors", len(vectors))
	}

	hits, err := a.index.Search(ctx, vectors[0], uint64(a.topK))
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	return hits, nil
}

// BuildPrompt renders the prompt with the hit texts joined by blank lines.
func (a *Answerer) BuildPrompt(question string, hits []repository.SearchHit) (string, error) {
	texts := make([]string, 0, len(hits))
	for _, h := range hits {
		texts = append(texts, h.Payload.Text)
	}
	prompt, err := a.prompt.Format(map[string]any{
		"context":  strings.Join(texts, "\n\n"),
		"question": question,
	})
	if err != nil {
		return "", fmt.Errorf("format prompt: %w", err)
	}
	return prompt, nil
}

// Answer retrieves context for question and asks the completion model. An
// empty index still produces a completion call with an empty context.
func (a *Answerer) Answer(ctx context.Context, question string) (string, error) {
	result, err := a.AnswerWithContext(ctx, question)
	if err != nil {
		return "", err
	}
	return result.Answer, nil
}

// Result is an answer together with the paragraphs it was grounded on.
type Result struct {
	Answer string
	Hits   []repository.SearchHit
}

func (a *Answerer) AnswerWithContext(ctx context.Context, question string) (*Result, error) {
	logger := runctx.Logger(ctx, a.logger)

	hits, err := a.Retrieve(ctx, question)
	if err != nil {
		return nil, err
	}
	prompt, err := a.BuildPrompt(question, hits)
	if err != nil {
		return nil, err
	}

	resp, err := a.model.GenerateContent(ctx,
		[]llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)},
		llms.WithModel(a.modelName),
	)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyAnswer
	}

	logger.Debug("question answered",
		zap.Int("hits", len(hits)),
		zap.Int("prompt_bytes", len(prompt)))
	return &Result{Answer: resp.Choices[0].Content, Hits: hits}, nil
}
