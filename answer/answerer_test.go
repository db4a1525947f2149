package answer

import (
	"context"
	"errors"
	"testing"

	"eventsrag/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

type fakeEmbedder struct {
	err   error
	texts []string
}

func (f *fakeEmbedder) GetEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	f.texts = append(f.texts, texts...)
	if f.err != nil {
		return nil, f.err
	}
	return [][]float32{{0.1, 0.2, 0.3}}, nil
}

type fakeSearcher struct {
	hits  []repository.SearchHit
	limit uint64
	err   error
}

func (f *fakeSearcher) Search(_ context.Context, _ []float32, limit uint64) ([]repository.SearchHit, error) {
	f.limit = limit
	return f.hits, f.err
}

type fakeModel struct {
	reply    string
	err      error
	messages []llms.MessageContent
	opts     llms.CallOptions
}

func (m *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.messages = messages
	for _, opt := range options {
		opt(&m.opts)
	}
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.reply}}}, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func (m *fakeModel) prompt(t *testing.T) string {
	t.Helper()
	require.Len(t, m.messages, 1)
	assert.Equal(t, llms.ChatMessageTypeHuman, m.messages[0].Role)
	require.Len(t, m.messages[0].Parts, 1)
	part, ok := m.messages[0].Parts[0].(llms.TextContent)
	require.True(t, ok)
	return part.Text
}

func hit(text string) repository.SearchHit {
	return repository.SearchHit{Payload: repository.Payload{Text: text, SourceFile: "a.json"}}
}

func TestAnswerer_BuildPrompt(t *testing.T) {
	a := New(&fakeEmbedder{}, &fakeSearcher{}, &fakeModel{}, "gpt-4o", 5, zap.NewNop())

	prompt, err := a.BuildPrompt("When is the jazz night?", []repository.SearchHit{hit("Jazz on Friday."), hit("Tickets at the door.")})
	require.NoError(t, err)
	assert.Equal(t, `You are a helpful assistant answering questions about events in Prague based on the provided context.

Use only the facts from the CONTEXT when answering the QUESTION.

CONTEXT:
Jazz on Friday.

Tickets at the door.

QUESTION:
When is the jazz night?

Answer in English.`, prompt)
}

func TestAnswerer_Answer(t *testing.T) {
	embedder := &fakeEmbedder{}
	searcher := &fakeSearcher{hits: []repository.SearchHit{hit("The Prague Spring festival starts on 12 May.")}}
	model := &fakeModel{reply: "It starts on 12 May."}
	a := New(embedder, searcher, model, "gpt-4o", 5, zap.NewNop())

	answer, err := a.Answer(context.Background(), "When does the festival start?")
	require.NoError(t, err)
	assert.Equal(t, "It starts on 12 May.", answer)

	assert.Equal(t, []string{"When does the festival start?"}, embedder.texts)
	assert.Equal(t, uint64(5), searcher.limit)
	assert.Equal(t, "gpt-4o", model.opts.Model)
	assert.Contains(t, model.prompt(t), "CONTEXT:\nThe Prague Spring festival starts on 12 May.\n\nQUESTION:")
}

func TestAnswerer_EmptyIndexStillAsksModel(t *testing.T) {
	model := &fakeModel{reply: "I don't know."}
	a := New(&fakeEmbedder{}, &fakeSearcher{}, model, "gpt-4o", 5, zap.NewNop())

	result, err := a.AnswerWithContext(context.Background(), "Anything on tonight?")
	require.NoError(t, err)
	assert.Equal(t, "I don't know.", result.Answer)
	assert.Empty(t, result.Hits)
	assert.Contains(t, model.prompt(t), "CONTEXT:\n\n\nQUESTION:\nAnything on tonight?")
}

func TestAnswerer_Errors(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name     string
		embedder *fakeEmbedder
		searcher *fakeSearcher
		model    *fakeModel
	}{
		{"embedding", &fakeEmbedder{err: boom}, &fakeSearcher{}, &fakeModel{}},
		{"search", &fakeEmbedder{}, &fakeSearcher{err: boom}, &fakeModel{}},
		{"completion", &fakeEmbedder{}, &fakeSearcher{}, &fakeModel{err: boom}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(tt.embedder, tt.searcher, tt.model, "gpt-4o", 5, zap.NewNop())
			_, err := a.Answer(context.Background(), "question")
			assert.ErrorIs(t, err, boom)
		})
	}
}
