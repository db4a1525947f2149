package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

const systemPrompt = "You are a translator that translates Russian text to English."

var ErrEmptyTranslation = errors.New("translation returned no content")

type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// LLMTranslator translates through a chat completion model.
type LLMTranslator struct {
	model   llms.Model
	options []llms.CallOption
}

func NewLLMTranslator(model llms.Model, modelName string, temperature float64, maxTokens int) *LLMTranslator {
	return &LLMTranslator{
		model: model,
		options: []llms.CallOption{
			llms.WithModel(modelName),
			llms.WithTemperature(temperature),
			llms.WithMaxTokens(maxTokens),
		},
	}
}

func (t *LLMTranslator) Translate(ctx context.Context, text string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, text),
	}

	resp, err := t.model.GenerateContent(ctx, messages, t.options...)
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyTranslation
	}

	translated := strings.TrimSpace(resp.Choices[0].Content)
	if translated == "" {
		return "", ErrEmptyTranslation
	}
	return translated, nil
}

// OrOriginal translates text and falls back to the input on failure. The
// error is still returned so the caller can decide whether to log it.
func OrOriginal(ctx context.Context, t Translator, text string) (string, error) {
	translated, err := t.Translate(ctx, text)
	if err != nil {
		return text, err
	}
	return translated, nil
}
