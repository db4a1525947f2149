package crawler

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"eventsrag/pkg/runctx"
	"eventsrag/repository"
	"eventsrag/translate"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"go.uber.org/zap"
)

var tagPrefixes = []string{"tag-", "category-"}

// Extractor turns a fetched blog post into an ArticleRecord with translated
// paragraphs.
type Extractor struct {
	translator          translate.Translator
	budget              int
	readabilityFallback bool
	logger              *zap.Logger
}

type ExtractorOption func(*Extractor)

// WithReadabilityFallback makes pages without any <p> text fall back to the
// readability article text, one paragraph per line.
func WithReadabilityFallback() ExtractorOption {
	return func(e *Extractor) {
		e.readabilityFallback = true
	}
}

// NewExtractor creates an extractor that translates at most budget bytes of
// paragraph text per article.
func NewExtractor(translator translate.Translator, budget int, logger *zap.Logger, opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		translator: translator,
		budget:     budget,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Extractor) Extract(ctx context.Context, page *Page) (*repository.ArticleRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	paragraphs := extractParagraphs(doc)
	if len(paragraphs) == 0 && e.readabilityFallback {
		paragraphs = readabilityParagraphs(page)
	}

	translated, err := e.translateWithinBudget(ctx, page.URL, paragraphs)
	if err != nil {
		return nil, err
	}

	return &repository.ArticleRecord{
		URL:        page.URL,
		Title:      extractTitle(doc),
		Meta:       extractMeta(doc),
		Paragraphs: translated,
	}, nil
}

// translateWithinBudget translates paragraphs in order until the next raw
// paragraph would push the running total of translated bytes over the
// budget; that paragraph and everything after it are dropped.
func (e *Extractor) translateWithinBudget(ctx context.Context, pageURL string, paragraphs []string) ([]string, error) {
	logger := runctx.Logger(ctx, e.logger)
	out := make([]string, 0, len(paragraphs))
	total := 0

	for i, para := range paragraphs {
		if total+len(para) > e.budget {
			logger.Info("translation budget reached, skipping rest of article",
				zap.String("url", pageURL),
				zap.Int("skipped", len(paragraphs)-i),
				zap.String("first_skipped", truncate(para, 50)))
			break
		}

		text, err := translate.OrOriginal(ctx, e.translator, para)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			logger.Warn("translation failed, keeping original text",
				zap.String("url", pageURL),
				zap.Error(err))
		}

		out = append(out, text)
		total += len(text)
	}
	return out, nil
}

func extractTitle(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("h1.entry-title").First().Text())
}

// extractMeta reads created/updated from the first two <time datetime>
// elements and tags from the first <article>'s tag-/category- classes.
func extractMeta(doc *goquery.Document) repository.ArticleMeta {
	meta := repository.ArticleMeta{Tags: []string{}}

	times := doc.Find("time[datetime]")
	if times.Length() > 0 {
		meta.Created = times.Eq(0).AttrOr("datetime", "")
		meta.Updated = meta.Created
		if times.Length() > 1 {
			meta.Updated = times.Eq(1).AttrOr("datetime", "")
		}
	}

	class, ok := doc.Find("article").First().Attr("class")
	if !ok {
		return meta
	}
	for _, token := range strings.Fields(class) {
		for _, prefix := range tagPrefixes {
			if strings.HasPrefix(token, prefix) {
				meta.Tags = append(meta.Tags, strings.TrimPrefix(token, prefix))
				break
			}
		}
	}
	return meta
}

func extractParagraphs(doc *goquery.Document) []string {
	var paragraphs []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if text := NormalizeText(s.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	return paragraphs
}

func readabilityParagraphs(page *Page) []string {
	pageURL, err := url.Parse(page.URL)
	if err != nil {
		return nil
	}
	article, err := readability.FromReader(bytes.NewReader(page.Body), pageURL)
	if err != nil {
		return nil
	}

	var paragraphs []string
	for _, line := range strings.Split(article.TextContent, "\n") {
		if text := NormalizeText(line); text != "" {
			paragraphs = append(paragraphs, text)
		}
	}
	return paragraphs
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
