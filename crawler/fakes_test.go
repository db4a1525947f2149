package crawler

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"eventsrag/translate"
)

// mapFetcher serves pages from memory and counts requests per URL.
type mapFetcher struct {
	mu     sync.Mutex
	pages  map[string]string
	counts map[string]int
}

func newMapFetcher(pages map[string]string) *mapFetcher {
	return &mapFetcher{pages: pages, counts: make(map[string]int)}
}

func (f *mapFetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[rawURL]++
	body, ok := f.pages[rawURL]
	if !ok {
		return nil, fmt.Errorf("%w: %s: status 404", ErrFetch, rawURL)
	}
	return &Page{URL: rawURL, StatusCode: 200, Body: []byte(body)}, nil
}

func (f *mapFetcher) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.counts {
		n += c
	}
	return n
}

func linksPage(hrefs ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, h := range hrefs {
		fmt.Fprintf(&b, `<a href="%s">link</a>`, h)
	}
	b.WriteString("</body></html>")
	return b.String()
}

// upperTranslator "translates" by upper-casing, or fails for listed inputs.
type upperTranslator struct {
	fail  map[string]bool
	calls []string
}

func (t *upperTranslator) Translate(_ context.Context, text string) (string, error) {
	t.calls = append(t.calls, text)
	if t.fail[text] {
		return "", translate.ErrEmptyTranslation
	}
	return strings.ToUpper(text), nil
}
