package crawler

import (
	"context"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"

	"eventsrag/pkg/runctx"

	"go.uber.org/zap"
)

type Crawler struct {
	fetcher Fetcher
	logger  *zap.Logger
}

func NewCrawler(fetcher Fetcher, logger *zap.Logger) *Crawler {
	return &Crawler{
		fetcher: fetcher,
		logger:  logger,
	}
}

// traversal is the state of one Crawl call. It is passed explicitly through
// the recursion; nothing is shared between calls.
type traversal struct {
	seed     string
	host     string
	maxDepth int
	visited  map[string]struct{}
	found    map[string]struct{}
	fetches  int
}

func (t *traversal) seen(u string) bool {
	_, ok := t.visited[u]
	return ok
}

func (t *traversal) sameDomain(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return u.Host == t.host
}

// ListingPages returns the pagination entry points for a seed: the seed
// itself, then seed/page/2 .. seed/page/maxPages.
func ListingPages(seedURL string, maxPages int) []string {
	if maxPages <= 0 {
		return nil
	}
	base := strings.TrimRight(seedURL, "/")
	pages := make([]string, 0, maxPages)
	pages = append(pages, seedURL)
	for n := 2; n <= maxPages; n++ {
		pages = append(pages, fmt.Sprintf("%s/page/%d", base, n))
	}
	return pages
}

// Crawl walks same-domain links depth first from every listing page and
// returns the sorted set of discovered article URLs. The seed URL itself is
// never reported. No URL is fetched twice within one call.
func (c *Crawler) Crawl(ctx context.Context, seedURL string, maxPages, maxDepth int) ([]string, error) {
	seed, err := url.Parse(seedURL)
	if err != nil {
		return nil, fmt.Errorf("parse seed url: %w", err)
	}
	if seed.Host == "" {
		return nil, fmt.Errorf("seed url %q has no host", seedURL)
	}

	st := &traversal{
		seed:     seedURL,
		host:     seed.Host,
		maxDepth: maxDepth,
		visited:  make(map[string]struct{}),
		found:    make(map[string]struct{}),
	}

	logger := runctx.Logger(ctx, c.logger)
	for _, page := range ListingPages(seedURL, maxPages) {
		if err := c.visit(ctx, logger, st, page, 0); err != nil {
			return nil, err
		}
	}

	urls := slices.Sorted(maps.Keys(st.found))
	logger.Info("crawl finished",
		zap.String("seed", seedURL),
		zap.Int("fetches", st.fetches),
		zap.Int("visited", len(st.visited)),
		zap.Int("articles", len(urls)))
	return urls, nil
}

func (c *Crawler) visit(ctx context.Context, logger *zap.Logger, st *traversal, pageURL string, depth int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if st.seen(pageURL) || depth > st.maxDepth {
		return nil
	}
	st.visited[pageURL] = struct{}{}

	st.fetches++
	page, err := c.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		logger.Warn("fetch failed, abandoning branch",
			zap.String("url", pageURL),
			zap.Int("depth", depth),
			zap.Error(err))
		return nil
	}

	links, err := ExtractLinks(page.Body, pageURL)
	if err != nil {
		logger.Debug("link extraction failed", zap.String("url", pageURL), zap.Error(err))
	}
	for _, link := range links {
		if !st.sameDomain(link) || st.seen(link) {
			continue
		}
		if err := c.visit(ctx, logger, st, link, depth+1); err != nil {
			return err
		}
	}

	if pageURL != st.seed {
		st.found[pageURL] = struct{}{}
	}
	return nil
}
