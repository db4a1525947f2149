package crawler

import (
	"context"
	"fmt"
	"slices"
	"time"

	"eventsrag/pkg/runctx"
	"eventsrag/storage"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Stats summarises one scrape run.
type Stats struct {
	Found   int
	Skipped int
	Failed  int
	Written int
}

// Scraper ties crawling, extraction and article storage together.
type Scraper struct {
	crawler   *Crawler
	fetcher   Fetcher
	extractor *Extractor
	store     storage.ArticleRepository
	limiter   *rate.Limiter
	logger    *zap.Logger
}

func NewScraper(fetcher Fetcher, extractor *Extractor, store storage.ArticleRepository, politeDelay time.Duration, logger *zap.Logger) *Scraper {
	limit := rate.Inf
	if politeDelay > 0 {
		limit = rate.Every(politeDelay)
	}
	return &Scraper{
		crawler:   NewCrawler(fetcher, logger),
		fetcher:   fetcher,
		extractor: extractor,
		store:     store,
		limiter:   rate.NewLimiter(limit, 1),
		logger:    logger,
	}
}

// Run crawls from seedURL, records the discovered URL list and extracts every
// article that is not stored yet.
func (s *Scraper) Run(ctx context.Context, seedURL string, maxPages, maxDepth int) (Stats, error) {
	urls, err := s.crawler.Crawl(ctx, seedURL, maxPages, maxDepth)
	if err != nil {
		return Stats{}, fmt.Errorf("crawl: %w", err)
	}
	if err := s.store.WriteURLList(ctx, urls); err != nil {
		return Stats{}, err
	}
	return s.ExtractAll(ctx, seedURL, urls)
}

// ExtractAll processes urls in sorted order. Articles that already have a
// file are skipped without a request. A failed fetch only skips that article;
// a failed write aborts the run.
func (s *Scraper) ExtractAll(ctx context.Context, seedURL string, urls []string) (Stats, error) {
	logger := runctx.Logger(ctx, s.logger)
	stats := Stats{Found: len(urls)}

	for _, articleURL := range slices.Sorted(slices.Values(urls)) {
		if s.store.Exists(seedURL, articleURL) {
			stats.Skipped++
			logger.Debug("article already stored", zap.String("url", articleURL))
			continue
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return stats, err
		}

		page, err := s.fetcher.Fetch(ctx, articleURL)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return stats, ctxErr
			}
			stats.Failed++
			logger.Warn("article fetch failed", zap.String("url", articleURL), zap.Error(err))
			continue
		}

		article, err := s.extractor.Extract(ctx, page)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return stats, ctxErr
			}
			stats.Failed++
			logger.Warn("article extraction failed", zap.String("url", articleURL), zap.Error(err))
			continue
		}
		article.URL = articleURL

		name, err := s.store.Save(ctx, seedURL, article)
		if err != nil {
			return stats, err
		}
		stats.Written++
		logger.Info("article saved",
			zap.String("url", articleURL),
			zap.String("file", name),
			zap.Int("paragraphs", len(article.Paragraphs)))
	}

	logger.Info("scrape finished",
		zap.Int("found", stats.Found),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
		zap.Int("written", stats.Written))
	return stats, nil
}
