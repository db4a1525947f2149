package main

import (
	"fmt"

	"eventsrag/crawler"
	"eventsrag/pkg/runctx"
	"eventsrag/storage"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newScrapeCommand(a *app) *cobra.Command {
	var (
		seed     string
		maxPages int
		maxDepth int
	)

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Crawl the blog and store translated articles as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.cfg.Scrape
			if cmd.Flags().Changed("seed") {
				s.SeedURL = seed
			}
			if cmd.Flags().Changed("max-pages") {
				s.MaxPages = maxPages
			}
			if cmd.Flags().Changed("max-depth") {
				s.MaxDepth = maxDepth
			}

			llm, err := a.newLLM()
			if err != nil {
				return err
			}
			fetcher, cleanup, err := a.newFetcher()
			if err != nil {
				return err
			}
			defer cleanup()

			store, err := storage.NewArticleFiles(s.DataDir)
			if err != nil {
				return err
			}

			var extractorOpts []crawler.ExtractorOption
			if s.ReadabilityFallback {
				extractorOpts = append(extractorOpts, crawler.WithReadabilityFallback())
			}
			extractor := crawler.NewExtractor(a.newTranslator(llm), s.TranslationBudget, a.logger, extractorOpts...)
			scraper := crawler.NewScraper(fetcher, extractor, store, s.PoliteDelay, a.logger)

			ctx := runctx.Start(cmd.Context(), "scrape")
			runctx.Logger(ctx, a.logger).Info("scrape started",
				zap.String("seed", s.SeedURL),
				zap.Int("max_pages", s.MaxPages),
				zap.Int("max_depth", s.MaxDepth))

			stats, err := scraper.Run(ctx, s.SeedURL, s.MaxPages, s.MaxDepth)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "found %d articles: %d written, %d already stored, %d failed\n",
				stats.Found, stats.Written, stats.Skipped, stats.Failed)
			return nil
		},
	}

	cmd.Flags().StringVar(&seed, "seed", "", "seed listing URL (overrides config)")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "number of listing pages (overrides config)")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "link depth below each listing page (overrides config)")
	return cmd
}
