package main

import (
	"fmt"

	"eventsrag/ingest"
	"eventsrag/pkg/runctx"
	"eventsrag/storage"

	"github.com/spf13/cobra"
)

func newIngestCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Rebuild the vector index from the stored articles",
		RunE: func(cmd *cobra.Command, args []string) error {
			llm, err := a.newLLM()
			if err != nil {
				return err
			}
			embedder, err := a.newEmbedder(llm)
			if err != nil {
				return err
			}
			index, err := a.newQdrant()
			if err != nil {
				return err
			}
			defer index.Close()

			store, err := storage.NewArticleFiles(a.cfg.Scrape.DataDir)
			if err != nil {
				return err
			}

			ing := ingest.New(index, embedder, ingest.Options{
				MinParagraphChars: a.cfg.Ingest.MinParagraphChars,
				EmbedBatchSize:    a.cfg.Ingest.EmbedBatchSize,
				UpsertBatchSize:   a.cfg.Ingest.UpsertBatchSize,
				Dimension:         a.cfg.Qdrant.Dimension,
			}, a.logger)

			ctx := runctx.Start(cmd.Context(), "ingest")
			n, err := ing.Ingest(ctx, store)
			if err != nil {
				return err
			}

			count, err := index.Count(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d paragraphs into %q (%d points)\n", n, a.cfg.Qdrant.Collection, count)
			return nil
		},
	}
}
