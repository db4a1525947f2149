package main

import (
	"fmt"
	"strings"

	"eventsrag/pkg/runctx"

	"github.com/spf13/cobra"
)

func newAskCommand(a *app) *cobra.Command {
	var showContext bool

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a single question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.TrimSpace(strings.Join(args, " "))
			if question == "" {
				return fmt.Errorf("question must not be blank")
			}

			ans, cleanup, err := a.newAnswerer()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := runctx.Start(cmd.Context(), "ask")
			result, err := ans.AnswerWithContext(ctx, question)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if showContext {
				for i, h := range result.Hits {
					fmt.Fprintf(out, "[%d] %.3f %s\n%s\n\n", i+1, h.Score, h.Payload.SourceFile, h.Payload.Text)
				}
			}
			fmt.Fprintf(out, "Answer:\n%s\n", result.Answer)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showContext, "show-context", false, "print the retrieved paragraphs")
	return cmd
}
