package main

import (
	"eventsrag/pkg/runctx"
	"eventsrag/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newChatCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive terminal chat",
		RunE: func(cmd *cobra.Command, args []string) error {
			ans, cleanup, err := a.newAnswerer()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := runctx.Start(cmd.Context(), "chat")
			p := tea.NewProgram(tui.New(ctx, ans), tea.WithAltScreen(), tea.WithContext(ctx))
			_, err = p.Run()
			return err
		},
	}
}
