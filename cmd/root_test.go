package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"eventsrag/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCommand()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"scrape", "ingest", "ask", "chat", "serve"})

	scrape, _, err := root.Find([]string{"scrape"})
	require.NoError(t, err)
	for _, flag := range []string{"seed", "max-pages", "max-depth"} {
		assert.NotNil(t, scrape.Flags().Lookup(flag), "scrape --%s", flag)
	}

	ask, _, err := root.Find([]string{"ask"})
	require.NoError(t, err)
	assert.NotNil(t, ask.Flags().Lookup("show-context"))
}

func TestAskRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Chdir(t.TempDir())

	root := newRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "ask", "what is on tonight?"})

	err := root.Execute()
	assert.ErrorIs(t, err, config.ErrMissingAPIKey)
}
