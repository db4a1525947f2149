package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"eventsrag/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seed = "https://www.vinegret.cz/646868/afisha-1"

func TestFileName(t *testing.T) {
	tests := []struct {
		name       string
		articleURL string
		want       string
	}{
		{"relative path", seed + "/koncert-v-rudolfinum", "koncert-v-rudolfinum.json"},
		{"nested path", seed + "/2024/05/vystavka/", "2024_05_vystavka.json"},
		{"unsafe chars", seed + "/a?b=c*d", "a_b=c_d.json"},
		{"seed itself", seed, "index.json"},
		{"other prefix", "https://www.vinegret.cz/12345/post", "https___www.vinegret.cz_12345_post.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(seed, tt.articleURL))
		})
	}
}

func TestArticleFiles_SaveLoad(t *testing.T) {
	ctx := context.Background()
	files, err := NewArticleFiles(t.TempDir())
	require.NoError(t, err)

	article := &repository.ArticleRecord{
		URL:   seed + "/jazz-night",
		Title: "Jazz <night> in Prague",
		Meta: repository.ArticleMeta{
			Created: "2024-05-01T10:00:00+00:00",
			Updated: "2024-05-02T10:00:00+00:00",
			Tags:    []string{"prague-events", "music"},
		},
		Paragraphs: []string{"Концерт в субботу", "Tickets & info"},
	}

	assert.False(t, files.Exists(seed, article.URL))

	name, err := files.Save(ctx, seed, article)
	require.NoError(t, err)
	assert.Equal(t, "jazz-night.json", name)
	assert.True(t, files.Exists(seed, article.URL))

	raw, err := os.ReadFile(files.PathFor(seed, article.URL))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Концерт в субботу", "non-ascii text is written verbatim")
	assert.Contains(t, string(raw), "Jazz <night>", "html is not escaped")
	assert.Contains(t, string(raw), "\n    \"title\"", "four space indentation")

	loaded, err := files.Load(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, article, loaded)
}

func TestArticleFiles_List(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	files, err := NewArticleFiles(dir)
	require.NoError(t, err)

	for _, slug := range []string{"b", "a", "c"} {
		_, err := files.Save(ctx, seed, &repository.ArticleRecord{URL: seed + "/" + slug})
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, jsonDir, "notes.txt"), []byte("x"), 0o644))

	names, err := files.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.json", "b.json", "c.json"}, names)
}

func TestArticleFiles_LoadMissing(t *testing.T) {
	files, err := NewArticleFiles(t.TempDir())
	require.NoError(t, err)

	_, err = files.Load(context.Background(), "missing.json")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestArticleFiles_WriteURLList(t *testing.T) {
	files, err := NewArticleFiles(t.TempDir())
	require.NoError(t, err)

	urls := []string{seed + "/b", seed + "/a"}
	require.NoError(t, files.WriteURLList(context.Background(), urls))

	data, err := os.ReadFile(files.URLListPath())
	require.NoError(t, err)
	assert.Equal(t, []string{seed + "/a", seed + "/b"}, strings.Fields(string(data)))
	assert.Equal(t, seed+"/b", urls[0], "input slice is left untouched")
}
