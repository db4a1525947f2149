package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"eventsrag/repository"
)

const jsonDir = "json"

var unsafeFileChars = regexp.MustCompile(`[<>:"/\\|?*]`)

type ArticleRepository interface {
	Exists(seedURL, articleURL string) bool
	Save(ctx context.Context, seedURL string, article *repository.ArticleRecord) (string, error)
	Load(ctx context.Context, name string) (*repository.ArticleRecord, error)
	List(ctx context.Context) ([]string, error)
	WriteURLList(ctx context.Context, urls []string) error
}

// ArticleFiles stores one pretty-printed JSON document per article under
// <dir>/json and the crawled URL list as <dir>/vinegret_articles_urls.csv.
type ArticleFiles struct {
	dir string
}

func NewArticleFiles(dir string) (*ArticleFiles, error) {
	if err := os.MkdirAll(filepath.Join(dir, jsonDir), 0o755); err != nil {
		return nil, fmt.Errorf("create article dir: %w", err)
	}
	return &ArticleFiles{dir: dir}, nil
}

// FileName derives the article file name from its URL relative to the seed.
// Characters that are unsafe in file names become underscores.
func FileName(seedURL, articleURL string) string {
	rel := strings.TrimPrefix(articleURL, seedURL)
	rel = strings.Trim(rel, "/")
	rel = unsafeFileChars.ReplaceAllString(rel, "_")
	if rel == "" {
		rel = "index"
	}
	return rel + ".json"
}

func (f *ArticleFiles) PathFor(seedURL, articleURL string) string {
	return filepath.Join(f.dir, jsonDir, FileName(seedURL, articleURL))
}

func (f *ArticleFiles) Exists(seedURL, articleURL string) bool {
	_, err := os.Stat(f.PathFor(seedURL, articleURL))
	return err == nil
}

// Save writes the article atomically and returns its file name.
func (f *ArticleFiles) Save(ctx context.Context, seedURL string, article *repository.ArticleRecord) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := FileName(seedURL, article.URL)
	if err := f.writeJSON(filepath.Join(f.dir, jsonDir, name), article); err != nil {
		return "", fmt.Errorf("save article %s: %w", article.URL, err)
	}
	return name, nil
}

func (f *ArticleFiles) writeJSON(path string, v any) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".article-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (f *ArticleFiles) Load(ctx context.Context, name string) (*repository.ArticleRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(f.dir, jsonDir, name))
	if err != nil {
		return nil, fmt.Errorf("read article %s: %w", name, err)
	}
	var article repository.ArticleRecord
	if err := json.Unmarshal(data, &article); err != nil {
		return nil, fmt.Errorf("decode article %s: %w", name, err)
	}
	return &article, nil
}

// List returns the stored article file names in lexical order.
func (f *ArticleFiles) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Join(f.dir, jsonDir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list articles: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		names = append(names, e.Name())
	}
	slices.Sort(names)
	return names, nil
}

// WriteURLList replaces the URL list with the given URLs, one per line, sorted.
func (f *ArticleFiles) WriteURLList(ctx context.Context, urls []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sorted := slices.Clone(urls)
	slices.Sort(sorted)

	var b strings.Builder
	for _, u := range sorted {
		b.WriteString(u)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(f.URLListPath(), []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write url list: %w", err)
	}
	return nil
}

func (f *ArticleFiles) URLListPath() string {
	return filepath.Join(f.dir, "vinegret_articles_urls.csv")
}

var _ ArticleRepository = (*ArticleFiles)(nil)
