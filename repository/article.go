package repository

// ArticleRecord is one scraped article as persisted on disk.
type ArticleRecord struct {
	URL        string      `json:"url"`
	Title      string      `json:"title"`
	Meta       ArticleMeta `json:"meta"`
	Paragraphs []string    `json:"paragraphs"`
}

type ArticleMeta struct {
	Created string   `json:"created"`
	Updated string   `json:"updated"`
	Tags    []string `json:"tags"`
}
