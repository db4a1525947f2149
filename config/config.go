package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var ErrMissingAPIKey = errors.New("OPENAI_API_KEY is required but not set")

type Config struct {
	OpenAI OpenAIConfig `yaml:"openai"`
	Qdrant QdrantConfig `yaml:"qdrant"`
	Scrape ScrapeConfig `yaml:"scrape"`
	Ingest IngestConfig `yaml:"ingest"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

type OpenAIConfig struct {
	APIKey                 string  `yaml:"api_key"`
	BaseURL                string  `yaml:"base_url"`
	TranslationModel       string  `yaml:"translation_model"`
	CompletionModel        string  `yaml:"completion_model"`
	EmbeddingModel         string  `yaml:"embedding_model"`
	TranslationTemperature float64 `yaml:"translation_temperature"`
	TranslationMaxTokens   int     `yaml:"translation_max_tokens"`
}

type QdrantConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"` // gRPC port
	APIKey     string `yaml:"api_key"`
	UseTLS     bool   `yaml:"use_tls"`
	Collection string `yaml:"collection"`
	Dimension  int    `yaml:"dimension"`
	TopK       int    `yaml:"top_k"`
}

type ScrapeConfig struct {
	SeedURL             string        `yaml:"seed_url"`
	MaxPages            int           `yaml:"max_pages"`
	MaxDepth            int           `yaml:"max_depth"`
	DataDir             string        `yaml:"data_dir"`
	PoliteDelay         time.Duration `yaml:"polite_delay"`
	UserAgent           string        `yaml:"user_agent"`
	ProxyURL            string        `yaml:"proxy_url"`
	RequestTimeout      time.Duration `yaml:"request_timeout"`
	StatePath           string        `yaml:"state_path"`
	TranslationBudget   int           `yaml:"translation_budget"`
	ReadabilityFallback bool          `yaml:"readability_fallback"`
}

type IngestConfig struct {
	MinParagraphChars int `yaml:"min_paragraph_chars"`
	EmbedBatchSize    int `yaml:"embed_batch_size"`
	UpsertBatchSize   int `yaml:"upsert_batch_size"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Debug bool `yaml:"debug"`
}

// Load reads .env (if present), the YAML file at path (if present) and then
// environment overrides. An empty path skips the YAML step.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Default() *Config {
	return &Config{
		OpenAI: OpenAIConfig{
			TranslationModel:       "gpt-3.5-turbo",
			CompletionModel:        "gpt-4o",
			EmbeddingModel:         "text-embedding-ada-002",
			TranslationTemperature: 0.3,
			TranslationMaxTokens:   4000,
		},
		Qdrant: QdrantConfig{
			Host:       "qdrant",
			Port:       6334,
			Collection: "prague_events",
			Dimension:  1536,
			TopK:       5,
		},
		Scrape: ScrapeConfig{
			SeedURL:           "https://www.vinegret.cz/646868/afisha-1",
			MaxPages:          20,
			MaxDepth:          3,
			DataDir:           "data/vinegret_articles",
			PoliteDelay:       100 * time.Millisecond,
			UserAgent:         "eventsrag-crawler/1.0",
			RequestTimeout:    60 * time.Second,
			TranslationBudget: 4000,
		},
		Ingest: IngestConfig{
			MinParagraphChars: 20,
			EmbedBatchSize:    50,
			UpsertBatchSize:   20,
		},
		Server: ServerConfig{
			Addr: ":8501",
		},
	}
}

func (c *Config) Validate() error {
	switch {
	case c.Scrape.SeedURL == "":
		return errors.New("scrape.seed_url is required")
	case c.Scrape.MaxPages <= 0:
		return fmt.Errorf("scrape.max_pages must be positive, got %d", c.Scrape.MaxPages)
	case c.Scrape.MaxDepth < 0:
		return fmt.Errorf("scrape.max_depth must not be negative, got %d", c.Scrape.MaxDepth)
	case c.Scrape.TranslationBudget <= 0:
		return fmt.Errorf("scrape.translation_budget must be positive, got %d", c.Scrape.TranslationBudget)
	case c.Qdrant.Dimension <= 0:
		return fmt.Errorf("qdrant.dimension must be positive, got %d", c.Qdrant.Dimension)
	case c.Qdrant.TopK <= 0:
		return fmt.Errorf("qdrant.top_k must be positive, got %d", c.Qdrant.TopK)
	case c.Ingest.EmbedBatchSize <= 0 || c.Ingest.UpsertBatchSize <= 0:
		return errors.New("ingest batch sizes must be positive")
	}
	return nil
}

// RequireAPIKey is called by the commands that talk to the language model.
func (c *Config) RequireAPIKey() error {
	if c.OpenAI.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func applyEnv(c *Config) error {
	setString(&c.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&c.OpenAI.BaseURL, "OPENAI_BASE_URL")
	setString(&c.Qdrant.Host, "QDRANT_HOST")
	setString(&c.Qdrant.APIKey, "QDRANT_API_KEY")
	setString(&c.Scrape.SeedURL, "SEED_URL")
	setString(&c.Scrape.DataDir, "DATA_DIR")
	setString(&c.Scrape.ProxyURL, "PROXY_URL")
	setString(&c.Server.Addr, "SERVER_ADDR")

	if v := os.Getenv("QDRANT_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("QDRANT_PORT: %w", err)
		}
		c.Qdrant.Port = port
	}
	if v := os.Getenv("LOG_DEBUG"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("LOG_DEBUG: %w", err)
		}
		c.Log.Debug = debug
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
