// Package config loads service settings: defaults, then an optional TOML
// file named by COHERE_CONFIG, then environment variables (env wins).
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Port string `toml:"port"`

	// Auth
	APIKey string `toml:"api_key"`

	// Embeddings
	OllamaHost       string `toml:"ollama_host"`
	EmbedModel       string `toml:"embed_model"`
	EmbedBatchSize   int    `toml:"embed_batch_size"`
	EmbedConcurrency int    `toml:"embed_concurrency"`
	EmbedCacheSize   int    `toml:"embed_cache_size"`

	// Segmentation
	ParagraphMinWords int     `toml:"paragraph_min_words"`
	ParagraphMaxWords int     `toml:"paragraph_max_words"`
	ChunkMinWords     int     `toml:"chunk_min_words"`
	ChunkMaxWords     int     `toml:"chunk_max_words"`
	ChunkSimilarity   float64 `toml:"chunk_similarity"`
	BlockMinWords     int     `toml:"block_min_words"`

	// Worker pool
	WorkerCount  int `toml:"worker_count"`
	MaxQueueSize int `toml:"max_queue_size"`

	// Upload limits
	MaxUploadBytes int64 `toml:"max_upload_bytes"`

	// Job state
	JobTTL time.Duration `toml:"job_ttl"`

	// Extraction
	PDFFallbackPdftotext bool   `toml:"pdf_fallback_pdftotext"`
	OCRLanguage          string `toml:"ocr_language"`

	// Storage
	DBPath string `toml:"db_path"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Port: "8090",

		OllamaHost:       "http://localhost:11434",
		EmbedModel:       "all-minilm",
		EmbedBatchSize:   64,
		EmbedConcurrency: 4,
		EmbedCacheSize:   10000,

		ParagraphMinWords: 180,
		ParagraphMaxWords: 280,
		ChunkMinWords:     100,
		ChunkMaxWords:     250,
		ChunkSimilarity:   0.45,
		BlockMinWords:     150,

		WorkerCount:  4,
		MaxQueueSize: 100,

		MaxUploadBytes: 52428800, // 50MB

		JobTTL: 1 * time.Hour,

		PDFFallbackPdftotext: true,
		OCRLanguage:          "eng",

		DBPath: "cohere.db",
	}
}

// Load reads config: defaults -> TOML file -> env vars.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("COHERE_CONFIG"); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg.Port = envOr("PORT", cfg.Port)
	cfg.APIKey = envOr("COHERE_API_KEY", cfg.APIKey)

	cfg.OllamaHost = envOr("OLLAMA_HOST", cfg.OllamaHost)
	cfg.EmbedModel = envOr("EMBED_MODEL", cfg.EmbedModel)
	cfg.EmbedBatchSize = envInt("EMBED_BATCH_SIZE", cfg.EmbedBatchSize)
	cfg.EmbedConcurrency = envInt("EMBED_CONCURRENCY", cfg.EmbedConcurrency)
	cfg.EmbedCacheSize = envInt("EMBED_CACHE_SIZE", cfg.EmbedCacheSize)

	cfg.ParagraphMinWords = envInt("PARAGRAPH_MIN_WORDS", cfg.ParagraphMinWords)
	cfg.ParagraphMaxWords = envInt("PARAGRAPH_MAX_WORDS", cfg.ParagraphMaxWords)
	cfg.ChunkMinWords = envInt("CHUNK_MIN_WORDS", cfg.ChunkMinWords)
	cfg.ChunkMaxWords = envInt("CHUNK_MAX_WORDS", cfg.ChunkMaxWords)
	cfg.ChunkSimilarity = envFloat("CHUNK_SIMILARITY", cfg.ChunkSimilarity)
	cfg.BlockMinWords = envInt("BLOCK_MIN_WORDS", cfg.BlockMinWords)

	cfg.WorkerCount = envInt("WORKER_COUNT", cfg.WorkerCount)
	cfg.MaxQueueSize = envInt("MAX_QUEUE_SIZE", cfg.MaxQueueSize)
	cfg.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)
	cfg.JobTTL = envDuration("JOB_TTL", cfg.JobTTL)

	cfg.PDFFallbackPdftotext = envBool("PDF_FALLBACK_PDFTOTEXT", cfg.PDFFallbackPdftotext)
	cfg.OCRLanguage = envOr("OCR_LANGUAGE", cfg.OCRLanguage)
	cfg.DBPath = envOr("DB_PATH", cfg.DBPath)

	def := Default()
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = def.WorkerCount
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = def.MaxQueueSize
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = def.MaxUploadBytes
	}
	if cfg.EmbedBatchSize <= 0 {
		cfg.EmbedBatchSize = def.EmbedBatchSize
	}
	if cfg.EmbedConcurrency <= 0 {
		cfg.EmbedConcurrency = def.EmbedConcurrency
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = def.JobTTL
	}

	return cfg, nil
}

// Validate checks settings the service cannot run without. The CLI skips
// the API key check.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("COHERE_API_KEY is required")
	}
	return c.ValidateAnalysis()
}

// ValidateAnalysis checks the segmentation settings only.
func (c Config) ValidateAnalysis() error {
	if c.ParagraphMinWords <= 0 || c.ParagraphMinWords > c.ParagraphMaxWords {
		return fmt.Errorf("paragraph word bounds invalid: min %d, max %d", c.ParagraphMinWords, c.ParagraphMaxWords)
	}
	if c.ChunkMinWords <= 0 || c.ChunkMinWords > c.ChunkMaxWords {
		return fmt.Errorf("chunk word bounds invalid: min %d, max %d", c.ChunkMinWords, c.ChunkMaxWords)
	}
	if c.ChunkSimilarity < -1 || c.ChunkSimilarity > 1 {
		return fmt.Errorf("CHUNK_SIMILARITY must be in [-1, 1], got %v", c.ChunkSimilarity)
	}
	if c.BlockMinWords < 0 {
		return fmt.Errorf("BLOCK_MIN_WORDS must not be negative")
	}
	if c.EmbedModel == "" {
		return fmt.Errorf("EMBED_MODEL is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
