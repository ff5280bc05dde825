// Package app wires configuration into the components shared by the
// server and the command-line tool.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/cohere/internal/analysis"
	"github.com/dgallion1/cohere/internal/config"
	"github.com/dgallion1/cohere/internal/encoder"
	"github.com/dgallion1/cohere/internal/ocr"
	"github.com/dgallion1/cohere/internal/parser"
	"github.com/dgallion1/cohere/internal/segment"
)

// StatsWindow is how far back encoder latency stats look.
const StatsWindow = 5 * time.Minute

// Components are the long-lived pieces built from a Config.
type Components struct {
	Encoder  *encoder.Instrumented
	Analyzer *analysis.Analyzer
	Parse    parser.Options

	ocr *ocr.Client
}

// Close releases the OCR engine if one was started.
func (c *Components) Close() error {
	return c.ocr.Close()
}

// AnalysisConfig maps the flat settings onto segmentation policies.
func AnalysisConfig(cfg config.Config) analysis.Config {
	return analysis.Config{
		Paragraph: segment.CountThreshold{MinWords: cfg.ParagraphMinWords, MaxWords: cfg.ParagraphMaxWords},
		Chunk: segment.SimilarityGated{
			MinWords:  cfg.ChunkMinWords,
			MaxWords:  cfg.ChunkMaxWords,
			Threshold: cfg.ChunkSimilarity,
		},
		BlockMinWords: cfg.BlockMinWords,
	}
}

// StackConfig maps the flat settings onto the encoder stack.
func StackConfig(cfg config.Config) encoder.StackConfig {
	return encoder.StackConfig{
		Ollama:      encoder.OllamaConfig{Host: cfg.OllamaHost, Model: cfg.EmbedModel},
		BatchSize:   cfg.EmbedBatchSize,
		Concurrency: cfg.EmbedConcurrency,
		CacheSize:   cfg.EmbedCacheSize,
		StatsWindow: StatsWindow,
	}
}

// Build creates the encoder stack, the OCR engine and the analyzer.
// A missing OCR engine is logged and leaves scanned PDFs unsupported.
func Build(cfg config.Config, log *slog.Logger) (*Components, error) {
	enc, err := encoder.NewStack(StackConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("create encoder: %w", err)
	}

	c := &Components{
		Encoder:  enc,
		Analyzer: analysis.New(enc, AnalysisConfig(cfg), log),
		Parse:    parser.Options{FallbackPdftotext: cfg.PDFFallbackPdftotext},
	}

	client, err := ocr.New()
	switch {
	case errors.Is(err, ocr.ErrOCRNotEnabled):
		log.Info("ocr disabled, scanned pdfs will be rejected")
	case err != nil:
		log.Warn("ocr unavailable", "error", err)
	default:
		if err := client.SetLanguage(cfg.OCRLanguage); err != nil {
			client.Close()
			log.Warn("ocr language rejected", "language", cfg.OCRLanguage, "error", err)
			break
		}
		c.ocr = client
		c.Parse.OCR = client
		log.Info("ocr enabled", "language", cfg.OCRLanguage)
	}
	return c, nil
}
