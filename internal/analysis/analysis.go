// Package analysis drives the segmentation and coherence pipeline over
// extracted document text and assembles the resulting report.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/dgallion1/cohere/internal/coherence"
	"github.com/dgallion1/cohere/internal/doctree"
	"github.com/dgallion1/cohere/internal/encoder"
	"github.com/dgallion1/cohere/internal/segment"
	"github.com/dgallion1/cohere/internal/structure"
	"github.com/dgallion1/cohere/internal/textclean"
)

// Mode selects how a document is cut into units.
type Mode string

const (
	// ModeParagraphs cuts cleaned text at keyword sections, then by word count.
	ModeParagraphs Mode = "paragraphs"
	// ModeChunks cuts markdown-style text at headers, then by semantic similarity.
	ModeChunks Mode = "chunks"
)

// ParseMode validates a mode name. The empty string selects ModeParagraphs.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeParagraphs:
		return ModeParagraphs, nil
	case ModeChunks:
		return ModeChunks, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want %q or %q)", s, ModeParagraphs, ModeChunks)
	}
}

// Config holds the segmentation settings for both modes.
type Config struct {
	Paragraph     segment.CountThreshold
	Chunk         segment.SimilarityGated
	BlockMinWords int
}

// DefaultConfig returns the settings used when none are configured.
func DefaultConfig() Config {
	chunk := segment.DefaultSimilarityGated()
	chunk.Threshold = segment.BlockChunkSimilarity
	return Config{
		Paragraph:     segment.DefaultCountThreshold(),
		Chunk:         chunk,
		BlockMinWords: structure.DefaultMinWords,
	}
}

// Analyzer turns text into scored units. It holds no per-document state and
// is safe for concurrent use when its encoder is.
type Analyzer struct {
	enc    encoder.Encoder
	scorer *coherence.Scorer
	cfg    Config
	log    *slog.Logger
	now    func() time.Time
}

// New creates an Analyzer. enc is shared by chunking and scoring.
func New(enc encoder.Encoder, cfg Config, log *slog.Logger) *Analyzer {
	return &Analyzer{
		enc:    enc,
		scorer: coherence.NewScorer(enc),
		cfg:    cfg,
		log:    log,
		now:    time.Now,
	}
}

// Segment cuts text into units according to mode.
func (a *Analyzer) Segment(ctx context.Context, text string, mode Mode) ([]doctree.Unit, error) {
	switch mode {
	case ModeChunks:
		doc, err := a.Chunks(ctx, text)
		if err != nil {
			return nil, err
		}
		return doc.AllChunks(), nil
	default:
		return a.Paragraphs(text)
	}
}

// Paragraphs cleans text, detects keyword sections, and cuts each section
// into paragraphs by word count. Unit ids are positions across the whole text.
func (a *Analyzer) Paragraphs(text string) ([]doctree.Unit, error) {
	var units []doctree.Unit
	for _, sec := range textclean.DetectSections(textclean.Clean(text)) {
		secUnits, err := segment.SegmentFrom(segment.SplitSentences(sec.Content), a.cfg.Paragraph, nil, sec.Label, len(units))
		if err != nil {
			return nil, fmt.Errorf("segment section %q: %w", sec.Label, err)
		}
		units = append(units, secUnits...)
	}
	return units, nil
}

// Chunks splits markdown-style text into header-bounded blocks and each block
// into semantically similar chunks. Each block is encoded in one call.
// Chunk ids count from 0 within their block, and ParentID is the block id.
func (a *Analyzer) Chunks(ctx context.Context, text string) (*doctree.Document, error) {
	cleaned := textclean.Clean(text)
	doc := &doctree.Document{Text: cleaned}
	blocks := structure.Structure(cleaned, a.cfg.BlockMinWords)
	if err := doc.SetBlocks(blocks); err != nil {
		return nil, err
	}

	for _, b := range blocks {
		frags := segment.SplitTerminal(b.Text)
		sents := make([]doctree.Sentence, len(frags))
		for i, f := range frags {
			sents[i] = doctree.Sentence{Text: f}
		}

		var chunks []doctree.Unit
		if len(frags) > 0 {
			vecs, err := a.enc.Encode(ctx, frags)
			if err != nil {
				return nil, fmt.Errorf("encode block %d: %w", b.ID, err)
			}
			chunks, err = segment.Segment(sents, a.cfg.Chunk, vecs, strconv.Itoa(b.ID))
			if err != nil {
				return nil, fmt.Errorf("chunk block %d: %w", b.ID, err)
			}
		}
		if err := b.SetChunks(chunks); err != nil {
			return nil, err
		}
		a.log.Debug("chunked block", "block", b.ID, "label", b.StartLabel, "words", b.WordCount, "chunks", len(chunks))
	}
	return doc, nil
}

// Score rates every unit in order. Paragraphs are re-split on terminal
// punctuation; chunks are scored from their member sentences.
func (a *Analyzer) Score(ctx context.Context, units []doctree.Unit, mode Mode) ([]doctree.ScoredUnit, error) {
	out := make([]doctree.ScoredUnit, 0, len(units))
	for i, u := range units {
		var (
			r   coherence.Result
			err error
		)
		if mode == ModeChunks {
			r, err = a.scorer.ScoreUnit(ctx, u)
		} else {
			r, err = a.scorer.Score(ctx, u.Text)
		}
		if err != nil {
			return nil, fmt.Errorf("score unit %d: %w", i+1, err)
		}
		out = append(out, coherence.Rate(i+1, u, r))
	}
	return out, nil
}

// Analyze segments and scores extracted text and assembles a report.
// extraction is the time already spent producing ext.
func (a *Analyzer) Analyze(ctx context.Context, ext *doctree.Extraction, filename string, mode Mode, extraction time.Duration) (*doctree.Report, error) {
	start := a.now()

	units, err := a.Segment(ctx, ext.Text, mode)
	if err != nil {
		return nil, err
	}
	scored, err := a.Score(ctx, units, mode)
	if err != nil {
		return nil, err
	}
	return a.Assemble(filename, mode, ext, scored, extraction, a.now().Sub(start)), nil
}

// Assemble builds the report for scored units, stamping its id, timings and
// runtime flag.
func (a *Analyzer) Assemble(filename string, mode Mode, ext *doctree.Extraction, scored []doctree.ScoredUnit, extraction, analysis time.Duration) *doctree.Report {
	rep := NewReport(filename, mode, ext, scored)
	rep.ID = newReportID()
	rep.Timings = doctree.Timings{
		Extraction: extraction,
		Analysis:   analysis,
		Total:      extraction + analysis,
	}
	rep.RuntimeExceeded = RuntimeExceeded(rep.Pages, rep.Timings.Total)
	rep.CreatedAt = a.now().UTC()

	a.log.Info("analysis complete",
		"filename", filename,
		"mode", mode,
		"units", rep.UnitCount,
		"mean_score", rep.MeanScore,
		"duration_ms", analysis.Milliseconds(),
		"runtime_exceeded", rep.RuntimeExceeded,
	)
	return rep
}
