// Package coherence scores how well consecutive sentences in a unit hang together.
package coherence

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/dgallion1/cohere/internal/doctree"
	"github.com/dgallion1/cohere/internal/encoder"
	"github.com/dgallion1/cohere/internal/segment"
)

const (
	// DefaultIncoherenceThreshold is the similarity below which an adjacent pair is incoherent.
	DefaultIncoherenceThreshold = 0.65
	// DefaultMinFragmentWords drops fragments with this many words or fewer.
	DefaultMinFragmentWords = 3
	// TargetScore is the score a unit should reach.
	TargetScore = 0.85
	// TargetWords is the length a unit should reach.
	TargetWords = 100
)

// Result is the coherence of one unit.
type Result struct {
	Score      float64 `json:"score"`
	Pairs      int     `json:"pairs"`
	Incoherent int     `json:"incoherent"`
}

// Scorer computes adjacent-sentence coherence with an Encoder.
type Scorer struct {
	enc       encoder.Encoder
	threshold float64
	minWords  int
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithThreshold sets the incoherence threshold.
func WithThreshold(t float64) Option {
	return func(s *Scorer) { s.threshold = t }
}

// WithMinFragmentWords sets the fragment filter; fragments with at most n words are ignored.
func WithMinFragmentWords(n int) Option {
	return func(s *Scorer) { s.minWords = n }
}

// NewScorer returns a Scorer backed by enc.
func NewScorer(enc encoder.Encoder, opts ...Option) *Scorer {
	s := &Scorer{
		enc:       enc,
		threshold: DefaultIncoherenceThreshold,
		minWords:  DefaultMinFragmentWords,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Score splits text on terminal punctuation and averages the cosine similarity
// of adjacent sentences.
func (s *Scorer) Score(ctx context.Context, text string) (Result, error) {
	return s.ScoreSentences(ctx, segment.SplitTerminal(text))
}

// ScoreUnit scores the member sentences of u. Chunk sentences carry no
// punctuation, so their text cannot be re-split.
func (s *Scorer) ScoreUnit(ctx context.Context, u doctree.Unit) (Result, error) {
	texts := make([]string, len(u.Sentences))
	for i, sent := range u.Sentences {
		texts[i] = sent.Text
	}
	return s.ScoreSentences(ctx, texts)
}

// ScoreSentences averages the cosine similarity of adjacent sentences after
// dropping fragments too short to carry meaning. Fewer than two qualifying
// sentences are perfectly coherent and never reach the encoder.
func (s *Scorer) ScoreSentences(ctx context.Context, sentences []string) (Result, error) {
	var sents []string
	for _, frag := range sentences {
		if len(strings.Fields(frag)) > s.minWords {
			sents = append(sents, strings.TrimSpace(frag))
		}
	}
	if len(sents) < 2 {
		return Result{Score: 1.0}, nil
	}

	vecs, err := s.enc.Encode(ctx, sents)
	if err != nil {
		return Result{}, fmt.Errorf("encode sentences: %w", err)
	}
	if len(vecs) != len(sents) {
		return Result{}, fmt.Errorf("%w: got %d for %d", encoder.ErrShortResult, len(vecs), len(sents))
	}
	if err := encoder.CheckDimensions(vecs); err != nil {
		return Result{}, err
	}

	var total float64
	incoherent := 0
	for i := 0; i < len(vecs)-1; i++ {
		sim := encoder.Cosine(vecs[i], vecs[i+1])
		total += sim
		if sim < s.threshold {
			incoherent++
		}
	}
	pairs := len(vecs) - 1
	return Result{Score: total / float64(pairs), Pairs: pairs, Incoherent: incoherent}, nil
}

// Rate turns a result into a report row. position is 1-based.
func Rate(position int, u doctree.Unit, r Result) doctree.ScoredUnit {
	return doctree.ScoredUnit{
		Position:    position,
		Parent:      u.ParentID,
		Words:       u.WordCount,
		Score:       Round3(r.Score),
		Pairs:       r.Pairs,
		Incoherent:  r.Incoherent,
		BelowTarget: r.Score < TargetScore,
		UnderLength: u.WordCount < TargetWords,
		Text:        u.Text,
	}
}

// Round3 rounds v to three decimals.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
