package segment

import (
	"strings"

	"github.com/dgallion1/cohere/internal/doctree"
	"github.com/dgallion1/cohere/internal/encoder"
)

// Decision is a boundary policy's verdict for one candidate sentence.
type Decision int

const (
	// Include appends the candidate to the open unit and continues.
	Include Decision = iota
	// CutBefore finalizes the open unit and starts a new one with the candidate.
	CutBefore
	// IncludeThenCut appends the candidate, then finalizes the unit.
	IncludeThenCut
)

// String returns a human-readable representation of the decision.
func (d Decision) String() string {
	switch d {
	case Include:
		return "include"
	case CutBefore:
		return "cut_before"
	case IncludeThenCut:
		return "include_then_cut"
	default:
		return "unknown"
	}
}

// State describes the open unit when a candidate is considered.
type State struct {
	WordCount int       // Words accumulated so far.
	Size      int       // Sentences accumulated so far.
	Centroid  []float32 // Mean embedding of the open unit; nil without embeddings.
}

// Policy decides where units end. Implementations are pure functions of
// their arguments.
type Policy interface {
	Decide(state State, candidate doctree.Sentence, embedding []float32) Decision
	// NeedsEmbeddings reports whether Decide reads embeddings and the centroid.
	NeedsEmbeddings() bool
}

// Paragraph defaults.
const (
	DefaultParagraphMinWords = 180
	DefaultParagraphMaxWords = 280
)

// CountThreshold cuts on word count alone: hard at MaxWords, and softly at
// MinWords once a sentence ends with a period.
type CountThreshold struct {
	MinWords int
	MaxWords int
}

// DefaultCountThreshold returns the paragraph policy defaults.
func DefaultCountThreshold() CountThreshold {
	return CountThreshold{MinWords: DefaultParagraphMinWords, MaxWords: DefaultParagraphMaxWords}
}

// Decide implements Policy. The decision is taken after appending the candidate.
func (p CountThreshold) Decide(state State, candidate doctree.Sentence, _ []float32) Decision {
	words := state.WordCount + candidate.WordCount()
	if words >= p.MaxWords {
		return IncludeThenCut
	}
	if words >= p.MinWords && strings.HasSuffix(candidate.Text, ".") {
		return IncludeThenCut
	}
	return Include
}

// NeedsEmbeddings implements Policy.
func (CountThreshold) NeedsEmbeddings() bool { return false }

// Chunk defaults. Call sites chunking whole blocks usually lower the threshold.
const (
	DefaultChunkMinWords   = 100
	DefaultChunkMaxWords   = 250
	DefaultChunkSimilarity = 0.7
	BlockChunkSimilarity   = 0.45
)

// SimilarityGated guarantees MinWords, enforces MaxWords, and in between
// compares the candidate with the running centroid of the open unit.
type SimilarityGated struct {
	MinWords  int
	MaxWords  int
	Threshold float64
}

// DefaultSimilarityGated returns the chunk policy defaults.
func DefaultSimilarityGated() SimilarityGated {
	return SimilarityGated{
		MinWords:  DefaultChunkMinWords,
		MaxWords:  DefaultChunkMaxWords,
		Threshold: DefaultChunkSimilarity,
	}
}

// Decide implements Policy. The decision is taken before appending the candidate.
func (p SimilarityGated) Decide(state State, candidate doctree.Sentence, embedding []float32) Decision {
	if state.Size == 0 || state.WordCount < p.MinWords {
		return Include
	}
	if state.WordCount+candidate.WordCount() > p.MaxWords {
		return CutBefore
	}
	if encoder.Cosine(embedding, state.Centroid) >= p.Threshold {
		return Include
	}
	return CutBefore
}

// NeedsEmbeddings implements Policy.
func (SimilarityGated) NeedsEmbeddings() bool { return true }
