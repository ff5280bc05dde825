// Package segment groups a stream of sentences into bounded, coherent units.
//
// A Policy decides, sentence by sentence, whether the open unit continues or
// is cut. Segment drives the iteration and materializes finished units. Each
// call owns all of its state, so independent calls never interfere.
package segment

import (
	"errors"
	"fmt"

	"github.com/dgallion1/cohere/internal/doctree"
	"github.com/dgallion1/cohere/internal/encoder"
)

var (
	ErrEmbeddingsRequired = errors.New("policy requires sentence embeddings")
	ErrEmbeddingCount     = errors.New("embedding count does not match sentence count")
)

// Segment groups sentences into units using policy. embeddings is optional
// unless the policy needs it; when given it must hold one vector per sentence
// and every unit carries the centroid of its members.
//
// A non-empty trailing unit is always emitted, even when it is shorter than
// the policy's minimum; consumers flag it as under-length. Unit ids count
// from 0.
func Segment(sentences []doctree.Sentence, policy Policy, embeddings [][]float32, parentID string) ([]doctree.Unit, error) {
	return SegmentFrom(sentences, policy, embeddings, parentID, 0)
}

// SegmentFrom is Segment with unit ids counting from firstID, for callers
// that segment several spans into one sequence.
func SegmentFrom(sentences []doctree.Sentence, policy Policy, embeddings [][]float32, parentID string, firstID int) ([]doctree.Unit, error) {
	if len(sentences) == 0 {
		return []doctree.Unit{}, nil
	}
	if embeddings == nil && policy.NeedsEmbeddings() {
		return nil, ErrEmbeddingsRequired
	}
	if embeddings != nil && len(embeddings) != len(sentences) {
		return nil, fmt.Errorf("%w: %d embeddings for %d sentences", ErrEmbeddingCount, len(embeddings), len(sentences))
	}
	if err := encoder.CheckDimensions(embeddings); err != nil {
		return nil, err
	}

	b := &buffer{withEmbeddings: embeddings != nil}
	var units []doctree.Unit

	flush := func() {
		if b.empty() {
			return
		}
		units = append(units, doctree.NewUnit(firstID+len(units), parentID, b.sentences, b.centroid()))
		b.reset()
	}

	for i, sent := range sentences {
		var emb []float32
		if embeddings != nil {
			emb = embeddings[i]
		}

		switch policy.Decide(b.state(), sent, emb) {
		case CutBefore:
			flush()
			b.add(sent, emb)
		case IncludeThenCut:
			b.add(sent, emb)
			flush()
		default:
			b.add(sent, emb)
		}
	}
	flush()

	return units, nil
}

// buffer accumulates the open unit with a running vector sum so the centroid
// is available at every step without re-averaging.
type buffer struct {
	withEmbeddings bool
	sentences      []doctree.Sentence
	words          int
	sum            []float64
}

func (b *buffer) empty() bool {
	return len(b.sentences) == 0
}

func (b *buffer) add(s doctree.Sentence, emb []float32) {
	b.sentences = append(b.sentences, s)
	b.words += s.WordCount()
	if !b.withEmbeddings {
		return
	}
	if b.sum == nil {
		b.sum = make([]float64, len(emb))
	}
	for i, v := range emb {
		b.sum[i] += float64(v)
	}
}

func (b *buffer) centroid() []float32 {
	if !b.withEmbeddings || b.empty() {
		return nil
	}
	out := make([]float32, len(b.sum))
	n := float64(len(b.sentences))
	for i, v := range b.sum {
		out[i] = float32(v / n)
	}
	return out
}

func (b *buffer) state() State {
	return State{WordCount: b.words, Size: len(b.sentences), Centroid: b.centroid()}
}

func (b *buffer) reset() {
	b.sentences = nil
	b.words = 0
	b.sum = nil
}
