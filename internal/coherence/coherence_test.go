package coherence

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/cohere/internal/doctree"
	"github.com/dgallion1/cohere/internal/encoder"
)

// tableEncoder returns vectors looked up by the first word of each sentence.
type tableEncoder struct {
	vectors map[string][]float32
	calls   int
}

func (e *tableEncoder) Encode(_ context.Context, sentences []string) ([][]float32, error) {
	e.calls++
	out := make([][]float32, len(sentences))
	for i, s := range sentences {
		out[i] = e.vectors[strings.Fields(s)[0]]
	}
	return out, nil
}

// unitAt returns a vector whose cosine with {1, 0} is sim.
func unitAt(sim float64) []float32 {
	return []float32{float32(sim), float32(math.Sqrt(1 - sim*sim))}
}

func TestScore_SingleSentence(t *testing.T) {
	enc := &tableEncoder{}
	s := NewScorer(enc)

	r, err := s.Score(context.Background(), "Only one real sentence lives here. ok. no")
	require.NoError(t, err)
	assert.Equal(t, Result{Score: 1.0}, r)
	assert.Zero(t, enc.calls)
}

func TestScore_HighSimilarity(t *testing.T) {
	enc := &tableEncoder{vectors: map[string][]float32{
		"alpha": {1, 0},
		"beta":  unitAt(0.9),
	}}
	s := NewScorer(enc)

	r, err := s.Score(context.Background(), "alpha one two three. beta four five six.")
	require.NoError(t, err)
	assert.InDelta(t, 0.9, r.Score, 1e-6)
	assert.Equal(t, 1, r.Pairs)
	assert.Equal(t, 0, r.Incoherent)
}

func TestScore_LowSimilarity(t *testing.T) {
	enc := &tableEncoder{vectors: map[string][]float32{
		"alpha": {1, 0},
		"beta":  unitAt(0.5),
	}}
	s := NewScorer(enc)

	r, err := s.Score(context.Background(), "alpha one two three! beta four five six?")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, r.Score, 1e-6)
	assert.Equal(t, 1, r.Pairs)
	assert.Equal(t, 1, r.Incoherent)
}

func TestScore_OnlyAdjacentPairs(t *testing.T) {
	enc := &tableEncoder{vectors: map[string][]float32{
		"a": {1, 0},
		"b": {0, 1},
		"c": {1, 0},
	}}
	s := NewScorer(enc)

	r, err := s.Score(context.Background(), "a x y z. b x y z. c x y z.")
	require.NoError(t, err)
	assert.InDelta(t, 0.0, r.Score, 1e-9)
	assert.Equal(t, 2, r.Pairs)
	assert.Equal(t, 2, r.Incoherent)
}

func TestScore_EncoderError(t *testing.T) {
	boom := errors.New("boom")
	s := NewScorer(encoder.Func(func(context.Context, []string) ([][]float32, error) {
		return nil, boom
	}))

	_, err := s.Score(context.Background(), "one two three four. five six seven eight.")
	assert.ErrorIs(t, err, boom)
}

func TestScore_MixedDimensionsIsFatal(t *testing.T) {
	enc := &tableEncoder{vectors: map[string][]float32{
		"alpha": {1, 0},
		"beta":  {1, 0, 0},
	}}
	s := NewScorer(enc)

	_, err := s.Score(context.Background(), "alpha one two three. beta four five six.")
	assert.ErrorIs(t, err, encoder.ErrDimensionMismatch)
}

func TestScorer_Options(t *testing.T) {
	s := NewScorer(&tableEncoder{}, WithThreshold(0.5), WithMinFragmentWords(1))
	assert.Equal(t, 0.5, s.threshold)
	assert.Equal(t, 1, s.minWords)
}

func TestRate(t *testing.T) {
	u := doctree.NewUnit(0, "Introduction", []doctree.Sentence{{Text: "short unit."}}, nil)

	row := Rate(1, u, Result{Score: 0.84961, Pairs: 3, Incoherent: 1})
	assert.Equal(t, 1, row.Position)
	assert.Equal(t, "Introduction", row.Parent)
	assert.Equal(t, 0.85, row.Score)
	assert.True(t, row.BelowTarget, "unrounded score decides the flag")
	assert.True(t, row.UnderLength)
	assert.Equal(t, 2, row.Words)

	row = Rate(2, u, Result{Score: 1.0})
	assert.False(t, row.BelowTarget)
}

func TestScoreUnit_UsesMemberSentences(t *testing.T) {
	enc := &tableEncoder{vectors: map[string][]float32{
		"alpha": {1, 0},
		"beta":  unitAt(0.9),
	}}
	s := NewScorer(enc)
	u := doctree.NewUnit(0, "b", []doctree.Sentence{
		{Text: "alpha one two three"},
		{Text: "beta four five six"},
	}, nil)

	r, err := s.ScoreUnit(context.Background(), u)
	require.NoError(t, err)
	assert.InDelta(t, 0.9, r.Score, 1e-6)
	assert.Equal(t, 1, r.Pairs)
}
