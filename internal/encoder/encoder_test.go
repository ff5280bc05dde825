package encoder

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEncoder returns a deterministic vector derived from the sentence length
// and first byte, and counts calls and sentences seen.
type fakeEncoder struct {
	calls     atomic.Int32
	sentences atomic.Int32
	mu        sync.Mutex
	seen      [][]string
	err       error
}

func (f *fakeEncoder) Encode(_ context.Context, sentences []string) ([][]float32, error) {
	if len(sentences) == 0 {
		return nil, ErrEmptyInput
	}
	f.calls.Add(1)
	f.sentences.Add(int32(len(sentences)))
	f.mu.Lock()
	f.seen = append(f.seen, append([]string(nil), sentences...))
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(sentences))
	for i, s := range sentences {
		out[i] = vectorFor(s)
	}
	return out, nil
}

func vectorFor(s string) []float32 {
	first := float32(0)
	if s != "" {
		first = float32(s[0])
	}
	return []float32{float32(len(s)), first, 1}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0, 0}, []float32{1, 0, 0}, 1},
		{"orthogonal", []float32{1, 0, 0}, []float32{0, 1, 0}, 0},
		{"opposite", []float32{1, 2}, []float32{-1, -2}, -1},
		{"scaled", []float32{1, 2, 3}, []float32{2, 4, 6}, 1},
		{"mismatched", []float32{1, 2}, []float32{1, 2, 3}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"empty", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Cosine(tt.a, tt.b), 1e-9)
		})
	}
}

func TestCosine_KnownAngle(t *testing.T) {
	// 0.9 = cos(theta) for a unit vector rotated by theta.
	theta := math.Acos(0.9)
	a := []float32{1, 0}
	b := []float32{float32(math.Cos(theta)), float32(math.Sin(theta))}
	assert.InDelta(t, 0.9, Cosine(a, b), 1e-6)
}

func TestMean(t *testing.T) {
	got := Mean([][]float32{{1, 2}, {3, 4}, {5, 6}})
	assert.Equal(t, []float32{3, 4}, got)
	assert.Nil(t, Mean(nil))
}

func TestComputeHash(t *testing.T) {
	assert.Equal(t, "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9", ComputeHash("hello world"))
	assert.Equal(t, ComputeHash("same"), ComputeHash("same"))
}

func TestCachedEncoder_OnlyMissesReachBackend(t *testing.T) {
	fake := &fakeEncoder{}
	enc := NewCachedEncoder(fake, 100)

	first, err := enc.Encode(context.Background(), []string{"alpha", "beta", "alpha"})
	require.NoError(t, err)
	require.Len(t, first, 3)
	assert.Equal(t, first[0], first[2])
	assert.Equal(t, int32(2), fake.sentences.Load(), "duplicate sentence should be encoded once")

	second, err := enc.Encode(context.Background(), []string{"beta", "gamma"})
	require.NoError(t, err)
	assert.Equal(t, first[1], second[0])
	assert.Equal(t, []string{"gamma"}, fake.seen[len(fake.seen)-1])
	assert.Equal(t, 3, enc.Len())
}

func TestCachedEncoder_ReturnsCopies(t *testing.T) {
	enc := NewCachedEncoder(&fakeEncoder{}, 10)
	v1, err := enc.Encode(context.Background(), []string{"x"})
	require.NoError(t, err)
	v1[0][0] = 999

	v2, err := enc.Encode(context.Background(), []string{"x"})
	require.NoError(t, err)
	assert.NotEqual(t, float32(999), v2[0][0])
}

func TestCachedEncoder_EmptyInput(t *testing.T) {
	_, err := NewCachedEncoder(&fakeEncoder{}, 10).Encode(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestBatchedEncoder_PreservesOrder(t *testing.T) {
	fake := &fakeEncoder{}
	enc := NewBatchedEncoder(fake, 3, 4)

	var sentences []string
	for i := range 20 {
		sentences = append(sentences, strings.Repeat("s", i+1))
	}
	vecs, err := enc.Encode(context.Background(), sentences)
	require.NoError(t, err)
	require.Len(t, vecs, len(sentences))
	for i, s := range sentences {
		assert.Equal(t, vectorFor(s), vecs[i], "vector %d out of order", i)
	}
	assert.Equal(t, int32(7), fake.calls.Load())
}

func TestBatchedEncoder_PropagatesError(t *testing.T) {
	boom := errors.New("model unavailable")
	enc := NewBatchedEncoder(&fakeEncoder{err: boom}, 2, 2)
	_, err := enc.Encode(context.Background(), []string{"a", "b", "c", "d", "e"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestRetrying_RetriesTransientOnly(t *testing.T) {
	var attempts int
	flaky := Func(func(_ context.Context, s []string) ([][]float32, error) {
		attempts++
		if attempts < 3 {
			return nil, &RetryableError{StatusCode: 503, Message: "loading model"}
		}
		return [][]float32{{1}}, nil
	})
	r := NewRetrying(flaky)
	r.backoff = func(int) time.Duration { return 0 }

	vecs, err := r.Encode(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.Len(t, vecs, 1)
	assert.Equal(t, 3, attempts)

	attempts = 0
	fatal := errors.New("bad request")
	r = NewRetrying(Func(func(context.Context, []string) ([][]float32, error) {
		attempts++
		return nil, fatal
	}))
	_, err = r.Encode(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, attempts)
}

func TestRetrying_GivesUpAfterMaxRetries(t *testing.T) {
	var attempts int
	r := NewRetrying(Func(func(context.Context, []string) ([][]float32, error) {
		attempts++
		return nil, &RetryableError{StatusCode: 429}
	}))
	r.backoff = func(int) time.Duration { return 0 }

	_, err := r.Encode(context.Background(), []string{"a"})
	assert.True(t, IsRetryable(err))
	assert.Equal(t, MaxRetries, attempts)
}

func TestBackoff_Bounds(t *testing.T) {
	for attempt := range 8 {
		d := Backoff(attempt)
		assert.GreaterOrEqual(t, d, time.Second)
		assert.Less(t, d, 45*time.Second)
	}
}

func TestWrap_StackEncodes(t *testing.T) {
	fake := &fakeEncoder{}
	enc := Wrap(fake, StackConfig{BatchSize: 2, Concurrency: 2, CacheSize: 10})

	vecs, err := enc.Encode(context.Background(), []string{"one", "two", "three"})
	require.NoError(t, err)
	assert.Equal(t, vectorFor("three"), vecs[2])

	snap := enc.Stats().Snapshot()
	assert.Equal(t, 1, snap.Calls)
	assert.Equal(t, 3, snap.Sentences)
}

func TestCheckDimensions(t *testing.T) {
	assert.NoError(t, CheckDimensions(nil))
	assert.NoError(t, CheckDimensions([][]float32{{1, 2}, {3, 4}}))
	assert.ErrorIs(t, CheckDimensions([][]float32{{1, 2}, {3}}), ErrDimensionMismatch)
	assert.ErrorIs(t, CheckDimensions([][]float32{{}, {}}), ErrDimensionMismatch)
}

func TestBatchedEncoder_RejectsMixedDimensions(t *testing.T) {
	ragged := Func(func(_ context.Context, s []string) ([][]float32, error) {
		out := make([][]float32, len(s))
		for i := range out {
			out[i] = make([]float32, 2+i)
		}
		return out, nil
	})
	_, err := NewBatchedEncoder(ragged, 4, 1).Encode(context.Background(), []string{"a", "b"})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestBatchedEncoder_RejectsMixedDimensionsAcrossBatches(t *testing.T) {
	ragged := Func(func(_ context.Context, s []string) ([][]float32, error) {
		dim := 2
		if s[0] == "c" {
			dim = 3
		}
		out := make([][]float32, len(s))
		for i := range out {
			out[i] = make([]float32, dim)
			out[i][0] = 1
		}
		return out, nil
	})
	_, err := NewBatchedEncoder(ragged, 2, 1).Encode(context.Background(), []string{"a", "b", "c", "d"})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}
