// Package encoder maps sentences to embedding vectors and compares them.
//
// An Encoder is constructed once at startup and passed by reference to every
// component that needs it. Implementations must be safe for concurrent use and
// deterministic for a fixed model: the same sentence yields the same vector.
package encoder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
)

// Common errors
var (
	ErrEmptyInput   = errors.New("no sentences to encode")
	ErrShortResult  = errors.New("encoder returned fewer vectors than sentences")
	ErrNoEmbeddings = errors.New("no embeddings returned")

	ErrDimensionMismatch = errors.New("embedding dimensions differ")
)

// Encoder turns sentences into fixed-size vectors, one per sentence, in input order.
type Encoder interface {
	Encode(ctx context.Context, sentences []string) ([][]float32, error)
}

// Func adapts a plain function to the Encoder interface.
type Func func(ctx context.Context, sentences []string) ([][]float32, error)

// Encode implements Encoder.
func (f Func) Encode(ctx context.Context, sentences []string) ([][]float32, error) {
	return f(ctx, sentences)
}

// Cosine returns the cosine similarity of a and b in [-1, 1].
// Mismatched or zero-length vectors, and zero vectors, compare as 0; callers
// comparing encoder output run CheckDimensions first.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	sim := dot / denom
	// Clamp rounding noise.
	return math.Max(-1, math.Min(1, sim))
}

// Mean returns the element-wise mean of vectors, or nil when there are none.
// All vectors must share the dimension of the first.
func Mean(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return nil
	}
	sum := make([]float64, len(vectors[0]))
	for _, v := range vectors {
		for i := range sum {
			if i < len(v) {
				sum[i] += float64(v[i])
			}
		}
	}
	out := make([]float32, len(sum))
	n := float64(len(vectors))
	for i, s := range sum {
		out[i] = float32(s / n)
	}
	return out
}

// ComputeHash returns the hex sha256 of text, used as a cache key.
func ComputeHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

// CheckDimensions returns ErrDimensionMismatch when any vector is empty or
// differs in length from the first.
func CheckDimensions(vectors [][]float32) error {
	if len(vectors) == 0 {
		return nil
	}
	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) == 0 || len(v) != dim {
			return fmt.Errorf("%w: vector %d has %d values, want %d", ErrDimensionMismatch, i, len(v), dim)
		}
	}
	return nil
}

func checkResult(sentences []string, vectors [][]float32) error {
	if len(vectors) < len(sentences) {
		return ErrShortResult
	}
	return CheckDimensions(vectors)
}
