package encoder

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedEncoder memoizes vectors by sentence content hash. Only cache misses
// reach the wrapped encoder; duplicates within one call are encoded once.
type CachedEncoder struct {
	next  Encoder
	cache *lru.Cache[string, []float32]
}

// NewCachedEncoder wraps next with an LRU of at most maxLen vectors.
func NewCachedEncoder(next Encoder, maxLen int) *CachedEncoder {
	if maxLen <= 0 {
		maxLen = 10000
	}
	cache, err := lru.New[string, []float32](maxLen)
	if err != nil {
		cache, _ = lru.New[string, []float32](10000)
	}
	return &CachedEncoder{next: next, cache: cache}
}

// Encode implements Encoder.
func (c *CachedEncoder) Encode(ctx context.Context, sentences []string) ([][]float32, error) {
	if len(sentences) == 0 {
		return nil, ErrEmptyInput
	}

	out := make([][]float32, len(sentences))
	hashes := make([]string, len(sentences))
	pending := make(map[string][]int)
	var missing []string

	for i, s := range sentences {
		h := ComputeHash(s)
		hashes[i] = h
		if v, ok := c.cache.Get(h); ok {
			out[i] = copyVector(v)
			continue
		}
		if _, seen := pending[h]; !seen {
			missing = append(missing, s)
		}
		pending[h] = append(pending[h], i)
	}

	if len(missing) == 0 {
		return out, nil
	}

	vecs, err := c.next.Encode(ctx, missing)
	if err != nil {
		return nil, err
	}
	if err := checkResult(missing, vecs); err != nil {
		return nil, err
	}

	for j, s := range missing {
		h := ComputeHash(s)
		c.cache.Add(h, vecs[j])
		for _, i := range pending[h] {
			out[i] = copyVector(vecs[j])
		}
	}
	return out, nil
}

// Len returns the number of cached vectors.
func (c *CachedEncoder) Len() int {
	return c.cache.Len()
}

// copyVector keeps callers from mutating cached values.
func copyVector(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
