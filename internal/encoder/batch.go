package encoder

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// BatchedEncoder splits large inputs into fixed-size batches and encodes them
// concurrently. Results are placed by index, so output order always matches
// input order. The first failing batch cancels the rest and its error is returned.
type BatchedEncoder struct {
	next        Encoder
	batchSize   int
	concurrency int
}

// NewBatchedEncoder wraps next. Non-positive sizes fall back to 64 sentences
// per batch and 4 concurrent batches.
func NewBatchedEncoder(next Encoder, batchSize, concurrency int) *BatchedEncoder {
	if batchSize <= 0 {
		batchSize = 64
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &BatchedEncoder{next: next, batchSize: batchSize, concurrency: concurrency}
}

// Encode implements Encoder.
func (b *BatchedEncoder) Encode(ctx context.Context, sentences []string) ([][]float32, error) {
	if len(sentences) == 0 {
		return nil, ErrEmptyInput
	}
	if len(sentences) <= b.batchSize {
		vecs, err := b.next.Encode(ctx, sentences)
		if err != nil {
			return nil, err
		}
		if err := checkResult(sentences, vecs); err != nil {
			return nil, err
		}
		return vecs, nil
	}

	out := make([][]float32, len(sentences))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for start := 0; start < len(sentences); start += b.batchSize {
		end := min(start+b.batchSize, len(sentences))
		g.Go(func() error {
			vecs, err := b.next.Encode(gctx, sentences[start:end])
			if err != nil {
				return fmt.Errorf("encode batch %d-%d: %w", start, end, err)
			}
			if err := checkResult(sentences[start:end], vecs); err != nil {
				return err
			}
			copy(out[start:end], vecs)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := CheckDimensions(out); err != nil {
		return nil, err
	}
	return out, nil
}
