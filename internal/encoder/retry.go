package encoder

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// MaxRetries bounds attempts for transient backend failures.
const MaxRetries = 3

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	msg := e.Message
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, msg)
}

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *RetryableError
	return errors.As(err, &retryErr)
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

// Retrying retries transient failures of the wrapped encoder. Any other
// error, and the last transient one, is returned unchanged.
type Retrying struct {
	next    Encoder
	backoff func(int) time.Duration
}

// NewRetrying wraps next with retry on RetryableError.
func NewRetrying(next Encoder) *Retrying {
	return &Retrying{next: next, backoff: Backoff}
}

// Encode implements Encoder.
func (r *Retrying) Encode(ctx context.Context, sentences []string) ([][]float32, error) {
	var lastErr error
	for attempt := range MaxRetries {
		vecs, err := r.next.Encode(ctx, sentences)
		if err == nil {
			return vecs, nil
		}
		lastErr = err
		if !IsRetryable(err) || attempt == MaxRetries-1 {
			break
		}
		select {
		case <-time.After(r.backoff(attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}
