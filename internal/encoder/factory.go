package encoder

import "time"

// StackConfig configures the production encoder stack.
type StackConfig struct {
	Ollama      OllamaConfig
	BatchSize   int
	Concurrency int
	CacheSize   int
	StatsWindow time.Duration
}

// NewStack builds Ollama -> retry -> batching -> cache -> instrumentation.
// The returned encoder is safe to share across goroutines.
func NewStack(cfg StackConfig) (*Instrumented, error) {
	backend, err := NewOllamaEncoder(cfg.Ollama)
	if err != nil {
		return nil, err
	}
	return Wrap(backend, cfg), nil
}

// Wrap applies the non-backend layers of the stack to any encoder.
func Wrap(backend Encoder, cfg StackConfig) *Instrumented {
	var enc Encoder = NewRetrying(backend)
	enc = NewBatchedEncoder(enc, cfg.BatchSize, cfg.Concurrency)
	enc = NewCachedEncoder(enc, cfg.CacheSize)
	return NewInstrumented(enc, NewStats(cfg.StatsWindow))
}
