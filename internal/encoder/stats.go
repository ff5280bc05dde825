package encoder

import (
	"context"
	"slices"
	"sync"
	"time"
)

type sample struct {
	at        time.Time
	duration  time.Duration
	sentences int
	failed    bool
}

// StatsSnapshot aggregates the encode calls still inside the window.
type StatsSnapshot struct {
	Calls     int     `json:"calls"`
	Failures  int     `json:"failures"`
	Sentences int     `json:"sentences"`
	MinMs     float64 `json:"min_ms"`
	MaxMs     float64 `json:"max_ms"`
	AvgMs     float64 `json:"avg_ms"`
	P50Ms     float64 `json:"p50_ms"`
	P95Ms     float64 `json:"p95_ms"`
	P99Ms     float64 `json:"p99_ms"`
}

// Stats tracks recent encode latencies within a rolling window.
type Stats struct {
	mu      sync.Mutex
	samples []sample
	window  time.Duration
	now     func() time.Time
}

// NewStats creates a Stats keeping samples for window (default one hour).
func NewStats(window time.Duration) *Stats {
	if window <= 0 {
		window = time.Hour
	}
	return &Stats{
		samples: make([]sample, 0, 256),
		window:  window,
		now:     time.Now,
	}
}

// Record adds one encode call.
func (s *Stats) Record(d time.Duration, sentences int, failed bool) {
	d = max(d, 0)
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneLocked(now)
	s.samples = append(s.samples, sample{at: now, duration: d, sentences: sentences, failed: failed})
}

// Snapshot returns the current aggregate.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(s.now())
	if len(s.samples) == 0 {
		return StatsSnapshot{}
	}

	snap := StatsSnapshot{Calls: len(s.samples)}
	values := make([]float64, 0, len(s.samples))
	var sum float64
	for _, sm := range s.samples {
		ms := float64(sm.duration) / float64(time.Millisecond)
		values = append(values, ms)
		sum += ms
		snap.Sentences += sm.sentences
		if sm.failed {
			snap.Failures++
		}
	}
	slices.Sort(values)

	snap.MinMs = values[0]
	snap.MaxMs = values[len(values)-1]
	snap.AvgMs = sum / float64(len(values))
	snap.P50Ms = percentile(values, 50)
	snap.P95Ms = percentile(values, 95)
	snap.P99Ms = percentile(values, 99)
	return snap
}

func (s *Stats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	keep := s.samples[:0]
	for _, sm := range s.samples {
		if !sm.at.Before(cutoff) {
			keep = append(keep, sm)
		}
	}
	s.samples = keep
}

// percentile interpolates linearly between the closest ranks of sorted values.
func percentile(sorted []float64, pct float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if pct <= 0 {
		return sorted[0]
	}
	if pct >= 100 {
		return sorted[len(sorted)-1]
	}
	index := float64(len(sorted)-1) * pct / 100
	lower := int(index)
	if lower+1 >= len(sorted) {
		return sorted[lower]
	}
	weight := index - float64(lower)
	return sorted[lower] + (sorted[lower+1]-sorted[lower])*weight
}

// Instrumented records every call of the wrapped encoder into Stats.
type Instrumented struct {
	next  Encoder
	stats *Stats
}

// NewInstrumented wraps next.
func NewInstrumented(next Encoder, stats *Stats) *Instrumented {
	return &Instrumented{next: next, stats: stats}
}

// Encode implements Encoder.
func (e *Instrumented) Encode(ctx context.Context, sentences []string) ([][]float32, error) {
	start := time.Now()
	vecs, err := e.next.Encode(ctx, sentences)
	e.stats.Record(time.Since(start), len(sentences), err != nil)
	return vecs, err
}

// Stats returns the recorder.
func (e *Instrumented) Stats() *Stats {
	return e.stats
}
