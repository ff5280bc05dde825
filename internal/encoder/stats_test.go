package encoder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsSnapshotPercentiles(t *testing.T) {
	stats := NewStats(time.Hour)
	for _, ms := range []int{100, 200, 300, 400, 500} {
		stats.Record(time.Duration(ms)*time.Millisecond, 10, false)
	}

	snap := stats.Snapshot()
	require.Equal(t, 5, snap.Calls)
	assert.Equal(t, 50, snap.Sentences)
	assert.InDelta(t, 100, snap.MinMs, 1e-9)
	assert.InDelta(t, 500, snap.MaxMs, 1e-9)
	assert.InDelta(t, 300, snap.AvgMs, 1e-9)
	assert.InDelta(t, 300, snap.P50Ms, 1e-9)
	assert.InDelta(t, 480, snap.P95Ms, 1e-9)
	assert.InDelta(t, 496, snap.P99Ms, 1e-9)
}

func TestStatsPrunesExpiredSamples(t *testing.T) {
	now := time.Now()
	stats := NewStats(10 * time.Millisecond)
	stats.now = func() time.Time { return now }
	stats.Record(100*time.Millisecond, 1, false)

	now = now.Add(25 * time.Millisecond)
	assert.Equal(t, 0, stats.Snapshot().Calls)

	stats.Record(200*time.Millisecond, 1, true)
	snap := stats.Snapshot()
	assert.Equal(t, 1, snap.Calls)
	assert.Equal(t, 1, snap.Failures)
	assert.InDelta(t, 200, snap.MinMs, 1e-9)
}

func TestStatsRecordClampsNegativeDuration(t *testing.T) {
	stats := NewStats(time.Hour)
	stats.Record(-10*time.Millisecond, 1, false)
	snap := stats.Snapshot()
	assert.Equal(t, 1, snap.Calls)
	assert.Zero(t, snap.MaxMs)
}
