package pipeline

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scenarioRecords matches the reference dashboard scenario: one positive
// resolved, one negative unresolved, one neutral resolved call.
func scenarioRecords() []CallRecord {
	return []CallRecord{
		{ID: "c-1", Phone: "+15550001111", SentimentScore: 0.5, Resolved: true},
		{ID: "c-2", Phone: "+15550002222", SentimentScore: -0.3, Resolved: false},
		{ID: "c-3", Phone: "+15550001111", SentimentScore: 0.0, Resolved: true},
	}
}

func TestAggregate(t *testing.T) {
	t.Run("empty input yields zero stats", func(t *testing.T) {
		stats := Aggregate(nil)

		assert.Equal(t, Stats{}, stats)
		assert.Zero(t, stats.AverageSentiment, "empty-input average is a sentinel, not an observation")
	})

	t.Run("mixed records", func(t *testing.T) {
		stats := Aggregate(scenarioRecords())

		assert.Equal(t, 3, stats.Total)
		assert.Equal(t, 2, stats.Resolved)
		assert.Equal(t, 1, stats.Unresolved)
		assert.InDelta(t, 0.2/3.0, stats.AverageSentiment, 1e-9)
		assert.Equal(t, Distribution{Positive: 1, Neutral: 1, Negative: 1}, stats.Distribution)
	})

	t.Run("all resolved", func(t *testing.T) {
		records := []CallRecord{
			{ID: "c-1", SentimentScore: 0.8, Resolved: true},
			{ID: "c-2", SentimentScore: 0.6, Resolved: true},
		}

		stats := Aggregate(records)

		assert.Equal(t, 2, stats.Resolved)
		assert.Zero(t, stats.Unresolved)
		assert.InDelta(t, 0.7, stats.AverageSentiment, 1e-9)
		assert.Equal(t, Distribution{Positive: 2}, stats.Distribution)
	})

	t.Run("single record", func(t *testing.T) {
		stats := Aggregate([]CallRecord{{ID: "c-1", SentimentScore: -0.2}})

		assert.Equal(t, 1, stats.Total)
		assert.Equal(t, -0.2, stats.AverageSentiment)
		assert.Equal(t, Distribution{Negative: 1}, stats.Distribution)
	})
}

// TestAggregateInvariants checks the structural guarantees over randomized
// inputs: band counts sum to the total, resolved and unresolved partition it.
func TestAggregateInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 50; trial++ {
		n := rng.Intn(200)
		records := make([]CallRecord, n)
		for i := range records {
			records[i] = CallRecord{
				ID:             fmt.Sprintf("c-%d", i),
				SentimentScore: rng.Float64()*4 - 2, // includes out-of-range values
				Resolved:       rng.Intn(2) == 0,
			}
		}

		stats := Aggregate(records)

		require.Equal(t, n, stats.Total)
		require.Equal(t, stats.Total, stats.Resolved+stats.Unresolved)

		d := stats.Distribution
		require.Equal(t, stats.Total, d.Positive+d.Neutral+d.Negative,
			"distribution must sum to total (trial %d)", trial)
	}
}

func BenchmarkAggregate(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	records := make([]CallRecord, 10_000)
	for i := range records {
		records[i] = CallRecord{
			ID:             fmt.Sprintf("c-%d", i),
			SentimentScore: rng.Float64()*2 - 1,
			Resolved:       i%3 == 0,
		}
	}

	b.ReportAllocs()

	for b.Loop() {
		_ = Aggregate(records)
	}
}
