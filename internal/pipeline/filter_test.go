package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatusFilter(t *testing.T) {
	cases := []struct {
		in       string
		expected StatusFilter
		wantErr  bool
	}{
		{in: "", expected: StatusAll},
		{in: "all", expected: StatusAll},
		{in: "resolved", expected: StatusResolved},
		{in: "unresolved", expected: StatusUnresolved},
		{in: "open", wantErr: true},
		{in: "Resolved", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseStatusFilter(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestParseBandFilter(t *testing.T) {
	for _, in := range []string{"", "all", "positive", "neutral", "negative"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseBandFilter(in)
			assert.NoError(t, err)
		})
	}

	t.Run("unknown band", func(t *testing.T) {
		_, err := ParseBandFilter("angry")
		assert.Error(t, err)
	})
}

func TestFilter(t *testing.T) {
	records := scenarioRecords()

	t.Run("pass-through criteria returns input unchanged", func(t *testing.T) {
		got := Filter(records, Criteria{Search: "", Status: StatusAll, Band: BandFilterAll})
		assert.Equal(t, records, got)
	})

	t.Run("zero-value criteria is also a pass-through", func(t *testing.T) {
		got := Filter(records, Criteria{})
		assert.Equal(t, records, got)
	})

	t.Run("unresolved only", func(t *testing.T) {
		got := Filter(records, Criteria{Status: StatusUnresolved})

		require.Len(t, got, 1)
		assert.Equal(t, "c-2", got[0].ID)
	})

	t.Run("positive band only", func(t *testing.T) {
		got := Filter(records, Criteria{Band: BandFilter(BandPositive)})

		require.Len(t, got, 1)
		assert.Equal(t, "c-1", got[0].ID)
	})

	t.Run("phone search is case-insensitive substring", func(t *testing.T) {
		withExt := append(records, CallRecord{ID: "c-4", Phone: "+1555000EXT9", SentimentScore: 0.3})

		got := Filter(withExt, Criteria{Search: "ext"})

		require.Len(t, got, 1)
		assert.Equal(t, "c-4", got[0].ID)
	})

	t.Run("blank search with surrounding whitespace matches all", func(t *testing.T) {
		got := Filter(records, Criteria{Search: "   "})
		assert.Equal(t, records, got)
	})

	t.Run("criteria combine with logical AND", func(t *testing.T) {
		got := Filter(records, Criteria{Search: "0001111", Status: StatusResolved, Band: BandFilter(BandNeutral)})

		require.Len(t, got, 1)
		assert.Equal(t, "c-3", got[0].ID)
	})

	t.Run("no matches yields empty, not nil error path", func(t *testing.T) {
		got := Filter(records, Criteria{Search: "9999"})
		assert.Empty(t, got)
	})

	t.Run("input is not mutated", func(t *testing.T) {
		before := scenarioRecords()
		_ = Filter(before, Criteria{Status: StatusResolved})
		assert.Equal(t, scenarioRecords(), before)
	})
}

func TestFilterOrderAndIdempotence(t *testing.T) {
	records := []CallRecord{
		{ID: "a", Phone: "555", SentimentScore: 0.5},
		{ID: "b", Phone: "555", SentimentScore: 0.9},
		{ID: "c", Phone: "777", SentimentScore: 0.3},
		{ID: "d", Phone: "555", SentimentScore: -0.6},
		{ID: "e", Phone: "555", SentimentScore: 0.25},
	}
	criteria := Criteria{Search: "555", Band: BandFilter(BandPositive)}

	once := Filter(records, criteria)

	t.Run("preserves relative input order", func(t *testing.T) {
		ids := make([]string, 0, len(once))
		for _, r := range once {
			ids = append(ids, r.ID)
		}
		assert.Equal(t, []string{"a", "b", "e"}, ids)
	})

	t.Run("idempotent for fixed criteria", func(t *testing.T) {
		twice := Filter(once, criteria)
		assert.Equal(t, once, twice)
	})

	t.Run("stats over filtered subsequence", func(t *testing.T) {
		stats := Aggregate(once)

		assert.Equal(t, 3, stats.Total)
		assert.Equal(t, Distribution{Positive: 3}, stats.Distribution)
	})
}
