package pipeline

import (
	"fmt"
	"strings"
)

// StatusFilter narrows records by resolution status.
type StatusFilter string

const (
	StatusAll        StatusFilter = "all"
	StatusResolved   StatusFilter = "resolved"
	StatusUnresolved StatusFilter = "unresolved"
)

// BandFilter narrows records to a single sentiment band, or passes all
// through.
type BandFilter string

const BandFilterAll BandFilter = "all"

// Criteria holds the three independent filter dimensions. Zero values are
// pass-throughs: blank search matches everything, empty status and band
// behave like "all".
type Criteria struct {
	Search string
	Status StatusFilter
	Band   BandFilter
}

// ParseStatusFilter maps a request parameter onto a StatusFilter. The empty
// string means no filtering; anything else unknown is a caller error.
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch StatusFilter(s) {
	case "", StatusAll:
		return StatusAll, nil
	case StatusResolved:
		return StatusResolved, nil
	case StatusUnresolved:
		return StatusUnresolved, nil
	default:
		return "", fmt.Errorf("unknown status filter %q", s)
	}
}

// ParseBandFilter maps a request parameter onto a BandFilter.
func ParseBandFilter(s string) (BandFilter, error) {
	switch s {
	case "", string(BandFilterAll):
		return BandFilterAll, nil
	case string(BandPositive), string(BandNeutral), string(BandNegative):
		return BandFilter(s), nil
	default:
		return "", fmt.Errorf("unknown sentiment filter %q", s)
	}
}

// Filter returns the subsequence of records satisfying all active criteria.
// The result preserves the relative order of the input and the input is
// never mutated, so statistics computed over the output always describe
// exactly the visible records.
func Filter(records []CallRecord, c Criteria) []CallRecord {
	search := strings.ToLower(strings.TrimSpace(c.Search))

	out := make([]CallRecord, 0, len(records))
	for _, r := range records {
		if search != "" && !strings.Contains(strings.ToLower(r.Phone), search) {
			continue
		}

		switch c.Status {
		case StatusResolved:
			if !r.Resolved {
				continue
			}
		case StatusUnresolved:
			if r.Resolved {
				continue
			}
		}

		if c.Band != "" && c.Band != BandFilterAll && Band(c.Band) != bandOf(r.SentimentScore) {
			continue
		}

		out = append(out, r)
	}
	return out
}
