// Package pipeline implements the call-sentiment aggregation pipeline: band
// classification, summary statistics and filtered views over fetched call
// records. Every function here is a pure, synchronous transform; records are
// validated once at the ingestion boundary (ValidateRecord) so the
// aggregation and filter functions can assume well-formed input.
package pipeline

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrInvalidScore = errors.New("invalid sentiment score")
	ErrMissingField = errors.New("missing required field")
)

// Band is the sentiment band derived from a numeric score.
type Band string

const (
	BandPositive Band = "positive"
	BandNeutral  Band = "neutral"
	BandNegative Band = "negative"
)

// CallRecord is one transcribed customer interaction as consumed by the
// dashboard views.
type CallRecord struct {
	ID             string    `json:"call_id"`
	Phone          string    `json:"customer_phone"`
	CallType       string    `json:"call_type"`
	Transcript     string    `json:"transcript"`
	SentimentScore float64   `json:"sentiment_score"`
	Insights       string    `json:"insights"`
	Resolved       bool      `json:"resolved"`
	CreatedAt      time.Time `json:"created_at"`
}

// Distribution counts records per sentiment band.
type Distribution struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

// Stats is the aggregate over a set of call records. AverageSentiment is 0
// when Total is 0; callers must read that together with Total, it is a
// "no data" sentinel and not an observed neutral score.
type Stats struct {
	Total            int          `json:"total"`
	Resolved         int          `json:"resolved"`
	Unresolved       int          `json:"unresolved"`
	AverageSentiment float64      `json:"average_sentiment"`
	Distribution     Distribution `json:"sentiment_distribution"`
}

// ValidateRecord rejects records the pipeline cannot process. It is the
// ingestion-boundary check: a NaN or infinite score, or a missing
// identifier or phone key, fails here so it never reaches Aggregate or
// Filter.
func ValidateRecord(r CallRecord) error {
	if r.ID == "" {
		return fmt.Errorf("%w: call_id", ErrMissingField)
	}
	if r.Phone == "" {
		return fmt.Errorf("%w: customer_phone", ErrMissingField)
	}
	if math.IsNaN(r.SentimentScore) || math.IsInf(r.SentimentScore, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidScore, r.SentimentScore)
	}
	return nil
}
