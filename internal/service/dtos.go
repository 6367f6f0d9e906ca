package service

import (
	"time"

	"github.com/callsight/insights-server/internal/pipeline"
)

// NewCall is the ingestion payload. ID and CreatedAt are optional; the
// service assigns a uuid and the current time when absent.
type NewCall struct {
	ID             string    `json:"call_id,omitempty"`
	Phone          string    `json:"customer_phone"`
	CallType       string    `json:"call_type,omitempty"`
	Transcript     string    `json:"transcript"`
	SentimentScore float64   `json:"sentiment_score"`
	Insights       string    `json:"insights,omitempty"`
	Resolved       bool      `json:"resolved"`
	CreatedAt      time.Time `json:"created_at,omitzero"`
}

// CallDashboard pairs the filtered records with statistics computed over
// exactly that filtered view.
type CallDashboard struct {
	Stats pipeline.Stats        `json:"stats"`
	Calls []pipeline.CallRecord `json:"calls"`
}

type NewInsight struct {
	CallID          string  `json:"call_id"`
	InsightType     string  `json:"insight_type"`
	InsightText     string  `json:"insight_text"`
	ConfidenceScore float64 `json:"confidence_score"`
}

type Insight struct {
	ID              string    `json:"id"`
	CallID          string    `json:"call_id"`
	InsightType     string    `json:"insight_type"`
	InsightText     string    `json:"insight_text"`
	ConfidenceScore float64   `json:"confidence_score"`
	CreatedAt       time.Time `json:"created_at"`
}

// TrendPoint is one day of the sentiment trend series.
type TrendPoint struct {
	Day              string  `json:"day"`
	AverageSentiment float64 `json:"average_sentiment"`
	MinSentiment     float64 `json:"min_sentiment"`
	MaxSentiment     float64 `json:"max_sentiment"`
	Calls            int64   `json:"calls"`
}

// SentimentTrend summarizes customer satisfaction over a trailing window.
type SentimentTrend struct {
	PeriodDays       int          `json:"period_days"`
	TotalCalls       int64        `json:"total_calls"`
	AverageSentiment float64      `json:"average_sentiment"`
	MinSentiment     float64      `json:"min_sentiment"`
	MaxSentiment     float64      `json:"max_sentiment"`
	RecentAverage    float64      `json:"recent_average"`
	TrendDirection   string       `json:"trend_direction"`
	Points           []TrendPoint `json:"points"`
}
