package models

import "time"

// CallRow mirrors one row of the calls table.
type CallRow struct {
	ID             string
	Phone          string
	CallType       string
	Transcript     string
	SentimentScore float64
	Insights       string
	Resolved       bool
	CreatedAt      time.Time
}

// InsightRow mirrors one row of the call_insights table.
type InsightRow struct {
	ID              string
	CallID          string
	InsightType     string
	InsightText     string
	ConfidenceScore float64
	CreatedAt       time.Time
}

// DailySentiment is one SQL-aggregated day of sentiment scores.
type DailySentiment struct {
	Day       string
	AvgScore  float64
	MinScore  float64
	MaxScore  float64
	CallCount int64
}
