package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/callsight/insights-server/internal/pipeline"
	"github.com/callsight/insights-server/internal/repository/models"
)

const (
	dbTimeout = 1 * time.Second

	defaultListLimit = 100
	maxListLimit     = 500

	defaultTrendDays = 30
	maxTrendDays     = 365
	recentTrendDays  = 7
)

var (
	ErrNoCalls        = errors.New("no calls found")
	ErrStorageFailure = errors.New("storage failure")
	ErrInvalidRecord  = errors.New("invalid call record")
)

var (
	callsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "callsight_calls_ingested_total",
		Help: "Call records accepted past the ingestion boundary.",
	})
	recordsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "callsight_call_records_rejected_total",
		Help: "Call records rejected at the ingestion boundary.",
	})
)

// CallAnalyticsService handles call ingestion, dashboard aggregation and
// trend analysis.
type CallAnalyticsService struct {
	storage CallRepository
	logger  *zap.Logger
}

// NewCallAnalyticsService creates a new CallAnalyticsService instance.
func NewCallAnalyticsService(storage CallRepository, logger *zap.Logger) *CallAnalyticsService {
	if storage == nil {
		panic("storage must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	return &CallAnalyticsService{
		storage: storage,
		logger:  logger,
	}
}

// IngestCall validates and stores one call record. This is the single entry
// point past which records are assumed well-formed; a NaN or infinite score
// fails here with ErrInvalidRecord and never reaches the aggregation
// functions.
func (s *CallAnalyticsService) IngestCall(ctx context.Context, in NewCall) (pipeline.CallRecord, error) {
	record := pipeline.CallRecord{
		ID:             in.ID,
		Phone:          in.Phone,
		CallType:       in.CallType,
		Transcript:     in.Transcript,
		SentimentScore: in.SentimentScore,
		Insights:       in.Insights,
		Resolved:       in.Resolved,
		CreatedAt:      in.CreatedAt,
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CallType == "" {
		record.CallType = "incoming"
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	} else {
		record.CreatedAt = record.CreatedAt.UTC()
	}

	if err := pipeline.ValidateRecord(record); err != nil {
		recordsRejected.Inc()
		return pipeline.CallRecord{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if err := s.storage.InsertCall(dbCtx, callToRow(record)); err != nil {
		return pipeline.CallRecord{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	callsIngested.Inc()
	s.logger.Info("call ingested",
		zap.String("call_id", record.ID),
		zap.String("phone", record.Phone),
		zap.Float64("sentiment", record.SentimentScore))

	return record, nil
}

// CallStats fetches the calls filed under a phone key, applies the filter
// criteria and aggregates statistics over the filtered subsequence, so the
// returned numbers always describe exactly the returned records.
func (s *CallAnalyticsService) CallStats(ctx context.Context, phone string, criteria pipeline.Criteria) (CallDashboard, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.storage.ListCallsByPhone(dbCtx, phone)
	if err != nil {
		return CallDashboard{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if len(rows) == 0 {
		return CallDashboard{}, ErrNoCalls
	}

	records := make([]pipeline.CallRecord, len(rows))
	for i, r := range rows {
		records[i] = rowToCall(r)
	}

	visible := pipeline.Filter(records, criteria)
	dashboard := CallDashboard{
		Stats: pipeline.Aggregate(visible),
		Calls: visible,
	}

	s.logger.Debug("computed call stats",
		zap.String("phone", phone),
		zap.Int("fetched", len(records)),
		zap.Int("visible", dashboard.Stats.Total))

	return dashboard, nil
}

// GetCall returns one call record by id.
func (s *CallAnalyticsService) GetCall(ctx context.Context, id string) (pipeline.CallRecord, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	row, err := s.storage.GetCall(dbCtx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pipeline.CallRecord{}, ErrNoCalls
		}
		return pipeline.CallRecord{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return rowToCall(row), nil
}

// ListCalls pages through stored calls, newest first. An empty page is a
// normal result, not an error.
func (s *CallAnalyticsService) ListCalls(ctx context.Context, limit, offset int, callType string) ([]pipeline.CallRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.storage.ListCalls(dbCtx, limit, offset, callType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	records := make([]pipeline.CallRecord, len(rows))
	for i, r := range rows {
		records[i] = rowToCall(r)
	}
	return records, nil
}

// AddInsight attaches an annotation to an existing call.
func (s *CallAnalyticsService) AddInsight(ctx context.Context, in NewInsight) (Insight, error) {
	if in.CallID == "" {
		return Insight{}, fmt.Errorf("%w: call_id is required", ErrInvalidRecord)
	}

	if _, err := s.GetCall(ctx, in.CallID); err != nil {
		return Insight{}, err
	}

	insight := Insight{
		ID:              uuid.NewString(),
		CallID:          in.CallID,
		InsightType:     in.InsightType,
		InsightText:     in.InsightText,
		ConfidenceScore: in.ConfidenceScore,
		CreatedAt:       time.Now().UTC(),
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	err := s.storage.InsertInsight(dbCtx, models.InsightRow{
		ID:              insight.ID,
		CallID:          insight.CallID,
		InsightType:     insight.InsightType,
		InsightText:     insight.InsightText,
		ConfidenceScore: insight.ConfidenceScore,
		CreatedAt:       insight.CreatedAt,
	})
	if err != nil {
		return Insight{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	return insight, nil
}

// CallInsights lists the annotations attached to a call.
func (s *CallAnalyticsService) CallInsights(ctx context.Context, callID string) ([]Insight, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.storage.ListInsightsByCall(dbCtx, callID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	out := make([]Insight, len(rows))
	for i, r := range rows {
		out[i] = Insight{
			ID:              r.ID,
			CallID:          r.CallID,
			InsightType:     r.InsightType,
			InsightText:     r.InsightText,
			ConfidenceScore: r.ConfidenceScore,
			CreatedAt:       r.CreatedAt,
		}
	}
	return out, nil
}

// SentimentTrend summarizes the trailing window of daily sentiment
// aggregates. Direction compares the first and last day with data.
func (s *CallAnalyticsService) SentimentTrend(ctx context.Context, days int) (SentimentTrend, error) {
	if days <= 0 {
		days = defaultTrendDays
	}
	if days > maxTrendDays {
		days = maxTrendDays
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.storage.DailySentiment(dbCtx, start, end)
	if err != nil {
		return SentimentTrend{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if len(rows) == 0 {
		return SentimentTrend{}, ErrNoCalls
	}

	trend := SentimentTrend{
		PeriodDays: days,
		Points:     make([]TrendPoint, len(rows)),
	}

	dailyAverages := make([]float64, len(rows))
	for i, r := range rows {
		trend.Points[i] = TrendPoint{
			Day:              r.Day,
			AverageSentiment: r.AvgScore,
			MinSentiment:     r.MinScore,
			MaxSentiment:     r.MaxScore,
			Calls:            r.CallCount,
		}
		trend.TotalCalls += r.CallCount
		dailyAverages[i] = r.AvgScore
	}

	trend.AverageSentiment, err = stats.Mean(dailyAverages)
	if err != nil {
		return SentimentTrend{}, fmt.Errorf("trend mean: %w", err)
	}
	if trend.MinSentiment, err = stats.Min(dailyAverages); err != nil {
		return SentimentTrend{}, fmt.Errorf("trend min: %w", err)
	}
	if trend.MaxSentiment, err = stats.Max(dailyAverages); err != nil {
		return SentimentTrend{}, fmt.Errorf("trend max: %w", err)
	}

	recent := dailyAverages
	if len(recent) > recentTrendDays {
		recent = recent[len(recent)-recentTrendDays:]
	}
	if trend.RecentAverage, err = stats.Mean(recent); err != nil {
		return SentimentTrend{}, fmt.Errorf("trend recent mean: %w", err)
	}

	first, last := dailyAverages[0], dailyAverages[len(dailyAverages)-1]
	switch {
	case last > first:
		trend.TrendDirection = "increasing"
	case last < first:
		trend.TrendDirection = "decreasing"
	default:
		trend.TrendDirection = "flat"
	}

	return trend, nil
}

func callToRow(r pipeline.CallRecord) models.CallRow {
	return models.CallRow{
		ID:             r.ID,
		Phone:          r.Phone,
		CallType:       r.CallType,
		Transcript:     r.Transcript,
		SentimentScore: r.SentimentScore,
		Insights:       r.Insights,
		Resolved:       r.Resolved,
		CreatedAt:      r.CreatedAt,
	}
}

func rowToCall(r models.CallRow) pipeline.CallRecord {
	return pipeline.CallRecord{
		ID:             r.ID,
		Phone:          r.Phone,
		CallType:       r.CallType,
		Transcript:     r.Transcript,
		SentimentScore: r.SentimentScore,
		Insights:       r.Insights,
		Resolved:       r.Resolved,
		CreatedAt:      r.CreatedAt,
	}
}
