package mocks

import (
	"context"
	"errors"

	"github.com/callsight/insights-server/internal/pipeline"
	"github.com/callsight/insights-server/internal/service"
)

// MockAnalyticsService is a mock implementation of the AnalyticsService
// interface for testing the HTTP handlers.
type MockAnalyticsService struct {
	IngestCallFunc     func(ctx context.Context, in service.NewCall) (pipeline.CallRecord, error)
	CallStatsFunc      func(ctx context.Context, phone string, criteria pipeline.Criteria) (service.CallDashboard, error)
	GetCallFunc        func(ctx context.Context, id string) (pipeline.CallRecord, error)
	ListCallsFunc      func(ctx context.Context, limit, offset int, callType string) ([]pipeline.CallRecord, error)
	AddInsightFunc     func(ctx context.Context, in service.NewInsight) (service.Insight, error)
	CallInsightsFunc   func(ctx context.Context, callID string) ([]service.Insight, error)
	SentimentTrendFunc func(ctx context.Context, days int) (service.SentimentTrend, error)
}

func (m *MockAnalyticsService) IngestCall(ctx context.Context, in service.NewCall) (pipeline.CallRecord, error) {
	if m.IngestCallFunc != nil {
		return m.IngestCallFunc(ctx, in)
	}
	return pipeline.CallRecord{}, errors.New("IngestCallFunc not implemented")
}

func (m *MockAnalyticsService) CallStats(ctx context.Context, phone string, criteria pipeline.Criteria) (service.CallDashboard, error) {
	if m.CallStatsFunc != nil {
		return m.CallStatsFunc(ctx, phone, criteria)
	}
	return service.CallDashboard{}, errors.New("CallStatsFunc not implemented")
}

func (m *MockAnalyticsService) GetCall(ctx context.Context, id string) (pipeline.CallRecord, error) {
	if m.GetCallFunc != nil {
		return m.GetCallFunc(ctx, id)
	}
	return pipeline.CallRecord{}, errors.New("GetCallFunc not implemented")
}

func (m *MockAnalyticsService) ListCalls(ctx context.Context, limit, offset int, callType string) ([]pipeline.CallRecord, error) {
	if m.ListCallsFunc != nil {
		return m.ListCallsFunc(ctx, limit, offset, callType)
	}
	return nil, errors.New("ListCallsFunc not implemented")
}

func (m *MockAnalyticsService) AddInsight(ctx context.Context, in service.NewInsight) (service.Insight, error) {
	if m.AddInsightFunc != nil {
		return m.AddInsightFunc(ctx, in)
	}
	return service.Insight{}, errors.New("AddInsightFunc not implemented")
}

func (m *MockAnalyticsService) CallInsights(ctx context.Context, callID string) ([]service.Insight, error) {
	if m.CallInsightsFunc != nil {
		return m.CallInsightsFunc(ctx, callID)
	}
	return nil, errors.New("CallInsightsFunc not implemented")
}

func (m *MockAnalyticsService) SentimentTrend(ctx context.Context, days int) (service.SentimentTrend, error) {
	if m.SentimentTrendFunc != nil {
		return m.SentimentTrendFunc(ctx, days)
	}
	return service.SentimentTrend{}, errors.New("SentimentTrendFunc not implemented")
}
