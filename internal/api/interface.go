package api

import (
	"context"
	"time"

	"github.com/callsight/insights-server/internal/pipeline"
	"github.com/callsight/insights-server/internal/service"
)

// Cacher defines the interface for cache operations.
type Cacher interface {
	Close() error
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// AnalyticsService is the surface the HTTP handlers need from the service
// layer.
type AnalyticsService interface {
	IngestCall(ctx context.Context, in service.NewCall) (pipeline.CallRecord, error)
	CallStats(ctx context.Context, phone string, criteria pipeline.Criteria) (service.CallDashboard, error)
	GetCall(ctx context.Context, id string) (pipeline.CallRecord, error)
	ListCalls(ctx context.Context, limit, offset int, callType string) ([]pipeline.CallRecord, error)
	AddInsight(ctx context.Context, in service.NewInsight) (service.Insight, error)
	CallInsights(ctx context.Context, callID string) ([]service.Insight, error)
	SentimentTrend(ctx context.Context, days int) (service.SentimentTrend, error)
}
