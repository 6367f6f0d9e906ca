package service

import (
	"context"
	"time"

	"github.com/callsight/insights-server/internal/repository/models"
)

// CallRepository defines the interface for database operations for service.
type CallRepository interface {
	InsertCall(ctx context.Context, row models.CallRow) error
	GetCall(ctx context.Context, id string) (models.CallRow, error)
	ListCallsByPhone(ctx context.Context, phone string) ([]models.CallRow, error)
	ListCalls(ctx context.Context, limit, offset int, callType string) ([]models.CallRow, error)
	InsertInsight(ctx context.Context, row models.InsightRow) error
	ListInsightsByCall(ctx context.Context, callID string) ([]models.InsightRow, error)
	DailySentiment(ctx context.Context, start, end time.Time) ([]models.DailySentiment, error)
}
