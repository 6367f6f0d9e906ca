package mocks

import (
	"context"
	"errors"
	"time"

	"github.com/callsight/insights-server/internal/repository/models"
)

// MockCallRepository is a mock implementation of the CallRepository
// interface for testing the service layer.
type MockCallRepository struct {
	InsertCallFunc         func(ctx context.Context, row models.CallRow) error
	GetCallFunc            func(ctx context.Context, id string) (models.CallRow, error)
	ListCallsByPhoneFunc   func(ctx context.Context, phone string) ([]models.CallRow, error)
	ListCallsFunc          func(ctx context.Context, limit, offset int, callType string) ([]models.CallRow, error)
	InsertInsightFunc      func(ctx context.Context, row models.InsightRow) error
	ListInsightsByCallFunc func(ctx context.Context, callID string) ([]models.InsightRow, error)
	DailySentimentFunc     func(ctx context.Context, start, end time.Time) ([]models.DailySentiment, error)
}

func (m *MockCallRepository) InsertCall(ctx context.Context, row models.CallRow) error {
	if m.InsertCallFunc != nil {
		return m.InsertCallFunc(ctx, row)
	}
	return errors.New("InsertCallFunc not implemented")
}

func (m *MockCallRepository) GetCall(ctx context.Context, id string) (models.CallRow, error) {
	if m.GetCallFunc != nil {
		return m.GetCallFunc(ctx, id)
	}
	return models.CallRow{}, errors.New("GetCallFunc not implemented")
}

func (m *MockCallRepository) ListCallsByPhone(ctx context.Context, phone string) ([]models.CallRow, error) {
	if m.ListCallsByPhoneFunc != nil {
		return m.ListCallsByPhoneFunc(ctx, phone)
	}
	return nil, errors.New("ListCallsByPhoneFunc not implemented")
}

func (m *MockCallRepository) ListCalls(ctx context.Context, limit, offset int, callType string) ([]models.CallRow, error) {
	if m.ListCallsFunc != nil {
		return m.ListCallsFunc(ctx, limit, offset, callType)
	}
	return nil, errors.New("ListCallsFunc not implemented")
}

func (m *MockCallRepository) InsertInsight(ctx context.Context, row models.InsightRow) error {
	if m.InsertInsightFunc != nil {
		return m.InsertInsightFunc(ctx, row)
	}
	return errors.New("InsertInsightFunc not implemented")
}

func (m *MockCallRepository) ListInsightsByCall(ctx context.Context, callID string) ([]models.InsightRow, error) {
	if m.ListInsightsByCallFunc != nil {
		return m.ListInsightsByCallFunc(ctx, callID)
	}
	return nil, errors.New("ListInsightsByCallFunc not implemented")
}

func (m *MockCallRepository) DailySentiment(ctx context.Context, start, end time.Time) ([]models.DailySentiment, error) {
	if m.DailySentimentFunc != nil {
		return m.DailySentimentFunc(ctx, start, end)
	}
	return nil, errors.New("DailySentimentFunc not implemented")
}
