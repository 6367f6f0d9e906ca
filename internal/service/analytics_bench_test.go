package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/callsight/insights-server/internal/pipeline"
	"github.com/callsight/insights-server/internal/repository"
	"github.com/callsight/insights-server/internal/repository/models"
	dbbuilder "github.com/callsight/insights-server/pkg/database"
)

func setupRealRepo(tb testing.TB) *repository.CallRepository {
	tb.Helper()

	db, err := dbbuilder.New(
		dbbuilder.WithDriver("sqlite3"),
		dbbuilder.WithDataSource(":memory:"),
		dbbuilder.WithMaxOpenConns(1),
	)
	if err != nil {
		tb.Fatalf("failed to create db pool via builder: %v", err)
	}
	tb.Cleanup(func() { db.Close() })

	repo := repository.NewCallRepository(db, "sqlite3")
	if err := repo.EnsureSchema(context.Background()); err != nil {
		tb.Fatalf("failed to create schema: %v", err)
	}

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 500; i++ {
		err := repo.InsertCall(context.Background(), models.CallRow{
			ID:             fmt.Sprintf("c-%d", i),
			Phone:          "+15550001111",
			CallType:       "incoming",
			SentimentScore: float64(i%21-10) / 10.0,
			Resolved:       i%2 == 0,
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			tb.Fatalf("failed to seed call: %v", err)
		}
	}

	return repo
}

func BenchmarkCallStats(b *testing.B) {
	logger := zap.NewNop()
	repo := setupRealRepo(b)

	svc := NewCallAnalyticsService(repo, logger)
	criteria := pipeline.Criteria{Status: pipeline.StatusUnresolved}

	b.ReportAllocs()

	for b.Loop() {
		_, _ = svc.CallStats(context.Background(), "+15550001111", criteria)
	}
}
