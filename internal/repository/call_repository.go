package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/callsight/insights-server/internal/repository/models"
)

// Timestamps are stored as RFC3339 UTC text (second precision) so day
// grouping and lexicographic range comparisons work identically on sqlite
// and postgres.
const timeLayout = time.RFC3339

type CallRepository struct {
	db     *sql.DB
	driver string
}

// NewCallRepository wraps a database pool. The driver name selects the
// placeholder style ("postgres" uses $N, everything else ?).
func NewCallRepository(db *sql.DB, driver string) *CallRepository {
	return &CallRepository{db: db, driver: driver}
}

// rebind converts ?-style placeholders to $N for the postgres driver.
func (s *CallRepository) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

// EnsureSchema creates the calls and call_insights tables when missing. The
// DDL sticks to types both supported drivers share.
func (s *CallRepository) EnsureSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS calls (
		id TEXT PRIMARY KEY,
		phone TEXT NOT NULL DEFAULT '',
		call_type TEXT NOT NULL DEFAULT 'incoming',
		transcript TEXT NOT NULL DEFAULT '',
		sentiment_score REAL NOT NULL,
		insights TEXT NOT NULL DEFAULT '',
		resolved BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_calls_phone ON calls (phone);
	CREATE INDEX IF NOT EXISTS idx_calls_created_at ON calls (created_at);

	CREATE TABLE IF NOT EXISTS call_insights (
		id TEXT PRIMARY KEY,
		call_id TEXT NOT NULL,
		insight_type TEXT NOT NULL DEFAULT '',
		insight_text TEXT NOT NULL DEFAULT '',
		confidence_score REAL NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_call_insights_call_id ON call_insights (call_id);
	`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *CallRepository) InsertCall(ctx context.Context, row models.CallRow) error {
	const query = `
		INSERT INTO calls (id, phone, call_type, transcript, sentiment_score, insights, resolved, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, s.rebind(query),
		row.ID, row.Phone, row.CallType, row.Transcript,
		row.SentimentScore, row.Insights, row.Resolved,
		row.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert call %s: %w", row.ID, err)
	}
	return nil
}

// GetCall returns the call with the given id. A miss surfaces as
// sql.ErrNoRows for the service layer to translate.
func (s *CallRepository) GetCall(ctx context.Context, id string) (models.CallRow, error) {
	const query = `
		SELECT id, phone, call_type, transcript, sentiment_score, insights, resolved, created_at
		FROM calls
		WHERE id = ?
	`

	row, err := scanCall(s.db.QueryRowContext(ctx, s.rebind(query), id))
	if err != nil {
		return models.CallRow{}, fmt.Errorf("query GetCall: %w", err)
	}
	return row, nil
}

// ListCallsByPhone returns every call filed under the phone key in insertion
// order, which downstream filtering preserves.
func (s *CallRepository) ListCallsByPhone(ctx context.Context, phone string) ([]models.CallRow, error) {
	const query = `
		SELECT id, phone, call_type, transcript, sentiment_score, insights, resolved, created_at
		FROM calls
		WHERE phone = ?
		ORDER BY created_at, id
	`

	rows, err := s.db.QueryContext(ctx, s.rebind(query), phone)
	if err != nil {
		return nil, fmt.Errorf("query ListCallsByPhone: %w", err)
	}
	defer rows.Close()

	return collectCalls(rows, "ListCallsByPhone")
}

// ListCalls pages through all calls, newest first, optionally narrowed to a
// call type (incoming, outgoing, voicemail).
func (s *CallRepository) ListCalls(ctx context.Context, limit, offset int, callType string) ([]models.CallRow, error) {
	query := `
		SELECT id, phone, call_type, transcript, sentiment_score, insights, resolved, created_at
		FROM calls
	`
	args := make([]any, 0, 3)
	if callType != "" {
		query += ` WHERE call_type = ?`
		args = append(args, callType)
	}
	query += ` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query ListCalls: %w", err)
	}
	defer rows.Close()

	return collectCalls(rows, "ListCalls")
}

func (s *CallRepository) InsertInsight(ctx context.Context, row models.InsightRow) error {
	const query = `
		INSERT INTO call_insights (id, call_id, insight_type, insight_text, confidence_score, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, s.rebind(query),
		row.ID, row.CallID, row.InsightType, row.InsightText,
		row.ConfidenceScore, row.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert insight for call %s: %w", row.CallID, err)
	}
	return nil
}

func (s *CallRepository) ListInsightsByCall(ctx context.Context, callID string) ([]models.InsightRow, error) {
	const query = `
		SELECT id, call_id, insight_type, insight_text, confidence_score, created_at
		FROM call_insights
		WHERE call_id = ?
		ORDER BY created_at, id
	`

	rows, err := s.db.QueryContext(ctx, s.rebind(query), callID)
	if err != nil {
		return nil, fmt.Errorf("query ListInsightsByCall: %w", err)
	}
	defer rows.Close()

	var results []models.InsightRow
	for rows.Next() {
		var r models.InsightRow
		var createdAt string
		if err := rows.Scan(&r.ID, &r.CallID, &r.InsightType, &r.InsightText, &r.ConfidenceScore, &createdAt); err != nil {
			return nil, fmt.Errorf("scan ListInsightsByCall row: %w", err)
		}
		r.CreatedAt, err = time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse insight timestamp: %w", err)
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ListInsightsByCall: %w", err)
	}
	return results, nil
}

// DailySentiment aggregates sentiment per day entirely in SQL. RFC3339 text
// timestamps make substr(created_at, 1, 10) the day key on both drivers.
func (s *CallRepository) DailySentiment(ctx context.Context, start, end time.Time) ([]models.DailySentiment, error) {
	const query = `
		SELECT
			substr(created_at, 1, 10) AS day,
			AVG(sentiment_score) AS avg_score,
			MIN(sentiment_score) AS min_score,
			MAX(sentiment_score) AS max_score,
			COUNT(id) AS call_count
		FROM calls
		WHERE created_at >= ? AND created_at <= ?
		GROUP BY day
		ORDER BY day
	`

	rows, err := s.db.QueryContext(ctx, s.rebind(query),
		start.UTC().Format(timeLayout), end.UTC().Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("query DailySentiment: %w", err)
	}
	defer rows.Close()

	var results []models.DailySentiment
	for rows.Next() {
		var r models.DailySentiment
		if err := rows.Scan(&r.Day, &r.AvgScore, &r.MinScore, &r.MaxScore, &r.CallCount); err != nil {
			return nil, fmt.Errorf("scan DailySentiment row: %w", err)
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate DailySentiment: %w", err)
	}
	return results, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCall(sc rowScanner) (models.CallRow, error) {
	var r models.CallRow
	var createdAt string
	if err := sc.Scan(&r.ID, &r.Phone, &r.CallType, &r.Transcript,
		&r.SentimentScore, &r.Insights, &r.Resolved, &createdAt); err != nil {
		return models.CallRow{}, err
	}

	parsed, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return models.CallRow{}, fmt.Errorf("parse call timestamp: %w", err)
	}
	r.CreatedAt = parsed
	return r, nil
}

func collectCalls(rows *sql.Rows, op string) ([]models.CallRow, error) {
	var results []models.CallRow
	for rows.Next() {
		r, err := scanCall(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s row: %w", op, err)
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", op, err)
	}
	return results, nil
}
