package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/circadia-app/circadia/backend/internal/models"
)

// sqliteStore implements both repositories against a local sqlite database.
// It exists for development and self-hosted deployments; the hosted store is
// Supabase. Timestamps are stored as UTC text, metadata as a JSON object.
type sqliteStore struct {
	db *sql.DB
}

// sqliteTimeLayout is a fixed-width UTC layout. Range filters and ORDER BY
// compare timestamp text lexicographically, so every stored instant must be
// normalized to UTC and padded to the same width; variable offsets or trimmed
// sub-second digits would break chronological ordering.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatSQLiteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS events (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	event_type TEXT NOT NULL,
	timestamp  TEXT NOT NULL,
	metadata   TEXT NOT NULL DEFAULT '{}',
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_user_type_ts ON events(user_id, event_type, timestamp);

CREATE TABLE IF NOT EXISTS insights (
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL,
	insight_type  TEXT NOT NULL,
	message       TEXT NOT NULL,
	scheduled_for TEXT NOT NULL,
	is_read       INTEGER NOT NULL DEFAULT 0,
	created_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_insights_user_sched ON insights(user_id, scheduled_for);
`

// OpenSQLite opens (and bootstraps) a sqlite-backed store.
func OpenSQLite(path string) (*sqliteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply sqlite schema: %w", err)
	}

	return &sqliteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func (s *sqliteStore) Insert(ctx context.Context, event *models.Event) (*models.Event, error) {
	metadata := []byte("{}")
	if len(event.Metadata) > 0 {
		var err error
		metadata, err = json.Marshal(event.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to encode metadata: %w", err)
		}
	}

	stored := *event
	stored.ID = uuid.New().String()
	stored.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, user_id, event_type, timestamp, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		stored.ID,
		stored.UserID,
		string(stored.Kind),
		formatSQLiteTime(stored.Timestamp),
		string(metadata),
		formatSQLiteTime(stored.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}

	return &stored, nil
}

func (s *sqliteStore) QueryByUser(ctx context.Context, userID string, q EventQuery) ([]models.Event, error) {
	sqlq := `SELECT id, user_id, event_type, timestamp, metadata, created_at FROM events WHERE user_id = ?`
	args := []any{userID}

	if q.Kind != nil {
		sqlq += ` AND event_type = ?`
		args = append(args, string(*q.Kind))
	}
	if q.Since != nil {
		sqlq += ` AND timestamp >= ?`
		args = append(args, formatSQLiteTime(*q.Since))
	}
	if q.Until != nil {
		sqlq += ` AND timestamp < ?`
		args = append(args, formatSQLiteTime(*q.Until))
	}
	if q.Order == OrderDesc {
		sqlq += ` ORDER BY timestamp DESC`
	} else {
		sqlq += ` ORDER BY timestamp ASC`
	}
	if q.Limit > 0 {
		sqlq += ` LIMIT ?`
		args = append(args, q.Limit)
		if q.Offset > 0 {
			sqlq += ` OFFSET ?`
			args = append(args, q.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, sqlq, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var (
			ev                  models.Event
			kind, ts, meta, cat string
		)
		if err := rows.Scan(&ev.ID, &ev.UserID, &kind, &ts, &meta, &cat); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		ev.Kind = models.EventKind(kind)
		if ev.Timestamp, err = time.Parse(sqliteTimeLayout, ts); err != nil {
			return nil, fmt.Errorf("failed to parse event timestamp: %w", err)
		}
		if ev.CreatedAt, err = time.Parse(sqliteTimeLayout, cat); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		if meta != "" && meta != "{}" {
			if err := json.Unmarshal([]byte(meta), &ev.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode metadata: %w", err)
			}
		}
		events = append(events, ev)
	}

	return events, rows.Err()
}

func (s *sqliteStore) InsertInsight(ctx context.Context, insight *models.Insight) (*models.Insight, error) {
	stored := *insight
	stored.ID = uuid.New().String()
	stored.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO insights (id, user_id, insight_type, message, scheduled_for, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		stored.ID,
		stored.UserID,
		string(stored.InsightType),
		stored.Message,
		formatSQLiteTime(stored.ScheduledFor),
		boolToInt(stored.IsRead),
		formatSQLiteTime(stored.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert insight: %w", err)
	}

	return &stored, nil
}

func (s *sqliteStore) GetByUser(ctx context.Context, userID string) ([]models.Insight, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, insight_type, message, scheduled_for, is_read, created_at
		FROM insights WHERE user_id = ? ORDER BY scheduled_for DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query insights: %w", err)
	}
	defer rows.Close()

	var insights []models.Insight
	for rows.Next() {
		in, err := scanInsight(rows)
		if err != nil {
			return nil, err
		}
		insights = append(insights, *in)
	}

	return insights, rows.Err()
}

func (s *sqliteStore) MarkRead(ctx context.Context, userID, insightID string, read bool) (*models.Insight, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE insights SET is_read = ? WHERE id = ? AND user_id = ?`,
		boolToInt(read), insightID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update insight: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, insight_type, message, scheduled_for, is_read, created_at
		FROM insights WHERE id = ?`, insightID)
	return scanInsight(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInsight(row rowScanner) (*models.Insight, error) {
	var (
		in           models.Insight
		itype, sched string
		isRead       int
		createdAt    string
	)
	if err := row.Scan(&in.ID, &in.UserID, &itype, &in.Message, &sched, &isRead, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan insight: %w", err)
	}
	in.InsightType = models.InsightType(itype)
	in.IsRead = isRead != 0

	var err error
	if in.ScheduledFor, err = time.Parse(sqliteTimeLayout, sched); err != nil {
		return nil, fmt.Errorf("failed to parse scheduled_for: %w", err)
	}
	if in.CreatedAt, err = time.Parse(sqliteTimeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}

	return &in, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// sqliteInsightRepository adapts sqliteStore's insight methods to the
// InsightRepository interface (Insert name collides with the event side).
type sqliteInsightRepository struct {
	store *sqliteStore
}

func (r *sqliteInsightRepository) Insert(ctx context.Context, insight *models.Insight) (*models.Insight, error) {
	return r.store.InsertInsight(ctx, insight)
}

func (r *sqliteInsightRepository) GetByUser(ctx context.Context, userID string) ([]models.Insight, error) {
	return r.store.GetByUser(ctx, userID)
}

func (r *sqliteInsightRepository) MarkRead(ctx context.Context, userID, insightID string, read bool) (*models.Insight, error) {
	return r.store.MarkRead(ctx, userID, insightID, read)
}
