// internal/infra/database/postgres_notification_repository.go
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"recur_notification_service/internal/domain/notification"
)

// PostgresNotificationRepository implements the notification HistoryStore,
// RecordStore and DecisionLog interfaces over three tables:
// notification_history, notification_records and agent_decision_log.
type PostgresNotificationRepository struct {
	db *sql.DB
}

func NewPostgresNotificationRepository(db *sql.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

// --- HistoryStore ---

func (r *PostgresNotificationRepository) Append(ctx context.Context, e *notification.HistoryEntry) error {
	meta, err := encodeMetadata(e.Metadata)
	if err != nil {
		return err
	}
	query := `INSERT INTO notification_history
               (id, user_id, agent_name, notification_type, title, body, deep_link, metadata, sent_at)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = r.db.ExecContext(ctx, query, e.ID, e.UserID, e.AgentName, e.Type, e.Title, e.Body, nullString(e.DeepLink), meta, e.SentAt)
	if err != nil {
		return fmt.Errorf("error appending notification history: %w", err)
	}
	return nil
}

func (r *PostgresNotificationRepository) Last(ctx context.Context, userID string, t notification.Type, classID string) (*notification.HistoryEntry, error) {
	query := `SELECT id, user_id, agent_name, notification_type, title, body, COALESCE(deep_link, ''), metadata, sent_at
                FROM notification_history
               WHERE user_id = $1 AND notification_type = $2`
	args := []any{userID, t}
	if classID != "" {
		query += ` AND metadata->>'class_id' = $3`
		args = append(args, classID)
	}
	query += ` ORDER BY sent_at DESC LIMIT 1`

	e := &notification.HistoryEntry{}
	var meta []byte
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&e.ID, &e.UserID, &e.AgentName, &e.Type, &e.Title, &e.Body, &e.DeepLink, &meta, &e.SentAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrHistoryNotFound
		}
		return nil, fmt.Errorf("error getting last notification history entry: %w", err)
	}
	if e.Metadata, err = decodeMetadata(meta); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *PostgresNotificationRepository) CountSentSince(ctx context.Context, userID string, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM notification_history WHERE user_id = $1 AND sent_at >= $2`
	var count int
	if err := r.db.QueryRowContext(ctx, query, userID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting notification history: %w", err)
	}
	return count, nil
}

// --- RecordStore ---

func (r *PostgresNotificationRepository) Create(ctx context.Context, rec *notification.Record) error {
	meta, err := encodeMetadata(rec.Metadata)
	if err != nil {
		return err
	}
	query := `INSERT INTO notification_records
               (id, user_id, agent_name, notification_type, title, body, deep_link, priority, metadata, created_at)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err = r.db.ExecContext(ctx, query, rec.ID, rec.UserID, rec.AgentName, rec.Type, rec.Title, rec.Body,
		nullString(rec.DeepLink), rec.Priority, meta, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating notification record: %w", err)
	}
	return nil
}

const recordColumns = `id, user_id, agent_name, notification_type, title, body, COALESCE(deep_link, ''),
                       priority, metadata, created_at, read_at, action_completed_at, dismissed_at`

func (r *PostgresNotificationRepository) Active(ctx context.Context, userID string, t notification.Type, classID string) (*notification.Record, error) {
	query := `SELECT ` + recordColumns + `
                FROM notification_records
               WHERE user_id = $1 AND notification_type = $2
                 AND action_completed_at IS NULL AND dismissed_at IS NULL`
	args := []any{userID, t}
	if classID != "" {
		query += ` AND metadata->>'class_id' = $3`
		args = append(args, classID)
	}
	query += ` ORDER BY created_at DESC LIMIT 1`

	rec, err := r.scanRecord(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("error getting active notification record: %w", err)
	}
	return rec, nil
}

func (r *PostgresNotificationRepository) ListAllActive(ctx context.Context) ([]*notification.Record, error) {
	query := `SELECT ` + recordColumns + `
                FROM notification_records
               WHERE action_completed_at IS NULL AND dismissed_at IS NULL
               ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing active notification records: %w", err)
	}
	defer rows.Close()

	records := make([]*notification.Record, 0)
	for rows.Next() {
		rec, err := r.scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning notification record: %w", err)
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification records: %w", err)
	}
	return records, nil
}

func (r *PostgresNotificationRepository) MarkRead(ctx context.Context, id string, at time.Time) error {
	// COALESCE keeps the first read time; re-reading is a no-op.
	query := `UPDATE notification_records SET read_at = COALESCE(read_at, $2) WHERE id = $1`
	return r.execLifecycle(ctx, query, id, at)
}

func (r *PostgresNotificationRepository) MarkActionCompleted(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE notification_records SET action_completed_at = $2
               WHERE id = $1 AND action_completed_at IS NULL AND dismissed_at IS NULL`
	return r.execLifecycle(ctx, query, id, at)
}

func (r *PostgresNotificationRepository) MarkDismissed(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE notification_records SET dismissed_at = $2
               WHERE id = $1 AND action_completed_at IS NULL AND dismissed_at IS NULL`
	return r.execLifecycle(ctx, query, id, at)
}

func (r *PostgresNotificationRepository) execLifecycle(ctx context.Context, query, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("error updating notification record lifecycle: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if affected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PostgresNotificationRepository) scanRecord(row rowScanner) (*notification.Record, error) {
	rec := &notification.Record{}
	var meta []byte
	err := row.Scan(&rec.ID, &rec.UserID, &rec.AgentName, &rec.Type, &rec.Title, &rec.Body, &rec.DeepLink,
		&rec.Priority, &meta, &rec.CreatedAt, &rec.ReadAt, &rec.ActionCompletedAt, &rec.DismissedAt)
	if err != nil {
		return nil, err
	}
	if rec.Metadata, err = decodeMetadata(meta); err != nil {
		return nil, err
	}
	return rec, nil
}

// --- DecisionLog ---

// PostgresDecisionLogRepository is the write-only audit sink for agent
// decisions. Separate from the notification repository because the engine
// never reads this table back.
type PostgresDecisionLogRepository struct {
	db *sql.DB
}

func NewPostgresDecisionLogRepository(db *sql.DB) *PostgresDecisionLogRepository {
	return &PostgresDecisionLogRepository{db: db}
}

func (r *PostgresDecisionLogRepository) Append(ctx context.Context, e *notification.DecisionLogEntry) error {
	meta, err := encodeMetadata(e.Metadata)
	if err != nil {
		return err
	}
	query := `INSERT INTO agent_decision_log (user_id, agent_name, decision, reason, metadata, created_at)
               VALUES ($1, $2, $3, $4, $5, $6)`
	_, err = r.db.ExecContext(ctx, query, e.UserID, e.AgentName, e.Decision, nullString(e.Reason), meta, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("error appending agent decision log: %w", err)
	}
	return nil
}

// --- helpers ---

func encodeMetadata(meta map[string]any) ([]byte, error) {
	if meta == nil {
		return []byte("{}"), nil
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("error encoding metadata: %w", err)
	}
	return raw, nil
}

func decodeMetadata(raw []byte) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var meta map[string]any
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("error decoding metadata: %w", err)
	}
	return meta, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
