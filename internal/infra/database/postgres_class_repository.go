package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"recur_notification_service/internal/domain/class"
	"recur_notification_service/internal/schedule"
)

type PostgresClassRepository struct {
	db *sql.DB
}

func NewPostgresClassRepository(db *sql.DB) *PostgresClassRepository {
	return &PostgresClassRepository{db: db}
}

func (r *PostgresClassRepository) ListActive(ctx context.Context, ownerID string) ([]*class.Class, error) {
	return r.list(ctx, ownerID, true)
}

func (r *PostgresClassRepository) ListAll(ctx context.Context, ownerID string) ([]*class.Class, error) {
	return r.list(ctx, ownerID, false)
}

func (r *PostgresClassRepository) list(ctx context.Context, ownerID string, activeOnly bool) ([]*class.Class, error) {
	query := `SELECT id, user_id, name, COALESCE(schedule, '[]'::jsonb), status, created_at
               FROM classes WHERE user_id = $1`
	if activeOnly {
		query += ` AND status = 'active'`
	}
	query += ` ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error listing classes: %w", err)
	}
	defer rows.Close()

	classes := make([]*class.Class, 0)
	for rows.Next() {
		c := &class.Class{}
		var rawSchedule []byte
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &rawSchedule, &c.Status, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning class: %w", err)
		}
		c.Schedule, err = decodeSchedule(rawSchedule)
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", c.ID, err)
		}
		classes = append(classes, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating classes: %w", err)
	}
	return classes, nil
}

// decodeSchedule parses the JSONB schedule column. Day names are normalized to
// the canonical three-letter form at this boundary; the stored data carries
// both abbreviated and full names across its history.
func decodeSchedule(raw []byte) ([]schedule.Entry, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var entries []schedule.Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScheduleJSON, err)
	}
	for i, e := range entries {
		if day, ok := schedule.ParseWeekday(e.Day); ok {
			entries[i].Day = schedule.Abbrev(day)
		}
	}
	return entries, nil
}
