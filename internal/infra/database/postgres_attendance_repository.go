package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

type PostgresAttendanceRepository struct {
	db *sql.DB
}

func NewPostgresAttendanceRepository(db *sql.DB) *PostgresAttendanceRepository {
	return &PostgresAttendanceRepository{db: db}
}

func (r *PostgresAttendanceRepository) ExistsOnDate(ctx context.Context, classID string, day time.Time) (bool, error) {
	query := `SELECT EXISTS (
                 SELECT 1 FROM class_attendance
                  WHERE class_id = $1 AND class_date = $2::date)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, classID, day.Format("2006-01-02")).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking attendance existence: %w", err)
	}
	return exists, nil
}

func (r *PostgresAttendanceRepository) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	query := `SELECT COUNT(*) FROM class_attendance WHERE user_id = $1`
	var count int
	if err := r.db.QueryRowContext(ctx, query, ownerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting attendance records: %w", err)
	}
	return count, nil
}

func (r *PostgresAttendanceRepository) CountForClassesBetween(ctx context.Context, classIDs []string, from, to time.Time) (int, error) {
	if len(classIDs) == 0 {
		return 0, nil
	}
	query := `SELECT COUNT(*) FROM class_attendance
               WHERE class_id = ANY($1)
                 AND class_date >= $2::date AND class_date < $3::date`
	var count int
	err := r.db.QueryRowContext(ctx, query, pq.Array(classIDs), from.Format("2006-01-02"), to.Format("2006-01-02")).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting attendance in range: %w", err)
	}
	return count, nil
}
