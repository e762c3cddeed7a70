package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"recur_notification_service/internal/domain/payment"
)

type PostgresPaymentRepository struct {
	db *sql.DB
}

func NewPostgresPaymentRepository(db *sql.DB) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{db: db}
}

func (r *PostgresPaymentRepository) CountByClass(ctx context.Context, classID string) (int, error) {
	query := `SELECT COUNT(*) FROM payments WHERE class_id = $1`
	var count int
	if err := r.db.QueryRowContext(ctx, query, classID).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting payments: %w", err)
	}
	return count, nil
}

// Balance computes the prepaid position: classes paid for, minus attendance
// marked since the earliest payment for the class. Remaining goes negative
// when attendance ran ahead of payments.
func (r *PostgresPaymentRepository) Balance(ctx context.Context, ownerID, classID string) (payment.Balance, error) {
	query := `
        WITH paid AS (
            SELECT COALESCE(SUM(classes_paid), 0) AS classes_paid,
                   MIN(payment_date)              AS first_payment
              FROM payments
             WHERE user_id = $1 AND class_id = $2
        )
        SELECT p.classes_paid,
               (SELECT COUNT(*)
                  FROM class_attendance a
                 WHERE a.user_id = $1 AND a.class_id = $2
                   AND (p.first_payment IS NULL OR a.class_date >= p.first_payment))
          FROM paid p`

	var b payment.Balance
	if err := r.db.QueryRowContext(ctx, query, ownerID, classID).Scan(&b.ClassesPaid, &b.ClassesAttended); err != nil {
		return payment.Balance{}, fmt.Errorf("error computing prepaid balance: %w", err)
	}
	b.Remaining = b.ClassesPaid - b.ClassesAttended
	return b, nil
}

func (r *PostgresPaymentRepository) ExistsCreatedAfter(ctx context.Context, ownerID, classID string, after time.Time) (bool, error) {
	query := `SELECT EXISTS (
                 SELECT 1 FROM payments
                  WHERE user_id = $1 AND class_id = $2 AND created_at > $3)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, ownerID, classID, after).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking payments after instant: %w", err)
	}
	return exists, nil
}
