package database

import (
	"context"
	"database/sql"
	"fmt"

	"recur_notification_service/internal/domain/user"
)

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) ListAll(ctx context.Context) ([]*user.User, error) {
	query := `SELECT u.id, u.created_at,
                     COALESCE(p.timezone, 'UTC'),
                     p.onboarding_completed_at
                FROM users u
                LEFT JOIN user_preferences p ON p.user_id = u.id
               ORDER BY u.created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	defer rows.Close()

	users := make([]*user.User, 0)
	for rows.Next() {
		u := &user.User{}
		if err := rows.Scan(&u.ID, &u.CreatedAt, &u.Timezone, &u.OnboardingCompletedAt); err != nil {
			return nil, fmt.Errorf("error scanning user: %w", err)
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

func (r *PostgresUserRepository) ActivePushToken(ctx context.Context, userID string) (string, error) {
	query := `SELECT expo_push_token FROM user_push_tokens
               WHERE user_id = $1 AND is_active = TRUE
               ORDER BY last_used_at DESC NULLS LAST
               LIMIT 1`
	var token string
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&token)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", ErrNoActivePushToken
		}
		return "", fmt.Errorf("error getting active push token: %w", err)
	}
	return token, nil
}
