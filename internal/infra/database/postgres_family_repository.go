package database

import (
	"context"
	"database/sql"
	"fmt"
)

type PostgresFamilyRepository struct {
	db *sql.DB
}

func NewPostgresFamilyRepository(db *sql.DB) *PostgresFamilyRepository {
	return &PostgresFamilyRepository{db: db}
}

func (r *PostgresFamilyRepository) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	query := `SELECT COUNT(*) FROM family_members WHERE user_id = $1`
	var count int
	if err := r.db.QueryRowContext(ctx, query, ownerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting family members: %w", err)
	}
	return count, nil
}
