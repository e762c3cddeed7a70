package family

import (
	"context"
	"time"
)

// Member is a family member on whose behalf classes are tracked.
type Member struct {
	ID        string
	OwnerID   string
	Name      string
	Relation  string
	CreatedAt time.Time
}

// Repository defines owner-scoped read access to family members.
type Repository interface {
	CountByOwner(ctx context.Context, ownerID string) (int, error)
}
