package user

import (
	"context"
	"database/sql"
	"time"
)

// User is an account owner. CreatedAt doubles as the install date for
// onboarding and reactivation windows. Timezone is an IANA name sourced from
// the user's preferences, defaulting to UTC.
type User struct {
	ID                    string
	CreatedAt             time.Time
	Timezone              string
	OnboardingCompletedAt sql.NullTime
}

// Repository defines read access to users and their push tokens.
type Repository interface {
	ListAll(ctx context.Context) ([]*User, error)
	// ActivePushToken returns the user's active device token, or
	// database.ErrNoActivePushToken when none is registered.
	ActivePushToken(ctx context.Context, userID string) (string, error)
}
