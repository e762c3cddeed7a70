package payment

import (
	"context"
	"time"
)

// Payment records money paid toward a class, covering ClassesPaid sessions.
type Payment struct {
	ID             string
	OwnerID        string
	FamilyMemberID string
	ClassID        string
	Amount         float64
	Currency       string
	ClassesPaid    int
	PaymentDate    time.Time
	CreatedAt      time.Time
}

// Balance is the prepaid position of a class: sessions paid for, sessions
// attended since the earliest payment, and the difference. Remaining may be
// negative when attendance ran ahead of payments.
type Balance struct {
	ClassesPaid     int
	ClassesAttended int
	Remaining       int
}

// Repository defines read access to payments and prepaid balances.
type Repository interface {
	CountByClass(ctx context.Context, classID string) (int, error)
	// Balance computes the prepaid balance of the owner's class.
	Balance(ctx context.Context, ownerID, classID string) (Balance, error)
	// ExistsCreatedAfter reports whether any payment for the class was
	// recorded after the given instant.
	ExistsCreatedAfter(ctx context.Context, ownerID, classID string, after time.Time) (bool, error)
}
