package attendance

import (
	"context"
	"time"
)

// Record marks that a class was attended on a calendar date. The date carries
// no time component.
type Record struct {
	ID             string
	OwnerID        string
	FamilyMemberID string
	ClassID        string
	ClassDate      time.Time
	CreatedAt      time.Time
}

// Repository defines read access to attendance records.
type Repository interface {
	// ExistsOnDate reports whether attendance was marked for the class on the
	// calendar date of day.
	ExistsOnDate(ctx context.Context, classID string, day time.Time) (bool, error)
	// CountByOwner returns the owner's total attendance record count.
	CountByOwner(ctx context.Context, ownerID string) (int, error)
	// CountForClassesBetween counts attendance for the given classes with
	// class_date in [from, to).
	CountForClassesBetween(ctx context.Context, classIDs []string, from, to time.Time) (int, error)
}
