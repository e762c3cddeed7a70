// internal/domain/notification/repository.go
package notification

import (
	"context"
	"time"
)

// HistoryStore persists and queries the append-only sent log.
type HistoryStore interface {
	Append(ctx context.Context, e *HistoryEntry) error
	// Last returns the most recent entry for (userID, type), narrowed to the
	// class when classID is non-empty, or database.ErrHistoryNotFound.
	Last(ctx context.Context, userID string, t Type, classID string) (*HistoryEntry, error)
	// CountSentSince counts entries for the user with sent_at at or after the
	// given instant. Used for the daily frequency cap.
	CountSentSince(ctx context.Context, userID string, since time.Time) (int, error)
}

// RecordStore persists actionable in-app notifications and their lifecycle
// transitions. MarkActionCompleted and MarkDismissed only apply to records
// with no terminal field set; the store rejects double transitions.
type RecordStore interface {
	Create(ctx context.Context, r *Record) error
	// Active returns the newest unresolved record for (userID, type), narrowed
	// to the class when classID is non-empty, or database.ErrRecordNotFound.
	Active(ctx context.Context, userID string, t Type, classID string) (*Record, error)
	ListAllActive(ctx context.Context) ([]*Record, error)
	MarkRead(ctx context.Context, id string, at time.Time) error
	MarkActionCompleted(ctx context.Context, id string, at time.Time) error
	MarkDismissed(ctx context.Context, id string, at time.Time) error
}

// DecisionLog is the write-only audit sink for agent decisions.
type DecisionLog interface {
	Append(ctx context.Context, e *DecisionLogEntry) error
}
