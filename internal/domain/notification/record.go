// internal/domain/notification/record.go
package notification

import (
	"database/sql"
	"time"
)

// Record is an actionable in-app notification with a lifecycle:
// created → read (on view) → completed | dismissed. Completed and dismissed
// are terminal; the first to occur wins. A record with neither terminal field
// set is "active" and blocks re-notification under the active-record dedup
// strategy.
type Record struct {
	ID                string
	UserID            string
	AgentName         string
	Type              Type
	Title             string
	Body              string
	DeepLink          string
	Priority          Priority
	Metadata          map[string]any
	CreatedAt         time.Time
	ReadAt            sql.NullTime
	ActionCompletedAt sql.NullTime
	DismissedAt       sql.NullTime
}

// Active reports whether the record still blocks re-notification.
func (r *Record) Active() bool {
	return !r.ActionCompletedAt.Valid && !r.DismissedAt.Valid
}

// ClassID returns the class the record is scoped to, or "" when unscoped.
func (r *Record) ClassID() string {
	return metaString(r.Metadata, MetadataClassID)
}

// AttendanceDate returns the calendar date an attendance reminder refers to,
// or "" when not applicable.
func (r *Record) AttendanceDate() string {
	return metaString(r.Metadata, MetadataAttendanceDate)
}
