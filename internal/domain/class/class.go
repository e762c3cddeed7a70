package class

import (
	"time"

	"recur_notification_service/internal/schedule"
)

// Status of a class. Only active classes participate in reminder and
// engagement evaluation; paused classes remain visible to all-classes queries.
type Status string

const (
	StatusActive Status = "active"
	StatusPaused Status = "paused"
)

// Class is a recurring class tracked by a user.
type Class struct {
	ID        string
	OwnerID   string
	Name      string
	Schedule  []schedule.Entry // empty when no schedule is configured
	Status    Status
	CreatedAt time.Time
}

// HasSchedule reports whether any schedule entries are configured.
func (c *Class) HasSchedule() bool {
	return len(c.Schedule) > 0
}

// HasValidSchedule reports whether a non-empty, well-formed schedule exists.
func (c *Class) HasValidSchedule() bool {
	return c.HasSchedule() && schedule.IsValid(c.Schedule)
}
