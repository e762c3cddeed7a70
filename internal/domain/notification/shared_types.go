// internal/domain/notification/shared_types.go
package notification

// Type identifies the concrete situation a notification addresses. Dedup
// checks and lifecycle validation both key on it.
type Type string

const (
	TypePreClassReminder    Type = "pre_class_reminder"
	TypePostClassReminder   Type = "post_class_reminder"
	TypeLowBalance          Type = "low_balance"
	TypeAddSchedule         Type = "add_schedule"
	TypeAddPaymentTracking  Type = "add_payment_tracking"
	TypeWeeklySummary       Type = "weekly_summary"
	TypeOnboardingMilestone Type = "onboarding_milestone"
	TypeDormantReactivation Type = "dormant_reactivation"
)

// Priority of a notification as surfaced to the user.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// MetadataClassID is the metadata key carrying the class a notification is
// scoped to, when any.
const MetadataClassID = "class_id"

// MetadataAttendanceDate is the metadata key carrying the calendar date
// (YYYY-MM-DD) an attendance reminder refers to.
const MetadataAttendanceDate = "attendance_date"
