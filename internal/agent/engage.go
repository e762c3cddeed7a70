// internal/agent/engage.go
package agent

import (
	"context"
	"fmt"
	"time"

	"recur_notification_service/internal/domain/attendance"
	"recur_notification_service/internal/domain/class"
	"recur_notification_service/internal/domain/notification"
	"recur_notification_service/internal/domain/user"
	"recur_notification_service/internal/schedule"

	"github.com/sirupsen/logrus"
)

const (
	postClassCooldown     = 24 * time.Hour
	weeklySummaryCooldown = 7 * 24 * time.Hour
)

// Engage reminds users to mark attendance after a scheduled class and sends a
// weekly attendance summary on the configured day and hour.
type Engage struct {
	classes     class.Repository
	attendance  attendance.Repository
	dedup       DedupChecker
	summaryDay  time.Weekday
	summaryHour int
	logger      *logrus.Logger
}

func NewEngage(cr class.Repository, ar attendance.Repository, dedup DedupChecker, summaryDay time.Weekday, summaryHour int, logger *logrus.Logger) *Engage {
	return &Engage{
		classes:     cr,
		attendance:  ar,
		dedup:       dedup,
		summaryDay:  summaryDay,
		summaryHour: summaryHour,
		logger:      logger,
	}
}

func (e *Engage) Name() string { return NameEngage }

func (e *Engage) Evaluate(ctx context.Context, u *user.User, now time.Time) (Decision, error) {
	classes, err := e.classes.ListActive(ctx, u.ID)
	if err != nil {
		e.logger.WithError(err).WithField("user_id", u.ID).Warn("engage: listing active classes failed, treating as none")
		classes = nil
	}
	if len(classes) == 0 {
		return Skip("no active classes"), nil
	}

	if d, ok := e.postClassReminder(ctx, u, classes, now); ok {
		return d, nil
	}

	if now.Weekday() == e.summaryDay && now.Hour() == e.summaryHour {
		return e.weeklySummary(ctx, u, classes, now), nil
	}

	return Skip("no engagement actions needed"), nil
}

// postClassReminder fires two to three hours after a class scheduled today,
// unless attendance for today was already marked or a reminder went out inside
// the cooldown.
func (e *Engage) postClassReminder(ctx context.Context, u *user.User, classes []*class.Class, now time.Time) (Decision, bool) {
	for _, c := range classes {
		if !c.HasSchedule() || !schedule.IsScheduledToday(c.Schedule, now) {
			continue
		}

		for _, clock := range schedule.TimesOn(c.Schedule, now.Weekday()) {
			at, ok := schedule.At(now, clock)
			if !ok {
				continue
			}
			hoursAfter := schedule.HoursBetween(at, now)
			if hoursAfter < 2 || hoursAfter >= 3 {
				continue
			}

			marked, err := e.attendance.ExistsOnDate(ctx, c.ID, now)
			if err != nil {
				e.logger.WithError(err).WithField("class_id", c.ID).Warn("engage: attendance check failed, skipping class")
				continue
			}
			if marked {
				continue
			}

			suppressed, err := e.dedup.IsSuppressed(ctx, u.ID, notification.TypePostClassReminder, c.ID, postClassCooldown, now)
			if err != nil {
				e.logger.WithError(err).WithField("class_id", c.ID).Warn("engage: dedup check failed for post-class reminder")
			}
			if suppressed {
				continue
			}

			return Decision{
				Action: ActionSend,
				Reason: fmt.Sprintf("post-class attendance reminder for %s", c.Name),
				Message: Message{
					Title: fmt.Sprintf("Did you attend %s?", c.Name),
					Body:  "Don't forget to mark your attendance for today's session!",
				},
				DeepLink: fmt.Sprintf("recur://class/%s", c.ID),
				Priority: notification.PriorityMedium,
				Type:     notification.TypePostClassReminder,
				Metadata: map[string]any{
					notification.MetadataClassID:        c.ID,
					"class_name":                        c.Name,
					"scheduled_time":                    at.Format(time.RFC3339),
					notification.MetadataAttendanceDate: now.Format("2006-01-02"),
				},
			}, true
		}
	}
	return Decision{}, false
}

// weeklySummary reports this week's and this month's attendance across active
// classes. Nothing is sent for a zero-attendance week.
func (e *Engage) weeklySummary(ctx context.Context, u *user.User, classes []*class.Class, now time.Time) Decision {
	suppressed, err := e.dedup.IsSuppressed(ctx, u.ID, notification.TypeWeeklySummary, "", weeklySummaryCooldown, now)
	if err != nil {
		e.logger.WithError(err).WithField("user_id", u.ID).Warn("engage: dedup check failed for weekly summary")
	}
	if suppressed {
		return Skip("weekly summary already sent this week")
	}

	ids := make([]string, 0, len(classes))
	for _, c := range classes {
		ids = append(ids, c.ID)
	}

	weekStart, weekEnd := weekBounds(now)
	weekly, err := e.attendance.CountForClassesBetween(ctx, ids, weekStart, weekEnd)
	if err != nil {
		e.logger.WithError(err).WithField("user_id", u.ID).Warn("engage: weekly attendance count failed, treating as zero")
		weekly = 0
	}
	if weekly == 0 {
		return Skip("no classes attended this week")
	}

	monthStart, monthEnd := monthBounds(now)
	monthly, err := e.attendance.CountForClassesBetween(ctx, ids, monthStart, monthEnd)
	if err != nil {
		e.logger.WithError(err).WithField("user_id", u.ID).Warn("engage: monthly attendance count failed, treating as zero")
		monthly = 0
	}

	return Decision{
		Action: ActionSend,
		Reason: "weekly engagement summary",
		Message: Message{
			Title: "Your week in classes",
			Body:  fmt.Sprintf("You attended %d %s this week. Total this month: %d.", weekly, classWord(weekly), monthly),
		},
		DeepLink: "recur://analytics",
		Priority: notification.PriorityLow,
		Type:     notification.TypeWeeklySummary,
		Metadata: map[string]any{
			"classes_this_week":  weekly,
			"classes_this_month": monthly,
		},
	}
}

// weekBounds returns [Sunday 00:00, next Sunday 00:00) around now.
func weekBounds(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start = start.AddDate(0, 0, -int(now.Weekday()))
	return start, start.AddDate(0, 0, 7)
}

// monthBounds returns [first of month 00:00, first of next month 00:00).
func monthBounds(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 1, 0)
}
