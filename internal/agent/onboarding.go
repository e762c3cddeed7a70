// internal/agent/onboarding.go
package agent

import (
	"context"
	"fmt"
	"time"

	"recur_notification_service/internal/domain/attendance"
	"recur_notification_service/internal/domain/class"
	"recur_notification_service/internal/domain/family"
	"recur_notification_service/internal/domain/notification"
	"recur_notification_service/internal/domain/user"
	"recur_notification_service/internal/schedule"

	"github.com/sirupsen/logrus"
)

const (
	onboardingCooldown   = 3 * 24 * time.Hour
	onboardingWindowDays = 14

	milestoneFamilyMembers = 1
	milestoneClasses       = 1
	milestoneAttendance    = 5
)

var onboardingTriggerDays = []int{3, 7}

// Onboarding guides new users toward the 1-1-5 activation milestone: one
// family member, one class, five attendance records. It fires only on day 3
// and day 7 after install, and picks the next missing step by priority.
type Onboarding struct {
	classes    class.Repository
	families   family.Repository
	attendance attendance.Repository
	dedup      DedupChecker
	logger     *logrus.Logger
}

func NewOnboarding(cr class.Repository, fr family.Repository, ar attendance.Repository, dedup DedupChecker, logger *logrus.Logger) *Onboarding {
	return &Onboarding{classes: cr, families: fr, attendance: ar, dedup: dedup, logger: logger}
}

func (o *Onboarding) Name() string { return NameOnboarding }

func (o *Onboarding) Evaluate(ctx context.Context, u *user.User, now time.Time) (Decision, error) {
	if u.OnboardingCompletedAt.Valid {
		return Skip("onboarding already completed"), nil
	}

	days := schedule.DaysSince(u.CreatedAt, now)
	if days > onboardingWindowDays {
		return Skip(fmt.Sprintf("past onboarding window (day %d)", days)), nil
	}

	famCount, err := o.families.CountByOwner(ctx, u.ID)
	if err != nil {
		o.logger.WithError(err).WithField("user_id", u.ID).Warn("onboarding: family count failed, treating as zero")
		famCount = 0
	}
	allClasses, err := o.classes.ListAll(ctx, u.ID)
	if err != nil {
		o.logger.WithError(err).WithField("user_id", u.ID).Warn("onboarding: listing classes failed, treating as none")
		allClasses = nil
	}
	activeClasses, err := o.classes.ListActive(ctx, u.ID)
	if err != nil {
		o.logger.WithError(err).WithField("user_id", u.ID).Warn("onboarding: listing active classes failed, treating as none")
		activeClasses = nil
	}
	attCount, err := o.attendance.CountByOwner(ctx, u.ID)
	if err != nil {
		o.logger.WithError(err).WithField("user_id", u.ID).Warn("onboarding: attendance count failed, treating as zero")
		attCount = 0
	}

	if famCount >= milestoneFamilyMembers && len(allClasses) >= milestoneClasses && attCount >= milestoneAttendance {
		return Skip("1-1-5 milestone reached"), nil
	}

	trigger := false
	for _, d := range onboardingTriggerDays {
		if days == d {
			trigger = true
			break
		}
	}
	if !trigger {
		return Skip(fmt.Sprintf("not on a trigger day (day %d)", days)), nil
	}

	suppressed, err := o.dedup.IsSuppressed(ctx, u.ID, notification.TypeOnboardingMilestone, "", onboardingCooldown, now)
	if err != nil {
		o.logger.WithError(err).WithField("user_id", u.ID).Warn("onboarding: dedup check failed")
	}
	if suppressed {
		return Skip("onboarding nudge sent within the last 3 days"), nil
	}

	var (
		msg      Message
		deepLink string
		priority notification.Priority
	)
	switch {
	case famCount == 0:
		msg = Message{
			Title: "Let's get started!",
			Body:  "Add your first family member to begin tracking classes.",
		}
		deepLink = "recur://add-family-member"
		priority = notification.PriorityHigh
	case len(allClasses) == 0:
		msg = Message{
			Title: "Add your first class",
			Body:  "Tell us about a class you're taking to start tracking attendance.",
		}
		deepLink = "recur://add-class"
		priority = notification.PriorityHigh
	case len(activeClasses) == 0:
		msg = Message{
			Title: "Resume tracking",
			Body:  "Resume a class to continue tracking your progress.",
		}
		deepLink = "recur://home"
		priority = notification.PriorityMedium
	case attCount == 0:
		first := activeClasses[0]
		msg = Message{
			Title: "Mark your first attendance",
			Body:  fmt.Sprintf("Did you attend %s recently? Mark it now!", first.Name),
		}
		deepLink = fmt.Sprintf("recur://class/%s", first.ID)
		priority = notification.PriorityHigh
	case attCount < milestoneAttendance:
		remaining := milestoneAttendance - attCount
		msg = Message{
			Title: "You're making progress!",
			Body:  fmt.Sprintf("Mark %d more %s to complete your setup.", remaining, classWord(remaining)),
		}
		deepLink = "recur://home"
		priority = notification.PriorityMedium
	default:
		return Skip("all onboarding steps complete"), nil
	}

	return Decision{
		Action:   ActionSend,
		Reason:   fmt.Sprintf("day %d onboarding nudge", days),
		Message:  msg,
		DeepLink: deepLink,
		Priority: priority,
		Type:     notification.TypeOnboardingMilestone,
		Metadata: map[string]any{
			"family_members":     famCount,
			"classes":            len(allClasses),
			"active_classes":     len(activeClasses),
			"attendance_records": attCount,
			"days_since_install": days,
		},
	}, nil
}
