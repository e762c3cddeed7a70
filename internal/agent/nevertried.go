// internal/agent/nevertried.go
package agent

import (
	"context"
	"fmt"
	"time"

	"recur_notification_service/internal/domain/family"
	"recur_notification_service/internal/domain/notification"
	"recur_notification_service/internal/domain/user"
	"recur_notification_service/internal/schedule"

	"github.com/sirupsen/logrus"
)

const neverTriedCooldown = 7 * 24 * time.Hour

var neverTriedTriggerDays = []int{7, 30, 60}

// NeverTried reaches out to users who installed but never added a family
// member. It fires on days 7, 30 and 60 after install, never later, with a
// tone that softens over time.
type NeverTried struct {
	families family.Repository
	dedup    DedupChecker
	logger   *logrus.Logger
}

func NewNeverTried(fr family.Repository, dedup DedupChecker, logger *logrus.Logger) *NeverTried {
	return &NeverTried{families: fr, dedup: dedup, logger: logger}
}

func (n *NeverTried) Name() string { return NameNeverTried }

func (n *NeverTried) Evaluate(ctx context.Context, u *user.User, now time.Time) (Decision, error) {
	famCount, err := n.families.CountByOwner(ctx, u.ID)
	if err != nil {
		// Treating an error as "zero members" would mean notifying a user who
		// may well have tried the app; skip instead.
		n.logger.WithError(err).WithField("user_id", u.ID).Warn("never_tried: family count failed")
		return Skip("error checking family members"), nil
	}
	if famCount > 0 {
		return Skip("family members already added"), nil
	}

	days := schedule.DaysSince(u.CreatedAt, now)
	trigger := false
	for _, d := range neverTriedTriggerDays {
		if days == d {
			trigger = true
			break
		}
	}
	if !trigger {
		return Skip(fmt.Sprintf("not on a trigger day (day %d)", days)), nil
	}

	suppressed, err := n.dedup.IsSuppressed(ctx, u.ID, notification.TypeDormantReactivation, "", neverTriedCooldown, now)
	if err != nil {
		n.logger.WithError(err).WithField("user_id", u.ID).Warn("never_tried: dedup check failed")
	}
	if suppressed {
		return Skip("reactivation nudge sent within the last 7 days"), nil
	}

	var msg Message
	var priority notification.Priority
	switch days {
	case 7:
		msg = Message{
			Title: "Ready to start tracking?",
			Body:  "Add your first family member and start organizing your classes.",
		}
		priority = notification.PriorityMedium
	case 30:
		msg = Message{
			Title: "We're here when you're ready",
			Body:  "Keep all your recurring classes organized in one place. Get started in seconds!",
		}
		priority = notification.PriorityLow
	default: // day 60
		msg = Message{
			Title: "Miss tracking your classes?",
			Body:  "Recur helps you stay on top of attendance and expenses. Give it a try!",
		}
		priority = notification.PriorityLow
	}

	return Decision{
		Action:   ActionSend,
		Reason:   fmt.Sprintf("day %d dormant user reactivation", days),
		Message:  msg,
		DeepLink: "recur://add-family-member",
		Priority: priority,
		Type:     notification.TypeDormantReactivation,
		Metadata: map[string]any{
			"days_since_install": days,
			"family_members":     0,
		},
	}, nil
}
