// internal/agent/alert.go
package agent

import (
	"context"
	"fmt"
	"time"

	"recur_notification_service/internal/domain/class"
	"recur_notification_service/internal/domain/notification"
	"recur_notification_service/internal/domain/payment"
	"recur_notification_service/internal/domain/user"
	"recur_notification_service/internal/schedule"

	"github.com/sirupsen/logrus"
)

const (
	preClassCooldown = 24 * time.Hour
	// Under the lookback strategy a low-balance alert is held for a week; the
	// active-record strategy instead suppresses until the record resolves.
	lowBalanceCooldown = 7 * 24 * time.Hour

	lowBalanceThreshold = 3
	lowBalanceCheckHour = 9
)

// Alert notifies about upcoming scheduled classes and low prepaid balances.
// Pre-class reminders take precedence over low-balance alerts.
type Alert struct {
	classes  class.Repository
	payments payment.Repository
	dedup    DedupChecker
	logger   *logrus.Logger
}

func NewAlert(cr class.Repository, pr payment.Repository, dedup DedupChecker, logger *logrus.Logger) *Alert {
	return &Alert{classes: cr, payments: pr, dedup: dedup, logger: logger}
}

func (a *Alert) Name() string { return NameAlert }

func (a *Alert) Evaluate(ctx context.Context, u *user.User, now time.Time) (Decision, error) {
	classes, err := a.classes.ListActive(ctx, u.ID)
	if err != nil {
		a.logger.WithError(err).WithField("user_id", u.ID).Warn("alert: listing active classes failed, treating as none")
		classes = nil
	}
	if len(classes) == 0 {
		return Skip("no active classes"), nil
	}

	if d, ok := a.preClassReminder(ctx, u, classes, now); ok {
		return d, nil
	}
	if d, ok := a.lowBalanceAlert(ctx, u, classes, now); ok {
		return d, nil
	}
	return Skip("no alerts needed"), nil
}

// preClassReminder fires for the first class whose next occurrence falls into
// its alert window. Classes starting before 10:00 are announced at 21:00 the
// prior calendar day; later classes two to three hours ahead.
func (a *Alert) preClassReminder(ctx context.Context, u *user.User, classes []*class.Class, now time.Time) (Decision, bool) {
	for _, c := range classes {
		if !c.HasSchedule() {
			continue
		}
		next, ok := schedule.NextOccurrence(c.Schedule, now)
		if !ok {
			continue
		}

		classHour := next.Hour()
		shouldAlert := false
		if classHour < 10 {
			priorDay := now.Day() != next.Day()
			shouldAlert = priorDay && now.Hour() == 21
		} else {
			hoursUntil := schedule.HoursBetween(now, next)
			shouldAlert = hoursUntil >= 2 && hoursUntil < 3
		}
		if !shouldAlert {
			continue
		}

		suppressed, err := a.dedup.IsSuppressed(ctx, u.ID, notification.TypePreClassReminder, c.ID, preClassCooldown, now)
		if err != nil {
			a.logger.WithError(err).WithField("class_id", c.ID).Warn("alert: dedup check failed for pre-class reminder")
		}
		if suppressed {
			continue
		}

		when := "today"
		if classHour < 10 {
			when = "tomorrow"
		}
		return Decision{
			Action: ActionSend,
			Reason: fmt.Sprintf("upcoming class %s at %s", c.Name, schedule.FormatClockTime(next)),
			Message: Message{
				Title: fmt.Sprintf("%s %s", c.Name, when),
				Body:  fmt.Sprintf("Your class is at %s. Don't forget to attend!", schedule.FormatClockTime(next)),
			},
			DeepLink: fmt.Sprintf("recur://class/%s", c.ID),
			Priority: notification.PriorityHigh,
			Type:     notification.TypePreClassReminder,
			Metadata: map[string]any{
				notification.MetadataClassID:        c.ID,
				"scheduled_time":                    next.Format(time.RFC3339),
				notification.MetadataAttendanceDate: next.Format("2006-01-02"),
			},
		}, true
	}
	return Decision{}, false
}

// lowBalanceAlert runs only in the 09:00 hour, and only for classes that have
// at least one payment record. A remaining balance in [0, 3) qualifies;
// over-attended classes (negative remaining) do not.
func (a *Alert) lowBalanceAlert(ctx context.Context, u *user.User, classes []*class.Class, now time.Time) (Decision, bool) {
	if now.Hour() != lowBalanceCheckHour {
		return Decision{}, false
	}

	for _, c := range classes {
		count, err := a.payments.CountByClass(ctx, c.ID)
		if err != nil {
			a.logger.WithError(err).WithField("class_id", c.ID).Warn("alert: payment count failed, treating as zero")
			continue
		}
		if count == 0 {
			continue
		}

		balance, err := a.payments.Balance(ctx, u.ID, c.ID)
		if err != nil {
			a.logger.WithError(err).WithField("class_id", c.ID).Warn("alert: balance lookup failed, skipping class")
			continue
		}
		if balance.Remaining < 0 || balance.Remaining >= lowBalanceThreshold {
			continue
		}

		suppressed, err := a.dedup.IsSuppressed(ctx, u.ID, notification.TypeLowBalance, c.ID, lowBalanceCooldown, now)
		if err != nil {
			a.logger.WithError(err).WithField("class_id", c.ID).Warn("alert: dedup check failed for low balance")
		}
		if suppressed {
			continue
		}

		return Decision{
			Action: ActionSend,
			Reason: fmt.Sprintf("low prepaid balance for %s (%d remaining)", c.Name, balance.Remaining),
			Message: Message{
				Title: fmt.Sprintf("Low balance: %s", c.Name),
				Body: fmt.Sprintf("Only %d prepaid %s left. Record your next payment?",
					balance.Remaining, classWord(balance.Remaining)),
			},
			DeepLink: fmt.Sprintf("recur://class/%s/record-payment", c.ID),
			Priority: notification.PriorityHigh,
			Type:     notification.TypeLowBalance,
			Metadata: map[string]any{
				notification.MetadataClassID: c.ID,
				"balance_remaining":          balance.Remaining,
			},
		}, true
	}
	return Decision{}, false
}
