// internal/agent/gather.go
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
	gatherCooldown     = 10 * 24 * time.Hour
	gatherClassMaxDays = 30
)

// GatherMoreInfo nudges users to complete recently created classes that are
// missing a valid schedule or any payment record. A missing schedule takes
// priority over missing payments. Suppression is per (user, class).
type GatherMoreInfo struct {
	classes  class.Repository
	payments payment.Repository
	dedup    DedupChecker
	logger   *logrus.Logger
}

func NewGatherMoreInfo(cr class.Repository, pr payment.Repository, dedup DedupChecker, logger *logrus.Logger) *GatherMoreInfo {
	return &GatherMoreInfo{classes: cr, payments: pr, dedup: dedup, logger: logger}
}

func (g *GatherMoreInfo) Name() string { return NameGatherMoreInfo }

func (g *GatherMoreInfo) Evaluate(ctx context.Context, u *user.User, now time.Time) (Decision, error) {
	classes, err := g.classes.ListActive(ctx, u.ID)
	if err != nil {
		g.logger.WithError(err).WithField("user_id", u.ID).Warn("gather: listing active classes failed, treating as none")
		classes = nil
	}
	if len(classes) == 0 {
		return Skip("no active classes"), nil
	}

	var needSchedule, needPayment []*class.Class
	for _, c := range classes {
		if schedule.DaysSince(c.CreatedAt, now) > gatherClassMaxDays {
			continue
		}
		if !c.HasValidSchedule() {
			needSchedule = append(needSchedule, c)
		}
		count, err := g.payments.CountByClass(ctx, c.ID)
		if err != nil {
			g.logger.WithError(err).WithField("class_id", c.ID).Warn("gather: payment count failed, treating as zero")
			count = 0
		}
		if count == 0 {
			needPayment = append(needPayment, c)
		}
	}

	if len(needSchedule) == 0 && len(needPayment) == 0 {
		return Skip("all recent classes have schedule and payment tracking"), nil
	}

	var (
		target    *class.Class
		notifType notification.Type
	)
	if len(needSchedule) > 0 {
		target = needSchedule[0]
		notifType = notification.TypeAddSchedule
	} else {
		target = needPayment[0]
		notifType = notification.TypeAddPaymentTracking
	}

	// Suppression covers the class as a whole: a recent nudge of either kind
	// holds back both.
	for _, t := range []notification.Type{notification.TypeAddSchedule, notification.TypeAddPaymentTracking} {
		suppressed, err := g.dedup.IsSuppressed(ctx, u.ID, t, target.ID, gatherCooldown, now)
		if err != nil {
			g.logger.WithError(err).WithField("class_id", target.ID).Warn("gather: dedup check failed")
			continue
		}
		if suppressed {
			return Skip(fmt.Sprintf("recently nudged about %s", target.Name)), nil
		}
	}

	var msg Message
	var deepLink string
	if notifType == notification.TypeAddSchedule {
		msg = Message{
			Title: fmt.Sprintf("Add schedule for %s", target.Name),
			Body:  "Know when classes happen? Add a schedule to get helpful reminders.",
		}
		deepLink = fmt.Sprintf("recur://class/%s/edit", target.ID)
	} else {
		msg = Message{
			Title: fmt.Sprintf("Track spending for %s", target.Name),
			Body:  "Record your payments to see cost per class and prepaid balance.",
		}
		deepLink = fmt.Sprintf("recur://class/%s/record-payment", target.ID)
	}

	return Decision{
		Action:   ActionSend,
		Reason:   fmt.Sprintf("nudge to complete setup of %s", target.Name),
		Message:  msg,
		DeepLink: deepLink,
		Priority: notification.PriorityMedium,
		Type:     notifType,
		Metadata: map[string]any{
			notification.MetadataClassID: target.ID,
			"class_name":                 target.Name,
			"days_since_created":         schedule.DaysSince(target.CreatedAt, now),
		},
	}, nil
}
