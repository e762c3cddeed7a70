// internal/app/lifecycle_service.go
package app

import (
	"context"
	"fmt"
	"time"

	"recur_notification_service/internal/domain/attendance"
	"recur_notification_service/internal/domain/class"
	"recur_notification_service/internal/domain/family"
	"recur_notification_service/internal/domain/notification"
	"recur_notification_service/internal/domain/payment"
	idb "recur_notification_service/internal/infra/database"

	"github.com/sirupsen/logrus"
)

// ErrRecordAlreadyResolved signals a lifecycle transition on a record that is
// already completed or dismissed.
var ErrRecordAlreadyResolved = fmt.Errorf("notification record already completed or dismissed")

// LifecycleService manages the in-app actionable record lifecycle:
// created → read → completed | dismissed. Sweep retroactively completes
// records whose underlying condition became true (a payment was recorded,
// attendance was marked, and so on).
type LifecycleService struct {
	records    notification.RecordStore
	attendance attendance.Repository
	payments   payment.Repository
	classes    class.Repository
	families   family.Repository
	logger     *logrus.Logger
}

func NewLifecycleService(
	records notification.RecordStore,
	ar attendance.Repository,
	pr payment.Repository,
	cr class.Repository,
	fr family.Repository,
	logger *logrus.Logger,
) *LifecycleService {
	return &LifecycleService{
		records:    records,
		attendance: ar,
		payments:   pr,
		classes:    cr,
		families:   fr,
		logger:     logger,
	}
}

// MarkRead records that the user viewed the notification. Reading an
// already-read record is a no-op at the store level.
func (s *LifecycleService) MarkRead(ctx context.Context, recordID string, at time.Time) error {
	if err := s.records.MarkRead(ctx, recordID, at); err != nil {
		return fmt.Errorf("failed to mark notification record %s read: %w", recordID, err)
	}
	return nil
}

// Dismiss moves the record to its terminal dismissed state. Dismissal of an
// already-resolved record is rejected: completed and dismissed are mutually
// exclusive and first-to-occur wins.
func (s *LifecycleService) Dismiss(ctx context.Context, recordID string, at time.Time) error {
	if err := s.records.MarkDismissed(ctx, recordID, at); err != nil {
		if err == idb.ErrRecordNotFound {
			return ErrRecordAlreadyResolved
		}
		return fmt.Errorf("failed to dismiss notification record %s: %w", recordID, err)
	}
	return nil
}

// Sweep walks all active records and completes those whose underlying
// condition has since been satisfied. Returns the number of records completed.
func (s *LifecycleService) Sweep(ctx context.Context, now time.Time) (int, error) {
	active, err := s.records.ListAllActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active notification records: %w", err)
	}

	completed := 0
	for _, rec := range active {
		done, err := s.conditionMet(ctx, rec)
		if err != nil {
			s.logger.WithError(err).WithField("record_id", rec.ID).Warn("Lifecycle check failed, leaving record active")
			continue
		}
		if !done {
			continue
		}
		if err := s.records.MarkActionCompleted(ctx, rec.ID, now); err != nil {
			if err != idb.ErrRecordNotFound { // resolved concurrently, first wins
				s.logger.WithError(err).WithField("record_id", rec.ID).Error("Failed to complete notification record")
			}
			continue
		}
		completed++
		s.logger.WithFields(logrus.Fields{"record_id": rec.ID, "type": rec.Type}).Debug("Notification record auto-completed")
	}

	if completed > 0 {
		s.logger.WithField("completed", completed).Info("Lifecycle sweep completed records")
	}
	return completed, nil
}

// conditionMet checks whether the situation a record points at has been acted
// on. Weekly summaries have no action and never auto-complete.
func (s *LifecycleService) conditionMet(ctx context.Context, rec *notification.Record) (bool, error) {
	switch rec.Type {
	case notification.TypePreClassReminder, notification.TypePostClassReminder:
		classID, dateStr := rec.ClassID(), rec.AttendanceDate()
		if classID == "" || dateStr == "" {
			return false, nil
		}
		day, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return false, nil
		}
		return s.attendance.ExistsOnDate(ctx, classID, day)

	case notification.TypeLowBalance, notification.TypeAddPaymentTracking:
		classID := rec.ClassID()
		if classID == "" {
			return false, nil
		}
		return s.payments.ExistsCreatedAfter(ctx, rec.UserID, classID, rec.CreatedAt)

	case notification.TypeAddSchedule:
		classID := rec.ClassID()
		if classID == "" {
			return false, nil
		}
		classes, err := s.classes.ListAll(ctx, rec.UserID)
		if err != nil {
			return false, err
		}
		for _, c := range classes {
			if c.ID == classID {
				return c.HasValidSchedule(), nil
			}
		}
		return false, nil

	case notification.TypeOnboardingMilestone:
		famCount, err := s.families.CountByOwner(ctx, rec.UserID)
		if err != nil {
			return false, err
		}
		classes, err := s.classes.ListAll(ctx, rec.UserID)
		if err != nil {
			return false, err
		}
		attCount, err := s.attendance.CountByOwner(ctx, rec.UserID)
		if err != nil {
			return false, err
		}
		return famCount >= milestoneOnboardingFamily && len(classes) >= milestoneOnboardingClasses && attCount >= milestoneOnboardingAttendance, nil

	case notification.TypeDormantReactivation:
		famCount, err := s.families.CountByOwner(ctx, rec.UserID)
		if err != nil {
			return false, err
		}
		return famCount > 0, nil

	default:
		return false, nil
	}
}

// 1-1-5 activation milestone, mirrored from the onboarding agent.
const (
	milestoneOnboardingFamily     = 1
	milestoneOnboardingClasses    = 1
	milestoneOnboardingAttendance = 5
)
