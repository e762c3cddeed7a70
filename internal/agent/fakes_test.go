package agent

import (
	"context"
	"io"
	"time"

	"recur_notification_service/internal/domain/class"
	"recur_notification_service/internal/domain/notification"
	"recur_notification_service/internal/domain/payment"

	"github.com/sirupsen/logrus"
)

// Shared in-memory test doubles for the agent suite.

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fakeClassRepo struct {
	active []*class.Class
	all    []*class.Class
	err    error
}

func (f *fakeClassRepo) ListActive(ctx context.Context, ownerID string) ([]*class.Class, error) {
	return f.active, f.err
}

func (f *fakeClassRepo) ListAll(ctx context.Context, ownerID string) ([]*class.Class, error) {
	if f.all != nil {
		return f.all, f.err
	}
	return f.active, f.err
}

type fakePaymentRepo struct {
	countByClass map[string]int
	balances     map[string]payment.Balance
	created      map[string]bool
	err          error
}

func (f *fakePaymentRepo) CountByClass(ctx context.Context, classID string) (int, error) {
	return f.countByClass[classID], f.err
}

func (f *fakePaymentRepo) Balance(ctx context.Context, ownerID, classID string) (payment.Balance, error) {
	return f.balances[classID], f.err
}

func (f *fakePaymentRepo) ExistsCreatedAfter(ctx context.Context, ownerID, classID string, after time.Time) (bool, error) {
	return f.created[classID], f.err
}

type fakeAttendanceRepo struct {
	markedToday  map[string]bool
	ownerCount   int
	rangedCounts []int // consumed in call order by CountForClassesBetween
	err          error
}

func (f *fakeAttendanceRepo) ExistsOnDate(ctx context.Context, classID string, day time.Time) (bool, error) {
	return f.markedToday[classID], f.err
}

func (f *fakeAttendanceRepo) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	return f.ownerCount, f.err
}

func (f *fakeAttendanceRepo) CountForClassesBetween(ctx context.Context, classIDs []string, from, to time.Time) (int, error) {
	if len(f.rangedCounts) == 0 {
		return 0, f.err
	}
	n := f.rangedCounts[0]
	f.rangedCounts = f.rangedCounts[1:]
	return n, f.err
}

type fakeFamilyRepo struct {
	count int
	err   error
}

func (f *fakeFamilyRepo) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	return f.count, f.err
}

// fakeDedup suppresses exact (type, classID) pairs recorded in advance.
type fakeDedup struct {
	suppressed map[string]bool
	err        error
}

func dedupKey(t notification.Type, classID string) string {
	return string(t) + "|" + classID
}

func (f *fakeDedup) IsSuppressed(ctx context.Context, userID string, t notification.Type, classID string, cooldown time.Duration, now time.Time) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.suppressed[dedupKey(t, classID)], nil
}
