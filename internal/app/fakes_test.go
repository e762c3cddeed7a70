package app

import (
	"context"
	"io"
	"sync"
	"time"

	"recur_notification_service/internal/agent"
	"recur_notification_service/internal/domain/class"
	"recur_notification_service/internal/domain/notification"
	"recur_notification_service/internal/domain/payment"
	"recur_notification_service/internal/domain/push"
	"recur_notification_service/internal/domain/user"
	idb "recur_notification_service/internal/infra/database"

	"github.com/sirupsen/logrus"
)

// Shared in-memory test doubles for the orchestrator and lifecycle suites.

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fakeUsers struct {
	users  []*user.User
	tokens map[string]string // userID -> token; absent means no active token
}

func (f *fakeUsers) ListAll(ctx context.Context) ([]*user.User, error) {
	return f.users, nil
}

func (f *fakeUsers) ActivePushToken(ctx context.Context, userID string) (string, error) {
	token, ok := f.tokens[userID]
	if !ok {
		return "", idb.ErrNoActivePushToken
	}
	return token, nil
}

// memHistory is an in-memory HistoryStore.
type memHistory struct {
	mu      sync.Mutex
	entries []*notification.HistoryEntry
}

func (m *memHistory) Append(ctx context.Context, e *notification.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *memHistory) Last(ctx context.Context, userID string, t notification.Type, classID string) (*notification.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.entries) - 1; i >= 0; i-- {
		e := m.entries[i]
		if e.UserID != userID || e.Type != t {
			continue
		}
		if classID != "" && e.ClassID() != classID {
			continue
		}
		return e, nil
	}
	return nil, idb.ErrHistoryNotFound
}

func (m *memHistory) CountSentSince(ctx context.Context, userID string, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, e := range m.entries {
		if e.UserID == userID && !e.SentAt.Before(since) {
			count++
		}
	}
	return count, nil
}

// memRecords is an in-memory RecordStore.
type memRecords struct {
	mu      sync.Mutex
	records []*notification.Record
}

func (m *memRecords) Create(ctx context.Context, r *notification.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, r)
	return nil
}

func (m *memRecords) Active(ctx context.Context, userID string, t notification.Type, classID string) (*notification.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.records) - 1; i >= 0; i-- {
		r := m.records[i]
		if r.UserID != userID || r.Type != t || !r.Active() {
			continue
		}
		if classID != "" && r.ClassID() != classID {
			continue
		}
		return r, nil
	}
	return nil, idb.ErrRecordNotFound
}

func (m *memRecords) ListAllActive(ctx context.Context) ([]*notification.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var active []*notification.Record
	for _, r := range m.records {
		if r.Active() {
			active = append(active, r)
		}
	}
	return active, nil
}

func (m *memRecords) MarkRead(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.ID == id {
			if !r.ReadAt.Valid {
				r.ReadAt.Time, r.ReadAt.Valid = at, true
			}
			return nil
		}
	}
	return idb.ErrRecordNotFound
}

func (m *memRecords) MarkActionCompleted(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.ID == id && r.Active() {
			r.ActionCompletedAt.Time, r.ActionCompletedAt.Valid = at, true
			return nil
		}
	}
	return idb.ErrRecordNotFound
}

func (m *memRecords) MarkDismissed(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.ID == id && r.Active() {
			r.DismissedAt.Time, r.DismissedAt.Valid = at, true
			return nil
		}
	}
	return idb.ErrRecordNotFound
}

// memDecisions is an in-memory DecisionLog.
type memDecisions struct {
	mu      sync.Mutex
	entries []*notification.DecisionLogEntry
}

func (m *memDecisions) Append(ctx context.Context, e *notification.DecisionLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *memDecisions) byAgent(name string) []*notification.DecisionLogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*notification.DecisionLogEntry
	for _, e := range m.entries {
		if e.AgentName == name {
			out = append(out, e)
		}
	}
	return out
}

// fakePush records sends and can be told to reject them.
type fakePush struct {
	mu     sync.Mutex
	sent   []push.Notification
	reject bool
}

func (f *fakePush) Send(ctx context.Context, deviceToken string, n push.Notification) (push.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reject {
		return push.Result{Accepted: false, ProviderError: "DeviceNotRegistered"}, nil
	}
	f.sent = append(f.sent, n)
	return push.Result{Accepted: true}, nil
}

func (f *fakePush) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// stubAgent sends a fixed decision, optionally consulting a dedup checker the
// way real agents do.
type stubAgent struct {
	name     string
	decision agent.Decision
	dedup    agent.DedupChecker
	cooldown time.Duration
	panics   bool
}

func (s *stubAgent) Name() string { return s.name }

func (s *stubAgent) Evaluate(ctx context.Context, u *user.User, now time.Time) (agent.Decision, error) {
	if s.panics {
		panic("stub agent exploded")
	}
	if s.dedup != nil && s.decision.IsSend() {
		suppressed, err := s.dedup.IsSuppressed(ctx, u.ID, s.decision.Type, "", s.cooldown, now)
		if err != nil {
			return agent.Decision{}, err
		}
		if suppressed {
			return agent.Skip("cooldown"), nil
		}
	}
	return s.decision, nil
}

func sendDecision(t notification.Type, title string) agent.Decision {
	return agent.Decision{
		Action:   agent.ActionSend,
		Reason:   "test condition met",
		Message:  agent.Message{Title: title, Body: "body"},
		DeepLink: "recur://home",
		Priority: notification.PriorityMedium,
		Type:     t,
	}
}

// Minimal domain repo fakes for the lifecycle sweep.

type fakeAttendance struct {
	marked     map[string]bool // classID -> attended
	ownerCount int
}

func (f *fakeAttendance) ExistsOnDate(ctx context.Context, classID string, day time.Time) (bool, error) {
	return f.marked[classID], nil
}

func (f *fakeAttendance) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	return f.ownerCount, nil
}

func (f *fakeAttendance) CountForClassesBetween(ctx context.Context, classIDs []string, from, to time.Time) (int, error) {
	return 0, nil
}

type fakePayments struct {
	created map[string]bool // classID -> payment recorded after the record
}

func (f *fakePayments) CountByClass(ctx context.Context, classID string) (int, error) {
	return 0, nil
}

func (f *fakePayments) Balance(ctx context.Context, ownerID, classID string) (payment.Balance, error) {
	return payment.Balance{}, nil
}

func (f *fakePayments) ExistsCreatedAfter(ctx context.Context, ownerID, classID string, after time.Time) (bool, error) {
	return f.created[classID], nil
}

type fakeClasses struct {
	all []*class.Class
}

func (f *fakeClasses) ListActive(ctx context.Context, ownerID string) ([]*class.Class, error) {
	var active []*class.Class
	for _, c := range f.all {
		if c.Status == class.StatusActive {
			active = append(active, c)
		}
	}
	return active, nil
}

func (f *fakeClasses) ListAll(ctx context.Context, ownerID string) ([]*class.Class, error) {
	return f.all, nil
}

type fakeFamilies struct {
	count int
}

func (f *fakeFamilies) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	return f.count, nil
}
