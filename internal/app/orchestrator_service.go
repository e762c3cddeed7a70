// internal/app/orchestrator_service.go
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"recur_notification_service/internal/agent"
	"recur_notification_service/internal/domain/notification"
	"recur_notification_service/internal/domain/push"
	"recur_notification_service/internal/domain/user"
	idb "recur_notification_service/internal/infra/database"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Delivery modes accepted in configuration.
const (
	DeliveryModePush  = "push"
	DeliveryModeInApp = "inapp"
)

// Per-user outcome statuses in a run summary.
const (
	StatusSent            = "sent"
	StatusFailed          = "failed"
	StatusNoPushToken     = "no_push_token"
	StatusFrequencyCapped = "frequency_capped"
	StatusQuietHours      = "quiet_hours"
	StatusSkipped         = "skipped"
	StatusError           = "error"
)

const (
	quietHoursStart = 22 // local hour, inclusive
	quietHoursEnd   = 8  // local hour, exclusive
)

// UserResult is the outcome of one user's evaluation pass.
type UserResult struct {
	UserID string
	Agent  string
	Status string
	Reason string
	Title  string
}

// RunSummary aggregates a whole evaluation run.
type RunSummary struct {
	EvaluationTime    time.Time
	UsersProcessed    int
	NotificationsSent int
	Results           []UserResult
}

// OrchestratorService runs the per-user gating, agent arbitration and delivery
// loop. Users are independent and processed by a bounded worker pool; agents
// within one user run strictly in priority order and the first send wins.
type OrchestratorService struct {
	users        user.Repository
	history      notification.HistoryStore
	records      notification.RecordStore
	decisions    notification.DecisionLog
	agents       []agent.Agent
	pushClient   push.Client
	deliveryMode string
	dailyCap     int
	workers      int
	logger       *logrus.Logger
}

func NewOrchestratorService(
	ur user.Repository,
	history notification.HistoryStore,
	records notification.RecordStore,
	decisions notification.DecisionLog,
	agents []agent.Agent,
	pushClient push.Client,
	deliveryMode string,
	dailyCap int,
	workers int,
	logger *logrus.Logger,
) *OrchestratorService {
	if workers < 1 {
		workers = 1
	}
	return &OrchestratorService{
		users:        ur,
		history:      history,
		records:      records,
		decisions:    decisions,
		agents:       agents,
		pushClient:   pushClient,
		deliveryMode: deliveryMode,
		dailyCap:     dailyCap,
		workers:      workers,
		logger:       logger,
	}
}

// RunEvaluation evaluates every user once at the given instant. The instant is
// explicit rather than read from the wall clock so runs are reproducible and
// testable. Rerunning with the same instant is safe: dedup checks inside each
// agent keep already-notified users from being notified again.
func (s *OrchestratorService) RunEvaluation(ctx context.Context, now time.Time) (*RunSummary, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users for evaluation: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"users":           len(users),
		"evaluation_time": now.Format(time.RFC3339),
	}).Info("Starting evaluation run")

	summary := &RunSummary{EvaluationTime: now}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, u := range users {
		u := u
		g.Go(func() error {
			res := s.evaluateUser(gctx, u, now)
			mu.Lock()
			summary.UsersProcessed++
			summary.Results = append(summary.Results, res)
			if res.Status == StatusSent {
				summary.NotificationsSent++
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // per-user errors are contained inside evaluateUser

	s.logger.WithFields(logrus.Fields{
		"processed": summary.UsersProcessed,
		"sent":      summary.NotificationsSent,
	}).Info("Evaluation run completed")
	return summary, nil
}

// evaluateUser applies gating, runs the agents in priority order and delivers
// the first winning decision. Any panic or error is contained here so one bad
// user never aborts the batch.
func (s *OrchestratorService) evaluateUser(ctx context.Context, u *user.User, now time.Time) (res UserResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.WithField("user_id", u.ID).Errorf("Recovered from panic while evaluating user: %v", r)
			res = UserResult{UserID: u.ID, Status: StatusError, Reason: fmt.Sprintf("panic: %v", r)}
		}
	}()

	local := now.In(s.userLocation(u))
	if h := local.Hour(); h >= quietHoursStart || h < quietHoursEnd {
		s.logger.WithFields(logrus.Fields{"user_id": u.ID, "local_hour": h}).Debug("User in quiet hours, skipping")
		return UserResult{UserID: u.ID, Status: StatusQuietHours}
	}

	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
	sentToday, err := s.history.CountSentSince(ctx, u.ID, midnight)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", u.ID).Warn("Daily notification count failed, treating as zero")
		sentToday = 0
	}
	if sentToday >= s.dailyCap {
		s.logger.WithFields(logrus.Fields{"user_id": u.ID, "sent_today": sentToday}).Debug("Daily cap reached, skipping")
		return UserResult{UserID: u.ID, Status: StatusFrequencyCapped}
	}

	for _, ag := range s.agents {
		decision, err := ag.Evaluate(ctx, u, now)
		if err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{"user_id": u.ID, "agent": ag.Name()}).Error("Agent evaluation failed")
			decision = agent.Skip("evaluation error: " + err.Error())
		}
		s.logDecision(ctx, u.ID, ag.Name(), decision, now)

		if !decision.IsSend() {
			continue
		}
		// First send wins; later agents are not evaluated for this user.
		return s.deliver(ctx, u, ag.Name(), decision, now)
	}

	return UserResult{UserID: u.ID, Status: StatusSkipped, Reason: "all agents skipped"}
}

// deliver dispatches the winning decision, either as a push message or as an
// in-app record. A missing token or rejected push leaves the decision in force
// (it was logged) without falling through to another agent.
func (s *OrchestratorService) deliver(ctx context.Context, u *user.User, agentName string, d agent.Decision, now time.Time) UserResult {
	if s.deliveryMode == DeliveryModeInApp {
		rec := &notification.Record{
			ID:        uuid.NewString(),
			UserID:    u.ID,
			AgentName: agentName,
			Type:      d.Type,
			Title:     d.Message.Title,
			Body:      d.Message.Body,
			DeepLink:  d.DeepLink,
			Priority:  d.Priority,
			Metadata:  d.Metadata,
			CreatedAt: now,
		}
		if err := s.records.Create(ctx, rec); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{"user_id": u.ID, "agent": agentName}).Error("Failed to create in-app notification record")
			return UserResult{UserID: u.ID, Agent: agentName, Status: StatusFailed, Reason: err.Error(), Title: d.Message.Title}
		}
		s.appendHistory(ctx, u, agentName, d, now)
		return UserResult{UserID: u.ID, Agent: agentName, Status: StatusSent, Reason: d.Reason, Title: d.Message.Title}
	}

	token, err := s.users.ActivePushToken(ctx, u.ID)
	if err != nil {
		if err != idb.ErrNoActivePushToken {
			s.logger.WithError(err).WithField("user_id", u.ID).Warn("Push token lookup failed")
		}
		s.logger.WithFields(logrus.Fields{"user_id": u.ID, "agent": agentName}).Info("Decision made but user has no active push token")
		return UserResult{UserID: u.ID, Agent: agentName, Status: StatusNoPushToken, Reason: d.Reason, Title: d.Message.Title}
	}

	data := map[string]any{
		"deepLink":  d.DeepLink,
		"agentName": agentName,
	}
	for k, v := range d.Metadata {
		data[k] = v
	}
	providerPriority := "default"
	if d.Priority == notification.PriorityHigh {
		providerPriority = "high"
	}

	result, err := s.pushClient.Send(ctx, token, push.Notification{
		Title:    d.Message.Title,
		Body:     d.Message.Body,
		Sound:    "default",
		Priority: providerPriority,
		Data:     data,
	})
	if err != nil || !result.Accepted {
		s.logger.WithFields(logrus.Fields{
			"user_id":        u.ID,
			"agent":          agentName,
			"provider_error": result.ProviderError,
		}).WithError(err).Error("Push delivery failed")
		return UserResult{UserID: u.ID, Agent: agentName, Status: StatusFailed, Reason: result.ProviderError, Title: d.Message.Title}
	}

	s.appendHistory(ctx, u, agentName, d, now)
	s.logger.WithFields(logrus.Fields{"user_id": u.ID, "agent": agentName, "type": d.Type}).Info("Notification sent")
	return UserResult{UserID: u.ID, Agent: agentName, Status: StatusSent, Reason: d.Reason, Title: d.Message.Title}
}

// appendHistory records the dispatched/created notification so future dedup
// checks and the daily cap see it. Failures are logged only; the notification
// already went out.
func (s *OrchestratorService) appendHistory(ctx context.Context, u *user.User, agentName string, d agent.Decision, now time.Time) {
	entry := &notification.HistoryEntry{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		AgentName: agentName,
		Type:      d.Type,
		Title:     d.Message.Title,
		Body:      d.Message.Body,
		DeepLink:  d.DeepLink,
		Metadata:  d.Metadata,
		SentAt:    now,
	}
	if err := s.history.Append(ctx, entry); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{"user_id": u.ID, "agent": agentName}).Error("Failed to append notification history")
	}
}

// logDecision writes the audit row for an agent evaluation. Best effort; an
// audit failure must not affect the evaluation outcome.
func (s *OrchestratorService) logDecision(ctx context.Context, userID, agentName string, d agent.Decision, now time.Time) {
	entry := &notification.DecisionLogEntry{
		UserID:    userID,
		AgentName: agentName,
		Decision:  string(d.Action),
		Reason:    d.Reason,
		Metadata:  d.Metadata,
		CreatedAt: now,
	}
	if err := s.decisions.Append(ctx, entry); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{"user_id": userID, "agent": agentName}).Warn("Failed to write agent decision log")
	}
}

// userLocation resolves the user's IANA timezone, falling back to UTC.
func (s *OrchestratorService) userLocation(u *user.User) *time.Location {
	if u.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		s.logger.WithFields(logrus.Fields{"user_id": u.ID, "timezone": u.Timezone}).Warn("Unknown timezone, falling back to UTC")
		return time.UTC
	}
	return loc
}
