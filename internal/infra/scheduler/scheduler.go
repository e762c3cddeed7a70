package scheduler

import (
	"context"
	"time"

	"recur_notification_service/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const (
	evaluationRunTimeout = 10 * time.Minute
	lifecycleRunTimeout  = 5 * time.Minute
)

// EvaluationRunner runs one full per-user evaluation pass.
type EvaluationRunner interface {
	RunEvaluation(ctx context.Context, now time.Time) (*app.RunSummary, error)
}

// LifecycleSweeper completes resolved in-app notification records.
type LifecycleSweeper interface {
	Sweep(ctx context.Context, now time.Time) (int, error)
}

// EvaluationScheduler owns the cron jobs: the hourly evaluation pass and the
// periodic lifecycle sweep.
type EvaluationScheduler struct {
	cronEngine    *cron.Cron
	orchestrator  EvaluationRunner
	lifecycle     LifecycleSweeper
	logger        *logrus.Logger
	cronSpecEval  string
	cronSpecSweep string
}

func NewEvaluationScheduler(
	orchestrator EvaluationRunner,
	lifecycle LifecycleSweeper,
	logger *logrus.Logger,
	cronSpecEvaluation string, // e.g. "0 * * * *" (hourly)
	cronSpecLifecycleSweep string, // e.g. "30 * * * *"
) *EvaluationScheduler {
	return &EvaluationScheduler{
		cronEngine:    cron.New(cron.WithLocation(time.UTC)), // evaluation instants are UTC; quiet hours use per-user timezones
		orchestrator:  orchestrator,
		lifecycle:     lifecycle,
		logger:        logger,
		cronSpecEval:  cronSpecEvaluation,
		cronSpecSweep: cronSpecLifecycleSweep,
	}
}

func (s *EvaluationScheduler) Start() error {
	_, err := s.cronEngine.AddFunc(s.cronSpecEval, func() {
		s.logger.Info("Cron job triggered for evaluation run")
		ctx, cancel := context.WithTimeout(context.Background(), evaluationRunTimeout)
		defer cancel()

		summary, err := s.orchestrator.RunEvaluation(ctx, time.Now())
		if err != nil {
			s.logger.WithError(err).Error("Evaluation run failed")
			return
		}
		s.logger.WithFields(logrus.Fields{
			"processed": summary.UsersProcessed,
			"sent":      summary.NotificationsSent,
		}).Info("Evaluation run finished")
	})
	if err != nil {
		return err
	}

	_, err = s.cronEngine.AddFunc(s.cronSpecSweep, func() {
		s.logger.Info("Cron job triggered for lifecycle sweep")
		ctx, cancel := context.WithTimeout(context.Background(), lifecycleRunTimeout)
		defer cancel()

		completed, err := s.lifecycle.Sweep(ctx, time.Now())
		if err != nil {
			s.logger.WithError(err).Error("Lifecycle sweep failed")
			return
		}
		s.logger.WithField("completed", completed).Debug("Lifecycle sweep finished")
	})
	if err != nil {
		return err
	}

	s.cronEngine.Start()
	s.logger.Info("Evaluation scheduler started")
	return nil
}

func (s *EvaluationScheduler) Stop() {
	s.logger.Info("Stopping evaluation scheduler...")
	ctx := s.cronEngine.Stop() // waits for running jobs
	<-ctx.Done()
	s.logger.Info("Evaluation scheduler gracefully stopped")
}
