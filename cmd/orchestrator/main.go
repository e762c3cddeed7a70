package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata" // per-user quiet hours need IANA zones even in minimal containers

	"recur_notification_service/internal/agent"
	"recur_notification_service/internal/app"
	"recur_notification_service/internal/infra/config"
	idb "recur_notification_service/internal/infra/database"
	"recur_notification_service/internal/infra/logger"
	infrapush "recur_notification_service/internal/infra/push"
	"recur_notification_service/internal/infra/scheduler"
)

func main() {
	fmt.Println("Recur notification orchestrator starting...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Could not load application configuration: %v", err)
	}

	appLogger := logger.New(cfg.LogLevel, cfg.Environment)
	appLogger.Infof("Configuration loaded. LogLevel: %s, Environment: %s, DeliveryMode: %s, DedupStrategy: %s",
		cfg.LogLevel, cfg.Environment, cfg.DeliveryMode, cfg.DedupStrategy)

	// Database
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		appLogger.Fatalf("FATAL: Could not connect to database: %v", err)
	}
	defer db.Close()
	appLogger.Info("Database connection established successfully")

	// Repositories
	classRepo := idb.NewPostgresClassRepository(db)
	familyRepo := idb.NewPostgresFamilyRepository(db)
	attendanceRepo := idb.NewPostgresAttendanceRepository(db)
	paymentRepo := idb.NewPostgresPaymentRepository(db)
	userRepo := idb.NewPostgresUserRepository(db)
	notifRepo := idb.NewPostgresNotificationRepository(db)
	decisionRepo := idb.NewPostgresDecisionLogRepository(db)
	appLogger.Info("Repositories initialized")

	// Dedup strategy (one per deployment; agents never mix them)
	var dedup agent.DedupChecker
	switch cfg.DedupStrategy {
	case app.DedupStrategyActiveRecord:
		dedup = app.NewActiveRecordDedup(notifRepo)
	default:
		dedup = app.NewLookbackDedup(notifRepo)
	}

	// Agents, in strict priority order
	agents := []agent.Agent{
		agent.NewAlert(classRepo, paymentRepo, dedup, appLogger),
		agent.NewEngage(classRepo, attendanceRepo, dedup, cfg.SummaryDay, cfg.SummaryHour, appLogger),
		agent.NewGatherMoreInfo(classRepo, paymentRepo, dedup, appLogger),
		agent.NewOnboarding(classRepo, familyRepo, attendanceRepo, dedup, appLogger),
		agent.NewNeverTried(familyRepo, dedup, appLogger),
	}

	pushClient := infrapush.NewExpoClient(cfg.ExpoPushURL, cfg.PushTimeout, appLogger)

	orchestrator := app.NewOrchestratorService(
		userRepo,
		notifRepo,
		notifRepo,
		decisionRepo,
		agents,
		pushClient,
		cfg.DeliveryMode,
		cfg.DailyNotificationCap,
		cfg.WorkerPoolSize,
		appLogger,
	)
	lifecycle := app.NewLifecycleService(notifRepo, attendanceRepo, paymentRepo, classRepo, familyRepo, appLogger)
	appLogger.Info("Orchestrator and lifecycle services initialized")

	evalScheduler := scheduler.NewEvaluationScheduler(
		orchestrator,
		lifecycle,
		appLogger,
		cfg.CronSpecEvaluation,
		cfg.CronSpecLifecycleSweep,
	)
	if err := evalScheduler.Start(); err != nil {
		appLogger.Fatalf("FATAL: Could not start evaluation scheduler: %v", err)
	}

	appLogger.Info("Application setup complete. Scheduler is running.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down application...")
	evalScheduler.Stop()
	appLogger.Info("Application shut down gracefully")
}
