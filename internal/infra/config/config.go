package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"recur_notification_service/internal/schedule"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the orchestrator service.
type AppConfig struct {
	DatabaseURL string
	LogLevel    string
	Environment string

	ExpoPushURL string
	PushTimeout time.Duration

	DeliveryMode  string // "push" or "inapp"
	DedupStrategy string // "lookback" or "active_record"

	DailyNotificationCap int
	SummaryDay           time.Weekday
	SummaryHour          int
	WorkerPoolSize       int

	CronSpecEvaluation     string
	CronSpecLifecycleSweep string
}

// Load reads configuration from environment variables and a .env file (if
// present). godotenv.Load will not override existing env variables.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	cfg.ExpoPushURL = os.Getenv("EXPO_PUSH_URL")
	if cfg.ExpoPushURL == "" {
		cfg.ExpoPushURL = "https://exp.host/--/api/v2/push/send"
	}

	pushTimeoutSecs, err := intEnv("PUSH_TIMEOUT_SECONDS", 10)
	if err != nil {
		return nil, err
	}
	cfg.PushTimeout = time.Duration(pushTimeoutSecs) * time.Second

	cfg.DeliveryMode = strings.ToLower(os.Getenv("DELIVERY_MODE"))
	if cfg.DeliveryMode == "" {
		cfg.DeliveryMode = "push"
	}
	if cfg.DeliveryMode != "push" && cfg.DeliveryMode != "inapp" {
		return nil, fmt.Errorf("invalid DELIVERY_MODE %q (want push or inapp)", cfg.DeliveryMode)
	}

	cfg.DedupStrategy = strings.ToLower(os.Getenv("DEDUP_STRATEGY"))
	if cfg.DedupStrategy == "" {
		cfg.DedupStrategy = "lookback"
	}
	if cfg.DedupStrategy != "lookback" && cfg.DedupStrategy != "active_record" {
		return nil, fmt.Errorf("invalid DEDUP_STRATEGY %q (want lookback or active_record)", cfg.DedupStrategy)
	}

	if cfg.DailyNotificationCap, err = intEnv("DAILY_NOTIFICATION_CAP", 2); err != nil {
		return nil, err
	}
	if cfg.DailyNotificationCap < 1 {
		return nil, fmt.Errorf("DAILY_NOTIFICATION_CAP must be at least 1")
	}

	summaryDay := os.Getenv("SUMMARY_DAY")
	if summaryDay == "" {
		summaryDay = "Sun"
	}
	day, ok := schedule.ParseWeekday(summaryDay)
	if !ok {
		return nil, fmt.Errorf("invalid SUMMARY_DAY %q", summaryDay)
	}
	cfg.SummaryDay = day

	if cfg.SummaryHour, err = intEnv("SUMMARY_HOUR", 18); err != nil {
		return nil, err
	}
	if cfg.SummaryHour < 0 || cfg.SummaryHour > 23 {
		return nil, fmt.Errorf("SUMMARY_HOUR must be between 0 and 23")
	}

	if cfg.WorkerPoolSize, err = intEnv("WORKER_POOL_SIZE", 4); err != nil {
		return nil, err
	}
	if cfg.WorkerPoolSize < 1 {
		return nil, fmt.Errorf("WORKER_POOL_SIZE must be at least 1")
	}

	cfg.CronSpecEvaluation = os.Getenv("CRON_SPEC_EVALUATION")
	if cfg.CronSpecEvaluation == "" {
		cfg.CronSpecEvaluation = "0 * * * *" // hourly, on the hour
	}
	cfg.CronSpecLifecycleSweep = os.Getenv("CRON_SPEC_LIFECYCLE_SWEEP")
	if cfg.CronSpecLifecycleSweep == "" {
		cfg.CronSpecLifecycleSweep = "30 * * * *" // hourly, on the half hour
	}

	return cfg, nil
}

func intEnv(name string, defaultValue int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return v, nil
}
