// internal/infra/logger/logger.go
package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New builds the application logger from the configured level and environment.
// Production and staging log JSON; everything else gets colored text output.
func New(logLevel, environment string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(strings.ToLower(logLevel))
	if err != nil {
		log.Warnf("Invalid log level '%s', defaulting to 'info'. Error: %v", logLevel, err)
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	env := strings.ToLower(environment)
	if env == "production" || env == "staging" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00", // ISO8601
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			ForceColors:     true,
		})
	}

	return log
}
