package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Config configuration for the application logger
type Config struct {
	Level  string
	Format string // json, text
}

// New builds a logrus logger from config. Unknown levels fall back to info.
func New(config Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if config.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return log
}
