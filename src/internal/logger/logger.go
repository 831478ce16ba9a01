package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rishipandey14/HRMS-Backend/src/internal/config"

	"github.com/sirupsen/logrus"
)

// Init configures the standard logrus logger from the logs section.
func Init(cfg *config.Configuration) {
	Configure(logrus.StandardLogger(), &cfg.Logs)
}

func Configure(log *logrus.Logger, cfg *config.LogsSettings) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.EnableJSONOutput {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	log.SetOutput(os.Stdout)
	if cfg.Path == "" {
		return
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		log.WithError(err).WithField("path", cfg.Path).Warn("Failed to create log directory, logging to stdout only")
		return
	}

	file, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.WithError(err).WithField("path", cfg.Path).Warn("Failed to open log file, logging to stdout only")
		return
	}
	log.SetOutput(io.MultiWriter(os.Stdout, file))
}
