// Package logger provides structured logging for the game server.
// Every state change the server performs should be traceable through it.
package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger wraps logrus with the small surface the rest of the server uses.
type Logger struct {
	log *logrus.Logger
}

// NewLogger creates a logger configured from the environment.
// LOG_LEVEL selects the level (default "info"); LOG_FORMAT=json switches
// to the JSON formatter for log collection.
func NewLogger() *Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return &Logger{log: l}
}

// Info logs informational messages.
func (l *Logger) Info(format string, args ...interface{}) {
	l.log.Infof(format, args...)
}

// Debug logs verbose diagnostics.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log.Debugf(format, args...)
}

// Warn logs recoverable problems.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log.Warnf(format, args...)
}

// Error logs failures that degraded a request or a background loop.
func (l *Logger) Error(format string, args ...interface{}) {
	l.log.Errorf(format, args...)
}

// Event logs a structured game event with its actor, so that gameplay
// can be reconstructed from the log stream alone.
func (l *Logger) Event(eventType, actorID, detail string) {
	l.log.WithFields(logrus.Fields{
		"event": eventType,
		"actor": actorID,
	}).Info(detail)
}
