package core

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Logger interface for tracer logging
type Logger interface {
	Printf(format string, args ...interface{})
}

// slogLogger adapts a structured logger to the Printf-style Logger
type slogLogger struct {
	logger *slog.Logger
	level  slog.Level
}

// NewSlogLogger returns a Logger that writes each message to logger at the given level
func NewSlogLogger(logger *slog.Logger, level slog.Level) Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &slogLogger{logger: logger, level: level}
}

func (l *slogLogger) Printf(format string, args ...interface{}) {
	msg := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	l.logger.Log(context.Background(), l.level, msg)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...interface{}) {}

// NopLogger returns a Logger that discards everything
func NopLogger() Logger {
	return nopLogger{}
}
