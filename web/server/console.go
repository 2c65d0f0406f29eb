package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/df07/go-optics-tracer/pkg/core"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "warning", "error"
}

// WebLogger implements core.Logger by sending messages to a console channel
type WebLogger struct {
	sessionID   string
	consoleChan chan<- ConsoleMessage
}

// NewWebLogger creates a new web logger for a specific session
func NewWebLogger(sessionID string, consoleChan chan<- ConsoleMessage) core.Logger {
	return &WebLogger{
		sessionID:   sessionID,
		consoleChan: consoleChan,
	}
}

// Printf implements core.Logger interface
func (wl *WebLogger) Printf(format string, args ...interface{}) {
	message := strings.TrimSuffix(fmt.Sprintf(format, args...), "\n")

	// Also write to the server log
	slog.Debug(message, "session", wl.sessionID)

	// Send to web console if channel is available (non-blocking)
	if wl.consoleChan != nil {
		select {
		case wl.consoleChan <- ConsoleMessage{
			Message:   message,
			Timestamp: time.Now(),
			Level:     "warning",
		}:
		default:
			// Channel full, skip (don't block)
		}
	}
}

// newRequestLogger returns a logger for one-shot traces tagged with the request path
func newRequestLogger(r *http.Request) core.Logger {
	return core.NewSlogLogger(slog.Default().With("path", r.URL.Path), slog.LevelDebug)
}
