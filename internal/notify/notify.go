// Package notify defines the outbound alert contract. The feed engine
// hands one Alert per submission outcome to a Sink and expects nothing
// back; delivery is fire-and-forget.
package notify

import "log/slog"

// Severity classifies an alert for presentation.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Alert is a transient user-facing notification.
type Alert struct {
	Text     string
	Severity Severity
}

// Sink receives alerts for display.
type Sink interface {
	Notify(Alert)
}

// Func is a function adapter for Sink.
type Func func(Alert)

func (f Func) Notify(a Alert) { f(a) }

// LogSink writes alerts to a structured logger.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Notify(a Alert) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("alert", "severity", string(a.Severity), "text", a.Text)
}
