package logging

import (
	"context"
	"log/slog"
	"time"
)

type Attr = slog.Attr

func String(key, value string) Attr { return slog.String(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

// Error renders err under the "error" key. A nil error is logged as "<nil>"
// rather than dropped so misuse is visible.
func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// NewComponentLogger tags logger with the component field. A nil logger
// yields a no-op logger.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(slog.String(FieldComponent, component))
}

// WarnWithContext logs a warning that always carries event_type, error_hint,
// and impact. Missing fields get generic defaults.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	logClassified(logger, slog.LevelWarn, msg, eventType, attrs, true)
}

// ErrorWithContext is WarnWithContext at error level, without the impact default.
func ErrorWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	logClassified(logger, slog.LevelError, msg, eventType, attrs, false)
}

func logClassified(logger *slog.Logger, level slog.Level, msg, eventType string, attrs []Attr, wantImpact bool) {
	if logger == nil {
		return
	}
	present := make(map[string]bool, len(attrs))
	for _, a := range attrs {
		present[a.Key] = true
	}
	if !present[FieldEventType] {
		attrs = append(attrs, slog.String(FieldEventType, eventType))
	}
	if !present[FieldErrorHint] {
		attrs = append(attrs, slog.String(FieldErrorHint, "check logs for details"))
	}
	if wantImpact && !present[FieldImpact] {
		attrs = append(attrs, slog.String(FieldImpact, "served with reduced content"))
	}
	logger.LogAttrs(context.Background(), level, msg, attrs...)
}
