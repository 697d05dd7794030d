package logging

import (
	"context"
	"log/slog"

	"lectio/internal/services"
)

// Structured field keys shared by every component.
const (
	FieldComponent      = "component"
	FieldEventType      = "event_type"
	FieldErrorHint      = "error_hint"
	FieldImpact         = "impact"
	FieldCorrelationID  = "correlation_id"
	FieldReference      = "reference"
	FieldLiturgicalDate = "liturgical_date"
)

// WithContext returns logger extended with the correlation id, scripture
// reference and liturgical date stored in ctx, when present.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if ctx == nil {
		return logger
	}
	var args []any
	if id, ok := services.RequestIDFromContext(ctx); ok {
		args = append(args, slog.String(FieldCorrelationID, id))
	}
	if ref, ok := services.ReferenceFromContext(ctx); ok {
		args = append(args, slog.String(FieldReference, ref))
	}
	if day, ok := services.LiturgicalDateFromContext(ctx); ok {
		args = append(args, slog.String(FieldLiturgicalDate, day.Format("2006-01-02")))
	}
	if len(args) == 0 {
		return logger
	}
	return logger.With(args...)
}
