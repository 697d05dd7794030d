package services

import (
	"context"
	"time"
)

type contextKey int

const (
	requestIDKey contextKey = iota
	referenceKey
	dateKey
)

// annotate stores v under key unless v is the zero value.
func annotate[T comparable](ctx context.Context, key contextKey, v T) context.Context {
	var zero T
	if v == zero {
		return ctx
	}
	return context.WithValue(ctx, key, v)
}

func lookup[T comparable](ctx context.Context, key contextKey) (T, bool) {
	v, ok := ctx.Value(key).(T)
	var zero T
	return v, ok && v != zero
}

// WithRequestID tags ctx with the correlation id logged on every line of a
// CLI invocation or HTTP request.
func WithRequestID(ctx context.Context, id string) context.Context {
	return annotate(ctx, requestIDKey, id)
}

func RequestIDFromContext(ctx context.Context) (string, bool) {
	return lookup[string](ctx, requestIDKey)
}

// WithReference tags ctx with the scripture citation being resolved.
func WithReference(ctx context.Context, ref string) context.Context {
	return annotate(ctx, referenceKey, ref)
}

func ReferenceFromContext(ctx context.Context) (string, bool) {
	return lookup[string](ctx, referenceKey)
}

// WithLiturgicalDate tags ctx with the calendar day being assembled.
func WithLiturgicalDate(ctx context.Context, date time.Time) context.Context {
	if date.IsZero() {
		return ctx
	}
	return context.WithValue(ctx, dateKey, date)
}

func LiturgicalDateFromContext(ctx context.Context) (time.Time, bool) {
	v, ok := ctx.Value(dateKey).(time.Time)
	return v, ok && !v.IsZero()
}
