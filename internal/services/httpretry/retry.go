// Package httpretry holds the retry and status classification shared by the
// outbound HTTP clients (feed, scripture provider, image provider).
package httpretry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 500 * time.Millisecond
	defaultMaxDelay    = 10 * time.Second
	maxErrorBody       = 512
)

// StatusError reports a non-2xx response. It unwraps to the classification
// marker supplied by the client (for example services.ErrFetchFailure).
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
	RetryAfter time.Duration
	Marker     error
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "..."
	}
	if body == "" {
		return fmt.Sprintf("%s: http %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: http %d: %s", e.Op, e.StatusCode, body)
}

func (e *StatusError) Unwrap() error {
	return e.Marker
}

// Retryable reports whether the status is worth another attempt.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusRequestTimeout ||
		e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode >= http.StatusInternalServerError
}

// CheckResponse reads the body and returns a *StatusError for non-2xx responses.
func CheckResponse(op string, resp *http.Response, marker error) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", op, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := ParseRetryAfter(resp.Header.Get("Retry-After"))
		return body, &StatusError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       string(body),
			RetryAfter: retryAfter,
			Marker:     marker,
		}
	}
	return body, nil
}

// Policy controls attempt count and exponential backoff.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// Sleeper replaces the timer wait, for tests.
	Sleeper func(time.Duration)
}

// DefaultPolicy returns three attempts with a 500ms base delay.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: defaultMaxAttempts,
		BaseDelay:   defaultBaseDelay,
		MaxDelay:    defaultMaxDelay,
	}
}

// SingleAttempt returns a policy that never retries but keeps the default
// backoff, so raising MaxAttempts later opts into retries.
func SingleAttempt() Policy {
	p := DefaultPolicy()
	p.MaxAttempts = 1
	return p
}

// Do runs fn until it succeeds, returns a non-retryable error, or the
// attempts are exhausted.
func (p Policy) Do(ctx context.Context, op string, fn func(context.Context) error) error {
	attempts := p.attempts()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		delay, retry := p.Delay(ctx, err, attempt)
		if !retry {
			return err
		}
		if err := p.sleep(ctx, delay); err != nil {
			return err
		}
	}
	return fmt.Errorf("%s: failed after %d attempts: %w", op, attempts, lastErr)
}

func (p Policy) attempts() int {
	if p.MaxAttempts <= 0 {
		return 1
	}
	return p.MaxAttempts
}

// Delay decides whether err after the given 1-based attempt should be retried
// and how long to wait first. Retry-After headers win over backoff.
func (p Policy) Delay(ctx context.Context, err error, attempt int) (time.Duration, bool) {
	if attempt >= p.attempts() || err == nil {
		return 0, false
	}
	if ctx == nil || ctx.Err() != nil {
		return 0, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		if !statusErr.Retryable() {
			return 0, false
		}
		if statusErr.RetryAfter > 0 {
			return p.capDelay(statusErr.RetryAfter), true
		}
		return p.backoff(attempt), true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return p.backoff(attempt), true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return p.backoff(attempt), true
	}

	return 0, false
}

func (p Policy) backoff(attempt int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		return 0
	}
	maxDelay := p.maxDelay()
	if attempt <= 0 {
		attempt = 1
	}

	// attempt 1 -> base, attempt 2 -> base*2, attempt 3 -> base*4, ...
	delay := base
	for i := 1; i < attempt; i++ {
		if delay > maxDelay/2 {
			delay = maxDelay
			break
		}
		delay *= 2
	}
	return p.capDelay(delay)
}

func (p Policy) maxDelay() time.Duration {
	if p.MaxDelay > 0 {
		return p.MaxDelay
	}
	return defaultMaxDelay
}

func (p Policy) capDelay(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	if maxDelay := p.maxDelay(); delay > maxDelay {
		return maxDelay
	}
	return delay
}

func (p Policy) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if p.Sleeper != nil {
		p.Sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ParseRetryAfter accepts delta-seconds or an HTTP date.
func ParseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		delay := time.Until(when)
		if delay < 0 {
			return 0, false
		}
		return delay, true
	}
	return 0, false
}
