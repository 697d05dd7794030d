package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

// consoleHandler writes one human-readable line per record:
//
//	2025-03-19T06:00:00Z WARN  liturgy | serving archived day date=2025-03-19
//
// The component attribute is lifted out of the key/value tail.
type consoleHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	level  slog.Leveler
	source bool

	component string
	prefix    string // dotted group path for attrs added later
	preset    []string
}

func newConsoleHandler(w io.Writer, level slog.Leveler, source bool) *consoleHandler {
	return &consoleHandler{mu: &sync.Mutex{}, w: w, level: level, source: source}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	component := h.component
	pairs := append([]string(nil), h.preset...)
	r.Attrs(func(a slog.Attr) bool {
		if h.prefix == "" && a.Key == FieldComponent {
			component = a.Value.String()
			return true
		}
		pairs = appendPairs(pairs, h.prefix, a)
		return true
	})

	var b strings.Builder
	b.WriteString(ts.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, " %-5s ", r.Level.String())
	if component != "" {
		b.WriteString(component)
		b.WriteString(" | ")
	}
	if msg := strings.TrimSpace(r.Message); msg != "" {
		b.WriteString(msg)
	} else {
		b.WriteString("(no message)")
	}
	if h.source && r.PC != 0 {
		if src := r.Source(); src != nil {
			b.WriteString(" [" + shortSource(src.File, src.Line) + "]")
		}
	}
	for _, pair := range pairs {
		b.WriteByte(' ')
		b.WriteString(pair)
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.preset = append([]string(nil), h.preset...)
	for _, a := range attrs {
		if h.prefix == "" && a.Key == FieldComponent {
			next.component = a.Value.String()
			continue
		}
		next.preset = appendPairs(next.preset, h.prefix, a)
	}
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = joinKey(h.prefix, name)
	return &next
}

func appendPairs(dst []string, prefix string, a slog.Attr) []string {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return dst
	}
	if a.Value.Kind() == slog.KindGroup {
		groupPrefix := prefix
		if a.Key != "" {
			groupPrefix = joinKey(prefix, a.Key)
		}
		for _, member := range a.Value.Group() {
			dst = appendPairs(dst, groupPrefix, member)
		}
		return dst
	}
	return append(dst, joinKey(prefix, a.Key)+"="+renderValue(a.Value))
}

func joinKey(prefix, key string) string {
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	default:
		return prefix + "." + key
	}
}

func renderValue(v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			s = fmt.Sprint(v.Any())
		}
	default:
		s = v.String()
	}
	if s == "" || strings.ContainsAny(s, " =\"\t\n") {
		return strconv.Quote(s)
	}
	return s
}
