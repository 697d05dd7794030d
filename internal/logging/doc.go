// Package logging assembles structured slog loggers and formatting helpers used
// across Lectio.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so fetch and render code can tag
// log lines with correlation IDs, scripture references, and the liturgical day
// being served. The package also provides a no-op logger for tests and wiring
// code that cannot fail.
package logging
