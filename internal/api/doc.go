// Package api defines the wire-format types served by the HTTP API and
// printed by the CLI in --json mode. It translates liturgy, scripture and
// cache models into transport-friendly DTOs so clients never couple to
// internal types.
//
// DTOs use camelCase JSON tags. Enums (season, color, rank, assembler state)
// are exposed as display strings. Timestamps use RFC3339 with milliseconds;
// calendar days use YYYY-MM-DD.
package api
