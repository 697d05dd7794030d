// Package daemon runs the long-lived Lectio process behind `lectio serve`.
//
// It takes a flock-based lock so only one instance serves a data directory,
// keeps today's liturgical day warm with a periodic refresh, and exposes the
// devotion facade over a small JSON HTTP API. Handlers translate results
// through the api package and map error markers to status codes.
//
// Keep orchestration here; domain logic belongs in devotion and below.
package daemon
