// Package services defines shared utilities consumed by the lectio pipeline
// components and their external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp correlation identifiers, scripture references,
//     and liturgical dates for logging.
//   - Structured error markers plus the Wrap helper so callers can tell an
//     invalid reference from a retryable fetch failure or an absorbed
//     generation failure.
//
// Use these helpers when wiring new components so error classification and
// observability stay uniform.
package services
