// Package archive persists assembled liturgical days and the artwork gallery
// in a local SQLite database.
//
// The schema is created from the embedded schema.sql on first open and its
// revision tracked in PRAGMA user_version. A database at another revision is
// reported as ErrSchemaMismatch rather than migrated.
package archive
