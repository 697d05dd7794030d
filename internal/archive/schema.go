package archive

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// currentSchema is stored in SQLite's user_version header field.
const currentSchema = 1

// ErrSchemaMismatch is returned by Open when the database was written by a
// different schema revision.
var ErrSchemaMismatch = errors.New("schema version mismatch")

func (s *Store) schemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

// migrate brings a fresh database to currentSchema. Existing databases at any
// other revision are refused; the archive is a cache of public data and is
// rebuilt by deleting the file.
func (s *Store) migrate(ctx context.Context) error {
	version, err := s.schemaVersion(ctx)
	if err != nil {
		return err
	}
	switch version {
	case currentSchema:
		return nil
	case 0:
	default:
		return fmt.Errorf("%w: %s is at revision %d, this build expects %d (remove the file to rebuild)",
			ErrSchemaMismatch, s.path, version, currentSchema)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	// PRAGMA does not accept bound parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", currentSchema)); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return tx.Commit()
}
