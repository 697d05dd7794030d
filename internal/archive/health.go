package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Health describes the state of the archive database.
type Health struct {
	Path           string `json:"path"`
	Exists         bool   `json:"exists"`
	Readable       bool   `json:"readable"`
	SchemaVersion  int    `json:"schema_version"`
	Days           int    `json:"days"`
	Artwork        int    `json:"artwork"`
	IntegrityCheck bool   `json:"integrity_ok"`
	Error          string `json:"error,omitempty"`
}

// CheckHealth pings the database and reports row counts and integrity.
func (s *Store) CheckHealth(ctx context.Context) (Health, error) {
	health := Health{Path: s.path}
	if s.path == "" {
		return health, errors.New("archive database path is unknown")
	}
	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return health, nil
		}
		return health, fmt.Errorf("stat archive database: %w", err)
	}
	if info.IsDir() {
		return health, fmt.Errorf("archive database path %q is a directory", s.path)
	}
	health.Exists = true

	connCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("ping archive database: %w", err)
	}
	health.Readable = true

	if health.SchemaVersion, err = s.schemaVersion(connCtx); err != nil {
		health.Error = err.Error()
		return health, err
	}

	queries := []struct {
		sql  string
		dest *int
	}{
		{"SELECT COUNT(*) FROM liturgical_days", &health.Days},
		{"SELECT COUNT(*) FROM artwork", &health.Artwork},
	}
	for _, q := range queries {
		if err := s.db.QueryRowContext(connCtx, q.sql).Scan(q.dest); err != nil {
			health.Error = err.Error()
			return health, fmt.Errorf("query %q: %w", q.sql, err)
		}
	}

	var integrity string
	if err := s.db.QueryRowContext(connCtx, "PRAGMA integrity_check").Scan(&integrity); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("integrity check: %w", err)
	}
	health.IntegrityCheck = strings.EqualFold(integrity, "ok")
	return health, nil
}
