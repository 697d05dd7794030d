package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"lectio/internal/config"
	"lectio/internal/liturgy"
)

// Store persists liturgical days and the artwork gallery in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// ArtworkRecord describes one generated image.
type ArtworkRecord struct {
	Key       string    `json:"key"`
	Reference string    `json:"reference,omitempty"`
	Context   string    `json:"context"`
	Season    string    `json:"season"`
	Prompt    string    `json:"prompt"`
	Path      string    `json:"path,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// DaySummary is a compact row of the day history.
type DaySummary struct {
	Date     string    `json:"date"`
	Title    string    `json:"title"`
	Season   string    `json:"season"`
	Color    string    `json:"color"`
	Rank     string    `json:"rank"`
	Saint    string    `json:"saint,omitempty"`
	Degraded bool      `json:"degraded"`
	SavedAt  time.Time `json:"saved_at"`
}

// Open connects to the archive at cfg.ArchivePath().
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.ArchivePath())
}

// OpenPath opens or creates the archive database at path.
func OpenPath(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveDay upserts the day keyed by its date.
func (s *Store) SaveDay(ctx context.Context, day liturgy.LiturgicalDay) error {
	payload, err := json.Marshal(day)
	if err != nil {
		return fmt.Errorf("marshal day: %w", err)
	}
	saint := ""
	if day.Saint != nil {
		saint = day.Saint.Name
	}
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO liturgical_days (date, title, season, color, rank, saint, degraded, payload_json, saved_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(date) DO UPDATE SET
             title = excluded.title, season = excluded.season, color = excluded.color,
             rank = excluded.rank, saint = excluded.saint, degraded = excluded.degraded,
             payload_json = excluded.payload_json, saved_at = excluded.saved_at`,
		day.DateKey(),
		day.Title,
		day.Season.String(),
		day.Color.String(),
		day.Rank.String(),
		nullableString(saint),
		boolToInt(day.Readings.Degraded),
		string(payload),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save day: %w", err)
	}
	return nil
}

// LoadDay returns the stored day for date's calendar day.
func (s *Store) LoadDay(ctx context.Context, date time.Time) (liturgy.LiturgicalDay, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload_json FROM liturgical_days WHERE date = ?`, liturgy.DateKey(date)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return liturgy.LiturgicalDay{}, false, nil
	}
	if err != nil {
		return liturgy.LiturgicalDay{}, false, fmt.Errorf("load day: %w", err)
	}
	var day liturgy.LiturgicalDay
	if err := json.Unmarshal([]byte(payload), &day); err != nil {
		return liturgy.LiturgicalDay{}, false, fmt.Errorf("decode day: %w", err)
	}
	return day, true, nil
}

// ListDays returns the most recent days first. limit <= 0 returns all.
func (s *Store) ListDays(ctx context.Context, limit int) ([]DaySummary, error) {
	query := `SELECT date, title, season, color, rank, saint, degraded, saved_at FROM liturgical_days ORDER BY date DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list days: %w", err)
	}
	defer rows.Close()

	var days []DaySummary
	for rows.Next() {
		var (
			summary  DaySummary
			saint    sql.NullString
			degraded int
			savedRaw string
		)
		if err := rows.Scan(&summary.Date, &summary.Title, &summary.Season, &summary.Color, &summary.Rank, &saint, &degraded, &savedRaw); err != nil {
			return nil, fmt.Errorf("scan day: %w", err)
		}
		summary.Saint = saint.String
		summary.Degraded = degraded != 0
		if saved, err := parseTimeString(savedRaw); err == nil {
			summary.SavedAt = saved
		}
		days = append(days, summary)
	}
	return days, rows.Err()
}

// RecordArtwork upserts a gallery entry.
func (s *Store) RecordArtwork(ctx context.Context, record ArtworkRecord) error {
	if strings.TrimSpace(record.Key) == "" {
		return errors.New("artwork key is required")
	}
	created := record.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO artwork (key, reference, context, season, prompt, path, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(key) DO UPDATE SET
             reference = excluded.reference, context = excluded.context, season = excluded.season,
             prompt = excluded.prompt, path = excluded.path, created_at = excluded.created_at`,
		record.Key,
		nullableString(record.Reference),
		record.Context,
		record.Season,
		record.Prompt,
		nullableString(record.Path),
		created.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record artwork: %w", err)
	}
	return nil
}

// ListArtwork returns the newest gallery entries first. limit <= 0 returns all.
func (s *Store) ListArtwork(ctx context.Context, limit int) ([]ArtworkRecord, error) {
	query := `SELECT key, reference, context, season, prompt, path, created_at FROM artwork ORDER BY created_at DESC, key`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list artwork: %w", err)
	}
	defer rows.Close()

	var records []ArtworkRecord
	for rows.Next() {
		var (
			rec        ArtworkRecord
			reference  sql.NullString
			path       sql.NullString
			createdRaw string
		)
		if err := rows.Scan(&rec.Key, &reference, &rec.Context, &rec.Season, &rec.Prompt, &path, &createdRaw); err != nil {
			return nil, fmt.Errorf("scan artwork: %w", err)
		}
		rec.Reference = reference.String
		rec.Path = path.String
		if created, err := parseTimeString(createdRaw); err == nil {
			rec.CreatedAt = created
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
