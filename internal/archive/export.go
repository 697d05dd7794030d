package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ulikunitz/xz"

	"lectio/internal/liturgy"
)

const (
	exportKindDay     = "day"
	exportKindArtwork = "artwork"
)

// TransferStats counts the rows moved by Export or Import.
type TransferStats struct {
	Days    int `json:"days"`
	Artwork int `json:"artwork"`
}

// exportLine is one JSON line of an export. Days keep their stored payload
// verbatim.
type exportLine struct {
	Kind    string          `json:"kind"`
	Day     json.RawMessage `json:"day,omitempty"`
	Artwork *ArtworkRecord  `json:"artwork,omitempty"`
}

// Export writes every day and gallery entry to w as xz-compressed JSON lines.
func (s *Store) Export(ctx context.Context, w io.Writer) (TransferStats, error) {
	var stats TransferStats

	xw, err := xz.NewWriter(w)
	if err != nil {
		return stats, fmt.Errorf("create xz writer: %w", err)
	}
	enc := json.NewEncoder(xw)

	rows, err := s.db.QueryContext(ctx, `SELECT payload_json FROM liturgical_days ORDER BY date`)
	if err != nil {
		return stats, fmt.Errorf("export days: %w", err)
	}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			rows.Close()
			return stats, fmt.Errorf("scan day: %w", err)
		}
		if err := enc.Encode(exportLine{Kind: exportKindDay, Day: json.RawMessage(payload)}); err != nil {
			rows.Close()
			return stats, fmt.Errorf("write day: %w", err)
		}
		stats.Days++
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return stats, fmt.Errorf("export days: %w", err)
	}
	rows.Close()

	records, err := s.ListArtwork(ctx, 0)
	if err != nil {
		return stats, err
	}
	for i := range records {
		if err := enc.Encode(exportLine{Kind: exportKindArtwork, Artwork: &records[i]}); err != nil {
			return stats, fmt.Errorf("write artwork: %w", err)
		}
		stats.Artwork++
	}

	if err := xw.Close(); err != nil {
		return stats, fmt.Errorf("finish xz stream: %w", err)
	}
	return stats, nil
}

// Import reads an Export stream and upserts its rows. Rows already present
// are overwritten. Lines of an unknown kind are skipped.
func (s *Store) Import(ctx context.Context, r io.Reader) (TransferStats, error) {
	var stats TransferStats

	xr, err := xz.NewReader(r)
	if err != nil {
		return stats, fmt.Errorf("open xz stream: %w", err)
	}
	dec := json.NewDecoder(xr)
	for line := 1; ; line++ {
		var entry exportLine
		if err := dec.Decode(&entry); err != nil {
			if errors.Is(err, io.EOF) {
				return stats, nil
			}
			return stats, fmt.Errorf("decode line %d: %w", line, err)
		}
		switch entry.Kind {
		case exportKindDay:
			var day liturgy.LiturgicalDay
			if err := json.Unmarshal(entry.Day, &day); err != nil {
				return stats, fmt.Errorf("decode day on line %d: %w", line, err)
			}
			if err := s.SaveDay(ctx, day); err != nil {
				return stats, err
			}
			stats.Days++
		case exportKindArtwork:
			if entry.Artwork == nil {
				continue
			}
			if err := s.RecordArtwork(ctx, *entry.Artwork); err != nil {
				return stats, err
			}
			stats.Artwork++
		}
	}
}
