package api

import (
	"time"

	"lectio/internal/archive"
	"lectio/internal/artwork"
	"lectio/internal/liturgy"
	"lectio/internal/scripture"
	"lectio/internal/scripturecache"
)

// FromReading converts a reading to its API representation.
func FromReading(r scripture.Reading) Reading {
	dto := Reading{Title: r.Title, Text: r.Text()}
	if r.Reference != nil && !r.Reference.IsZero() {
		dto.Reference = r.Reference.DisplayText()
		dto.APIReference = r.Reference.APIFormat()
	}
	if len(r.Verses) > 1 || (len(r.Verses) == 1 && r.Verses[0].VerseNumber > 0) {
		dto.Verses = make([]Verse, 0, len(r.Verses))
		for _, v := range r.Verses {
			dto.Verses = append(dto.Verses, Verse{Reference: v.Reference, Number: v.VerseNumber, Text: v.Text})
		}
	}
	return dto
}

// FromReadings converts a slice of readings.
func FromReadings(readings []scripture.Reading) []Reading {
	out := make([]Reading, 0, len(readings))
	for _, r := range readings {
		out = append(out, FromReading(r))
	}
	return out
}

// FromSaint converts a saint record.
func FromSaint(s liturgy.Saint) Saint {
	return Saint{
		Name:        s.Name,
		FeastDay:    s.FeastDay,
		Rank:        s.Rank.String(),
		Patronage:   s.Patronage,
		Iconography: s.Iconography,
		Biography:   s.Biography,
	}
}

// FromSaints converts a slice of saints.
func FromSaints(saints []liturgy.Saint) []Saint {
	out := make([]Saint, 0, len(saints))
	for _, s := range saints {
		out = append(out, FromSaint(s))
	}
	return out
}

// FromLiturgicalDay converts an assembled day. Readings are listed in Mass
// order and absent readings are skipped.
func FromLiturgicalDay(day liturgy.LiturgicalDay, archived bool) Day {
	dto := Day{
		Date:           day.DateKey(),
		Title:          day.Title,
		Season:         day.Season.String(),
		Color:          day.Color.String(),
		Rank:           day.Rank.String(),
		Commemorations: day.Commemorations,
		Degraded:       day.Readings.Degraded,
		Archived:       archived,
		Link:           day.Link,
	}
	if day.Saint != nil {
		saint := FromSaint(*day.Saint)
		dto.Saint = &saint
	}
	dto.Readings = FromReadings(day.Readings.All())
	return dto
}

// FromDaySummaries converts archive rows.
func FromDaySummaries(days []archive.DaySummary) []DaySummary {
	out := make([]DaySummary, 0, len(days))
	for _, d := range days {
		row := DaySummary{
			Date:     d.Date,
			Title:    d.Title,
			Season:   d.Season,
			Color:    d.Color,
			Rank:     d.Rank,
			Saint:    d.Saint,
			Degraded: d.Degraded,
		}
		if !d.SavedAt.IsZero() {
			row.SavedAt = d.SavedAt.UTC().Format(dateTimeFormat)
		}
		out = append(out, row)
	}
	return out
}

// FromSnapshot converts the assembler snapshot.
func FromSnapshot(s liturgy.Snapshot) LiturgyStatus {
	status := LiturgyStatus{
		State:    s.State.String(),
		Archived: s.Archived,
		Error:    s.Error,
	}
	if s.Day != nil {
		status.Title = s.Day.Title
		status.Date = s.Day.DateKey()
	}
	if !s.UpdatedAt.IsZero() {
		status.UpdatedAt = s.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	return status
}

// NewLiturgyEvent wraps a snapshot for the event stream.
func NewLiturgyEvent(s liturgy.Snapshot, at time.Time) Event {
	return Event{
		Type:      "liturgy",
		Liturgy:   FromSnapshot(s),
		Timestamp: at.UTC().Format(dateTimeFormat),
	}
}

// FromScriptureStats converts scripture cache counters.
func FromScriptureStats(s scripturecache.Stats) ScriptureCacheStatus {
	return ScriptureCacheStatus{
		Entries:    s.Entries,
		MaxEntries: s.MaxEntries,
		Hits:       s.Hits,
		Misses:     s.Misses,
		Evictions:  s.Evictions,
	}
}

// FromImageStats converts image cache counters. dir may be empty.
func FromImageStats(dir string, s artwork.CacheStats) ImageCacheStatus {
	return ImageCacheStatus{
		Dir:           dir,
		MemoryEntries: s.MemoryEntries,
		MaxEntries:    s.MaxEntries,
		MemoryHits:    s.MemoryHits,
		DiskHits:      s.DiskHits,
		Misses:        s.Misses,
	}
}
