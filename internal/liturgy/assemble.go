package liturgy

import (
	"strings"
	"time"

	"lectio/internal/scripture"
	"lectio/internal/services/feed"
)

// Commemorations splits a title on commas and drops empty segments.
func Commemorations(title string) []string {
	parts := strings.Split(title, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Assemble builds the day record from its parts. It performs no I/O.
func Assemble(date time.Time, item feed.Item, readings scripture.MassReadings, saint *Saint) LiturgicalDay {
	day := startOfDay(date)
	title := strings.TrimSpace(item.Title)
	season := ClassifySeason(day)
	rank := ClassifyRank(title)

	var saintCopy *Saint
	if saint != nil {
		s := *saint
		saintCopy = &s
		rank = HigherPrecedence(rank, s.Rank)
	}

	return LiturgicalDay{
		Date:           day,
		Title:          title,
		Season:         season,
		Color:          ClassifyColor(title, season),
		Rank:           rank,
		Readings:       readings,
		Commemorations: Commemorations(title),
		Saint:          saintCopy,
		Link:           strings.TrimSpace(item.Link),
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}
