package liturgy

import (
	"fmt"
	"sort"
	"strings"
)

// Rank is a celebration's liturgical rank. Lower values take precedence.
type Rank int

const (
	Solemnity Rank = iota
	Feast
	Memorial
	OptionalMemorial
	Ferial
)

var rankNames = map[Rank]string{
	Solemnity:        "Solemnity",
	Feast:            "Feast",
	Memorial:         "Memorial",
	OptionalMemorial: "Optional Memorial",
	Ferial:           "Ferial",
}

func (r Rank) String() string {
	if name, ok := rankNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Rank(%d)", int(r))
}

// MarshalText implements encoding.TextMarshaler.
func (r Rank) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Rank) UnmarshalText(text []byte) error {
	parsed, ok := ParseRank(string(text))
	if !ok {
		return fmt.Errorf("unknown rank %q", string(text))
	}
	*r = parsed
	return nil
}

// ParseRank accepts "solemnity", "feast", "memorial", "optional memorial"
// (also "optional_memorial") and "ferial".
func ParseRank(value string) (Rank, bool) {
	key := normalizeKey(value)
	for rank, name := range rankNames {
		if normalizeKey(name) == key {
			return rank, true
		}
	}
	return Ferial, false
}

// Precedes reports whether r outranks other.
func (r Rank) Precedes(other Rank) bool {
	return r < other
}

// ComparePrecedence returns -1 when a outranks b, 1 when b outranks a, and 0
// when they are equal.
func ComparePrecedence(a, b Rank) int {
	switch {
	case a.Precedes(b):
		return -1
	case b.Precedes(a):
		return 1
	default:
		return 0
	}
}

// HigherPrecedence returns whichever rank outranks the other.
func HigherPrecedence(a, b Rank) Rank {
	if b.Precedes(a) {
		return b
	}
	return a
}

// SortByPrecedence orders items from highest to lowest rank, keeping the input
// order among equals.
func SortByPrecedence[T any](items []T, rankOf func(T) Rank) {
	sort.SliceStable(items, func(i, j int) bool {
		return rankOf(items[i]).Precedes(rankOf(items[j]))
	})
}

// ClassifyRank scans a celebration title for rank keywords.
func ClassifyRank(title string) Rank {
	lower := strings.ToLower(title)
	switch {
	case strings.Contains(lower, "solemnity"):
		return Solemnity
	case strings.Contains(lower, "feast"):
		return Feast
	case strings.Contains(lower, "optional memorial"):
		return OptionalMemorial
	case strings.Contains(lower, "memorial"):
		return Memorial
	default:
		return Ferial
	}
}
