package liturgy

import (
	"fmt"
	"strings"
	"time"

	"lectio/internal/scripture"
)

// Season is a liturgical season.
type Season int

const (
	Advent Season = iota
	ChristmasTime
	Lent
	EasterTime
	OrdinaryTime
)

var seasonNames = map[Season]string{
	Advent:        "Advent",
	ChristmasTime: "Christmas Time",
	Lent:          "Lent",
	EasterTime:    "Easter Time",
	OrdinaryTime:  "Ordinary Time",
}

func (s Season) String() string {
	if name, ok := seasonNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Season(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Season) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Season) UnmarshalText(text []byte) error {
	parsed, ok := ParseSeason(string(text))
	if !ok {
		return fmt.Errorf("unknown season %q", string(text))
	}
	*s = parsed
	return nil
}

// ParseSeason accepts a season name, case- and space-insensitively.
func ParseSeason(value string) (Season, bool) {
	key := normalizeKey(value)
	for season, name := range seasonNames {
		if normalizeKey(name) == key {
			return season, true
		}
	}
	switch key {
	case "christmas":
		return ChristmasTime, true
	case "easter":
		return EasterTime, true
	case "ordinary":
		return OrdinaryTime, true
	}
	return OrdinaryTime, false
}

// Color is a liturgical vestment color.
type Color int

const (
	White Color = iota
	Red
	Green
	Violet
	Rose
	Gold
	Black
)

var colorNames = map[Color]string{
	White:  "White",
	Red:    "Red",
	Green:  "Green",
	Violet: "Violet",
	Rose:   "Rose",
	Gold:   "Gold",
	Black:  "Black",
}

func (c Color) String() string {
	if name, ok := colorNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Color(%d)", int(c))
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(text []byte) error {
	key := normalizeKey(string(text))
	for color, name := range colorNames {
		if normalizeKey(name) == key {
			*c = color
			return nil
		}
	}
	return fmt.Errorf("unknown color %q", string(text))
}

// Saint is one entry of the saints calendar.
type Saint struct {
	Name        string   `json:"name"`
	FeastDay    string   `json:"feast_day"`
	Rank        Rank     `json:"rank"`
	Patronage   []string `json:"patronage,omitempty"`
	Iconography string   `json:"iconography,omitempty"`
	Biography   string   `json:"biography,omitempty"`
}

// LiturgicalDay is the assembled record for one calendar date. A newer fetch
// replaces the whole value.
type LiturgicalDay struct {
	Date           time.Time              `json:"date"`
	Title          string                 `json:"title"`
	Season         Season                 `json:"season"`
	Color          Color                  `json:"color"`
	Rank           Rank                   `json:"rank"`
	Readings       scripture.MassReadings `json:"readings"`
	Commemorations []string               `json:"commemorations"`
	Saint          *Saint                 `json:"saint,omitempty"`
	Link           string                 `json:"link,omitempty"`
}

// DateKey returns the day's date as YYYY-MM-DD.
func (d LiturgicalDay) DateKey() string {
	return DateKey(d.Date)
}

// DateKey formats t as YYYY-MM-DD in its own location.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// FeastDayKey formats t as MM-dd.
func FeastDayKey(t time.Time) string {
	return t.Format("01-02")
}

func normalizeKey(value string) string {
	return strings.ToLower(strings.Join(strings.Fields(strings.ReplaceAll(value, "_", " ")), ""))
}
