package liturgy

import (
	"strings"
	"time"
)

// ClassifySeason maps a date to a season with a fixed month/day table:
//
//	Advent         Dec 1  - Dec 24
//	Christmas Time Dec 25 - Jan 13
//	Lent           Feb 14 - Mar 31
//	Easter Time    Apr 1  - May 31
//	Ordinary Time  otherwise
//
// This is an approximation and does not compute Easter.
func ClassifySeason(date time.Time) Season {
	month, day := date.Month(), date.Day()
	switch {
	case month == time.December && day >= 25, month == time.January && day <= 13:
		return ChristmasTime
	case month == time.December:
		return Advent
	case month == time.February && day >= 14, month == time.March:
		return Lent
	case month == time.April, month == time.May:
		return EasterTime
	default:
		return OrdinaryTime
	}
}

type colorRule struct {
	keywords []string
	color    Color
}

// colorRules are checked in order; the first keyword hit wins.
var colorRules = []colorRule{
	{keywords: []string{"martyr"}, color: Red},
	{keywords: []string{"virgin", "angel", "pope", "bishop"}, color: White},
	{keywords: []string{"gaudete", "laetare"}, color: Rose},
	{keywords: []string{"all souls"}, color: Black},
}

// ClassifyColor picks the vestment color from title keywords, falling back to
// the season's default.
func ClassifyColor(title string, season Season) Color {
	lower := strings.ToLower(title)
	for _, rule := range colorRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.color
			}
		}
	}
	return SeasonColor(season)
}

// SeasonColor is the default color of a season.
func SeasonColor(season Season) Color {
	switch season {
	case Advent, Lent:
		return Violet
	case ChristmasTime, EasterTime:
		return White
	default:
		return Green
	}
}
