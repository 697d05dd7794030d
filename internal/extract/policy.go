package extract

import (
	"regexp"
	"strings"
)

// Kind identifies one reading of the Mass.
type Kind string

const (
	KindFirstReading  Kind = "first_reading"
	KindPsalm         Kind = "psalm"
	KindSecondReading Kind = "second_reading"
	KindAlleluia      Kind = "alleluia"
	KindGospel        Kind = "gospel"
)

// Kinds lists reading kinds in liturgical order.
var Kinds = []Kind{KindFirstReading, KindPsalm, KindSecondReading, KindAlleluia, KindGospel}

// Title returns the display label for the reading kind.
func (k Kind) Title() string {
	switch k {
	case KindFirstReading:
		return "First Reading"
	case KindPsalm:
		return "Responsorial Psalm"
	case KindSecondReading:
		return "Second Reading"
	case KindAlleluia:
		return "Alleluia"
	case KindGospel:
		return "Gospel"
	default:
		return string(k)
	}
}

// Policy is a named extraction pattern. The first capture group is the
// reading body. Fallback policies mark their matches as degraded. Skip, when
// set, rejects a candidate match starting at byte offset start so the next
// one is tried.
type Policy struct {
	Name     string
	Pattern  *regexp.Regexp
	Fallback bool
	Skip     func(description string, start int) bool
}

// Match returns the captured fragment of the first accepted match.
func (p Policy) Match(description string) (string, bool) {
	if p.Skip == nil {
		m := p.Pattern.FindStringSubmatch(description)
		if len(m) < 2 {
			return "", false
		}
		return m[1], true
	}
	for _, loc := range p.Pattern.FindAllStringSubmatchIndex(description, -1) {
		if len(loc) < 4 || p.Skip(description, loc[0]) {
			continue
		}
		if loc[2] < 0 {
			return "", true
		}
		return description[loc[2]:loc[3]], true
	}
	return "", false
}

var (
	acclamationBefore = regexp.MustCompile(`(?i)\bthe\s*$`)
	acclamationAfter  = regexp.MustCompile(`(?i)^(?:holy\s+)?gospel\s+acclamation\b`)
)

// withinAcclamationLabel reports whether the "gospel" at start belongs to an
// acclamation label such as "Verse before the Gospel" or "Gospel Acclamation".
func withinAcclamationLabel(description string, start int) bool {
	return acclamationBefore.MatchString(description[:start]) ||
		acclamationAfter.MatchString(strings.TrimSpace(description[start:]))
}

// Policies maps each reading kind to its ordered fallbacks.
type Policies map[Kind][]Policy

const (
	bodyTail   = `\s*(?:<br\s*/?>\s*)*(.*?)(?:<strong>|$)`
	firstLabel = `(?:Reading\s*(?:1|I)|First\s+Reading)`
	psalmLabel = `(?:Responsorial\s+Psalm|Psalm)`
	secLabel   = `(?:Reading\s*(?:2|II)|Second\s+Reading)`
	alleLabel  = `(?:Alleluia|Verse\s+before\s+the\s+Gospel|Gospel\s+Acclamation)`
	gospLabel  = `(?:Holy\s+)?Gospel`
)

// labelPolicies builds the strong-anchored policy followed by the bare
// closing-tag policy for a label alternation.
func labelPolicies(kind Kind, label string) []Policy {
	return []Policy{
		{
			Name:    string(kind) + "/strong",
			Pattern: regexp.MustCompile(`(?is)<strong>\s*` + label + `\s*</strong>` + bodyTail),
		},
		{
			Name:    string(kind) + "/closing-tag",
			Pattern: regexp.MustCompile(`(?is)` + label + `\s*</strong>` + bodyTail),
		},
	}
}

// gospelWordPolicy is the last pattern tried for the Gospel: anything after
// the word "gospel" up to the next label.
var gospelWordPolicy = Policy{
	Name:     string(KindGospel) + "/after-word",
	Pattern:  regexp.MustCompile(`(?is)\bgospel\b(.*?)(?:<strong>|$)`),
	Fallback: true,
	Skip:     withinAcclamationLabel,
}

// DefaultPolicies returns the standard policy table.
func DefaultPolicies() Policies {
	gospel := labelPolicies(KindGospel, gospLabel)
	for i := range gospel {
		gospel[i].Skip = withinAcclamationLabel
	}
	gospel = append(gospel, gospelWordPolicy)
	return Policies{
		KindFirstReading:  labelPolicies(KindFirstReading, firstLabel),
		KindPsalm:         labelPolicies(KindPsalm, psalmLabel),
		KindSecondReading: labelPolicies(KindSecondReading, secLabel),
		KindAlleluia:      labelPolicies(KindAlleluia, alleLabel),
		KindGospel:        gospel,
	}
}
