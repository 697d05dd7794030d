package extract

import (
	"html"
	"regexp"
	"strings"
	"unicode"
)

const (
	maxTagPasses      = 3
	minSentenceLength = 20
)

var (
	tagPattern         = regexp.MustCompile(`<[^<>]*>`)
	residualEntity     = regexp.MustCompile(`&#?[A-Za-z0-9]+;`)
	sentenceSplit      = regexp.MustCompile(`[.!?]+`)
	markupIndicators   = []string{"<", "href=", "class="}
	leadingLabelSuffix = regexp.MustCompile(`^[\s:.\-\x{2013}\x{2014}]+`)
)

// labelPattern matches reading labels that leak into body text. Alleluia is
// deliberately absent because the acclamation text itself begins with it.
var labelPattern = regexp.MustCompile(`(?i)^\s*(?:the\s+)?(?:responsorial\s+psalm|first\s+reading|second\s+reading|reading\s+(?:1|2|i{1,2})|(?:holy\s+)?gospel(?:\s+acclamation)?|verse\s+before\s+the\s+gospel)\b`)

// CleanHTML decodes entities, strips tags, and collapses whitespace. The
// second result reports whether markup survived the normal passes and the
// text had to be salvaged.
func CleanHTML(fragment string) (string, bool) {
	text := html.UnescapeString(fragment)
	for i := 0; i < maxTagPasses; i++ {
		stripped := tagPattern.ReplaceAllString(text, " ")
		if stripped == text {
			break
		}
		text = stripped
	}
	text = residualEntity.ReplaceAllString(text, "")

	degraded := false
	if hasMarkup(text) {
		degraded = true
		text = salvage(text)
	}
	return collapseWhitespace(text), degraded
}

// StripLabels removes reading labels at the start of text, repeatedly, so
// "Gospel Holy Gospel: In the beginning" becomes "In the beginning".
func StripLabels(text string) string {
	out := leadingLabelSuffix.ReplaceAllString(strings.TrimSpace(text), "")
	for {
		loc := labelPattern.FindStringIndex(out)
		if loc == nil {
			return out
		}
		out = leadingLabelSuffix.ReplaceAllString(out[loc[1]:], "")
		out = strings.TrimSpace(out)
	}
}

func hasMarkup(text string) bool {
	lower := strings.ToLower(text)
	for _, indicator := range markupIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

// salvage keeps the first sentence long enough to be prose and free of
// markup. Failing that, everything except letters, digits, punctuation, and
// spaces is dropped.
func salvage(text string) string {
	for _, segment := range sentenceSplit.Split(text, -1) {
		segment = strings.TrimSpace(segment)
		if len(segment) < minSentenceLength || hasMarkup(segment) || !hasLetter(segment) {
			continue
		}
		return segment + "."
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r == '"':
			return -1
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsSpace(r), unicode.IsPunct(r):
			return r
		default:
			return -1
		}
	}, text)
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
