package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stopWords = map[string]bool{
	"and": true, "the": true, "for": true, "that": true, "with": true, "unto": true,
	"shall": true, "thee": true, "thou": true, "thy": true, "who": true, "was": true,
	"are": true, "his": true, "her": true, "him": true, "they": true, "them": true,
	"from": true, "not": true, "but": true, "you": true, "your": true, "have": true,
}

// Tokenize lowercases text, strips diacritics and splits on anything that is
// not a letter or digit. Tokens shorter than three runes and stop words are
// dropped.
func Tokenize(text string) []string {
	folded := fold(text)
	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) < 3 || stopWords[f] {
			continue
		}
		out = append(out, f)
	}
	return out
}

func fold(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}
	return strings.ToLower(folded)
}

// termCounts is a bag of words keyed by token.
type termCounts map[string]float64

func countTerms(text string) termCounts {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	counts := make(termCounts, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}
	return counts
}
