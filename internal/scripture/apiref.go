package scripture

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// apiRefGrammar is the participle grammar for provider references.
// Examples: "JHN.3.16", "1TH.4.9-11", "PSA.23.1"
type apiRefGrammar struct {
	BookPrefix string `parser:"@Int?"`
	BookCode   string `parser:"@Ident"`
	Chapter    int    `parser:"'.' @Int"`
	Verse      int    `parser:"'.' @Int"`
	RangeEnd   *int   `parser:"( '-' @Int )?"`
}

var apiRefLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `\p{L}+`},
	{Name: "Punct", Pattern: `[.\-]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var apiRefParser = participle.MustBuild[apiRefGrammar](
	participle.Lexer(apiRefLexer),
	participle.Elide("Whitespace"),
)

// ParseAPIReference parses "BBB.C.V" (optionally "BBB.C.V-V2") and returns the
// canonical book name, chapter, and start verse. Unknown codes are returned
// unchanged as the book name.
func ParseAPIReference(code string) (string, int, int, error) {
	ref, err := ParseAPIRange(code)
	if err != nil {
		return "", 0, 0, err
	}
	return ref.Book, ref.Chapter, ref.StartVerse, nil
}

// ParseAPIRange parses a provider reference including any verse range.
func ParseAPIRange(code string) (Reference, error) {
	trimmed := strings.TrimSpace(code)
	if strings.Count(trimmed, ".") < 2 {
		return Reference{}, invalid("provider reference needs book, chapter and verse: "+trimmed, nil)
	}
	parsed, err := apiRefParser.ParseString("", trimmed)
	if err != nil {
		return Reference{}, invalid("parse provider reference "+trimmed, err)
	}
	end := 0
	if parsed.RangeEnd != nil {
		end = *parsed.RangeEnd
	}
	return NewReference(BookName(parsed.BookPrefix+parsed.BookCode), parsed.Chapter, parsed.Verse, end)
}
