package scripture

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"lectio/internal/services"
)

// Reference identifies a scripture passage. EndVerse is zero for a single
// verse. The zero-width range EndVerse == StartVerse is always stored as a
// single verse so equal passages compare equal with ==.
type Reference struct {
	Book       string `json:"book"`
	Chapter    int    `json:"chapter"`
	StartVerse int    `json:"start_verse"`
	EndVerse   int    `json:"end_verse,omitempty"`
}

// NewReference builds a validated Reference. book is canonicalized through the
// alias table; unknown names are kept as given.
func NewReference(book string, chapter, start, end int) (Reference, error) {
	book = CanonicalBookName(book)
	if book == "" {
		return Reference{}, invalid("book name is empty", nil)
	}
	if chapter <= 0 {
		return Reference{}, invalid(fmt.Sprintf("chapter must be positive, got %d", chapter), nil)
	}
	if start <= 0 {
		return Reference{}, invalid(fmt.Sprintf("verse must be positive, got %d", start), nil)
	}
	if end == start {
		end = 0
	}
	if end != 0 && end < start {
		return Reference{}, invalid(fmt.Sprintf("range end %d precedes start %d", end, start), nil)
	}
	return Reference{Book: book, Chapter: chapter, StartVerse: start, EndVerse: end}, nil
}

// IsRange reports whether the reference spans more than one verse.
func (r Reference) IsRange() bool {
	return r.EndVerse > r.StartVerse
}

// LastVerse returns the final verse number covered by the reference.
func (r Reference) LastVerse() int {
	if r.IsRange() {
		return r.EndVerse
	}
	return r.StartVerse
}

// IsZero reports whether r is the zero Reference.
func (r Reference) IsZero() bool {
	return r == Reference{}
}

// DisplayText renders "Book C:V" or "Book C:V-V2".
func (r Reference) DisplayText() string {
	if r.IsRange() {
		return fmt.Sprintf("%s %d:%d-%d", r.Book, r.Chapter, r.StartVerse, r.EndVerse)
	}
	return fmt.Sprintf("%s %d:%d", r.Book, r.Chapter, r.StartVerse)
}

// APIFormat renders "BBB.C.V" or "BBB.C.V-V2".
func (r Reference) APIFormat() string {
	return ToAPIFormat(r)
}

// BookCode returns the provider code for the reference's book.
func (r Reference) BookCode() string {
	return BookCode(r.Book)
}

func (r Reference) String() string {
	return r.DisplayText()
}

// ToAPIFormat converts a reference to the dotted provider notation.
func ToAPIFormat(ref Reference) string {
	code := BookCode(ref.Book)
	if ref.IsRange() {
		return fmt.Sprintf("%s.%d.%d-%d", code, ref.Chapter, ref.StartVerse, ref.EndVerse)
	}
	return fmt.Sprintf("%s.%d.%d", code, ref.Chapter, ref.StartVerse)
}

// displayPattern matches "Book C", "Book C:V", "Book C,V" and "Book C:V-V2".
// Sub-verse letters ("12a") and en-dash ranges are tolerated.
var displayPattern = regexp.MustCompile(`^\s*(.+?)\.?\s+(\d+)(?:\s*[:,]\s*(\d+)[a-z]*(?:\s*[-\x{2013}\x{2014}]\s*(\d+)[a-z]*)?)?\s*$`)

// ParseDisplayReference parses a human-readable citation. Book names are
// matched case-sensitively against the name table and pass through unchanged
// when unknown. A missing verse defaults to 1.
func ParseDisplayReference(text string) (Reference, error) {
	match := displayPattern.FindStringSubmatch(text)
	if match == nil {
		return Reference{}, invalid(fmt.Sprintf("unrecognized reference %q", strings.TrimSpace(text)), nil)
	}
	chapter, err := strconv.Atoi(match[2])
	if err != nil {
		return Reference{}, invalid("parse chapter", err)
	}
	start := 1
	if match[3] != "" {
		if start, err = strconv.Atoi(match[3]); err != nil {
			return Reference{}, invalid("parse verse", err)
		}
	}
	end := 0
	if match[4] != "" {
		if end, err = strconv.Atoi(match[4]); err != nil {
			return Reference{}, invalid("parse range end", err)
		}
	}
	return NewReference(match[1], chapter, start, end)
}

func invalid(message string, err error) error {
	return services.Wrap(services.ErrInvalidReference, "scripture", "parse", message, err)
}
