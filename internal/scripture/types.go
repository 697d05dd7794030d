package scripture

import "strings"

// Verse is a single verse of HTML-free scripture text.
type Verse struct {
	Text        string `json:"text"`
	Reference   string `json:"reference"`
	BookName    string `json:"book_name"`
	Chapter     int    `json:"chapter"`
	VerseNumber int    `json:"verse_number"`
}

// Reading is an ordered run of verses sharing a title. A single verse may hold
// a pre-combined block, as produced by feed extraction.
type Reading struct {
	Title             string     `json:"title"`
	Subtitle          string     `json:"subtitle,omitempty"`
	Theme             string     `json:"theme,omitempty"`
	LiturgicalContext string     `json:"liturgical_context,omitempty"`
	Verses            []Verse    `json:"verses"`
	Reference         *Reference `json:"reference,omitempty"`
}

// Text joins the verse texts with single spaces.
func (r Reading) Text() string {
	parts := make([]string, 0, len(r.Verses))
	for _, v := range r.Verses {
		if t := strings.TrimSpace(v.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// IsEmpty reports whether the reading carries no text.
func (r Reading) IsEmpty() bool {
	return r.Text() == ""
}

// NewBlockReading wraps a pre-combined text block as a one-verse reading.
func NewBlockReading(title, text string, ref *Reference) Reading {
	verse := Verse{Text: text}
	if ref != nil {
		verse.Reference = ref.DisplayText()
		verse.BookName = ref.Book
		verse.Chapter = ref.Chapter
		verse.VerseNumber = ref.StartVerse
	}
	return Reading{Title: title, Verses: []Verse{verse}, Reference: ref}
}

// NewPassageReading builds a reading from fetched verses.
func NewPassageReading(ref Reference, verses []Verse) Reading {
	r := ref
	return Reading{Title: ref.DisplayText(), Verses: verses, Reference: &r}
}

// MassReadings holds the readings of one Mass. Gospel is always populated;
// the other readings are nil when the source did not carry them.
type MassReadings struct {
	FirstReading  *Reading `json:"first_reading,omitempty"`
	Psalm         *Reading `json:"psalm,omitempty"`
	SecondReading *Reading `json:"second_reading,omitempty"`
	Alleluia      *Reading `json:"alleluia,omitempty"`
	Gospel        Reading  `json:"gospel"`
	// Degraded is set when any reading fell back to lower-fidelity text.
	Degraded bool `json:"degraded,omitempty"`
}

// All returns the present readings in liturgical order.
func (m MassReadings) All() []Reading {
	out := make([]Reading, 0, 5)
	for _, r := range []*Reading{m.FirstReading, m.Psalm, m.SecondReading, m.Alleluia} {
		if r != nil {
			out = append(out, *r)
		}
	}
	return append(out, m.Gospel)
}
