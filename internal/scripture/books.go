package scripture

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Book holds the canonical name and USFM code of a single book of the Bible.
type Book struct {
	Name    string
	Code    string
	Aliases []string
}

// books lists the Catholic canon in canonical order.
var books = []Book{
	// Old Testament
	{"Genesis", "GEN", []string{"Gen", "Gn"}},
	{"Exodus", "EXO", []string{"Ex", "Exod"}},
	{"Leviticus", "LEV", []string{"Lv", "Lev"}},
	{"Numbers", "NUM", []string{"Nm", "Num"}},
	{"Deuteronomy", "DEU", []string{"Dt", "Deut"}},
	{"Joshua", "JOS", []string{"Jos", "Josh"}},
	{"Judges", "JDG", []string{"Jgs", "Judg"}},
	{"Ruth", "RUT", []string{"Ru"}},
	{"1 Samuel", "1SA", []string{"1 Sm", "1 Sam"}},
	{"2 Samuel", "2SA", []string{"2 Sm", "2 Sam"}},
	{"1 Kings", "1KI", []string{"1 Kgs"}},
	{"2 Kings", "2KI", []string{"2 Kgs"}},
	{"1 Chronicles", "1CH", []string{"1 Chr", "1 Chron"}},
	{"2 Chronicles", "2CH", []string{"2 Chr", "2 Chron"}},
	{"Ezra", "EZR", []string{"Ezr"}},
	{"Nehemiah", "NEH", []string{"Neh"}},
	{"Tobit", "TOB", []string{"Tb", "Tob"}},
	{"Judith", "JDT", []string{"Jdt"}},
	{"Esther", "EST", []string{"Est", "Esth"}},
	{"1 Maccabees", "1MA", []string{"1 Mc", "1 Macc"}},
	{"2 Maccabees", "2MA", []string{"2 Mc", "2 Macc"}},
	{"Job", "JOB", []string{"Jb"}},
	{"Psalms", "PSA", []string{"Ps", "Psalm", "Pss", "Psa"}},
	{"Proverbs", "PRO", []string{"Prv", "Prov"}},
	{"Ecclesiastes", "ECC", []string{"Eccl", "Qoh", "Qoheleth"}},
	{"Song of Songs", "SNG", []string{"Sg", "Song", "Song of Solomon"}},
	{"Wisdom", "WIS", []string{"Wis", "Wisdom of Solomon"}},
	{"Sirach", "SIR", []string{"Sir", "Ecclesiasticus"}},
	{"Isaiah", "ISA", []string{"Is", "Isa"}},
	{"Jeremiah", "JER", []string{"Jer"}},
	{"Lamentations", "LAM", []string{"Lam"}},
	{"Baruch", "BAR", []string{"Bar"}},
	{"Ezekiel", "EZK", []string{"Ez", "Ezek"}},
	{"Daniel", "DAN", []string{"Dn", "Dan"}},
	{"Hosea", "HOS", []string{"Hos"}},
	{"Joel", "JOL", []string{"Jl"}},
	{"Amos", "AMO", []string{"Am"}},
	{"Obadiah", "OBA", []string{"Ob", "Obad"}},
	{"Jonah", "JON", []string{"Jon"}},
	{"Micah", "MIC", []string{"Mi", "Mic"}},
	{"Nahum", "NAM", []string{"Na", "Nah"}},
	{"Habakkuk", "HAB", []string{"Hb", "Hab"}},
	{"Zephaniah", "ZEP", []string{"Zep", "Zeph"}},
	{"Haggai", "HAG", []string{"Hg", "Hag"}},
	{"Zechariah", "ZEC", []string{"Zec", "Zech"}},
	{"Malachi", "MAL", []string{"Mal"}},
	// New Testament
	{"Matthew", "MAT", []string{"Mt", "Matt"}},
	{"Mark", "MRK", []string{"Mk", "Mrk"}},
	{"Luke", "LUK", []string{"Lk", "Luk"}},
	{"John", "JHN", []string{"Jn", "Jhn"}},
	{"Acts", "ACT", []string{"Acts of the Apostles"}},
	{"Romans", "ROM", []string{"Rom"}},
	{"1 Corinthians", "1CO", []string{"1 Cor"}},
	{"2 Corinthians", "2CO", []string{"2 Cor"}},
	{"Galatians", "GAL", []string{"Gal"}},
	{"Ephesians", "EPH", []string{"Eph"}},
	{"Philippians", "PHP", []string{"Phil"}},
	{"Colossians", "COL", []string{"Col"}},
	{"1 Thessalonians", "1TH", []string{"1 Thes", "1 Thess"}},
	{"2 Thessalonians", "2TH", []string{"2 Thes", "2 Thess"}},
	{"1 Timothy", "1TI", []string{"1 Tm", "1 Tim"}},
	{"2 Timothy", "2TI", []string{"2 Tm", "2 Tim"}},
	{"Titus", "TIT", []string{"Ti", "Tit"}},
	{"Philemon", "PHM", []string{"Phlm", "Philem"}},
	{"Hebrews", "HEB", []string{"Heb"}},
	{"James", "JAS", []string{"Jas"}},
	{"1 Peter", "1PE", []string{"1 Pt", "1 Pet"}},
	{"2 Peter", "2PE", []string{"2 Pt", "2 Pet"}},
	{"1 John", "1JN", []string{"1 Jn"}},
	{"2 John", "2JN", []string{"2 Jn"}},
	{"3 John", "3JN", []string{"3 Jn"}},
	{"Jude", "JUD", []string{"Jud"}},
	{"Revelation", "REV", []string{"Rv", "Rev", "Apocalypse"}},
}

var (
	byName = func() map[string]Book {
		m := make(map[string]Book, len(books)*3)
		for _, b := range books {
			m[b.Name] = b
			for _, alias := range b.Aliases {
				m[alias] = b
			}
		}
		return m
	}()
	byCode = func() map[string]Book {
		m := make(map[string]Book, len(books))
		for _, b := range books {
			m[b.Code] = b
		}
		return m
	}()
	titleCaser = cases.Title(language.English)
)

// Books returns the book table in canonical order.
func Books() []Book {
	out := make([]Book, len(books))
	copy(out, books)
	return out
}

// LookupBook resolves a canonical name or alias. Matching is case-sensitive.
func LookupBook(name string) (Book, bool) {
	b, ok := byName[strings.TrimSpace(name)]
	return b, ok
}

// BookCode returns the three-character provider code for a book name or alias.
// Unmapped names fall back to their first three letters, uppercased.
func BookCode(name string) string {
	if b, ok := LookupBook(name); ok {
		return b.Code
	}
	var code []rune
	for _, r := range name {
		if unicode.IsSpace(r) || r == '.' {
			continue
		}
		code = append(code, unicode.ToUpper(r))
		if len(code) == 3 {
			break
		}
	}
	return string(code)
}

// BookName returns the canonical name for a provider code. Unknown codes are
// returned unchanged.
func BookName(code string) string {
	if b, ok := byCode[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return b.Name
	}
	return code
}

// CanonicalBookName maps an alias to its canonical name, passing unknown
// names through trimmed.
func CanonicalBookName(name string) string {
	if b, ok := LookupBook(name); ok {
		return b.Name
	}
	return strings.TrimSpace(name)
}

// lookupBookFold resolves loosely written book names from free text, such as
// "1 thess." or "SONG OF SONGS".
func lookupBookFold(name string) (Book, bool) {
	cleaned := strings.Join(strings.Fields(strings.TrimSuffix(strings.TrimSpace(name), ".")), " ")
	if cleaned == "" {
		return Book{}, false
	}
	if b, ok := byName[cleaned]; ok {
		return b, true
	}
	titled := titleCaser.String(cleaned)
	if b, ok := byName[titled]; ok {
		return b, true
	}
	titled = strings.ReplaceAll(titled, " Of ", " of ")
	titled = strings.ReplaceAll(titled, " The ", " the ")
	b, ok := byName[titled]
	return b, ok
}
