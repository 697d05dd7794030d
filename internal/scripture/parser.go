package scripture

import (
	"regexp"
	"strconv"
	"strings"
)

// citationPattern finds "Book C:V[-V2]" and "Book C" candidates in free text.
// Book candidates may carry a numeric prefix ("1 Cor") and a short "of"
// phrase ("Song of Songs"). Candidates that do not resolve to a known book
// are skipped.
var citationPattern = regexp.MustCompile(
	`(?:^|[^A-Za-z0-9])((?:[1-4]\s*)?[A-Za-z][A-Za-z]*\.?(?:\s+of\s+(?:the\s+)?[A-Za-z]+)?)\s*(\d{1,3})(?:\s*[:,]\s*(\d{1,3})[a-z]*(?:\s*[-\x{2013}\x{2014}]\s*(\d{1,3})[a-z]*)?)?`,
)

// FindReferences extracts every recognizable citation from free text such as
// "Mt 5:1-12a; Lk 6:20" or "Responsorial Psalm Psalm 23". Sub-verse letters
// are dropped. Chapter-only citations are accepted for the Psalms only.
// Duplicates are removed, first occurrence wins.
func FindReferences(text string) []Reference {
	var refs []Reference
	seen := make(map[Reference]struct{})
	for _, match := range citationPattern.FindAllStringSubmatch(text, -1) {
		book, ok := lookupBookFold(match[1])
		if !ok {
			continue
		}
		chapter, err := strconv.Atoi(match[2])
		if err != nil {
			continue
		}
		start := 1
		if match[3] != "" {
			if start, err = strconv.Atoi(match[3]); err != nil {
				continue
			}
		} else if book.Code != "PSA" {
			continue
		}
		end := 0
		if match[4] != "" {
			if end, err = strconv.Atoi(match[4]); err != nil {
				continue
			}
		}
		ref, err := NewReference(book.Name, chapter, start, end)
		if err != nil {
			continue
		}
		if _, dup := seen[ref]; dup {
			continue
		}
		seen[ref] = struct{}{}
		refs = append(refs, ref)
	}
	return refs
}

// FirstReference returns the first citation found in text.
func FirstReference(text string) (Reference, bool) {
	refs := FindReferences(text)
	if len(refs) == 0 {
		return Reference{}, false
	}
	return refs[0], true
}

// ParseLooseReference accepts either provider notation ("JHN.3.16") or a
// display citation in any letter case ("john 3:16").
func ParseLooseReference(text string) (Reference, error) {
	trimmed := strings.TrimSpace(text)
	if strings.Count(trimmed, ".") >= 2 && !strings.ContainsAny(trimmed, " :") {
		return ParseAPIRange(trimmed)
	}
	if ref, err := ParseDisplayReference(trimmed); err == nil {
		if _, known := LookupBook(ref.Book); known {
			return ref, nil
		}
	}
	if ref, ok := FirstReference(trimmed); ok {
		return ref, nil
	}
	return ParseDisplayReference(trimmed)
}
