// Package scripture models scripture citations and the passages they resolve to.
//
// A Reference is a comparable value (book, chapter, verse range) whose display
// form ("John 3:16") and provider form ("JHN.3.16") are derived on demand from
// the fixed 73-book table in books.go. ParseDisplayReference and
// ParseAPIReference convert in each direction; FindReferences pulls citations
// out of free text such as feed descriptions and liturgical titles.
package scripture
