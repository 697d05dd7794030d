// Package extract turns the HTML-bearing description of a liturgical feed item
// into per-reading text blocks.
//
// Each reading kind has an ordered list of named Policies; the first policy
// whose pattern matches supplies the fragment, which is then cleaned of markup
// and leaked label words. Extraction never fails. Missing readings are nil,
// except the Gospel, which falls back through progressively coarser sources
// down to a fixed placeholder so callers can always render it.
package extract
