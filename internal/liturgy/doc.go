// Package liturgy classifies and assembles the liturgical day.
//
// Classification is keyword and table driven: ClassifySeason uses a fixed
// month/day calendar, ClassifyColor and ClassifyRank scan the celebration
// title. Rank precedence (Solemnity > Feast > Memorial > OptionalMemorial >
// Ferial) is shared with the saints directory.
//
// Assembler owns the current-day cell. Refreshes are serialized and the
// whole Snapshot is swapped atomically; a failed refresh keeps the previous
// day visible.
package liturgy
