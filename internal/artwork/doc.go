// Package artwork builds image prompts for scripture passages and caches the
// resulting JPEGs.
//
// Keys are blake3 digests of the passage identity and style tag, so two
// requests for the same passage, context and season share one entry and a
// stale in-flight generation can only ever write under its own key.
package artwork
