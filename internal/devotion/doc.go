// Package devotion is the facade the presentation layers (CLI and HTTP API)
// call into. It ties the liturgical day assembler, the verse fetcher, the
// scripture cache, the artwork generator and the archive together behind four
// operations:
//
//   - GetTodaysLiturgy returns the cached or freshly assembled day.
//   - GetScripture resolves a reference through the cache, then the provider.
//   - GenerateArt renders artwork for a reference or a single verse.
//   - SearchScripture asks the provider and falls back to ranking cached
//     readings locally.
//
// Open wires every collaborator from a config.Config; New accepts them
// directly so tests can substitute fakes.
package devotion
