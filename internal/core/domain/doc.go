// Package domain defines the core entities for k3ss-search.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - StorageLocation: A searchable root found on the host
//   - SearchRequest: Paths, terms and mode flags for one search
//   - FileMatch: A file that matched at least one term
//   - SearchStats: Counters derived from a completed scan
//   - FormattedDocument: Search hits rendered for an LLM prompt
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
