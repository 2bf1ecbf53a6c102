// Package domain defines the core entities of the sermon index.
//
// This package is the innermost layer of the hexagonal architecture.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: one indexed file with its extracted text and metadata
//   - Extraction: the output of an extractor before it is stored
//   - IndexingResult / IndexingProgress: batch indexing reporting
//   - TextHit, VectorHit, HybridHit: search results
//   - FileEvent: a debounced filesystem change
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
