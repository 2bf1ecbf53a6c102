// Package extractors turns files on disk into text and metadata.
//
// Each supported format has its own subpackage implementing
// driven.Extractor. The Registry in this package owns dispatch by file
// extension and the size ceiling, which is checked before any extractor
// is invoked.
//
// # Failure Policy
//
// Three error kinds are distinguished:
//
//   - domain.ErrFileTooLarge: raised by the registry before extraction
//   - domain.ErrUnsupportedFormat: raised by the registry for unknown extensions
//   - domain.ErrExtractionFailed: raised by an extractor when its format
//     library fails; a degraded Extraction (empty content, filename stem
//     as title) is returned alongside it
package extractors
