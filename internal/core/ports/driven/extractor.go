package driven

import (
	"context"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
)

// Extractor turns one file format into text and metadata.
//
// On a format-library failure an extractor returns a degraded result
// (empty content, filename stem as title) together with an error wrapping
// domain.ErrExtractionFailed.
type Extractor interface {
	// Extensions returns the lowercased file extensions handled, e.g. ".pdf".
	Extensions() []string

	// Extract reads the file at path.
	Extract(ctx context.Context, path string) (*domain.Extraction, error)
}

// ExtractorRegistry dispatches files to extractors by extension.
type ExtractorRegistry interface {
	// Extract checks the size ceiling, then dispatches by extension.
	// Returns domain.ErrFileTooLarge before any extractor runs, and
	// domain.ErrUnsupportedFormat for an unknown extension.
	Extract(ctx context.Context, path string) (*domain.Extraction, error)

	// Supports reports whether a path has a registered extension.
	Supports(path string) bool

	// Extensions returns the supported extension set, sorted.
	Extensions() []string
}
