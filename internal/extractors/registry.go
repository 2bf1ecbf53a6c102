package extractors

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
	"github.com/custodia-labs/sermonindex/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// DefaultMaxFileSize is the size ceiling applied when none is configured.
const DefaultMaxFileSize = int64(domain.DefaultMaxFileSizeMB) * 1024 * 1024

// Registry dispatches files to extractors by lowercased extension.
// The supported extension set is exactly the set of registered extensions.
type Registry struct {
	maxSize    int64
	extractors map[string]driven.Extractor
}

// NewRegistry creates a registry with the given size ceiling in bytes.
// A non-positive maxSize uses DefaultMaxFileSize.
func NewRegistry(maxSize int64, extractors ...driven.Extractor) *Registry {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	r := &Registry{
		maxSize:    maxSize,
		extractors: make(map[string]driven.Extractor),
	}
	for _, e := range extractors {
		r.Register(e)
	}
	return r
}

// Register adds an extractor for each of its extensions.
// A later registration for the same extension replaces the earlier one.
func (r *Registry) Register(e driven.Extractor) {
	for _, ext := range e.Extensions() {
		r.extractors[strings.ToLower(ext)] = e
	}
}

// Supports reports whether path has a registered extension.
func (r *Registry) Supports(path string) bool {
	_, ok := r.extractors[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Extensions returns the supported extension set, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.extractors))
	for ext := range r.extractors {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// MaxFileSize returns the size ceiling in bytes.
func (r *Registry) MaxFileSize() int64 {
	return r.maxSize
}

// Extract checks the size ceiling, then runs the extractor for path.
func (r *Registry) Extract(ctx context.Context, path string) (*domain.Extraction, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if info.Size() > r.maxSize {
		return nil, fmt.Errorf("%w: %.1f MB exceeds the %d MB limit",
			domain.ErrFileTooLarge, float64(info.Size())/(1024*1024), r.maxSize/(1024*1024))
	}

	ext := strings.ToLower(filepath.Ext(path))
	e, ok := r.extractors[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, ext)
	}
	return e.Extract(ctx, path)
}
