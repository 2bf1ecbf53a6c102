package extractors

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
	"github.com/custodia-labs/sermonindex/internal/logger"
	"github.com/custodia-labs/sermonindex/internal/metadata"
)

var (
	log        = logger.For("extractor")
	blankLines = regexp.MustCompile(`\n{3,}`)
)

// Stem returns the file name without directory and extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// CleanText normalises line endings, collapses runs of blank lines to one
// and trims the result.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// Build parses metadata from content and assembles the extraction.
// The title comes from the content first, then from formatTitle (document
// properties), then from the filename stem.
func Build(path, content, formatTitle string) *domain.Extraction {
	content = CleanText(content)
	md := metadata.Parse(content)

	title := md.Title
	if title == "" {
		title = strings.TrimSpace(formatTitle)
	}
	if title == "" {
		title = Stem(path)
	}

	return &domain.Extraction{
		Content:   content,
		Title:     title,
		Date:      md.Date,
		Reference: md.Reference,
	}
}

// Degraded logs a format-library failure and returns the best-effort
// extraction with an error wrapping domain.ErrExtractionFailed.
func Degraded(format, path string, cause error) (*domain.Extraction, error) {
	log.Warn("%s extraction failed for %s: %v", format, path, cause)
	return &domain.Extraction{Title: Stem(path)},
		fmt.Errorf("%w: %s: %v", domain.ErrExtractionFailed, format, cause)
}
