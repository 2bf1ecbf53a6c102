// Package text extracts plain text and Markdown files.
package text

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
	"github.com/custodia-labs/sermonindex/internal/core/ports/driven"
	"github.com/custodia-labs/sermonindex/internal/extractors"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Extractor handles .txt and .md files. Markdown is kept as-is so that
// headings and bold lines remain visible to the metadata parser.
type Extractor struct{}

// New creates a new text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".txt", ".md"}
}

// Extract reads the file and parses its metadata.
func (e *Extractor) Extract(_ context.Context, path string) (*domain.Extraction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return extractors.Degraded("text", path, fmt.Errorf("read file: %w", err))
	}
	return extractors.Build(path, decode(data), ""), nil
}

// decode returns data as UTF-8. Files that are not valid UTF-8 are assumed
// to be Windows-1252, the usual encoding of older French documents.
func decode(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return string(bytes.ToValidUTF8(data, []byte("�")))
	}
	return string(decoded)
}
