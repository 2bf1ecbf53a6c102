// Package pdf extracts PDF documents.
//
// pdfcpu parses and validates the file structure and supplies the
// document-info title; ledongthuc/pdf supplies positioned glyphs, from
// which lines and paragraphs are rebuilt by ReconstructPage.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	lpdf "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
	"github.com/custodia-labs/sermonindex/internal/core/ports/driven"
	"github.com/custodia-labs/sermonindex/internal/extractors"
	"github.com/custodia-labs/sermonindex/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

var log = logger.For("pdf")

func init() {
	// Keep pdfcpu from creating a configuration directory in $HOME.
	api.DisableConfigDir()
}

// Extractor handles PDF documents.
type Extractor struct{}

// New creates a new PDF extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".pdf"}
}

// Extract parses the document and rebuilds its text page by page.
func (e *Extractor) Extract(ctx context.Context, path string) (*domain.Extraction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return extractors.Degraded("pdf", path, fmt.Errorf("read file: %w", err))
	}

	title, err := inspect(data)
	if err != nil {
		return extractors.Degraded("pdf", path, err)
	}

	pages, err := pageTexts(ctx, data)
	if err != nil {
		return extractors.Degraded("pdf", path, err)
	}

	return extractors.Build(path, JoinPages(pages), title), nil
}

// inspect parses the file structure with pdfcpu and returns the
// document-info title. Validation problems are logged, not fatal: many
// real-world files bend the PDF format but still render.
func inspect(data []byte) (string, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return "", fmt.Errorf("parse pdf: %w", err)
	}
	if err := api.ValidateContext(pctx); err != nil {
		log.Debug("validation: %v", err)
	}
	return strings.TrimSpace(pctx.Title), nil
}

// pageTexts returns the reconstructed text of each page.
func pageTexts(ctx context.Context, data []byte) (pages []string, err error) {
	// The glyph reader panics on some malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read pages: %v", r)
		}
	}()

	reader, err := lpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	n := reader.NumPage()
	pages = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		glyphs := page.Content().Text
		fragments := make([]Fragment, 0, len(glyphs))
		for _, g := range glyphs {
			fragments = append(fragments, Fragment{
				X:      g.X,
				Y:      g.Y,
				Width:  g.W,
				Height: g.FontSize,
				Text:   g.S,
			})
		}
		pages = append(pages, ReconstructPage(MergeGlyphs(fragments)))
	}
	return pages, nil
}
