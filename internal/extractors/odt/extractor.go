// Package odt extracts OpenDocument text (.odt) files.
package odt

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
	"github.com/custodia-labs/sermonindex/internal/core/ports/driven"
	"github.com/custodia-labs/sermonindex/internal/extractors"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

const textNS = "urn:oasis:names:tc:opendocument:xmlns:text:1.0"

// Extractor handles ODT documents.
type Extractor struct{}

// New creates a new ODT extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".odt"}
}

// Extract reads content.xml and the meta.xml title.
func (e *Extractor) Extract(_ context.Context, path string) (*domain.Extraction, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return extractors.Degraded("odt", path, fmt.Errorf("open archive: %w", err))
	}
	defer reader.Close()

	data, err := readEntry(&reader.Reader, "content.xml")
	if err != nil {
		return extractors.Degraded("odt", path, err)
	}
	content, err := parseContentXML(data)
	if err != nil {
		return extractors.Degraded("odt", path, err)
	}

	return extractors.Build(path, content, metaTitle(&reader.Reader)), nil
}

func readEntry(reader *zip.Reader, name string) ([]byte, error) {
	f, err := reader.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

// parseContentXML walks the document tokens. Paragraphs and headings end
// with a newline; level-1 headings are prefixed with "# ". Spacing
// elements are expanded.
func parseContentXML(data []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var b strings.Builder
	inBody := false
	depth := 0 // open paragraphs and headings
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse content.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "body" {
				inBody = true
			}
			if !inBody || t.Name.Space != textNS {
				continue
			}
			switch t.Name.Local {
			case "h":
				depth++
				b.WriteString("\n")
				if attr(t, "outline-level") == "1" {
					b.WriteString("# ")
				}
			case "p":
				depth++
				b.WriteString("\n")
			case "s":
				n, err := strconv.Atoi(attr(t, "c"))
				if err != nil || n < 1 {
					n = 1
				}
				b.WriteString(strings.Repeat(" ", n))
			case "tab":
				b.WriteString("\t")
			case "line-break":
				b.WriteString("\n")
			}
		case xml.EndElement:
			if t.Name.Space == textNS && (t.Name.Local == "p" || t.Name.Local == "h") {
				depth--
				b.WriteString("\n")
			}
		case xml.CharData:
			if depth > 0 {
				b.Write(t)
			}
		}
	}
	return b.String(), nil
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// metaXML represents the title in meta.xml.
type metaXML struct {
	Meta struct {
		Title string `xml:"title"`
	} `xml:"meta"`
}

// metaTitle returns the dc:title from meta.xml, if any.
func metaTitle(reader *zip.Reader) string {
	data, err := readEntry(reader, "meta.xml")
	if err != nil {
		return ""
	}
	var meta metaXML
	if err := xml.Unmarshal(data, &meta); err != nil {
		return ""
	}
	return strings.TrimSpace(meta.Meta.Title)
}
