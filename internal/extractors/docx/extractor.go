// Package docx extracts Word (.docx) documents.
//
// The document body is rendered as light Markdown: heading paragraphs are
// prefixed with '#' by level and fully bold paragraphs are wrapped in '**',
// so the metadata parser sees the same structure an author sees.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
	"github.com/custodia-labs/sermonindex/internal/core/ports/driven"
	"github.com/custodia-labs/sermonindex/internal/extractors"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

var errNoBody = errors.New("word/document.xml not found")

// Extractor handles DOCX documents.
type Extractor struct{}

// New creates a new DOCX extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".docx"}
}

// Extract reads the document body and core properties.
func (e *Extractor) Extract(_ context.Context, path string) (*domain.Extraction, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return extractors.Degraded("docx", path, fmt.Errorf("open archive: %w", err))
	}
	defer reader.Close()

	body, err := readEntry(&reader.Reader, "word/document.xml")
	if err != nil {
		return extractors.Degraded("docx", path, err)
	}
	content, err := parseDocumentXML(body)
	if err != nil {
		return extractors.Degraded("docx", path, err)
	}

	return extractors.Build(path, content, coreTitle(&reader.Reader)), nil
}

// readEntry returns the bytes of a named archive entry.
func readEntry(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return data, nil
	}
	if name == "word/document.xml" {
		return nil, errNoBody
	}
	return nil, fmt.Errorf("%s not found", name)
}

// wordNamespaces are the transitional and strict WordprocessingML namespaces.
var wordNamespaces = map[string]bool{
	"http://schemas.openxmlformats.org/wordprocessingml/2006/main": true,
	"http://purl.oclc.org/ooxml/wordprocessingml/main":             true,
}

// paragraph accumulates one w:p while the body is walked.
type paragraph struct {
	style   string
	text    strings.Builder
	allBold bool
}

// parseDocumentXML walks the body tokens in document order. Paragraphs are
// picked up at any depth, so text inside tables, hyperlinks, content
// controls and tracked insertions is kept. Paragraphs are rendered one blank
// line apart.
func parseDocumentXML(content []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(content))

	var (
		paragraphs []string
		open       []*paragraph
		inRun      bool
		inRunProps bool
		inText     bool
		runBold    bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}

		var current *paragraph
		if len(open) > 0 {
			current = open[len(open)-1]
		}

		switch t := tok.(type) {
		case xml.StartElement:
			// Alternate renderings and former properties repeat what the
			// primary content already says.
			if t.Name.Local == "Fallback" || t.Name.Local == "pPrChange" || t.Name.Local == "rPrChange" {
				if err := dec.Skip(); err != nil {
					return "", fmt.Errorf("parse document.xml: %w", err)
				}
				continue
			}
			if !wordNamespaces[t.Name.Space] {
				continue
			}
			switch t.Name.Local {
			case "p":
				open = append(open, &paragraph{allBold: true})
			case "pStyle":
				if current != nil {
					current.style = attr(t, "val")
				}
			case "r":
				inRun, runBold = true, false
			case "rPr":
				inRunProps = inRun
			case "b":
				if inRunProps {
					runBold = toggleOn(t)
				}
			case "t":
				inText = inRun
			case "tab":
				if inRun && current != nil {
					current.text.WriteString("\t")
				}
			case "br", "cr":
				if inRun && current != nil {
					current.text.WriteString("\n")
				}
			case "noBreakHyphen":
				if inRun && current != nil {
					current.text.WriteString("-")
				}
			}
		case xml.EndElement:
			if !wordNamespaces[t.Name.Space] {
				continue
			}
			switch t.Name.Local {
			case "p":
				if current == nil {
					continue
				}
				open = open[:len(open)-1]
				if text := current.render(); text != "" {
					paragraphs = append(paragraphs, text)
				}
			case "r":
				inRun, inRunProps, inText = false, false, false
			case "rPr":
				inRunProps = false
			case "t":
				inText = false
			}
		case xml.CharData:
			if !inText || current == nil {
				continue
			}
			current.text.Write(t)
			if !runBold && strings.TrimSpace(string(t)) != "" {
				current.allBold = false
			}
		}
	}
	return strings.Join(paragraphs, "\n\n"), nil
}

// render returns the paragraph as light Markdown, or "" when it is empty.
func (p *paragraph) render() string {
	text := strings.TrimSpace(p.text.String())
	if text == "" {
		return ""
	}
	if level := headingLevel(p.style); level > 0 {
		return strings.Repeat("#", level) + " " + text
	}
	if p.allBold && !strings.Contains(text, "\n") {
		return "**" + text + "**"
	}
	return text
}

// toggleOn reports whether an on/off property is set; an absent val means on.
func toggleOn(el xml.StartElement) bool {
	switch strings.ToLower(attr(el, "val")) {
	case "0", "false", "off":
		return false
	default:
		return true
	}
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// headingLevel maps built-in heading styles (English and French style
// ids) to a Markdown heading level, or 0 for body text.
func headingLevel(styleID string) int {
	style := strings.ToLower(strings.ReplaceAll(styleID, " ", ""))
	switch style {
	case "title", "titre":
		return 1
	}
	for _, prefix := range []string{"heading", "titre"} {
		if rest, ok := strings.CutPrefix(style, prefix); ok && len(rest) == 1 && rest[0] >= '1' && rest[0] <= '6' {
			return int(rest[0] - '0')
		}
	}
	return 0
}

// coreXML represents the structure of docProps/core.xml.
type coreXML struct {
	Title string `xml:"title"`
}

// coreTitle returns the title from docProps/core.xml, if any.
func coreTitle(reader *zip.Reader) string {
	data, err := readEntry(reader, "docProps/core.xml")
	if err != nil {
		return ""
	}
	var core coreXML
	if err := xml.Unmarshal(data, &core); err != nil {
		return ""
	}
	return strings.TrimSpace(core.Title)
}
