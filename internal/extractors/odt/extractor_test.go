package odt

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
)

func writeODT(t *testing.T, name string, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for entry, content := range entries {
		w, err := zw.Create(entry)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return path
}

func content(body string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<office:document-content xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0" xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0">
  <office:automatic-styles><style>ignored</style></office:automatic-styles>
  <office:body>
    <office:text>` + body + `</office:text>
  </office:body>
</office:document-content>`
}

func TestExtractor_Extensions(t *testing.T) {
	assert.Equal(t, []string{".odt"}, New().Extensions())
}

func TestExtract_ParagraphsAndHeading(t *testing.T) {
	path := writeODT(t, "bapteme.odt", map[string]string{
		"content.xml": content(`
      <text:h text:outline-level="1">Le baptême</text:h>
      <text:p>Date : 3 mai 2015</text:p>
      <text:p>Lecture :<text:s/>Actes 2:38</text:p>
      <text:p>Repentez-vous<text:tab/>et<text:line-break/>soyez baptisés &amp; sauvés</text:p>`),
	})

	got, err := New().Extract(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "# Le baptême\n\nDate : 3 mai 2015\n\nLecture : Actes 2:38\n\nRepentez-vous\tet\nsoyez baptisés & sauvés", got.Content)
	assert.Equal(t, "Le baptême", got.Title)
	assert.Equal(t, "2015-05-03", got.Date)
	assert.Equal(t, "Actes 2:38", got.Reference)
}

func TestExtract_RepeatedSpaces(t *testing.T) {
	path := writeODT(t, "espaces.odt", map[string]string{
		"content.xml": content(`<text:p>a<text:s text:c="3"/>b</text:p>`),
	})

	got, err := New().Extract(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "a   b", got.Content)
}

func TestExtract_MetaTitle(t *testing.T) {
	path := writeODT(t, "meta.odt", map[string]string{
		"content.xml": content(``),
		"meta.xml": `<office:document-meta xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0" xmlns:dc="http://purl.org/dc/elements/1.1/">` +
			`<office:meta><dc:title>Pentecôte</dc:title></office:meta></office:document-meta>`,
	})

	got, err := New().Extract(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "Pentecôte", got.Title)
	assert.Empty(t, got.Content)
}

func TestExtract_BrokenXMLDegrades(t *testing.T) {
	path := writeODT(t, "casse.odt", map[string]string{
		"content.xml": `<office:document-content><text:p>unterminated`,
	})

	got, err := New().Extract(context.Background(), path)

	assert.True(t, errors.Is(err, domain.ErrExtractionFailed))
	require.NotNil(t, got)
	assert.Equal(t, "casse", got.Title)
}

func TestExtract_NotAnArchiveDegrades(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faux.odt")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0600))

	_, err := New().Extract(context.Background(), path)

	assert.True(t, errors.Is(err, domain.ErrExtractionFailed))
}
