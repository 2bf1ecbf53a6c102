package domain

import (
	"strings"
	"time"
)

// Document represents one indexed file.
// Path is the natural key: re-indexing a path updates the existing row.
type Document struct {
	// ID is assigned by the store on first insert and never reused.
	ID int64

	// Path is the absolute filesystem path.
	Path string

	// Title is never empty; it falls back to the filename stem.
	Title string

	// Content is the full extracted plain text. It may be empty.
	Content string

	// Date is an ISO-8601 YYYY-MM-DD string, or empty when unknown.
	Date string

	// Reference is the structured reference (a scripture citation), or empty.
	Reference string

	// WordCount is the number of whitespace-separated tokens in Content.
	WordCount int

	// Hash is the hex MD5 of the raw file bytes at last successful index.
	Hash string

	// IndexedAt is when the document was first indexed.
	IndexedAt time.Time

	// UpdatedAt is when the document was last written.
	UpdatedAt time.Time
}

// CountWords counts whitespace-separated tokens.
func CountWords(content string) int {
	return len(strings.Fields(content))
}

// DocumentPatch is a partial update to a Document.
// Only non-nil fields are written; the set of fields is the update allow-list.
type DocumentPatch struct {
	Path      *string
	Title     *string
	Content   *string
	Date      *string
	Reference *string
	WordCount *int
	Hash      *string
}

// IsEmpty returns true if the patch changes nothing.
func (p DocumentPatch) IsEmpty() bool {
	return p.Path == nil && p.Title == nil && p.Content == nil && p.Date == nil &&
		p.Reference == nil && p.WordCount == nil && p.Hash == nil
}

// Apply writes the patch fields onto doc.
func (p DocumentPatch) Apply(doc *Document) {
	if p.Path != nil {
		doc.Path = *p.Path
	}
	if p.Title != nil {
		doc.Title = *p.Title
	}
	if p.Content != nil {
		doc.Content = *p.Content
	}
	if p.Date != nil {
		doc.Date = *p.Date
	}
	if p.Reference != nil {
		doc.Reference = *p.Reference
	}
	if p.WordCount != nil {
		doc.WordCount = *p.WordCount
	}
	if p.Hash != nil {
		doc.Hash = *p.Hash
	}
}

// Extraction is the output of an extractor, before the document is stored.
// Title, Date and Reference are optional.
type Extraction struct {
	Content   string
	Title     string
	Date      string
	Reference string
}

// Metadata holds the fields recovered heuristically from extracted text.
type Metadata struct {
	Title     string
	Date      string
	Reference string
}

// CorpusStats aggregates the whole corpus.
type CorpusStats struct {
	// Documents is the number of indexed documents.
	Documents int

	// Words is the sum of all word counts.
	Words int

	// EarliestDate and LatestDate are empty when no document has a date.
	EarliestDate string
	LatestDate   string
}

// EmbeddingStats reports embedding coverage.
type EmbeddingStats struct {
	// Total is the number of documents.
	Total int

	// Indexed is the number of documents with an embedding.
	Indexed int
}

// Missing returns the number of documents without an embedding.
func (s EmbeddingStats) Missing() int {
	return s.Total - s.Indexed
}
