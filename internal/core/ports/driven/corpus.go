package driven

import (
	"context"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
)

// CorpusStore persists documents together with their full-text mirror and
// their embeddings. Every document mutation updates the full-text mirror
// in the same transaction.
type CorpusStore interface {
	// InsertDocument stores a new document and returns its assigned ID.
	// A duplicate path is an error and leaves the store unchanged.
	InsertDocument(ctx context.Context, doc *domain.Document) (int64, error)

	// UpdateDocument writes the non-nil fields of patch.
	// When the content changes, the stale embedding is removed.
	// Returns domain.ErrNotFound if the document does not exist.
	UpdateDocument(ctx context.Context, id int64, patch domain.DocumentPatch) error

	// DeleteDocument removes a document and its embedding.
	// Returns domain.ErrNotFound if the document does not exist.
	DeleteDocument(ctx context.Context, id int64) error

	// GetDocument retrieves a document by ID.
	// Returns domain.ErrNotFound if the document does not exist.
	GetDocument(ctx context.Context, id int64) (*domain.Document, error)

	// FindByPath retrieves a document by its absolute path.
	// Returns domain.ErrNotFound if no document has that path.
	FindByPath(ctx context.Context, path string) (*domain.Document, error)

	// ListDocuments returns every document, newest date first, undated last,
	// then by title.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// ListUnderFolder returns documents whose path is folder or lies beneath it.
	ListUnderFolder(ctx context.Context, folder string) ([]domain.Document, error)

	// RecentDocuments returns the most recently written documents.
	RecentDocuments(ctx context.Context, limit int) ([]domain.Document, error)

	// CountDocuments returns the number of documents.
	CountDocuments(ctx context.Context) (int, error)

	// Stats aggregates word counts and the date range of the corpus.
	Stats(ctx context.Context) (*domain.CorpusStats, error)

	// FullTextSearch ranks documents against a free-text query.
	// A query with no searchable terms returns an empty result.
	FullTextSearch(ctx context.Context, query string, limit int) ([]domain.TextHit, error)

	// SearchByReference substring-matches the structured reference field,
	// newest date first.
	SearchByReference(ctx context.Context, ref string) ([]domain.Document, error)

	// VectorSearch returns the nearest documents by cosine distance.
	VectorSearch(ctx context.Context, query []float32, limit int) ([]domain.VectorHit, error)

	// UpsertEmbedding stores or replaces the embedding of a document.
	UpsertEmbedding(ctx context.Context, id int64, vector []float32) error

	// DeleteEmbedding removes the embedding of a document, if any.
	DeleteEmbedding(ctx context.Context, id int64) error

	// HasEmbedding reports whether a document has an embedding.
	HasEmbedding(ctx context.Context, id int64) (bool, error)

	// DocumentsWithoutEmbedding returns documents with no embedding.
	DocumentsWithoutEmbedding(ctx context.Context) ([]domain.Document, error)

	// EmbeddingStats reports embedding coverage.
	EmbeddingStats(ctx context.Context) (*domain.EmbeddingStats, error)
}

// SettingsStore persists runtime key/value settings.
type SettingsStore interface {
	// GetSetting returns a setting value.
	// Returns domain.ErrNotFound if the key is not set.
	GetSetting(ctx context.Context, key string) (string, error)

	// SetSetting stores a setting value, replacing any previous one.
	SetSetting(ctx context.Context, key, value string) error

	// DeleteSetting removes a setting. Deleting a missing key is not an error.
	DeleteSetting(ctx context.Context, key string) error

	// AllSettings returns every stored setting.
	AllSettings(ctx context.Context) (map[string]string, error)
}
