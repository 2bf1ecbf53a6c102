package driving

import (
	"context"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
)

// SearchService answers queries against the corpus.
// Queries are trimmed and capped; limits are clamped to 1..100.
type SearchService interface {
	// FullText ranks documents by keyword relevance. Default limit 20.
	FullText(ctx context.Context, query string, limit int) ([]domain.TextHit, error)

	// Semantic ranks documents by embedding similarity. Default limit 10.
	// Returns domain.ErrEmbeddingUnavailable without an embedding service.
	Semantic(ctx context.Context, query string, limit int) ([]domain.VectorHit, error)

	// Hybrid fuses full-text and semantic results. Default limit 10.
	// Without an embedding service every hit is an exact match.
	Hybrid(ctx context.Context, query string, limit int) ([]domain.HybridHit, error)

	// ByReference matches the structured reference field.
	ByReference(ctx context.Context, ref string) ([]domain.Document, error)
}

// DocumentService manages indexed documents.
type DocumentService interface {
	// Get retrieves a document by ID.
	Get(ctx context.Context, id int64) (*domain.Document, error)

	// List returns every document, newest first.
	List(ctx context.Context) ([]domain.Document, error)

	// Recent returns the most recently indexed documents.
	Recent(ctx context.Context, limit int) ([]domain.Document, error)

	// Delete removes a document and its embedding from the index.
	// The file on disk is not touched.
	Delete(ctx context.Context, id int64) error

	// Stats aggregates the corpus.
	Stats(ctx context.Context) (*domain.CorpusStats, error)
}

// EmbeddingIndexer fills in missing embeddings.
type EmbeddingIndexer interface {
	// IndexMissing embeds every document that has no embedding.
	IndexMissing(ctx context.Context) (*domain.EmbeddingRunResult, error)

	// Stats reports embedding coverage.
	Stats(ctx context.Context) (*domain.EmbeddingStats, error)
}
