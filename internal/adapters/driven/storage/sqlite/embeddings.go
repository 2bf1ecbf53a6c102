package sqlite

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
)

// UpsertEmbedding stores or replaces the embedding of a document.
func (s *corpusStore) UpsertEmbedding(ctx context.Context, id int64, vector []float32) error {
	if len(vector) == 0 {
		return fmt.Errorf("%w: empty embedding", domain.ErrInvalidInput)
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO document_embeddings (document_id, embedding, dimensions, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(document_id) DO UPDATE SET
			embedding = excluded.embedding,
			dimensions = excluded.dimensions,
			created_at = excluded.created_at
	`, id, float32SliceToBytes(vector), len(vector), now())
	if err != nil {
		if _, getErr := s.GetDocument(ctx, id); errors.Is(getErr, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("saving embedding %d: %w", id, err)
	}
	return nil
}

// DeleteEmbedding removes the embedding of a document, if any.
func (s *corpusStore) DeleteEmbedding(ctx context.Context, id int64) error {
	if _, err := s.store.db.ExecContext(ctx,
		"DELETE FROM document_embeddings WHERE document_id = ?", id); err != nil {
		return fmt.Errorf("deleting embedding %d: %w", id, err)
	}
	return nil
}

// HasEmbedding reports whether a document has an embedding.
func (s *corpusStore) HasEmbedding(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.store.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM document_embeddings WHERE document_id = ?)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking embedding %d: %w", id, err)
	}
	return exists, nil
}

// DocumentsWithoutEmbedding returns documents with no embedding, oldest first.
func (s *corpusStore) DocumentsWithoutEmbedding(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, "SELECT "+documentColumns+` FROM documents d
		LEFT JOIN document_embeddings e ON e.document_id = d.id
		WHERE e.document_id IS NULL
		ORDER BY d.id`)
	if err != nil {
		return nil, fmt.Errorf("querying documents without embedding: %w", err)
	}
	return scanDocuments(rows)
}

// EmbeddingStats reports embedding coverage.
func (s *corpusStore) EmbeddingStats(ctx context.Context) (*domain.EmbeddingStats, error) {
	var stats domain.EmbeddingStats
	err := s.store.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM documents),
			(SELECT COUNT(*) FROM document_embeddings)
	`).Scan(&stats.Total, &stats.Indexed)
	if err != nil {
		return nil, fmt.Errorf("computing embedding stats: %w", err)
	}
	return &stats, nil
}
