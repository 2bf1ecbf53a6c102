package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
	"github.com/custodia-labs/sermonindex/internal/core/ports/driven"
	"github.com/custodia-labs/sermonindex/internal/core/ports/driving"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DefaultRecentLimit is the number of documents Recent returns by default.
const DefaultRecentLimit = 10

// DocumentService manages indexed documents.
type DocumentService struct {
	store driven.CorpusStore
}

// NewDocumentService creates a new document service.
func NewDocumentService(store driven.CorpusStore) *DocumentService {
	return &DocumentService{store: store}
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, id int64) (*domain.Document, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: document id must be positive", domain.ErrInvalidInput)
	}
	return s.store.GetDocument(ctx, id)
}

// List returns every document, newest first.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	return s.store.ListDocuments(ctx)
}

// Recent returns the most recently indexed documents.
func (s *DocumentService) Recent(ctx context.Context, limit int) ([]domain.Document, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return s.store.RecentDocuments(ctx, min(limit, MaxSearchLimit))
}

// Delete removes a document and its embedding. The file on disk stays;
// the next batch run indexes it again.
func (s *DocumentService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: document id must be positive", domain.ErrInvalidInput)
	}
	return s.store.DeleteDocument(ctx, id)
}

// Stats aggregates the corpus.
func (s *DocumentService) Stats(ctx context.Context) (*domain.CorpusStats, error) {
	return s.store.Stats(ctx)
}
