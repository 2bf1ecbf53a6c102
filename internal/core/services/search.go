package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
	"github.com/custodia-labs/sermonindex/internal/core/ports/driven"
	"github.com/custodia-labs/sermonindex/internal/core/ports/driving"
	"github.com/custodia-labs/sermonindex/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// Search limits.
const (
	MaxQueryLength       = 1000
	MaxSearchLimit       = 100
	DefaultTextLimit     = 20
	DefaultSemanticLimit = 10
)

// SearchService runs full-text, semantic and hybrid queries.
type SearchService struct {
	store    driven.CorpusStore
	embedder *EmbeddingProvider
}

// NewSearchService creates a new search service.
// The embedder is optional (can be nil); without it semantic search is
// unavailable and hybrid search is full-text only.
func NewSearchService(store driven.CorpusStore, embedder *EmbeddingProvider) *SearchService {
	return &SearchService{
		store:    store,
		embedder: embedder,
	}
}

// FullText ranks documents by keyword relevance.
func (s *SearchService) FullText(ctx context.Context, query string, limit int) ([]domain.TextHit, error) {
	query = normaliseQuery(query)
	if query == "" {
		return []domain.TextHit{}, nil
	}
	limit = clampLimit(limit, DefaultTextLimit)
	logger.Debug("full-text search %q (limit %d)", query, limit)

	hits, err := s.store.FullTextSearch(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("full-text search: %w", err)
	}
	return hits, nil
}

// Semantic ranks documents by embedding similarity.
func (s *SearchService) Semantic(ctx context.Context, query string, limit int) ([]domain.VectorHit, error) {
	query = normaliseQuery(query)
	if query == "" {
		return []domain.VectorHit{}, nil
	}
	if !s.embedder.Available() {
		return nil, domain.ErrEmbeddingUnavailable
	}
	limit = clampLimit(limit, DefaultSemanticLimit)

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	hits, err := s.store.VectorSearch(ctx, vec, limit)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	return hits, nil
}

// Hybrid fuses full-text and semantic results. When the query cannot be
// embedded the result is full-text only.
func (s *SearchService) Hybrid(ctx context.Context, query string, limit int) ([]domain.HybridHit, error) {
	query = normaliseQuery(query)
	if query == "" {
		return []domain.HybridHit{}, nil
	}
	limit = clampLimit(limit, DefaultSemanticLimit)

	text, err := s.store.FullTextSearch(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("full-text search: %w", err)
	}

	vector, err := s.vectorHits(ctx, query, limit)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("semantic search unavailable, using full-text only: %v", err)
		vector = nil
	}

	hits := FuseResults(text, vector, limit)
	logger.Debug("hybrid search %q: %d full-text, %d semantic, %d fused",
		query, len(text), len(vector), len(hits))
	return hits, nil
}

// ByReference matches the structured reference field.
func (s *SearchService) ByReference(ctx context.Context, ref string) ([]domain.Document, error) {
	ref = normaliseQuery(ref)
	if ref == "" {
		return []domain.Document{}, nil
	}
	docs, err := s.store.SearchByReference(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("reference search: %w", err)
	}
	return docs, nil
}

func (s *SearchService) vectorHits(ctx context.Context, query string, limit int) ([]domain.VectorHit, error) {
	if !s.embedder.Available() {
		return nil, nil
	}
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	hits, err := s.store.VectorSearch(ctx, vec, limit)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	return hits, nil
}

// normaliseQuery trims the query and caps its length.
func normaliseQuery(query string) string {
	return strings.TrimSpace(truncateRunes(strings.TrimSpace(query), MaxQueryLength))
}

// clampLimit applies the default to a non-positive limit and caps the rest.
func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, MaxSearchLimit)
}
