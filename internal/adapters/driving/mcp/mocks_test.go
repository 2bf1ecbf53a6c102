package mcp

import (
	"context"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	text      []domain.TextHit
	vector    []domain.VectorHit
	hybrid    []domain.HybridHit
	reference []domain.Document
	err       error

	lastMode  domain.SearchMode
	lastQuery string
	lastLimit int
}

func (m *mockSearchService) record(mode domain.SearchMode, query string, limit int) {
	m.lastMode = mode
	m.lastQuery = query
	m.lastLimit = limit
}

func (m *mockSearchService) FullText(_ context.Context, query string, limit int) ([]domain.TextHit, error) {
	m.record(domain.SearchModeText, query, limit)
	return m.text, m.err
}

func (m *mockSearchService) Semantic(_ context.Context, query string, limit int) ([]domain.VectorHit, error) {
	m.record(domain.SearchModeSemantic, query, limit)
	return m.vector, m.err
}

func (m *mockSearchService) Hybrid(_ context.Context, query string, limit int) ([]domain.HybridHit, error) {
	m.record(domain.SearchModeHybrid, query, limit)
	return m.hybrid, m.err
}

func (m *mockSearchService) ByReference(_ context.Context, ref string) ([]domain.Document, error) {
	m.record(domain.SearchModeReference, ref, 0)
	return m.reference, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	stats     *domain.CorpusStats
	err       error
	lastLimit int
}

func (m *mockDocumentService) Get(_ context.Context, id int64) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.documents {
		if m.documents[i].ID == id {
			doc := m.documents[i]
			return &doc, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Recent(_ context.Context, limit int) ([]domain.Document, error) {
	m.lastLimit = limit
	return m.documents, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, _ int64) error {
	return m.err
}

func (m *mockDocumentService) Stats(_ context.Context) (*domain.CorpusStats, error) {
	return m.stats, m.err
}

func sampleDocuments() []domain.Document {
	return []domain.Document{
		{
			ID:        1,
			Path:      "/sermons/grace.md",
			Title:     "La grâce suffisante",
			Date:      "2024-03-10",
			Reference: "2 Corinthiens 12:9",
			Content:   "Ma grâce te suffit, car ma puissance s'accomplit dans la faiblesse.",
			WordCount: 11,
		},
		{
			ID:        2,
			Path:      "/sermons/foi.docx",
			Title:     "Marcher par la foi",
			Content:   "Nous marchons par la foi et non par la vue.",
			WordCount: 10,
		},
	}
}
