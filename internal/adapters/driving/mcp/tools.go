package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the words, theme or scripture reference to look for"`
	Mode  string `json:"mode,omitempty" jsonschema:"hybrid (default), text, semantic or reference"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	DocumentID int64   `json:"document_id"`
	Title      string  `json:"title"`
	Path       string  `json:"path"`
	Date       string  `json:"date,omitempty"`
	Reference  string  `json:"reference,omitempty"`
	Score      float64 `json:"score"`
	MatchType  string  `json:"match_type,omitempty"`
	Snippet    string  `json:"snippet,omitempty"`
}

// DocumentInput selects one document.
type DocumentInput struct {
	ID int64 `json:"id" jsonschema:"the document id returned by search"`
}

// DocumentOutput is a full document.
type DocumentOutput struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Path      string `json:"path"`
	Date      string `json:"date,omitempty"`
	Reference string `json:"reference,omitempty"`
	WordCount int    `json:"word_count"`
	Content   string `json:"content"`
}

// RecentInput is the input schema for the recent_documents tool.
type RecentInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"number of documents (default 10)"`
}

// DocumentListOutput lists documents without their content.
type DocumentListOutput struct {
	Documents []DocumentSummary `json:"documents"`
}

// DocumentSummary is a document without content.
type DocumentSummary struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Date      string `json:"date,omitempty"`
	Reference string `json:"reference,omitempty"`
}

// StatsInput is the empty input of the corpus_stats tool.
type StatsInput struct{}

// StatsOutput summarises the corpus.
type StatsOutput struct {
	Documents    int    `json:"documents"`
	Words        int    `json:"words"`
	EarliestDate string `json:"earliest_date,omitempty"`
	LatestDate   string `json:"latest_date,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search the sermon corpus by keywords, meaning or scripture reference",
	}, s.handleSearch)

	if s.ports.Document == nil {
		return
	}
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_document",
		Description: "Read one sermon in full",
	}, s.handleGetDocument)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "recent_documents",
		Description: "List the most recently indexed sermons",
	}, s.handleRecent)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "corpus_stats",
		Description: "Count the sermons and words in the corpus",
	}, s.handleStats)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	mode := domain.SearchMode(strings.ToLower(input.Mode))
	if mode == "" {
		mode = domain.SearchModeHybrid
	}
	if !mode.IsValid() {
		return nil, SearchOutput{}, fmt.Errorf("%w: unknown search mode %q", domain.ErrInvalidInput, input.Mode)
	}

	results, err := s.search(ctx, mode, input.Query, input.Limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	return nil, SearchOutput{Results: results, Count: len(results)}, nil
}

func (s *Server) search(ctx context.Context, mode domain.SearchMode, query string, limit int) ([]SearchResultOutput, error) {
	out := []SearchResultOutput{}

	switch mode {
	case domain.SearchModeText:
		hits, err := s.ports.Search.FullText(ctx, query, limit)
		if err != nil {
			return nil, err
		}
		for i := range hits {
			r := resultOutput(&hits[i].Document, hits[i].Rank)
			r.Snippet = hits[i].Snippet
			out = append(out, r)
		}

	case domain.SearchModeSemantic:
		hits, err := s.ports.Search.Semantic(ctx, query, limit)
		if err != nil {
			return nil, err
		}
		for i := range hits {
			out = append(out, resultOutput(&hits[i].Document, hits[i].Similarity()))
		}

	case domain.SearchModeReference:
		docs, err := s.ports.Search.ByReference(ctx, query)
		if err != nil {
			return nil, err
		}
		for i := range docs {
			if limit > 0 && i == limit {
				break
			}
			out = append(out, resultOutput(&docs[i], 0))
		}

	default:
		hits, err := s.ports.Search.Hybrid(ctx, query, limit)
		if err != nil {
			return nil, err
		}
		for i := range hits {
			r := resultOutput(&hits[i].Document, hits[i].Score)
			r.MatchType = string(hits[i].MatchType)
			r.Snippet = hits[i].Snippet
			out = append(out, r)
		}
	}
	return out, nil
}

func resultOutput(doc *domain.Document, score float64) SearchResultOutput {
	return SearchResultOutput{
		DocumentID: doc.ID,
		Title:      doc.Title,
		Path:       doc.Path,
		Date:       doc.Date,
		Reference:  doc.Reference,
		Score:      score,
	}
}

func (s *Server) handleGetDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentInput,
) (*mcp.CallToolResult, DocumentOutput, error) {
	doc, err := s.ports.Document.Get(ctx, input.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, DocumentOutput{}, fmt.Errorf("document %d not found", input.ID)
	}
	if err != nil {
		return nil, DocumentOutput{}, err
	}
	return nil, DocumentOutput{
		ID:        doc.ID,
		Title:     doc.Title,
		Path:      doc.Path,
		Date:      doc.Date,
		Reference: doc.Reference,
		WordCount: doc.WordCount,
		Content:   doc.Content,
	}, nil
}

func (s *Server) handleRecent(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RecentInput,
) (*mcp.CallToolResult, DocumentListOutput, error) {
	docs, err := s.ports.Document.Recent(ctx, input.Limit)
	if err != nil {
		return nil, DocumentListOutput{}, err
	}
	return nil, DocumentListOutput{Documents: summaries(docs)}, nil
}

func (s *Server) handleStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatsInput,
) (*mcp.CallToolResult, StatsOutput, error) {
	stats, err := s.ports.Document.Stats(ctx)
	if err != nil {
		return nil, StatsOutput{}, err
	}
	return nil, StatsOutput{
		Documents:    stats.Documents,
		Words:        stats.Words,
		EarliestDate: stats.EarliestDate,
		LatestDate:   stats.LatestDate,
	}, nil
}

func summaries(docs []domain.Document) []DocumentSummary {
	out := make([]DocumentSummary, len(docs))
	for i := range docs {
		out[i] = DocumentSummary{
			ID:        docs[i].ID,
			Title:     docs[i].Title,
			Date:      docs[i].Date,
			Reference: docs[i].Reference,
		}
	}
	return out
}
