package sqlite

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
	"github.com/custodia-labs/sermonindex/internal/logger"
)

var log = logger.For("sqlite")

// likeEscaper escapes the LIKE wildcards and the escape character itself.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// MatchExpression converts a free-text query into an FTS5 expression:
// every remaining term is quoted and prefix-matched, and terms are ANDed.
// It returns "" when no searchable term remains.
func MatchExpression(query string, stop domain.StopWords) string {
	terms := domain.QueryTerms(query, stop)
	if len(terms) == 0 {
		return ""
	}
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = `"` + t + `"*`
	}
	return strings.Join(quoted, " ")
}

// FullTextSearch ranks documents with bm25 and highlights the content.
func (s *corpusStore) FullTextSearch(ctx context.Context, query string, limit int) ([]domain.TextHit, error) {
	match := MatchExpression(query, s.store.stop)
	if match == "" || limit <= 0 {
		return []domain.TextHit{}, nil
	}

	rows, err := s.store.db.QueryContext(ctx, "SELECT "+documentColumns+`,
			bm25(documents_fts) AS rank,
			snippet(documents_fts, 1, '<mark>', '</mark>', '...', 32) AS snippet
		FROM documents_fts
		JOIN documents d ON d.id = documents_fts.rowid
		WHERE documents_fts MATCH ?
		ORDER BY rank
		LIMIT ?`, match, limit)
	if err != nil {
		return nil, fmt.Errorf("full-text search: %w", err)
	}
	defer rows.Close()

	hits := []domain.TextHit{}
	for rows.Next() {
		var hit domain.TextHit
		doc, err := scanDocument(rows, &hit.Rank, &hit.Snippet)
		if err != nil {
			return nil, err
		}
		hit.Document = *doc
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search results: %w", err)
	}
	return hits, nil
}

// SearchByReference substring-matches the reference field.
func (s *corpusStore) SearchByReference(ctx context.Context, ref string) ([]domain.Document, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return []domain.Document{}, nil
	}

	rows, err := s.store.db.QueryContext(ctx, "SELECT "+documentColumns+` FROM documents d
		WHERE d.reference LIKE ? ESCAPE '\'
		ORDER BY d.date IS NULL, d.date DESC, d.title ASC`, "%"+likeEscaper.Replace(ref)+"%")
	if err != nil {
		return nil, fmt.Errorf("reference search: %w", err)
	}
	docs, err := scanDocuments(rows)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	return docs, nil
}

// VectorSearch scans every stored embedding and returns the nearest
// documents by cosine distance. Vectors of a different dimension are skipped.
func (s *corpusStore) VectorSearch(ctx context.Context, query []float32, limit int) ([]domain.VectorHit, error) {
	if len(query) == 0 || limit <= 0 {
		return []domain.VectorHit{}, nil
	}

	rows, err := s.store.db.QueryContext(ctx,
		"SELECT document_id, embedding FROM document_embeddings")
	if err != nil {
		return nil, fmt.Errorf("loading embeddings: %w", err)
	}

	var candidates []scored
	skipped := 0
	for rows.Next() {
		var id int64
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning embedding: %w", err)
		}
		dist, err := domain.CosineDistance(query, bytesToFloat32Slice(blob))
		if err != nil {
			skipped++
			continue
		}
		candidates = append(candidates, scored{id: id, distance: dist})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating embeddings: %w", err)
	}
	rows.Close()

	if skipped > 0 {
		log.Debug("skipped %d embeddings with a different dimension", skipped)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	// Rows are closed above: the single connection is free for lookups.
	hits := make([]domain.VectorHit, 0, len(candidates))
	for _, c := range candidates {
		doc, err := s.GetDocument(ctx, c.id)
		if err != nil {
			return nil, fmt.Errorf("loading document %d: %w", c.id, err)
		}
		hits = append(hits, domain.VectorHit{Document: *doc, Distance: c.distance})
	}
	return hits, nil
}

type scored struct {
	id       int64
	distance float64
}
