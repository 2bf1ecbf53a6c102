package services

import (
	"sort"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
)

// FuseResults merges full-text hits (best first) and vector hits (nearest
// first) into one list, highest score first, capped at limit.
//
// A full-text hit at index i of n scores 1 - (i/n)*0.5, plus 0.5 when the
// vector search also found it. A vector-only hit scores similarity*0.5.
// Equal scores keep build order: full-text hits in rank order, then
// vector-only hits in distance order. A non-positive limit keeps every hit.
func FuseResults(text []domain.TextHit, vector []domain.VectorHit, limit int) []domain.HybridHit {
	inVector := make(map[int64]struct{}, len(vector))
	for _, h := range vector {
		inVector[h.Document.ID] = struct{}{}
	}

	n := float64(max(len(text), 1))
	hits := make([]domain.HybridHit, 0, len(text)+len(vector))
	seen := make(map[int64]struct{}, len(text))

	for i, h := range text {
		if _, dup := seen[h.Document.ID]; dup {
			continue
		}
		seen[h.Document.ID] = struct{}{}

		hit := domain.HybridHit{
			Document:  h.Document,
			Score:     1 - (float64(i)/n)*0.5,
			MatchType: domain.MatchExact,
			Snippet:   h.Snippet,
		}
		if _, ok := inVector[h.Document.ID]; ok {
			hit.Score += 0.5
			hit.MatchType = domain.MatchBoth
		}
		hits = append(hits, hit)
	}

	for _, h := range vector {
		if _, dup := seen[h.Document.ID]; dup {
			continue
		}
		seen[h.Document.ID] = struct{}{}

		hits = append(hits, domain.HybridHit{
			Document:  h.Document,
			Score:     h.Similarity() * 0.5,
			MatchType: domain.MatchSemantic,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}
