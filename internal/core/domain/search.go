package domain

// MatchType records which retrieval signals found a hybrid hit.
type MatchType string

// Hybrid match types.
const (
	// MatchExact marks a hit found only by full-text search.
	MatchExact MatchType = "exact"

	// MatchSemantic marks a hit found only by vector search.
	MatchSemantic MatchType = "semantic"

	// MatchBoth marks a hit found by both signals.
	MatchBoth MatchType = "both"
)

// SearchMode selects a retrieval method for the search service.
type SearchMode string

// Available search modes.
const (
	// SearchModeText uses only full-text search.
	SearchModeText SearchMode = "text"

	// SearchModeSemantic uses only vector search.
	SearchModeSemantic SearchMode = "semantic"

	// SearchModeHybrid fuses full-text and vector results.
	SearchModeHybrid SearchMode = "hybrid"

	// SearchModeReference matches the structured reference field.
	SearchModeReference SearchMode = "reference"
)

// IsValid returns true if the search mode is recognised.
func (m SearchMode) IsValid() bool {
	switch m {
	case SearchModeText, SearchModeSemantic, SearchModeHybrid, SearchModeReference:
		return true
	default:
		return false
	}
}

// RequiresEmbedding returns true if this mode needs an embedding provider.
func (m SearchMode) RequiresEmbedding() bool {
	return m == SearchModeSemantic
}

// TextHit is a full-text search result.
type TextHit struct {
	Document Document

	// Rank is the raw bm25 score: more negative is more relevant.
	// Hits are ordered by ascending rank.
	Rank float64

	// Snippet is an excerpt of the content with matches wrapped in <mark>.
	Snippet string
}

// VectorHit is a nearest-neighbour search result.
type VectorHit struct {
	Document Document

	// Distance is the cosine distance, 0 for identical direction.
	Distance float64
}

// Similarity returns 1 - Distance.
func (h VectorHit) Similarity() float64 {
	return 1 - h.Distance
}

// HybridHit is a fused search result.
type HybridHit struct {
	Document Document

	// Score is the fusion score; higher is better.
	Score float64

	// MatchType records which signals found the document.
	MatchType MatchType

	// Snippet is the full-text snippet when one is available.
	Snippet string
}
