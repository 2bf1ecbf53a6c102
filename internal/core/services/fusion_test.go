package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
)

func doc(id int64, title string) domain.Document {
	return domain.Document{ID: id, Title: title}
}

func TestFuseResults_BothSignalsRankFirst(t *testing.T) {
	a, b, c, d := doc(1, "A"), doc(2, "B"), doc(3, "C"), doc(4, "D")
	text := []domain.TextHit{
		{Document: a, Snippet: "a"},
		{Document: b, Snippet: "b"},
		{Document: c, Snippet: "c"},
	}
	vector := []domain.VectorHit{
		{Document: b, Distance: 0.1},
		{Document: d, Distance: 0.3},
	}

	hits := FuseResults(text, vector, 10)

	require.Len(t, hits, 4)
	assert.Equal(t, "B", hits[0].Document.Title)
	assert.Equal(t, domain.MatchBoth, hits[0].MatchType)
	assert.InDelta(t, 1-(1.0/3)*0.5+0.5, hits[0].Score, 1e-9)
	assert.Equal(t, "b", hits[0].Snippet)

	assert.Equal(t, "A", hits[1].Document.Title)
	assert.Equal(t, domain.MatchExact, hits[1].MatchType)
	assert.InDelta(t, 1.0, hits[1].Score, 1e-9)

	assert.Equal(t, "C", hits[2].Document.Title)
	assert.InDelta(t, 1-(2.0/3)*0.5, hits[2].Score, 1e-9)

	assert.Equal(t, "D", hits[3].Document.Title)
	assert.Equal(t, domain.MatchSemantic, hits[3].MatchType)
	assert.InDelta(t, 0.35, hits[3].Score, 1e-9)
	assert.Empty(t, hits[3].Snippet)
}

func TestFuseResults_Limit(t *testing.T) {
	text := []domain.TextHit{{Document: doc(1, "A")}, {Document: doc(2, "B")}}
	vector := []domain.VectorHit{{Document: doc(3, "C")}}

	assert.Len(t, FuseResults(text, vector, 2), 2)
	assert.Len(t, FuseResults(text, vector, 0), 3)
}

func TestFuseResults_VectorOnly(t *testing.T) {
	hits := FuseResults(nil, []domain.VectorHit{
		{Document: doc(1, "A"), Distance: 0.4},
		{Document: doc(2, "B"), Distance: 0.2},
	}, 10)

	require.Len(t, hits, 2)
	assert.Equal(t, "B", hits[0].Document.Title)
	assert.InDelta(t, 0.4, hits[0].Score, 1e-9)
	assert.Equal(t, domain.MatchSemantic, hits[1].MatchType)
}

func TestFuseResults_TiesKeepBuildOrder(t *testing.T) {
	// A single full-text hit scores 1.0, as does a vector hit at distance -1.
	hits := FuseResults(
		[]domain.TextHit{{Document: doc(1, "text")}},
		[]domain.VectorHit{{Document: doc(2, "vector"), Distance: -1}},
		10,
	)

	require.Len(t, hits, 2)
	assert.Equal(t, "text", hits[0].Document.Title)
	assert.Equal(t, "vector", hits[1].Document.Title)
}

func TestFuseResults_DuplicatesIgnored(t *testing.T) {
	hits := FuseResults(
		[]domain.TextHit{{Document: doc(1, "A")}, {Document: doc(1, "A")}},
		[]domain.VectorHit{{Document: doc(2, "B")}, {Document: doc(2, "B")}},
		10,
	)

	assert.Len(t, hits, 2)
}

func TestFuseResults_Empty(t *testing.T) {
	assert.Empty(t, FuseResults(nil, nil, 10))
}
