package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sermonindex/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sermonindex/internal/core/domain"
)

func TestDocumentService(t *testing.T) {
	store, ids := seedCorpus(t)
	svc := NewDocumentService(store)

	t.Run("get", func(t *testing.T) {
		doc, err := svc.Get(t.Context(), ids["La foi"])
		require.NoError(t, err)
		assert.Equal(t, "Romains 10:17", doc.Reference)

		_, err = svc.Get(t.Context(), 999)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		_, err = svc.Get(t.Context(), 0)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("list newest first, undated last", func(t *testing.T) {
		docs, err := svc.List(t.Context())
		require.NoError(t, err)
		require.Len(t, docs, 3)
		assert.Equal(t, []string{"L'amour", "La foi", "La grâce"},
			[]string{docs[0].Title, docs[1].Title, docs[2].Title})
	})

	t.Run("stats", func(t *testing.T) {
		stats, err := svc.Stats(t.Context())
		require.NoError(t, err)
		assert.Equal(t, 3, stats.Documents)
		assert.Equal(t, "2023-01-08", stats.EarliestDate)
		assert.Equal(t, "2023-02-12", stats.LatestDate)
	})
}

func TestDocumentService_Recent(t *testing.T) {
	store := memory.NewCorpusStore()
	for i := range 15 {
		_, err := store.InsertDocument(t.Context(), &domain.Document{
			Path:  fmt.Sprintf("/c/%02d.md", i),
			Title: fmt.Sprintf("Sermon %d", i),
		})
		require.NoError(t, err)
	}
	svc := NewDocumentService(store)

	docs, err := svc.Recent(t.Context(), 0)
	require.NoError(t, err)
	assert.Len(t, docs, DefaultRecentLimit)

	docs, err = svc.Recent(t.Context(), 3)
	require.NoError(t, err)
	assert.Len(t, docs, 3)
}

func TestDocumentService_Delete(t *testing.T) {
	store, ids := seedCorpus(t)
	svc := NewDocumentService(store)

	require.NoError(t, svc.Delete(t.Context(), ids["La foi"]))

	_, err := svc.Get(t.Context(), ids["La foi"])
	assert.ErrorIs(t, err, domain.ErrNotFound)
	has, err := store.HasEmbedding(t.Context(), ids["La foi"])
	require.NoError(t, err)
	assert.False(t, has)

	assert.ErrorIs(t, svc.Delete(t.Context(), ids["La foi"]), domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(t.Context(), -1), domain.ErrInvalidInput)
}
