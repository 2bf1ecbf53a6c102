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

// Ensure EmbeddingIndexer implements the interface.
var _ driving.EmbeddingIndexer = (*EmbeddingIndexer)(nil)

// embedBatchSize is the number of documents embedded per EmbedMany call.
const embedBatchSize = 16

// EmbeddingIndexer fills in embeddings for documents that lack one.
type EmbeddingIndexer struct {
	store    driven.CorpusStore
	provider *EmbeddingProvider
}

// NewEmbeddingIndexer creates an embedding indexer.
func NewEmbeddingIndexer(store driven.CorpusStore, provider *EmbeddingProvider) *EmbeddingIndexer {
	return &EmbeddingIndexer{
		store:    store,
		provider: provider,
	}
}

// IndexMissing embeds the title and content of every document without an
// embedding. Per-document failures are collected in the result.
func (e *EmbeddingIndexer) IndexMissing(ctx context.Context) (*domain.EmbeddingRunResult, error) {
	if err := e.provider.Initialize(ctx); err != nil {
		return nil, err
	}

	docs, err := e.store.DocumentsWithoutEmbedding(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents without embedding: %w", err)
	}
	logger.Info("embedding %d documents with %s", len(docs), e.provider.ModelName())

	result := &domain.EmbeddingRunResult{Errors: []string{}}
	for start := 0; start < len(docs); start += embedBatchSize {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		batch := docs[start:min(start+embedBatchSize, len(docs))]

		texts := make([]string, len(batch))
		for i, doc := range batch {
			texts[i] = embeddingText(doc)
		}

		vecs, err := e.provider.EmbedMany(ctx, texts)
		if err != nil {
			// Retry one by one so the failure lands on the right document.
			logger.Debug("batch embedding failed, retrying individually: %v", err)
			vecs = make([][]float32, len(batch))
			for i, text := range texts {
				vec, err := e.provider.Embed(ctx, text)
				if err != nil {
					result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", batch[i].Title, err))
					continue
				}
				vecs[i] = vec
			}
		}

		for i, doc := range batch {
			if vecs[i] == nil {
				continue
			}
			if err := e.store.UpsertEmbedding(ctx, doc.ID, vecs[i]); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", doc.Title, err))
				continue
			}
			result.Processed++
		}
	}

	logger.Info("embedded %d documents, %d errors", result.Processed, len(result.Errors))
	return result, nil
}

// Stats reports embedding coverage.
func (e *EmbeddingIndexer) Stats(ctx context.Context) (*domain.EmbeddingStats, error) {
	stats, err := e.store.EmbeddingStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("embedding stats: %w", err)
	}
	return stats, nil
}

// embeddingText is the text embedded for a document.
func embeddingText(doc domain.Document) string {
	return strings.TrimSpace(doc.Title + "\n\n" + doc.Content)
}
