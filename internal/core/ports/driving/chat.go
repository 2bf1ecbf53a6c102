package driving

import (
	"context"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
)

// ChatService answers questions grounded in the corpus.
type ChatService interface {
	// Ask retrieves context, queries the LLM and returns the cited sources.
	Ask(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error)

	// Summarise returns an LLM summary of one document.
	Summarise(ctx context.Context, id int64) (string, error)

	// Available reports whether chat can run: an LLM backend exists and an
	// API key is stored.
	Available() bool

	// TestKey checks an API key against the LLM backend without storing it.
	TestKey(ctx context.Context, apiKey string) error

	// SaveKey tests an API key, then stores it.
	SaveKey(ctx context.Context, apiKey string) error

	// DeleteKey removes the stored API key.
	DeleteKey() error

	// HasKey reports whether an API key is stored.
	HasKey() bool
}
