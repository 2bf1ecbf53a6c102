package driven

import (
	"context"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
)

// LLMService is a chat completion backend.
//
// Errors wrap domain.ErrInvalidCredentials, domain.ErrRateLimited or
// domain.ErrServiceUnavailable so callers can tell them apart without
// seeing provider details.
type LLMService interface {
	// Complete sends a system prompt and conversation turns.
	// The last turn is the user's message.
	Complete(ctx context.Context, system string, turns []domain.ChatMessage, opts CompletionOptions) (*domain.Completion, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the API key with a lightweight request.
	Ping(ctx context.Context) error
}

// CompletionOptions configures one completion request.
type CompletionOptions struct {
	// MaxTokens limits the response length. Zero uses the service default.
	MaxTokens int
}

// LLMFactory builds an LLMService for an API key.
// The key is fetched from the credential store per request and not retained.
type LLMFactory func(apiKey string) LLMService
