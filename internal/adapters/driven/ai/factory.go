// Package ai builds the AI service adapters selected by the settings.
package ai

import (
	"fmt"

	ollamaembed "github.com/custodia-labs/sermonindex/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/sermonindex/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/sermonindex/internal/adapters/driven/llm/anthropic"
	"github.com/custodia-labs/sermonindex/internal/core/domain"
	"github.com/custodia-labs/sermonindex/internal/core/ports/driven"
)

// CreateEmbeddingService creates the embedding service for settings.
// Returns nil, nil when embeddings are disabled or not configured; the
// caller then runs without semantic search. Connectivity is not checked
// here: the embedding provider pings once, on first use.
func CreateEmbeddingService(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		}), nil

	case domain.AIProviderOpenAI:
		dims := settings.Dimensions
		if settings.Model != domain.DefaultEmbeddingModel && dims == domain.DefaultEmbeddingDimensions {
			// The default dimension belongs to all-minilm; let the adapter pick.
			dims = 0
		}
		svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      openAIModel(settings.Model),
			Dimensions: dims,
		})
		if err != nil {
			return nil, err
		}
		return svc, nil

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider %q", domain.ErrConfigInvalid, settings.Provider)
	}
}

// openAIModel maps the Ollama default model name to the OpenAI default.
func openAIModel(model string) string {
	if model == "" || model == domain.DefaultEmbeddingModel {
		return openaiembed.DefaultModel
	}
	return model
}

// NewLLMFactory returns a factory building Anthropic services for settings.
// The API key is supplied per call by the chat service.
func NewLLMFactory(settings domain.LLMSettings) driven.LLMFactory {
	return anthropicllm.Factory(anthropicllm.Config{
		BaseURL:   settings.BaseURL,
		Model:     settings.Model,
		MaxTokens: settings.MaxTokens,
	})
}
