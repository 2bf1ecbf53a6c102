package domain

import "time"

// SettingCorpusFolder is the runtime setting holding the watched corpus folder.
const SettingCorpusFolder = "corpus_folder"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderNone disables the feature.
	AIProviderNone AIProvider = "none"

	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI (or a compatible) API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is the Anthropic API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderNone, AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// Default application settings.
const (
	DefaultMaxFileSizeMB        = 50
	DefaultDebounce             = 500 * time.Millisecond
	DefaultSearchLocale         = "fr"
	DefaultEmbeddingModel       = "all-minilm"
	DefaultEmbeddingDimensions  = 384
	DefaultEmbeddingRatePerSec  = 8
	DefaultEmbeddingMaxChars    = 2000
	DefaultLLMModel             = "claude-sonnet-4-5-20250929"
	DefaultLLMMaxTokens         = 4096
	DefaultSummaryMaxTokens     = 1024
	DefaultContextDocuments     = 5
	DefaultContextContentLength = 2500
)

// StorageSettings locates the corpus database.
type StorageSettings struct {
	// DataDir holds the database file. Empty means ~/.sermonindex/data.
	DataDir string
}

// IndexerSettings tunes the indexer and watcher.
type IndexerSettings struct {
	// MaxFileSizeMB is the extraction size ceiling.
	MaxFileSizeMB int

	// Debounce is the quiet period before a watched file is indexed.
	Debounce time.Duration
}

// MaxFileSize returns the size ceiling in bytes.
func (s IndexerSettings) MaxFileSize() int64 {
	return int64(s.MaxFileSizeMB) * 1024 * 1024
}

// SearchSettings holds search behaviour configuration.
type SearchSettings struct {
	// Locale selects the stop-word list.
	Locale string
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint. Empty uses the provider default.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions is the vector length the model produces.
	Dimensions int

	// RequestsPerSecond bounds the EmbedMany fan-out.
	RequestsPerSecond int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderNone || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
// The API key is not part of the settings; it lives in the credential store.
type LLMSettings struct {
	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint. Empty uses the provider default.
	BaseURL string

	// MaxTokens caps the chat response length.
	MaxTokens int
}

// AppSettings aggregates all application settings.
type AppSettings struct {
	Storage   StorageSettings
	Indexer   IndexerSettings
	Search    SearchSettings
	Embedding EmbeddingSettings
	LLM       LLMSettings
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Indexer: IndexerSettings{
			MaxFileSizeMB: DefaultMaxFileSizeMB,
			Debounce:      DefaultDebounce,
		},
		Search: SearchSettings{
			Locale: DefaultSearchLocale,
		},
		Embedding: EmbeddingSettings{
			Provider:          AIProviderOllama,
			Model:             DefaultEmbeddingModel,
			Dimensions:        DefaultEmbeddingDimensions,
			RequestsPerSecond: DefaultEmbeddingRatePerSec,
		},
		LLM: LLMSettings{
			Model:     DefaultLLMModel,
			MaxTokens: DefaultLLMMaxTokens,
		},
	}
}
