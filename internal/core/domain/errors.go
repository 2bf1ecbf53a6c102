package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Extraction Errors.

	// ErrUnsupportedFormat indicates a file extension with no registered extractor.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrFileTooLarge indicates a file exceeded the extraction size ceiling.
	// It is raised before any extractor runs.
	ErrFileTooLarge = errors.New("file too large")

	// ErrExtractionFailed indicates a format library could not read the file.
	// The extractor still returns a degraded result alongside it.
	ErrExtractionFailed = errors.New("extraction failed")

	// Indexing Errors.

	// ErrIndexingInProgress indicates a batch indexing run is already active.
	ErrIndexingInProgress = errors.New("indexing in progress")

	// ErrWatcherNotRunning indicates no folder is currently being watched.
	ErrWatcherNotRunning = errors.New("watcher not running")

	// ErrFolderNotConfigured indicates no corpus folder has been set.
	ErrFolderNotConfigured = errors.New("corpus folder not configured")

	// ErrStorageUnavailable indicates the corpus store could not be opened.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// AI Errors.

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Semantic search is disabled and hybrid search degrades to full-text.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrCredentialsMissing indicates no API key has been stored.
	ErrCredentialsMissing = errors.New("API key not configured")

	// ErrCredentialStoreUnavailable indicates secrets cannot be stored on this machine.
	ErrCredentialStoreUnavailable = errors.New("credential store unavailable")

	// ErrInvalidCredentials indicates the provider rejected the API key.
	ErrInvalidCredentials = errors.New("invalid API key")

	// ErrRateLimited indicates the provider rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrServiceUnavailable indicates a generic provider failure.
	ErrServiceUnavailable = errors.New("AI service error")

	// Configuration Errors.

	// ErrConfigNotFound indicates a configuration key is not set.
	ErrConfigNotFound = errors.New("config key not found")

	// ErrConfigInvalid indicates a configuration value has the wrong type or range.
	ErrConfigInvalid = errors.New("invalid config value")
)
