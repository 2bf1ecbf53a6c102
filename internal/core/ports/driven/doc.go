// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - CorpusStore: Document rows, full-text mirror and vector index
//   - SettingsStore: Runtime key/value settings (the corpus folder)
//   - Extractor / ExtractorRegistry: Turn files into text and metadata
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Generates vector embeddings. Without it, semantic
//     search is disabled and hybrid search falls back to full-text.
//   - LLMService: Chat completion. Without it, chat and summaries are disabled.
//   - CredentialStore: Holds the LLM API key.
//   - FileNotifier: Filesystem change notifications for the watcher.
//   - PromptStore: User-editable prompt templates.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or extractor package
package driven
