// Package app composes the adapters and services into a running application.
package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/sermonindex/internal/adapters/driven/ai"
	"github.com/custodia-labs/sermonindex/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sermonindex/internal/adapters/driven/credentials/dotenv"
	"github.com/custodia-labs/sermonindex/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sermonindex/internal/connectors/filesystem"
	"github.com/custodia-labs/sermonindex/internal/core/domain"
	"github.com/custodia-labs/sermonindex/internal/core/services"
	"github.com/custodia-labs/sermonindex/internal/extractors"
	"github.com/custodia-labs/sermonindex/internal/extractors/docx"
	"github.com/custodia-labs/sermonindex/internal/extractors/odt"
	"github.com/custodia-labs/sermonindex/internal/extractors/pdf"
	"github.com/custodia-labs/sermonindex/internal/extractors/text"
	"github.com/custodia-labs/sermonindex/internal/logger"
)

// AppDir is the application directory name under the user's home.
const AppDir = ".sermonindex"

var log = logger.For("app")

// Options configures New.
type Options struct {
	// HomeDir holds the config file, prompts, credentials and, unless
	// data_dir is configured, the database. Empty means ~/.sermonindex.
	HomeDir string
}

// Runtime holds every service of one process.
type Runtime struct {
	Settings   *services.SettingsService
	Indexer    *services.Indexer
	Watcher    *services.Watcher
	Search     *services.SearchService
	Documents  *services.DocumentService
	Embeddings *services.EmbeddingIndexer
	Chat       *services.ChatService

	// DatabasePath is the SQLite file in use.
	DatabasePath string

	store    *sqlite.Store
	embedder *services.EmbeddingProvider
}

// New builds the runtime. Only configuration and storage failures are
// fatal: a missing embedding backend disables semantic search, and a
// missing prompt directory falls back to the built-in prompts.
func New(opts Options) (*Runtime, error) {
	home, err := homeDir(opts.HomeDir)
	if err != nil {
		return nil, err
	}

	configStore, err := file.NewConfigStore(home)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	settings := services.NewSettingsService(configStore, nil).Get()

	dataDir := settings.Storage.DataDir
	if dataDir == "" {
		dataDir = filepath.Join(home, "data")
	}
	store, err := sqlite.NewStore(dataDir, sqlite.WithStopWords(domain.StopWordsFor(settings.Search.Locale)))
	if err != nil {
		return nil, err
	}
	corpus := store.CorpusStore()

	registry := extractors.NewRegistry(settings.Indexer.MaxFileSize(),
		text.New(),
		docx.New(),
		odt.New(),
		pdf.New(),
	)

	embeddingSvc, err := ai.CreateEmbeddingService(settings.Embedding)
	if err != nil {
		log.Warn("embeddings disabled: %v", err)
		embeddingSvc = nil
	}
	embedder := services.NewEmbeddingProvider(embeddingSvc, settings.Embedding.RequestsPerSecond)

	indexer := services.NewIndexer(corpus, registry)
	search := services.NewSearchService(corpus, embedder)

	prompts, err := file.NewPromptStore(filepath.Join(home, "prompts"))
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("load prompts: %w", err)
	}

	rt := &Runtime{
		Settings: services.NewSettingsService(configStore, store.SettingsStore()),
		Indexer:  indexer,
		Watcher: services.NewWatcher(indexer, store.SettingsStore(),
			filesystem.Factory(settings.Indexer.Debounce, registry.Supports)),
		Search:     search,
		Documents:  services.NewDocumentService(corpus),
		Embeddings: services.NewEmbeddingIndexer(corpus, embedder),
		Chat: services.NewChatService(corpus, search, dotenv.NewStore(home),
			ai.NewLLMFactory(settings.LLM), prompts, settings.LLM.MaxTokens),
		DatabasePath: store.Path(),
		store:        store,
		embedder:     embedder,
	}

	log.Debug("database %s, %d extensions, embeddings %t",
		rt.DatabasePath, len(registry.Extensions()), embedder.Available())
	return rt, nil
}

// Close stops the watcher and releases the embedding backend and the
// database. It is safe to call more than once.
func (r *Runtime) Close() error {
	var errs []error
	if r.Watcher != nil && r.Watcher.Running() {
		if err := r.Watcher.Stop(); err != nil && !errors.Is(err, domain.ErrWatcherNotRunning) {
			errs = append(errs, err)
		}
	}
	if r.embedder != nil {
		if err := r.embedder.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close embedder: %w", err))
		}
		r.embedder = nil
	}
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
		r.store = nil
	}
	return errors.Join(errs...)
}

// homeDir resolves and creates the application directory.
func homeDir(dir string) (string, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, AppDir)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("%w: creating %s: %v", domain.ErrStorageUnavailable, dir, err)
	}
	return dir, nil
}
