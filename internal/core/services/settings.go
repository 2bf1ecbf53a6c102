package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
	"github.com/custodia-labs/sermonindex/internal/core/ports/driven"
	"github.com/custodia-labs/sermonindex/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyDataDir            = "storage.data_dir"
	KeyMaxFileSizeMB      = "indexer.max_file_size_mb"
	KeyDebounceMS         = "watcher.debounce_ms"
	KeySearchLocale       = "search.locale"
	KeyEmbedProvider      = "embedding.provider"
	KeyEmbedModel         = "embedding.model"
	KeyEmbedBaseURL       = "embedding.base_url"
	KeyEmbedAPIKey        = "embedding.api_key"
	KeyEmbedDimensions    = "embedding.dimensions"
	KeyEmbedRatePerSecond = "embedding.requests_per_second"
	KeyLLMModel           = "llm.model"
	KeyLLMBaseURL         = "llm.base_url"
	KeyLLMMaxTokens       = "llm.max_tokens"
)

// keyKind is the value type a config key accepts.
type keyKind int

const (
	kindString keyKind = iota
	kindPositiveInt
	kindProvider
	kindLocale
)

var configKeys = map[string]keyKind{
	KeyDataDir:            kindString,
	KeyMaxFileSizeMB:      kindPositiveInt,
	KeyDebounceMS:         kindPositiveInt,
	KeySearchLocale:       kindLocale,
	KeyEmbedProvider:      kindProvider,
	KeyEmbedModel:         kindString,
	KeyEmbedBaseURL:       kindString,
	KeyEmbedAPIKey:        kindString,
	KeyEmbedDimensions:    kindPositiveInt,
	KeyEmbedRatePerSecond: kindPositiveInt,
	KeyLLMModel:           kindString,
	KeyLLMBaseURL:         kindString,
	KeyLLMMaxTokens:       kindPositiveInt,
}

// ConfigKeys returns every recognised configuration key, sorted.
func ConfigKeys() []string {
	keys := make([]string, 0, len(configKeys))
	for k := range configKeys {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// SettingsService reads the config file and manages runtime settings.
type SettingsService struct {
	configStore driven.ConfigStore
	settings    driven.SettingsStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, settings driven.SettingsStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		settings:    settings,
	}
}

// Get returns the current settings, defaults filling unset keys.
func (s *SettingsService) Get() domain.AppSettings {
	defaults := domain.DefaultAppSettings()

	return domain.AppSettings{
		Storage: domain.StorageSettings{
			DataDir: s.configStore.GetString(KeyDataDir),
		},
		Indexer: domain.IndexerSettings{
			MaxFileSizeMB: s.getInt(KeyMaxFileSizeMB, defaults.Indexer.MaxFileSizeMB),
			Debounce:      s.getDuration(KeyDebounceMS, defaults.Indexer.Debounce),
		},
		Search: domain.SearchSettings{
			Locale: s.getString(KeySearchLocale, defaults.Search.Locale),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:          s.getProvider(KeyEmbedProvider, defaults.Embedding.Provider),
			Model:             s.getString(KeyEmbedModel, defaults.Embedding.Model),
			BaseURL:           s.configStore.GetString(KeyEmbedBaseURL), // empty means provider default
			APIKey:            s.configStore.GetString(KeyEmbedAPIKey),
			Dimensions:        s.getInt(KeyEmbedDimensions, defaults.Embedding.Dimensions),
			RequestsPerSecond: s.getInt(KeyEmbedRatePerSecond, defaults.Embedding.RequestsPerSecond),
		},
		LLM: domain.LLMSettings{
			Model:     s.getString(KeyLLMModel, defaults.LLM.Model),
			BaseURL:   s.configStore.GetString(KeyLLMBaseURL),
			MaxTokens: s.getInt(KeyLLMMaxTokens, defaults.LLM.MaxTokens),
		},
	}
}

// Set validates and writes one configuration key.
// Integer keys are stored as integers.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown key %q", domain.ErrConfigInvalid, key)
	}
	value = strings.TrimSpace(value)

	switch kind {
	case kindPositiveInt:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: %s must be a positive integer, got %q", domain.ErrConfigInvalid, key, value)
		}
		return s.configStore.Set(key, n)
	case kindProvider:
		p := domain.AIProvider(strings.ToLower(value))
		if !p.IsValid() || p == domain.AIProviderAnthropic {
			return fmt.Errorf("%w: %s must be none, ollama or openai, got %q", domain.ErrConfigInvalid, key, value)
		}
		return s.configStore.Set(key, string(p))
	case kindLocale:
		if !domain.SupportedLocale(value) {
			return fmt.Errorf("%w: unsupported locale %q", domain.ErrConfigInvalid, value)
		}
		return s.configStore.Set(key, strings.ToLower(value))
	default:
		return s.configStore.Set(key, value)
	}
}

// Unset removes a configuration key so its default applies again.
func (s *SettingsService) Unset(key string) error {
	if _, ok := configKeys[key]; !ok {
		return fmt.Errorf("%w: unknown key %q", domain.ErrConfigInvalid, key)
	}
	return s.configStore.Unset(key)
}

// Keys returns the recognised configuration keys, sorted.
func (s *SettingsService) Keys() []string {
	return ConfigKeys()
}

// Value returns the configured value of key as text.
func (s *SettingsService) Value(key string) (string, bool) {
	v, ok := s.configStore.Get(key)
	if !ok {
		return "", false
	}
	return fmt.Sprint(v), true
}

// ConfigPath returns the configuration file path.
func (s *SettingsService) ConfigPath() string {
	return s.configStore.Path()
}

// CorpusFolder returns the configured corpus folder.
func (s *SettingsService) CorpusFolder(ctx context.Context) (string, error) {
	folder, err := s.settings.GetSetting(ctx, domain.SettingCorpusFolder)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && folder == "") {
		return "", domain.ErrFolderNotConfigured
	}
	if err != nil {
		return "", fmt.Errorf("get corpus folder: %w", err)
	}
	return folder, nil
}

// SetCorpusFolder stores the corpus folder as an absolute path.
// The folder must exist.
func (s *SettingsService) SetCorpusFolder(ctx context.Context, folder string) error {
	if strings.TrimSpace(folder) == "" {
		return fmt.Errorf("%w: folder is empty", domain.ErrInvalidInput)
	}
	abs, err := filepath.Abs(folder)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, abs)
	}
	return s.settings.SetSetting(ctx, domain.SettingCorpusFolder, abs)
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if v := s.configStore.GetString(key); v != "" {
		return v
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if v := s.configStore.GetInt(key); v > 0 {
		return v
	}
	return defaultVal
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := s.configStore.GetInt(key); v > 0 {
		return time.Duration(v) * time.Millisecond
	}
	return defaultVal
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	if v := domain.AIProvider(s.configStore.GetString(key)); v.IsValid() {
		return v
	}
	return defaultVal
}
