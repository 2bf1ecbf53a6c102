package driving

import (
	"context"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
)

// SettingsService reads application settings and manages the corpus folder.
type SettingsService interface {
	// Get returns the application settings with defaults applied.
	Get() domain.AppSettings

	// Set validates and writes one configuration key to the config file.
	// Returns domain.ErrConfigInvalid for an unknown key or a bad value.
	Set(key, value string) error

	// Unset removes a configuration key so that its default applies again.
	Unset(key string) error

	// Keys returns the recognised configuration keys, sorted.
	Keys() []string

	// Value returns the explicitly configured value of key, if any.
	Value(key string) (string, bool)

	// ConfigPath returns the configuration file path.
	ConfigPath() string

	// CorpusFolder returns the configured corpus folder.
	// Returns domain.ErrFolderNotConfigured when unset.
	CorpusFolder(ctx context.Context) (string, error)

	// SetCorpusFolder stores the corpus folder.
	SetCorpusFolder(ctx context.Context, folder string) error
}
