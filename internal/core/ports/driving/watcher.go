package driving

import (
	"context"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
)

// Watcher keeps the index live for one corpus folder at a time.
type Watcher interface {
	// Start stops any previous watch, runs a full batch index of folder,
	// then watches it for changes. It returns the initial indexing result
	// once watching has begun.
	Start(ctx context.Context, folder string, opts IndexOptions) (*domain.IndexingResult, error)

	// Resume starts watching the configured corpus folder, if any.
	// Returns domain.ErrFolderNotConfigured when no folder is set.
	Resume(ctx context.Context, opts IndexOptions) (*domain.IndexingResult, error)

	// Stop stops watching and waits for the event loop to exit.
	// Returns domain.ErrWatcherNotRunning if nothing is watched.
	Stop() error

	// Running reports whether a folder is being watched.
	Running() bool

	// Folder returns the watched folder, or "" when stopped.
	Folder() string

	// Done is closed when the current watch session ends.
	// It returns nil when no session is active.
	Done() <-chan struct{}
}
