package driven

import (
	"context"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
)

// FileNotifier streams debounced changes to supported files under a folder.
// Hidden files and directories are never reported.
type FileNotifier interface {
	// Watch starts watching root recursively. The channel is closed when
	// ctx is cancelled or Close is called.
	Watch(ctx context.Context, root string) (<-chan domain.FileEvent, error)

	// Close stops watching and releases the underlying handles.
	// Calling Close more than once is safe.
	Close() error
}

// FileNotifierFactory creates a fresh notifier for each watch session.
type FileNotifierFactory func() FileNotifier
