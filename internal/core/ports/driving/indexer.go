package driving

import (
	"context"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
)

// Indexer keeps the corpus store in sync with files on disk.
type Indexer interface {
	// IndexFolder scans folder recursively and indexes supported files.
	// Per-file failures are collected in the result; only enumeration and
	// store failures are returned as errors. Returns
	// domain.ErrIndexingInProgress if another batch run is active.
	IndexFolder(ctx context.Context, folder string, opts IndexOptions) (*domain.IndexingResult, error)

	// IndexFile indexes one file. Used by the watcher.
	IndexFile(ctx context.Context, path string) (domain.FileStatus, error)

	// RemoveFile deletes the document backed by path, if any.
	RemoveFile(ctx context.Context, path string) error

	// Cancel requests cancellation of the current batch run.
	// It has no effect on runs that already finished.
	Cancel()

	// Running reports whether a batch run is active.
	Running() bool
}

// IndexOptions configures a batch run.
type IndexOptions struct {
	// Force re-extracts every file even when its hash is unchanged.
	Force bool

	// Progress receives one event before each file. Sends never block:
	// events are dropped when the channel is full. The indexer does not
	// close the channel.
	Progress chan<- domain.IndexingProgress
}
