package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
	"github.com/custodia-labs/sermonindex/internal/core/ports/driven"
	"github.com/custodia-labs/sermonindex/internal/core/ports/driving"
	"github.com/custodia-labs/sermonindex/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driving.Watcher = (*Watcher)(nil)

// Watcher keeps one corpus folder indexed while it changes.
//
// Start, Resume and Stop are serialised. Starting a new folder fully
// stops the previous session first, so events from two folders are never
// delivered at the same time.
type Watcher struct {
	indexer   driving.Indexer
	settings  driven.SettingsStore
	notifiers driven.FileNotifierFactory

	mu      sync.Mutex
	session *watchSession
	log     logger.Scope
}

// watchSession is one running watch.
type watchSession struct {
	folder   string
	notifier driven.FileNotifier
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewWatcher creates a watcher. settings may be nil, in which case the
// folder is not remembered across runs.
func NewWatcher(
	indexer driving.Indexer,
	settings driven.SettingsStore,
	notifiers driven.FileNotifierFactory,
) *Watcher {
	return &Watcher{
		indexer:   indexer,
		settings:  settings,
		notifiers: notifiers,
		log:       logger.For("watcher"),
	}
}

// Start stops any running session, indexes folder, then watches it.
// ctx bounds the initial indexing pass only; the session runs until Stop.
// When the initial pass is cancelled, watching does not start.
func (w *Watcher) Start(ctx context.Context, folder string, opts driving.IndexOptions) (*domain.IndexingResult, error) {
	folder, err := filepath.Abs(folder)
	if err != nil {
		return nil, fmt.Errorf("resolve folder: %w", err)
	}
	info, err := os.Stat(folder)
	if err != nil {
		return nil, fmt.Errorf("watch folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch folder: %w: %s is not a directory", domain.ErrInvalidInput, folder)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	// 1. Release the previous folder before touching the new one
	if w.session != nil {
		w.stopLocked()
	}

	// 2. Bring the index up to date
	w.log.Info("initial indexing of %s", folder)
	result, err := w.indexer.IndexFolder(ctx, folder, opts)
	if err != nil {
		return nil, err
	}
	if result.Cancelled {
		w.log.Info("initial indexing cancelled, not watching %s", folder)
		return result, nil
	}

	// 3. Remember the folder for the next start
	if w.settings != nil {
		if err := w.settings.SetSetting(ctx, domain.SettingCorpusFolder, folder); err != nil {
			return nil, fmt.Errorf("save corpus folder: %w", err)
		}
	}

	// 4. Subscribe to changes
	sessCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	notifier := w.notifiers()
	events, err := notifier.Watch(sessCtx, folder)
	if err != nil {
		cancel()
		_ = notifier.Close()
		return nil, fmt.Errorf("watch folder: %w", err)
	}

	session := &watchSession{
		folder:   folder,
		notifier: notifier,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	w.session = session
	go w.run(sessCtx, session, events)

	w.log.Info("watching %s", folder)
	return result, nil
}

// Resume starts watching the configured corpus folder.
func (w *Watcher) Resume(ctx context.Context, opts driving.IndexOptions) (*domain.IndexingResult, error) {
	if w.settings == nil {
		return nil, domain.ErrFolderNotConfigured
	}
	folder, err := w.settings.GetSetting(ctx, domain.SettingCorpusFolder)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && folder == "") {
		return nil, domain.ErrFolderNotConfigured
	}
	if err != nil {
		return nil, fmt.Errorf("load corpus folder: %w", err)
	}
	return w.Start(ctx, folder, opts)
}

// Stop stops the running session and waits for it to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.session == nil {
		return domain.ErrWatcherNotRunning
	}
	w.stopLocked()
	return nil
}

// Running reports whether a folder is being watched.
func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session != nil
}

// Folder returns the watched folder, or "".
func (w *Watcher) Folder() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.session == nil {
		return ""
	}
	return w.session.folder
}

// Done is closed when the current session ends.
func (w *Watcher) Done() <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.session == nil {
		return nil
	}
	return w.session.done
}

// stopLocked ends the session. Caller holds mu.
func (w *Watcher) stopLocked() {
	s := w.session
	w.session = nil

	s.cancel()
	if err := s.notifier.Close(); err != nil {
		w.log.Warn("close notifier: %v", err)
	}
	<-s.done
	w.log.Info("stopped watching %s", s.folder)
}

// run feeds events to the indexer until the event channel closes.
// Failures are logged; the watch keeps going.
func (w *Watcher) run(ctx context.Context, s *watchSession, events <-chan domain.FileEvent) {
	defer close(s.done)

	for ev := range events {
		switch ev.Type {
		case domain.ChangeDeleted:
			if err := w.indexer.RemoveFile(ctx, ev.Path); err != nil {
				w.log.Warn("remove %s: %v", ev.Path, err)
				continue
			}
			w.log.Info("removed %s", ev.Path)

		default:
			status, err := w.indexer.IndexFile(ctx, ev.Path)
			if err != nil {
				// IndexFile already logged the failure.
				continue
			}
			if status != domain.FileUnchanged {
				w.log.Info("%s %s", status, ev.Path)
			}
		}
	}

	// The session may end on its own when the notifier fails.
	w.log.Debug("event loop for %s exited", s.folder)
}
