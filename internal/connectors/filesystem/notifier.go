// Package filesystem watches a corpus folder for changes to supported files.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
	"github.com/custodia-labs/sermonindex/internal/core/ports/driven"
	"github.com/custodia-labs/sermonindex/internal/logger"
)

// Ensure Notifier implements the interface.
var _ driven.FileNotifier = (*Notifier)(nil)

var log = logger.For("notifier")

// eventBuffer is the capacity of the outgoing event channel.
const eventBuffer = 64

// Notifier turns raw fsnotify events into debounced FileEvents.
// Each path waits for a quiet period before it is reported, so a file
// still being written is indexed once, after the last write.
type Notifier struct {
	debounce time.Duration
	filter   func(path string) bool

	mu      sync.Mutex
	root    string
	watcher *fsnotify.Watcher
	closed  bool
	done    chan struct{}
}

// New creates a notifier. filter selects the files worth reporting,
// typically the extractor registry's Supports. A nil filter accepts all.
func New(debounce time.Duration, filter func(path string) bool) *Notifier {
	if debounce <= 0 {
		debounce = domain.DefaultDebounce
	}
	if filter == nil {
		filter = func(string) bool { return true }
	}
	return &Notifier{
		debounce: debounce,
		filter:   filter,
		done:     make(chan struct{}),
	}
}

// Factory returns a driven.FileNotifierFactory for New.
func Factory(debounce time.Duration, filter func(path string) bool) driven.FileNotifierFactory {
	return func() driven.FileNotifier {
		return New(debounce, filter)
	}
}

// Watch starts watching root and every non-hidden directory beneath it.
// A notifier watches one root; create a new notifier for another folder.
func (n *Notifier) Watch(ctx context.Context, root string) (<-chan domain.FileEvent, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return nil, errors.New("notifier is closed")
	}
	if n.watcher != nil {
		return nil, fmt.Errorf("notifier already watching %s", n.root)
	}

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path error: %s is not a directory", root)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	n.root = root
	if _, err := n.addTree(w, root); err != nil {
		w.Close()
		return nil, err
	}
	n.watcher = w

	out := make(chan domain.FileEvent, eventBuffer)
	go n.loop(ctx, w, out)

	log.Debug("watching %s", root)
	return out, nil
}

// Close stops watching. Calling Close more than once is safe.
func (n *Notifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return nil
	}
	n.closed = true
	close(n.done)

	if n.watcher != nil {
		return n.watcher.Close()
	}
	return nil
}

// loop debounces raw events until ctx ends, Close is called or the
// watcher fails. It closes out on exit.
func (n *Notifier) loop(ctx context.Context, w *fsnotify.Watcher, out chan<- domain.FileEvent) {
	stop := make(chan struct{})
	ready := make(chan string)
	timers := make(map[string]*time.Timer)

	defer func() {
		close(stop)
		for _, t := range timers {
			t.Stop()
		}
		w.Close()
		close(out)
	}()

	schedule := func(path string) {
		if t, ok := timers[path]; ok {
			t.Reset(n.debounce)
			return
		}
		timers[path] = time.AfterFunc(n.debounce, func() {
			select {
			case ready <- path:
			case <-stop:
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-n.done:
			return

		case event, ok := <-w.Events:
			if !ok {
				return
			}
			for _, path := range n.handleFsEvent(w, event) {
				schedule(path)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Warn("watch error: %v", err)

		case path := <-ready:
			delete(timers, path)
			change, ok := n.classify(path)
			if !ok {
				continue
			}
			select {
			case out <- change:
			case <-ctx.Done():
				return
			case <-n.done:
				return
			}
		}
	}
}

// handleFsEvent returns the paths to schedule for one raw event.
// A new directory is added to the watch and its files are scheduled,
// since they may have been written before the watch existed.
func (n *Notifier) handleFsEvent(w *fsnotify.Watcher, event fsnotify.Event) []string {
	path := event.Name
	if n.hidden(path) {
		return nil
	}

	switch {
	case event.Has(fsnotify.Create):
		info, err := os.Stat(path)
		if err != nil {
			// Created and removed again before we looked.
			return nil
		}
		if info.IsDir() {
			files, err := n.addTree(w, path)
			if err != nil {
				log.Warn("watch new directory %s: %v", path, err)
			}
			return files
		}
		if n.filter(path) {
			return []string{path}
		}

	case event.Has(fsnotify.Write):
		if n.filter(path) {
			return []string{path}
		}

	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		// A removed directory has no extension; its documents are removed
		// by prefix when the event fires.
		if n.filter(path) || filepath.Ext(path) == "" {
			return []string{path}
		}
	}
	return nil
}

// classify turns a quiet path into an event by looking at the disk.
func (n *Notifier) classify(path string) (domain.FileEvent, bool) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return domain.FileEvent{Type: domain.ChangeDeleted, Path: path}, true
	case err != nil:
		log.Warn("stat %s: %v", path, err)
		return domain.FileEvent{}, false
	case info.IsDir(), !info.Mode().IsRegular():
		return domain.FileEvent{}, false
	case !n.filter(path):
		return domain.FileEvent{}, false
	default:
		return domain.FileEvent{Type: domain.ChangeUpserted, Path: path}, true
	}
}

// addTree watches dir and its non-hidden subdirectories and returns the
// supported files found in them.
func (n *Notifier) addTree(w *fsnotify.Watcher, dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			log.Warn("walk %s: %v", path, err)
			return nil
		}
		if path != n.root && n.hidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if err := w.Add(path); err != nil {
				return fmt.Errorf("watch %s: %w", path, err)
			}
			return nil
		}
		if n.filter(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// hidden reports whether path lies in a dot-directory or is a dotfile,
// looking only at the part below the watched root.
func (n *Notifier) hidden(path string) bool {
	rel, err := filepath.Rel(n.root, path)
	if err != nil {
		return isHidden(path)
	}
	return isHidden(rel)
}

// isHidden checks whether any path component starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if len(part) > 1 && part[0] == '.' && part != ".." {
			return true
		}
	}
	return false
}
