package services

import (
	"context"
	"crypto/md5" //nolint:gosec // change detection, not security
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
	"github.com/custodia-labs/sermonindex/internal/core/ports/driven"
	"github.com/custodia-labs/sermonindex/internal/core/ports/driving"
	"github.com/custodia-labs/sermonindex/internal/logger"
)

// Ensure Indexer implements the interface.
var _ driving.Indexer = (*Indexer)(nil)

// Indexer keeps the corpus store in sync with the files of a folder.
//
// At most one batch run is active at a time. Per-file work from the batch
// loop and from the watcher's single-file path is serialised, so the two
// never write the same document concurrently.
type Indexer struct {
	store      driven.CorpusStore
	extractors driven.ExtractorRegistry
	cancels    *CancellationRegistry

	running atomic.Bool
	writeMu sync.Mutex
	log     logger.Scope
}

// NewIndexer creates an indexer.
func NewIndexer(store driven.CorpusStore, extractors driven.ExtractorRegistry) *Indexer {
	return &Indexer{
		store:      store,
		extractors: extractors,
		cancels:    NewCancellationRegistry(),
		log:        logger.For("indexer"),
	}
}

// IndexFolder scans folder and indexes every supported file.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (ix *Indexer) IndexFolder(ctx context.Context, folder string, opts driving.IndexOptions) (*domain.IndexingResult, error) {
	if !ix.running.CompareAndSwap(false, true) {
		return nil, domain.ErrIndexingInProgress
	}
	defer ix.running.Store(false)

	token := ix.cancels.Begin()
	defer ix.cancels.Finish(token)

	logger.Section("Indexing")

	// 1. Enumerate supported files
	root, err := filepath.Abs(folder)
	if err != nil {
		return nil, fmt.Errorf("resolve folder: %w", err)
	}
	files, err := ix.scan(root)
	if err != nil {
		return nil, err
	}
	ix.log.Info("run %d: %d supported files under %s", token.ID(), len(files), root)

	// 2. Process files one at a time, in enumeration order
	result := &domain.IndexingResult{Errors: []string{}}
	for i, path := range files {
		if token.IsCancelled() || ctx.Err() != nil {
			ix.log.Info("run %d cancelled after %d of %d files", token.ID(), i, len(files))
			result.Cancelled = true
			break
		}

		emitProgress(opts.Progress, domain.IndexingProgress{
			Total:       len(files),
			Current:     i + 1,
			CurrentFile: filepath.Base(path),
		})

		// A file that has started is finished even if ctx is cancelled.
		status, err := ix.indexFile(context.WithoutCancel(ctx), path, opts.Force)
		if err != nil {
			ix.log.Warn("%s: %v", path, err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", filepath.Base(path), err))
			continue
		}
		switch status {
		case domain.FileAdded:
			result.Added++
		case domain.FileUpdated:
			result.Updated++
		default:
			result.Unchanged++
		}
	}

	// 3. Remove documents whose file disappeared. A cancelled run has not
	// rescanned everything, so it removes nothing.
	if !result.Cancelled {
		removed, errs, err := ix.reconcile(ctx, root)
		if err != nil {
			return nil, err
		}
		result.Removed = removed
		result.Errors = append(result.Errors, errs...)
	}

	ix.log.Info("run %d: %d added, %d updated, %d removed, %d unchanged, %d errors",
		token.ID(), result.Added, result.Updated, result.Removed, result.Unchanged, len(result.Errors))
	return result, nil
}

// IndexFile indexes one file. Failures are logged and returned.
func (ix *Indexer) IndexFile(ctx context.Context, path string) (domain.FileStatus, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return domain.FileUnchanged, fmt.Errorf("resolve path: %w", err)
	}
	status, err := ix.indexFile(ctx, path, false)
	if err != nil {
		ix.log.Warn("%s: %v", path, err)
		return domain.FileUnchanged, err
	}
	ix.log.Debug("%s: %s", path, status)
	return status, nil
}

// RemoveFile deletes the documents backed by path. When path was a
// directory every document beneath it is removed.
func (ix *Indexer) RemoveFile(ctx context.Context, path string) error {
	path, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	ix.writeMu.Lock()
	defer ix.writeMu.Unlock()

	docs, err := ix.store.ListUnderFolder(ctx, path)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}
	for _, doc := range docs {
		if err := ix.store.DeleteDocument(ctx, doc.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("delete document %d: %w", doc.ID, err)
		}
		ix.log.Debug("removed %s", doc.Path)
	}
	return nil
}

// Cancel cancels the current batch run, if any.
func (ix *Indexer) Cancel() {
	if ix.cancels.Cancel() {
		ix.log.Info("cancellation requested for run %d", ix.cancels.Current())
	}
}

// Running reports whether a batch run is active.
func (ix *Indexer) Running() bool {
	return ix.running.Load()
}

// indexFile hashes, extracts and writes one file.
func (ix *Indexer) indexFile(ctx context.Context, path string, force bool) (domain.FileStatus, error) {
	ix.writeMu.Lock()
	defer ix.writeMu.Unlock()

	hash, err := hashFile(path)
	if err != nil {
		return domain.FileUnchanged, err
	}

	existing, err := ix.store.FindByPath(ctx, path)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.FileUnchanged, fmt.Errorf("find document: %w", err)
	}
	if existing != nil && existing.Hash == hash && !force {
		return domain.FileUnchanged, nil
	}

	ext, err := ix.extractors.Extract(ctx, path)
	if err != nil {
		return domain.FileUnchanged, err
	}

	title := strings.TrimSpace(ext.Title)
	if title == "" {
		title = stem(path)
	}
	wordCount := domain.CountWords(ext.Content)

	if existing == nil {
		_, err := ix.store.InsertDocument(ctx, &domain.Document{
			Path:      path,
			Title:     title,
			Content:   ext.Content,
			Date:      ext.Date,
			Reference: ext.Reference,
			WordCount: wordCount,
			Hash:      hash,
		})
		if err != nil {
			return domain.FileUnchanged, fmt.Errorf("insert document: %w", err)
		}
		return domain.FileAdded, nil
	}

	err = ix.store.UpdateDocument(ctx, existing.ID, domain.DocumentPatch{
		Title:     &title,
		Content:   &ext.Content,
		Date:      &ext.Date,
		Reference: &ext.Reference,
		WordCount: &wordCount,
		Hash:      &hash,
	})
	if err != nil {
		return domain.FileUnchanged, fmt.Errorf("update document: %w", err)
	}
	return domain.FileUpdated, nil
}

// scan walks root and returns the supported, non-hidden files in lexical
// order. Only a failure on root itself is returned.
func (ix *Indexer) scan(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan folder: %w: %s is not a directory", domain.ErrInvalidInput, root)
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			ix.log.Warn("skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && ix.extractors.Supports(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan folder: %w", err)
	}
	return files, nil
}

// reconcile deletes documents under root whose file no longer exists.
func (ix *Indexer) reconcile(ctx context.Context, root string) (int, []string, error) {
	docs, err := ix.store.ListUnderFolder(ctx, root)
	if err != nil {
		return 0, nil, fmt.Errorf("list documents: %w", err)
	}

	ix.writeMu.Lock()
	defer ix.writeMu.Unlock()

	removed := 0
	var errs []string
	for _, doc := range docs {
		if _, err := os.Stat(doc.Path); !errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := ix.store.DeleteDocument(ctx, doc.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			errs = append(errs, fmt.Sprintf("%s: %v", filepath.Base(doc.Path), err))
			continue
		}
		ix.log.Debug("removed %s", doc.Path)
		removed++
	}
	return removed, errs, nil
}

// emitProgress sends without blocking; a slow consumer misses events.
func emitProgress(ch chan<- domain.IndexingProgress, p domain.IndexingProgress) {
	if ch == nil {
		return
	}
	select {
	case ch <- p:
	default:
	}
}

// hashFile returns the hex MD5 of the file bytes.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	h := md5.New() //nolint:gosec // change detection, not security
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
