package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
	"github.com/custodia-labs/sermonindex/internal/core/ports/driven"
)

// ==================== Corpus Store ====================

// corpusStore implements driven.CorpusStore.
type corpusStore struct {
	store *Store
}

var _ driven.CorpusStore = (*corpusStore)(nil)

// InsertDocument stores a new document. The FTS mirror is filled by trigger.
func (s *corpusStore) InsertDocument(ctx context.Context, doc *domain.Document) (int64, error) {
	if doc == nil || doc.Path == "" {
		return 0, fmt.Errorf("%w: document path is required", domain.ErrInvalidInput)
	}

	ts := now()
	if doc.IndexedAt.IsZero() {
		doc.IndexedAt = ts
	}
	doc.UpdatedAt = ts

	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO documents (path, title, content, date, reference, word_count, hash, indexed_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.Path, doc.Title, doc.Content, nullable(doc.Date), nullable(doc.Reference),
		doc.WordCount, doc.Hash, doc.IndexedAt, doc.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("inserting document %s: %w", doc.Path, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading document id: %w", err)
	}
	doc.ID = id
	return id, nil
}

// UpdateDocument writes the non-nil fields of patch. Column names come from
// a fixed allow-list, never from caller input.
func (s *corpusStore) UpdateDocument(ctx context.Context, id int64, patch domain.DocumentPatch) error {
	if patch.IsEmpty() {
		return nil
	}

	var sets []string
	var args []any
	add := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if patch.Path != nil {
		add("path", *patch.Path)
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Content != nil {
		add("content", *patch.Content)
	}
	if patch.Date != nil {
		add("date", nullable(*patch.Date))
	}
	if patch.Reference != nil {
		add("reference", nullable(*patch.Reference))
	}
	if patch.WordCount != nil {
		add("word_count", *patch.WordCount)
	}
	if patch.Hash != nil {
		add("hash", *patch.Hash)
	}
	add("updated_at", now())
	args = append(args, id)

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.ExecContext(ctx,
		"UPDATE documents SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("updating document %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}

	// A new text invalidates the vector computed from the old one.
	if patch.Content != nil {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM document_embeddings WHERE document_id = ?", id); err != nil {
			return fmt.Errorf("invalidating embedding %d: %w", id, err)
		}
	}

	return tx.Commit()
}

// DeleteDocument removes a document. Its embedding goes with it by cascade.
func (s *corpusStore) DeleteDocument(ctx context.Context, id int64) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *corpusStore) GetDocument(ctx context.Context, id int64) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents d WHERE d.id = ?", id)
	return scanDocument(row)
}

// FindByPath retrieves a document by its path.
func (s *corpusStore) FindByPath(ctx context.Context, path string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents d WHERE d.path = ?", path)
	return scanDocument(row)
}

// ListDocuments returns every document, newest first with undated last.
func (s *corpusStore) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, "SELECT "+documentColumns+` FROM documents d
		ORDER BY d.date IS NULL, d.date DESC, d.title ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	return scanDocuments(rows)
}

// ListUnderFolder returns documents stored at or beneath folder.
func (s *corpusStore) ListUnderFolder(ctx context.Context, folder string) ([]domain.Document, error) {
	folder = filepath.Clean(folder)
	prefix := folder
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}

	// substr compares characters, so no LIKE escaping is needed for the path.
	rows, err := s.store.db.QueryContext(ctx, "SELECT "+documentColumns+` FROM documents d
		WHERE d.path = ? OR substr(d.path, 1, ?) = ?
		ORDER BY d.path`, folder, utf8.RuneCountInString(prefix), prefix)
	if err != nil {
		return nil, fmt.Errorf("querying documents under %s: %w", folder, err)
	}
	return scanDocuments(rows)
}

// RecentDocuments returns the most recently written documents.
func (s *corpusStore) RecentDocuments(ctx context.Context, limit int) ([]domain.Document, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.store.db.QueryContext(ctx, "SELECT "+documentColumns+` FROM documents d
		ORDER BY d.updated_at DESC, d.id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent documents: %w", err)
	}
	return scanDocuments(rows)
}

// CountDocuments returns the number of documents.
func (s *corpusStore) CountDocuments(ctx context.Context) (int, error) {
	var n int
	if err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return n, nil
}

// Stats aggregates the corpus.
func (s *corpusStore) Stats(ctx context.Context) (*domain.CorpusStats, error) {
	var stats domain.CorpusStats
	var earliest, latest sql.NullString

	err := s.store.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(word_count), 0), MIN(date), MAX(date)
		FROM documents
	`).Scan(&stats.Documents, &stats.Words, &earliest, &latest)
	if err != nil {
		return nil, fmt.Errorf("computing corpus stats: %w", err)
	}

	stats.EarliestDate = earliest.String
	stats.LatestDate = latest.String
	return &stats, nil
}
