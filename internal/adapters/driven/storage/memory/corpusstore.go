package memory

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
	"github.com/custodia-labs/sermonindex/internal/core/ports/driven"
)

// Ensure CorpusStore implements the interface.
var _ driven.CorpusStore = (*CorpusStore)(nil)

// CorpusStore is an in-memory implementation of driven.CorpusStore.
// Full-text search is a naive prefix scan with accent folding; ranks are
// negated match counts so that, like bm25, lower is better.
type CorpusStore struct {
	mu         sync.RWMutex
	nextID     int64
	documents  map[int64]domain.Document
	embeddings map[int64][]float32
	stop       domain.StopWords
}

// NewCorpusStore creates a new in-memory corpus store.
func NewCorpusStore() *CorpusStore {
	return &CorpusStore{
		documents:  make(map[int64]domain.Document),
		embeddings: make(map[int64][]float32),
		stop:       domain.StopWordsFor(domain.DefaultSearchLocale),
	}
}

// InsertDocument stores a new document.
func (s *CorpusStore) InsertDocument(_ context.Context, doc *domain.Document) (int64, error) {
	if doc == nil || doc.Path == "" {
		return 0, domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.documents {
		if existing.Path == doc.Path {
			return 0, domain.ErrInvalidInput
		}
	}

	s.nextID++
	now := time.Now().UTC()
	doc.ID = s.nextID
	if doc.IndexedAt.IsZero() {
		doc.IndexedAt = now
	}
	doc.UpdatedAt = now
	s.documents[doc.ID] = *doc
	return doc.ID, nil
}

// UpdateDocument applies a patch.
func (s *CorpusStore) UpdateDocument(_ context.Context, id int64, patch domain.DocumentPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[id]
	if !ok {
		return domain.ErrNotFound
	}
	if patch.IsEmpty() {
		return nil
	}
	patch.Apply(&doc)
	doc.UpdatedAt = time.Now().UTC()
	s.documents[id] = doc
	if patch.Content != nil {
		delete(s.embeddings, id)
	}
	return nil
}

// DeleteDocument removes a document and its embedding.
func (s *CorpusStore) DeleteDocument(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.documents, id)
	delete(s.embeddings, id)
	return nil
}

// GetDocument retrieves a document by ID.
func (s *CorpusStore) GetDocument(_ context.Context, id int64) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// FindByPath retrieves a document by path.
func (s *CorpusStore) FindByPath(_ context.Context, path string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, doc := range s.documents {
		if doc.Path == path {
			return &doc, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ListDocuments returns every document, newest first with undated last.
func (s *CorpusStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	docs := s.snapshot(func(domain.Document) bool { return true })
	sortByDate(docs)
	return docs, nil
}

// ListUnderFolder returns documents stored at or beneath folder.
func (s *CorpusStore) ListUnderFolder(_ context.Context, folder string) ([]domain.Document, error) {
	folder = filepath.Clean(folder)
	prefix := strings.TrimSuffix(folder, string(filepath.Separator)) + string(filepath.Separator)
	docs := s.snapshot(func(d domain.Document) bool {
		return d.Path == folder || strings.HasPrefix(d.Path, prefix)
	})
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}

// RecentDocuments returns the most recently written documents.
func (s *CorpusStore) RecentDocuments(_ context.Context, limit int) ([]domain.Document, error) {
	docs := s.snapshot(func(domain.Document) bool { return true })
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].UpdatedAt.Equal(docs[j].UpdatedAt) {
			return docs[i].UpdatedAt.After(docs[j].UpdatedAt)
		}
		return docs[i].ID > docs[j].ID
	})
	if limit < len(docs) {
		docs = docs[:max(limit, 0)]
	}
	return docs, nil
}

// CountDocuments returns the number of documents.
func (s *CorpusStore) CountDocuments(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents), nil
}

// Stats aggregates the corpus.
func (s *CorpusStore) Stats(_ context.Context) (*domain.CorpusStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := &domain.CorpusStats{Documents: len(s.documents)}
	for _, doc := range s.documents {
		stats.Words += doc.WordCount
		if doc.Date == "" {
			continue
		}
		if stats.EarliestDate == "" || doc.Date < stats.EarliestDate {
			stats.EarliestDate = doc.Date
		}
		if doc.Date > stats.LatestDate {
			stats.LatestDate = doc.Date
		}
	}
	return stats, nil
}

// FullTextSearch requires every query term to prefix-match a word of the
// title, content or reference.
func (s *CorpusStore) FullTextSearch(_ context.Context, query string, limit int) ([]domain.TextHit, error) {
	terms := domain.QueryTerms(query, s.stop)
	hits := []domain.TextHit{}
	if len(terms) == 0 || limit <= 0 {
		return hits, nil
	}
	for i := range terms {
		terms[i] = fold(terms[i])
	}

	for _, doc := range s.snapshot(func(domain.Document) bool { return true }) {
		words := tokenize(doc.Title + " " + doc.Content + " " + doc.Reference)
		total := 0
		for _, term := range terms {
			n := countPrefix(words, term)
			if n == 0 {
				total = 0
				break
			}
			total += n
		}
		if total == 0 {
			continue
		}
		hits = append(hits, domain.TextHit{
			Document: doc,
			Rank:     -float64(total),
			Snippet:  highlight(doc.Content, terms),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Rank != hits[j].Rank {
			return hits[i].Rank < hits[j].Rank
		}
		return hits[i].Document.ID < hits[j].Document.ID
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// SearchByReference substring-matches the reference field, ignoring case.
func (s *CorpusStore) SearchByReference(_ context.Context, ref string) ([]domain.Document, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if ref == "" {
		return []domain.Document{}, nil
	}
	docs := s.snapshot(func(d domain.Document) bool {
		return strings.Contains(strings.ToLower(d.Reference), ref)
	})
	sortByDate(docs)
	return docs, nil
}

// VectorSearch returns the nearest documents by cosine distance.
func (s *CorpusStore) VectorSearch(_ context.Context, query []float32, limit int) ([]domain.VectorHit, error) {
	s.mu.RLock()
	hits := []domain.VectorHit{}
	for id, vec := range s.embeddings {
		dist, err := domain.CosineDistance(query, vec)
		if err != nil {
			continue
		}
		hits = append(hits, domain.VectorHit{Document: s.documents[id], Distance: dist})
	}
	s.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].Document.ID < hits[j].Document.ID
	})
	if len(hits) > limit {
		hits = hits[:max(limit, 0)]
	}
	return hits, nil
}

// UpsertEmbedding stores or replaces the embedding of a document.
func (s *CorpusStore) UpsertEmbedding(_ context.Context, id int64, vector []float32) error {
	if len(vector) == 0 {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[id]; !ok {
		return domain.ErrNotFound
	}
	s.embeddings[id] = append([]float32(nil), vector...)
	return nil
}

// DeleteEmbedding removes the embedding of a document.
func (s *CorpusStore) DeleteEmbedding(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.embeddings, id)
	return nil
}

// HasEmbedding reports whether a document has an embedding.
func (s *CorpusStore) HasEmbedding(_ context.Context, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.embeddings[id]
	return ok, nil
}

// DocumentsWithoutEmbedding returns documents with no embedding, by ID.
func (s *CorpusStore) DocumentsWithoutEmbedding(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	var docs []domain.Document
	for id, doc := range s.documents {
		if _, ok := s.embeddings[id]; !ok {
			docs = append(docs, doc)
		}
	}
	s.mu.RUnlock()
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

// EmbeddingStats reports embedding coverage.
func (s *CorpusStore) EmbeddingStats(_ context.Context) (*domain.EmbeddingStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &domain.EmbeddingStats{Total: len(s.documents), Indexed: len(s.embeddings)}, nil
}

func (s *CorpusStore) snapshot(keep func(domain.Document) bool) []domain.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]domain.Document, 0, len(s.documents))
	for _, doc := range s.documents {
		if keep(doc) {
			docs = append(docs, doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs
}

func sortByDate(docs []domain.Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		a, b := docs[i], docs[j]
		if (a.Date == "") != (b.Date == "") {
			return a.Date != ""
		}
		if a.Date != b.Date {
			return a.Date > b.Date
		}
		return a.Title < b.Title
	})
}

// fold lowercases and strips combining marks.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

func tokenize(s string) []string {
	return strings.FieldsFunc(fold(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func countPrefix(words []string, term string) int {
	n := 0
	for _, w := range words {
		if strings.HasPrefix(w, term) {
			n++
		}
	}
	return n
}

// highlight wraps the content words matching a term in <mark> tags.
func highlight(content string, terms []string) string {
	words := strings.Fields(content)
	for i, w := range words {
		for _, tok := range tokenize(w) {
			if matchesAny(tok, terms) {
				words[i] = "<mark>" + w + "</mark>"
				break
			}
		}
	}
	return strings.Join(words, " ")
}

func matchesAny(word string, terms []string) bool {
	for _, t := range terms {
		if strings.HasPrefix(word, t) {
			return true
		}
	}
	return false
}
