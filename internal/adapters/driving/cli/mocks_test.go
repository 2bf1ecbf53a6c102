package cli

import (
	"bytes"
	"context"
	"sort"
	"testing"
	"time"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
	"github.com/custodia-labs/sermonindex/internal/core/ports/driving"
)

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		resetFlags()
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores flag variables, which persist across executions.
func resetFlags() {
	verbose = false
	indexForce = false
	searchMode = string(domain.SearchModeHybrid)
	searchLimit = 0
	searchOutput = outputText
	documentOutput = outputText
	documentRecentLimit = 10
	documentShowContent = false
	chatDocs = nil
}

// testServices holds the fakes installed by setupTestServices.
type testServices struct {
	indexer    *fakeIndexer
	watcher    *fakeWatcher
	search     *fakeSearch
	documents  *fakeDocuments
	embeddings *fakeEmbeddings
	chat       *fakeChat
	settings   *fakeSettings
}

// setupTestServices installs fakes and returns them with a restore func.
func setupTestServices() (*testServices, func()) {
	old := Services{
		Indexer:    indexer,
		Watcher:    watcher,
		Search:     searchService,
		Documents:  documentService,
		Embeddings: embeddingIndexer,
		Chat:       chatService,
		Settings:   settingsService,
	}

	ts := &testServices{
		indexer: &fakeIndexer{result: &domain.IndexingResult{Added: 2, Unchanged: 1, Errors: []string{}}},
		watcher: &fakeWatcher{result: &domain.IndexingResult{Added: 1, Errors: []string{}}},
		search:  &fakeSearch{},
		documents: &fakeDocuments{docs: []domain.Document{
			testDocument(1, "La grâce suffisante", "2024-03-10", "2 Corinthiens 12:9"),
			testDocument(2, "Marcher par la foi", "", ""),
		}},
		embeddings: &fakeEmbeddings{stats: &domain.EmbeddingStats{Total: 3, Indexed: 1}},
		chat:       &fakeChat{},
		settings:   newFakeSettings(),
	}
	SetServices(Services{
		Indexer:    ts.indexer,
		Watcher:    ts.watcher,
		Search:     ts.search,
		Documents:  ts.documents,
		Embeddings: ts.embeddings,
		Chat:       ts.chat,
		Settings:   ts.settings,
	})

	return ts, func() { SetServices(old) }
}

func testDocument(id int64, title, date, ref string) domain.Document {
	return domain.Document{
		ID:        id,
		Path:      "/sermons/" + title + ".md",
		Title:     title,
		Content:   "Contenu de " + title,
		Date:      date,
		Reference: ref,
		WordCount: 3,
		IndexedAt: time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC),
	}
}

type fakeIndexer struct {
	folder string
	opts   driving.IndexOptions
	result *domain.IndexingResult
	err    error
}

func (f *fakeIndexer) IndexFolder(_ context.Context, folder string, opts driving.IndexOptions) (*domain.IndexingResult, error) {
	f.folder = folder
	f.opts = opts
	if opts.Progress != nil {
		opts.Progress <- domain.IndexingProgress{Total: 1, Current: 1, CurrentFile: "a.md"}
	}
	return f.result, f.err
}

func (f *fakeIndexer) IndexFile(context.Context, string) (domain.FileStatus, error) {
	return domain.FileAdded, nil
}

func (f *fakeIndexer) RemoveFile(context.Context, string) error { return nil }
func (f *fakeIndexer) Cancel()                                  {}
func (f *fakeIndexer) Running() bool                            { return false }

type fakeWatcher struct {
	folder  string
	resumed bool
	running bool
	stopped bool
	result  *domain.IndexingResult
	err     error
}

func (f *fakeWatcher) Start(_ context.Context, folder string, _ driving.IndexOptions) (*domain.IndexingResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.folder = folder
	f.running = true
	return f.result, nil
}

func (f *fakeWatcher) Resume(ctx context.Context, opts driving.IndexOptions) (*domain.IndexingResult, error) {
	f.resumed = true
	return f.Start(ctx, "/corpus", opts)
}

func (f *fakeWatcher) Stop() error {
	if !f.running {
		return domain.ErrWatcherNotRunning
	}
	f.running = false
	f.stopped = true
	return nil
}

func (f *fakeWatcher) Running() bool  { return f.running }
func (f *fakeWatcher) Folder() string { return f.folder }

// Done is already closed so the watch command returns at once.
func (f *fakeWatcher) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type fakeSearch struct {
	lastQuery string
	lastLimit int
	err       error
}

func (f *fakeSearch) FullText(_ context.Context, query string, limit int) ([]domain.TextHit, error) {
	f.lastQuery, f.lastLimit = query, limit
	if f.err != nil {
		return nil, f.err
	}
	return []domain.TextHit{{
		Document: testDocument(1, "La grâce suffisante", "2024-03-10", ""),
		Rank:     -2.5,
		Snippet:  "ma <mark>grâce</mark> te suffit",
	}}, nil
}

func (f *fakeSearch) Semantic(_ context.Context, query string, limit int) ([]domain.VectorHit, error) {
	f.lastQuery, f.lastLimit = query, limit
	if f.err != nil {
		return nil, f.err
	}
	return []domain.VectorHit{{Document: testDocument(2, "Marcher par la foi", "", ""), Distance: 0.25}}, nil
}

func (f *fakeSearch) Hybrid(_ context.Context, query string, limit int) ([]domain.HybridHit, error) {
	f.lastQuery, f.lastLimit = query, limit
	if f.err != nil {
		return nil, f.err
	}
	return []domain.HybridHit{
		{Document: testDocument(1, "La grâce suffisante", "", ""), Score: 0.032, MatchType: domain.MatchBoth, Snippet: "<mark>grâce</mark>"},
		{Document: testDocument(2, "Marcher par la foi", "", ""), Score: 0.016, MatchType: domain.MatchSemantic},
	}, nil
}

func (f *fakeSearch) ByReference(_ context.Context, ref string) ([]domain.Document, error) {
	f.lastQuery = ref
	return []domain.Document{
		testDocument(1, "La grâce suffisante", "", "2 Corinthiens 12:9"),
		testDocument(3, "Paul à Corinthe", "", "2 Corinthiens 1:3"),
	}, f.err
}

type fakeDocuments struct {
	docs      []domain.Document
	deleted   int64
	lastLimit int
	err       error
}

func (f *fakeDocuments) Get(_ context.Context, id int64) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.docs {
		if f.docs[i].ID == id {
			return &f.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeDocuments) List(context.Context) ([]domain.Document, error) {
	return f.docs, f.err
}

func (f *fakeDocuments) Recent(_ context.Context, limit int) ([]domain.Document, error) {
	f.lastLimit = limit
	return f.docs[:min(limit, len(f.docs))], f.err
}

func (f *fakeDocuments) Delete(_ context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	if id > int64(len(f.docs)) {
		return domain.ErrNotFound
	}
	f.deleted = id
	return nil
}

func (f *fakeDocuments) Stats(context.Context) (*domain.CorpusStats, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.CorpusStats{Documents: 2, Words: 6, EarliestDate: "2023-01-08", LatestDate: "2024-03-10"}, nil
}

type fakeEmbeddings struct {
	result *domain.EmbeddingRunResult
	stats  *domain.EmbeddingStats
	err    error
}

func (f *fakeEmbeddings) IndexMissing(context.Context) (*domain.EmbeddingRunResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.result == nil {
		return &domain.EmbeddingRunResult{Processed: 2, Errors: []string{}}, nil
	}
	return f.result, nil
}

func (f *fakeEmbeddings) Stats(context.Context) (*domain.EmbeddingStats, error) {
	return f.stats, f.err
}

type fakeChat struct {
	lastRequest domain.ChatRequest
	savedKey    string
	testedKey   string
	hasKey      bool
	deleted     bool
	err         error
}

func (f *fakeChat) Ask(_ context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	f.lastRequest = req
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ChatResponse{
		Response:   "La grâce est un don immérité.",
		TokensUsed: 150,
		Sources:    []domain.ChatSource{{ID: 1, Title: "La grâce suffisante", Snippet: "Ma grâce te suffit"}},
	}, nil
}

func (f *fakeChat) Summarise(_ context.Context, id int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if id != 1 {
		return "", domain.ErrNotFound
	}
	return "Un sermon sur la grâce.", nil
}

func (f *fakeChat) Available() bool { return f.hasKey }

func (f *fakeChat) TestKey(_ context.Context, key string) error {
	f.testedKey = key
	return f.err
}

func (f *fakeChat) SaveKey(_ context.Context, key string) error {
	if f.err != nil {
		return f.err
	}
	f.savedKey = key
	f.hasKey = true
	return nil
}

func (f *fakeChat) DeleteKey() error {
	f.deleted = true
	f.hasKey = false
	return f.err
}

func (f *fakeChat) HasKey() bool { return f.hasKey }

type fakeSettings struct {
	values map[string]string
	folder string
	err    error
}

func newFakeSettings() *fakeSettings {
	return &fakeSettings{values: map[string]string{
		"search.locale":      "fr",
		"embedding.provider": "ollama",
	}}
}

func (f *fakeSettings) Get() domain.AppSettings { return domain.DefaultAppSettings() }

func (f *fakeSettings) Set(key, value string) error {
	if f.err != nil {
		return f.err
	}
	if !f.known(key) {
		return domain.ErrConfigInvalid
	}
	f.values[key] = value
	return nil
}

func (f *fakeSettings) Unset(key string) error {
	if !f.known(key) {
		return domain.ErrConfigInvalid
	}
	delete(f.values, key)
	return nil
}

func (f *fakeSettings) Keys() []string {
	keys := []string{"embedding.api_key", "embedding.provider", "llm.model", "search.locale"}
	sort.Strings(keys)
	return keys
}

func (f *fakeSettings) Value(key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}

func (f *fakeSettings) ConfigPath() string { return "/home/test/.sermonindex/config.toml" }

func (f *fakeSettings) CorpusFolder(context.Context) (string, error) {
	if f.folder == "" {
		return "", domain.ErrFolderNotConfigured
	}
	return f.folder, nil
}

func (f *fakeSettings) SetCorpusFolder(_ context.Context, folder string) error {
	f.folder = folder
	return f.err
}

func (f *fakeSettings) known(key string) bool {
	for _, k := range f.Keys() {
		if k == key {
			return true
		}
	}
	return false
}
