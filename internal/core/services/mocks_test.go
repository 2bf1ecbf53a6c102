package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
	"github.com/custodia-labs/sermonindex/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockRegistry implements driven.ExtractorRegistry over plain text files.
type mockRegistry struct {
	mu        sync.Mutex
	calls     []string
	fail      map[string]error
	onExtract func(path string)
}

func (m *mockRegistry) Extract(_ context.Context, path string) (*domain.Extraction, error) {
	m.mu.Lock()
	m.calls = append(m.calls, filepath.Base(path))
	hook := m.onExtract
	err := m.fail[filepath.Base(path)]
	m.mu.Unlock()

	if hook != nil {
		hook(path)
	}
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &domain.Extraction{Content: string(data)}, nil
}

func (m *mockRegistry) Supports(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".txt", ".pdf":
		return true
	default:
		return false
	}
}

func (m *mockRegistry) Extensions() []string {
	return []string{".md", ".pdf", ".txt"}
}

func (m *mockRegistry) extracted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// mockEmbeddingService implements driven.EmbeddingService for testing.
type mockEmbeddingService struct {
	mu        sync.Mutex
	inputs    []string
	vectors   map[string][]float32
	failOn    string
	embedErr  error
	pingErr   error
	pings     atomic.Int32
	pingGate  chan struct{}
	closed    bool
	dimension int
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputs = append(m.inputs, text)

	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if m.failOn != "" && strings.Contains(text, m.failOn) {
		return nil, errors.New("model rejected input")
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	return []float32{float32(len([]rune(text))), 1}, nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	if m.dimension == 0 {
		return 2
	}
	return m.dimension
}

func (m *mockEmbeddingService) ModelName() string { return "mock-embed" }

func (m *mockEmbeddingService) Ping(_ context.Context) error {
	m.pings.Add(1)
	if m.pingGate != nil {
		<-m.pingGate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pingErr
}

func (m *mockEmbeddingService) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockEmbeddingService) recorded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.inputs...)
}

// mockLLM implements driven.LLMService for testing.
type mockLLM struct {
	mu         sync.Mutex
	system     string
	turns      []domain.ChatMessage
	opts       driven.CompletionOptions
	completion *domain.Completion
	err        error
	pingErr    error
}

func (m *mockLLM) Complete(
	_ context.Context,
	system string,
	turns []domain.ChatMessage,
	opts driven.CompletionOptions,
) (*domain.Completion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.system = system
	m.turns = append([]domain.ChatMessage(nil), turns...)
	m.opts = opts
	if m.err != nil {
		return nil, m.err
	}
	if m.completion == nil {
		return &domain.Completion{Text: "ok"}, nil
	}
	return m.completion, nil
}

func (m *mockLLM) ModelName() string { return "mock-llm" }

func (m *mockLLM) Ping(_ context.Context) error { return m.pingErr }

// factoryFor returns an LLM factory that hands out llm for any non-empty key.
func factoryFor(llm *mockLLM) driven.LLMFactory {
	return func(apiKey string) driven.LLMService {
		if apiKey == "" {
			return nil
		}
		return llm
	}
}

// mockCredentials implements driven.CredentialStore for testing.
type mockCredentials struct {
	key         string
	unavailable bool
}

func (m *mockCredentials) Available() bool { return !m.unavailable }

func (m *mockCredentials) Get() (string, error) {
	if m.unavailable {
		return "", domain.ErrCredentialStoreUnavailable
	}
	if m.key == "" {
		return "", domain.ErrCredentialsMissing
	}
	return m.key, nil
}

func (m *mockCredentials) Set(secret string) error {
	m.key = secret
	return nil
}

func (m *mockCredentials) Delete() error {
	m.key = ""
	return nil
}

func (m *mockCredentials) Has() bool { return m.key != "" }

// mockPromptStore implements driven.PromptStore with fixed templates.
type mockPromptStore struct{}

func (mockPromptStore) Load(name string) (string, error) {
	switch name {
	case driven.PromptChatSystem:
		return "SYSTEM|%s|%s", nil
	case driven.PromptChatReferenced:
		return "REFERENCED|%s|%s", nil
	case driven.PromptSummarise:
		return "SUMMARISE", nil
	case driven.PromptSummariseRequest:
		return "Titre: %s\n\n%s", nil
	default:
		return "", domain.ErrNotFound
	}
}

func (mockPromptStore) Reload() {}

// fakeNotifier implements driven.FileNotifier; tests push events by hand.
type fakeNotifier struct {
	mu       sync.Mutex
	events   chan domain.FileEvent
	root     string
	closed   bool
	watchErr error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{events: make(chan domain.FileEvent, 16)}
}

func (n *fakeNotifier) Watch(ctx context.Context, root string) (<-chan domain.FileEvent, error) {
	if n.watchErr != nil {
		return nil, n.watchErr
	}
	n.mu.Lock()
	n.root = root
	n.mu.Unlock()

	out := make(chan domain.FileEvent)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-n.events:
				if !ok {
					return
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (n *fakeNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.closed {
		n.closed = true
		close(n.events)
	}
	return nil
}

func (n *fakeNotifier) isClosed() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.closed
}

// notifierRecorder hands out a fresh fake notifier per session.
type notifierRecorder struct {
	mu        sync.Mutex
	notifiers []*fakeNotifier
}

func (r *notifierRecorder) factory() driven.FileNotifier {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := newFakeNotifier()
	r.notifiers = append(r.notifiers, n)
	return n
}

func (r *notifierRecorder) last() *fakeNotifier {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.notifiers[len(r.notifiers)-1]
}

// --- Helpers ---

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
