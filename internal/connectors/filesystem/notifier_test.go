package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
)

const testDebounce = 50 * time.Millisecond

func textOnly(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".txt" || ext == ".md"
}

func startWatch(t *testing.T, dir string) (*Notifier, <-chan domain.FileEvent) {
	t.Helper()
	n := New(testDebounce, textOnly)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		_ = n.Close()
	})

	events, err := n.Watch(ctx, dir)
	require.NoError(t, err)
	return n, events
}

func nextEvent(t *testing.T, events <-chan domain.FileEvent) domain.FileEvent {
	t.Helper()
	select {
	case ev, ok := <-events:
		require.True(t, ok, "event channel closed")
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for file event")
		return domain.FileEvent{}
	}
}

func assertNoEvent(t *testing.T, events <-chan domain.FileEvent, wait time.Duration) {
	t.Helper()
	select {
	case ev := <-events:
		t.Fatalf("unexpected event: %+v", ev)
	case <-time.After(wait):
	}
}

func TestNotifier_CreateModifyDelete(t *testing.T) {
	dir := t.TempDir()
	_, events := startWatch(t, dir)
	file := filepath.Join(dir, "sermon.md")

	require.NoError(t, os.WriteFile(file, []byte("# Grâce"), 0644))
	ev := nextEvent(t, events)
	assert.Equal(t, domain.FileEvent{Type: domain.ChangeUpserted, Path: file}, ev)

	require.NoError(t, os.WriteFile(file, []byte("# Grâce\n\nsuite"), 0644))
	ev = nextEvent(t, events)
	assert.Equal(t, domain.ChangeUpserted, ev.Type)

	require.NoError(t, os.Remove(file))
	ev = nextEvent(t, events)
	assert.Equal(t, domain.FileEvent{Type: domain.ChangeDeleted, Path: file}, ev)
}

func TestNotifier_DebouncesBurst(t *testing.T) {
	dir := t.TempDir()
	n := New(200*time.Millisecond, textOnly)
	t.Cleanup(func() { _ = n.Close() })
	events, err := n.Watch(t.Context(), dir)
	require.NoError(t, err)

	file := filepath.Join(dir, "long.txt")
	for i := range 3 {
		require.NoError(t, os.WriteFile(file, []byte(strings.Repeat("x", i+1)), 0644))
		time.Sleep(20 * time.Millisecond)
	}

	ev := nextEvent(t, events)
	assert.Equal(t, file, ev.Path)
	assertNoEvent(t, events, 400*time.Millisecond)
}

func TestNotifier_IgnoresHiddenAndUnsupported(t *testing.T) {
	dir := t.TempDir()
	_, events := startWatch(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".draft.md"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "image.png"), []byte("x"), 0644))

	assertNoEvent(t, events, 4*testDebounce)
}

func TestNotifier_WatchesNewDirectories(t *testing.T) {
	dir := t.TempDir()
	_, events := startWatch(t, dir)

	sub := filepath.Join(dir, "2024")
	require.NoError(t, os.Mkdir(sub, 0755))
	file := filepath.Join(sub, "pâques.txt")
	require.NoError(t, os.WriteFile(file, []byte("Il est ressuscité"), 0644))

	ev := nextEvent(t, events)
	assert.Equal(t, domain.FileEvent{Type: domain.ChangeUpserted, Path: file}, ev)
}

func TestNotifier_WatchesExistingSubdirectories(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "archives")
	require.NoError(t, os.Mkdir(sub, 0755))
	_, events := startWatch(t, dir)

	file := filepath.Join(sub, "noel.md")
	require.NoError(t, os.WriteFile(file, []byte("# Noël"), 0644))

	ev := nextEvent(t, events)
	assert.Equal(t, file, ev.Path)
}

func TestNotifier_ContextCancelClosesChannel(t *testing.T) {
	n := New(testDebounce, textOnly)
	ctx, cancel := context.WithCancel(context.Background())
	events, err := n.Watch(ctx, t.TempDir())
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel did not close after context cancellation")
	}
	assert.NoError(t, n.Close())
}

func TestNotifier_CloseClosesChannel(t *testing.T) {
	n := New(testDebounce, textOnly)
	events, err := n.Watch(t.Context(), t.TempDir())
	require.NoError(t, err)

	require.NoError(t, n.Close())

	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel did not close after Close")
	}
}

func TestNotifier_Close(t *testing.T) {
	t.Run("close is idempotent", func(t *testing.T) {
		n := New(testDebounce, nil)

		assert.NoError(t, n.Close())
		assert.NoError(t, n.Close())
	})

	t.Run("watch after close fails", func(t *testing.T) {
		n := New(testDebounce, nil)
		require.NoError(t, n.Close())

		events, err := n.Watch(t.Context(), t.TempDir())

		assert.Error(t, err)
		assert.Nil(t, events)
		assert.Contains(t, err.Error(), "closed")
	})
}

func TestNotifier_WatchErrors(t *testing.T) {
	t.Run("missing root", func(t *testing.T) {
		n := New(testDebounce, nil)
		defer n.Close()

		events, err := n.Watch(t.Context(), "/non/existent/path")

		assert.Error(t, err)
		assert.Nil(t, events)
		assert.Contains(t, err.Error(), "root path error")
	})

	t.Run("root is a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "a.txt")
		require.NoError(t, os.WriteFile(file, nil, 0644))
		n := New(testDebounce, nil)
		defer n.Close()

		_, err := n.Watch(t.Context(), file)

		assert.Error(t, err)
	})

	t.Run("second watch", func(t *testing.T) {
		n := New(testDebounce, nil)
		defer n.Close()
		_, err := n.Watch(t.Context(), t.TempDir())
		require.NoError(t, err)

		_, err = n.Watch(t.Context(), t.TempDir())

		assert.Error(t, err)
	})
}

func TestHandleFsEvent(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(dir string) string
		operation fsnotify.Op
		want      bool
	}{
		{
			name: "create supported file",
			setup: func(dir string) string {
				p := filepath.Join(dir, "a.txt")
				_ = os.WriteFile(p, []byte("x"), 0644)
				return p
			},
			operation: fsnotify.Create,
			want:      true,
		},
		{
			name: "write supported file",
			setup: func(dir string) string {
				return filepath.Join(dir, "a.md")
			},
			operation: fsnotify.Write,
			want:      true,
		},
		{
			name: "write unsupported file",
			setup: func(dir string) string {
				return filepath.Join(dir, "a.png")
			},
			operation: fsnotify.Write,
			want:      false,
		},
		{
			name: "remove supported file",
			setup: func(dir string) string {
				return filepath.Join(dir, "gone.txt")
			},
			operation: fsnotify.Remove,
			want:      true,
		},
		{
			name: "rename directory away",
			setup: func(dir string) string {
				return filepath.Join(dir, "old-folder")
			},
			operation: fsnotify.Rename,
			want:      true,
		},
		{
			name: "chmod is ignored",
			setup: func(dir string) string {
				p := filepath.Join(dir, "a.txt")
				_ = os.WriteFile(p, []byte("x"), 0644)
				return p
			},
			operation: fsnotify.Chmod,
			want:      false,
		},
		{
			name: "hidden file is ignored",
			setup: func(dir string) string {
				return filepath.Join(dir, ".hidden.txt")
			},
			operation: fsnotify.Write,
			want:      false,
		},
		{
			name: "file in hidden directory is ignored",
			setup: func(dir string) string {
				return filepath.Join(dir, ".git", "notes.md")
			},
			operation: fsnotify.Remove,
			want:      false,
		},
		{
			name: "create of vanished file is ignored",
			setup: func(dir string) string {
				return filepath.Join(dir, "flash.txt")
			},
			operation: fsnotify.Create,
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			n := New(testDebounce, textOnly)
			n.root = dir
			path := tt.setup(dir)

			got := n.handleFsEvent(nil, fsnotify.Event{Name: path, Op: tt.operation})

			if tt.want {
				assert.Equal(t, []string{path}, got)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	dir := t.TempDir()
	n := New(testDebounce, textOnly)
	n.root = dir

	file := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	ev, ok := n.classify(file)
	assert.True(t, ok)
	assert.Equal(t, domain.ChangeUpserted, ev.Type)

	ev, ok = n.classify(filepath.Join(dir, "missing.txt"))
	assert.True(t, ok)
	assert.Equal(t, domain.ChangeDeleted, ev.Type)

	_, ok = n.classify(dir)
	assert.False(t, ok)
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{".hidden", true},
		{"path/to/.hidden", true},
		{"dir/.git/config", true},
		{".config/.cache/data", true},
		{"file.txt", false},
		{"path/to/file.txt", false},
		{".", false},
		{"..", false},
		{"path/./file", false},
		{"../sibling/file", false},
		{"", false},
		{"file.hidden", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, isHidden(tt.path))
		})
	}
}
