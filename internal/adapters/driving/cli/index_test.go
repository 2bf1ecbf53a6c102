package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
)

func TestIndexCmd_Use(t *testing.T) {
	assert.Equal(t, "index [folder]", indexCmd.Use)
}

func TestIndexCmd_HasForceFlag(t *testing.T) {
	flag := indexCmd.Flags().Lookup("force")
	require.NotNil(t, flag)
	assert.Equal(t, "f", flag.Shorthand)
	assert.Equal(t, "false", flag.DefValue)
}

func TestIndexCmd_IndexesFolder(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "index", "/sermons")

	require.NoError(t, err)
	assert.Equal(t, "/sermons", ts.indexer.folder)
	assert.False(t, ts.indexer.opts.Force)
	assert.Equal(t, "/sermons", ts.settings.folder, "folder is remembered")
	assert.Contains(t, out, "Indexing complete.")
	assert.Contains(t, out, "Added:     2")
	assert.Contains(t, out, "Unchanged: 1")
}

func TestIndexCmd_Force(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "index", "--force", "/sermons")

	require.NoError(t, err)
	assert.True(t, ts.indexer.opts.Force)
}

func TestIndexCmd_VerboseShowsProgress(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "index", "-v", "/sermons")

	require.NoError(t, err)
	assert.Contains(t, out, "[1/1] a.md")
}

func TestIndexCmd_UsesConfiguredFolder(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.folder = "/corpus"

	_, err := execute(t, "index")

	require.NoError(t, err)
	assert.Equal(t, "/corpus", ts.indexer.folder)
}

func TestIndexCmd_NoFolder(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "index")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no corpus folder configured")
}

func TestIndexCmd_ReportsFileErrors(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.indexer.result = &domain.IndexingResult{Added: 1, Errors: []string{"empty.pdf: extraction failed"}}

	out, err := execute(t, "index", "/sermons")

	require.NoError(t, err)
	assert.Contains(t, out, "1 file(s) could not be indexed")
	assert.Contains(t, out, "empty.pdf: extraction failed")
}

func TestIndexCmd_CancelledRunIsNotRemembered(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.indexer.result = &domain.IndexingResult{Cancelled: true}

	out, err := execute(t, "index", "/sermons")

	require.NoError(t, err)
	assert.Contains(t, out, "Indexing cancelled.")
	assert.Empty(t, ts.settings.folder)
}

func TestIndexCmd_InProgress(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.indexer.result = nil
	ts.indexer.err = domain.ErrIndexingInProgress

	_, err := execute(t, "index", "/sermons")

	assert.ErrorIs(t, err, domain.ErrIndexingInProgress)
}

func TestIndexCmd_ServiceNotConfigured(t *testing.T) {
	oldIndexer := indexer
	indexer = nil
	defer func() { indexer = oldIndexer }()

	_, err := execute(t, "index", "/sermons")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "indexer not configured")
}

func TestWatchCmd_Use(t *testing.T) {
	assert.Equal(t, "watch [folder]", watchCmd.Use)
}

func TestWatchCmd_StartsAndStops(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "watch", "/sermons")

	require.NoError(t, err)
	assert.Equal(t, "/sermons", ts.watcher.folder)
	assert.True(t, ts.watcher.stopped)
	assert.Contains(t, out, "Watching /sermons")
	assert.Contains(t, out, "Stopped watching.")
}

func TestWatchCmd_ResumesConfiguredFolder(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "watch")

	require.NoError(t, err)
	assert.True(t, ts.watcher.resumed)
	assert.Equal(t, "/corpus", ts.watcher.folder)
}

func TestWatchCmd_StartError(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.watcher.err = errors.New("no such folder")

	_, err := execute(t, "watch", "/missing")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "watch failed")
}

func TestWatchCmd_ServiceNotConfigured(t *testing.T) {
	oldWatcher := watcher
	watcher = nil
	defer func() { watcher = oldWatcher }()

	_, err := execute(t, "watch", "/sermons")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "watcher not configured")
}
