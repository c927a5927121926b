package preseed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowport/flowport/internal/core/domain"
	"github.com/flowport/flowport/internal/core/services"
)

func waitForCollection(t *testing.T, knowledge *services.KnowledgeService, id string) *domain.Collection {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if col, err := knowledge.Get(context.Background(), id); err == nil {
			return col
		}
		time.Sleep(20 * time.Millisecond)
	}

	t.Fatalf("collection %s never appeared", id)
	return nil
}

func TestWatcher_LoadsCreatedPack(t *testing.T) {
	loader, knowledge := newTestLoader(t)
	dir := t.TempDir()

	watcher := NewWatcher(loader, dir, nil)
	watcher.settle = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, watcher.Watch(ctx))
	defer watcher.Close()

	writePack(t, dir, "dropped.json", `{
		"knowledge_items": [{"title": "Live", "content": "dropped while running"}]
	}`)

	col := waitForCollection(t, knowledge, "dropped")
	assert.Equal(t, domain.OriginPreseeded, col.Origin)
	assert.True(t, col.Ready)
	require.Len(t, col.Documents, 1)
	assert.Equal(t, "Live", col.Documents[0].Title)
}

func TestWatcher_LoadsRenamedPack(t *testing.T) {
	loader, knowledge := newTestLoader(t)
	dir := t.TempDir()

	watcher := NewWatcher(loader, dir, nil)
	watcher.settle = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, watcher.Watch(ctx))
	defer watcher.Close()

	staging := writePack(t, t.TempDir(), "moved.json", `{
		"knowledge_items": [{"title": "Moved", "content": "renamed into place"}]
	}`)
	require.NoError(t, os.Rename(staging, filepath.Join(dir, "moved.json")))

	col := waitForCollection(t, knowledge, "moved")
	require.Len(t, col.Documents, 1)
	assert.Equal(t, "Moved", col.Documents[0].Title)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	loader, knowledge := newTestLoader(t)
	dir := t.TempDir()

	watcher := NewWatcher(loader, dir, nil)
	watcher.settle = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, watcher.Watch(ctx))
	defer watcher.Close()

	writePack(t, dir, "notes.txt", `{
		"knowledge_items": [{"title": "X", "content": "not a pack"}]
	}`)

	time.Sleep(150 * time.Millisecond)

	cols, err := knowledge.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cols)
}

func TestWatcher_CreatesMissingDirectory(t *testing.T) {
	loader, _ := newTestLoader(t)
	dir := filepath.Join(t.TempDir(), "nested", "preseed")

	watcher := NewWatcher(loader, dir, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, watcher.Watch(ctx))
	defer watcher.Close()

	assert.DirExists(t, dir)
}

func TestWatcher_CloseIsIdempotent(t *testing.T) {
	loader, _ := newTestLoader(t)

	watcher := NewWatcher(loader, t.TempDir(), nil)
	require.NoError(t, watcher.Watch(context.Background()))

	assert.NoError(t, watcher.Close())
	assert.NoError(t, watcher.Close())
}
