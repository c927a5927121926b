package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowport/flowport/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func TestNewStore_CreatesParentDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "deeper", "audit.db")

	store, err := NewStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, dbPath, store.Path())
	assert.FileExists(t, dbPath)
}

func TestRecord(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	entry := &domain.AuditEntry{
		Provider:     domain.ProviderOpenAI,
		Model:        "gpt-4o-mini",
		CollectionID: "kb-1",
		Status:       domain.AuditStatusOK,
		DurationMS:   340,
		OutputChars:  512,
	}

	err := store.Record(ctx, entry)
	require.NoError(t, err)
	assert.NotZero(t, entry.ID, "record should assign an id")

	entries, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got := entries[0]
	assert.Equal(t, entry.ID, got.ID)
	assert.Equal(t, domain.ProviderOpenAI, got.Provider)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.Equal(t, "kb-1", got.CollectionID)
	assert.Equal(t, domain.AuditStatusOK, got.Status)
	assert.Equal(t, int64(340), got.DurationMS)
	assert.Equal(t, 512, got.OutputChars)
	assert.Empty(t, got.Detail)
	assert.False(t, got.CreatedAt.IsZero(), "created_at should be backfilled")
	assert.WithinDuration(t, time.Now().UTC(), got.CreatedAt, time.Minute)
}

func TestRecord_NilEntry(t *testing.T) {
	store := newTestStore(t)

	err := store.Record(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRecord_PreservesExplicitTimestamp(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	createdAt := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	entry := &domain.AuditEntry{
		Provider:  domain.ProviderGemini,
		Model:     "gemini-2.0-flash",
		Status:    domain.AuditStatusError,
		Detail:    "upstream returned 429",
		CreatedAt: createdAt,
	}
	require.NoError(t, store.Record(ctx, entry))

	entries, err := store.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].CreatedAt.Equal(createdAt))
	assert.Equal(t, "upstream returned 429", entries[0].Detail)
}

func TestRecent_NewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	models := []string{"first", "second", "third"}
	for _, model := range models {
		entry := &domain.AuditEntry{
			Provider: domain.ProviderLlama,
			Model:    model,
			Status:   domain.AuditStatusOK,
		}
		require.NoError(t, store.Record(ctx, entry))
	}

	entries, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "third", entries[0].Model)
	assert.Equal(t, "second", entries[1].Model)
	assert.Equal(t, "first", entries[2].Model)
}

func TestRecent_Limit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		entry := &domain.AuditEntry{
			Provider: domain.ProviderHuggingFace,
			Model:    "distilgpt2",
			Status:   domain.AuditStatusOK,
		}
		require.NoError(t, store.Record(ctx, entry))
	}

	entries, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	// Zero and negative limits fall back to the default.
	entries, err = store.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 5)

	entries, err = store.Recent(ctx, -3)
	require.NoError(t, err)
	assert.Len(t, entries, 5)
}

func TestRecent_Empty(t *testing.T) {
	store := newTestStore(t)

	entries, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestReopen_KeepsEntries(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")
	ctx := context.Background()

	store, err := NewStore(dbPath)
	require.NoError(t, err)

	entry := &domain.AuditEntry{
		Provider: domain.ProviderOpenAI,
		Model:    "gpt-4o",
		Status:   domain.AuditStatusOK,
	}
	require.NoError(t, store.Record(ctx, entry))
	require.NoError(t, store.Close())

	// Reopening reapplies migrations without clobbering existing rows.
	reopened, err := NewStore(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	entries, err := reopened.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "gpt-4o", entries[0].Model)
}
