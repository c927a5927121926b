package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowport/flowport/internal/core/domain"
)

func TestIngestCmd_Use(t *testing.T) {
	assert.Equal(t, "ingest [collection-id] [file]", ingestCmd.Use)
}

func TestIngestCmd_HasChunkFlags(t *testing.T) {
	size := ingestCmd.Flags().Lookup("chunk-size")
	require.NotNil(t, size, "chunk-size flag should exist")
	assert.Equal(t, "750", size.DefValue)

	overlap := ingestCmd.Flags().Lookup("chunk-overlap")
	require.NotNil(t, overlap, "chunk-overlap flag should exist")
	assert.Equal(t, "50", overlap.DefValue)
}

func TestIngestCmd_RequiresTwoArgs(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest", "col-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg(s)")
}

func TestIngestCmd_Executes(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()

	ctx := context.Background()
	col, err := svc.knowledge.Create(ctx, domain.CreateCollectionInput{Name: "notes"})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "meeting.txt")
	require.NoError(t, os.WriteFile(path, []byte("The quarterly planning meeting moved to Thursday."), 0o600))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ingest", col.ID, path})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err = rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Ingested meeting.txt")
	assert.Contains(t, buf.String(), "Chunks:   1")

	col, err = svc.knowledge.Get(ctx, col.ID)
	require.NoError(t, err)
	assert.True(t, col.Ready)
	assert.Equal(t, 1, col.DocumentCount)
	assert.Equal(t, "meeting.txt", col.Documents[0].OriginalFilename)
}

func TestIngestCmd_MissingFile(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()

	ctx := context.Background()
	col, err := svc.knowledge.Create(ctx, domain.CreateCollectionInput{Name: "notes"})
	require.NoError(t, err)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest", col.ID, filepath.Join(t.TempDir(), "absent.txt")})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err = rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "reading")
}

func TestIngestCmd_UnknownCollection(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("some text"), 0o600))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest", "ghost", path})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ingest file")
}
