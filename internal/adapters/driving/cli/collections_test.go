package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flowport/flowport/internal/core/domain"
)

func TestCollectionsCmd_Use(t *testing.T) {
	assert.Equal(t, "collections", collectionsCmd.Use)
	assert.Equal(t, "list", collectionsListCmd.Use)
	assert.Equal(t, "create [name]", collectionsCreateCmd.Use)
	assert.Equal(t, "show [collection-id]", collectionsShowCmd.Use)
}

func TestCollectionsCreateCmd_RequiresName(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"collections", "create"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestCollectionsList_Empty(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"collections", "list"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No collections found.")
}

func TestCollectionsCreate_Executes(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"collections", "create", "docs", "--description", "Team docs"})
	defer func() {
		rootCmd.SetArgs(nil)
		createDescription = "" // Reset flag
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Created collection docs")

	collections, err := svc.knowledge.List(context.Background())
	assert.NoError(t, err)
	assert.Len(t, collections, 1)
	assert.Equal(t, "Team docs", collections[0].Description)
	assert.Equal(t, domain.OriginUser, collections[0].Origin)
}

func TestCollectionsList_ShowsCollections(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()

	seedTestCollection(t, svc.knowledge, "networking", "Routers forward packets between networks.")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"collections", "list"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "networking")
	assert.Contains(t, buf.String(), "Documents: 1")
	assert.Contains(t, buf.String(), "Total: 1 collections")
}

func TestCollectionsShow_Executes(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()

	col := seedTestCollection(t, svc.knowledge, "networking", "Routers forward packets between networks.")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"collections", "show", col.ID})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), col.ID)
	assert.Contains(t, buf.String(), "Name:      networking")
	assert.Contains(t, buf.String(), "Ready:     true")
	assert.Contains(t, buf.String(), "Seed")
}

func TestCollectionsShow_UnknownID(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"collections", "show", "ghost"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get collection")
}
