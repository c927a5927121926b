package driven

import (
	"context"

	"github.com/flowport/flowport/internal/core/domain"
)

// CollectionStore persists collections, their chunk blobs, uploaded files
// and the derived index artifact. Backed by a per-collection directory tree.
type CollectionStore interface {
	// CreateCollection writes the initial record for a new collection.
	// Returns domain.ErrAlreadyExists if the id is taken.
	CreateCollection(ctx context.Context, col *domain.Collection) error

	// ListCollections returns all stored collections sorted by id.
	ListCollections(ctx context.Context) ([]domain.Collection, error)

	// GetCollection retrieves one collection with its full document list.
	// Returns domain.ErrNotFound for an unknown id.
	GetCollection(ctx context.Context, id string) (*domain.Collection, error)

	// SaveCollection rewrites a collection's metadata record.
	SaveCollection(ctx context.Context, col *domain.Collection) error

	// AppendDocument atomically appends a document entry to the collection's
	// metadata, refreshes the aggregate counts and clears the ready flag.
	// The caller must hold the collection's lock.
	AppendDocument(ctx context.Context, collectionID string, doc *domain.Document) error

	// WriteChunk stores one chunk blob.
	WriteChunk(ctx context.Context, collectionID, chunkID, content string) error

	// ReadChunk retrieves one chunk blob. Returns domain.ErrNotFound if absent.
	ReadChunk(ctx context.Context, collectionID, chunkID string) (string, error)

	// ListChunks returns every stored chunk sorted by chunk id.
	ListChunks(ctx context.Context, collectionID string) ([]domain.Chunk, error)

	// WriteFile stores the raw bytes of an uploaded document.
	WriteFile(ctx context.Context, collectionID, docID, filename string, data []byte) error

	// FilePath resolves the on-disk path of a stored upload.
	// Returns domain.ErrNotFound if the file is absent.
	FilePath(ctx context.Context, collectionID, docID, filename string) (string, error)

	// WriteIndex atomically replaces the collection's index artifact.
	WriteIndex(ctx context.Context, collectionID string, data []byte) error

	// ReadIndex loads the serialised index artifact.
	// Returns domain.ErrIndexMissing if no artifact exists.
	ReadIndex(ctx context.Context, collectionID string) ([]byte, error)
}
