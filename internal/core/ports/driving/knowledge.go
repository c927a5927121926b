package driving

import (
	"context"

	"github.com/flowport/flowport/internal/core/domain"
)

// KnowledgeService manages collections and answers retrieval queries.
type KnowledgeService interface {
	// Create registers a new, empty collection.
	Create(ctx context.Context, in domain.CreateCollectionInput) (*domain.Collection, error)

	// List returns all collections sorted by id.
	List(ctx context.Context) ([]domain.Collection, error)

	// Get retrieves one collection with its document list.
	Get(ctx context.Context, id string) (*domain.Collection, error)

	// AutoBuild creates a collection and ingests a batch of knowledge
	// items in one call. Items with blank content are skipped.
	AutoBuild(ctx context.Context, in domain.AutoBuildInput) (*domain.Collection, error)

	// IngestText ingests free text as one document and rebuilds the index.
	IngestText(ctx context.Context, collectionID string, in domain.TextIngestInput) (*domain.Document, error)

	// IngestFile extracts text from an upload, ingests it as one document
	// and rebuilds the index. The raw bytes are kept for later download.
	IngestFile(ctx context.Context, collectionID string, in domain.FileIngestInput) (*domain.Document, error)

	// Query retrieves the topK most similar chunks for the text.
	Query(ctx context.Context, collectionID, text string, topK int) (*domain.QueryResult, error)

	// Rebuild refits the collection's index over every stored chunk.
	Rebuild(ctx context.Context, collectionID string) error

	// DocumentDetail returns one document with its chunk contents.
	DocumentDetail(ctx context.Context, collectionID, docID string) (*domain.DocumentDetail, error)

	// DocumentFilePath resolves the stored upload behind a document.
	DocumentFilePath(ctx context.Context, collectionID, docID string) (string, *domain.Document, error)
}
