package domain

import "time"

// Origin identifies how a collection came to exist.
type Origin string

const (
	// OriginUser marks collections created through the API or CLI.
	OriginUser Origin = "user"

	// OriginPreseeded marks collections bootstrapped from preseed packs.
	OriginPreseeded Origin = "preseeded"
)

// Collection is a named, independently indexed knowledge base.
// It owns an ordered list of documents and a single derived index artifact.
type Collection struct {
	// ID is the stable, immutable identifier.
	ID string `json:"id"`

	// Name is the human-readable display name.
	Name string `json:"name"`

	// Description is an optional free-form description.
	Description string `json:"description,omitempty"`

	// Origin records whether the collection is user-created or preseeded.
	Origin Origin `json:"source"`

	// Documents is the ordered list of ingested documents.
	Documents []Document `json:"documents"`

	// DocumentCount mirrors len(Documents) in the persisted record.
	DocumentCount int `json:"document_count"`

	// ChunkCount is the aggregate number of chunks across all documents.
	ChunkCount int `json:"chunk_count"`

	// Ready is true only while the index artifact matches the current chunk
	// set. Any document append clears it; a successful build sets it.
	Ready bool `json:"ready"`

	// CreatedAt is when the collection was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the collection was last mutated or rebuilt.
	UpdatedAt time.Time `json:"updated_at"`
}

// FindDocumentByChunk returns the document owning the given chunk id.
// The second return is false when no document references the chunk, which
// can happen for orphaned blobs swept into the index.
func (c *Collection) FindDocumentByChunk(chunkID string) (*Document, bool) {
	for i := range c.Documents {
		for _, id := range c.Documents[i].ChunkIDs {
			if id == chunkID {
				return &c.Documents[i], true
			}
		}
	}
	return nil, false
}
