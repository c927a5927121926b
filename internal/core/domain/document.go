package domain

import "time"

// Document is one ingested source unit (free text or uploaded file)
// within a collection. A document is never partially persisted: either
// its metadata entry and all chunks exist, or ingestion failed and
// nothing is visible.
type Document struct {
	// ID is the unique identifier.
	ID string `json:"id"`

	// Title is the human-readable title.
	Title string `json:"title"`

	// OriginalFilename is set when the document came from an upload.
	OriginalFilename string `json:"original_filename,omitempty"`

	// MediaType is the MIME type of the source data.
	MediaType string `json:"media_type"`

	// SizeBytes is the raw byte size of the source data.
	SizeBytes int64 `json:"size_bytes"`

	// ChunkIDs is the ordered list of owned chunk identifiers.
	// Immutable once the document is persisted.
	ChunkIDs []string `json:"chunk_ids"`

	// ChunkCount mirrors len(ChunkIDs).
	ChunkCount int `json:"chunk_count"`

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time `json:"created_at"`

	// Metadata holds free-form provenance flags such as
	// generated_from_upload or image_caption.
	Metadata map[string]any `json:"metadata"`
}

// Chunk is an independently addressable slice of a document's normalised
// text. Chunks are the unit of indexing and retrieval; a chunk belongs to
// exactly one document and one collection.
type Chunk struct {
	// ID is the unique identifier.
	ID string `json:"id"`

	// Content is the normalised chunk text.
	Content string `json:"content"`
}

// DocumentDetail is a document together with its stored chunk contents.
// Chunks whose blobs went missing are omitted rather than failing the read.
type DocumentDetail struct {
	Document
	Chunks []Chunk `json:"chunks"`
}

// ChunkMatch is a scored retrieval hit with document provenance.
type ChunkMatch struct {
	ChunkID       string  `json:"chunk_id"`
	Score         float64 `json:"score"`
	Content       string  `json:"content"`
	DocumentID    string  `json:"document_id"`
	DocumentTitle string  `json:"document_title,omitempty"`
}

// QueryResult is the outcome of a similarity query against a collection.
// An empty Matches slice signals that no chunk shared any term with the
// query; it is not an error.
type QueryResult struct {
	CollectionID string       `json:"knowledge_base_id"`
	Query        string       `json:"query"`
	Matches      []ChunkMatch `json:"matches"`
}
