package domain

// CreateCollectionInput describes a new collection. A blank ID means the
// service assigns one; a blank Origin defaults to OriginUser.
type CreateCollectionInput struct {
	ID          string
	Name        string
	Description string
	Origin      Origin
}

// KnowledgeItem is one titled text unit for batch ingestion.
type KnowledgeItem struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// AutoBuildInput creates a collection and ingests a batch of knowledge
// items in one call. Chunking parameters apply to every item.
type AutoBuildInput struct {
	Name         string
	Description  string
	Items        []KnowledgeItem
	ChunkSize    int
	ChunkOverlap int
}

// TextIngestInput ingests free text as one document.
type TextIngestInput struct {
	Title        string
	Content      string
	ChunkSize    int
	ChunkOverlap int

	// Metadata is stored on the document verbatim. Nil means none.
	Metadata map[string]any
}

// FileIngestInput ingests an uploaded file as one document.
type FileIngestInput struct {
	Filename     string
	MediaType    string
	Data         []byte
	ChunkSize    int
	ChunkOverlap int

	// ExtractedText, when non-nil, bypasses format extraction entirely.
	ExtractedText *string

	// CaptionKey enables image caption generation when the upload is an
	// image. Blank disables captioning.
	CaptionKey string
}
