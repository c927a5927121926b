package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/flowport/flowport/internal/chunker"
	"github.com/flowport/flowport/internal/core/domain"
	"github.com/flowport/flowport/internal/core/ports/driven"
	"github.com/flowport/flowport/internal/core/ports/driving"
	"github.com/flowport/flowport/internal/index/tfidf"
)

// Ensure KnowledgeService implements the interface.
var _ driving.KnowledgeService = (*KnowledgeService)(nil)

// imageExtensions marks uploads eligible for caption generation.
var imageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
}

// KnowledgeService manages collections, ingestion and retrieval.
type KnowledgeService struct {
	store      driven.CollectionStore
	extractors driven.ExtractorRegistry
	captioner  driven.Captioner
	locks      *lockRegistry
	logger     *zap.Logger
}

// NewKnowledgeService creates a knowledge service.
// The captioner is optional (can be nil).
func NewKnowledgeService(
	store driven.CollectionStore,
	extractors driven.ExtractorRegistry,
	captioner driven.Captioner,
	logger *zap.Logger,
) *KnowledgeService {
	return &KnowledgeService{
		store:      store,
		extractors: extractors,
		captioner:  captioner,
		locks:      newLockRegistry(),
		logger:     logger,
	}
}

// Create registers a new, empty collection.
func (s *KnowledgeService) Create(ctx context.Context, in domain.CreateCollectionInput) (*domain.Collection, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("collection name is required: %w", domain.ErrInvalidInput)
	}

	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}
	origin := in.Origin
	if origin == "" {
		origin = domain.OriginUser
	}

	now := time.Now().UTC()
	col := &domain.Collection{
		ID:          id,
		Name:        name,
		Description: in.Description,
		Origin:      origin,
		Documents:   []domain.Document{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateCollection(ctx, col); err != nil {
		return nil, err
	}

	s.logger.Info("collection created",
		zap.String("collection_id", id),
		zap.String("origin", string(origin)))
	return col, nil
}

// List returns all collections sorted by id.
func (s *KnowledgeService) List(ctx context.Context) ([]domain.Collection, error) {
	return s.store.ListCollections(ctx)
}

// Get retrieves one collection with its document list.
func (s *KnowledgeService) Get(ctx context.Context, id string) (*domain.Collection, error) {
	return s.store.GetCollection(ctx, id)
}

// AutoBuild creates a collection and ingests a batch of knowledge items in
// one call. Items with blank content are skipped so a single bad item never
// leaves a half-built collection behind.
func (s *KnowledgeService) AutoBuild(ctx context.Context, in domain.AutoBuildInput) (*domain.Collection, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("provide at least one knowledge item: %w", domain.ErrInvalidInput)
	}

	col, err := s.Create(ctx, domain.CreateCollectionInput{
		Name:        in.Name,
		Description: in.Description,
	})
	if err != nil {
		return nil, err
	}

	for _, item := range in.Items {
		if strings.TrimSpace(item.Content) == "" {
			s.logger.Warn("skipping blank knowledge item",
				zap.String("collection_id", col.ID),
				zap.String("title", item.Title))
			continue
		}
		_, err := s.IngestText(ctx, col.ID, domain.TextIngestInput{
			Title:        item.Title,
			Content:      item.Content,
			ChunkSize:    in.ChunkSize,
			ChunkOverlap: in.ChunkOverlap,
		})
		if err != nil {
			return nil, err
		}
	}

	return s.Get(ctx, col.ID)
}

// IngestText ingests free text as one document and rebuilds the index.
func (s *KnowledgeService) IngestText(ctx context.Context, collectionID string, in domain.TextIngestInput) (*domain.Document, error) {
	splitter := chunker.New(chunker.WithChunkSize(in.ChunkSize), chunker.WithOverlap(in.ChunkOverlap))
	chunks := splitter.Split(in.Content)
	if len(chunks) == 0 {
		return nil, domain.ErrEmptyContent
	}

	metadata := in.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	return s.persistDocument(ctx, collectionID, persistInput{
		title:     in.Title,
		mediaType: "text/plain",
		rawBytes:  []byte(in.Content),
		chunks:    chunks,
		metadata:  metadata,
	})
}

// IngestFile extracts text from an upload, ingests it as one document and
// rebuilds the index. The raw bytes are kept for later download.
func (s *KnowledgeService) IngestFile(ctx context.Context, collectionID string, in domain.FileIngestInput) (*domain.Document, error) {
	if len(in.Data) == 0 {
		return nil, domain.ErrEmptyContent
	}

	filename := in.Filename
	if filename == "" {
		filename = "document"
	}
	mediaType := in.MediaType
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	title := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if title == "" {
		title = "Document"
	}

	var text string
	if in.ExtractedText != nil {
		text = *in.ExtractedText
	} else {
		extractor := s.extractors.ExtractorFor(filename, mediaType)
		extracted, err := extractor.Extract(ctx, filename, mediaType, in.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
		}
		text = extracted
	}

	metadata := map[string]any{"generated_from_upload": true}
	if in.CaptionKey != "" && s.captioner != nil && isImageFile(filename) {
		caption, err := s.captioner.Caption(ctx, in.Data, in.CaptionKey)
		switch {
		case err != nil:
			s.logger.Warn("image caption failed",
				zap.String("filename", filename),
				zap.Error(err))
		case strings.TrimSpace(caption) != "":
			caption = strings.TrimSpace(caption)
			text = caption + "\n\n[Image: " + filename + "]"
			metadata["image_caption"] = caption
		}
	}

	splitter := chunker.New(chunker.WithChunkSize(in.ChunkSize), chunker.WithOverlap(in.ChunkOverlap))
	chunks := splitter.Split(text)
	if len(chunks) == 0 {
		chunks = []string{"Summary for " + filename + ": " + chunker.Truncate(text, 200)}
	}

	return s.persistDocument(ctx, collectionID, persistInput{
		title:            title,
		originalFilename: in.Filename,
		mediaType:        mediaType,
		rawBytes:         in.Data,
		chunks:           chunks,
		metadata:         metadata,
	})
}

// Query retrieves the topK most similar chunks for the text.
func (s *KnowledgeService) Query(ctx context.Context, collectionID, text string, topK int) (*domain.QueryResult, error) {
	col, err := s.store.GetCollection(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if !col.Ready {
		return nil, domain.ErrNotReady
	}

	data, err := s.store.ReadIndex(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	var art tfidf.Artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("decoding index artifact: %w", err)
	}

	matches := []domain.ChunkMatch{}
	for _, hit := range art.Search(text, domain.ClampTopK(topK)) {
		content, err := s.store.ReadChunk(ctx, collectionID, hit.ChunkID)
		if err != nil {
			return nil, err
		}
		match := domain.ChunkMatch{
			ChunkID: hit.ChunkID,
			Score:   hit.Score,
			Content: content,
		}
		if doc, ok := col.FindDocumentByChunk(hit.ChunkID); ok {
			match.DocumentID = doc.ID
			match.DocumentTitle = doc.Title
		}
		matches = append(matches, match)
	}

	return &domain.QueryResult{
		CollectionID: collectionID,
		Query:        text,
		Matches:      matches,
	}, nil
}

// Rebuild refits the collection's index over every stored chunk.
func (s *KnowledgeService) Rebuild(ctx context.Context, collectionID string) error {
	if _, err := s.store.GetCollection(ctx, collectionID); err != nil {
		return err
	}

	lock := s.locks.get(collectionID)
	lock.Lock()
	defer lock.Unlock()

	return s.rebuildLocked(ctx, collectionID)
}

// DocumentDetail returns one document with its chunk contents. Chunks whose
// blobs went missing are omitted rather than failing the read.
func (s *KnowledgeService) DocumentDetail(ctx context.Context, collectionID, docID string) (*domain.DocumentDetail, error) {
	doc, err := s.findDocument(ctx, collectionID, docID)
	if err != nil {
		return nil, err
	}

	chunks := []domain.Chunk{}
	for _, chunkID := range doc.ChunkIDs {
		content, err := s.store.ReadChunk(ctx, collectionID, chunkID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}
		chunks = append(chunks, domain.Chunk{ID: chunkID, Content: content})
	}

	return &domain.DocumentDetail{Document: *doc, Chunks: chunks}, nil
}

// DocumentFilePath resolves the stored upload behind a document.
func (s *KnowledgeService) DocumentFilePath(ctx context.Context, collectionID, docID string) (string, *domain.Document, error) {
	doc, err := s.findDocument(ctx, collectionID, docID)
	if err != nil {
		return "", nil, err
	}
	if doc.OriginalFilename == "" {
		return "", nil, fmt.Errorf("document %q has no stored file: %w", docID, domain.ErrNotFound)
	}

	path, err := s.store.FilePath(ctx, collectionID, docID, doc.OriginalFilename)
	if err != nil {
		return "", nil, err
	}
	return path, doc, nil
}

// persistInput carries one document through the common persistence path.
type persistInput struct {
	title            string
	originalFilename string
	mediaType        string
	rawBytes         []byte
	chunks           []string
	metadata         map[string]any
}

// persistDocument writes chunks, raw bytes and the metadata entry as one
// logical unit, then rebuilds the index. The collection lock is held for
// the whole mutation so concurrent ingestions serialise.
func (s *KnowledgeService) persistDocument(ctx context.Context, collectionID string, in persistInput) (*domain.Document, error) {
	if _, err := s.store.GetCollection(ctx, collectionID); err != nil {
		return nil, err
	}

	lock := s.locks.get(collectionID)
	lock.Lock()
	defer lock.Unlock()

	docID := uuid.NewString()
	now := time.Now().UTC()

	chunkIDs := make([]string, 0, len(in.chunks))
	for _, chunk := range in.chunks {
		normalized := chunker.Normalize(chunk)
		if normalized == "" {
			continue
		}
		chunkID := uuid.NewString()
		if err := s.store.WriteChunk(ctx, collectionID, chunkID, normalized); err != nil {
			return nil, err
		}
		chunkIDs = append(chunkIDs, chunkID)
	}
	if len(chunkIDs) == 0 {
		return nil, domain.ErrNoContentExtracted
	}

	if in.originalFilename != "" {
		if err := s.store.WriteFile(ctx, collectionID, docID, in.originalFilename, in.rawBytes); err != nil {
			return nil, err
		}
	}

	doc := &domain.Document{
		ID:               docID,
		Title:            in.title,
		OriginalFilename: in.originalFilename,
		MediaType:        in.mediaType,
		SizeBytes:        int64(len(in.rawBytes)),
		ChunkIDs:         chunkIDs,
		ChunkCount:       len(chunkIDs),
		CreatedAt:        now,
		Metadata:         in.metadata,
	}
	if err := s.store.AppendDocument(ctx, collectionID, doc); err != nil {
		return nil, err
	}

	if err := s.rebuildLocked(ctx, collectionID); err != nil {
		return nil, err
	}

	s.logger.Info("document ingested",
		zap.String("collection_id", collectionID),
		zap.String("document_id", docID),
		zap.Int("chunks", len(chunkIDs)))
	return doc, nil
}

// rebuildLocked refits the index. The caller must hold the collection lock.
func (s *KnowledgeService) rebuildLocked(ctx context.Context, collectionID string) error {
	col, err := s.store.GetCollection(ctx, collectionID)
	if err != nil {
		return err
	}

	chunks, err := s.store.ListChunks(ctx, collectionID)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		col.Ready = false
		return s.store.SaveCollection(ctx, col)
	}

	ids := make([]string, len(chunks))
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		ids[i] = chunk.ID
		texts[i] = chunk.Content
	}

	art, err := tfidf.Fit(ids, texts)
	if err != nil {
		return fmt.Errorf("fitting index: %w", err)
	}
	data, err := json.Marshal(art)
	if err != nil {
		return fmt.Errorf("encoding index artifact: %w", err)
	}
	if err := s.store.WriteIndex(ctx, collectionID, data); err != nil {
		return err
	}

	col.ChunkCount = len(ids)
	col.Ready = true
	col.UpdatedAt = time.Now().UTC()
	if err := s.store.SaveCollection(ctx, col); err != nil {
		return err
	}

	s.logger.Info("index rebuilt",
		zap.String("collection_id", collectionID),
		zap.Int("chunks", len(ids)),
		zap.Int("terms", art.Dimension()))
	return nil
}

// findDocument resolves one document entry from a collection's metadata.
func (s *KnowledgeService) findDocument(ctx context.Context, collectionID, docID string) (*domain.Document, error) {
	col, err := s.store.GetCollection(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	for i := range col.Documents {
		if col.Documents[i].ID == docID {
			return &col.Documents[i], nil
		}
	}
	return nil, fmt.Errorf("document %q: %w", docID, domain.ErrNotFound)
}

func isImageFile(filename string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(filename))]
	return ok
}
