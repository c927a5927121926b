package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/flowport/flowport/internal/chunker"
	"github.com/flowport/flowport/internal/core/domain"
	"github.com/flowport/flowport/internal/core/ports/driving"
)

// maxUploadMemory bounds how much of a multipart upload is buffered in
// memory before spilling to disk.
const maxUploadMemory = 32 << 20

// Handler bundles the services the HTTP API exposes.
type Handler struct {
	knowledge driving.KnowledgeService
	inference driving.InferenceService
	appName   string
	logger    *zap.Logger
}

// NewHandler creates the API handler set.
func NewHandler(knowledge driving.KnowledgeService, inference driving.InferenceService, appName string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Handler{
		knowledge: knowledge,
		inference: inference,
		appName:   appName,
		logger:    logger,
	}
}

// Health handles GET /api/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	_ = WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"app":    h.appName,
	})
}

// ListCollections handles GET /api/knowledge-bases.
func (h *Handler) ListCollections(w http.ResponseWriter, r *http.Request) {
	cols, err := h.knowledge.List(r.Context())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	summaries := make([]collectionSummary, 0, len(cols))
	for _, col := range cols {
		summaries = append(summaries, summarize(col))
	}

	_ = WriteJSON(w, http.StatusOK, summaries)
}

// CreateCollection handles POST /api/knowledge-bases.
func (h *Handler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	var req createCollectionRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if err := ValidateStruct(&req); err != nil {
		HandleValidationError(w, err)
		return
	}

	col, err := h.knowledge.Create(r.Context(), domain.CreateCollectionInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = WriteJSON(w, http.StatusCreated, col)
}

// GetCollection handles GET /api/knowledge-bases/{id}.
func (h *Handler) GetCollection(w http.ResponseWriter, r *http.Request) {
	col, err := h.knowledge.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = WriteJSON(w, http.StatusOK, col)
}

// AutoBuild handles POST /api/knowledge-bases/auto-build.
func (h *Handler) AutoBuild(w http.ResponseWriter, r *http.Request) {
	var req autoBuildRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if err := ValidateStruct(&req); err != nil {
		HandleValidationError(w, err)
		return
	}

	items := make([]domain.KnowledgeItem, 0, len(req.KnowledgeItems))
	for _, item := range req.KnowledgeItems {
		items = append(items, domain.KnowledgeItem{
			Title:   item.Title,
			Content: item.Content,
		})
	}
	chunkSize, chunkOverlap := chunkParams(req.ChunkSize, req.ChunkOverlap)

	col, err := h.knowledge.AutoBuild(r.Context(), domain.AutoBuildInput{
		Name:         req.Name,
		Description:  req.Description,
		Items:        items,
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = WriteJSON(w, http.StatusCreated, col)
}

// IngestText handles POST /api/knowledge-bases/{id}/ingest/text.
func (h *Handler) IngestText(w http.ResponseWriter, r *http.Request) {
	var req textIngestRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if err := ValidateStruct(&req); err != nil {
		HandleValidationError(w, err)
		return
	}

	chunkSize, chunkOverlap := chunkParams(req.ChunkSize, req.ChunkOverlap)

	doc, err := h.knowledge.IngestText(r.Context(), chi.URLParam(r, "id"), domain.TextIngestInput{
		Title:        req.Title,
		Content:      req.Content,
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = WriteJSON(w, http.StatusCreated, doc)
}

// IngestFile handles POST /api/knowledge-bases/{id}/ingest/file. The body
// is multipart form data with a required file part and optional
// chunk_size, chunk_overlap and hf_api_key fields.
func (h *Handler) IngestFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		_ = WriteBadRequest(w, "Invalid multipart form", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		_ = WriteBadRequest(w, "file field is required", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		_ = WriteBadRequest(w, "reading upload failed", nil)
		return
	}

	chunkSize, ok := h.formInt(w, r, "chunk_size", chunker.DefaultChunkSize)
	if !ok {
		return
	}
	chunkOverlap, ok := h.formInt(w, r, "chunk_overlap", chunker.DefaultChunkOverlap)
	if !ok {
		return
	}

	doc, err := h.knowledge.IngestFile(r.Context(), chi.URLParam(r, "id"), domain.FileIngestInput{
		Filename:     header.Filename,
		MediaType:    header.Header.Get("Content-Type"),
		Data:         data,
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		CaptionKey:   r.FormValue("hf_api_key"),
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = WriteJSON(w, http.StatusCreated, doc)
}

// QueryCollection handles POST /api/knowledge-bases/{id}/query.
func (h *Handler) QueryCollection(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if err := ValidateStruct(&req); err != nil {
		HandleValidationError(w, err)
		return
	}

	result, err := h.knowledge.Query(r.Context(), chi.URLParam(r, "id"),
		req.Query, intOrDefault(req.TopK, domain.DefaultTopK))
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = WriteJSON(w, http.StatusOK, result)
}

// GetDocument handles GET /api/knowledge-bases/{id}/documents/{docID}.
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	detail, err := h.knowledge.DocumentDetail(r.Context(),
		chi.URLParam(r, "id"), chi.URLParam(r, "docID"))
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = WriteJSON(w, http.StatusOK, detail)
}

// DownloadDocument handles GET /api/knowledge-bases/{id}/documents/{docID}/file.
func (h *Handler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	path, doc, err := h.knowledge.DocumentFilePath(r.Context(),
		chi.URLParam(r, "id"), chi.URLParam(r, "docID"))
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	filename := doc.OriginalFilename
	if filename == "" {
		filename = filepath.Base(path)
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if doc.MediaType != "" {
		w.Header().Set("Content-Type", doc.MediaType)
	}
	http.ServeFile(w, r, path)
}

func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.Warn("failed to parse request body", zap.Error(err))
		_ = WriteBadRequest(w, "Invalid request body", nil)
		return false
	}
	return true
}

// formInt parses an optional integer form field, writing a 400 on failure.
func (h *Handler) formInt(w http.ResponseWriter, r *http.Request, field string, def int) (int, bool) {
	value := r.FormValue(field)
	if value == "" {
		return def, true
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		_ = WriteBadRequest(w, fmt.Sprintf("%s must be an integer", field), nil)
		return 0, false
	}
	return n, true
}
