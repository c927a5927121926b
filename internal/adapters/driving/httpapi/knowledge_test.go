package httpapi

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowport/flowport/internal/core/domain"
)

func TestHealth(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "Flowport API", body["app"])
}

func TestCreateCollection(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/knowledge-bases", map[string]any{
		"name":        "Docs",
		"description": "Product documentation",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var col domain.Collection
	decodeBody(t, rec, &col)
	assert.NotEmpty(t, col.ID)
	assert.Equal(t, "Docs", col.Name)
	assert.Equal(t, "Product documentation", col.Description)
	assert.Equal(t, domain.OriginUser, col.Origin)
	assert.False(t, col.Ready)
	assert.NotNil(t, col.Documents)
}

func TestCreateCollection_Validation(t *testing.T) {
	api := newTestAPI(t)

	t.Run("name too short", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, "/api/knowledge-bases", map[string]any{
			"name": "x",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var body ErrorResponse
		decodeBody(t, rec, &body)
		assert.Equal(t, "bad_request", body.Error)
		assert.Contains(t, body.Details, "Name")
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := api.doRaw(t, http.MethodPost, "/api/knowledge-bases",
			"application/json", bytes.NewBufferString("{broken"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListCollections(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/knowledge-bases", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	api.seedCollection(t, "Guides", "retrieval happens through sparse vectors")

	rec = api.do(t, http.MethodGet, "/api/knowledge-bases", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []map[string]any
	decodeBody(t, rec, &list)
	require.Len(t, list, 1)

	assert.Equal(t, "Guides", list[0]["name"])
	assert.Equal(t, "user", list[0]["source"])
	assert.Equal(t, float64(1), list[0]["document_count"])
	assert.Equal(t, true, list[0]["ready"])

	// Summaries do not inline the document inventory.
	_, hasDocuments := list[0]["documents"]
	assert.False(t, hasDocuments)
}

func TestGetCollection(t *testing.T) {
	api := newTestAPI(t)
	col := api.seedCollection(t, "Guides", "notes about ingestion")

	rec := api.do(t, http.MethodGet, "/api/knowledge-bases/"+col.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.Collection
	decodeBody(t, rec, &got)
	assert.Equal(t, col.ID, got.ID)
	require.Len(t, got.Documents, 1)
	assert.Equal(t, "Seed", got.Documents[0].Title)
}

func TestGetCollection_NotFound(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/knowledge-bases/ghost", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body ErrorResponse
	decodeBody(t, rec, &body)
	assert.Equal(t, "not_found", body.Error)
}

func TestAutoBuild(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/knowledge-bases/auto-build", map[string]any{
		"name": "Handbook",
		"knowledge_items": []map[string]any{
			{"title": "Overview", "content": "chunks are retrieved by cosine similarity"},
			{"title": "Setup", "content": "collections live under the storage root"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var col domain.Collection
	decodeBody(t, rec, &col)
	assert.True(t, col.Ready)
	assert.Len(t, col.Documents, 2)
}

func TestAutoBuild_NoItems(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/knowledge-bases/auto-build", map[string]any{
		"name": "Handbook",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body ErrorResponse
	decodeBody(t, rec, &body)
	assert.Contains(t, body.Message, "knowledge item")
}

func TestIngestText(t *testing.T) {
	api := newTestAPI(t)
	col := api.seedCollection(t, "Guides", "existing content")

	rec := api.do(t, http.MethodPost, "/api/knowledge-bases/"+col.ID+"/ingest/text", map[string]any{
		"title":   "Routing",
		"content": "requests travel through the provider registry",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var doc domain.Document
	decodeBody(t, rec, &doc)
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "Routing", doc.Title)
	assert.Equal(t, "text/plain", doc.MediaType)
	assert.Equal(t, 1, doc.ChunkCount)
}

func TestIngestText_Errors(t *testing.T) {
	api := newTestAPI(t)
	col := api.seedCollection(t, "Guides", "existing content")

	t.Run("unknown collection", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, "/api/knowledge-bases/ghost/ingest/text", map[string]any{
			"title":   "X",
			"content": "text",
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing content", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, "/api/knowledge-bases/"+col.ID+"/ingest/text", map[string]any{
			"title": "X",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var body ErrorResponse
		decodeBody(t, rec, &body)
		assert.Contains(t, body.Details, "Content")
	})

	t.Run("chunk size out of range", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, "/api/knowledge-bases/"+col.ID+"/ingest/text", map[string]any{
			"title":      "X",
			"content":    "text",
			"chunk_size": 7,
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var body ErrorResponse
		decodeBody(t, rec, &body)
		assert.Contains(t, body.Details, "ChunkSize")
	})
}

func multipartUpload(t *testing.T, filename string, data []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)

	for field, value := range fields {
		require.NoError(t, writer.WriteField(field, value))
	}
	require.NoError(t, writer.Close())

	return &buf, writer.FormDataContentType()
}

func TestIngestFile(t *testing.T) {
	api := newTestAPI(t)
	col := api.seedCollection(t, "Guides", "existing content")

	body, contentType := multipartUpload(t, "notes.txt",
		[]byte("uploaded words for retrieval"), nil)

	rec := api.doRaw(t, http.MethodPost,
		"/api/knowledge-bases/"+col.ID+"/ingest/file", contentType, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var doc domain.Document
	decodeBody(t, rec, &doc)
	assert.Equal(t, "notes", doc.Title)
	assert.Equal(t, "notes.txt", doc.OriginalFilename)
	assert.Equal(t, int64(len("uploaded words for retrieval")), doc.SizeBytes)
}

func TestIngestFile_Errors(t *testing.T) {
	api := newTestAPI(t)
	col := api.seedCollection(t, "Guides", "existing content")

	t.Run("missing file part", func(t *testing.T) {
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		require.NoError(t, writer.WriteField("chunk_size", "200"))
		require.NoError(t, writer.Close())

		rec := api.doRaw(t, http.MethodPost,
			"/api/knowledge-bases/"+col.ID+"/ingest/file",
			writer.FormDataContentType(), &buf)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var body ErrorResponse
		decodeBody(t, rec, &body)
		assert.Contains(t, body.Message, "file field")
	})

	t.Run("bad chunk size", func(t *testing.T) {
		body, contentType := multipartUpload(t, "notes.txt", []byte("words"),
			map[string]string{"chunk_size": "lots"})

		rec := api.doRaw(t, http.MethodPost,
			"/api/knowledge-bases/"+col.ID+"/ingest/file", contentType, body)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp ErrorResponse
		decodeBody(t, rec, &resp)
		assert.Contains(t, resp.Message, "chunk_size")
	})

	t.Run("not multipart", func(t *testing.T) {
		rec := api.do(t, http.MethodPost,
			"/api/knowledge-bases/"+col.ID+"/ingest/file", map[string]any{"file": "x"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestQueryCollection(t *testing.T) {
	api := newTestAPI(t)
	col := api.seedCollection(t, "Guides", "Flowport retrieves chunks with cosine similarity scoring")

	rec := api.do(t, http.MethodPost, "/api/knowledge-bases/"+col.ID+"/query", map[string]any{
		"query": "how does cosine scoring work",
		"top_k": 3,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result domain.QueryResult
	decodeBody(t, rec, &result)
	assert.Equal(t, col.ID, result.CollectionID)
	assert.Equal(t, "how does cosine scoring work", result.Query)
	require.NotEmpty(t, result.Matches)
	assert.Contains(t, result.Matches[0].Content, "cosine")
	assert.Greater(t, result.Matches[0].Score, 0.0)
}

func TestQueryCollection_Errors(t *testing.T) {
	api := newTestAPI(t)

	t.Run("not ready", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, "/api/knowledge-bases",
			map[string]any{"name": "Empty"})
		require.Equal(t, http.StatusCreated, rec.Code)

		var col domain.Collection
		decodeBody(t, rec, &col)

		qrec := api.do(t, http.MethodPost, "/api/knowledge-bases/"+col.ID+"/query",
			map[string]any{"query": "anything"})
		require.Equal(t, http.StatusBadRequest, qrec.Code)

		var body ErrorResponse
		decodeBody(t, qrec, &body)
		assert.Contains(t, body.Message, "not ready")
	})

	t.Run("top_k out of range", func(t *testing.T) {
		col := api.seedCollection(t, "Ready", "content words")
		rec := api.do(t, http.MethodPost, "/api/knowledge-bases/"+col.ID+"/query",
			map[string]any{"query": "x", "top_k": 99})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown collection", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, "/api/knowledge-bases/ghost/query",
			map[string]any{"query": "x"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestGetDocument(t *testing.T) {
	api := newTestAPI(t)
	col := api.seedCollection(t, "Guides", "chunk content to fetch later")

	docID := col.Documents[0].ID
	rec := api.do(t, http.MethodGet,
		"/api/knowledge-bases/"+col.ID+"/documents/"+docID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var detail domain.DocumentDetail
	decodeBody(t, rec, &detail)
	assert.Equal(t, docID, detail.ID)
	require.Len(t, detail.Chunks, 1)
	assert.Contains(t, detail.Chunks[0].Content, "chunk content")
}

func TestGetDocument_NotFound(t *testing.T) {
	api := newTestAPI(t)
	col := api.seedCollection(t, "Guides", "content")

	rec := api.do(t, http.MethodGet,
		"/api/knowledge-bases/"+col.ID+"/documents/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDownloadDocument(t *testing.T) {
	api := newTestAPI(t)
	col := api.seedCollection(t, "Guides", "content")

	raw := []byte("original uploaded bytes")
	body, contentType := multipartUpload(t, "report.txt", raw, nil)
	rec := api.doRaw(t, http.MethodPost,
		"/api/knowledge-bases/"+col.ID+"/ingest/file", contentType, body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var doc domain.Document
	decodeBody(t, rec, &doc)

	dl := api.do(t, http.MethodGet,
		"/api/knowledge-bases/"+col.ID+"/documents/"+doc.ID+"/file", nil)
	require.Equal(t, http.StatusOK, dl.Code)
	assert.Equal(t, raw, dl.Body.Bytes())
	assert.Contains(t, dl.Header().Get("Content-Disposition"), "report.txt")
}

func TestDownloadDocument_NoUpload(t *testing.T) {
	api := newTestAPI(t)
	col := api.seedCollection(t, "Guides", "text only")

	rec := api.do(t, http.MethodGet,
		"/api/knowledge-bases/"+col.ID+"/documents/"+col.Documents[0].ID+"/file", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/unknown", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body ErrorResponse
	decodeBody(t, rec, &body)
	assert.Equal(t, "not_found", body.Error)
}
