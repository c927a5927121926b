package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/flowport/flowport/internal/adapters/driven/storage/fs"
	"github.com/flowport/flowport/internal/core/domain"
	"github.com/flowport/flowport/internal/core/ports/driven"
	"github.com/flowport/flowport/internal/core/services"
	"github.com/flowport/flowport/internal/extractors"
)

// --- Mock implementations ---

type mockProviderClient struct {
	provider domain.Provider
	resp     *driven.ProviderResponse
	err      error
	gotReq   driven.ProviderRequest
}

func (m *mockProviderClient) Provider() domain.Provider {
	return m.provider
}

func (m *mockProviderClient) Infer(ctx context.Context, req driven.ProviderRequest) (*driven.ProviderResponse, error) {
	m.gotReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

type mockProviderRegistry struct {
	clients map[domain.Provider]driven.ProviderClient
}

func (m *mockProviderRegistry) ClientFor(provider domain.Provider) (driven.ProviderClient, error) {
	client, ok := m.clients[provider]
	if !ok {
		return nil, fmt.Errorf("provider %q: %w", provider, domain.ErrUnsupportedProvider)
	}
	return client, nil
}

// --- Test fixture ---

type testAPI struct {
	handler   http.Handler
	knowledge *services.KnowledgeService
	client    *mockProviderClient
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	store, err := fs.NewStore(t.TempDir())
	require.NoError(t, err)

	knowledge := services.NewKnowledgeService(store, extractors.NewRegistry(), nil, zap.NewNop())

	client := &mockProviderClient{
		provider: domain.ProviderOpenAI,
		resp: &driven.ProviderResponse{
			Payload: map[string]any{"id": "resp-1"},
			Text:    "mocked answer",
		},
	}
	registry := &mockProviderRegistry{clients: map[domain.Provider]driven.ProviderClient{
		domain.ProviderOpenAI:      client,
		domain.ProviderHuggingFace: client,
	}}
	inference := services.NewInferenceService(registry, knowledge, nil, domain.DefaultTopK, zap.NewNop())

	h := NewHandler(knowledge, inference, "Flowport API", zap.NewNop())

	return &testAPI{
		handler:   NewRouter(h, 30*time.Second),
		knowledge: knowledge,
		client:    client,
	}
}

// do sends a JSON request through the full router.
func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

// doRaw sends a request with a prebuilt body and content type.
func (a *testAPI) doRaw(t *testing.T, method, path, contentType string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), "body: %s", rec.Body.String())
}

// seedCollection creates a built collection with one document.
func (a *testAPI) seedCollection(t *testing.T, name, content string) *domain.Collection {
	t.Helper()
	ctx := context.Background()

	col, err := a.knowledge.Create(ctx, domain.CreateCollectionInput{Name: name})
	require.NoError(t, err)

	_, err = a.knowledge.IngestText(ctx, col.ID, domain.TextIngestInput{
		Title:   "Seed",
		Content: content,
	})
	require.NoError(t, err)

	col, err = a.knowledge.Get(ctx, col.ID)
	require.NoError(t, err)
	return col
}
