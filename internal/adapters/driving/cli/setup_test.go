package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/flowport/flowport/internal/adapters/driven/storage/fs"
	"github.com/flowport/flowport/internal/config"
	"github.com/flowport/flowport/internal/core/domain"
	"github.com/flowport/flowport/internal/core/ports/driving"
	"github.com/flowport/flowport/internal/core/services"
	"github.com/flowport/flowport/internal/extractors"
)

// --- Mock implementations ---

type mockInferenceService struct {
	result *domain.InferenceResult
	err    error
	gotIn  domain.InferenceInput
	calls  int
}

func (m *mockInferenceService) Run(_ context.Context, in domain.InferenceInput) (*domain.InferenceResult, error) {
	m.gotIn = in
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &domain.InferenceResult{
		Provider:   in.Provider,
		Model:      in.Model,
		OutputText: "mock answer",
		Messages:   in.Messages,
	}, nil
}

type mockAuditStore struct {
	entries []domain.AuditEntry
	err     error
	closed  bool
}

func (m *mockAuditStore) Record(_ context.Context, entry *domain.AuditEntry) error {
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockAuditStore) Recent(_ context.Context, limit int) ([]domain.AuditEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	if limit <= 0 || limit > len(m.entries) {
		limit = len(m.entries)
	}
	return m.entries[:limit], nil
}

func (m *mockAuditStore) Close() error {
	m.closed = true
	return nil
}

// --- Test fixture ---

// testServices exposes the wired mocks so tests can seed and inspect them.
type testServices struct {
	knowledge driving.KnowledgeService
	inference *mockInferenceService
	audit     *mockAuditStore
}

// setupTestServices wires the package service variables with a real
// knowledge service over a temp store plus mocks for the rest, so
// ensureRuntime never touches config or disk outside the test dir.
func setupTestServices(t *testing.T) (*testServices, func()) {
	t.Helper()

	store, err := fs.NewStore(t.TempDir())
	require.NoError(t, err)

	svc := &testServices{
		knowledge: services.NewKnowledgeService(store, extractors.NewRegistry(), nil, zap.NewNop()),
		inference: &mockInferenceService{},
		audit:     &mockAuditStore{},
	}

	oldKnowledge := knowledgeService
	oldInference := inferenceService
	oldAudit := auditStore
	oldConfig := appConfig
	oldLogger := appLogger

	knowledgeService = svc.knowledge
	inferenceService = svc.inference
	auditStore = svc.audit
	appConfig = config.Default()
	appLogger = zap.NewNop()

	cleanup := func() {
		knowledgeService = oldKnowledge
		inferenceService = oldInference
		auditStore = oldAudit
		appConfig = oldConfig
		appLogger = oldLogger
	}
	return svc, cleanup
}

// seedTestCollection creates a built collection with one document.
func seedTestCollection(t *testing.T, knowledge driving.KnowledgeService, name, content string) *domain.Collection {
	t.Helper()
	ctx := context.Background()

	col, err := knowledge.Create(ctx, domain.CreateCollectionInput{Name: name})
	require.NoError(t, err)

	_, err = knowledge.IngestText(ctx, col.ID, domain.TextIngestInput{
		Title:   "Seed",
		Content: content,
	})
	require.NoError(t, err)

	col, err = knowledge.Get(ctx, col.ID)
	require.NoError(t, err)
	return col
}
