package mcp

import (
	"context"

	"github.com/flowport/flowport/internal/core/domain"
)

// mockKnowledgeService is a mock implementation of driving.KnowledgeService.
type mockKnowledgeService struct {
	collections []domain.Collection
	collection  *domain.Collection
	document    *domain.Document
	detail      *domain.DocumentDetail
	result      *domain.QueryResult
	filePath    string
	err         error

	gotQuery string
	gotTopK  int
}

func (m *mockKnowledgeService) Create(_ context.Context, _ domain.CreateCollectionInput) (*domain.Collection, error) {
	return m.collection, m.err
}

func (m *mockKnowledgeService) List(_ context.Context) ([]domain.Collection, error) {
	return m.collections, m.err
}

func (m *mockKnowledgeService) Get(_ context.Context, _ string) (*domain.Collection, error) {
	return m.collection, m.err
}

func (m *mockKnowledgeService) AutoBuild(_ context.Context, _ domain.AutoBuildInput) (*domain.Collection, error) {
	return m.collection, m.err
}

func (m *mockKnowledgeService) IngestText(_ context.Context, _ string, _ domain.TextIngestInput) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockKnowledgeService) IngestFile(_ context.Context, _ string, _ domain.FileIngestInput) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockKnowledgeService) Query(_ context.Context, _, text string, topK int) (*domain.QueryResult, error) {
	m.gotQuery = text
	m.gotTopK = topK
	return m.result, m.err
}

func (m *mockKnowledgeService) Rebuild(_ context.Context, _ string) error {
	return m.err
}

func (m *mockKnowledgeService) DocumentDetail(_ context.Context, _, _ string) (*domain.DocumentDetail, error) {
	return m.detail, m.err
}

func (m *mockKnowledgeService) DocumentFilePath(_ context.Context, _, _ string) (string, *domain.Document, error) {
	return m.filePath, m.document, m.err
}
