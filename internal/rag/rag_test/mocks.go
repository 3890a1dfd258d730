package rag_test

import (
	"context"

	"github.com/hzhao/ConsultAPI/internal/domain/knowledgeModel"
)

// MockKnowledge stubs the knowledge store - only AddDocument matters for
// ingestion tests, the rest return zero values.
type MockKnowledge struct {
	OnAddDocument func(ctx context.Context, content string, filename string, fileType string, size int64, categoryId string, creator string) (knowledgeModel.Document, error)

	AddedContent []string
}

func (m *MockKnowledge) AddDocument(ctx context.Context, content string, filename string, fileType string, size int64, categoryId string, creator string) (knowledgeModel.Document, error) {
	m.AddedContent = append(m.AddedContent, content)
	if m.OnAddDocument != nil {
		return m.OnAddDocument(ctx, content, filename, fileType, size, categoryId, creator)
	}
	return knowledgeModel.Document{Id: "doc-mock", ChunkCount: 1}, nil
}

func (m *MockKnowledge) CreateCategory(ctx context.Context, name string, creator string) (knowledgeModel.Category, error) {
	return knowledgeModel.Category{}, nil
}
func (m *MockKnowledge) ListCategories(ctx context.Context) []knowledgeModel.Category { return nil }
func (m *MockKnowledge) RenameCategory(ctx context.Context, id string, name string) error {
	return nil
}
func (m *MockKnowledge) DeleteCategory(ctx context.Context, id string) error { return nil }
func (m *MockKnowledge) GetDocument(ctx context.Context, id string) (knowledgeModel.Document, error) {
	return knowledgeModel.Document{}, nil
}
func (m *MockKnowledge) ListDocuments(ctx context.Context, categoryId string, page int, pageSize int, status knowledgeModel.DocStatus) knowledgeModel.DocumentPage {
	return knowledgeModel.DocumentPage{}
}
func (m *MockKnowledge) EnableDocument(ctx context.Context, id string) error  { return nil }
func (m *MockKnowledge) DisableDocument(ctx context.Context, id string) error { return nil }
func (m *MockKnowledge) RenameDocument(ctx context.Context, id string, newName string) error {
	return nil
}
func (m *MockKnowledge) MigrateDocument(ctx context.Context, id string, newCategoryId string) error {
	return nil
}
func (m *MockKnowledge) UpdateDocumentContent(ctx context.Context, id string, newContent string) error {
	return nil
}
func (m *MockKnowledge) DeleteDocument(ctx context.Context, id string) error { return nil }
func (m *MockKnowledge) CloneDocument(ctx context.Context, id string) (knowledgeModel.Document, error) {
	return knowledgeModel.Document{}, nil
}
func (m *MockKnowledge) EnabledDocuments(categoryId string) []knowledgeModel.Document { return nil }
func (m *MockKnowledge) GetStats(ctx context.Context) knowledgeModel.Stats {
	return knowledgeModel.Stats{}
}
