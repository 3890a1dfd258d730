package knowledge_test

import (
	"context"

	"github.com/hzhao/ConsultAPI/internal/domain/knowledgeModel"
)

// MockPersistence implements knowledgeModel.Persistence
type MockPersistence struct {
	OnLoad func(ctx context.Context) (knowledgeModel.Snapshot, bool, error)
	OnSave func(ctx context.Context, snap knowledgeModel.Snapshot) error

	Saved []knowledgeModel.Snapshot
}

func (m *MockPersistence) Load(ctx context.Context) (knowledgeModel.Snapshot, bool, error) {
	if m.OnLoad != nil {
		return m.OnLoad(ctx)
	}
	return knowledgeModel.Snapshot{}, false, nil
}

func (m *MockPersistence) Save(ctx context.Context, snap knowledgeModel.Snapshot) error {
	if m.OnSave != nil {
		return m.OnSave(ctx, snap)
	}
	m.Saved = append(m.Saved, snap)
	return nil
}

// MockChunkIndex implements knowledge.ChunkIndex
type MockChunkIndex struct {
	Indexed []string
	Removed []string
}

func (m *MockChunkIndex) IndexDocument(ctx context.Context, doc knowledgeModel.Document) error {
	m.Indexed = append(m.Indexed, doc.Id)
	return nil
}

func (m *MockChunkIndex) RemoveDocument(ctx context.Context, docId string) error {
	m.Removed = append(m.Removed, docId)
	return nil
}
