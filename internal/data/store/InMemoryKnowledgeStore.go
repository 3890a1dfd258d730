package store

import (
	"context"
	"sync"

	"github.com/hzhao/ConsultAPI/internal/domain/knowledgeModel"
)

// InMemoryKnowledgeStore is the fallback when redis is offline: the service
// still runs, the corpus just does not survive a restart.
type InMemoryKnowledgeStore struct {
	mu       sync.RWMutex
	snapshot knowledgeModel.Snapshot
	saved    bool
}

func InitInMemoryKnowledgeStore() *InMemoryKnowledgeStore {
	return &InMemoryKnowledgeStore{}
}

func (s *InMemoryKnowledgeStore) Load(ctx context.Context) (knowledgeModel.Snapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot, s.saved, nil
}

func (s *InMemoryKnowledgeStore) Save(ctx context.Context, snapshot knowledgeModel.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snapshot
	s.saved = true
	return nil
}
