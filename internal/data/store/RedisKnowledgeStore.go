package store

import (
	"context"
	"encoding/json"

	"github.com/hzhao/ConsultAPI/internal/config"
	"github.com/hzhao/ConsultAPI/internal/data/redisStore"
	"github.com/hzhao/ConsultAPI/internal/domain/knowledgeModel"
	"github.com/hzhao/ConsultAPI/pkg/logger_i"
)

const knowledgeSnapshotKey = "knowledge:snapshot"

// RedisKnowledgeStore persists the whole knowledge snapshot as one JSON
// value. The corpus is a handful of classical texts, so a single key keeps
// commit atomic without transactions - either the new snapshot lands or the
// old one stays.
type RedisKnowledgeStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisKnowledgeStore(ctx context.Context) *RedisKnowledgeStore {
	internal := redisStore.GetRedisStore(ctx, config.RedisKnowledgeStore)
	if internal == nil {
		return nil
	}
	return &RedisKnowledgeStore{
		store:  internal,
		logger: logger_i.NewLogger("KnowledgeStore"),
	}
}

func (s *RedisKnowledgeStore) Load(ctx context.Context) (knowledgeModel.Snapshot, bool, error) {
	var snapshot knowledgeModel.Snapshot

	val, err := s.store.Get(ctx, knowledgeSnapshotKey)
	if err != nil {
		if s.store.IsNil(err) {
			return snapshot, false, nil
		}
		s.logger.Error("Error loading knowledge snapshot", "error", err)
		return snapshot, false, err
	}

	if err = json.Unmarshal([]byte(val), &snapshot); err != nil {
		s.logger.Error("Error unmarshalling knowledge snapshot", "error", err)
		return knowledgeModel.Snapshot{}, false, err
	}
	return snapshot, true, nil
}

func (s *RedisKnowledgeStore) Save(ctx context.Context, snapshot knowledgeModel.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	err = s.store.Set(ctx, knowledgeSnapshotKey, data, config.RedisNoTTL)
	if err != nil {
		s.logger.Error("Error saving knowledge snapshot", "error", err)
	}
	return err
}

func TestKnowledgeStore(store *redisStore.Store) *RedisKnowledgeStore {
	return &RedisKnowledgeStore{
		store:  store,
		logger: logger_i.NewLogger("test knowledge"),
	}
}
