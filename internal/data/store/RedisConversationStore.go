package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hzhao/ConsultAPI/internal/adapter/utils"
	"github.com/hzhao/ConsultAPI/internal/config"
	"github.com/hzhao/ConsultAPI/internal/data/redisStore"
	"github.com/hzhao/ConsultAPI/internal/domain/chatModel"
	"github.com/hzhao/ConsultAPI/internal/domain/knowledgeModel"
	"github.com/hzhao/ConsultAPI/pkg/logger_i"
)

const conversationIndexKey = "conv:index"

func conversationKey(id string) string {
	return "conv:" + id
}

func conversationNotFound(id string) error {
	return fmt.Errorf("%w: conversation %s", knowledgeModel.ErrNotFound, id)
}

// RedisConversationStore keeps each conversation as one JSON value plus a
// sorted-set index scored by last update, so listing newest-first needs no
// scan.
type RedisConversationStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisConversationStore(ctx context.Context) *RedisConversationStore {
	internal := redisStore.GetRedisStore(ctx, config.RedisConversationStore)
	if internal == nil {
		return nil
	}
	return &RedisConversationStore{
		store:  internal,
		logger: logger_i.NewLogger("ConversationStore"),
	}
}

func (s *RedisConversationStore) CreateConversation(ctx context.Context, title string) (chatModel.Conversation, error) {
	now := time.Now()
	conversation := chatModel.Conversation{
		Id:        utils.GetNewUUID(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  []chatModel.Turn{},
	}
	if err := s.persist(ctx, conversation); err != nil {
		return chatModel.Conversation{}, err
	}
	return conversation, nil
}

func (s *RedisConversationStore) GetConversation(ctx context.Context, id string) (chatModel.Conversation, bool) {
	var conversation chatModel.Conversation
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "conversation Id", id)

	val, err := s.store.Get(ctx, conversationKey(id))
	if err != nil {
		if !s.store.IsNil(err) {
			log.Error("Error reading conversation", "error", err)
		}
		return conversation, false
	}

	if err = json.Unmarshal([]byte(val), &conversation); err != nil {
		log.Error("Error unmarshalling conversation", "error", err)
		return chatModel.Conversation{}, false
	}
	return conversation, true
}

func (s *RedisConversationStore) ListConversations(ctx context.Context) ([]chatModel.Conversation, error) {
	ids, err := s.store.SortedRangeDesc(ctx, conversationIndexKey)
	if err != nil {
		s.logger.Error("Error listing conversations", "error", err)
		return nil, err
	}

	conversations := make([]chatModel.Conversation, 0, len(ids))
	for _, id := range ids {
		if conversation, found := s.GetConversation(ctx, id); found {
			conversations = append(conversations, conversation)
		}
	}
	return conversations, nil
}

func (s *RedisConversationStore) DeleteConversation(ctx context.Context, id string) bool {
	if _, found := s.GetConversation(ctx, id); !found {
		return false
	}
	if err := s.store.Del(ctx, conversationKey(id)); err != nil {
		s.logger.Error("Error deleting conversation", "conversation Id", id, "error", err)
		return false
	}
	if err := s.store.SortedRemove(ctx, conversationIndexKey, id); err != nil {
		s.logger.Error("Error removing conversation from index", "conversation Id", id, "error", err)
	}
	return true
}

func (s *RedisConversationStore) AddMessage(ctx context.Context, conversationId string, turn chatModel.Turn) error {
	conversation, found := s.GetConversation(ctx, conversationId)
	if !found {
		return conversationNotFound(conversationId)
	}
	conversation.Messages = append(conversation.Messages, turn)
	conversation.UpdatedAt = time.Now()
	return s.persist(ctx, conversation)
}

func (s *RedisConversationStore) UpdateTitle(ctx context.Context, id string, title string) error {
	conversation, found := s.GetConversation(ctx, id)
	if !found {
		return conversationNotFound(id)
	}
	conversation.Title = title
	conversation.UpdatedAt = time.Now()
	return s.persist(ctx, conversation)
}

func (s *RedisConversationStore) persist(ctx context.Context, conversation chatModel.Conversation) error {
	data, err := json.Marshal(conversation)
	if err != nil {
		return err
	}
	if err = s.store.Set(ctx, conversationKey(conversation.Id), data, config.RedisNoTTL); err != nil {
		return err
	}
	return s.store.SortedAdd(ctx, conversationIndexKey, conversation.Id, float64(conversation.UpdatedAt.UnixNano()))
}

func TestConversationStore(store *redisStore.Store) *RedisConversationStore {
	return &RedisConversationStore{
		store:  store,
		logger: logger_i.NewLogger("test conversations"),
	}
}
