package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hzhao/ConsultAPI/internal/adapter/utils"
	"github.com/hzhao/ConsultAPI/internal/domain/chatModel"
)

type InMemoryConversationStore struct {
	mu            sync.RWMutex
	conversations map[string]chatModel.Conversation
}

func InitInMemoryConversationStore() *InMemoryConversationStore {
	return &InMemoryConversationStore{
		conversations: make(map[string]chatModel.Conversation),
	}
}

func (s *InMemoryConversationStore) CreateConversation(ctx context.Context, title string) (chatModel.Conversation, error) {
	now := time.Now()
	conversation := chatModel.Conversation{
		Id:        utils.GetNewUUID(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  []chatModel.Turn{},
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[conversation.Id] = conversation
	return conversation, nil
}

func (s *InMemoryConversationStore) GetConversation(ctx context.Context, id string) (chatModel.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conversation, found := s.conversations[id]
	if found {
		//callers mutate the returned slice, keep the stored one intact
		conversation.Messages = append([]chatModel.Turn{}, conversation.Messages...)
	}
	return conversation, found
}

func (s *InMemoryConversationStore) ListConversations(ctx context.Context) ([]chatModel.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conversations := make([]chatModel.Conversation, 0, len(s.conversations))
	for _, conversation := range s.conversations {
		conversations = append(conversations, conversation)
	}
	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].UpdatedAt.After(conversations[j].UpdatedAt)
	})
	return conversations, nil
}

func (s *InMemoryConversationStore) DeleteConversation(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.conversations[id]; !found {
		return false
	}
	delete(s.conversations, id)
	return true
}

func (s *InMemoryConversationStore) AddMessage(ctx context.Context, conversationId string, turn chatModel.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conversation, found := s.conversations[conversationId]
	if !found {
		return conversationNotFound(conversationId)
	}
	conversation.Messages = append(conversation.Messages, turn)
	conversation.UpdatedAt = time.Now()
	s.conversations[conversationId] = conversation
	return nil
}

func (s *InMemoryConversationStore) UpdateTitle(ctx context.Context, id string, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conversation, found := s.conversations[id]
	if !found {
		return conversationNotFound(id)
	}
	conversation.Title = title
	conversation.UpdatedAt = time.Now()
	s.conversations[id] = conversation
	return nil
}
