package chatModel

import (
	"context"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Sources   []string  `json:"sources,omitempty"`
}

type Conversation struct {
	Id        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Messages  []Turn    `json:"messages"`
}

type DialogueState string

const (
	StateGathering       DialogueState = "GATHERING"
	StateReadyToDiagnose DialogueState = "READY_TO_DIAGNOSE"
)

// ConsultResult is what one dialogue turn hands back to the API layer.
type ConsultResult struct {
	Response          string   `json:"response"`
	Sources           []string `json:"sources"`
	NeedMoreInfo      bool     `json:"need_more_info"`
	CollectedSymptoms []string `json:"collected_symptoms"`
}

type ConversationStore interface {
	CreateConversation(ctx context.Context, title string) (Conversation, error)
	GetConversation(ctx context.Context, id string) (Conversation, bool)
	ListConversations(ctx context.Context) ([]Conversation, error)
	DeleteConversation(ctx context.Context, id string) bool
	AddMessage(ctx context.Context, conversationId string, turn Turn) error
	UpdateTitle(ctx context.Context, id string, title string) error
}
