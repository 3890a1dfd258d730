package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/hzhao/ConsultAPI/internal/data/redisStore"
	"github.com/hzhao/ConsultAPI/internal/data/store"
	"github.com/hzhao/ConsultAPI/internal/domain/chatModel"
)

func newConversationStore(t *testing.T) *store.RedisConversationStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return store.TestConversationStore(redisStore.NewTestStore(client))
}

func TestRedisConversationStore_Lifecycle(t *testing.T) {
	conversationStore := newConversationStore(t)
	ctx := context.Background()

	conversation, err := conversationStore.CreateConversation(ctx, "头痛问诊")
	if err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}
	if conversation.Id == "" {
		t.Fatal("expected a generated id")
	}

	loaded, found := conversationStore.GetConversation(ctx, conversation.Id)
	if !found {
		t.Fatal("conversation was created but not found")
	}
	if loaded.Title != "头痛问诊" || len(loaded.Messages) != 0 {
		t.Errorf("unexpected conversation: %+v", loaded)
	}

	if err := conversationStore.AddMessage(ctx, conversation.Id, chatModel.Turn{
		Role:      chatModel.RoleUser,
		Content:   "我头痛",
		Timestamp: time.Now(),
	}); err != nil {
		t.Fatalf("AddMessage failed: %v", err)
	}

	loaded, _ = conversationStore.GetConversation(ctx, conversation.Id)
	if len(loaded.Messages) != 1 || loaded.Messages[0].Content != "我头痛" {
		t.Errorf("message did not persist: %+v", loaded.Messages)
	}

	if !conversationStore.DeleteConversation(ctx, conversation.Id) {
		t.Error("delete of an existing conversation should report true")
	}
	if conversationStore.DeleteConversation(ctx, conversation.Id) {
		t.Error("second delete should report false")
	}
}

func TestRedisConversationStore_ListNewestFirst(t *testing.T) {
	conversationStore := newConversationStore(t)
	ctx := context.Background()

	first, _ := conversationStore.CreateConversation(ctx, "第一个")
	second, _ := conversationStore.CreateConversation(ctx, "第二个")

	//touching the older conversation moves it to the front
	time.Sleep(2 * time.Millisecond)
	if err := conversationStore.AddMessage(ctx, first.Id, chatModel.Turn{
		Role:    chatModel.RoleUser,
		Content: "还发热",
	}); err != nil {
		t.Fatal(err)
	}

	conversations, err := conversationStore.ListConversations(ctx)
	if err != nil {
		t.Fatalf("ListConversations failed: %v", err)
	}
	if len(conversations) != 2 {
		t.Fatalf("got %d conversations, want 2", len(conversations))
	}
	if conversations[0].Id != first.Id || conversations[1].Id != second.Id {
		t.Errorf("expected most recently updated first, got %s then %s", conversations[0].Title, conversations[1].Title)
	}
}

func TestRedisConversationStore_MissingConversation(t *testing.T) {
	conversationStore := newConversationStore(t)
	ctx := context.Background()

	if _, found := conversationStore.GetConversation(ctx, "ghost"); found {
		t.Error("expected found=false for a missing conversation")
	}
	if err := conversationStore.AddMessage(ctx, "ghost", chatModel.Turn{Content: "hi"}); err == nil {
		t.Error("AddMessage to a missing conversation should fail")
	}
	if err := conversationStore.UpdateTitle(ctx, "ghost", "新标题"); err == nil {
		t.Error("UpdateTitle of a missing conversation should fail")
	}
}
