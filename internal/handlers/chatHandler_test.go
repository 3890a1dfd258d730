package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hzhao/ConsultAPI/internal/data/store"
	"github.com/hzhao/ConsultAPI/internal/domain/chatModel"
)

type stubConsult struct {
	OnConsult func(ctx context.Context, message string, history []chatModel.Turn) (chatModel.ConsultResult, error)
}

func (s *stubConsult) Consult(ctx context.Context, message string, history []chatModel.Turn) (chatModel.ConsultResult, error) {
	if s.OnConsult != nil {
		return s.OnConsult(ctx, message, history)
	}
	return chatModel.ConsultResult{Response: "好的呢~", NeedMoreInfo: true}, nil
}

func (s *stubConsult) State(history []chatModel.Turn) chatModel.DialogueState {
	return chatModel.StateGathering
}

func postConsultation(body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/consultation", strings.NewReader(body))
	rec := httptest.NewRecorder()
	ConsultHandler(rec, req)
	return rec
}

func TestConsultHandler_BlankMessageLeavesNoTrace(t *testing.T) {
	conversations := store.InitInMemoryConversationStore()
	InitJobHandler(nil)
	InitChatHandler(&stubConsult{}, conversations)

	//no conversation id: a blank turn must not open a conversation
	rec := postConsultation(`{"message":"   "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rec.Code)
	}
	stored, err := conversations.ListConversations(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stored) != 0 {
		t.Errorf("blank message left %d conversation(s) behind", len(stored))
	}

	//existing conversation id: the blank turn must not be recorded either,
	//recorded turns feed the symptom derivation on later turns
	existing, err := conversations.CreateConversation(context.Background(), "头痛咨询")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec = postConsultation(`{"message":" \n\t ","conversation_id":"` + existing.Id + `"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rec.Code)
	}
	after, _ := conversations.GetConversation(context.Background(), existing.Id)
	if len(after.Messages) != 0 {
		t.Errorf("blank message was recorded: %d message(s)", len(after.Messages))
	}
}
