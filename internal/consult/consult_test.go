package consult_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/hzhao/ConsultAPI/internal/config"
	"github.com/hzhao/ConsultAPI/internal/consult"
	"github.com/hzhao/ConsultAPI/internal/domain/chatModel"
	"github.com/hzhao/ConsultAPI/internal/rag/llm"
	"github.com/hzhao/ConsultAPI/internal/rag/retrieval"
)

func userTurn(content string) chatModel.Turn {
	return chatModel.Turn{Role: chatModel.RoleUser, Content: content}
}

func assistantTurn(content string) chatModel.Turn {
	return chatModel.Turn{Role: chatModel.RoleAssistant, Content: content}
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}

func TestState_ThresholdTransition(t *testing.T) {
	svc := consult.NewService(&MockRetriever{}, &MockProvider{}, 4)

	history := []chatModel.Turn{
		userTurn("头痛"),
		userTurn("发热"),
		userTurn("怕冷"),
	}
	if got := svc.State(history); got != chatModel.StateGathering {
		t.Errorf("3 signals: got %s, want GATHERING", got)
	}

	history = append(history, userTurn("无汗"))
	if got := svc.State(history); got != chatModel.StateReadyToDiagnose {
		t.Errorf("4 signals: got %s, want READY_TO_DIAGNOSE", got)
	}
}

func TestConsult_EmptyMessageRejected(t *testing.T) {
	svc := consult.NewService(&MockRetriever{}, &MockProvider{}, 4)

	_, err := svc.Consult(context.Background(), "   ", nil)
	if !errors.Is(err, consult.ErrEmptyMessage) {
		t.Errorf("got %v, want ErrEmptyMessage", err)
	}
}

func TestConsult_FirstTurnGathering(t *testing.T) {
	retriever := &MockRetriever{
		OnSearch: func(ctx context.Context, query string, k int, categoryId string) ([]retrieval.Result, error) {
			return []retrieval.Result{
				{Content: "太阳之为病，脉浮，头项强痛而恶寒。", Filename: "伤寒论.txt", Score: 2},
			}, nil
		},
	}
	provider := &MockProvider{}
	svc := consult.NewService(retriever, provider, 4)

	result, err := svc.Consult(context.Background(), "我头痛还怕冷", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.NeedMoreInfo {
		t.Error("first turn should still be gathering")
	}
	//both keywords in the single message must surface, not just the first
	if !contains(result.CollectedSymptoms, "head-pain") || !contains(result.CollectedSymptoms, "aversion-to-cold") {
		t.Errorf("collected symptoms %v missing head-pain or aversion-to-cold", result.CollectedSymptoms)
	}
	if len(result.Sources) != 1 || result.Sources[0] != "伤寒论.txt" {
		t.Errorf("got sources %v, want [伤寒论.txt]", result.Sources)
	}

	instruction := provider.Instructions[0]
	if !strings.Contains(instruction, "太阳之为病") {
		t.Error("gathering instruction should embed retrieved grounding")
	}
	if !strings.Contains(instruction, "暂无") {
		t.Error("no prior signals: instruction should state 暂无")
	}
}

func TestConsult_DiagnoseInstructionAtThreshold(t *testing.T) {
	provider := &MockProvider{}
	svc := consult.NewService(&MockRetriever{}, provider, 4)

	history := []chatModel.Turn{
		userTurn("头痛"),
		assistantTurn("有没有发热呀？"),
		userTurn("发热"),
		userTurn("怕冷"),
		userTurn("无汗"),
	}
	result, err := svc.Consult(context.Background(), "接下来怎么办", history)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.NeedMoreInfo {
		t.Error("at threshold the turn should be a diagnosis, not another question")
	}
	instruction := provider.Instructions[0]
	if !strings.Contains(instruction, "做出诊断判断") {
		t.Error("expected the diagnose instruction at threshold")
	}
	if strings.Contains(instruction, "【对话历史】") {
		t.Error("diagnose instruction should not carry the dialogue history block")
	}
}

func TestConsult_RetrieverFailureFallsBack(t *testing.T) {
	retriever := &MockRetriever{
		OnSearch: func(ctx context.Context, query string, k int, categoryId string) ([]retrieval.Result, error) {
			return nil, errors.New("corpus offline")
		},
	}
	provider := &MockProvider{}
	svc := consult.NewService(retriever, provider, 4)

	result, err := svc.Consult(context.Background(), "我头痛", nil)
	if err != nil {
		t.Fatalf("retrieval failure must not fail the turn: %v", err)
	}
	if len(result.Sources) != 0 {
		t.Errorf("got sources %v, want none", result.Sources)
	}
	if !strings.Contains(provider.Instructions[0], config.FallbackGrounding) {
		t.Error("instruction should embed the fallback grounding")
	}
}

func TestConsult_LLMFailureServesApology(t *testing.T) {
	provider := &MockProvider{
		OnComplete: func(ctx context.Context, systemPrompt string, instruction string) (string, error) {
			return "", errors.New("model overloaded")
		},
	}
	svc := consult.NewService(&MockRetriever{}, provider, 4)

	history := []chatModel.Turn{userTurn("头痛")}
	result, err := svc.Consult(context.Background(), "还发热", history)
	if err != nil {
		t.Fatalf("llm failure must not fail the turn: %v", err)
	}

	if result.Response != config.ApologyMessage {
		t.Errorf("got %q, want apology", result.Response)
	}
	if !result.NeedMoreInfo {
		t.Error("apology turn stays in gathering")
	}
	//the failed turn's message must not be folded into the symptom list
	if contains(result.CollectedSymptoms, "fever") {
		t.Errorf("failed turn leaked its message into symptoms: %v", result.CollectedSymptoms)
	}
	if !contains(result.CollectedSymptoms, "head-pain") {
		t.Errorf("prior signals should survive: %v", result.CollectedSymptoms)
	}
}

func TestConsult_TimeoutServesApology(t *testing.T) {
	provider := &MockProvider{
		OnComplete: func(ctx context.Context, systemPrompt string, instruction string) (string, error) {
			deadline, ok := ctx.Deadline()
			if !ok {
				t.Error("llm call context should carry a deadline")
			} else if remaining := time.Until(deadline); remaining > config.LLMCallTimeout {
				t.Errorf("deadline is %v away, want at most %v", remaining, config.LLMCallTimeout)
			}
			return "", fmt.Errorf("%w: %v", llm.ErrTimeout, context.DeadlineExceeded)
		},
	}
	svc := consult.NewService(&MockRetriever{}, provider, 4)

	history := []chatModel.Turn{userTurn("头痛")}
	result, err := svc.Consult(context.Background(), "还发热", history)
	if err != nil {
		t.Fatalf("llm timeout must not fail the turn: %v", err)
	}

	if result.Response != config.ApologyMessage {
		t.Errorf("got %q, want apology", result.Response)
	}
	if !result.NeedMoreInfo {
		t.Error("timed-out turn stays in gathering")
	}
	//same degradation as any other llm failure: the message is not folded
	if contains(result.CollectedSymptoms, "fever") {
		t.Errorf("timed-out turn leaked its message into symptoms: %v", result.CollectedSymptoms)
	}
	if !contains(result.CollectedSymptoms, "head-pain") {
		t.Errorf("prior signals should survive: %v", result.CollectedSymptoms)
	}
}

func TestConsult_UnrecognizedMessageFoldedRaw(t *testing.T) {
	svc := consult.NewService(&MockRetriever{}, &MockProvider{}, 4)

	result, err := svc.Consult(context.Background(), "最近胃口不好", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !contains(result.CollectedSymptoms, "最近胃口不好") {
		t.Errorf("unmatched complaint should be kept verbatim: %v", result.CollectedSymptoms)
	}
}

func TestConsult_SourcesCappedAndDeduplicated(t *testing.T) {
	retriever := &MockRetriever{
		OnSearch: func(ctx context.Context, query string, k int, categoryId string) ([]retrieval.Result, error) {
			return []retrieval.Result{
				{Content: "a", Filename: "一.txt", Score: 5},
				{Content: "b", Filename: "一.txt", Score: 4},
				{Content: "c", Filename: "二.txt", Score: 3},
				{Content: "d", Filename: "三.txt", Score: 2},
				{Content: "e", Filename: "四.txt", Score: 1},
			}, nil
		},
	}
	svc := consult.NewService(retriever, &MockProvider{}, 4)

	result, err := svc.Consult(context.Background(), "头痛", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"一.txt", "二.txt", "三.txt"}
	if len(result.Sources) != len(want) {
		t.Fatalf("got %v, want %v", result.Sources, want)
	}
	for i := range want {
		if result.Sources[i] != want[i] {
			t.Errorf("source %d: got %s, want %s", i, result.Sources[i], want[i])
		}
	}
}
