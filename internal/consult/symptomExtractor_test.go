package consult

import (
	"testing"

	"github.com/hzhao/ConsultAPI/internal/domain/chatModel"
)

func userTurn(content string) chatModel.Turn {
	return chatModel.Turn{Role: chatModel.RoleUser, Content: content}
}

func assistantTurn(content string) chatModel.Turn {
	return chatModel.Turn{Role: chatModel.RoleAssistant, Content: content}
}

func TestExtract_FirstKeywordPerTurnWins(t *testing.T) {
	a := NewAccumulator(nil)

	//头痛 outranks 怕冷 inside one turn - scanning stops at the first hit
	signals := a.Extract([]chatModel.Turn{userTurn("我头痛还怕冷")})
	if len(signals) != 1 || signals[0] != "head-pain" {
		t.Errorf("got %v, want [head-pain]", signals)
	}
}

func TestExtract_InsertionOrderAndDedupe(t *testing.T) {
	a := NewAccumulator(nil)

	signals := a.Extract([]chatModel.Turn{
		userTurn("发热了"),
		assistantTurn("有没有头痛呀？"), //assistant turns never count
		userTurn("头痛"),
		userTurn("还是发热"), //duplicate, first occurrence wins
		userTurn("无汗"),
	})

	want := []string{"fever", "head-pain", "no-sweat"}
	if len(signals) != len(want) {
		t.Fatalf("got %v, want %v", signals, want)
	}
	for i := range want {
		if signals[i] != want[i] {
			t.Errorf("signal %d: got %s, want %s", i, signals[i], want[i])
		}
	}
}

func TestExtract_EmptyHistory(t *testing.T) {
	a := NewAccumulator(nil)
	if got := a.Extract(nil); len(got) != 0 {
		t.Errorf("got %v, want none", got)
	}
	if got := a.Extract([]chatModel.Turn{userTurn("你好")}); len(got) != 0 {
		t.Errorf("unrecognized text produced %v", got)
	}
}

func TestSignalsIn_AllMatches(t *testing.T) {
	a := NewAccumulator(nil)

	signals := a.SignalsIn("头痛怕冷")
	if len(signals) != 2 || signals[0] != "head-pain" || signals[1] != "aversion-to-cold" {
		t.Errorf("got %v, want [head-pain aversion-to-cold]", signals)
	}
}
