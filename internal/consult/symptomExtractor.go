package consult

import (
	"strings"

	"github.com/hzhao/ConsultAPI/internal/domain/chatModel"
)

// SignalKeyword ties a clinical keyword as patients actually type it to the
// canonical signal name the policy layer counts.
type SignalKeyword struct {
	Keyword string
	Signal  string
}

// DefaultVocabulary is the recognized symptom set, scanned in priority order.
var DefaultVocabulary = []SignalKeyword{
	{"头痛", "head-pain"},
	{"身痛", "body-pain"},
	{"发热", "fever"},
	{"怕冷", "aversion-to-cold"},
	{"恶寒", "chills"},
	{"无汗", "no-sweat"},
	{"有汗", "sweating"},
	{"酸痛", "aches"},
}

type Accumulator struct {
	vocabulary []SignalKeyword
}

func NewAccumulator(vocabulary []SignalKeyword) *Accumulator {
	if len(vocabulary) == 0 {
		vocabulary = DefaultVocabulary
	}
	return &Accumulator{vocabulary: vocabulary}
}

// Extract walks the user-authored turns and records the first matching
// keyword per turn - one signal per turn, then scanning of that turn stops.
// The result is deduplicated and keeps first-occurrence order. Assistant
// turns never contribute.
func (a *Accumulator) Extract(history []chatModel.Turn) []string {
	var signals []string
	seen := make(map[string]bool)

	for _, turn := range history {
		if turn.Role != chatModel.RoleUser {
			continue
		}
		for _, kw := range a.vocabulary {
			if strings.Contains(turn.Content, kw.Keyword) {
				if !seen[kw.Signal] {
					seen[kw.Signal] = true
					signals = append(signals, kw.Signal)
				}
				break
			}
		}
	}
	return signals
}

// SignalsIn returns every vocabulary signal present in a single message, in
// vocabulary order. Used when folding the just-asked message into the
// reported symptom list, where stopping at the first hit would hide
// information the patient volunteered in one breath ("头痛怕冷").
func (a *Accumulator) SignalsIn(message string) []string {
	var signals []string
	for _, kw := range a.vocabulary {
		if strings.Contains(message, kw.Keyword) {
			signals = append(signals, kw.Signal)
		}
	}
	return signals
}
