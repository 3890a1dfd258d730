package llm

import (
	"context"
	"errors"
)

var (
	ErrUnavailable = errors.New("llm provider unavailable")
	ErrTimeout     = errors.New("llm call timed out")
)

// Provider is the one external language-model collaborator: fixed system
// framing in, one instruction in, text out. No retries happen behind it.
type Provider interface {
	Complete(ctx context.Context, systemPrompt string, instruction string) (string, error)
}
