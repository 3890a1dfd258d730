package consult_test

import (
	"context"

	"github.com/hzhao/ConsultAPI/internal/rag/retrieval"
)

type MockRetriever struct {
	OnSearch func(ctx context.Context, query string, k int, categoryId string) ([]retrieval.Result, error)
}

func (m *MockRetriever) Search(ctx context.Context, query string, k int, categoryId string) ([]retrieval.Result, error) {
	if m.OnSearch != nil {
		return m.OnSearch(ctx, query, k, categoryId)
	}
	return nil, nil
}

type MockProvider struct {
	OnComplete func(ctx context.Context, systemPrompt string, instruction string) (string, error)

	Instructions []string
}

func (m *MockProvider) Complete(ctx context.Context, systemPrompt string, instruction string) (string, error) {
	m.Instructions = append(m.Instructions, instruction)
	if m.OnComplete != nil {
		return m.OnComplete(ctx, systemPrompt, instruction)
	}
	return "好的呢~", nil
}
