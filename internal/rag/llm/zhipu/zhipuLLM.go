package zhipu

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hzhao/ConsultAPI/internal/config"
	"github.com/hzhao/ConsultAPI/internal/customHttpClient"
	"github.com/hzhao/ConsultAPI/internal/rag/llm"
	"github.com/hzhao/ConsultAPI/pkg/logger_i"
)

// Zhipu exposes an OpenAI-compatible endpoint, so the openai client talks to
// glm-4 directly - no bespoke SDK needed.
type llmClient struct {
	client    openai.Client
	modelName string
}

var logger *logger_i.Logger
var zhipuClient *llmClient
var once sync.Once

func GetZhipuClient(ctx context.Context, apikey string, modelName string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_zhipu")
		newZhipuClient(apikey, modelName)
	})

	if zhipuClient == nil {
		return nil
	}
	return zhipuClient
}

func newZhipuClient(apikey string, modelName string) {
	if apikey == "" {
		logger.Error("Zhipu API key is empty - client not created")
		return
	}

	c := openai.NewClient(
		option.WithBaseURL(config.ZhipuBaseURL),
		option.WithAPIKey(apikey),
		option.WithHTTPClient(customHttpClient.PooledClient()),
	)
	zhipuClient = &llmClient{client: c, modelName: modelName}
	logger.Info("Zhipu client created", "model", modelName)
}

func (c *llmClient) Complete(ctx context.Context, systemPrompt string, instruction string) (string, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	log.Debug("Calling Zhipu", "instruction length", len(instruction))

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(instruction),
		},
		Temperature: openai.Float(config.ModelTemperature),
		MaxTokens:   openai.Int(config.ModelMaxTokens),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", llm.ErrTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", llm.ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", llm.ErrUnavailable
	}
	return resp.Choices[0].Message.Content, nil
}
