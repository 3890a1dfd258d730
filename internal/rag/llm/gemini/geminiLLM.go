package gemini

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"google.golang.org/genai"

	"github.com/hzhao/ConsultAPI/internal/config"
	"github.com/hzhao/ConsultAPI/internal/rag/llm"
	"github.com/hzhao/ConsultAPI/pkg/logger_i"
)

// fallback collaborator when no Zhipu key is configured
type llmClient struct {
	client    *genai.Client
	modelName string
}

var logger *logger_i.Logger
var geminiClient *llmClient
var once sync.Once

func GetGeminiClient(ctx context.Context, apikey string, modelName string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_gemini")
		newGeminiClient(ctx, apikey, modelName)
	})

	if geminiClient == nil {
		return nil
	}
	return geminiClient
}

func newGeminiClient(ctx context.Context, apikey string, modelName string) {
	if apikey == "" {
		logger.Error("Gemini API key is empty - client not created")
		return
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Gemini client:", "error", err)
		return
	}
	geminiClient = &llmClient{client: c, modelName: modelName}
	logger.Info("Gemini client created")
	go closeClient(ctx, geminiClient)
}

func (c *llmClient) Complete(ctx context.Context, systemPrompt string, instruction string) (string, error) {
	logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	//same sampling policy as the primary provider
	contentConfig := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		},
		Temperature:     genai.Ptr[float32](config.ModelTemperature),
		MaxOutputTokens: config.ModelMaxTokens,
	}

	result, err := c.client.Models.GenerateContent(ctx, c.modelName, genai.Text(instruction), contentConfig)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", llm.ErrTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", llm.ErrUnavailable, err)
	}
	return result.Text(), nil
}

func closeClient(ctx context.Context, client *llmClient) {
	<-ctx.Done()
	logger.Info("Closing Gemini client")
	client.client = nil
	client.modelName = ""
}
