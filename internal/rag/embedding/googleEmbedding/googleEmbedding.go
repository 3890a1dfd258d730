package googleEmbedding

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hzhao/ConsultAPI/internal/config"
	"github.com/hzhao/ConsultAPI/internal/rag/embedding"
	"github.com/hzhao/ConsultAPI/pkg/logger_i"
)

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client
var dimension int32 = config.EmbeddingOutputDimensionality

type client struct {
	genAi *genai.Client
	model string
}

func GetGoogleEmbeddingClient(ctx context.Context, modelName string, apikey string) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("google_embedding")
		newGoogleEmbedder(ctx, modelName, apikey)
	})

	//if init still fails
	if embeddingClient == nil {
		return nil
	}
	return embeddingClient
}

func newGoogleEmbedder(ctx context.Context, modelName string, apikey string) {
	if apikey == "" {
		logger.Error("Embedding API key is empty - client not created")
		return
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Google Embedding client:", "error", err)
		return
	}
	embeddingClient = &client{genAi: c, model: modelName}
	logger.Info("Google Embedding client created", "model", modelName)
	go closeClient(ctx, embeddingClient)
}

func closeClient(ctx context.Context, embeddingClient *client) {
	<-ctx.Done()
	logger.Info("Closing Google Embedding client")
	embeddingClient.genAi = nil
	embeddingClient.model = ""
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	result, err := c.doCall(ctx, genai.Text(query))
	if err != nil {
		log.Error("Error getting Embedding from Google", "error", err)
		return nil, err
	}
	if len(result.Embeddings) == 0 {
		log.Error("Embedding response carried no vectors")
		return nil, errors.New("embedding response carried no vectors")
	}
	return result.Embeddings[0].Values, nil
}

// BatchEmbedding embeds one document's chunks in a single call. Knowledge
// documents here are classical texts of a few hundred chunks at most, so the
// async batch-job API would be overkill - one retry on rate limit covers the
// realistic failure mode.
func (c *client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chunks", len(chunks))

	res, err := c.doCall(ctx, getContent(chunks))
	if err != nil && isRateLimited(err) {
		log.Error("Rate limit hit, retrying in 5 seconds", "error", err)
		time.Sleep(5 * time.Second)
		res, err = c.doCall(ctx, getContent(chunks))
	}
	if err != nil {
		log.Error("Error getting batch Embeddings from Google", "error", err)
		return nil, err
	}

	//one vector per chunk, otherwise the upsert would misalign payloads
	if len(res.Embeddings) != len(chunks) {
		log.Error("Embedding count mismatch", "got", len(res.Embeddings))
		return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(res.Embeddings), len(chunks))
	}

	var embeddingResults [][]float32
	for _, r := range res.Embeddings {
		embeddingResults = append(embeddingResults, r.Values)
	}
	return embeddingResults, nil
}

func (c *client) doCall(ctx context.Context, content []*genai.Content) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, content, &genai.EmbedContentConfig{
		OutputDimensionality: &dimension,
		TaskType:             "RETRIEVAL_DOCUMENT",
	})
}

func getContent(chunks []string) []*genai.Content {
	contentsToSend := make([]*genai.Content, 0, len(chunks))
	for _, chunk := range chunks {
		contentsToSend = append(contentsToSend, &genai.Content{
			Parts: []*genai.Part{{Text: chunk}},
		})
	}
	return contentsToSend
}

func isRateLimited(err error) bool {
	if s, ok := status.FromError(err); ok {
		return s.Code() == codes.ResourceExhausted
	}
	return false
}
