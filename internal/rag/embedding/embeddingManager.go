package embedding

import "context"

// Embedder turns text into vectors for the qdrant-backed retriever. The
// lexical retriever never touches this.
type Embedder interface {
	GetEmbedding(ctx context.Context, query string) ([]float32, error)
	BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error)
}
