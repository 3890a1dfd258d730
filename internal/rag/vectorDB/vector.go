package vectorDB

import (
	"context"

	"github.com/hzhao/ConsultAPI/internal/domain/knowledgeModel"
)

// ChunkHit is one scored point coming back from the vector store.
type ChunkHit struct {
	Content    string
	Filename   string
	DocId      string
	CategoryId string
	Score      float32
}

type DataProcessor interface {
	EnsureCollection(ctx context.Context, collectionName string) error
	UpsertChunks(ctx context.Context, collectionName string, doc knowledgeModel.Document, vectors [][]float32) error
	Query(ctx context.Context, collectionName string, vector []float32, limit uint64, categoryId string) ([]ChunkHit, error)
	DeleteDocument(ctx context.Context, collectionName string, docId string) error
}
