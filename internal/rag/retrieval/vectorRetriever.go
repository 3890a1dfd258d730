package retrieval

import (
	"context"
	"fmt"

	"github.com/hzhao/ConsultAPI/internal/config"
	"github.com/hzhao/ConsultAPI/internal/domain/knowledgeModel"
	"github.com/hzhao/ConsultAPI/internal/rag/embedding"
	"github.com/hzhao/ConsultAPI/internal/rag/vectorDB"
	"github.com/hzhao/ConsultAPI/pkg/logger_i"
)

// VectorRetriever is the qdrant-backed alternative to the lexical baseline.
// It doubles as the knowledge store's chunk index: document mutations flow
// into qdrant through IndexDocument/RemoveDocument, and Search post-filters
// hits against the enabled corpus so a disabled document never grounds a
// turn even when its points are still in qdrant.
type VectorRetriever struct {
	db       vectorDB.DataProcessor
	embedder embedding.Embedder
	corpus   CorpusProvider
	logger   *logger_i.Logger
}

func NewVectorRetriever(db vectorDB.DataProcessor, embedder embedding.Embedder, corpus CorpusProvider) *VectorRetriever {
	return &VectorRetriever{
		db:       db,
		embedder: embedder,
		corpus:   corpus,
		logger:   logger_i.NewLogger("vector_retrieval"),
	}
}

func (r *VectorRetriever) Search(ctx context.Context, query string, k int, categoryId string) ([]Result, error) {
	if query == "" || k <= 0 {
		return nil, nil
	}
	log := r.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	vector, err := r.embedder.GetEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query failed: %w", err)
	}

	//over-fetch so post-filtering disabled docs still leaves k hits
	hits, err := r.db.Query(ctx, config.CollectionName, vector, uint64(k*2), categoryId)
	if err != nil {
		return nil, fmt.Errorf("vector query failed: %w", err)
	}

	enabled := make(map[string]bool)
	for _, doc := range r.corpus.EnabledDocuments(categoryId) {
		enabled[doc.Id] = true
	}

	var results []Result
	for _, hit := range hits {
		if !enabled[hit.DocId] {
			continue
		}
		results = append(results, Result{
			Content:    hit.Content,
			Filename:   hit.Filename,
			DocId:      hit.DocId,
			CategoryId: hit.CategoryId,
			Score:      float64(hit.Score),
		})
		if len(results) == k {
			break
		}
	}

	log.Debug("vector search", "hits", len(hits), "after filtering", len(results))
	return results, nil
}

func (r *VectorRetriever) IndexDocument(ctx context.Context, doc knowledgeModel.Document) error {
	if len(doc.Chunks) == 0 {
		return nil
	}

	texts := make([]string, len(doc.Chunks))
	for i, chunk := range doc.Chunks {
		texts[i] = chunk.Content
	}

	vectors, err := r.embedder.BatchEmbedding(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding document chunks failed: %w", err)
	}
	return r.db.UpsertChunks(ctx, config.CollectionName, doc, vectors)
}

func (r *VectorRetriever) RemoveDocument(ctx context.Context, docId string) error {
	return r.db.DeleteDocument(ctx, config.CollectionName, docId)
}
