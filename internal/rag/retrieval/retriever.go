package retrieval

import (
	"context"

	"github.com/hzhao/ConsultAPI/internal/domain/knowledgeModel"
)

// Result is ephemeral - scored grounding for one query, never persisted.
type Result struct {
	Content    string  `json:"content"`
	Filename   string  `json:"filename"`
	DocId      string  `json:"doc_id"`
	CategoryId string  `json:"category_id"`
	Score      float64 `json:"score"`
}

// Retriever is the retrieval contract: at most k results over enabled
// documents (optionally one category), descending score, ties kept in corpus
// order. The scoring metric behind it is swappable - the lexical baseline and
// the qdrant backend both sit behind this.
type Retriever interface {
	Search(ctx context.Context, query string, k int, categoryId string) ([]Result, error)
}

// CorpusProvider is the read-side view the knowledge service exposes to
// retrieval backends.
type CorpusProvider interface {
	EnabledDocuments(categoryId string) []knowledgeModel.Document
}
