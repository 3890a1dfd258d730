package knowledgeModel

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

type DocStatus string

const (
	StatusEnabled  DocStatus = "enabled"
	StatusDisabled DocStatus = "disabled"
)

type Category struct {
	Id        string    `json:"id"`
	Name      string    `json:"name"`
	Creator   string    `json:"creator"`
	CreatedAt time.Time `json:"created_at"`

	//derived - recomputed from live documents on every read, never stored authoritatively
	DocumentCount int `json:"document_count"`
}

// Chunk is owned exclusively by its document. Index is the ordinal from the
// chunking pass and is not reassigned until the content is replaced wholesale.
type Chunk struct {
	Id      string `json:"id"`
	Content string `json:"content"`
	Index   int    `json:"index"`
}

type Document struct {
	Id               string    `json:"id"`
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"original_filename"`
	Type             string    `json:"type"`
	SizeBytes        int64     `json:"size"`
	CategoryId       string    `json:"category_id"`
	Chunks           []Chunk   `json:"chunks"`
	ChunkCount       int       `json:"chunk_count"`
	Status           DocStatus `json:"status"`
	Creator          string    `json:"creator"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type DocumentPage struct {
	Items      []Document `json:"items"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
}

type Stats struct {
	TotalCategories  int    `json:"total_categories"`
	TotalDocuments   int    `json:"total_documents"`
	EnabledDocuments int    `json:"enabled_documents"`
	TotalChunks      int    `json:"total_chunks"` //enabled documents only
	CollectionName   string `json:"collection_name"`
}

// Snapshot is the full store state handed to the persistence collaborator
// after every committed mutation.
type Snapshot struct {
	Categories []Category `json:"categories"`
	Documents  []Document `json:"documents"`
}

type Persistence interface {
	// Load returns found=false when nothing has been persisted yet.
	Load(ctx context.Context) (Snapshot, bool, error)
	Save(ctx context.Context, snapshot Snapshot) error
}
