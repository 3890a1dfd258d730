package knowledge

import (
	"context"
	"fmt"
	"time"

	"github.com/hzhao/ConsultAPI/internal/adapter/utils"
	"github.com/hzhao/ConsultAPI/internal/config"
	"github.com/hzhao/ConsultAPI/internal/domain/knowledgeModel"
	"github.com/hzhao/ConsultAPI/internal/knowledge/chunker"
	"github.com/hzhao/ConsultAPI/pkg/logger_i"
)

// Service is the public contract - handlers and the retrieval engine only
// ever see this, never the internal slices or the persistence client.
type Service interface {
	CreateCategory(ctx context.Context, name string, creator string) (knowledgeModel.Category, error)
	ListCategories(ctx context.Context) []knowledgeModel.Category
	RenameCategory(ctx context.Context, id string, name string) error
	DeleteCategory(ctx context.Context, id string) error

	AddDocument(ctx context.Context, content string, filename string, fileType string, size int64, categoryId string, creator string) (knowledgeModel.Document, error)
	GetDocument(ctx context.Context, id string) (knowledgeModel.Document, error)
	ListDocuments(ctx context.Context, categoryId string, page int, pageSize int, status knowledgeModel.DocStatus) knowledgeModel.DocumentPage
	EnableDocument(ctx context.Context, id string) error
	DisableDocument(ctx context.Context, id string) error
	RenameDocument(ctx context.Context, id string, newName string) error
	MigrateDocument(ctx context.Context, id string, newCategoryId string) error
	UpdateDocumentContent(ctx context.Context, id string, newContent string) error
	DeleteDocument(ctx context.Context, id string) error
	CloneDocument(ctx context.Context, id string) (knowledgeModel.Document, error)

	//corpus view for the retrieval engine
	EnabledDocuments(categoryId string) []knowledgeModel.Document

	GetStats(ctx context.Context) knowledgeModel.Stats
}

// ChunkIndex mirrors committed documents into an external vector index.
// Grounding is best-effort, so index failures are logged and never fail the
// store mutation.
type ChunkIndex interface {
	IndexDocument(ctx context.Context, doc knowledgeModel.Document) error
	RemoveDocument(ctx context.Context, docId string) error
}

type service struct {
	state       *storeState
	persistence knowledgeModel.Persistence
	index       ChunkIndex
	chunkSize   int
	overlap     int
	logger      *logger_i.Logger
}

type ServiceConfig struct {
	Persistence knowledgeModel.Persistence
	Index       ChunkIndex //optional
	ChunkSize   int
	Overlap     int
}

func NewService(ctx context.Context, cfg ServiceConfig) (Service, error) {
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = config.ChunkSize
	}
	if cfg.Overlap == 0 {
		cfg.Overlap = config.ChunkOverlap
	}

	s := &service{
		state:       newStoreState(),
		persistence: cfg.Persistence,
		index:       cfg.Index,
		chunkSize:   cfg.ChunkSize,
		overlap:     cfg.Overlap,
		logger:      logger_i.NewLogger("Knowledge Service :"),
	}

	snapshot, found, err := cfg.Persistence.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading knowledge snapshot: %w", err)
	}
	if found {
		s.state.replace(snapshot)
		s.logger.Info("Loaded knowledge snapshot", "categories", len(snapshot.Categories), "documents", len(snapshot.Documents))
	}
	return s, nil
}

func (s *service) CreateCategory(ctx context.Context, name string, creator string) (knowledgeModel.Category, error) {
	//duplicate names are allowed - the id is the identity, not the name
	category := knowledgeModel.Category{
		Id:        utils.GetNewUUID(),
		Name:      name,
		Creator:   creator,
		CreatedAt: time.Now(),
	}

	err := s.commit(ctx, func(snap *knowledgeModel.Snapshot) error {
		snap.Categories = append(snap.Categories, category)
		return nil
	})
	if err != nil {
		return knowledgeModel.Category{}, err
	}
	return category, nil
}

func (s *service) ListCategories(ctx context.Context) []knowledgeModel.Category {
	snap := s.state.snapshot()

	counts := make(map[string]int)
	for _, doc := range snap.Documents {
		counts[doc.CategoryId]++
	}
	for i := range snap.Categories {
		snap.Categories[i].DocumentCount = counts[snap.Categories[i].Id]
	}
	return snap.Categories
}

func (s *service) RenameCategory(ctx context.Context, id string, name string) error {
	return s.commit(ctx, func(snap *knowledgeModel.Snapshot) error {
		for i := range snap.Categories {
			if snap.Categories[i].Id == id {
				snap.Categories[i].Name = name
				return nil
			}
		}
		return knowledgeModel.ErrNotFound
	})
}

// DeleteCategory cascades to every document in the category so no document is
// ever left pointing at a missing category. Missing ids are a silent no-op,
// matching the forgiving delete semantics of the exposed interface.
func (s *service) DeleteCategory(ctx context.Context, id string) error {
	var removedDocs []string
	err := s.commit(ctx, func(snap *knowledgeModel.Snapshot) error {
		kept := snap.Categories[:0]
		for _, c := range snap.Categories {
			if c.Id != id {
				kept = append(kept, c)
			}
		}
		snap.Categories = kept

		keptDocs := snap.Documents[:0]
		for _, d := range snap.Documents {
			if d.CategoryId != id {
				keptDocs = append(keptDocs, d)
			} else {
				removedDocs = append(removedDocs, d.Id)
			}
		}
		snap.Documents = keptDocs
		return nil
	})
	if err != nil {
		return err
	}
	for _, docId := range removedDocs {
		s.dropFromIndex(ctx, docId)
	}
	return nil
}

func (s *service) AddDocument(ctx context.Context, content string, filename string, fileType string, size int64, categoryId string, creator string) (knowledgeModel.Document, error) {
	pieces, err := chunker.Chunk(content, s.chunkSize, s.overlap)
	if err != nil {
		return knowledgeModel.Document{}, err
	}

	now := time.Now()
	doc := knowledgeModel.Document{
		Id:               utils.GetNewUUID(),
		Filename:         filename,
		OriginalFilename: filename,
		Type:             fileType,
		SizeBytes:        size,
		CategoryId:       categoryId,
		Chunks:           buildChunks(pieces),
		ChunkCount:       len(pieces),
		Status:           knowledgeModel.StatusEnabled,
		Creator:          creator,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err = s.commit(ctx, func(snap *knowledgeModel.Snapshot) error {
		if !categoryExists(snap.Categories, categoryId) {
			return knowledgeModel.ErrNotFound
		}
		snap.Documents = append(snap.Documents, doc)
		return nil
	})
	if err != nil {
		return knowledgeModel.Document{}, err
	}

	s.pushToIndex(ctx, doc)
	return doc, nil
}

func (s *service) GetDocument(ctx context.Context, id string) (knowledgeModel.Document, error) {
	snap := s.state.snapshot()
	for _, d := range snap.Documents {
		if d.Id == id {
			return d, nil
		}
	}
	return knowledgeModel.Document{}, knowledgeModel.ErrNotFound
}

func (s *service) ListDocuments(ctx context.Context, categoryId string, page int, pageSize int, status knowledgeModel.DocStatus) knowledgeModel.DocumentPage {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = config.DefaultPageSize
	}

	snap := s.state.snapshot()
	var filtered []knowledgeModel.Document
	for _, d := range snap.Documents {
		if categoryId != "" && d.CategoryId != categoryId {
			continue
		}
		if status != "" && d.Status != status {
			continue
		}
		filtered = append(filtered, d)
	}

	total := len(filtered)
	totalPages := (total + pageSize - 1) / pageSize
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return knowledgeModel.DocumentPage{
		Items:      filtered[start:end],
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

func (s *service) EnableDocument(ctx context.Context, id string) error {
	return s.mutateDocument(ctx, id, func(doc *knowledgeModel.Document) {
		doc.Status = knowledgeModel.StatusEnabled
	})
}

func (s *service) DisableDocument(ctx context.Context, id string) error {
	return s.mutateDocument(ctx, id, func(doc *knowledgeModel.Document) {
		doc.Status = knowledgeModel.StatusDisabled
	})
}

func (s *service) RenameDocument(ctx context.Context, id string, newName string) error {
	return s.mutateDocument(ctx, id, func(doc *knowledgeModel.Document) {
		doc.OriginalFilename = newName
	})
}

func (s *service) MigrateDocument(ctx context.Context, id string, newCategoryId string) error {
	return s.commit(ctx, func(snap *knowledgeModel.Snapshot) error {
		if !categoryExists(snap.Categories, newCategoryId) {
			return knowledgeModel.ErrNotFound
		}
		for i := range snap.Documents {
			if snap.Documents[i].Id == id {
				snap.Documents[i].CategoryId = newCategoryId
				snap.Documents[i].UpdatedAt = time.Now()
				return nil
			}
		}
		return knowledgeModel.ErrNotFound
	})
}

// UpdateDocumentContent throws away every old chunk and rebuilds the sequence
// with fresh ids - chunks are never patched in place.
func (s *service) UpdateDocumentContent(ctx context.Context, id string, newContent string) error {
	pieces, err := chunker.Chunk(newContent, s.chunkSize, s.overlap)
	if err != nil {
		return err
	}

	var updated knowledgeModel.Document
	err = s.commit(ctx, func(snap *knowledgeModel.Snapshot) error {
		for i := range snap.Documents {
			if snap.Documents[i].Id == id {
				snap.Documents[i].Chunks = buildChunks(pieces)
				snap.Documents[i].ChunkCount = len(pieces)
				snap.Documents[i].UpdatedAt = time.Now()
				updated = snap.Documents[i]
				return nil
			}
		}
		return knowledgeModel.ErrNotFound
	})
	if err != nil {
		return err
	}

	s.dropFromIndex(ctx, id)
	s.pushToIndex(ctx, updated)
	return nil
}

func (s *service) DeleteDocument(ctx context.Context, id string) error {
	err := s.commit(ctx, func(snap *knowledgeModel.Snapshot) error {
		kept := snap.Documents[:0]
		for _, d := range snap.Documents {
			if d.Id != id {
				kept = append(kept, d)
			}
		}
		snap.Documents = kept
		return nil
	})
	if err != nil {
		return err
	}
	s.dropFromIndex(ctx, id)
	return nil
}

// CloneDocument duplicates a document explicitly: fresh document id, fresh
// chunk ids, fresh timestamps. Not a structural copy - chunk ownership stays
// unambiguous.
func (s *service) CloneDocument(ctx context.Context, id string) (knowledgeModel.Document, error) {
	var clone knowledgeModel.Document
	err := s.commit(ctx, func(snap *knowledgeModel.Snapshot) error {
		for _, d := range snap.Documents {
			if d.Id == id {
				now := time.Now()
				clone = d
				clone.Id = utils.GetNewUUID()
				clone.CreatedAt = now
				clone.UpdatedAt = now
				clone.Chunks = make([]knowledgeModel.Chunk, len(d.Chunks))
				for i, c := range d.Chunks {
					clone.Chunks[i] = knowledgeModel.Chunk{
						Id:      utils.GetNewUUID(),
						Content: c.Content,
						Index:   c.Index,
					}
				}
				snap.Documents = append(snap.Documents, clone)
				return nil
			}
		}
		return knowledgeModel.ErrNotFound
	})
	if err != nil {
		return knowledgeModel.Document{}, err
	}
	s.pushToIndex(ctx, clone)
	return clone, nil
}

func (s *service) EnabledDocuments(categoryId string) []knowledgeModel.Document {
	snap := s.state.snapshot()
	var docs []knowledgeModel.Document
	for _, d := range snap.Documents {
		if d.Status != knowledgeModel.StatusEnabled {
			continue
		}
		if categoryId != "" && d.CategoryId != categoryId {
			continue
		}
		docs = append(docs, d)
	}
	return docs
}

func (s *service) GetStats(ctx context.Context) knowledgeModel.Stats {
	snap := s.state.snapshot()
	stats := knowledgeModel.Stats{
		TotalCategories: len(snap.Categories),
		TotalDocuments:  len(snap.Documents),
		CollectionName:  config.CollectionName,
	}
	for _, d := range snap.Documents {
		if d.Status == knowledgeModel.StatusEnabled {
			stats.EnabledDocuments++
			//disabled documents keep their data but never count toward capacity
			stats.TotalChunks += d.ChunkCount
		}
	}
	return stats
}

func (s *service) mutateDocument(ctx context.Context, id string, mutate func(*knowledgeModel.Document)) error {
	return s.commit(ctx, func(snap *knowledgeModel.Snapshot) error {
		for i := range snap.Documents {
			if snap.Documents[i].Id == id {
				mutate(&snap.Documents[i])
				snap.Documents[i].UpdatedAt = time.Now()
				return nil
			}
		}
		return knowledgeModel.ErrNotFound
	})
}

func (s *service) pushToIndex(ctx context.Context, doc knowledgeModel.Document) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexDocument(ctx, doc); err != nil {
		s.logger.Error("Chunk index update failed", "docId", doc.Id, "error", err)
	}
}

func (s *service) dropFromIndex(ctx context.Context, docId string) {
	if s.index == nil {
		return
	}
	if err := s.index.RemoveDocument(ctx, docId); err != nil {
		s.logger.Error("Chunk index removal failed", "docId", docId, "error", err)
	}
}

func buildChunks(pieces []string) []knowledgeModel.Chunk {
	chunks := make([]knowledgeModel.Chunk, len(pieces))
	for i, content := range pieces {
		chunks[i] = knowledgeModel.Chunk{
			Id:      utils.GetNewUUID(),
			Content: content,
			Index:   i,
		}
	}
	return chunks
}

func categoryExists(categories []knowledgeModel.Category, id string) bool {
	for _, c := range categories {
		if c.Id == id {
			return true
		}
	}
	return false
}
