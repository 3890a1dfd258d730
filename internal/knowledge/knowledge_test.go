package knowledge_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/hzhao/ConsultAPI/internal/domain/knowledgeModel"
	"github.com/hzhao/ConsultAPI/internal/knowledge"
)

func newTestService(t *testing.T) knowledge.Service {
	t.Helper()
	s, err := knowledge.NewService(context.Background(), knowledge.ServiceConfig{
		Persistence: &MockPersistence{},
	})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return s
}

func TestCategoryLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	cat, err := s.CreateCategory(ctx, "伤寒论", "admin")
	if err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}
	if cat.Id == "" {
		t.Fatal("category id not assigned")
	}

	//duplicate names are documented behavior, not an error
	if _, err := s.CreateCategory(ctx, "伤寒论", "admin"); err != nil {
		t.Errorf("duplicate name rejected: %v", err)
	}

	if _, err := s.AddDocument(ctx, "太阳病头痛", "a.txt", "txt", 15, cat.Id, "admin"); err != nil {
		t.Fatalf("AddDocument failed: %v", err)
	}

	cats := s.ListCategories(ctx)
	for _, c := range cats {
		if c.Id == cat.Id && c.DocumentCount != 1 {
			t.Errorf("document_count got %d, want 1", c.DocumentCount)
		}
	}

	if err := s.DeleteCategory(ctx, cat.Id); err != nil {
		t.Fatalf("DeleteCategory failed: %v", err)
	}
	//cascade: no document may reference the deleted category
	page := s.ListDocuments(ctx, "", 1, 50, "")
	for _, d := range page.Items {
		if d.CategoryId == cat.Id {
			t.Error("dangling document after category cascade delete")
		}
	}

	//best-effort delete: missing id is a silent no-op
	if err := s.DeleteCategory(ctx, "ghost"); err != nil {
		t.Errorf("delete of missing category should succeed, got %v", err)
	}
}

func TestNoDanglingReferences(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	keep, _ := s.CreateCategory(ctx, "keep", "admin")
	drop, _ := s.CreateCategory(ctx, "drop", "admin")

	s.AddDocument(ctx, "content one", "one.txt", "txt", 1, keep.Id, "admin")
	s.AddDocument(ctx, "content two", "two.txt", "txt", 1, drop.Id, "admin")
	s.AddDocument(ctx, "content three", "three.txt", "txt", 1, drop.Id, "admin")

	s.DeleteCategory(ctx, drop.Id)

	existing := make(map[string]bool)
	for _, c := range s.ListCategories(ctx) {
		existing[c.Id] = true
	}
	for _, d := range s.ListDocuments(ctx, "", 1, 100, "").Items {
		if !existing[d.CategoryId] {
			t.Errorf("document %s references missing category %s", d.Id, d.CategoryId)
		}
	}
}

func TestAddDocument_Chunking(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	cat, _ := s.CreateCategory(ctx, "c", "admin")

	//1100 runes with size 500 / overlap 50 -> windows at 0, 450, 900
	content := ""
	for i := 0; i < 1100; i++ {
		content += "痛"
	}
	doc, err := s.AddDocument(ctx, content, "long.txt", "txt", int64(len(content)), cat.Id, "admin")
	if err != nil {
		t.Fatalf("AddDocument failed: %v", err)
	}
	if doc.ChunkCount != len(doc.Chunks) {
		t.Errorf("chunk_count %d != len(chunks) %d", doc.ChunkCount, len(doc.Chunks))
	}
	if doc.ChunkCount != 3 {
		t.Errorf("got %d chunks, want 3", doc.ChunkCount)
	}
	for i, c := range doc.Chunks {
		if c.Index != i {
			t.Errorf("chunk %d has index %d", i, c.Index)
		}
		if c.Id == "" {
			t.Error("chunk id not assigned")
		}
	}
	if doc.Status != knowledgeModel.StatusEnabled {
		t.Errorf("new document status %s, want enabled", doc.Status)
	}
}

func TestAddDocument_MissingCategory(t *testing.T) {
	s := newTestService(t)
	_, err := s.AddDocument(context.Background(), "text", "f.txt", "txt", 4, "no-such-category", "admin")
	if !errors.Is(err, knowledgeModel.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestDisableDocument_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	cat, _ := s.CreateCategory(ctx, "c", "admin")
	doc, _ := s.AddDocument(ctx, "some text", "f.txt", "txt", 9, cat.Id, "admin")

	for i := 0; i < 2; i++ {
		if err := s.DisableDocument(ctx, doc.Id); err != nil {
			t.Fatalf("disable #%d failed: %v", i+1, err)
		}
	}
	got, _ := s.GetDocument(ctx, doc.Id)
	if got.Status != knowledgeModel.StatusDisabled {
		t.Errorf("status %s, want disabled", got.Status)
	}

	if err := s.DisableDocument(ctx, "ghost"); !errors.Is(err, knowledgeModel.ErrNotFound) {
		t.Errorf("field mutation on missing id: got %v, want ErrNotFound", err)
	}
}

func TestUpdateDocumentContent_RegeneratesChunks(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	cat, _ := s.CreateCategory(ctx, "c", "admin")
	doc, _ := s.AddDocument(ctx, "original content", "f.txt", "txt", 16, cat.Id, "admin")
	oldChunkId := doc.Chunks[0].Id

	if err := s.UpdateDocumentContent(ctx, doc.Id, "entirely new content"); err != nil {
		t.Fatalf("UpdateDocumentContent failed: %v", err)
	}
	got, _ := s.GetDocument(ctx, doc.Id)
	if got.Chunks[0].Id == oldChunkId {
		t.Error("chunk ids were not regenerated")
	}
	if got.Chunks[0].Content != "entirely new content" {
		t.Errorf("content not replaced: %q", got.Chunks[0].Content)
	}
	if !got.UpdatedAt.After(doc.UpdatedAt) && !got.UpdatedAt.Equal(doc.UpdatedAt) {
		t.Error("updated_at not stamped")
	}
}

func TestListDocuments_Pagination(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	cat, _ := s.CreateCategory(ctx, "c", "admin")

	for i := 0; i < 15; i++ {
		s.AddDocument(ctx, "content", fmt.Sprintf("doc%02d.txt", i), "txt", 7, cat.Id, "admin")
	}

	page := s.ListDocuments(ctx, "", 2, 10, "")
	if len(page.Items) != 5 {
		t.Errorf("page 2 items: got %d, want 5", len(page.Items))
	}
	if page.Total != 15 {
		t.Errorf("total: got %d, want 15", page.Total)
	}
	if page.TotalPages != 2 {
		t.Errorf("total_pages: got %d, want 2", page.TotalPages)
	}

	//past the end is not an error
	past := s.ListDocuments(ctx, "", 9, 10, "")
	if len(past.Items) != 0 {
		t.Errorf("past-the-end items: got %d, want 0", len(past.Items))
	}
	if past.Total != 15 || past.TotalPages != 2 {
		t.Errorf("past-the-end metadata wrong: total=%d totalPages=%d", past.Total, past.TotalPages)
	}
}

func TestListDocuments_StatusFilter(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	cat, _ := s.CreateCategory(ctx, "c", "admin")

	a, _ := s.AddDocument(ctx, "content a", "a.txt", "txt", 9, cat.Id, "admin")
	s.AddDocument(ctx, "content b", "b.txt", "txt", 9, cat.Id, "admin")
	s.DisableDocument(ctx, a.Id)

	enabled := s.ListDocuments(ctx, "", 1, 10, knowledgeModel.StatusEnabled)
	if enabled.Total != 1 {
		t.Errorf("enabled total: got %d, want 1", enabled.Total)
	}
	disabled := s.ListDocuments(ctx, "", 1, 10, knowledgeModel.StatusDisabled)
	if disabled.Total != 1 {
		t.Errorf("disabled total: got %d, want 1", disabled.Total)
	}
}

func TestGetStats_EnabledChunksOnly(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	cat, _ := s.CreateCategory(ctx, "c", "admin")

	a, _ := s.AddDocument(ctx, "enabled doc content", "a.txt", "txt", 19, cat.Id, "admin")
	b, _ := s.AddDocument(ctx, "disabled doc content", "b.txt", "txt", 20, cat.Id, "admin")
	s.DisableDocument(ctx, b.Id)

	stats := s.GetStats(ctx)
	if stats.TotalDocuments != 2 {
		t.Errorf("total_documents: got %d, want 2", stats.TotalDocuments)
	}
	if stats.EnabledDocuments != 1 {
		t.Errorf("enabled_documents: got %d, want 1", stats.EnabledDocuments)
	}
	if stats.TotalChunks != a.ChunkCount {
		t.Errorf("total_chunks: got %d, want %d (enabled only)", stats.TotalChunks, a.ChunkCount)
	}
}

func TestCloneDocument(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	cat, _ := s.CreateCategory(ctx, "c", "admin")
	doc, _ := s.AddDocument(ctx, "clone me", "f.txt", "txt", 8, cat.Id, "admin")

	clone, err := s.CloneDocument(ctx, doc.Id)
	if err != nil {
		t.Fatalf("CloneDocument failed: %v", err)
	}
	if clone.Id == doc.Id {
		t.Error("clone shares the source document id")
	}
	if clone.Chunks[0].Id == doc.Chunks[0].Id {
		t.Error("clone shares chunk ids with the source")
	}
	if clone.Chunks[0].Content != doc.Chunks[0].Content {
		t.Error("clone content differs from source")
	}
}

func TestCommit_PersistFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	persistence := &MockPersistence{}
	s, err := knowledge.NewService(ctx, knowledge.ServiceConfig{Persistence: persistence})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	persistence.OnSave = func(ctx context.Context, snap knowledgeModel.Snapshot) error {
		return errors.New("disk full")
	}
	if _, err := s.CreateCategory(ctx, "doomed", "admin"); err == nil {
		t.Fatal("expected persist failure to surface")
	}
	if len(s.ListCategories(ctx)) != 0 {
		t.Error("failed mutation is visible to readers")
	}
}

func TestChunkIndex_FollowsMutations(t *testing.T) {
	ctx := context.Background()
	index := &MockChunkIndex{}
	s, err := knowledge.NewService(ctx, knowledge.ServiceConfig{
		Persistence: &MockPersistence{},
		Index:       index,
	})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	cat, _ := s.CreateCategory(ctx, "c", "admin")
	doc, _ := s.AddDocument(ctx, "index me", "f.txt", "txt", 8, cat.Id, "admin")
	if len(index.Indexed) != 1 || index.Indexed[0] != doc.Id {
		t.Errorf("document not indexed: %v", index.Indexed)
	}

	s.DeleteDocument(ctx, doc.Id)
	if len(index.Removed) != 1 || index.Removed[0] != doc.Id {
		t.Errorf("document not removed from index: %v", index.Removed)
	}
}
