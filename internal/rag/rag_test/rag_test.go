package rag_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hzhao/ConsultAPI/internal/domain/jobModel"
	"github.com/hzhao/ConsultAPI/internal/domain/knowledgeModel"
	"github.com/hzhao/ConsultAPI/internal/rag"
)

func writeUpload(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func ingestJob(filename string, path string) jobModel.Job {
	return jobModel.Job{
		Id:      "job-1",
		TraceId: "trace-1",
		JobPayload: jobModel.JobPayload{
			IngestFileName: filename,
			IngestPath:     path,
			CategoryId:     "cat-1",
			Creator:        "admin",
		},
	}
}

func TestIngestDocument_HappyPath(t *testing.T) {
	path := writeUpload(t, "伤寒论.txt", "太阳之为病，脉浮，头项强痛而恶寒。\r\n\r\n\r\n桂枝汤主之。")
	mock := &MockKnowledge{
		OnAddDocument: func(ctx context.Context, content string, filename string, fileType string, size int64, categoryId string, creator string) (knowledgeModel.Document, error) {
			if filename != "伤寒论.txt" || categoryId != "cat-1" || creator != "admin" {
				t.Errorf("unexpected metadata: %s %s %s", filename, categoryId, creator)
			}
			return knowledgeModel.Document{Id: "doc-42", ChunkCount: 2}, nil
		},
	}
	svc := rag.NewService(mock)

	result := svc.IngestDocument(context.Background(), ingestJob("伤寒论.txt", path))

	if result.Status == jobModel.JobStatusError {
		t.Fatalf("ingestion failed: %+v", result.Error)
	}
	if result.CurrentStep != jobModel.Complete {
		t.Errorf("got step %s, want Complete", result.CurrentStep)
	}
	if result.JobPayload.DocumentId != "doc-42" || result.JobPayload.ChunkCount != 2 {
		t.Errorf("job not annotated with committed document: %+v", result.JobPayload)
	}

	//text is cleaned before hitting the store
	if len(mock.AddedContent) != 1 || mock.AddedContent[0] != "太阳之为病，脉浮，头项强痛而恶寒。\n\n桂枝汤主之。" {
		t.Errorf("content not normalized: %q", mock.AddedContent)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("temp upload should be removed after commit")
	}
}

func TestIngestDocument_UnsupportedFormat(t *testing.T) {
	path := writeUpload(t, "scan.png", "not really an image")
	mock := &MockKnowledge{}
	svc := rag.NewService(mock)

	result := svc.IngestDocument(context.Background(), ingestJob("scan.png", path))

	if result.Status != jobModel.JobStatusError {
		t.Fatal("expected job error for unsupported format")
	}
	if result.Error.Retry {
		t.Error("decode failures are permanent, not retryable")
	}
	if len(mock.AddedContent) != 0 {
		t.Error("nothing may be committed on decode failure")
	}
}

func TestIngestDocument_EmptyDocument(t *testing.T) {
	path := writeUpload(t, "blank.txt", "   \n\n  ")
	svc := rag.NewService(&MockKnowledge{})

	result := svc.IngestDocument(context.Background(), ingestJob("blank.txt", path))

	if result.Status != jobModel.JobStatusError {
		t.Fatal("expected job error for blank document")
	}
}

func TestIngestDocument_StoreFailureIsRetryable(t *testing.T) {
	path := writeUpload(t, "原文.txt", "太阳病")
	mock := &MockKnowledge{
		OnAddDocument: func(ctx context.Context, content string, filename string, fileType string, size int64, categoryId string, creator string) (knowledgeModel.Document, error) {
			return knowledgeModel.Document{}, errors.New("redis down")
		},
	}
	svc := rag.NewService(mock)

	result := svc.IngestDocument(context.Background(), ingestJob("原文.txt", path))

	if result.Status != jobModel.JobStatusError {
		t.Fatal("expected job error when the store commit fails")
	}
	if !result.Error.Retry {
		t.Error("store failures should be retryable")
	}
}
