package rag

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/hzhao/ConsultAPI/internal/config"
	"github.com/hzhao/ConsultAPI/internal/domain/jobModel"
	"github.com/hzhao/ConsultAPI/internal/knowledge"
	"github.com/hzhao/ConsultAPI/internal/metrics"
	"github.com/hzhao/ConsultAPI/internal/rag/ingest"
	"github.com/hzhao/ConsultAPI/pkg/logger_i"
)

// Service is all the worker sees of ingestion - it doesn't need to know the
// decoder or the knowledge store behind it.
type Service interface {
	IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job
}

type service struct {
	knowledge knowledge.Service
	logger    *logger_i.Logger
}

// NewService constructor - lets tests swap the knowledge store for a mock
// without touching the worker.
func NewService(knowledgeService knowledge.Service) Service {
	return &service{
		knowledge: knowledgeService,
		logger:    logger_i.NewLogger("Ingestion Service"),
	}
}

// IngestDocument is all-or-nothing: a decode failure commits nothing, a
// committed document always carries its full chunk set.
func (s *service) IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "JobId", job.Id)

	job.CurrentStep = jobModel.IngestDecoding
	raw, err := ingest.ExtractText(job.JobPayload.IngestPath)
	if err != nil {
		return s.jobError(job, err, "DECODE_FAILURE", false, log)
	}

	text := ingest.CleanText(raw)
	if strings.TrimSpace(text) == "" {
		return s.jobError(job, ingest.ErrCorruptDocument, "EMPTY_DOCUMENT", false, log)
	}

	job.CurrentStep = jobModel.IngestCommit
	doc, err := s.knowledge.AddDocument(ctx,
		text,
		job.JobPayload.IngestFileName,
		string(ingest.DetectDocType(job.JobPayload.IngestFileName)),
		fileSize(job.JobPayload.IngestPath),
		job.JobPayload.CategoryId,
		job.JobPayload.Creator,
	)
	if err != nil {
		return s.jobError(job, err, "STORE_COMMIT_FAILURE", true, log)
	}

	if err := os.Remove(job.JobPayload.IngestPath); err != nil {
		log.Error("Error removing temp upload", "error", err)
	}

	job.JobPayload.DocumentId = doc.Id
	job.JobPayload.ChunkCount = doc.ChunkCount
	job.CurrentStep = jobModel.Complete
	log.Debug("Document committed", "documentId", doc.Id, "chunks", doc.ChunkCount)
	return job
}

func (s *service) jobError(job jobModel.Job, err error, message string, canRetry bool, log *logger_i.Logger) jobModel.Job {
	log.Error(message, "error", err)

	job.Error = jobModel.JobError{
		Code:    http.StatusInternalServerError,
		Message: message,
		Retry:   canRetry,
	}
	job.Status = jobModel.JobStatusError
	job.CurrentStep = jobModel.Error
	return job
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
