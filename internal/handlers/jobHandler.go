package handlers

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hzhao/ConsultAPI/internal/adapter"
	"github.com/hzhao/ConsultAPI/internal/adapter/utils"
	"github.com/hzhao/ConsultAPI/internal/config"
	"github.com/hzhao/ConsultAPI/internal/domain/jobModel"
	"github.com/hzhao/ConsultAPI/internal/job"
	"github.com/hzhao/ConsultAPI/internal/metrics"
	"github.com/hzhao/ConsultAPI/pkg/logger_i"
)

var (
	handlerInstance *JobHandler //private singleton
	once            sync.Once
	logJH           *logger_i.Logger
	logRH           *logger_i.Logger //shared by the response helpers
)

type JobHandler struct {
	service *job.Service
}

type newJobData struct {
	id             string
	traceId        string
	documentName   string
	documentSource string
	categoryId     string
	creator        string
}

func InitJobHandler(jobService *job.Service) {
	once.Do(func() {
		handlerInstance = &JobHandler{service: jobService}

		logJH = logger_i.NewLogger("JobHandler")
		logRH = logger_i.NewLogger("RequestHandler")
		logJH.Info("Starting job handler")
	})
}

func CreateIngestJob(newJob newJobData) {
	logJH.With("traceId", newJob.traceId, "job id", newJob.id)
	logJH.Info("To create new ingest job")
	handlerInstance.pushToJobChannel(newJob)
}

func GetJobStatus(id string, traceId string) (result jobModel.Job, isFound bool) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	if handlerInstance != nil {
		return handlerInstance.service.JobStore.GetJob(ctxC, id)
	}
	return result, false
}

// GetStatusHandler godoc
// @Summary      Get ingestion job status
// @Description  Retrieves the current status of a document ingestion job using its ID.
// @Tags         Job Status
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  api.JobResponse  "The current status of the job"
// @Failure      404  {object}  api.JobResponse  "Job not found"
// @Router       /status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	idString := utils.GetChiURLParam(r, "id")
	if idString == "" {
		WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
		return
	}

	traceId, _ := r.Context().Value(config.TRACE_ID_KEY).(string)
	result, isFound := GetJobStatus(idString, traceId)
	if !isFound {
		WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// private methods
func (h *JobHandler) pushToJobChannel(newJob newJobData) {
	_job := jobModel.Job{}
	_job.Id = newJob.id
	_job.CreatedTime = time.Now()
	_job.TraceId = newJob.traceId
	_job.Status = jobModel.JobStatusQueued
	_job.CurrentStep = jobModel.IngestInit
	_job.JobPayload.IngestFileName = newJob.documentName
	_job.JobPayload.IngestPath = newJob.documentSource
	_job.JobPayload.CategoryId = newJob.categoryId
	_job.JobPayload.Creator = newJob.creator

	//metrics
	metrics.IncrementJobsInQueue()

	h.service.JobChannel <- _job //blocking send to prevent the system from being overwhelmed
	logJH.Info("Created new ingest job")

	//every ingest job may block a worker on decoding for a while, so each
	//one signals the dispatcher; extra workers retire when idle
	accurateCount := atomic.AddInt64(&h.service.RequestCount, 1)
	metrics.StartDispatcherSignalCount() //metrics
	logJH.Debug("Request count ", accurateCount)
	h.service.DispatcherChannel <- true
}
