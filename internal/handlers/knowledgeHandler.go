package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/hzhao/ConsultAPI/internal/adapter"
	"github.com/hzhao/ConsultAPI/internal/adapter/utils"
	"github.com/hzhao/ConsultAPI/internal/api"
	"github.com/hzhao/ConsultAPI/internal/config"
	"github.com/hzhao/ConsultAPI/internal/domain/knowledgeModel"
	"github.com/hzhao/ConsultAPI/internal/knowledge"
	"github.com/hzhao/ConsultAPI/pkg/logger_i"
)

var (
	knowledgeInstance *KnowledgeHandler
	onceKnowledge     sync.Once
	logKH             *logger_i.Logger
)

type KnowledgeHandler struct {
	service knowledge.Service
}

func InitKnowledgeHandler(knowledgeService knowledge.Service) {
	onceKnowledge.Do(func() {
		knowledgeInstance = &KnowledgeHandler{service: knowledgeService}
		logKH = logger_i.NewLogger("KnowledgeHandler")
		logKH.Info("Starting knowledge handler")
	})
}

// CreateCategoryHandler godoc
// @Summary      Create a knowledge category
// @Tags         Knowledge
// @Accept       json
// @Produce      json
// @Param        request  body      api.CategoryRequest  true  "Category name"
// @Success      201      {object}  api.CategoryResponse
// @Failure      400      {object}  api.JobResponse
// @Router       /knowledge/categories [post]
func CreateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var requestData api.CategoryRequest
	if !decodeBody(w, r, &requestData) {
		return
	}
	if requestData.Name == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", "name is required")
		return
	}

	category, err := knowledgeInstance.service.CreateCategory(r.Context(), requestData.Name, creatorOf(r))
	if err != nil {
		writeDomainError(w, requestData.Name, err)
		return
	}
	writeJsonResponse(w, http.StatusCreated, adapter.ToCategoryResponse(category))
}

func ListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories := knowledgeInstance.service.ListCategories(r.Context())
	writeJsonResponse(w, http.StatusOK, adapter.ToCategoryResponses(categories))
}

func RenameCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id := utils.GetChiURLParam(r, "id")
	var requestData api.RenameRequest
	if !decodeBody(w, r, &requestData) {
		return
	}
	if requestData.Name == "" {
		WriteErrorResponse(w, http.StatusBadRequest, id, "name is required")
		return
	}

	if err := knowledgeInstance.service.RenameCategory(r.Context(), id, requestData.Name); err != nil {
		writeDomainError(w, id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteCategoryHandler cascades: the category's documents and their chunks
// go with it.
func DeleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id := utils.GetChiURLParam(r, "id")
	if err := knowledgeInstance.service.DeleteCategory(r.Context(), id); err != nil {
		writeDomainError(w, id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadDocumentHandler godoc
// @Summary      Upload a document for ingestion
// @Description  Receives a file via multipart/form-data, saves it to a temporary directory, and queues an ingestion job.
// @Tags         Knowledge
// @Accept       multipart/form-data
// @Produce      json
// @Param        category_id  formData  string  true  "Target category"
// @Param        document     formData  file    true  "The PDF, DOCX or TXT file to upload"
// @Success      202  {object}  api.InitJobResponse  "Accepted - poll the status URL"
// @Failure      400  {object}  api.JobResponse
// @Failure      500  {object}  api.JobResponse
// @Router       /knowledge/documents [post]
func UploadDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logKH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	targetDir, errString := getTargetDirectory()
	if errString != "" {
		logKH.Error("Couldn't get target directory :", "err", errString)
		WriteErrorResponse(w, http.StatusInternalServerError, "", errString)
		return
	}

	if err := r.ParseMultipartForm(config.MaxUploadSize); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
		return
	}

	categoryId := r.FormValue("category_id")
	if categoryId == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", "category_id is required")
		return
	}
	if !knowledgeInstance.categoryExists(r, categoryId) {
		WriteErrorResponse(w, http.StatusNotFound, categoryId, "category not found")
		return
	}

	fileReader, fileMetadata, err := r.FormFile("document")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, categoryId, "Could not retrieve file")
		return
	}
	defer fileReader.Close()

	filename := fmt.Sprintf("%d-%s", time.Now().UnixNano(), fileMetadata.Filename)
	tempFilePath := filepath.Join(targetDir, filename)
	destinationFileWriter, err := os.Create(tempFilePath)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, categoryId, "Storage error")
		return
	}
	defer destinationFileWriter.Close()

	if _, err := io.Copy(destinationFileWriter, fileReader); err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, categoryId, "Write error")
		return
	}

	traceId, _ := r.Context().Value(config.TRACE_ID_KEY).(string)
	newJob := newJobData{
		id:             utils.GetNewUUID(),
		traceId:        traceId,
		documentName:   fileMetadata.Filename,
		documentSource: tempFilePath,
		categoryId:     categoryId,
		creator:        creatorOf(r),
	}
	CreateIngestJob(newJob)
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id))
}

func ListDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := intQueryParam(query.Get("page"), 1)
	pageSize := intQueryParam(query.Get("page_size"), config.DefaultPageSize)
	status := knowledgeModel.DocStatus(query.Get("status"))

	result := knowledgeInstance.service.ListDocuments(r.Context(), query.Get("category_id"), page, pageSize, status)
	writeJsonResponse(w, http.StatusOK, adapter.ToDocumentPageResponse(result))
}

func GetDocumentHandler(w http.ResponseWriter, r *http.Request) {
	id := utils.GetChiURLParam(r, "id")
	doc, err := knowledgeInstance.service.GetDocument(r.Context(), id)
	if err != nil {
		writeDomainError(w, id, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToDocumentResponse(doc))
}

func EnableDocumentHandler(w http.ResponseWriter, r *http.Request) {
	documentMutation(w, r, knowledgeInstance.service.EnableDocument)
}

func DisableDocumentHandler(w http.ResponseWriter, r *http.Request) {
	documentMutation(w, r, knowledgeInstance.service.DisableDocument)
}

func RenameDocumentHandler(w http.ResponseWriter, r *http.Request) {
	id := utils.GetChiURLParam(r, "id")
	var requestData api.RenameRequest
	if !decodeBody(w, r, &requestData) {
		return
	}
	if requestData.Name == "" {
		WriteErrorResponse(w, http.StatusBadRequest, id, "name is required")
		return
	}
	if err := knowledgeInstance.service.RenameDocument(r.Context(), id, requestData.Name); err != nil {
		writeDomainError(w, id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func MigrateDocumentHandler(w http.ResponseWriter, r *http.Request) {
	id := utils.GetChiURLParam(r, "id")
	var requestData api.MigrateRequest
	if !decodeBody(w, r, &requestData) {
		return
	}
	if requestData.CategoryId == "" {
		WriteErrorResponse(w, http.StatusBadRequest, id, "category_id is required")
		return
	}
	if err := knowledgeInstance.service.MigrateDocument(r.Context(), id, requestData.CategoryId); err != nil {
		writeDomainError(w, id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateDocumentContentHandler replaces the document text wholesale - chunks
// are regenerated, never patched.
func UpdateDocumentContentHandler(w http.ResponseWriter, r *http.Request) {
	id := utils.GetChiURLParam(r, "id")
	var requestData api.ContentUpdateRequest
	if !decodeBody(w, r, &requestData) {
		return
	}
	if requestData.Content == "" {
		WriteErrorResponse(w, http.StatusBadRequest, id, "content is required")
		return
	}
	if err := knowledgeInstance.service.UpdateDocumentContent(r.Context(), id, requestData.Content); err != nil {
		writeDomainError(w, id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func CloneDocumentHandler(w http.ResponseWriter, r *http.Request) {
	id := utils.GetChiURLParam(r, "id")
	doc, err := knowledgeInstance.service.CloneDocument(r.Context(), id)
	if err != nil {
		writeDomainError(w, id, err)
		return
	}
	writeJsonResponse(w, http.StatusCreated, adapter.ToDocumentResponse(doc))
}

func DeleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	documentMutation(w, r, knowledgeInstance.service.DeleteDocument)
}

func GetStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats := knowledgeInstance.service.GetStats(r.Context())
	writeJsonResponse(w, http.StatusOK, adapter.ToStatsResponse(stats))
}

// helpers

func documentMutation(w http.ResponseWriter, r *http.Request, mutate func(ctx context.Context, id string) error) {
	id := utils.GetChiURLParam(r, "id")
	if err := mutate(r.Context(), id); err != nil {
		writeDomainError(w, id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *KnowledgeHandler) categoryExists(r *http.Request, categoryId string) bool {
	for _, category := range h.service.ListCategories(r.Context()) {
		if category.Id == categoryId {
			return true
		}
	}
	return false
}

func intQueryParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func creatorOf(r *http.Request) string {
	return r.Header.Get("X-User")
}
