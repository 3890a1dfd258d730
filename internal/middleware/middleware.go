package middleware

import (
	"net/http"
	"strconv"

	"github.com/hzhao/ConsultAPI/internal/handlers"
	"github.com/hzhao/ConsultAPI/internal/metrics"
	"github.com/hzhao/ConsultAPI/pkg/logger_i"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
	id           string
}

var GetHandler = Wrap(handlers.GetHandler)

// consultation
var ConsultHandler = Wrap(handlers.ConsultHandler)
var ListConversationsHandler = Wrap(handlers.ListConversationsHandler)
var GetConversationHandler = Wrap(handlers.GetConversationHandler)
var DeleteConversationHandler = Wrap(handlers.DeleteConversationHandler)
var UpdateConversationTitleHandler = Wrap(handlers.UpdateConversationTitleHandler)

// knowledge base
var CreateCategoryHandler = Wrap(handlers.CreateCategoryHandler)
var ListCategoriesHandler = Wrap(handlers.ListCategoriesHandler)
var RenameCategoryHandler = Wrap(handlers.RenameCategoryHandler)
var DeleteCategoryHandler = Wrap(handlers.DeleteCategoryHandler)
var UploadDocumentHandler = Wrap(handlers.UploadDocumentHandler)
var ListDocumentsHandler = Wrap(handlers.ListDocumentsHandler)
var GetDocumentHandler = Wrap(handlers.GetDocumentHandler)
var EnableDocumentHandler = Wrap(handlers.EnableDocumentHandler)
var DisableDocumentHandler = Wrap(handlers.DisableDocumentHandler)
var RenameDocumentHandler = Wrap(handlers.RenameDocumentHandler)
var MigrateDocumentHandler = Wrap(handlers.MigrateDocumentHandler)
var UpdateDocumentContentHandler = Wrap(handlers.UpdateDocumentContentHandler)
var CloneDocumentHandler = Wrap(handlers.CloneDocumentHandler)
var DeleteDocumentHandler = Wrap(handlers.DeleteDocumentHandler)
var GetStatsHandler = Wrap(handlers.GetStatsHandler)

// jobs
var GetStatusHandler = Wrap(handlers.GetStatusHandler)

func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: 200} //metrics
		re := processRequest(requestResponseStruct{req: r, writer: rec})

		if re.badRequest.isBadRequest {
			return
		}
		next(rec, re.req)

		metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc() //metrics
	}
}

func processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = logger_i.NewLogger("middleware")
	re.logger.Info("New request received")
	re = injectTrace(re)
	re = authenticate(re)
	if re.badRequest.isBadRequest {
		return re //stop if auth fails
	}
	re = rateLimiter(re)
	if re.badRequest.isBadRequest {
		handleBadRequest(re)
		return re //stop here if rate limit fails
	}

	return re
}
