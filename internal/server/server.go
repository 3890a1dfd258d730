package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"

	"github.com/hzhao/ConsultAPI/internal/adapter/utils"
	"github.com/hzhao/ConsultAPI/internal/config"
	"github.com/hzhao/ConsultAPI/internal/middleware"
	"github.com/hzhao/ConsultAPI/pkg/logger_i"
)

var (
	server  *http.Server
	_logger *logger_i.Logger
)

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	WorkerStop       chan bool
	Group            *sync.WaitGroup
	CloseServices    context.CancelFunc
}

func CreateServer(listenAddr string) {
	_logger = logger_i.NewLogger("Server")

	r := utils.GetRouter()

	r.Router.Get("/health", middleware.GetHandler)

	//consultation dialogue
	r.Router.Post("/consultation", middleware.ConsultHandler)
	r.Router.Get("/conversations", middleware.ListConversationsHandler)
	r.Router.Get("/conversations/{id}", middleware.GetConversationHandler)
	r.Router.Delete("/conversations/{id}", middleware.DeleteConversationHandler)
	r.Router.Put("/conversations/{id}/title", middleware.UpdateConversationTitleHandler)

	//knowledge base
	r.Router.Post("/knowledge/categories", middleware.CreateCategoryHandler)
	r.Router.Get("/knowledge/categories", middleware.ListCategoriesHandler)
	r.Router.Put("/knowledge/categories/{id}", middleware.RenameCategoryHandler)
	r.Router.Delete("/knowledge/categories/{id}", middleware.DeleteCategoryHandler)
	r.Router.Post("/knowledge/documents", middleware.UploadDocumentHandler)
	r.Router.Get("/knowledge/documents", middleware.ListDocumentsHandler)
	r.Router.Get("/knowledge/documents/{id}", middleware.GetDocumentHandler)
	r.Router.Post("/knowledge/documents/{id}/enable", middleware.EnableDocumentHandler)
	r.Router.Post("/knowledge/documents/{id}/disable", middleware.DisableDocumentHandler)
	r.Router.Put("/knowledge/documents/{id}/rename", middleware.RenameDocumentHandler)
	r.Router.Put("/knowledge/documents/{id}/migrate", middleware.MigrateDocumentHandler)
	r.Router.Put("/knowledge/documents/{id}/content", middleware.UpdateDocumentContentHandler)
	r.Router.Post("/knowledge/documents/{id}/clone", middleware.CloneDocumentHandler)
	r.Router.Delete("/knowledge/documents/{id}", middleware.DeleteDocumentHandler)
	r.Router.Get("/knowledge/stats", middleware.GetStatsHandler)

	//ingestion job status
	r.Router.Get("/status/{id}", middleware.GetStatusHandler)

	server = &http.Server{
		Addr:         listenAddr,
		Handler:      r.Router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	_logger.Info("Server is listening at", "address", listenAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_logger.Error("Server crashed", "error :", err.Error(), "addr", listenAddr)
	}
}

func ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	println("\nServer is shutting down", state)

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		server.SetKeepAlivesEnabled(false)

		if err := server.Shutdown(ctx); err != nil {
			_logger.Error("Could not shutdown gracefully: %s", err)
		}

		//close workers
		close(shutdownParams.WorkerStop)
		shutdownParams.Group.Wait()
		shutdownParams.CloseServices()
		close(shutdownParams.StopExecution)
		close(done)
	}()

	select {
	case <-done:
		_logger.Info("Gracefully is shutting down")
	case <-ctx.Done():
		_logger.Info("Force Shut down")
		os.Exit(1)
	}
}
