// @title           TCM Consultation API
// @version         1.0
// @description     Knowledge-base management and guided consultation dialogue grounded in classical TCM texts.
// @termsOfService  http://swagger.io/terms/

// @contact.name    API Support
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/hzhao/ConsultAPI/internal/config"
	"github.com/hzhao/ConsultAPI/internal/consult"
	"github.com/hzhao/ConsultAPI/internal/data/store"
	"github.com/hzhao/ConsultAPI/internal/domain/chatModel"
	jobmodel "github.com/hzhao/ConsultAPI/internal/domain/jobModel"
	"github.com/hzhao/ConsultAPI/internal/domain/knowledgeModel"
	"github.com/hzhao/ConsultAPI/internal/handlers"
	"github.com/hzhao/ConsultAPI/internal/job"
	"github.com/hzhao/ConsultAPI/internal/knowledge"
	"github.com/hzhao/ConsultAPI/internal/rag"
	"github.com/hzhao/ConsultAPI/internal/rag/embedding/googleEmbedding"
	"github.com/hzhao/ConsultAPI/internal/rag/llm"
	"github.com/hzhao/ConsultAPI/internal/rag/llm/gemini"
	"github.com/hzhao/ConsultAPI/internal/rag/llm/zhipu"
	"github.com/hzhao/ConsultAPI/internal/rag/retrieval"
	"github.com/hzhao/ConsultAPI/internal/rag/vectorDB/qdrantDB"
	"github.com/hzhao/ConsultAPI/internal/server"
	"github.com/hzhao/ConsultAPI/internal/worker"
	"github.com/hzhao/ConsultAPI/pkg/logger_i"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

// lateCorpus lets the vector retriever read the enabled corpus even though
// the knowledge service is constructed after it (the service needs the
// retriever as its chunk index).
type lateCorpus struct {
	svc knowledge.Service
}

func (c *lateCorpus) EnabledDocuments(categoryId string) []knowledgeModel.Document {
	if c.svc == nil {
		return nil
	}
	return c.svc.EnabledDocuments(categoryId)
}

func main() {
	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and job store
	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
	}
	logger.Info("Starting job service")

	if redisJobs := store.GetRedisJobStore(serviceContext); redisJobs != nil {
		serviceConfig.JobStore = redisJobs
	} else {
		logger.Error("Redis job store is offline, falling back to in-memory")
		serviceConfig.JobStore = store.InitInMemoryJobStore()
	}
	jobService := job.InitJobService(serviceConfig)

	//conversation log
	var conversationStore chatModel.ConversationStore
	if redisConversations := store.GetRedisConversationStore(serviceContext); redisConversations != nil {
		conversationStore = redisConversations
	} else {
		logger.Error("Redis conversation store is offline, falling back to in-memory")
		conversationStore = store.InitInMemoryConversationStore()
	}

	//knowledge snapshot persistence
	var persistence knowledgeModel.Persistence
	if redisKnowledge := store.GetRedisKnowledgeStore(serviceContext); redisKnowledge != nil {
		persistence = redisKnowledge
	} else {
		logger.Error("Redis knowledge store is offline, falling back to in-memory")
		persistence = store.InitInMemoryKnowledgeStore()
	}

	//retrieval backend: lexical by default, qdrant+embeddings when configured
	var chunkIndex knowledge.ChunkIndex
	var vectorRetriever *retrieval.VectorRetriever
	corpus := &lateCorpus{}
	if config.RetrieverBackend == "vector" {
		vectorDatabase := qdrantDB.GetQdrantClient(serviceContext)
		embeddingService := googleEmbedding.GetGoogleEmbeddingClient(serviceContext, config.GoogleEmbeddingModel, apiKeyFor("GEMINI_API_KEY", config.GeminiAPIKey))
		if vectorDatabase == nil || embeddingService == nil {
			logger.Error("Vector backend unavailable, falling back to lexical retrieval",
				"VectorDB", vectorDatabase != nil, "EmbeddingService", embeddingService != nil)
		} else {
			vectorRetriever = retrieval.NewVectorRetriever(vectorDatabase, embeddingService, corpus)
			chunkIndex = vectorRetriever
		}
	}

	knowledgeService, err := knowledge.NewService(serviceContext, knowledge.ServiceConfig{
		Persistence: persistence,
		Index:       chunkIndex,
	})
	if err != nil {
		logger.Error("Could not load the knowledge store. Shutting down.", "error", err)
		return
	}
	corpus.svc = knowledgeService

	var retriever retrieval.Retriever = retrieval.NewLexicalRetriever(knowledgeService)
	if vectorRetriever != nil {
		retriever = vectorRetriever
	}

	//llm: Zhipu primary, Gemini fallback; with neither key the dialogue
	//still runs and serves the apology message
	var llmProvider llm.Provider
	if key := apiKeyFor("ZHIPU_API_KEY", config.ZhipuAPIKey); key != "" {
		llmProvider = zhipu.GetZhipuClient(serviceContext, key, config.ZhipuModel)
	}
	if llmProvider == nil {
		if key := apiKeyFor("GEMINI_API_KEY", config.GeminiAPIKey); key != "" {
			llmProvider = gemini.GetGeminiClient(serviceContext, key, config.GeminiModelName)
		}
	}
	if llmProvider == nil {
		logger.Warn("No LLM provider configured - consultations will be answered with the apology message")
	}

	consultService := consult.NewService(retriever, llmProvider, config.DiagnosisThreshold)
	ingestService := rag.NewService(knowledgeService)

	handlers.InitJobHandler(jobService)
	handlers.InitKnowledgeHandler(knowledgeService)
	handlers.InitChatHandler(consultService, conversationStore)

	//init worker pool
	worker.InitServices(jobService, ingestService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}

func apiKeyFor(envName string, fallback string) string {
	if key := os.Getenv(envName); key != "" {
		return key
	}
	return fallback
}
