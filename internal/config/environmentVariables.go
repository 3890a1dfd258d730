package config

import (
	"log/slog"
	"time"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"

	NoAuthBypass = true //local dev only - flip before deploying
	AuthToken    = ""

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//knowledge base
	ChunkSize              = 500
	ChunkOverlap           = 50
	CollectionName         = "tcm_knowledge"
	MaxUploadSize          = 10 << 20 //10mb, matches the upload form limit
	DefaultPageSize        = 10
	ConversationTitleRunes = 30

	//retrieval
	TopKResults      = 5
	SourcesLimit     = 3
	QueryTermLimit   = 5
	ScorePrefixRunes = 50
	//backend is "lexical" or "vector" - vector needs qdrant + an embedding key
	RetrieverBackend = "lexical"

	//consultation policy
	DiagnosisThreshold = 4
	HistoryWindowTurns = 8
	FallbackGrounding  = "头痛\n身体痛"
	ApologyMessage     = "抱歉，我现在无法为您服务，请稍后再试~"

	//llm
	ZhipuBaseURL     = "https://open.bigmodel.cn/api/paas/v4"
	ZhipuModel       = "glm-4-flash"
	ZhipuAPIKey      = "" //overridden by ZHIPU_API_KEY
	GeminiModelName  = "gemini-2.5-flash-lite-preview-09-2025"
	GeminiAPIKey     = "" //overridden by GEMINI_API_KEY
	ModelTemperature = 0.8
	ModelMaxTokens   = 1200
	LLMCallTimeout   = 30 * time.Second

	//embeddings (vector retriever only)
	GoogleEmbeddingModel                = "gemini-embedding-001"
	EmbeddingOutputDimensionality int32 = 1536

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 45 * time.Second //consultation turns block on the llm call
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100

	//vectorDB
	QdrantConnectionTimeout = 30 * time.Second
	QdrantHost              = ""
	QdrantGrpcPort          = 6334
	QdrantUseTLS            = false
	QdrantPoolSize          = 1

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis
	redisHost     = "127.0.0.1"
	redisPort     = "6379"
	RedisAddr     = redisHost + ":" + redisPort
	RedisPassword = ""

	//redis has 16 DB we can use
	RedisKnowledgeStore    = 0
	RedisConversationStore = 1
	RedisJobStore          = 2

	//redis timeouts
	RedisJobStoreTTL = 24 * time.Hour
	//knowledge snapshot and conversations never expire
	RedisNoTTL time.Duration = 0
)
