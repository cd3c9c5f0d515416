package config

import (
	"log/slog"
	"time"
)

const (
	LOG_LEVEL_PROD        = slog.LevelInfo
	TRACE_ID_KEY          = "traceId"
	RATE_LIMIT_PER_SECOND = 2
	BURST_RATE_LIMIT      = 5
	RateLimiterIdleExpiry = 10 * time.Minute
	CacheSimilarityCutoff = 0.97

	//embeddings
	EmbeddingOutputDimensionality int32 = 1536 //ada-002 and gemini-embedding-001 (truncated) both emit 1536
	CorpusCollectionName                = "newschat-corpus"
	SemanticCacheCollectionName         = "newschat-semantic-cache"
	EmbeddingBatchSize                  = 100
	PageExtractTimeout                  = 10 * time.Second

	//splitter, mirrors a character splitter on blank lines
	ChunkSize      = 1000
	ChunkOverlap   = 0
	ChunkSeparator = "\n\n"

	//retriever
	RetrieverTopK = 4

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute
	JobExecutionTimeout             = 60 * time.Second
	RAGProcessTimeout               = 45 * time.Second

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 60 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second
	ChatRequestTimeout     = 55 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100

	MaxQuestionLength = 4000
	MaxRequestBytes   = 1 << 20

	//vectorDB
	QdrantHost     = "localhost"
	QdrantGrpcPort = 6334
	QdrantUseTLS   = false
	QdrantPoolSize = 1 //2-5 is preferred for prod according to documentation

	//llm
	OpenAIChatModel      = "gpt-3.5-turbo"
	OpenAIEmbeddingModel = "text-embedding-ada-002"
	GeminiModelName      = "gemini-2.5-flash"
	GoogleEmbeddingModel = "gemini-embedding-001"
	TogetherModelName    = "mistralai/Mixtral-8x7B-Instruct-v0.1"
	TogetherBaseURL      = "https://api.together.xyz"
	HuggingFaceBaseURL   = "https://api-inference.huggingface.co"
	HuggingFaceModelName = "facebook/bart-large-cnn"

	ChatTemperature float64 = 0

	//news
	NewsAPIBaseURL      = "https://newsapi.org"
	NewsAPIPageSize     = 5
	SerperBaseURL       = "https://google.serper.dev"
	MaxWebSearchResults = 5

	//outbound http
	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second
	OutboundTimeout     = 30 * time.Second
	RetryAttempts       = 3
	RetryDelay          = 200 * time.Millisecond
	RetryMaxDelay       = 2 * time.Second

	//redis has 16 DB we can use
	RedisJobStore     = 0
	RedisMessageStore = 1

	//redis timeouts
	RedisJobStoreTTL     = 24 * time.Hour
	RedisMessageStoreTTL = 24 * time.Hour
)

// SeedDocuments is the fixed corpus the retriever answers from. Files found in
// CORPUS_DIR are added on top of these.
var SeedDocuments = []string{
	"Apple released new AR glasses with advanced tracking.",
	"Google's new AI model Gemini competes with GPT-4.",
	"The stock market dropped 2% due to inflation fears.",
}
