// @title           News Chat API
// @version         1.0
// @description     Conversational retrieval over a news corpus, news summaries and web-search follow-ups.
// @termsOfService  http://swagger.io/terms/

// @contact.name    akolanti

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Bearer <AUTH_TOKEN>
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/akolanti/newschat/internal/config"
	"github.com/akolanti/newschat/internal/data/redisStore"
	"github.com/akolanti/newschat/internal/data/store"
	jobmodel "github.com/akolanti/newschat/internal/domain/jobModel"
	"github.com/akolanti/newschat/internal/handlers"
	"github.com/akolanti/newschat/internal/job"
	"github.com/akolanti/newschat/internal/mcpserver"
	"github.com/akolanti/newschat/internal/middleware"
	"github.com/akolanti/newschat/internal/news"
	"github.com/akolanti/newschat/internal/rag"
	"github.com/akolanti/newschat/internal/rag/embedding"
	"github.com/akolanti/newschat/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/newschat/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/newschat/internal/rag/ingest"
	"github.com/akolanti/newschat/internal/rag/llm"
	"github.com/akolanti/newschat/internal/rag/llm/gemini"
	"github.com/akolanti/newschat/internal/rag/llm/huggingface"
	openaiLLM "github.com/akolanti/newschat/internal/rag/llm/openai"
	"github.com/akolanti/newschat/internal/rag/llm/together"
	"github.com/akolanti/newschat/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/newschat/internal/server"
	"github.com/akolanti/newschat/internal/worker"
	"github.com/akolanti/newschat/pkg/logger_i"
)

var (
	listenAddr        string
	environment       string
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {
	flag.StringVar(&listenAddr, "listen-addr", "", "server listen address, overrides LISTEN_ADDR")
	flag.StringVar(&environment, "env", "local", "selects the .env.<name> file to load")
	flag.Parse()

	settings, err := config.Load(environment)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if listenAddr == "" {
		listenAddr = settings.ListenAddr
	}

	logger_i.Init(settings.SlogLevel(), settings.IsProd)
	var logger = logger_i.NewLogger("main")
	middleware.ConfigureAuth(settings.AuthToken, settings.NoAuthBypass)
	if settings.NoAuthBypass {
		logger.Warn("Authentication is disabled")
	}

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and stores
	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		DispatcherChannel: dispatcherChannel,
	}
	redisOpts := redisStore.Options{Addr: settings.RedisAddr, Password: settings.RedisPassword}
	jobStore := store.GetRedisJobStore(serviceContext, redisOpts)
	messageStore := store.GetRedisMessageStore(serviceContext, redisOpts, settings.MemoryWindow)
	if jobStore == nil || messageStore == nil {
		logger.Error("Redis stores are offline, falling back to in-memory stores")
		serviceConfig.JobStore = store.InitInMemoryJobStore()
		serviceConfig.MessageStore = store.InitMessageStore(settings.MemoryWindow)
	} else {
		serviceConfig.JobStore = jobStore
		serviceConfig.MessageStore = messageStore
	}
	service := job.InitJobService(serviceConfig)

	vectorClient := qdrantDB.GetQuadrantClient(serviceContext, qdrantDB.Options{Host: settings.QdrantHost, Port: settings.QdrantPort})
	embeddingService := newEmbedder(serviceContext, settings)
	chatLLM := newLLM(serviceContext, settings, settings.ChatProvider)
	newsLLM := newLLM(serviceContext, settings, settings.NewsProvider)

	if vectorClient == nil || embeddingService == nil || chatLLM == nil || newsLLM == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services", "VectorDB", vectorClient != nil, "EmbeddingService", embeddingService != nil, "ChatLLM", chatLLM != nil, "NewsLLM", newsLLM != nil)
		os.Exit(1)
	}

	seeded, err := ingest.SeedCorpus(serviceContext, settings.CorpusDir, embeddingService, vectorClient)
	if err != nil {
		logger.Error("Failed to seed the retrieval corpus", "error", err)
		os.Exit(1)
	}
	logger.Info("Retrieval corpus ready", "chunks", seeded, "embeddingModel", embeddingService.Model())

	ragService := rag.NewService(vectorClient, chatLLM, embeddingService, settings.SemanticCache)
	newsService := news.NewService(
		news.NewNewsAPIClient(settings.NewsAPIKey, config.NewsAPIBaseURL),
		news.NewSerperClient(settings.SerperKey, config.SerperBaseURL),
		newsLLM,
	)

	handlers.InitJobHandler(service)

	//init worker pool
	worker.InitServices(service, ragService, newsService)
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
	go server.CreateServer(listenAddr, mcpserver.NewHandler(mcpserver.NewServer(service)))

	<-stopExecution
	logger.Info("Server stopped")
}

func newEmbedder(ctx context.Context, settings *config.Settings) embedding.Embedder {
	switch strings.ToLower(settings.EmbeddingProvider) {
	case config.ProviderGoogle, config.ProviderGemini:
		return googleEmbedding.GetGoogleEmbeddingClient(ctx, config.GoogleEmbeddingModel, settings.GeminiKey)
	default:
		return openaiEmbedding.NewOpenAIEmbedder(settings.OpenAIKey, config.OpenAIEmbeddingModel)
	}
}

// newLLM returns nil for an unknown provider; Validate rejects those before we get here.
func newLLM(ctx context.Context, settings *config.Settings, provider string) llm.Provider {
	switch strings.ToLower(provider) {
	case config.ProviderOpenAI:
		return openaiLLM.NewOpenAIClient(settings.OpenAIKey, config.OpenAIChatModel)
	case config.ProviderGemini:
		return gemini.GetGeminiClient(ctx, settings.GeminiKey, config.GeminiModelName)
	case config.ProviderTogether:
		return together.NewTogetherClient(settings.TogetherKey, config.TogetherBaseURL, config.TogetherModelName)
	case config.ProviderHuggingFace:
		return huggingface.NewHuggingFaceClient(settings.HFKey, config.HuggingFaceBaseURL, config.HuggingFaceModelName)
	default:
		return nil
	}
}
