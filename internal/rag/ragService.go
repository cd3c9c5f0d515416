package rag

import (
	"context"
	"time"

	"github.com/akolanti/newschat/internal/adapter/utils"
	"github.com/akolanti/newschat/internal/config"
	"github.com/akolanti/newschat/internal/domain/commonModels"
	"github.com/akolanti/newschat/internal/domain/jobModel"
	"github.com/akolanti/newschat/internal/rag/embedding"
	"github.com/akolanti/newschat/internal/rag/llm"
	"github.com/akolanti/newschat/internal/rag/vectorDB"
	"github.com/akolanti/newschat/pkg/logger_i"
)

// Service is the conversational retrieval chain. The worker only sees this
// interface; the vector store, embedder and model stay private to the package.
type Service interface {
	ProcessRequest(ctx context.Context, job jobModel.Job, history []commonModels.ChatTurn) jobModel.Job
}

type service struct {
	vectorDB      vectorDB.DataProcessor
	llmProvider   llm.Provider
	embedder      embedding.Embedder
	semanticCache bool
	logger        *logger_i.Logger
}

func NewService(vector vectorDB.DataProcessor, llm llm.Provider, em embedding.Embedder, semanticCache bool) Service {
	return &service{
		vectorDB:      vector,
		llmProvider:   llm,
		embedder:      em,
		semanticCache: semanticCache,
		logger:        logger_i.NewLogger("rag_service"),
	}
}

func (s *service) ProcessRequest(ctx context.Context, jobt jobModel.Job, history []commonModels.ChatTurn) jobModel.Job {
	inMethodLogger := s.logger.WithTrace(ctx).With("jobId", jobt.Id, "chatId", jobt.ChatId)

	processContext, cancel := context.WithTimeout(ctx, config.RAGProcessTimeout)
	defer cancel()

	jobt.CurrentStep = jobModel.RAGCall

	standalone, err := s.executeCondenseStep(processContext, inMethodLogger, &jobt, history)
	if err != nil {
		return s.jobError(ctx, jobt, err, "CONDENSE_FAILURE", true)
	}

	queryVector, err := s.executeEmbeddingStep(processContext, inMethodLogger, &jobt, standalone)
	if err != nil {
		return s.jobError(ctx, jobt, err, "EMBEDDING_FAILURE", true)
	}

	if s.semanticCache {
		if cached, found := s.executeCacheCheckStep(processContext, inMethodLogger, &jobt, queryVector); found {
			jobt.JobPayload.Sources = cached.Sources
			return returnOutput(jobt, cached.Answer)
		}
	}

	matches, err := s.executeVectorSearchStep(processContext, inMethodLogger, &jobt, queryVector)
	if err != nil {
		return s.jobError(ctx, jobt, err, "VECTOR_DB_FAILURE", true)
	}

	answer, err := s.executeLLMStep(processContext, inMethodLogger, &jobt, matches, standalone)
	if err != nil {
		return s.jobError(ctx, jobt, err, "LLM_GENERATION_FAILURE", true)
	}

	if s.semanticCache {
		s.saveToCacheAsync(ctx, queryVector, commonModels.CachedAnswer{Answer: answer, Sources: jobt.JobPayload.Sources})
	}

	return returnOutput(jobt, answer)
}

// saveToCacheAsync outlives the job context; a slow cache write must not delay the reply.
func (s *service) saveToCacheAsync(ctx context.Context, vector []float32, answer commonModels.CachedAnswer) {
	bg := context.WithoutCancel(ctx)
	go func() {
		saveCtx, cancel := context.WithTimeout(bg, 10*time.Second)
		defer cancel()
		if err := s.vectorDB.SaveToCache(saveCtx, utils.GetNewUUID(), vector, answer); err != nil {
			s.logger.WithTrace(saveCtx).Error("Failed to save to cache", "error", err)
		}
	}()
}
