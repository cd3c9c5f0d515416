package rag

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/akolanti/newschat/internal/config"
	"github.com/akolanti/newschat/internal/domain/commonModels"
	"github.com/akolanti/newschat/internal/domain/jobModel"
	"github.com/akolanti/newschat/internal/metrics"
	"github.com/akolanti/newschat/internal/rag/llm"
	"github.com/akolanti/newschat/pkg/logger_i"
)

func returnOutput(job jobModel.Job, ans string) jobModel.Job {
	job.JobPayload.Answer = ans
	job.CurrentStep = jobModel.Complete
	return job
}

func logOutput(job jobModel.Job, status jobModel.InternalStatus, log *logger_i.Logger) jobModel.Job {
	job.CurrentStep = status
	log.Debug("ProcessRequest", "currentStep", job.CurrentStep)
	return job
}

func (s *service) jobError(ctx context.Context, job jobModel.Job, err error, message string, canRetry bool) jobModel.Job {
	s.logger.WithTrace(ctx).Error(message, "error", err, "jobId", job.Id, "step", job.CurrentStep)

	job.Error = jobModel.JobError{
		Code:    http.StatusInternalServerError,
		Message: message,
		Retry:   canRetry,
	}
	job.Status = jobModel.JobStatusError
	return job
}

// executeCondenseStep turns a follow up into a standalone question; the first question passes through.
func (s *service) executeCondenseStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, history []commonModels.ChatTurn) (string, error) {
	question := job.JobPayload.Question
	chatHistory := formatHistory(history)
	if chatHistory == "" {
		return question, nil
	}
	*job = logOutput(*job, jobModel.CondenseCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("condense", time.Since(start)) }()

	prompt, err := condensePrompt.Format(map[string]any{
		"chat_history": chatHistory,
		"question":     question,
	})
	if err != nil {
		return "", err
	}

	standalone, err := s.llmProvider.Complete(ctx, llm.Prompt{
		User:        prompt,
		Temperature: llm.Float(config.ChatTemperature),
	})
	if err != nil {
		return "", err
	}
	log.Debug("Condensed question", "standalone", standalone)
	return strings.TrimSpace(standalone), nil
}

func (s *service) executeEmbeddingStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, question string) ([]float32, error) {
	*job = logOutput(*job, jobModel.EmbeddingAPICall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	return s.embedder.GetEmbedding(ctx, question)
}

func (s *service) executeCacheCheckStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, emb []float32) (commonModels.CachedAnswer, bool) {
	*job = logOutput(*job, jobModel.CacheCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("cache_lookup", time.Since(start)) }()

	// a cache failure only costs a retrieval
	ans, found, err := s.vectorDB.GetCachedAnswer(ctx, emb)
	if err != nil {
		log.Warn("Semantic cache lookup failed", "error", err)
		return commonModels.CachedAnswer{}, false
	}
	metrics.CountCacheLookup(found)
	return ans, found
}

func (s *service) executeVectorSearchStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, emb []float32) ([]commonModels.RetrievedChunk, error) {
	*job = logOutput(*job, jobModel.VectorDBCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	matches, err := s.vectorDB.Search(ctx, emb, config.RetrieverTopK)
	if err != nil {
		return nil, err
	}
	job.JobPayload.Sources = sourceNames(matches)
	return matches, nil
}

func (s *service) executeLLMStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, matches []commonModels.RetrievedChunk, question string) (string, error) {
	*job = logOutput(*job, jobModel.LLMCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	system, err := qaSystemPrompt.Format(map[string]any{"context": joinContext(matches)})
	if err != nil {
		return "", err
	}

	return s.llmProvider.Complete(ctx, llm.Prompt{
		System:      system,
		User:        question,
		Temperature: llm.Float(config.ChatTemperature),
	})
}
