package worker

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/akolanti/newschat/internal/config"
	"github.com/akolanti/newschat/internal/domain/commonModels"
	jobmodel "github.com/akolanti/newschat/internal/domain/jobModel"
	"github.com/akolanti/newschat/internal/metrics"
	"github.com/akolanti/newschat/internal/news"
	"github.com/akolanti/newschat/pkg/logger_i"
)

func executeJob(job jobmodel.Job) {
	start := time.Now()
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, config.JobExecutionTimeout)
	defer cancel()

	log := logger.WithTrace(ctx).With("jobId", job.Id, "jobType", job.JobType)
	log.Debug("Processing job")

	job = saveJobState(ctx, job, jobmodel.JobStatusRunning)

	switch job.JobType {
	case jobmodel.JobTypeChat:
		job = processQuery(ctx, job, log)
	case jobmodel.JobTypeSummarize:
		job = summarizeNews(ctx, job, log)
	case jobmodel.JobTypeFollowup:
		job = followUp(ctx, job, log)
	default:
		job = failJob(job, http.StatusBadRequest, "unknown job type", false)
	}

	job.EndTime = time.Now()
	final := jobmodel.JobStatusComplete
	if job.Failed() {
		final = jobmodel.JobStatusError
	} else {
		job.CurrentStep = jobmodel.Complete
	}
	job = saveJobState(ctx, job, final)

	metrics.CaptureJobMetrics(string(job.Status), time.Since(start))
	metrics.CountJob(string(job.JobType), string(job.Status))
	job.Finish()
}

func removeWorker(reason string) {
	workerWaitGroup.Done()
	metrics.DecrementActiveWorkerCount()
	logger.Info("Removed worker", "reason", reason, "workerCount", atomic.LoadInt64(&currentWorkerCount))
}

func processQuery(ctx context.Context, job jobmodel.Job, log *logger_i.Logger) jobmodel.Job {
	job.CurrentStep = jobmodel.MemoryCall
	messageHistory, err := _jobService.MessageStore.GetMessageHistory(ctx, job.ChatId)
	if err != nil {
		// answer without memory rather than fail the turn
		log.Error("Failed to get message history", "error", err)
	}

	job = _ragService.ProcessRequest(ctx, job, messageHistory)
	if job.Failed() {
		return job
	}

	turn := commonModels.ChatTurn{
		Question:  job.JobPayload.Question,
		Answer:    job.JobPayload.Answer,
		Sources:   job.JobPayload.Sources,
		CreatedAt: time.Now(),
	}
	if err := _jobService.MessageStore.TrySaveChat(ctx, job.ChatId, turn); err != nil {
		log.Error("Failed to save chat history", "error", err)
	}
	return job
}

func summarizeNews(ctx context.Context, job jobmodel.Job, log *logger_i.Logger) jobmodel.Job {
	job.CurrentStep = jobmodel.NewsAPICall
	summary, err := _newsService.Summarize(ctx, job.JobPayload.Topic)
	if err != nil {
		log.Error("Summarize job failed", "error", err)
		return failJob(job, http.StatusInternalServerError, news.SummarizeFailed, true)
	}
	job.JobPayload.Summary = summary
	return job
}

func followUp(ctx context.Context, job jobmodel.Job, log *logger_i.Logger) jobmodel.Job {
	job.CurrentStep = jobmodel.WebSearchCall
	answer, err := _newsService.FollowUp(ctx, job.JobPayload.Summary, job.JobPayload.Question)
	if err != nil {
		log.Error("Follow up job failed", "error", err)
		return failJob(job, http.StatusInternalServerError, news.FollowupFailed, true)
	}
	job.JobPayload.Answer = answer
	return job
}

func failJob(job jobmodel.Job, code int, message string, retry bool) jobmodel.Job {
	job.Status = jobmodel.JobStatusError
	job.CurrentStep = jobmodel.Error
	job.Error = jobmodel.JobError{Code: code, Message: message, Retry: retry}
	return job
}

func saveJobState(ctx context.Context, job jobmodel.Job, jobStatus jobmodel.JobStatus) jobmodel.Job {
	job.Status = jobStatus
	if err := _jobService.JobStore.SaveJob(ctx, job); err != nil {
		logger.WithTrace(ctx).Error("Failed to update job state", "error", err, "jobId", job.Id)
	}
	return job
}
