package job

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/akolanti/newschat/internal/config"
	"github.com/akolanti/newschat/internal/domain/jobModel"
	"github.com/akolanti/newschat/internal/metrics"
	"github.com/akolanti/newschat/pkg/logger_i"
)

var (
	ErrNotCompleted = errors.New("job did not complete before the deadline")
	ErrQueueFull    = errors.New("job queue is full")
)

type Service struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	MessageStore      jobModel.MessageStore
	logger            *logger_i.Logger
}

type ServiceConfig struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	MessageStore      jobModel.MessageStore
}

func InitJobService(cfg ServiceConfig) *Service {
	return &Service{
		JobChannel:        cfg.JobChannel,
		RequestCount:      cfg.RequestCount,
		DispatcherChannel: cfg.DispatcherChannel,
		JobStore:          cfg.JobStore,
		MessageStore:      cfg.MessageStore,
		logger:            logger_i.NewLogger("job_service"),
	}
}

// Enqueue records the job as QUEUED and hands it to the worker pool. The send
// blocks while the buffer is full, which is the pool's backpressure.
func (s *Service) Enqueue(ctx context.Context, j jobModel.Job) error {
	log := s.logger.WithTrace(ctx).With("jobId", j.Id, "jobType", j.JobType)

	j.Status = jobModel.JobStatusQueued
	if j.CreatedTime.IsZero() {
		j.CreatedTime = time.Now()
	}
	if err := s.JobStore.SaveJob(ctx, j); err != nil {
		log.Error("Failed to persist queued job", "error", err)
	}

	select {
	case s.JobChannel <- j:
	case <-ctx.Done():
		// no worker will ever see it, so nothing should report it as QUEUED
		s.JobStore.DeleteJob(context.WithoutCancel(ctx), j.Id)
		log.Warn("Job queue full, dropped job", "error", ctx.Err())
		return fmt.Errorf("%w: %w", ErrQueueFull, ctx.Err())
	}
	metrics.IncrementJobsInQueue()
	log.Debug("Queued job")

	// a new worker every RequestsPerNewWorkerCount requests; idle ones retire on their own
	accurateCount := atomic.AddInt64(&s.RequestCount, 1)
	if accurateCount%config.RequestsPerNewWorkerCount == 0 {
		select {
		case s.DispatcherChannel <- true:
			metrics.StartDispatcherSignalCount()
		default:
			// the dispatcher already has pending signals
		}
	}
	return nil
}

// Run enqueues the job and waits for the worker to finish it.
func (s *Service) Run(ctx context.Context, j jobModel.Job) (jobModel.Job, error) {
	j, done := j.WithDone()
	if err := s.Enqueue(ctx, j); err != nil {
		return jobModel.Job{}, err
	}

	select {
	case finished := <-done:
		return finished, nil
	case <-ctx.Done():
		s.logger.WithTrace(ctx).Warn("Stopped waiting for job", "jobId", j.Id, "error", ctx.Err())
		return j, errors.Join(ErrNotCompleted, ctx.Err())
	}
}

func (s *Service) GetJob(ctx context.Context, id string) (jobModel.Job, bool) {
	if id == "" {
		return jobModel.Job{}, false
	}
	return s.JobStore.GetJob(ctx, id)
}
