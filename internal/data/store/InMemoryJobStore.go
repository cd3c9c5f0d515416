package store

import (
	"context"

	"github.com/akolanti/newschat/internal/config"
	"github.com/akolanti/newschat/internal/domain/jobModel"
	"github.com/akolanti/newschat/pkg/logger_i"
	"github.com/patrickmn/go-cache"
)

type InMemoryJobStore struct {
	jobs   *cache.Cache
	logger *logger_i.Logger
}

func InitInMemoryJobStore() *InMemoryJobStore {
	return &InMemoryJobStore{
		jobs:   cache.New(config.RedisJobStoreTTL, config.RedisJobStoreTTL/4),
		logger: logger_i.NewLogger("InMem JobStore"),
	}
}

func (store *InMemoryJobStore) SaveJob(ctx context.Context, job jobModel.Job) error {
	store.jobs.SetDefault(job.Id, job)
	store.logger.Debug("Saved job to store", "jobId", job.Id)
	return nil
}

func (store *InMemoryJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	v, found := store.jobs.Get(jobId)
	if !found {
		return jobModel.Job{}, false
	}
	return v.(jobModel.Job), true
}

func (store *InMemoryJobStore) DeleteJob(ctx context.Context, jobID string) {
	store.jobs.Delete(jobID)
}
