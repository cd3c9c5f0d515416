package handlers

import (
	"context"

	"github.com/akolanti/newschat/internal/domain/commonModels"
	"github.com/akolanti/newschat/internal/domain/jobModel"
	"github.com/akolanti/newschat/pkg/logger_i"
)

var (
	handlerInstance *JobHandler //private singleton
	logRH           = logger_i.NewLogger("RequestHandler")
)

// JobRunner is the part of job.Service the handlers need.
type JobRunner interface {
	Chat(ctx context.Context, chatId string, question string) (jobModel.Job, error)
	Summarize(ctx context.Context, topic string) (jobModel.Job, error)
	FollowUp(ctx context.Context, summary string, question string) (jobModel.Job, error)
	GetJob(ctx context.Context, id string) (jobModel.Job, bool)
	History(ctx context.Context, chatId string) ([]commonModels.ChatTurn, error)
	ForgetChat(ctx context.Context, chatId string) error
}

type JobHandler struct {
	service JobRunner
}

// InitJobHandler sets the service every handler runs against. Calling it again replaces the service.
func InitJobHandler(jobService JobRunner) {
	handlerInstance = &JobHandler{service: jobService}
	logger_i.NewLogger("JobHandler").Info("Starting job handler")
}

func getJobStatus(ctx context.Context, id string) (jobModel.Job, bool) {
	if handlerInstance == nil || id == "" {
		return jobModel.Job{}, false
	}
	return handlerInstance.service.GetJob(ctx, id)
}
