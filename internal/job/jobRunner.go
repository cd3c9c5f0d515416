package job

import (
	"context"
	"errors"

	"github.com/akolanti/newschat/internal/adapter/utils"
	"github.com/akolanti/newschat/internal/domain/commonModels"
	"github.com/akolanti/newschat/internal/domain/jobModel"
	"github.com/akolanti/newschat/pkg/logger_i"
)

var ErrChatNotFound = errors.New("chat not found")

func newJob(ctx context.Context, jobType jobModel.JobType, payload jobModel.JobPayload) jobModel.Job {
	return jobModel.Job{
		Id:          utils.GetNewUUID(),
		TraceId:     logger_i.TraceID(ctx),
		JobType:     jobType,
		JobPayload:  payload,
		CurrentStep: jobModel.UserQueryInit,
	}
}

// EnsureChat returns the chat id to use for a request. An empty id gets a
// fresh UUID; an unknown id gets an empty memory under that id.
func (s *Service) EnsureChat(ctx context.Context, chatId string) (string, error) {
	if chatId == "" {
		chatId = utils.GetNewUUID()
	} else if s.MessageStore.ValidateChatId(ctx, chatId) {
		return chatId, nil
	}

	s.logger.WithTrace(ctx).Debug("Creating new chat", "chatId", chatId)
	if err := s.MessageStore.InitNewChat(ctx, chatId); err != nil {
		return "", err
	}
	return chatId, nil
}

// Chat runs one question through the conversational retrieval chain.
func (s *Service) Chat(ctx context.Context, chatId string, question string) (jobModel.Job, error) {
	if err := ValidateText("question", question); err != nil {
		return jobModel.Job{}, err
	}
	chatId, err := s.EnsureChat(ctx, chatId)
	if err != nil {
		return jobModel.Job{}, err
	}

	j := newJob(ctx, jobModel.JobTypeChat, jobModel.JobPayload{Question: question})
	j.ChatId = chatId
	return s.Run(ctx, j)
}

func (s *Service) Summarize(ctx context.Context, topic string) (jobModel.Job, error) {
	if err := ValidateText("topic", topic); err != nil {
		return jobModel.Job{}, err
	}
	return s.Run(ctx, newJob(ctx, jobModel.JobTypeSummarize, jobModel.JobPayload{Topic: topic}))
}

func (s *Service) FollowUp(ctx context.Context, summary string, question string) (jobModel.Job, error) {
	if err := ValidateText("question", question); err != nil {
		return jobModel.Job{}, err
	}
	return s.Run(ctx, newJob(ctx, jobModel.JobTypeFollowup, jobModel.JobPayload{Summary: summary, Question: question}))
}

func (s *Service) History(ctx context.Context, chatId string) ([]commonModels.ChatTurn, error) {
	if chatId == "" || !s.MessageStore.ValidateChatId(ctx, chatId) {
		return nil, ErrChatNotFound
	}
	return s.MessageStore.GetTranscript(ctx, chatId)
}

func (s *Service) ForgetChat(ctx context.Context, chatId string) error {
	if chatId == "" || !s.MessageStore.ValidateChatId(ctx, chatId) {
		return ErrChatNotFound
	}
	return s.MessageStore.DeleteChat(ctx, chatId)
}
