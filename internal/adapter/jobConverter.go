package adapter

import (
	"time"

	"github.com/akolanti/newschat/internal/api"
	"github.com/akolanti/newschat/internal/domain/commonModels"
	"github.com/akolanti/newschat/internal/domain/jobModel"
)

func ToAPIResponse(job jobModel.Job) api.JobResponse {
	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{
		Status:              string(job.Status),
		CurrentStep:         string(job.CurrentStep),
		RAGExternalResponse: ToRAGExternalStatus(job.JobPayload),
	}

	return api.JobResponse{
		Id:        job.Id,
		ChatId:    job.ChatId,
		JobType:   string(job.JobType),
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result:    result,
	}
}

func ToRAGExternalStatus(ragData jobModel.JobPayload) *api.RAGResponse {
	if ragData.Answer == "" && ragData.Summary == "" && len(ragData.Sources) == 0 {
		return nil
	}

	return &api.RAGResponse{
		Question: ragData.Question,
		Answer:   ragData.Answer,
		Summary:  ragData.Summary,
		Sources:  ragData.Sources,
	}
}

func ToChatResponse(job jobModel.Job) api.ChatResponse {
	sources := job.JobPayload.Sources
	if sources == nil {
		sources = []string{}
	}
	return api.ChatResponse{
		Response: job.JobPayload.Answer,
		ChatId:   job.ChatId,
		Sources:  sources,
	}
}

func ToHistoryResponse(chatId string, turns []commonModels.ChatTurn) api.HistoryResponse {
	out := make([]api.ChatTurn, 0, len(turns))
	for _, t := range turns {
		out = append(out, api.ChatTurn{
			Question:  t.Question,
			Answer:    t.Answer,
			Sources:   t.Sources,
			CreatedAt: t.CreatedAt,
		})
	}
	return api.HistoryResponse{ChatId: chatId, Turns: out}
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Result: api.Result{
			Status: string(api.JobStatusError),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   code == 429 || code >= 500,
		},
	}
}
