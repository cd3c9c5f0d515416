package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	ChatId    string            `json:"chat_id" example:"chat_550"`
	JobType   string            `json:"job_type,omitempty" example:"Chat"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type RAGResponse struct {
	Question string   `json:"question,omitempty"`
	Answer   string   `json:"answer,omitempty"`
	Summary  string   `json:"summary,omitempty"`
	Sources  []string `json:"sources,omitempty"`
}

type Result struct {
	Status              string       `json:"status"`
	CurrentStep         string       `json:"current_step,omitempty"`
	RAGExternalResponse *RAGResponse `json:"rag_response,omitempty"`
}

type ChatResponse struct {
	Response string   `json:"response" example:"Apple released new AR glasses with advanced tracking."`
	ChatId   string   `json:"chat_id" example:"3f1c2a9e-7d7b-4a53-9f7e-1b2c3d4e5f60"`
	Sources  []string `json:"sources"`
}

type SummarizeResponse struct {
	Summary string `json:"summary" example:"- Apple shipped AR glasses"`
}

type FollowupResponse struct {
	Answer string `json:"answer" example:"They ship in March."`
}

type ChatTurn struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Sources   []string  `json:"sources,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type HistoryResponse struct {
	ChatId string     `json:"chat_id"`
	Turns  []ChatTurn `json:"turns"`
}

// requests---------------------

type ChatRequest struct {
	ChatID   string `json:"chat_id,omitempty" example:"3f1c2a9e-7d7b-4a53-9f7e-1b2c3d4e5f60"`
	Question string `json:"question" validate:"required" example:"What did Apple release?"`
}

type SummarizeRequest struct {
	Topic string `json:"topic" validate:"required" example:"artificial intelligence"`
}

type FollowupRequest struct {
	Summary  string `json:"summary" example:"- Apple shipped AR glasses"`
	Question string `json:"question" validate:"required" example:"When do they ship?"`
}
