package jobModel

import (
	"context"
	"time"

	"github.com/akolanti/newschat/internal/domain/commonModels"
)

type JobStatus string
type InternalStatus string

type JobType string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"

	UserQueryInit    InternalStatus = "Init"
	MemoryCall       InternalStatus = "Memory"
	CondenseCall     InternalStatus = "Condense"
	CacheCall        InternalStatus = "CacheCall"
	RAGCall          InternalStatus = "RAG"
	LLMCall          InternalStatus = "LLM"
	VectorDBCall     InternalStatus = "VectorDB"
	EmbeddingAPICall InternalStatus = "EmbeddingAPI"
	NewsAPICall      InternalStatus = "NewsAPI"
	WebSearchCall    InternalStatus = "WebSearch"
	Error            InternalStatus = "Error"

	Complete InternalStatus = "Complete"

	JobTypeChat      JobType = "Chat"
	JobTypeSummarize JobType = "Summarize"
	JobTypeFollowup  JobType = "Followup"
)

type Job struct {
	Id          string         `json:"id"`
	ChatId      string         `json:"chat_id,omitempty"`
	TraceId     string         `json:"trace_id"`
	JobType     JobType        `json:"job_type"`
	JobPayload  JobPayload     `json:"job_payload"`
	Error       JobError       `json:"error,omitempty"`
	CreatedTime time.Time      `json:"created_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      JobStatus      `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`

	// done receives the finished job exactly once; never persisted
	done chan Job
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

type JobPayload struct {
	Question string   `json:"question,omitempty"`
	Answer   string   `json:"answer,omitempty"`
	Sources  []string `json:"sources,omitempty"`

	Topic   string `json:"topic,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// Failed reports whether the job ended with an error.
func (j Job) Failed() bool {
	return j.Status == JobStatusError
}

// WithDone attaches a buffered completion channel to the job and returns it.
func (j Job) WithDone() (Job, <-chan Job) {
	j.done = make(chan Job, 1)
	return j, j.done
}

// Finish publishes the finished job to whoever is waiting on it.
func (j Job) Finish() {
	if j.done == nil {
		return
	}
	select {
	case j.done <- j:
	default:
	}
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}

type MessageStore interface {
	ValidateChatId(ctx context.Context, id string) bool
	TrySaveChat(ctx context.Context, id string, turn commonModels.ChatTurn) error
	InitNewChat(ctx context.Context, id string) error
	GetMessageHistory(ctx context.Context, chatId string) ([]commonModels.ChatTurn, error)
	// GetTranscript returns every stored turn, ignoring the memory window.
	GetTranscript(ctx context.Context, chatId string) ([]commonModels.ChatTurn, error)
	DeleteChat(ctx context.Context, chatId string) error
}
