package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/akolanti/newschat/internal/api"
	"github.com/akolanti/newschat/internal/domain/commonModels"
	"github.com/akolanti/newschat/internal/domain/jobModel"
	"github.com/akolanti/newschat/internal/handlers"
	"github.com/akolanti/newschat/internal/job"
	"github.com/go-chi/chi/v5"
)

type MockRunner struct {
	OnChat       func(ctx context.Context, chatId string, question string) (jobModel.Job, error)
	OnSummarize  func(ctx context.Context, topic string) (jobModel.Job, error)
	OnFollowUp   func(ctx context.Context, summary string, question string) (jobModel.Job, error)
	OnGetJob     func(ctx context.Context, id string) (jobModel.Job, bool)
	OnHistory    func(ctx context.Context, chatId string) ([]commonModels.ChatTurn, error)
	OnForgetChat func(ctx context.Context, chatId string) error
}

func (m *MockRunner) Chat(ctx context.Context, chatId string, question string) (jobModel.Job, error) {
	return m.OnChat(ctx, chatId, question)
}
func (m *MockRunner) Summarize(ctx context.Context, topic string) (jobModel.Job, error) {
	return m.OnSummarize(ctx, topic)
}
func (m *MockRunner) FollowUp(ctx context.Context, summary string, question string) (jobModel.Job, error) {
	return m.OnFollowUp(ctx, summary, question)
}
func (m *MockRunner) GetJob(ctx context.Context, id string) (jobModel.Job, bool) {
	return m.OnGetJob(ctx, id)
}
func (m *MockRunner) History(ctx context.Context, chatId string) ([]commonModels.ChatTurn, error) {
	return m.OnHistory(ctx, chatId)
}
func (m *MockRunner) ForgetChat(ctx context.Context, chatId string) error {
	return m.OnForgetChat(ctx, chatId)
}

func newRouter(m *MockRunner) http.Handler {
	handlers.InitJobHandler(m)
	r := chi.NewRouter()
	r.Post("/chat", handlers.ChatHandler)
	r.Post("/summarize", handlers.SummarizeHandler)
	r.Post("/followup", handlers.FollowupHandler)
	r.Get("/status/{id}", handlers.GetStatusHandler)
	r.Get("/chat/{chatId}/history", handlers.HistoryHandler)
	r.Delete("/chat/{chatId}", handlers.DeleteChatHandler)
	return r
}

func do(h http.Handler, method string, path string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestChatHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		onChat     func(ctx context.Context, chatId string, question string) (jobModel.Job, error)
		wantStatus int
		wantJobId  string
	}{
		{
			name: "answer",
			body: `{"chat_id":"c1","question":"What did Apple release?"}`,
			onChat: func(ctx context.Context, chatId string, question string) (jobModel.Job, error) {
				return jobModel.Job{
					Id:         "j1",
					ChatId:     chatId,
					Status:     jobModel.JobStatusComplete,
					JobPayload: jobModel.JobPayload{Question: question, Answer: "AR glasses", Sources: []string{"seed-1"}},
				}, nil
			},
			wantStatus: http.StatusOK,
			wantJobId:  "j1",
		},
		{name: "blank question", body: `{"question":"   "}`, wantStatus: http.StatusBadRequest},
		{name: "too long", body: `{"question":"` + strings.Repeat("a", 4001) + `"}`, wantStatus: http.StatusBadRequest},
		{name: "malformed", body: `{"question":`, wantStatus: http.StatusBadRequest},
		{
			name: "chain failure",
			body: `{"question":"q"}`,
			onChat: func(ctx context.Context, chatId string, question string) (jobModel.Job, error) {
				return jobModel.Job{
					Id:     "j2",
					Status: jobModel.JobStatusError,
					Error:  jobModel.JobError{Code: 500, Message: "LLM_GENERATION_FAILURE", Retry: true},
				}, nil
			},
			wantStatus: http.StatusInternalServerError,
			wantJobId:  "j2",
		},
		{
			name: "timeout",
			body: `{"question":"q"}`,
			onChat: func(ctx context.Context, chatId string, question string) (jobModel.Job, error) {
				return jobModel.Job{Id: "j3"}, errors.Join(job.ErrNotCompleted, context.DeadlineExceeded)
			},
			wantStatus: http.StatusGatewayTimeout,
			wantJobId:  "j3",
		},
		{
			name: "queue full",
			body: `{"question":"q"}`,
			onChat: func(ctx context.Context, chatId string, question string) (jobModel.Job, error) {
				return jobModel.Job{}, errors.Join(job.ErrQueueFull, context.DeadlineExceeded)
			},
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name: "memory unavailable",
			body: `{"question":"q"}`,
			onChat: func(ctx context.Context, chatId string, question string) (jobModel.Job, error) {
				return jobModel.Job{}, errors.New("redis down")
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			m := &MockRunner{OnChat: func(ctx context.Context, chatId string, question string) (jobModel.Job, error) {
				called = true
				if tt.onChat == nil {
					return jobModel.Job{}, nil
				}
				return tt.onChat(ctx, chatId, question)
			}}

			rec := do(newRouter(m), http.MethodPost, "/chat", tt.body)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if got := rec.Header().Get("X-Job-Id"); got != tt.wantJobId {
				t.Errorf("X-Job-Id = %q, want %q", got, tt.wantJobId)
			}
			if tt.onChat == nil && called {
				t.Error("invalid request reached the job service")
			}
		})
	}
}

func TestChatHandlerResponseBody(t *testing.T) {
	m := &MockRunner{OnChat: func(ctx context.Context, chatId string, question string) (jobModel.Job, error) {
		return jobModel.Job{
			Id:         "j1",
			ChatId:     "generated",
			Status:     jobModel.JobStatusComplete,
			JobPayload: jobModel.JobPayload{Answer: "AR glasses", Sources: []string{"seed-1"}},
		}, nil
	}}

	rec := do(newRouter(m), http.MethodPost, "/chat", `{"question":"What did Apple release?"}`)

	var res api.ChatResponse
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Response != "AR glasses" || res.ChatId != "generated" || len(res.Sources) != 1 {
		t.Errorf("response = %+v", res)
	}
}

func TestSummarizeHandler(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		result      jobModel.Job
		err         error
		wantStatus  int
		wantSummary string
	}{
		{
			name:        "summary",
			body:        `{"topic":"ai"}`,
			result:      jobModel.Job{Id: "j", Status: jobModel.JobStatusComplete, JobPayload: jobModel.JobPayload{Summary: "- point"}},
			wantStatus:  http.StatusOK,
			wantSummary: "- point",
		},
		{
			name:        "job failed",
			body:        `{"topic":"ai"}`,
			result:      jobModel.Job{Id: "j", Status: jobModel.JobStatusError, Error: jobModel.JobError{Code: 500, Message: "Error summarizing news."}},
			wantStatus:  http.StatusInternalServerError,
			wantSummary: "Error summarizing news.",
		},
		{
			name:        "timed out",
			body:        `{"topic":"ai"}`,
			err:         job.ErrNotCompleted,
			wantStatus:  http.StatusInternalServerError,
			wantSummary: "Error summarizing news.",
		},
		{name: "blank topic", body: `{"topic":""}`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &MockRunner{OnSummarize: func(ctx context.Context, topic string) (jobModel.Job, error) {
				return tt.result, tt.err
			}}

			rec := do(newRouter(m), http.MethodPost, "/summarize", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantSummary == "" {
				return
			}
			var res api.SummarizeResponse
			_ = json.NewDecoder(rec.Body).Decode(&res)
			if res.Summary != tt.wantSummary {
				t.Errorf("summary = %q, want %q", res.Summary, tt.wantSummary)
			}
		})
	}
}

func TestFollowupHandler(t *testing.T) {
	var gotSummary, gotQuestion string
	m := &MockRunner{OnFollowUp: func(ctx context.Context, summary string, question string) (jobModel.Job, error) {
		gotSummary, gotQuestion = summary, question
		return jobModel.Job{Id: "j", Status: jobModel.JobStatusComplete, JobPayload: jobModel.JobPayload{Answer: "March"}}, nil
	}}
	h := newRouter(m)

	rec := do(h, http.MethodPost, "/followup", `{"summary":"- glasses","question":"When?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var res api.FollowupResponse
	_ = json.NewDecoder(rec.Body).Decode(&res)
	if res.Answer != "March" || gotSummary != "- glasses" || gotQuestion != "When?" {
		t.Errorf("answer %q, summary %q, question %q", res.Answer, gotSummary, gotQuestion)
	}

	if rec := do(h, http.MethodPost, "/followup", `{"summary":"s"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("missing question status = %d", rec.Code)
	}

	m.OnFollowUp = func(ctx context.Context, summary string, question string) (jobModel.Job, error) {
		return jobModel.Job{Status: jobModel.JobStatusError}, nil
	}
	rec = do(h, http.MethodPost, "/followup", `{"question":"q"}`)
	_ = json.NewDecoder(rec.Body).Decode(&res)
	if rec.Code != http.StatusInternalServerError || res.Answer != "Error generating answer." {
		t.Errorf("failure = %d %q", rec.Code, res.Answer)
	}
}

func TestGetStatusHandler(t *testing.T) {
	m := &MockRunner{OnGetJob: func(ctx context.Context, id string) (jobModel.Job, bool) {
		if id == "known" {
			return jobModel.Job{Id: id, Status: jobModel.JobStatusRunning, JobType: jobModel.JobTypeChat}, true
		}
		return jobModel.Job{}, false
	}}
	h := newRouter(m)

	rec := do(h, http.MethodGet, "/status/known", "")
	var res api.JobResponse
	_ = json.NewDecoder(rec.Body).Decode(&res)
	if rec.Code != http.StatusOK || res.Result.Status != "RUNNING" || res.Error != nil {
		t.Errorf("known job = %d %+v", rec.Code, res)
	}

	rec = do(h, http.MethodGet, "/status/missing", "")
	res = api.JobResponse{}
	_ = json.NewDecoder(rec.Body).Decode(&res)
	if rec.Code != http.StatusNotFound || res.Error == nil || res.Error.Code != http.StatusNotFound {
		t.Errorf("missing job = %d %+v", rec.Code, res)
	}
}

func TestHistoryAndDelete(t *testing.T) {
	m := &MockRunner{
		OnHistory: func(ctx context.Context, chatId string) ([]commonModels.ChatTurn, error) {
			if chatId != "c1" {
				return nil, job.ErrChatNotFound
			}
			return []commonModels.ChatTurn{{Question: "q", Answer: "a"}}, nil
		},
		OnForgetChat: func(ctx context.Context, chatId string) error {
			if chatId != "c1" {
				return job.ErrChatNotFound
			}
			return nil
		},
	}
	h := newRouter(m)

	rec := do(h, http.MethodGet, "/chat/c1/history", "")
	var res api.HistoryResponse
	_ = json.NewDecoder(rec.Body).Decode(&res)
	if rec.Code != http.StatusOK || res.ChatId != "c1" || len(res.Turns) != 1 {
		t.Errorf("history = %d %+v", rec.Code, res)
	}
	if rec := do(h, http.MethodGet, "/chat/nope/history", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown history status = %d", rec.Code)
	}
	if rec := do(h, http.MethodDelete, "/chat/c1", ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rec.Code)
	}
	if rec := do(h, http.MethodDelete, "/chat/nope", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown delete status = %d", rec.Code)
	}
}

func TestHealthzHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	handlers.HealthzHandler(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("healthz = %d %s", rec.Code, rec.Body.String())
	}
}
