package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/akolanti/newschat/internal/adapter"
	"github.com/akolanti/newschat/internal/adapter/utils"
	"github.com/akolanti/newschat/internal/api"
	"github.com/akolanti/newschat/internal/config"
	"github.com/akolanti/newschat/internal/domain/jobModel"
	"github.com/akolanti/newschat/internal/job"
	"github.com/akolanti/newschat/internal/news"
)

const jobIdHeader = "X-Job-Id"

// HealthzHandler godoc
// @Summary      Liveness probe
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /healthz [get]
func HealthzHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ChatHandler godoc
// @Summary      Ask a question about the news corpus
// @Description  Runs the conversational retrieval chain for the session and waits for the answer. An empty chat_id starts a new session.
// @Tags         Messaging
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      api.ChatRequest   true  "Question and optional chat id"
// @Success      200      {object}  api.ChatResponse  "Answer with sources"
// @Failure      400      {object}  api.JobResponse   "Invalid request"
// @Failure      500      {object}  api.JobResponse   "Chain step failed"
// @Failure      503      {object}  api.JobResponse   "Job queue full"
// @Failure      504      {object}  api.JobResponse   "Answer not ready in time, poll /status/{id}"
// @Router       /chat [post]
func ChatHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) || !serviceReady(w) {
		return
	}
	log := logRH.WithTrace(r.Context())

	var req api.ChatRequest
	if err := decodeBody(w, r, &req); err != nil {
		log.Warn("Bad chat request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, req.ChatID, "Bad Request")
		return
	}
	if err := job.ValidateText("question", req.Question); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, req.ChatID, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), config.ChatRequestTimeout)
	defer cancel()

	result, err := handlerInstance.service.Chat(ctx, req.ChatID, req.Question)
	if result.Id != "" {
		w.Header().Set(jobIdHeader, result.Id)
	}
	if err != nil {
		writeRunError(w, r, result, err)
		return
	}
	if result.Failed() {
		writeJsonResponse(w, result.Error.Code, adapter.ToAPIResponse(result))
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToChatResponse(result))
}

// SummarizeHandler godoc
// @Summary      Summarize the latest news on a topic
// @Tags         News
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      api.SummarizeRequest   true  "Topic"
// @Success      200      {object}  api.SummarizeResponse
// @Failure      400      {object}  api.JobResponse
// @Failure      500      {object}  api.SummarizeResponse
// @Router       /summarize [post]
func SummarizeHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) || !serviceReady(w) {
		return
	}

	var req api.SummarizeRequest
	if err := decodeBody(w, r, &req); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request")
		return
	}
	if err := job.ValidateText("topic", req.Topic); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), config.ChatRequestTimeout)
	defer cancel()

	result, err := handlerInstance.service.Summarize(ctx, req.Topic)
	if result.Id != "" {
		w.Header().Set(jobIdHeader, result.Id)
	}
	if err != nil || result.Failed() {
		logRH.WithTrace(r.Context()).Error("Summarize failed", "error", err, "jobError", result.Error.Message)
		writeJsonResponse(w, http.StatusInternalServerError, api.SummarizeResponse{Summary: news.SummarizeFailed})
		return
	}

	writeJsonResponse(w, http.StatusOK, api.SummarizeResponse{Summary: result.JobPayload.Summary})
}

// FollowupHandler godoc
// @Summary      Answer a follow-up question with a web search
// @Tags         News
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      api.FollowupRequest   true  "Summary and question"
// @Success      200      {object}  api.FollowupResponse
// @Failure      400      {object}  api.JobResponse
// @Failure      500      {object}  api.FollowupResponse
// @Router       /followup [post]
func FollowupHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) || !serviceReady(w) {
		return
	}

	var req api.FollowupRequest
	if err := decodeBody(w, r, &req); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request")
		return
	}
	if err := job.ValidateText("question", req.Question); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), config.ChatRequestTimeout)
	defer cancel()

	result, err := handlerInstance.service.FollowUp(ctx, req.Summary, req.Question)
	if result.Id != "" {
		w.Header().Set(jobIdHeader, result.Id)
	}
	if err != nil || result.Failed() {
		logRH.WithTrace(r.Context()).Error("Follow up failed", "error", err, "jobError", result.Error.Message)
		writeJsonResponse(w, http.StatusInternalServerError, api.FollowupResponse{Answer: news.FollowupFailed})
		return
	}

	writeJsonResponse(w, http.StatusOK, api.FollowupResponse{Answer: result.JobPayload.Answer})
}

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current status of a specific job using its ID.
// @Tags         Job Status
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  api.JobResponse   "Successful retrieval of job status"
// @Failure      404  {object}  api.JobResponse   "Job not found"
// @Router       /status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) || !serviceReady(w) {
		return
	}

	idString := utils.GetChiURLParam(r, "id")
	result, isFound := getJobStatus(r.Context(), idString)
	if !isFound {
		WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
}

// HistoryHandler godoc
// @Summary      Get the turns of a chat session
// @Tags         Messaging
// @Produce      json
// @Security     BearerAuth
// @Param        chatId  path      string  true  "Chat ID"
// @Success      200     {object}  api.HistoryResponse
// @Failure      404     {object}  api.JobResponse
// @Router       /chat/{chatId}/history [get]
func HistoryHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) || !serviceReady(w) {
		return
	}

	chatId := utils.GetChiURLParam(r, "chatId")
	turns, err := handlerInstance.service.History(r.Context(), chatId)
	if errors.Is(err, job.ErrChatNotFound) {
		WriteErrorResponse(w, http.StatusNotFound, chatId, "Chat not found")
		return
	}
	if err != nil {
		logRH.WithTrace(r.Context()).Error("Failed to load history", "chatId", chatId, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, chatId, "Could not load history")
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToHistoryResponse(chatId, turns))
}

// DeleteChatHandler godoc
// @Summary      Forget a chat session
// @Tags         Messaging
// @Security     BearerAuth
// @Param        chatId  path  string  true  "Chat ID"
// @Success      204
// @Failure      404  {object}  api.JobResponse
// @Router       /chat/{chatId} [delete]
func DeleteChatHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) || !serviceReady(w) {
		return
	}

	chatId := utils.GetChiURLParam(r, "chatId")
	err := handlerInstance.service.ForgetChat(r.Context(), chatId)
	if errors.Is(err, job.ErrChatNotFound) {
		WriteErrorResponse(w, http.StatusNotFound, chatId, "Chat not found")
		return
	}
	if err != nil {
		logRH.WithTrace(r.Context()).Error("Failed to delete chat", "chatId", chatId, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, chatId, "Could not delete chat")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeRunError maps a job that never finished onto a response.
func writeRunError(w http.ResponseWriter, r *http.Request, result jobModel.Job, err error) {
	log := logRH.WithTrace(r.Context())
	switch {
	case r.Context().Err() != nil:
		log.Warn("Client went away before the answer", "jobId", result.Id)
	case errors.Is(err, job.ErrInvalidInput):
		WriteErrorResponse(w, http.StatusBadRequest, "", err.Error())
	case errors.Is(err, job.ErrQueueFull):
		log.Warn("Job queue full", "error", err)
		WriteErrorResponse(w, http.StatusServiceUnavailable, "", "Server busy, retry later")
	case errors.Is(err, job.ErrNotCompleted), errors.Is(err, context.DeadlineExceeded):
		log.Warn("Chat job timed out", "jobId", result.Id)
		WriteErrorResponse(w, http.StatusGatewayTimeout, result.Id, "Answer not ready, poll /status/"+result.Id)
	default:
		log.Error("Chat request failed", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, result.ChatId, "Could not start chat")
	}
}
