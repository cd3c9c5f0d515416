package mcpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/akolanti/newschat/internal/adapter/utils"
	"github.com/akolanti/newschat/internal/config"
	"github.com/akolanti/newschat/internal/domain/jobModel"
	"github.com/akolanti/newschat/internal/job"
	"github.com/akolanti/newschat/pkg/logger_i"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	serverName    = "newschat"
	serverVersion = "v1.0.0"
)

var logger = logger_i.NewLogger("mcp")

// Runner runs tool calls through the same job path as the HTTP routes.
type Runner interface {
	Chat(ctx context.Context, chatId string, question string) (jobModel.Job, error)
	Summarize(ctx context.Context, topic string) (jobModel.Job, error)
}

type ChatInput struct {
	ChatID   string `json:"chat_id,omitempty" jsonschema:"session id, empty starts a new session"`
	Question string `json:"question" jsonschema:"question about the news corpus"`
}

type ChatOutput struct {
	Response string   `json:"response"`
	ChatID   string   `json:"chat_id"`
	Sources  []string `json:"sources"`
}

type SummarizeInput struct {
	Topic string `json:"topic" jsonschema:"news topic to summarize"`
}

type SummarizeOutput struct {
	Summary string `json:"summary"`
}

// NewServer registers the chat and summarize_news tools.
func NewServer(runner Runner) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	t := tools{runner: runner}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "chat",
		Description: "Ask a question answered from the news corpus, keeping conversation memory per chat_id.",
	}, t.chat)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "summarize_news",
		Description: "Summarize the latest English news articles on a topic as bullet points.",
	}, t.summarize)

	return server
}

// NewHandler serves the server over streamable HTTP.
func NewHandler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return server }, nil)
}

type tools struct {
	runner Runner
}

func (t tools) chat(ctx context.Context, _ *mcp.CallToolRequest, in ChatInput) (*mcp.CallToolResult, ChatOutput, error) {
	ctx = withTrace(ctx)
	if err := job.ValidateText("question", in.Question); err != nil {
		return nil, ChatOutput{}, err
	}

	result, err := t.runner.Chat(ctx, in.ChatID, in.Question)
	if err = jobErr(result, err); err != nil {
		logger.WithTrace(ctx).Warn("chat tool failed", "error", err, "jobId", result.Id)
		return nil, ChatOutput{}, err
	}

	out := ChatOutput{Response: result.JobPayload.Answer, ChatID: result.ChatId, Sources: result.JobPayload.Sources}
	if out.Sources == nil {
		out.Sources = []string{}
	}
	return textResult(out.Response), out, nil
}

func (t tools) summarize(ctx context.Context, _ *mcp.CallToolRequest, in SummarizeInput) (*mcp.CallToolResult, SummarizeOutput, error) {
	ctx = withTrace(ctx)
	if err := job.ValidateText("topic", in.Topic); err != nil {
		return nil, SummarizeOutput{}, err
	}

	result, err := t.runner.Summarize(ctx, in.Topic)
	if err = jobErr(result, err); err != nil {
		logger.WithTrace(ctx).Warn("summarize_news tool failed", "error", err, "jobId", result.Id)
		return nil, SummarizeOutput{}, err
	}

	out := SummarizeOutput{Summary: result.JobPayload.Summary}
	return textResult(out.Summary), out, nil
}

func jobErr(result jobModel.Job, err error) error {
	if err != nil {
		return err
	}
	if result.Failed() {
		return errors.New(result.Error.Message)
	}
	return nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}
}

// tool calls on a long lived session do not carry the request trace
func withTrace(ctx context.Context) context.Context {
	if logger_i.TraceID(ctx) != "" {
		return ctx
	}
	return context.WithValue(ctx, config.TRACE_ID_KEY, utils.GetNewUUID())
}
