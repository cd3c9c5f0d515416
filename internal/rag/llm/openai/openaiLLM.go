package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/akolanti/newschat/internal/config"
	"github.com/akolanti/newschat/internal/customHttpClient"
	"github.com/akolanti/newschat/internal/rag/llm"
	"github.com/akolanti/newschat/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type llmClient struct {
	client    openai.Client
	modelName string
	logger    *logger_i.Logger
}

// NewOpenAIClient builds a chat-completions provider. Extra options (base URL, test servers) are applied last.
func NewOpenAIClient(apiKey string, modelName string, opts ...option.RequestOption) llm.Provider {
	reqOpts := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(customHttpClient.NewPooledClient(config.OutboundTimeout)),
		option.WithMaxRetries(config.RetryAttempts - 1),
	}, opts...)

	return &llmClient{
		client:    openai.NewClient(reqOpts...),
		modelName: modelName,
		logger:    logger_i.NewLogger("llm_openai"),
	}
}

func (c *llmClient) Name() string {
	return config.ProviderOpenAI
}

func (c *llmClient) Complete(ctx context.Context, prompt llm.Prompt) (string, error) {
	log := c.logger.WithTrace(ctx)

	var messages []openai.ChatCompletionMessageParamUnion
	if prompt.System != "" {
		messages = append(messages, openai.SystemMessage(prompt.System))
	}
	messages = append(messages, openai.UserMessage(prompt.User))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.modelName),
		Messages: messages,
	}
	if prompt.Temperature != nil {
		params.Temperature = openai.Float(*prompt.Temperature)
	}
	if prompt.TopP != nil {
		params.TopP = openai.Float(*prompt.TopP)
	}
	if prompt.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(prompt.MaxTokens))
	}
	if len(prompt.Stop) > 0 {
		params.Stop = openai.ChatCompletionNewParamsStopUnion{OfStringArray: prompt.Stop}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		log.Error("OpenAI completion failed", "error", err)
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", llm.ErrEmptyOutput
	}

	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", llm.ErrEmptyOutput
	}
	log.Debug("OpenAI completion", "model", c.modelName, "totalTokens", resp.Usage.TotalTokens)
	return out, nil
}
