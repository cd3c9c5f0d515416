package together

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/akolanti/newschat/internal/config"
	"github.com/akolanti/newschat/internal/customHttpClient"
	"github.com/akolanti/newschat/internal/rag/llm"
	"github.com/akolanti/newschat/pkg/logger_i"
)

const inferenceEndpoint = "/inference"

type inferenceRequest struct {
	Model       string   `json:"model"`
	Prompt      string   `json:"prompt"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	TopK        int      `json:"top_k,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

// the endpoint has answered in both shapes over time
type inferenceResponse struct {
	Output  any `json:"output"`
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
}

type llmClient struct {
	connector *customHttpClient.Connector
	modelName string
	logger    *logger_i.Logger
}

func NewTogetherClient(apiKey string, baseURL string, modelName string) llm.Provider {
	return &llmClient{
		connector: customHttpClient.NewConnector(customHttpClient.ConnectorConfig{
			Name:    "together",
			BaseURL: baseURL,
			Headers: map[string]string{"Authorization": "Bearer " + apiKey},
		}),
		modelName: modelName,
		logger:    logger_i.NewLogger("llm_together"),
	}
}

func (c *llmClient) Name() string {
	return config.ProviderTogether
}

func (c *llmClient) Complete(ctx context.Context, prompt llm.Prompt) (string, error) {
	req := inferenceRequest{
		Model:       c.modelName,
		Prompt:      flatten(prompt),
		MaxTokens:   prompt.MaxTokens,
		Temperature: prompt.Temperature,
		TopK:        prompt.TopK,
		TopP:        prompt.TopP,
		Stop:        prompt.Stop,
	}
	if len(req.Stop) == 0 {
		req.Stop = []string{"</s>"}
	}

	var resp inferenceResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, inferenceEndpoint, nil, req, &resp); err != nil {
		return "", fmt.Errorf("together inference: %w", err)
	}

	out := resp.text()
	if out == "" {
		c.logger.WithTrace(ctx).Warn("Together returned no text", "model", c.modelName)
		return "", llm.ErrEmptyOutput
	}
	return out, nil
}

func (r inferenceResponse) text() string {
	switch v := r.Output.(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	case map[string]any:
		// {"output": {"choices": [{"text": "..."}]}}
		if choices, ok := v["choices"].([]any); ok && len(choices) > 0 {
			if first, ok := choices[0].(map[string]any); ok {
				if s, ok := first["text"].(string); ok && strings.TrimSpace(s) != "" {
					return strings.TrimSpace(s)
				}
			}
		}
	}
	if len(r.Choices) > 0 {
		return strings.TrimSpace(r.Choices[0].Text)
	}
	return ""
}

// the inference endpoint takes a single prompt string
func flatten(prompt llm.Prompt) string {
	if prompt.System == "" {
		return prompt.User
	}
	return prompt.System + "\n\n" + prompt.User
}
