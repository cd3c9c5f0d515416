package huggingface

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/akolanti/newschat/internal/config"
	"github.com/akolanti/newschat/internal/customHttpClient"
	"github.com/akolanti/newschat/internal/rag/llm"
)

type inferenceRequest struct {
	Inputs     string         `json:"inputs"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

type generation struct {
	SummaryText   string `json:"summary_text"`
	GeneratedText string `json:"generated_text"`
}

type llmClient struct {
	connector *customHttpClient.Connector
	endpoint  string
}

// NewHuggingFaceClient talks to the hosted inference API for a single model.
func NewHuggingFaceClient(apiKey string, baseURL string, modelName string) llm.Provider {
	return &llmClient{
		connector: customHttpClient.NewConnector(customHttpClient.ConnectorConfig{
			Name:    "huggingface",
			BaseURL: baseURL,
			Headers: map[string]string{"Authorization": "Bearer " + apiKey},
		}),
		endpoint: "/models/" + modelName,
	}
}

func (c *llmClient) Name() string {
	return config.ProviderHuggingFace
}

func (c *llmClient) Complete(ctx context.Context, prompt llm.Prompt) (string, error) {
	input := prompt.User
	if prompt.System != "" {
		input = prompt.System + "\n\n" + prompt.User
	}

	req := inferenceRequest{Inputs: input}
	if prompt.MaxTokens > 0 {
		req.Parameters = map[string]any{"max_length": prompt.MaxTokens}
	}

	var raw json.RawMessage
	if err := c.connector.DoRequest(ctx, http.MethodPost, c.endpoint, nil, req, &raw); err != nil {
		return "", fmt.Errorf("huggingface inference: %w", err)
	}

	out := parseGeneration(raw)
	if out == "" {
		return "", llm.ErrEmptyOutput
	}
	return out, nil
}

// summarization models answer with a list, text generation sometimes with an object
func parseGeneration(raw json.RawMessage) string {
	var list []generation
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		if s := strings.TrimSpace(list[0].SummaryText); s != "" {
			return s
		}
		return strings.TrimSpace(list[0].GeneratedText)
	}
	var single generation
	if err := json.Unmarshal(raw, &single); err == nil {
		if s := strings.TrimSpace(single.SummaryText); s != "" {
			return s
		}
		return strings.TrimSpace(single.GeneratedText)
	}
	return ""
}
