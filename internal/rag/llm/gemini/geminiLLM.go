package gemini

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/akolanti/newschat/internal/config"
	"github.com/akolanti/newschat/internal/rag/llm"
	"github.com/akolanti/newschat/pkg/logger_i"
	"google.golang.org/genai"
)

type llmClient struct {
	client    *genai.Client
	modelName string
}

var logger *logger_i.Logger
var geminiClient *llmClient
var once sync.Once

// GetGeminiClient returns nil when the genai client cannot be created.
func GetGeminiClient(ctx context.Context, apikey string, modelName string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_gemini")
		newGeminiClient(ctx, apikey, modelName)
	})

	if geminiClient == nil {
		return nil
	}
	return &llmClient{client: geminiClient.client, modelName: geminiClient.modelName}
}

func newGeminiClient(ctx context.Context, apikey string, modelName string) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		logger.Error("Error creating Gemini client", "error", err)
		return
	}
	geminiClient = &llmClient{client: c, modelName: modelName}
	logger.Info("Gemini client created", "model", modelName)
}

func (c *llmClient) Name() string {
	return config.ProviderGemini
}

func (c *llmClient) Complete(ctx context.Context, prompt llm.Prompt) (string, error) {
	log := logger.WithTrace(ctx)

	result, err := c.client.Models.GenerateContent(ctx, c.modelName, genai.Text(prompt.User), contentConfig(prompt))
	if err != nil {
		log.Error("Gemini generation failed", "error", err)
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	out := strings.TrimSpace(result.Text())
	if out == "" {
		return "", llm.ErrEmptyOutput
	}
	return out, nil
}

func contentConfig(prompt llm.Prompt) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if prompt.System != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: prompt.System}},
		}
	}
	if prompt.Temperature != nil {
		cfg.Temperature = genai.Ptr(float32(*prompt.Temperature))
	}
	if prompt.TopP != nil {
		cfg.TopP = genai.Ptr(float32(*prompt.TopP))
	}
	if prompt.TopK > 0 {
		cfg.TopK = genai.Ptr(float32(prompt.TopK))
	}
	if prompt.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(prompt.MaxTokens)
	}
	if len(prompt.Stop) > 0 {
		cfg.StopSequences = prompt.Stop
	}
	return cfg
}
