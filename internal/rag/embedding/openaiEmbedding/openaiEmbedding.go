package openaiEmbedding

import (
	"context"
	"fmt"

	"github.com/akolanti/newschat/internal/config"
	"github.com/akolanti/newschat/internal/customHttpClient"
	"github.com/akolanti/newschat/internal/rag/embedding"
	"github.com/akolanti/newschat/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type client struct {
	api    openai.Client
	model  string
	logger *logger_i.Logger
}

func NewOpenAIEmbedder(apiKey string, modelName string, opts ...option.RequestOption) embedding.Embedder {
	reqOpts := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(customHttpClient.NewPooledClient(config.OutboundTimeout)),
		option.WithMaxRetries(config.RetryAttempts - 1),
	}, opts...)

	return &client{
		api:    openai.NewClient(reqOpts...),
		model:  modelName,
		logger: logger_i.NewLogger("openai_embedding"),
	}
}

func (c *client) Model() string {
	return c.model
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	res, err := c.embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return res[0], nil
}

func (c *client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	return c.embed(ctx, chunks)
}

func (c *client) embed(ctx context.Context, inputs []string) ([][]float32, error) {
	log := c.logger.WithTrace(ctx)

	resp, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(c.model),
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: inputs},
	})
	if err != nil {
		log.Error("Error getting Embeddings from OpenAI", "error", err)
		return nil, fmt.Errorf("openai embedding: %w", err)
	}
	if len(resp.Data) != len(inputs) {
		log.Error("Embedding count mismatch", "inputs", len(inputs), "vectors", len(resp.Data))
		return nil, embedding.ErrNoEmbedding
	}

	// the API may return items out of order; Index is authoritative
	out := make([][]float32, len(inputs))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(out) {
			return nil, fmt.Errorf("openai embedding: index %d out of range", d.Index)
		}
		out[d.Index] = toFloat32(d.Embedding)
	}
	for _, v := range out {
		if len(v) == 0 {
			return nil, embedding.ErrNoEmbedding
		}
	}
	return out, nil
}

func toFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}
