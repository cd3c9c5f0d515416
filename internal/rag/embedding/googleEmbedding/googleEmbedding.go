package googleEmbedding

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/akolanti/newschat/internal/config"
	"github.com/akolanti/newschat/internal/rag/embedding"
	"github.com/akolanti/newschat/pkg/logger_i"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	taskQuery    = "RETRIEVAL_QUERY"
	taskDocument = "RETRIEVAL_DOCUMENT"
)

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client
var dimension int32 = config.EmbeddingOutputDimensionality

// rateLimitBackoff is a var so tests do not sleep
var rateLimitBackoff = 5 * time.Second

type client struct {
	genAi *genai.Client
	model string
}

func newGoogleEmbedder(ctx context.Context, modelName string, apikey string) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		logger.Error("Error creating Google Embedding client", "error", err)
		return
	}
	embeddingClient = &client{
		genAi: c,
		model: modelName,
	}
	logger.Info("Google Embedding client created", "model", modelName)
}

// GetGoogleEmbeddingClient returns nil when the genai client cannot be created.
func GetGoogleEmbeddingClient(ctx context.Context, modelName string, apikey string) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("google_embedding")
		newGoogleEmbedder(ctx, modelName, apikey)
	})

	//if init still fails
	if embeddingClient == nil {
		return nil
	}
	return &client{genAi: embeddingClient.genAi, model: embeddingClient.model}
}

func (c *client) Model() string {
	return c.model
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	res, err := c.embedWithRetry(ctx, getContent([]string{query}), taskQuery)
	if err != nil {
		return nil, err
	}
	return res[0], nil
}

func (c *client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	log := logger.WithTrace(ctx).With("chunks", len(chunks))
	res, err := c.embedWithRetry(ctx, getContent(chunks), taskDocument)
	if err != nil {
		return nil, err
	}
	if len(res) != len(chunks) {
		log.Error("Embedding count mismatch", "vectors", len(res))
		return nil, fmt.Errorf("google embedding: got %d vectors for %d chunks", len(res), len(chunks))
	}
	return res, nil
}

// embedWithRetry retries once after a rate limit
func (c *client) embedWithRetry(ctx context.Context, content []*genai.Content, task string) ([][]float32, error) {
	log := logger.WithTrace(ctx)

	res, err := c.doCall(ctx, content, task)
	if err != nil && doRetry(err, log) {
		log.Debug("Retrying after rate limit", "backoff", rateLimitBackoff)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(rateLimitBackoff):
		}
		res, err = c.doCall(ctx, content, task)
	}
	if err != nil {
		log.Error("Error getting Embeddings from Google", "error", err)
		return nil, fmt.Errorf("google embedding: %w", err)
	}
	return toVectors(res)
}

func (c *client) doCall(ctx context.Context, content []*genai.Content, task string) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, content, &genai.EmbedContentConfig{OutputDimensionality: &dimension, TaskType: task})
}

func getContent(chunks []string) []*genai.Content {
	contentsToSend := make([]*genai.Content, 0, len(chunks))

	for _, chunk := range chunks {
		contentsToSend = append(contentsToSend, &genai.Content{
			Parts: []*genai.Part{{Text: chunk}},
		})
	}
	return contentsToSend
}

func toVectors(res *genai.EmbedContentResponse) ([][]float32, error) {
	if res == nil || len(res.Embeddings) == 0 {
		return nil, embedding.ErrNoEmbedding
	}
	out := make([][]float32, 0, len(res.Embeddings))
	for _, e := range res.Embeddings {
		if e == nil || len(e.Values) == 0 {
			return nil, embedding.ErrNoEmbedding
		}
		out = append(out, e.Values)
	}
	return out, nil
}

func doRetry(err error, log *logger_i.Logger) bool {
	if s, ok := status.FromError(err); ok && s.Code() == codes.ResourceExhausted {
		log.Warn("Rate limit hit", "error", err)
		return true
	}
	// the Gemini API backend reports over REST rather than grpc
	if err != nil && strings.Contains(err.Error(), "RESOURCE_EXHAUSTED") {
		log.Warn("Rate limit hit", "error", err)
		return true
	}
	return false
}
