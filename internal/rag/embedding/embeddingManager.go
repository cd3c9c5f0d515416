package embedding

import (
	"context"
	"errors"
)

var ErrNoEmbedding = errors.New("embedding provider returned no vectors")

type Embedder interface {
	GetEmbedding(ctx context.Context, query string) ([]float32, error)
	BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error)
	// Model is stored next to every chunk so a provider switch can be detected.
	Model() string
}
