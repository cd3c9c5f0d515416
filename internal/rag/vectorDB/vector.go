package vectorDB

import (
	"context"

	"github.com/akolanti/newschat/internal/domain/commonModels"
)

type DataProcessor interface {
	// Search returns at most k corpus chunks ordered by descending similarity.
	Search(ctx context.Context, vectorVal []float32, k int) ([]commonModels.RetrievedChunk, error)
	GetCachedAnswer(ctx context.Context, queryVector []float32) (commonModels.CachedAnswer, bool, error)
	SaveToCache(ctx context.Context, id string, vector []float32, answer commonModels.CachedAnswer) error

	// CreateCollection Ingest document call
	CreateCollection(ctx context.Context, collectionName string) error
	UpsertBatch(ctx context.Context, collectionName string, chunks []commonModels.DocChunk, vectors [][]float32) error
}
