package qdrantDB

import (
	"context"
	"time"

	"github.com/akolanti/newschat/internal/config"
	"github.com/akolanti/newschat/internal/domain/commonModels"
	"github.com/qdrant/go-client/qdrant"
)

func (db *ClientHolder) GetCachedAnswer(ctx context.Context, queryVector []float32) (commonModels.CachedAnswer, bool, error) {
	log := logger.WithTrace(ctx)

	searchResult, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: db.cacheCollection,
		Query:          qdrant.NewQuery(queryVector...),
		Limit:          qdrant.PtrOf(uint64(1)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		log.Error("Cache query failed", "error", err)
		return commonModels.CachedAnswer{}, false, err
	}

	cached, ok := cacheHit(searchResult)
	if ok {
		log.Info("semantic cache hit", "score", cached.Score)
	}
	return cached, ok, nil
}

func cacheHit(points []*qdrant.ScoredPoint) (commonModels.CachedAnswer, bool) {
	if len(points) == 0 || points[0] == nil || points[0].Score < config.CacheSimilarityCutoff {
		return commonModels.CachedAnswer{}, false
	}

	hit := points[0]
	answer := hit.Payload["answer"].GetStringValue()
	if answer == "" {
		return commonModels.CachedAnswer{}, false
	}

	var sources []string
	for _, v := range hit.Payload["sources"].GetListValue().GetValues() {
		sources = append(sources, v.GetStringValue())
	}
	return commonModels.CachedAnswer{Answer: answer, Sources: sources, Score: hit.Score}, true
}

func (db *ClientHolder) SaveToCache(ctx context.Context, id string, vector []float32, answer commonModels.CachedAnswer) error {
	log := logger.WithTrace(ctx)

	sources := make([]any, 0, len(answer.Sources))
	for _, s := range answer.Sources {
		sources = append(sources, s)
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: db.cacheCollection,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewID(id),
				Vectors: qdrant.NewVectors(vector...),
				Payload: qdrant.NewValueMap(map[string]any{
					"answer":    answer.Answer,
					"sources":   sources,
					"timestamp": time.Now().Unix(),
				}),
			},
		},
	})
	if err != nil {
		log.Error("Saving answer to cache failed", "error", err)
	}
	return err
}
