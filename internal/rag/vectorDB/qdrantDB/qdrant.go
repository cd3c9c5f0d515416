package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/akolanti/newschat/internal/config"
	"github.com/akolanti/newschat/internal/domain/commonModels"
	"github.com/akolanti/newschat/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
)

var logger *logger_i.Logger
var quadrantInstance *qdrant.Client
var once sync.Once
var dimension = uint64(config.EmbeddingOutputDimensionality)

type Options struct {
	Host string
	Port int
}

type ClientHolder struct {
	QObj             *qdrant.Client
	corpusCollection string
	cacheCollection  string
}

// GetQuadrantClient connects once and makes sure both collections exist.
// Returns nil when qdrant is unreachable.
func GetQuadrantClient(ctx context.Context, opts Options) *ClientHolder {
	once.Do(func() {
		logger = logger_i.NewLogger("qdrant")
		res := newClient(ctx, opts)
		if res != nil {
			quadrantInstance = res
			go closeQdrant(ctx, quadrantInstance)
		}
	})

	if quadrantInstance == nil {
		return nil
	}
	return &ClientHolder{
		QObj:             quadrantInstance,
		corpusCollection: config.CorpusCollectionName,
		cacheCollection:  config.SemanticCacheCollectionName,
	}
}

func newClient(ctx context.Context, opts Options) *qdrant.Client {
	host, port := opts.Host, opts.Port
	if host == "" || port == 0 {
		host = config.QdrantHost
		port = config.QdrantGrpcPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate qdrant client", "error", err)
		return nil
	}

	for _, name := range []string{config.CorpusCollectionName, config.SemanticCacheCollectionName} {
		if err := createCollection(ctx, client, name); err != nil {
			logger.Error("could not create collection", "collectionName", name, "error", err)
			_ = client.Close()
			return nil
		}
	}

	logger.Info("Qdrant connected", "host", host, "port", port)
	return client
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	if err := qi.Close(); err != nil {
		logger.Error("could not close Qdrant", "error", err)
	}
}

func (db *ClientHolder) Search(ctx context.Context, vectorFloat []float32, k int) ([]commonModels.RetrievedChunk, error) {
	log := logger.WithTrace(ctx)
	if k <= 0 {
		k = config.RetrieverTopK
	}

	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: db.corpusCollection,
		Query:          qdrant.NewQuery(vectorFloat...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		log.Error("Error querying Qdrant", "error", err)
		return nil, err
	}

	matches := toRetrievedChunks(result)
	log.Debug("Found matches", "count", len(matches))
	return matches, nil
}

func toRetrievedChunks(points []*qdrant.ScoredPoint) []commonModels.RetrievedChunk {
	matches := make([]commonModels.RetrievedChunk, 0, len(points))
	for _, hit := range points {
		if hit == nil {
			continue
		}
		// missing keys come back as nil values whose getters return zero values
		matches = append(matches, commonModels.RetrievedChunk{
			Content: hit.Payload["content"].GetStringValue(),
			DocName: hit.Payload["doc_name"].GetStringValue(),
			PageNum: int(hit.Payload["page_num"].GetIntegerValue()),
			Score:   hit.Score,
		})
	}
	return matches
}

func (db *ClientHolder) CreateCollection(ctx context.Context, collectionName string) error {
	return createCollection(ctx, db.QObj, collectionName)
}

func (db *ClientHolder) UpsertBatch(ctx context.Context, collectionName string, chunks []commonModels.DocChunk, vectors [][]float32) error {
	qdrantPoints, err := toPoints(chunks, vectors)
	if err != nil {
		return err
	}

	_, err = db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collectionName,
		Points:         qdrantPoints,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

func toPoints(chunks []commonModels.DocChunk, vectors [][]float32) ([]*qdrant.PointStruct, error) {
	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}

	qdrantPoints := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		if uint64(len(vectors[i])) != dimension {
			return nil, fmt.Errorf("chunk %s: vector has %d dimensions, collection expects %d", chunk.ChunkId, len(vectors[i]), dimension)
		}
		qdrantPoints[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(chunk.ChunkId),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"content":         chunk.Chunk,
				"page_num":        chunk.PageNum,
				"source_doc_id":   chunk.Doc.Id,
				"doc_name":        chunk.Doc.Name,
				"chunk_order":     chunk.ChunkPageOrder,
				"chunk_id":        chunk.ChunkId,
				"embedding_model": chunk.EmbeddingModel,
				"ingested_at":     chunk.Doc.LastIngestTimestamp.Unix(),
			}),
		}
	}
	return qdrantPoints, nil
}

func createCollection(ctx context.Context, client *qdrant.Client, collectionName string) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
}
