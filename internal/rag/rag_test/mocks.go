package rag_test

import (
	"context"

	"github.com/akolanti/newschat/internal/domain/commonModels"
	"github.com/akolanti/newschat/internal/rag/llm"
)

// MockVectorDB implements vectorDB.DataProcessor
type MockVectorDB struct {
	// Control fields to simulate different behaviors
	OnSearch           func(ctx context.Context, vectorVal []float32, k int) ([]commonModels.RetrievedChunk, error)
	OnGetCachedAnswer  func(ctx context.Context, queryVector []float32) (commonModels.CachedAnswer, bool, error)
	OnSaveToCache      func(ctx context.Context, id string, vector []float32, answer commonModels.CachedAnswer) error
	OnCreateCollection func(ctx context.Context, name string) error
	OnUpsertBatch      func(ctx context.Context, name string, chunks []commonModels.DocChunk, vectors [][]float32) error
}

func (m *MockVectorDB) Search(ctx context.Context, v []float32, k int) ([]commonModels.RetrievedChunk, error) {
	if m.OnSearch != nil {
		return m.OnSearch(ctx, v, k)
	}
	return []commonModels.RetrievedChunk{{Content: "default context", DocName: "seed-1", PageNum: 1}}, nil
}

func (m *MockVectorDB) GetCachedAnswer(ctx context.Context, v []float32) (commonModels.CachedAnswer, bool, error) {
	if m.OnGetCachedAnswer != nil {
		return m.OnGetCachedAnswer(ctx, v)
	}
	return commonModels.CachedAnswer{}, false, nil
}

func (m *MockVectorDB) SaveToCache(ctx context.Context, id string, v []float32, a commonModels.CachedAnswer) error {
	if m.OnSaveToCache != nil {
		return m.OnSaveToCache(ctx, id, v, a)
	}
	return nil
}

func (m *MockVectorDB) CreateCollection(ctx context.Context, name string) error {
	if m.OnCreateCollection != nil {
		return m.OnCreateCollection(ctx, name)
	}
	return nil
}

func (m *MockVectorDB) UpsertBatch(ctx context.Context, name string, chunks []commonModels.DocChunk, vectors [][]float32) error {
	if m.OnUpsertBatch != nil {
		return m.OnUpsertBatch(ctx, name, chunks, vectors)
	}
	return nil
}

type MockEmbedder struct {
	OnGetEmbedding   func(ctx context.Context, text string) ([]float32, error)
	OnBatchEmbedding func(ctx context.Context, chunks []string) ([][]float32, error)
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, chunks)
	}
	// Return dummy vectors matching chunk size
	return make([][]float32, len(chunks)), nil
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, query)
	}
	return []float32{0.1}, nil
}

func (m *MockEmbedder) Model() string { return "mock-embedding" }

// MockLLM implements llm.Provider
type MockLLM struct {
	OnComplete func(ctx context.Context, prompt llm.Prompt) (string, error)
}

func (m *MockLLM) Complete(ctx context.Context, prompt llm.Prompt) (string, error) {
	if m.OnComplete != nil {
		return m.OnComplete(ctx, prompt)
	}
	return "mocked llm response", nil
}

func (m *MockLLM) Name() string { return "mock" }
