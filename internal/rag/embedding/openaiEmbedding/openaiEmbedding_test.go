package openaiEmbedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/akolanti/newschat/internal/rag/embedding"
	"github.com/openai/openai-go/option"
)

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

func embeddingServer(t *testing.T, drop bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		data := make([]map[string]any, 0, len(req.Input))
		// answer in reverse order to exercise index handling
		for i := len(req.Input) - 1; i >= 0; i-- {
			if drop && i == 0 {
				continue
			}
			data = append(data, map[string]any{
				"object":    "embedding",
				"index":     i,
				"embedding": []float64{float64(i), 0.5},
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"model":  req.Model,
			"data":   data,
			"usage":  map[string]any{"prompt_tokens": 1, "total_tokens": 1},
		})
	}))
}

func TestBatchEmbedding(t *testing.T) {
	srv := embeddingServer(t, false)
	defer srv.Close()

	e := NewOpenAIEmbedder("sk-test", "text-embedding-ada-002", option.WithBaseURL(srv.URL))
	vectors, err := e.BatchEmbedding(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("BatchEmbedding failed: %v", err)
	}
	if len(vectors) != 3 {
		t.Fatalf("expected 3 vectors, got %d", len(vectors))
	}
	for i, v := range vectors {
		if v[0] != float32(i) {
			t.Errorf("vector %d out of order: %v", i, v)
		}
	}
	if e.Model() != "text-embedding-ada-002" {
		t.Errorf("Model() = %s", e.Model())
	}
}

func TestGetEmbedding_Missing(t *testing.T) {
	srv := embeddingServer(t, true)
	defer srv.Close()

	e := NewOpenAIEmbedder("sk-test", "text-embedding-ada-002", option.WithBaseURL(srv.URL))
	if _, err := e.GetEmbedding(context.Background(), "q"); !errors.Is(err, embedding.ErrNoEmbedding) {
		t.Errorf("err = %v, want ErrNoEmbedding", err)
	}
}
