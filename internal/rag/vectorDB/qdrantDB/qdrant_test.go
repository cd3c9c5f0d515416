package qdrantDB

import (
	"testing"
	"time"

	"github.com/akolanti/newschat/internal/domain/commonModels"
	"github.com/qdrant/go-client/qdrant"
)

func TestToRetrievedChunks(t *testing.T) {
	points := []*qdrant.ScoredPoint{
		{
			Score: 0.91,
			Payload: qdrant.NewValueMap(map[string]any{
				"content":  "Apple released new AR glasses with advanced tracking.",
				"doc_name": "seed-1",
				"page_num": 1,
			}),
		},
		nil,
		{Score: 0.5, Payload: map[string]*qdrant.Value{}},
	}

	got := toRetrievedChunks(points)
	if len(got) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(got))
	}
	if got[0].DocName != "seed-1" || got[0].PageNum != 1 || got[0].Score != 0.91 {
		t.Errorf("first chunk = %+v", got[0])
	}
	if got[1].Content != "" {
		t.Errorf("payload without keys should give empty content, got %q", got[1].Content)
	}
}

func TestCacheHit(t *testing.T) {
	payload := qdrant.NewValueMap(map[string]any{
		"answer":  "cached",
		"sources": []any{"seed-1"},
	})

	tests := []struct {
		name   string
		points []*qdrant.ScoredPoint
		want   bool
	}{
		{name: "no points", points: nil, want: false},
		{name: "below cutoff", points: []*qdrant.ScoredPoint{{Score: 0.90, Payload: payload}}, want: false},
		{name: "above cutoff", points: []*qdrant.ScoredPoint{{Score: 0.99, Payload: payload}}, want: true},
		{name: "empty answer", points: []*qdrant.ScoredPoint{{Score: 0.99, Payload: map[string]*qdrant.Value{}}}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := cacheHit(tt.points)
			if ok != tt.want {
				t.Fatalf("cacheHit ok = %v, want %v", ok, tt.want)
			}
			if ok && (got.Answer != "cached" || len(got.Sources) != 1 || got.Sources[0] != "seed-1") {
				t.Errorf("cached answer = %+v", got)
			}
		})
	}
}

func TestToPoints(t *testing.T) {
	chunk := commonModels.DocChunk{
		Doc:     commonModels.Document{Id: "doc", Name: "seed-1", LastIngestTimestamp: time.Unix(10, 0)},
		ChunkId: "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		Chunk:   "text",
	}

	if _, err := toPoints([]commonModels.DocChunk{chunk}, nil); err == nil {
		t.Error("expected count mismatch error")
	}
	if _, err := toPoints([]commonModels.DocChunk{chunk}, [][]float32{{0.1}}); err == nil {
		t.Error("expected dimension mismatch error")
	}

	points, err := toPoints([]commonModels.DocChunk{chunk}, [][]float32{make([]float32, dimension)})
	if err != nil {
		t.Fatalf("toPoints failed: %v", err)
	}
	if points[0].Payload["doc_name"].GetStringValue() != "seed-1" {
		t.Errorf("payload = %v", points[0].Payload)
	}
	if points[0].Id.GetUuid() != chunk.ChunkId {
		t.Errorf("point id = %v", points[0].Id)
	}
}
