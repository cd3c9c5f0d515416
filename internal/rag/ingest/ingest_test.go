package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akolanti/newschat/internal/config"
	"github.com/akolanti/newschat/internal/domain/commonModels"
)

// --- Mocks for BatchIngest ---

type mockEmbedder struct {
	batchFunc func(ctx context.Context, chunks []string) ([][]float32, error)
}

func (m *mockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	return nil, nil
}
func (m *mockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	return m.batchFunc(ctx, chunks)
}
func (m *mockEmbedder) Model() string { return "test-model" }

type mockVectorDB struct {
	createFunc func(ctx context.Context, name string) error
	upsertFunc func(ctx context.Context, coll string, chunks []commonModels.DocChunk, vectors [][]float32) error
}

func (m *mockVectorDB) Search(ctx context.Context, v []float32, k int) ([]commonModels.RetrievedChunk, error) {
	return nil, nil
}
func (m *mockVectorDB) GetCachedAnswer(ctx context.Context, v []float32) (commonModels.CachedAnswer, bool, error) {
	return commonModels.CachedAnswer{}, false, nil
}
func (m *mockVectorDB) SaveToCache(ctx context.Context, id string, v []float32, a commonModels.CachedAnswer) error {
	return nil
}
func (m *mockVectorDB) CreateCollection(ctx context.Context, name string) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, name)
	}
	return nil
}
func (m *mockVectorDB) UpsertBatch(ctx context.Context, coll string, chunks []commonModels.DocChunk, vectors [][]float32) error {
	return m.upsertFunc(ctx, coll, chunks, vectors)
}

func echoEmbedder() *mockEmbedder {
	return &mockEmbedder{
		batchFunc: func(ctx context.Context, ch []string) ([][]float32, error) {
			return make([][]float32, len(ch)), nil
		},
	}
}

// --- Unit Tests ---

func TestGetDocType(t *testing.T) {
	tests := []struct {
		path     string
		expected commonModels.DocType
	}{
		{"test.pdf", commonModels.PDF},
		{"DOC.DOCX", commonModels.DOCX},
		{"notes.txt", commonModels.TXT},
		{"letter.rtf", commonModels.DOCX},
		{"image.png", commonModels.ERR},
	}

	for _, tt := range tests {
		if got := getDocType(tt.path); got != tt.expected {
			t.Errorf("getDocType(%s) = %v; want %v", tt.path, got, tt.expected)
		}
	}
}

func TestSplitTextIntoChunks(t *testing.T) {
	splitter := newSplitter()

	short, err := splitTextIntoChunks(splitter, "Apple released new AR glasses with advanced tracking.")
	if err != nil || len(short) != 1 {
		t.Fatalf("short text should stay one chunk, got %v, %v", short, err)
	}

	paragraph := strings.Repeat("word ", 150) // ~750 chars
	long := paragraph + "\n\n" + paragraph + "\n\n" + paragraph
	chunks, err := splitTextIntoChunks(splitter, long)
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected one chunk per paragraph, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > config.ChunkSize {
			t.Errorf("chunk %d has %d chars, limit %d", i, len(c), config.ChunkSize)
		}
	}

	empty, err := splitTextIntoChunks(splitter, "  \n\n ")
	if err != nil || len(empty) != 0 {
		t.Errorf("blank text should give no chunks, got %v", empty)
	}
}

func TestPrepareChunks(t *testing.T) {
	pages := []rawPage{
		{Number: 1, Content: "Page one content."},
		{Number: 2, Content: "Page two content."},
	}
	doc := commonModels.Document{Id: "doc-1"}

	chunks, err := PrepareChunks(pages, doc, "text-embedding-ada-002")
	if err != nil {
		t.Fatalf("PrepareChunks failed: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks (one per page), got %d", len(chunks))
	}
	if chunks[0].PageNum != 1 || chunks[1].PageNum != 2 {
		t.Errorf("page numbers not carried: %+v", chunks)
	}
	if chunks[0].EmbeddingModel != "text-embedding-ada-002" {
		t.Errorf("embedding model = %s", chunks[0].EmbeddingModel)
	}

	again, _ := PrepareChunks(pages, doc, "text-embedding-ada-002")
	if again[0].ChunkId != chunks[0].ChunkId {
		t.Error("chunk ids should be deterministic")
	}
	if chunks[0].ChunkId == chunks[1].ChunkId {
		t.Error("chunk ids should differ per page")
	}
}

func TestBatchIngest(t *testing.T) {
	ctx := context.Background()
	chunks := make([]commonModels.DocChunk, 150) // Should trigger 2 batches (100 + 50)
	for i := range chunks {
		chunks[i] = commonModels.DocChunk{Chunk: "test content"}
	}

	var sizes []int
	vDB := &mockVectorDB{
		upsertFunc: func(ctx context.Context, coll string, c []commonModels.DocChunk, v [][]float32) error {
			if coll != config.CorpusCollectionName {
				t.Errorf("upsert into %s", coll)
			}
			sizes = append(sizes, len(c))
			return nil
		},
	}

	if err := BatchIngest(ctx, chunks, vDB, echoEmbedder()); err != nil {
		t.Fatalf("BatchIngest failed: %v", err)
	}
	if len(sizes) != 2 || sizes[0] != 100 || sizes[1] != 50 {
		t.Errorf("Expected batches of 100 and 50, got %v", sizes)
	}
}

func TestBatchIngest_Error(t *testing.T) {
	vDB := &mockVectorDB{
		upsertFunc: func(ctx context.Context, coll string, c []commonModels.DocChunk, v [][]float32) error {
			return errors.New("upsert failed")
		},
	}

	err := BatchIngest(context.Background(), []commonModels.DocChunk{{Chunk: "hi"}}, vDB, echoEmbedder())
	if err == nil {
		t.Error("Expected error from BatchIngest, got nil")
	}

	failing := &mockEmbedder{
		batchFunc: func(ctx context.Context, ch []string) ([][]float32, error) {
			return nil, errors.New("quota")
		},
	}
	if err := BatchIngest(context.Background(), []commonModels.DocChunk{{Chunk: "hi"}}, vDB, failing); err == nil {
		t.Error("Expected embedding error from BatchIngest, got nil")
	}
}

func TestSeedCorpus(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "extra.txt"), []byte("Markets rallied after the rate decision."), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "photo.png"), []byte{0x89, 0x50}, 0o600); err != nil {
		t.Fatal(err)
	}

	var upserted []commonModels.DocChunk
	vDB := &mockVectorDB{
		upsertFunc: func(ctx context.Context, coll string, c []commonModels.DocChunk, v [][]float32) error {
			upserted = append(upserted, c...)
			return nil
		},
	}

	n, err := SeedCorpus(context.Background(), dir, echoEmbedder(), vDB)
	if err != nil {
		t.Fatalf("SeedCorpus failed: %v", err)
	}
	if n != len(config.SeedDocuments)+1 || len(upserted) != n {
		t.Fatalf("expected %d chunks, got n=%d upserted=%d", len(config.SeedDocuments)+1, n, len(upserted))
	}
	if upserted[0].Doc.Name != "seed-1" || upserted[0].Chunk != config.SeedDocuments[0] {
		t.Errorf("first chunk = %+v", upserted[0])
	}
	if upserted[n-1].Doc.Name != "extra.txt" {
		t.Errorf("file chunk doc name = %s", upserted[n-1].Doc.Name)
	}
}

func TestSeedCorpus_Failures(t *testing.T) {
	vDB := &mockVectorDB{
		createFunc: func(ctx context.Context, name string) error { return errors.New("qdrant down") },
	}
	if _, err := SeedCorpus(context.Background(), "", echoEmbedder(), vDB); err == nil {
		t.Error("expected collection error")
	}

	ok := &mockVectorDB{upsertFunc: func(ctx context.Context, coll string, c []commonModels.DocChunk, v [][]float32) error { return nil }}
	if _, err := SeedCorpus(context.Background(), filepath.Join(t.TempDir(), "missing"), echoEmbedder(), ok); err == nil {
		t.Error("expected missing corpus dir error")
	}
}
