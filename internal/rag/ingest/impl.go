package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/akolanti/newschat/internal/config"
	"github.com/akolanti/newschat/internal/domain/commonModels"
	"github.com/akolanti/newschat/internal/metrics"
	"github.com/akolanti/newschat/internal/rag/embedding"
	"github.com/akolanti/newschat/internal/rag/vectorDB"
	"github.com/akolanti/newschat/pkg/logger_i"
	"github.com/google/uuid"
)

type rawPage struct {
	Number  int    `json:"number"`
	Content string `json:"content"`
}

var logger = logger_i.NewLogger("ingest")

// SeedCorpus indexes the built-in documents plus every supported file under
// corpusDir. Unreadable files are skipped; embedding or upsert failures abort.
func SeedCorpus(ctx context.Context, corpusDir string, e embedding.Embedder, vectorDatabase vectorDB.DataProcessor) (int, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("corpus_seed", time.Since(start)) }()

	log := logger.WithTrace(ctx)

	if err := vectorDatabase.CreateCollection(ctx, config.CorpusCollectionName); err != nil {
		return 0, fmt.Errorf("create corpus collection: %w", err)
	}

	chunks, err := seedChunks(config.SeedDocuments, e.Model())
	if err != nil {
		return 0, err
	}

	if corpusDir != "" {
		fileChunks, err := directoryChunks(ctx, corpusDir, e.Model())
		if err != nil {
			return 0, err
		}
		chunks = append(chunks, fileChunks...)
	}

	log.Info("Seeding corpus", "chunks", len(chunks), "embeddingModel", e.Model())
	if err := BatchIngest(ctx, chunks, vectorDatabase, e); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

func seedChunks(texts []string, embeddingModel string) ([]commonModels.DocChunk, error) {
	var chunks []commonModels.DocChunk
	now := time.Now()

	for i, text := range texts {
		doc := commonModels.Document{
			Id:                  uuid.NewSHA1(chunkNamespace, []byte("seed:"+text)).String(),
			Name:                fmt.Sprintf("seed-%d", i+1),
			LastIngestTimestamp: now,
			ContentType:         commonModels.TXT,
		}
		c, err := PrepareChunks([]rawPage{{Number: 1, Content: text}}, doc, embeddingModel)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c...)
	}
	return chunks, nil
}

func directoryChunks(ctx context.Context, dir string, embeddingModel string) ([]commonModels.DocChunk, error) {
	log := logger.WithTrace(ctx).With("corpusDir", dir)

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("corpus dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("corpus dir %s is not a directory", dir)
	}

	var chunks []commonModels.DocChunk
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}

		docType := getDocType(path)
		if docType == commonModels.ERR {
			log.Debug("Skipping unsupported file", "file", path)
			return nil
		}

		pages, err := extractText(ctx, path, docType)
		if err != nil {
			log.Warn("Skipping unreadable file", "file", path, "error", err)
			return nil
		}

		rel, _ := filepath.Rel(dir, path)
		doc := commonModels.Document{
			Id:                  uuid.NewSHA1(chunkNamespace, []byte("file:"+rel)).String(),
			Name:                rel,
			LastIngestTimestamp: time.Now(),
			ContentType:         docType,
		}
		c, err := PrepareChunks(pages, doc, embeddingModel)
		if err != nil {
			return err
		}
		log.Debug("Prepared document", "file", rel, "pages", len(pages), "chunks", len(c))
		chunks = append(chunks, c...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk corpus dir: %w", err)
	}
	return chunks, nil
}
