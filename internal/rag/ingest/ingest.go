package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/akolanti/newschat/internal/config"
	"github.com/akolanti/newschat/internal/domain/commonModels"
	"github.com/akolanti/newschat/internal/rag/embedding"
	"github.com/akolanti/newschat/internal/rag/vectorDB"
	"github.com/google/uuid"
	"github.com/tmc/langchaingo/textsplitter"
)

// chunkNamespace keeps chunk ids stable across restarts so re-seeding overwrites instead of duplicating
var chunkNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("newschat/chunks"))

func newSplitter() textsplitter.TextSplitter {
	return textsplitter.NewRecursiveCharacter(
		textsplitter.WithSeparators([]string{config.ChunkSeparator}),
		textsplitter.WithChunkSize(config.ChunkSize),
		textsplitter.WithChunkOverlap(config.ChunkOverlap),
	)
}

func splitTextIntoChunks(splitter textsplitter.TextSplitter, text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	parts, err := splitter.SplitText(text)
	if err != nil {
		return nil, err
	}

	chunks := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			chunks = append(chunks, p)
		}
	}
	return chunks, nil
}

func getDocType(docPath string) commonModels.DocType {
	ext := strings.ToLower(filepath.Ext(docPath))
	switch ext {
	case ".pdf":
		return commonModels.PDF
	case ".txt", ".md":
		return commonModels.TXT
	case ".docx", ".rtf", ".odt":
		return commonModels.DOCX
	default:
		return commonModels.ERR
	}
}

func extractText(ctx context.Context, path string, contentType commonModels.DocType) ([]rawPage, error) {
	switch contentType {
	case commonModels.PDF:
		return readPDFPages(ctx, path)
	case commonModels.DOCX, commonModels.TXT:
		return readWholeFile(path)
	default:
		return nil, fmt.Errorf("unsupported content type: %s", contentType)
	}
}

func chunkID(docID string, page int, order int) string {
	return uuid.NewSHA1(chunkNamespace, []byte(docID+"/"+strconv.Itoa(page)+"/"+strconv.Itoa(order))).String()
}

func PrepareChunks(pages []rawPage, doc commonModels.Document, embeddingModel string) ([]commonModels.DocChunk, error) {
	splitter := newSplitter()
	var allChunks []commonModels.DocChunk

	for _, page := range pages {
		stringChunks, err := splitTextIntoChunks(splitter, page.Content)
		if err != nil {
			return nil, fmt.Errorf("split %s page %d: %w", doc.Name, page.Number, err)
		}

		for i, text := range stringChunks {
			allChunks = append(allChunks, commonModels.DocChunk{
				Doc:            doc,
				ChunkId:        chunkID(doc.Id, page.Number, i),
				Chunk:          text,
				PageNum:        page.Number,
				ChunkPageOrder: i,
				EmbeddingModel: embeddingModel,
			})
		}
	}

	return allChunks, nil
}

// BatchIngest embeds and upserts chunks into the corpus collection in groups of EmbeddingBatchSize.
func BatchIngest(ctx context.Context, chunks []commonModels.DocChunk, vectorDB vectorDB.DataProcessor, embedder embedding.Embedder) error {
	log := logger.WithTrace(ctx)
	batchSize := config.EmbeddingBatchSize

	for i := 0; i < len(chunks); i += batchSize {
		end := min(i+batchSize, len(chunks))
		currentBatch := chunks[i:end]

		texts := make([]string, len(currentBatch))
		for j, c := range currentBatch {
			texts[j] = c.Chunk
		}

		log.Debug("Starting embedding call", "batchStart", i, "batchLength", len(currentBatch))
		vectors, err := embedder.BatchEmbedding(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding batch failed: %w", err)
		}

		err = vectorDB.UpsertBatch(ctx, config.CorpusCollectionName, currentBatch, vectors)
		if err != nil {
			return fmt.Errorf("upserting to qdrant failed: %w", err)
		}
	}

	return nil
}
