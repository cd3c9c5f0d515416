package commonModels

import "time"

type Document struct {
	Id                  string    `json:"source_doc_id"`
	Name                string    `json:"doc_name"`
	LastIngestTimestamp time.Time `json:"ingested_at"`
	ContentType         DocType   `json:"contentType"`
}

type DocChunk struct {
	Doc            Document
	ChunkId        string `json:"chunk_id"`
	Chunk          string `json:"content"`
	PageNum        int    `json:"page_num"`
	ChunkPageOrder int    `json:"chunk_order"`
	EmbeddingModel string `json:"embedding_model"`
}

// RetrievedChunk is a corpus hit returned by the vector store.
type RetrievedChunk struct {
	Content string  `json:"content"`
	DocName string  `json:"doc_name"`
	PageNum int     `json:"page_num"`
	Score   float32 `json:"score"`
}

// CachedAnswer is a previously generated answer found by semantic similarity.
type CachedAnswer struct {
	Answer  string
	Sources []string
	Score   float32
}

// ChatTurn is one question/answer exchange kept in session memory.
type ChatTurn struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Sources   []string  `json:"sources,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// IsEmpty reports whether the turn is the placeholder written when a chat is created.
func (t ChatTurn) IsEmpty() bool {
	return t.Question == "" && t.Answer == ""
}

type DocType string

var PDF DocType = "PDF"
var DOCX DocType = "DOCX"
var TXT DocType = "TXT"
var ERR DocType = "ERROR"
