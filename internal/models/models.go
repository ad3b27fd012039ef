package models

import "time"

// Page is one page of raw text extracted from a source document.
type Page struct {
	Number int
	Text   string
}

// Chunk represents a split chunk with metadata, before embedding
type Chunk struct {
	Content    string
	PageNumber int
	ChunkID    int
}

// DocumentChunk is the stored unit of retrieval: one chunk of one page of
// one source document, together with its embedding.
type DocumentChunk struct {
	ID           int64
	Content      string
	Embedding    []float32
	SourceFile   string
	ChapterTitle string
	PageNumber   int
	CreatedAt    time.Time
}

// Source is a citation returned alongside an answer.
type Source struct {
	SourceFile string `json:"source_file"`
	PageNumber int    `json:"page_number"`
	Content    string `json:"content"`
}

// Answer is the result of one RAG query.
type Answer struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}
