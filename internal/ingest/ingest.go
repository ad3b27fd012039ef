package ingest

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"

	"rag-chatbot/internal/config"
	"rag-chatbot/internal/embedding"
	"rag-chatbot/internal/models"
	"rag-chatbot/internal/parser"
	"rag-chatbot/internal/splitter"
	"rag-chatbot/internal/vectorstore"
)

// Pipeline runs extract -> chunk -> embed -> store for one document at a
// time. A document that fails anywhere leaves no partial state; isolating
// failures across documents is the caller's job.
type Pipeline struct {
	store    vectorstore.Store
	embedder embeddings.Embedder
	splitter splitter.Splitter
}

func NewPipeline(store vectorstore.Store, embedder embeddings.Embedder, cfg *config.RAGConfig) *Pipeline {
	return &Pipeline{
		store:    store,
		embedder: embedder,
		splitter: splitter.New(cfg.ChunkSize, cfg.ChunkOverlap),
	}
}

// Ingest processes one document and returns the number of chunks stored.
// Pages containing only whitespace produce no chunks; a document with no
// chunks at all stores nothing and succeeds.
func (p *Pipeline) Ingest(ctx context.Context, filePath string) (int, error) {
	sourceFile := filepath.Base(filePath)
	log.Info().Str("file", sourceFile).Msg("Processing file")

	pages, err := parser.ExtractPages(filePath)
	if err != nil {
		return 0, models.WrapError(models.ErrExtraction, err)
	}

	var chunks []models.Chunk
	for _, page := range pages {
		if strings.TrimSpace(page.Text) == "" {
			continue
		}
		pageChunks, err := p.splitter.SplitPage(page)
		if err != nil {
			return 0, models.WrapError(models.ErrExtraction, err)
		}
		chunks = append(chunks, pageChunks...)
	}

	if len(chunks) == 0 {
		log.Info().Str("file", sourceFile).Msg("Document produced no chunks")
		return 0, nil
	}

	log.Info().Str("file", sourceFile).Int("chunks", len(chunks)).Msg("Generating embeddings")
	rows, err := embedding.EmbedChunks(ctx, p.embedder, sourceFile, chunks)
	if err != nil {
		return 0, models.WrapError(models.ErrEmbedding, err)
	}

	if err := p.store.BulkInsert(ctx, rows); err != nil {
		return 0, models.WrapError(models.ErrStore, err)
	}

	log.Info().Str("file", sourceFile).Int("chunks", len(rows)).Msg("Ingested document")
	return len(rows), nil
}
