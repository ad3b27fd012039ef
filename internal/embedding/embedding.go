package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"rag-chatbot/internal/config"
	"rag-chatbot/internal/models"
)

// NewEmbedder builds the process-wide embedder from config. The same handle
// must serve both ingestion and queries, otherwise stored and query vectors
// live in different embedding spaces.
func NewEmbedder(cfg *config.LLMConfig) (embeddings.Embedder, error) {
	switch cfg.Provider {
	case "", "ollama":
		return NewOllamaEmbedder(cfg)
	case "openai":
		return NewOpenAIEmbedder(cfg)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}

// NewOllamaEmbedder wraps a local ollama embedding model (e.g. all-minilm).
func NewOllamaEmbedder(cfg *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	log.Debug().Interface("config", map[string]string{
		"base_url":        cfg.BaseURL,
		"embedding_model": cfg.Model,
	}).Msg("Initializing ollama embedder")

	llm, err := ollama.New(
		ollama.WithServerURL(cfg.BaseURL),
		ollama.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, err
	}
	return embeddings.NewEmbedder(llm)
}

// NewOpenAIEmbedder wraps any OpenAI-compatible embedding endpoint.
func NewOpenAIEmbedder(cfg *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, err
	}
	return embeddings.NewEmbedder(llm)
}

// EmbedChunks embeds all chunks of one document in a single batched call and
// builds the rows to store. Batching amortizes the per-call model overhead.
func EmbedChunks(ctx context.Context, embedder embeddings.Embedder, sourceFile string, chunks []models.Chunk) ([]models.DocumentChunk, error) {
	if len(chunks) == 0 {
		log.Info().Str("file", sourceFile).Msg("No chunks generated from content")
		return nil, nil
	}

	contents := make([]string, len(chunks))
	for i, chunk := range chunks {
		contents[i] = chunk.Content
	}

	vectors, err := embedder.EmbedDocuments(ctx, contents)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	rows := make([]models.DocumentChunk, len(chunks))
	for i, chunk := range chunks {
		rows[i] = models.DocumentChunk{
			Content:      chunk.Content,
			Embedding:    vectors[i],
			SourceFile:   sourceFile,
			ChapterTitle: models.DefaultChapterTitle,
			PageNumber:   chunk.PageNumber,
		}
	}
	return rows, nil
}
