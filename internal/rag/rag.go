package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"

	"rag-chatbot/internal/models"
	"rag-chatbot/internal/vectorstore"
)

// Generator produces one completion from a system/user message pair.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// RAG answers questions from stored chunks: embed the question, fetch the
// nearest chunks, and condition the language model on them. The embedder must
// be the same handle used at ingestion time.
type RAG struct {
	store     vectorstore.Store
	embedder  embeddings.Embedder
	generator Generator
	topK      int
}

func NewRAG(store vectorstore.Store, embedder embeddings.Embedder, generator Generator, topK int) *RAG {
	if topK <= 0 {
		topK = models.DefaultTopK
	}
	return &RAG{store: store, embedder: embedder, generator: generator, topK: topK}
}

// Query runs the full retrieve-and-generate sequence for one question.
// When retrieval comes back empty the fixed fallback answer is returned with
// no sources and no model call is made.
func (r *RAG) Query(ctx context.Context, question string) (*models.Answer, error) {
	log.Debug().Str("question", question).Msg("Generating query embedding")
	queryEmbedding, err := r.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, models.WrapError(models.ErrEmbedding, err)
	}

	docs, err := r.store.Nearest(ctx, queryEmbedding, r.topK)
	if err != nil {
		return nil, models.WrapError(models.ErrStore, err)
	}

	if len(docs) == 0 {
		return &models.Answer{Answer: models.NoContextAnswer, Sources: []models.Source{}}, nil
	}

	var contextBlock strings.Builder
	for _, doc := range docs {
		fmt.Fprintf(&contextBlock, models.ContextBlockTemplate, doc.SourceFile, doc.PageNumber, doc.Content)
	}
	userPrompt := fmt.Sprintf(models.UserPromptTemplate, contextBlock.String(), question)

	log.Debug().Int("chunks", len(docs)).Msg("Sending context to LLM")
	answer, err := r.generator.Generate(ctx, models.SystemPrompt, userPrompt)
	if err != nil {
		return nil, models.WrapError(models.ErrGeneration, err)
	}

	sources := make([]models.Source, len(docs))
	for i, doc := range docs {
		sources[i] = models.Source{
			SourceFile: doc.SourceFile,
			PageNumber: doc.PageNumber,
			Content:    doc.Content,
		}
	}

	return &models.Answer{Answer: answer, Sources: sources}, nil
}
