package chromemdb

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/philippgille/chromem-go"

	"rag-chatbot/internal/config"
	"rag-chatbot/internal/helper"
	"rag-chatbot/internal/models"
)

const compress = false

// Store implements vectorstore.Store on an embedded chromem-go collection.
// Useful for local runs and tests where Postgres is not around; chunk
// metadata rides along as chromem document metadata.
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
}

func NewStore(cfg *config.StoreConfig) (*Store, error) {
	var db *chromem.DB
	var err error
	if cfg.InMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(cfg.Path, compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %v", err)
		}
	}

	collection, err := db.GetOrCreateCollection(cfg.Collection, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %v", err)
	}

	return &Store{db: db, collection: collection}, nil
}

func (s *Store) BulkInsert(ctx context.Context, chunks []models.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	docs := make([]chromem.Document, 0, len(chunks))
	for _, chunk := range chunks {
		id, err := helper.GenerateUUID()
		if err != nil {
			return err
		}
		docs = append(docs, chromem.Document{
			ID:        id,
			Content:   chunk.Content,
			Embedding: chunk.Embedding,
			Metadata: map[string]string{
				"source_file":   chunk.SourceFile,
				"chapter_title": chunk.ChapterTitle,
				"page_number":   strconv.Itoa(chunk.PageNumber),
				"created_at":    time.Now().UTC().Format(time.RFC3339),
			},
		})
	}

	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %v", err)
	}
	return nil
}

func (s *Store) Nearest(ctx context.Context, embedding []float32, k int) ([]models.DocumentChunk, error) {
	// chromem rejects queries asking for more results than stored documents.
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	results, err := s.collection.QueryEmbedding(ctx, embedding, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %v", err)
	}

	chunks := make([]models.DocumentChunk, 0, len(results))
	for _, res := range results {
		pageNumber, _ := strconv.Atoi(res.Metadata["page_number"])
		createdAt, _ := time.Parse(time.RFC3339, res.Metadata["created_at"])
		chunks = append(chunks, models.DocumentChunk{
			Content:      res.Content,
			Embedding:    res.Embedding,
			SourceFile:   res.Metadata["source_file"],
			ChapterTitle: res.Metadata["chapter_title"],
			PageNumber:   pageNumber,
			CreatedAt:    createdAt,
		})
	}
	return chunks, nil
}

func (s *Store) Close() error {
	return nil
}
