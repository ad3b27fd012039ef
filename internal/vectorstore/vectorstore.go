package vectorstore

import (
	"context"

	"rag-chatbot/internal/models"
)

// Store is the chunk storage contract shared by the Postgres/pgvector and
// chromem backends.
type Store interface {
	// BulkInsert persists all chunks as one atomic batch; on failure nothing
	// is persisted.
	BulkInsert(ctx context.Context, chunks []models.DocumentChunk) error

	// Nearest returns up to k chunks ordered by ascending cosine distance to
	// the query embedding. An empty store yields an empty result; a store
	// with fewer than k rows yields all of them.
	Nearest(ctx context.Context, embedding []float32, k int) ([]models.DocumentChunk, error)

	Close() error
}
