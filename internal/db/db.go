package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"rag-chatbot/internal/config"
	"rag-chatbot/internal/models"
)

// DocumentChunk is the persisted row; see models.DocumentChunk for the
// domain-side shape.
type DocumentChunk struct {
	bun.BaseModel `bun:"table:document_chunks,alias:dc"`

	ID           int64     `bun:"id,pk,autoincrement"`
	Content      string    `bun:"content,notnull"`
	Embedding    []float32 `bun:"embedding,notnull,type:vector(384)"`
	SourceFile   string    `bun:"source_file,notnull"`
	ChapterTitle string    `bun:"chapter_title"`
	PageNumber   int       `bun:"page_number,notnull"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func ConnectDB(cfg *config.DBConfig) (*sql.DB, error) {
	opts := []pgdriver.Option{pgdriver.WithDSN(cfg.URL)}
	if cfg.Password != "" {
		opts = append(opts, pgdriver.WithPassword(cfg.Password))
	}
	return sql.OpenDB(pgdriver.NewConnector(opts...)), nil
}

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

// InitDB enables the pgvector extension, creates the chunk table and a cosine
// index. The index is a performance concern only; correctness does not depend
// on it.
func InitDB(ctx context.Context, db *bun.DB) error {
	if _, err := db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("creating vector extension: %w", err)
	}
	if _, err := db.NewCreateTable().Model((*DocumentChunk)(nil)).IfNotExists().Exec(ctx); err != nil {
		return err
	}
	_, err := db.ExecContext(ctx,
		"CREATE INDEX IF NOT EXISTS document_chunks_embedding_idx ON document_chunks USING ivfflat (embedding vector_cosine_ops)")
	return err
}

// DropDocuments removes the chunk table entirely.
func DropDocuments(ctx context.Context, db *bun.DB) error {
	_, err := db.NewDropTable().Model((*DocumentChunk)(nil)).IfExists().Exec(ctx)
	return err
}

// Store implements vectorstore.Store on Postgres with pgvector.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

func (s *Store) BulkInsert(ctx context.Context, chunks []models.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	rows := make([]DocumentChunk, len(chunks))
	for i, c := range chunks {
		rows[i] = DocumentChunk{
			Content:      c.Content,
			Embedding:    c.Embedding,
			SourceFile:   c.SourceFile,
			ChapterTitle: c.ChapterTitle,
			PageNumber:   c.PageNumber,
		}
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(&rows).Exec(ctx)
		return err
	})
}

func (s *Store) Nearest(ctx context.Context, embedding []float32, k int) ([]models.DocumentChunk, error) {
	var rows []DocumentChunk
	err := s.db.NewSelect().
		Model(&rows).
		OrderExpr("embedding <=> ?", embedding).
		OrderExpr("id ASC").
		Limit(k).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	chunks := make([]models.DocumentChunk, len(rows))
	for i, r := range rows {
		chunks[i] = models.DocumentChunk{
			ID:           r.ID,
			Content:      r.Content,
			Embedding:    r.Embedding,
			SourceFile:   r.SourceFile,
			ChapterTitle: r.ChapterTitle,
			PageNumber:   r.PageNumber,
			CreatedAt:    r.CreatedAt,
		}
	}
	return chunks, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
