package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"

	"rag-chatbot/internal/chromemdb"
	"rag-chatbot/internal/config"
	"rag-chatbot/internal/db"
	"rag-chatbot/internal/embedding"
	"rag-chatbot/internal/helper"
	"rag-chatbot/internal/ingest"
	"rag-chatbot/internal/llmservice"
	"rag-chatbot/internal/models"
	"rag-chatbot/internal/parser"
	"rag-chatbot/internal/rag"
	"rag-chatbot/internal/splitter"
	"rag-chatbot/internal/vectorstore"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", configFilePath, "Path to the config file")
	filePath := flag.String("file", "", "Path to a single document file")
	dirPath := flag.String("dir", "", "Directory of documents to ingest")
	query := flag.String("query", "", "Query to be answered")
	reset := flag.Bool("reset", false, "Drop and recreate the chunk table before ingesting (postgres backend)")
	dryRun := flag.Bool("dry-run", false, "Parse and chunk only, do not embed or save")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	ctx := context.Background()

	if *dryRun && *filePath != "" {
		dryRunFile(*filePath, cfg)
		return
	}

	store, err := openStore(ctx, cfg, *reset)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening chunk store")
	}
	defer store.Close()

	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	switch {
	case *filePath != "":
		pipeline := ingest.NewPipeline(store, embedder, &cfg.RAG)
		if _, err := pipeline.Ingest(ctx, *filePath); err != nil {
			log.Fatal().Err(err).Str("file", *filePath).Msg("Error ingesting document")
		}
	case *dirPath != "":
		ingestDirectory(ctx, *dirPath, ingest.NewPipeline(store, embedder, &cfg.RAG))
	case *query != "":
		answerQuery(ctx, *query, store, embedder, cfg)
	default:
		log.Fatal().Msg("Please provide a document via -file, a directory via -dir, or a question via -query")
	}
}

// ingestDirectory walks one directory of documents. Failures are isolated per
// file: a bad document is logged and skipped, the rest still go through.
func ingestDirectory(ctx context.Context, dir string, pipeline *ingest.Pipeline) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", dir).Msg("Error reading directory")
	}

	var ok, failed int
	for _, entry := range entries {
		if entry.IsDir() || !parser.IsSupported(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if _, err := pipeline.Ingest(ctx, path); err != nil {
			log.Error().Err(err).Str("file", entry.Name()).Msg("Failed to ingest")
			failed++
			continue
		}
		ok++
	}
	log.Info().Int("ingested", ok).Int("failed", failed).Msg("Directory ingestion done")
}

func answerQuery(ctx context.Context, query string, store vectorstore.Store, embedder embeddings.Embedder, cfg *config.Config) {
	generator, err := llmservice.New(&cfg.InferLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing LLM client")
	}

	ragService := rag.NewRAG(store, embedder, generator, cfg.RAG.TopK)
	answer, err := ragService.Query(ctx, query)
	if err != nil {
		log.Fatal().Err(err).Msg("Error querying")
	}

	fmt.Printf("Question:\n%s\n\n", query)
	fmt.Printf("Answer:\n%s\n\n", answer.Answer)
	for _, src := range answer.Sources {
		fmt.Printf("- %s (Page %d)\n", src.SourceFile, src.PageNumber)
	}
}

// dryRunFile prints the chunks a document would produce without touching the
// embedder or the store.
func dryRunFile(filePath string, cfg *config.Config) {
	pages, err := parser.ExtractPages(filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error parsing document")
	}

	split := splitter.New(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	var chunks []models.Chunk
	for _, page := range pages {
		if strings.TrimSpace(page.Text) == "" {
			continue
		}
		pageChunks, err := split.SplitPage(page)
		if err != nil {
			log.Fatal().Err(err).Msg("Error chunking document")
		}
		chunks = append(chunks, pageChunks...)
	}

	log.Info().Int("pages", len(pages)).Int("chunks", len(chunks)).Msg("Dry run")
	helper.PrettyPrint(chunks)
}

func openStore(ctx context.Context, cfg *config.Config, reset bool) (vectorstore.Store, error) {
	switch cfg.Store.Backend {
	case "chromem":
		return chromemdb.NewStore(&cfg.Store)
	default:
		sqldb, err := db.ConnectDB(&cfg.Database)
		if err != nil {
			return nil, err
		}
		bunDB := db.NewDB(sqldb, cfg.Database.Debug)
		if reset {
			if err := db.DropDocuments(ctx, bunDB); err != nil {
				return nil, err
			}
		}
		if err := db.InitDB(ctx, bunDB); err != nil {
			return nil, err
		}
		return db.NewStore(bunDB), nil
	}
}
