package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"communerag/internal/ai"
	"communerag/internal/app"
	"communerag/internal/chunker"
	"communerag/internal/config"
	"communerag/internal/embedder"
)

// indexer builds the search artifacts offline, without the database or the
// queue. Useful for seeding a deployment before the server first starts.
func main() {
	docsDir := flag.String("docs", "", "override the document directory")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("load .env failed: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	if *docsDir != "" {
		cfg.Index.DocsDir = *docsDir
	}

	aiClient := ai.NewClient(ai.ClientConfig{
		BaseURL:    cfg.LLM.BaseURL,
		APIKey:     cfg.LLM.APIKey,
		Timeout:    time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
		MaxRetries: cfg.LLM.MaxRetries,
	})
	split, err := chunker.New(cfg.Retrieval.ChunkSize, cfg.Retrieval.ChunkOverlap)
	if err != nil {
		log.Fatalf("invalid chunk window: %v", err)
	}

	svc := app.NewIndexService(
		split,
		embedder.New(aiClient, cfg.LLM.EmbeddingModel, cfg.Retrieval.BatchSize),
		nil, nil,
		cfg.Index.DocsDir, cfg.Index.VectorsPath, cfg.Index.ChunksPath,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := svc.Rebuild(ctx)
	if err != nil {
		log.Fatalf("index build failed: %v", err)
	}
	log.Printf("index written: %d documents, %d chunks, dimension %d, %s",
		result.Documents, result.Chunks, result.Dimension, result.Vectors)
}
