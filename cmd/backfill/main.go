// Command backfill repairs ArchItems whose embedding is null, never
// touching a row that already has one.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pgvector/pgvector-go"

	"github.com/reviewrag/review-rag/internal/backfill"
	"github.com/reviewrag/review-rag/internal/embedclient"
	"github.com/reviewrag/review-rag/internal/store"
	"github.com/reviewrag/review-rag/pkg/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = cfg.Database.DSN
	}
	st, err := store.Open(dsn)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	embedder, err := embedclient.NewClient(embedclient.Config{
		BaseURL:   cfg.Embedding.BaseURL,
		APIKeyEnv: cfg.Embedding.APIKeyEnv,
		Model:     cfg.Embedding.Model,
		Dimension: cfg.Embedding.Dimension,
		Timeout:   time.Duration(cfg.Embedding.TimeoutS) * time.Second,
	})
	if err != nil {
		log.Fatalf("failed to build embedding client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	candidates, err := st.BackfillCandidates(ctx)
	if err != nil {
		log.Fatalf("failed to load backfill candidates: %v", err)
	}
	fmt.Printf("Found %d rows with a null embedding.\n", len(candidates))

	repaired, failures := backfill.Run(ctx, candidates, embedder, func(ctx context.Context, id int64, vec pgvector.Vector) error {
		return st.UpdateEmbedding(ctx, id, vec)
	})

	for _, err := range failures {
		fmt.Println("backfill failure:", err)
	}
	fmt.Printf("Repaired %d rows, %d failures.\n", repaired, len(failures))
}
