// Command migrate-schema applies the versioned baseline schema and
// then corrects any remaining column-type drift, including resizing
// the embedding column to the configured vector dimension. It never
// drops data implicitly; a dimension change invalidates existing
// vectors and requires a subsequent Backfill run.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/reviewrag/review-rag/internal/schema"
	"github.com/reviewrag/review-rag/internal/store"
	"github.com/reviewrag/review-rag/pkg/config"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "Path to config file")
		annIndex   = flag.Bool("ann-index", true, "Create the optional approximate-nearest-neighbor index")
	)
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

	m := schema.NewMigrator(st.DB())

	if err := m.ApplyBaseline(); err != nil {
		log.Fatalf("failed to apply baseline migrations: %v", err)
	}
	fmt.Println("Baseline schema applied.")

	mismatches, err := m.Reconcile(cfg.Database.VectorDimension)
	if err != nil {
		log.Fatalf("failed to reconcile schema: %v", err)
	}
	if len(mismatches) == 0 {
		fmt.Println("No further corrections needed.")
	} else {
		for _, mm := range mismatches {
			fmt.Printf("Fixed column %s -> %s\n", mm.Column, mm.Expected)
		}
		fmt.Println("Migration complete. Run backfill to restore embeddings invalidated by any dimension change.")
	}

	if *annIndex {
		if err := m.EnsureANNIndex(); err != nil {
			fmt.Printf("warning: failed to create ANN index (best-effort, not fatal): %v\n", err)
		} else {
			fmt.Println("ANN index ensured.")
		}
	}
}
