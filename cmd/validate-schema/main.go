// Command validate-schema reports any divergence between the live
// arch_items table and the declared schema, including the vector
// column's dimension, and exits non-zero on any mismatch.
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

	v := schema.NewValidator(st.DB())

	exists, err := v.TableExists()
	if err != nil {
		log.Fatalf("failed to check table existence: %v", err)
	}
	if !exists {
		fmt.Println("arch_items does not exist. Run migrate-schema to create it.")
		os.Exit(1)
	}

	mismatches, err := v.Validate(cfg.Database.VectorDimension)
	if err != nil {
		log.Fatalf("failed to validate schema: %v", err)
	}

	if len(mismatches) == 0 {
		fmt.Println("Schema is valid.")
		return
	}

	fmt.Println("Schema mismatches found:")
	fmt.Printf("%-16s %-20s %-20s\n", "Column", "Expected Type", "Actual Type")
	for _, mm := range mismatches {
		actual := mm.Actual
		if actual == "" {
			actual = "(missing)"
		}
		fmt.Printf("%-16s %-20s %-20s\n", mm.Column, mm.Expected, actual)
	}
	fmt.Println("\nRun migrate-schema to fix.")
	os.Exit(1)
}
