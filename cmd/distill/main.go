// Command distill synthesizes the ArchItem corpus into guidelines,
// using either the chunked or clustered strategy.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/reviewrag/review-rag/internal/distill"
	"github.com/reviewrag/review-rag/internal/llmclient"
	"github.com/reviewrag/review-rag/internal/runlog"
	"github.com/reviewrag/review-rag/internal/store"
	"github.com/reviewrag/review-rag/pkg/config"
	"github.com/reviewrag/review-rag/pkg/models"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "Path to config file")
		strategy   = flag.String("strategy", "chunked", "Distillation strategy: chunked or clustered")
		output     = flag.String("output", "", "Guideline output file (default data/guidelines.json or data/guidelines_clustered.json)")
		dedupe     = flag.Bool("dedupe", true, "Remove near-duplicate guidelines before writing the output file")
		logDir     = flag.String("log-dir", "logs", "Directory for the per-run structured log")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, _, closeLog, err := runlog.New(*logDir, "distill-"+*strategy)
	if err != nil {
		log.Fatalf("failed to open run log: %v", err)
	}
	defer closeLog()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = cfg.Database.DSN
	}
	st, err := store.Open(dsn)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	llm := llmclient.NewDriver(cfg.LLM.Command, cfg.LLM.Args)

	ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
	defer cancel()

	var guidelines []models.Guideline
	var errs []error

	switch *strategy {
	case "chunked":
		if *output == "" {
			*output = "data/guidelines.json"
		}
		rows, err := st.LoadForChunkedDistill(ctx)
		if err != nil {
			log.Fatalf("failed to load rows: %v", err)
		}
		logger.Info("loaded rows for chunked distillation", zap.Int("count", len(rows)))
		guidelines, errs = distill.RunChunked(ctx, rows, cfg.Distill.ChunkSize, llm)

	case "clustered":
		if *output == "" {
			*output = "data/guidelines_clustered.json"
		}
		rows, err := st.LoadForClusteredDistill(ctx)
		if err != nil {
			log.Fatalf("failed to load rows: %v", err)
		}
		logger.Info("loaded rows for clustered distillation", zap.Int("count", len(rows)))
		guidelines, errs = distill.RunClustered(ctx, rows, llm)

	default:
		log.Fatalf("unknown strategy %q (expected chunked or clustered)", *strategy)
	}

	for _, e := range errs {
		logger.Warn("distill step failed", zap.Error(e))
		fmt.Println("warning:", e)
	}

	if *dedupe {
		before := len(guidelines)
		guidelines = distill.Dedupe(guidelines, distill.DefaultSimilarityThreshold)
		logger.Info("deduped guidelines", zap.Int("before", before), zap.Int("after", len(guidelines)))
	}

	data, err := json.MarshalIndent(guidelines, "", "  ")
	if err != nil {
		log.Fatalf("failed to marshal guidelines: %v", err)
	}
	if err := os.WriteFile(*output, data, 0644); err != nil {
		log.Fatalf("failed to write guidelines: %v", err)
	}

	fmt.Printf("Saved %d guidelines to %s\n", len(guidelines), *output)
}
