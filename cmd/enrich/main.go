// Command enrich dedups, reduces, classifies, summarizes, and embeds
// new ReviewRecords from the record file, persisting the result as
// ArchItems in the store.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/reviewrag/review-rag/internal/embedclient"
	"github.com/reviewrag/review-rag/internal/llmclient"
	"github.com/reviewrag/review-rag/internal/recordfile"
	"github.com/reviewrag/review-rag/internal/reduce"
	"github.com/reviewrag/review-rag/internal/runlog"
	"github.com/reviewrag/review-rag/internal/store"
	"github.com/reviewrag/review-rag/pkg/config"
	"github.com/reviewrag/review-rag/pkg/models"

	"github.com/pgvector/pgvector-go"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "Path to config file")
		input      = flag.String("input", "data/pr_records.jsonl", "Record file to consume")
		logDir     = flag.String("log-dir", "logs", "Directory for the per-run structured log")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, runID, closeLog, err := runlog.New(*logDir, "enrich")
	if err != nil {
		log.Fatalf("failed to open run log: %v", err)
	}
	defer closeLog()
	logger.Info("enrich run started")

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = cfg.Database.DSN
	}
	st, err := store.Open(dsn)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	records, err := recordfile.ReadAll(*input)
	if err != nil {
		log.Fatalf("failed to read record file: %v", err)
	}
	if len(records) > cfg.Batch.CommentsLimit {
		records = records[:cfg.Batch.CommentsLimit]
	}
	logger.Info("loaded records", zap.Int("count", len(records)))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	runStart := time.Now()
	fresh, err := st.FilterNew(ctx, records)
	if err != nil {
		log.Fatalf("failed to filter new records: %v", err)
	}
	logger.Info("new records detected", zap.Int("count", len(fresh)), zap.Duration("dedup", time.Since(runStart)))
	fmt.Printf("Found %d new records.\n", len(fresh))
	if len(fresh) == 0 {
		fmt.Println("Nothing new.")
		return
	}

	llm := llmclient.NewDriver(cfg.LLM.Command, cfg.LLM.Args)
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

	processed := 0
	for i, r := range fresh {
		recLogger := logger.With(zap.Int("record", i+1), zap.Int("total", len(fresh)))

		reduced := reduce.Comment(r.CommentBody)

		stepStart := time.Now()
		concerns, err := llm.ClassifyConcerns(ctx, reduced, cfg.ArchitecturalConcerns)
		classifyDur := time.Since(stepStart)
		if err != nil {
			recLogger.Warn("classify concerns failed", zap.Error(err))
			continue
		}

		stepStart = time.Now()
		summary, err := llm.Summarize(ctx, r.DiffContext, reduced, concerns)
		summarizeDur := time.Since(stepStart)
		if err != nil {
			recLogger.Warn("summarize failed", zap.Error(err))
			continue
		}

		stepStart = time.Now()
		vec, err := embedder.Embed(ctx, summary)
		embedDur := time.Since(stepStart)
		if err != nil {
			recLogger.Warn("embed failed", zap.Error(err))
			continue
		}

		embedding := pgvector.NewVector(vec)
		item := models.ArchItem{
			Repo:        r.Repo,
			PR:          r.PR,
			FilePath:    r.FilePath,
			Comment:     r.CommentBody,
			Diff:        r.DiffContext,
			Concerns:    concerns,
			ArchSummary: summary,
			Evidence:    "",
			Embedding:   &embedding,
		}

		stepStart = time.Now()
		if err := st.InsertItem(ctx, item); err != nil {
			recLogger.Warn("insert failed", zap.Error(err))
			continue
		}
		recLogger.Info("record enriched",
			zap.Duration("classify", classifyDur), zap.Duration("summarize", summarizeDur),
			zap.Duration("embed", embedDur), zap.Duration("insert", time.Since(stepStart)))
		processed++
	}

	logger.Info("enrich run finished", zap.Int("processed", processed), zap.Duration("elapsed", time.Since(runStart)))
	fmt.Printf("Done. Added %d new records. (run %s, log: %s)\n", processed, runID, *logDir)
}
