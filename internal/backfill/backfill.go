// Package backfill repairs ArchItem rows whose embedding is null,
// without ever overwriting an existing one (I5).
package backfill

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/reviewrag/review-rag/pkg/models"
)

// CanonicalText renders an ArchItem into the labeled textual snippet
// embedded in place of the raw comment, so the embedding captures the
// repo/PR/file context alongside the distilled summary and evidence.
func CanonicalText(item models.ArchItem) string {
	return fmt.Sprintf(
		"Repo: %s\nPR: %d\nFile: %s\n\nComment: %s\nDiff: %s\n\nArchitectural Summary: %s\nEvidence: %s",
		item.Repo, item.PR, item.FilePath, item.Comment, item.Diff, item.ArchSummary, item.Evidence,
	)
}

// Embedder is the narrow embedding collaborator Backfill depends on.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Run embeds the canonical textual rendering of every row with a null
// embedding and writes it back. A single row's embedding failure is
// logged by the caller via the returned per-row error and the row is
// skipped; the run continues.
func Run(ctx context.Context, candidates []models.ArchItem, embedder Embedder, update func(ctx context.Context, id int64, vec pgvector.Vector) error) (repaired int, failures []error) {
	for _, item := range candidates {
		if item.HasEmbedding() {
			continue
		}
		vec, err := embedder.Embed(ctx, CanonicalText(item))
		if err != nil {
			failures = append(failures, fmt.Errorf("backfill: item %d: %w", item.ID, err))
			continue
		}
		if err := update(ctx, item.ID, pgvector.NewVector(vec)); err != nil {
			failures = append(failures, fmt.Errorf("backfill: item %d: update: %w", item.ID, err))
			continue
		}
		repaired++
	}
	return repaired, failures
}
