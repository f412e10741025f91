package backfill

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/pgvector/pgvector-go"

	"github.com/reviewrag/review-rag/pkg/models"
)

type fakeEmbedder struct {
	fail map[string]bool
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.fail[text] {
		return nil, fmt.Errorf("embedding failed")
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func TestCanonicalText_IncludesAllFields(t *testing.T) {
	// Arrange
	item := models.ArchItem{
		Repo: "owner/repo", PR: 7, FilePath: "a.go",
		Comment: "comment text", Diff: "diff text",
		ArchSummary: "summary text", Evidence: "evidence text",
	}

	// Act
	got := CanonicalText(item)

	// Assert
	for _, want := range []string{"owner/repo", "7", "a.go", "comment text", "diff text", "summary text", "evidence text"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected canonical text to contain %q, got %q", want, got)
		}
	}
}

func TestRun_RepairsNullEmbeddingsAndSkipsFailures(t *testing.T) {
	// Arrange
	embedder := &fakeEmbedder{fail: map[string]bool{}}
	items := []models.ArchItem{
		{ID: 1, Repo: "owner/repo", PR: 1},
		{ID: 2, Repo: "owner/repo", PR: 2},
	}
	embedder.fail[CanonicalText(items[1])] = true

	var updated []int64
	update := func(ctx context.Context, id int64, vec pgvector.Vector) error {
		updated = append(updated, id)
		return nil
	}

	// Act
	repaired, failures := Run(context.Background(), items, embedder, update)

	// Assert
	if repaired != 1 {
		t.Errorf("expected 1 repaired row, got %d", repaired)
	}
	if len(failures) != 1 {
		t.Errorf("expected 1 failure, got %d", len(failures))
	}
	if len(updated) != 1 || updated[0] != 1 {
		t.Errorf("expected only item 1 to be updated, got %v", updated)
	}
}

func TestRun_NeverOverwritesExistingEmbedding(t *testing.T) {
	// Arrange
	existing := pgvector.NewVector([]float32{1, 2, 3})
	items := []models.ArchItem{
		{ID: 1, Embedding: &existing},
	}
	embedder := &fakeEmbedder{fail: map[string]bool{}}
	calls := 0
	update := func(ctx context.Context, id int64, vec pgvector.Vector) error {
		calls++
		return nil
	}

	// Act
	repaired, failures := Run(context.Background(), items, embedder, update)

	// Assert
	if repaired != 0 || len(failures) != 0 || calls != 0 {
		t.Errorf("expected row with existing embedding to be skipped entirely, got repaired=%d failures=%v calls=%d", repaired, failures, calls)
	}
}
