package distill

import (
	"context"
	"testing"

	"github.com/reviewrag/review-rag/internal/store"
)

func mkRows(n int, dim int) []store.ClusterRow {
	rows := make([]store.ClusterRow, n)
	for i := range rows {
		emb := make([]float32, dim)
		// two well-separated groups so k-means has something to find
		offset := float32(0)
		if i%2 == 1 {
			offset = 10
		}
		for j := range emb {
			emb[j] = offset + float32(i%3)*0.01
		}
		rows[i] = store.ClusterRow{ID: int64(i), ArchSummary: "s", Embedding: emb}
	}
	return rows
}

func TestDominantDimension_PicksMostCommon(t *testing.T) {
	// Arrange
	rows := []store.ClusterRow{
		{Embedding: make([]float32, 768)},
		{Embedding: make([]float32, 768)},
		{Embedding: make([]float32, 1536)},
	}

	// Act
	dim := dominantDimension(rows)

	// Assert
	if dim != 768 {
		t.Errorf("expected dominant dimension 768, got %d", dim)
	}
}

func TestRunClustered_SkipsMismatchedDimensionRows(t *testing.T) {
	// Arrange
	rows := mkRows(12, 8)
	rows = append(rows, store.ClusterRow{ID: 99, Embedding: make([]float32, 4)})
	llm := &fakeLLM{responses: []string{
		`{"cluster_name":"x","guidelines":[{"concern":"c","guideline":"g","rationale":"r","examples":"e"}]}`,
	}}

	// Act
	guidelines, errs := RunClustered(context.Background(), rows, llm)

	// Assert
	if len(guidelines) == 0 {
		t.Fatalf("expected at least one guideline, got none (errs=%v)", errs)
	}
	foundDimWarning := false
	for _, e := range errs {
		if e != nil {
			foundDimWarning = true
		}
	}
	if !foundDimWarning {
		t.Errorf("expected a warning about the skipped mismatched-dimension row")
	}
	for _, g := range guidelines {
		if g.ClusterID == nil {
			t.Errorf("expected every guideline to carry a cluster id, got %+v", g)
		}
	}
}

func TestRunClustered_ProcessesClustersInAscendingLabelOrder(t *testing.T) {
	// Arrange
	rows := mkRows(12, 8)
	llm := &fakeLLM{responses: []string{
		`{"cluster_name":"x","guidelines":[{"concern":"c","guideline":"g","rationale":"r","examples":"e"}]}`,
	}}

	// Act
	guidelines, _ := RunClustered(context.Background(), rows, llm)

	// Assert
	if len(guidelines) < 2 {
		t.Fatalf("expected at least two guidelines from distinct clusters, got %d", len(guidelines))
	}
	for i := 1; i < len(guidelines); i++ {
		prev, cur := guidelines[i-1].ClusterID, guidelines[i].ClusterID
		if prev == nil || cur == nil {
			t.Fatalf("expected every guideline to carry a cluster id")
		}
		if *cur < *prev {
			t.Errorf("expected clusters in ascending order, got %d after %d", *cur, *prev)
		}
	}
}

func TestRunClustered_TooFewConsistentRowsReturnsError(t *testing.T) {
	// Arrange
	rows := []store.ClusterRow{{ID: 1, Embedding: []float32{0.1}}}
	llm := &fakeLLM{responses: []string{"{}"}}

	// Act
	guidelines, errs := RunClustered(context.Background(), rows, llm)

	// Assert
	if len(guidelines) != 0 {
		t.Errorf("expected no guidelines, got %+v", guidelines)
	}
	if len(errs) == 0 {
		t.Errorf("expected an error for too few rows to cluster")
	}
}
