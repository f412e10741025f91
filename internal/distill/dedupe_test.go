package distill

import (
	"testing"

	"github.com/reviewrag/review-rag/pkg/models"
)

func TestDedupe_RemovesExactDuplicate(t *testing.T) {
	// Arrange
	guidelines := []models.Guideline{
		{Concern: "a", Guideline: "always validate input", Rationale: "short"},
		{Concern: "a", Guideline: "always validate input", Rationale: "short too"},
	}

	// Act
	got := Dedupe(guidelines, DefaultSimilarityThreshold)

	// Assert
	if len(got) != 1 {
		t.Fatalf("expected exact duplicate to collapse to 1, got %d", len(got))
	}
}

func TestDedupe_KeepsTheMoreDetailedRationale(t *testing.T) {
	// Arrange
	guidelines := []models.Guideline{
		{Guideline: "always validate the incoming webhook payload", Rationale: "short"},
		{Guideline: "always validate the incoming webhook payloads", Rationale: "a much more detailed explanation of why this matters"},
	}

	// Act
	got := Dedupe(guidelines, 0.8)

	// Assert
	if len(got) != 1 {
		t.Fatalf("expected near-duplicate to collapse to 1, got %d", len(got))
	}
	if got[0].Rationale != guidelines[1].Rationale {
		t.Errorf("expected the more detailed rationale to survive, got %q", got[0].Rationale)
	}
}

func TestDedupe_KeepsDistinctGuidelines(t *testing.T) {
	// Arrange
	guidelines := []models.Guideline{
		{Guideline: "always validate webhook payloads before processing"},
		{Guideline: "never block the reconcile loop on a network call"},
	}

	// Act
	got := Dedupe(guidelines, DefaultSimilarityThreshold)

	// Assert
	if len(got) != 2 {
		t.Errorf("expected both distinct guidelines to survive, got %d", len(got))
	}
}
