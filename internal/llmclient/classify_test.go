package llmclient

import (
	"context"
	"testing"
)

func TestClassifyConcerns_FiltersUnknownTags(t *testing.T) {
	// Arrange
	mock := &MockCommandExecutor{response: []byte(`["correctness", "made-up-tag", "upgrade-safety"]`)}
	d := NewDriver("claude", []string{"-p"})
	d.SetExecutor(mock)
	vocabulary := []string{"correctness", "upgrade-safety", "maintainability"}

	// Act
	got, err := d.ClassifyConcerns(context.Background(), "this could break backward compat", vocabulary)

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 known tags kept, got %v", got)
	}
}

func TestClassifyConcerns_UnparseableOutputReturnsEmptySet(t *testing.T) {
	// Arrange
	mock := &MockCommandExecutor{response: []byte("I'm not sure, maybe correctness?")}
	d := NewDriver("claude", []string{"-p"})
	d.SetExecutor(mock)

	// Act
	got, err := d.ClassifyConcerns(context.Background(), "comment", []string{"correctness"})

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty set on unparseable output, got %v", got)
	}
}

func TestClassifyConcerns_WithCodeFence(t *testing.T) {
	// Arrange
	mock := &MockCommandExecutor{response: []byte("```json\n[\"maintainability\"]\n```")}
	d := NewDriver("claude", []string{"-p"})
	d.SetExecutor(mock)

	// Act
	got, err := d.ClassifyConcerns(context.Background(), "comment", []string{"maintainability"})

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != "maintainability" {
		t.Errorf("expected [maintainability], got %v", got)
	}
}
