package llmclient

import (
	"context"
	"testing"
)

// MockCommandExecutor records the last invocation and returns a
// canned response, mirroring the teacher's mock-executor test idiom.
type MockCommandExecutor struct {
	response  []byte
	err       error
	lastInput string
}

func (m *MockCommandExecutor) Execute(ctx context.Context, cmd string, args []string, prompt string) ([]byte, error) {
	m.lastInput = prompt
	return m.response, m.err
}

func TestRun_Success(t *testing.T) {
	// Arrange
	mock := &MockCommandExecutor{response: []byte("  the analysis result  ")}
	d := NewDriver("claude", []string{"-p"})
	d.SetExecutor(mock)

	// Act
	got, err := d.Run(context.Background(), "analyze this comment")

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "the analysis result" {
		t.Errorf("expected trimmed output, got %q", got)
	}
	if mock.lastInput != "analyze this comment" {
		t.Errorf("expected prompt to be passed through, got %q", mock.lastInput)
	}
}

func TestRun_EmptyPrompt(t *testing.T) {
	// Arrange
	d := NewDriver("claude", []string{"-p"})
	d.SetExecutor(&MockCommandExecutor{})

	// Act
	_, err := d.Run(context.Background(), "")

	// Assert
	if err == nil {
		t.Error("expected error for empty prompt")
	}
}

func TestRun_CommandFailed(t *testing.T) {
	// Arrange
	mock := &MockCommandExecutor{err: context.DeadlineExceeded}
	d := NewDriver("claude", []string{"-p"})
	d.SetExecutor(mock)

	// Act
	_, err := d.Run(context.Background(), "prompt")

	// Assert
	if err == nil {
		t.Error("expected error when command fails")
	}
}

func TestRun_EmptyResponse(t *testing.T) {
	// Arrange
	mock := &MockCommandExecutor{response: []byte("")}
	d := NewDriver("claude", []string{"-p"})
	d.SetExecutor(mock)

	// Act
	_, err := d.Run(context.Background(), "prompt")

	// Assert
	if err == nil {
		t.Error("expected error for empty response")
	}
}
