package reduce

import "testing"

func TestComment_StripsFencedCodeBlock(t *testing.T) {
	// Arrange
	body := "Looks good but ```go\nfunc f() {}\n``` should be renamed."

	// Act
	got := Comment(body)

	// Assert
	want := "Looks good but should be renamed."
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestComment_StripsQuotedLines(t *testing.T) {
	// Arrange
	body := "> previous reviewer said this\nI agree, please fix the validation."

	// Act
	got := Comment(body)

	// Assert
	want := "I agree, please fix the validation."
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestComment_CollapsesWhitespace(t *testing.T) {
	// Arrange
	body := "too   many\n\n  spaces   here"

	// Act
	got := Comment(body)

	// Assert
	want := "too many spaces here"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestComment_EmptyInput(t *testing.T) {
	// Arrange
	body := ""

	// Act
	got := Comment(body)

	// Assert
	if got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}
