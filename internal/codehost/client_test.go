package codehost

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
)

// fakeDoer returns a canned response for every request, in order.
type fakeDoer struct {
	responses []*http.Response
	requests  []*http.Request
	i         int
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	f.requests = append(f.requests, req)
	if f.i >= len(f.responses) {
		return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader("[]"))}, nil
	}
	resp := f.responses[f.i]
	f.i++
	return resp, nil
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(body))}
}

func TestListMergedPRs_FiltersUnmerged(t *testing.T) {
	// Arrange
	page1 := `[
		{"number":1,"title":"a","merged_at":"2024-01-01T00:00:00Z"},
		{"number":2,"title":"b","merged_at":null}
	]`
	page2 := `[]`
	doer := &fakeDoer{responses: []*http.Response{jsonResponse(200, page1), jsonResponse(200, page2)}}
	c := &Client{repo: "owner/repo", doer: doer}

	// Act
	prs, err := c.ListMergedPRs(context.Background())

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prs) != 1 || prs[0].Number != 1 {
		t.Errorf("expected only merged PR #1, got %+v", prs)
	}
}

func TestGetReviewComments_ParsesEachComment(t *testing.T) {
	// Arrange
	body := `[
		{"body":"this introduces a breaking change","path":"a.go","user":{"login":"reviewer1"}},
		{"body":"nit: typo","path":"b.go","user":{"login":"reviewer2"}}
	]`
	doer := &fakeDoer{responses: []*http.Response{jsonResponse(200, body)}}
	c := &Client{repo: "owner/repo", doer: doer}

	// Act
	comments, err := c.GetReviewComments(context.Background(), 42)

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(comments))
	}
	if comments[0].Path != "a.go" || comments[0].User.Login != "reviewer1" {
		t.Errorf("unexpected first comment: %+v", comments[0])
	}
}

func TestGetDiff_RequestsDiffAcceptHeader(t *testing.T) {
	// Arrange
	doer := &fakeDoer{responses: []*http.Response{jsonResponse(200, "diff --git a/x b/x")}}
	c := &Client{repo: "owner/repo", doer: doer}

	// Act
	diff, err := c.GetDiff(context.Background(), 7)

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff != "diff --git a/x b/x" {
		t.Errorf("unexpected diff body: %q", diff)
	}
	if got := doer.requests[0].Header.Get("Accept"); got != "application/vnd.github.v3.diff" {
		t.Errorf("expected diff accept header, got %q", got)
	}
}

func TestGet_NonOKStatusIsError(t *testing.T) {
	// Arrange
	doer := &fakeDoer{responses: []*http.Response{jsonResponse(404, "not found")}}
	c := &Client{repo: "owner/repo", doer: doer}

	// Act
	_, err := c.GetPR(context.Background(), 1)

	// Assert
	if err == nil {
		t.Error("expected error for non-200 response")
	}
}

func TestSearchArchitecturalPRs_DedupesAcrossGroups(t *testing.T) {
	// Arrange: two groups, overlapping PR number 5.
	page1 := `{"items":[{"number":1},{"number":5}]}`
	page2 := `{"items":[{"number":5},{"number":9}]}`
	doer := &fakeDoer{responses: []*http.Response{jsonResponse(200, page1), jsonResponse(200, page2)}}
	c := &Client{repo: "owner/repo", doer: doer}
	keywords := map[string][]string{
		"upgrade-safety":  {"breaking", "upgrade", "backward", "compat", "deprecate"},
		"maintainability": {"refactor", "design", "tech-debt", "readability", "duplicate"},
	}

	// Act
	numbers, err := c.SearchArchitecturalPRs(context.Background(), keywords)

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	seen := map[int]bool{}
	for _, n := range numbers {
		seen[n] = true
	}
	for _, want := range []int{1, 5, 9} {
		if !seen[want] {
			t.Errorf("expected PR #%d in deduped result, got %v", want, numbers)
		}
	}
	if len(numbers) != 3 {
		t.Errorf("expected 3 deduped PR numbers, got %d: %v", len(numbers), numbers)
	}
}

func TestParsePRURL_ValidURL(t *testing.T) {
	// Act
	owner, repo, number, err := ParsePRURL("https://github.com/example-org/example-repo/pull/123")

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if owner != "example-org" || repo != "example-repo" || number != 123 {
		t.Errorf("unexpected parse result: owner=%q repo=%q number=%d", owner, repo, number)
	}
}

func TestParsePRURL_InvalidURL(t *testing.T) {
	// Act
	_, _, _, err := ParsePRURL("https://example.com/not-a-pr")

	// Assert
	if err == nil {
		t.Error("expected error for non-github URL")
	}
}
