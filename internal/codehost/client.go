// Package codehost is the narrow interface the core consumes from the
// remote code-hosting API: PR listing, PR comment retrieval, and diff
// fetch. It keeps the teacher's injectable-transport testing idiom
// (there: CommandExecutor wrapping the gh CLI; here: Doer wrapping
// net/http) but talks to the REST/search API directly over HTTP so a
// caller-supplied token drives authentication per run, per stage.
package codehost

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/oauth2"
)

const apiBase = "https://api.github.com"

// PullRequest is a minimal view of a listed or fetched pull request.
type PullRequest struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	URL       string    `json:"html_url"`
	CreatedAt time.Time `json:"created_at"`
	MergedAt  *time.Time `json:"merged_at"`
	Author    Author    `json:"user"`
}

// Author is a GitHub account reference.
type Author struct {
	Login string `json:"login"`
}

// ReviewComment is a single inline review comment on a pull request.
type ReviewComment struct {
	Body         string          `json:"body"`
	Path         string          `json:"path"`
	OriginalLine *int            `json:"original_line"`
	Line         *int            `json:"line"`
	User         Author          `json:"user"`
	URL          string          `json:"html_url"`
	Raw          json.RawMessage `json:"-"`
}

type searchResult struct {
	Items []struct {
		Number int `json:"number"`
	} `json:"items"`
}

// Doer is the injectable HTTP transport. *http.Client satisfies it;
// tests supply a fake to avoid real network calls, mirroring the
// teacher's CommandExecutor test-injection idiom.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the code-host REST and search APIs for a single
// owner/repo, authenticated via an OAuth2 bearer token.
type Client struct {
	repo string
	doer Doer
}

// NewClient builds a Client authenticated with token against repo
// ("owner/name"). The token is wrapped in an oauth2.StaticTokenSource
// so the resulting transport attaches the bearer header to every
// request without the caller re-specifying it per call.
func NewClient(repo, token string) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &Client{
		repo: repo,
		doer: oauth2.NewClient(context.Background(), ts),
	}
}

// SetDoer overrides the transport (test hook).
func (c *Client) SetDoer(d Doer) {
	c.doer = d
}

func (c *Client) get(ctx context.Context, url string, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("codehost: build request: %w", err)
	}
	if accept == "" {
		accept = "application/vnd.github+json"
	}
	req.Header.Set("Accept", accept)

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("codehost: request %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("codehost: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("codehost: %s returned %d: %s", url, resp.StatusCode, string(body))
	}
	return body, nil
}

// ListMergedPRs pages through closed pull requests and returns only
// the ones with a non-nil MergedAt.
func (c *Client) ListMergedPRs(ctx context.Context) ([]PullRequest, error) {
	var merged []PullRequest
	for page := 1; ; page++ {
		url := fmt.Sprintf("%s/repos/%s/pulls?state=closed&per_page=100&page=%d", apiBase, c.repo, page)
		body, err := c.get(ctx, url, "")
		if err != nil {
			return nil, err
		}
		var prs []PullRequest
		if err := json.Unmarshal(body, &prs); err != nil {
			return nil, fmt.Errorf("codehost: parse PR list: %w", err)
		}
		if len(prs) == 0 {
			break
		}
		for _, pr := range prs {
			if pr.MergedAt != nil {
				merged = append(merged, pr)
			}
		}
	}
	return merged, nil
}

// keywordGroups splits a concern→keywords map into fixed-size groups
// of bare terms, respecting the code-host search API's operator cap
// per query (GitHub search tolerates at most ~5 OR terms reliably).
func keywordGroups(keywords map[string][]string, groupSize int) [][]string {
	var all []string
	for _, terms := range keywords {
		all = append(all, terms...)
	}
	var groups [][]string
	for i := 0; i < len(all); i += groupSize {
		end := i + groupSize
		if end > len(all) {
			end = len(all)
		}
		groups = append(groups, all[i:end])
	}
	return groups
}

// SearchArchitecturalPRs issues one search query per keyword group
// (bypassing the host's query-operator cap) and returns the
// deduplicated set of matching merged-PR numbers.
func (c *Client) SearchArchitecturalPRs(ctx context.Context, keywords map[string][]string) ([]int, error) {
	numbers := mapset.NewSet[int]()
	for _, group := range keywordGroups(keywords, 5) {
		if len(group) == 0 {
			continue
		}
		query := strings.Join(group, "+OR+")
		url := fmt.Sprintf("%s/search/issues?q=repo:%s+is:pr+is:merged+(%s)", apiBase, c.repo, query)
		body, err := c.get(ctx, url, "")
		if err != nil {
			return nil, err
		}
		var result searchResult
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("codehost: parse search result: %w", err)
		}
		for _, item := range result.Items {
			numbers.Add(item.Number)
		}
	}
	return numbers.ToSlice(), nil
}

// GetPR fetches a single pull request's metadata.
func (c *Client) GetPR(ctx context.Context, number int) (*PullRequest, error) {
	url := fmt.Sprintf("%s/repos/%s/pulls/%d", apiBase, c.repo, number)
	body, err := c.get(ctx, url, "")
	if err != nil {
		return nil, err
	}
	var pr PullRequest
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, fmt.Errorf("codehost: parse PR: %w", err)
	}
	return &pr, nil
}

// GetReviewComments fetches every inline review comment on a pull
// request (the `.../pulls/{n}/comments` endpoint, not the top-level
// issue-comment endpoint).
func (c *Client) GetReviewComments(ctx context.Context, number int) ([]ReviewComment, error) {
	url := fmt.Sprintf("%s/repos/%s/pulls/%d/comments", apiBase, c.repo, number)
	body, err := c.get(ctx, url, "")
	if err != nil {
		return nil, err
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(body, &raws); err != nil {
		return nil, fmt.Errorf("codehost: parse review comments: %w", err)
	}

	comments := make([]ReviewComment, 0, len(raws))
	for _, raw := range raws {
		var c ReviewComment
		if err := json.Unmarshal(raw, &c); err != nil {
			continue
		}
		c.Raw = raw
		comments = append(comments, c)
	}
	return comments, nil
}

// GetDiff fetches a pull request's unified diff.
func (c *Client) GetDiff(ctx context.Context, number int) (string, error) {
	url := fmt.Sprintf("%s/repos/%s/pulls/%d", apiBase, c.repo, number)
	body, err := c.get(ctx, url, "application/vnd.github.v3.diff")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// GetDiffByURL fetches a diff for a PR referenced by its full web URL,
// parsing out owner/repo/number first.
func GetDiffByURL(ctx context.Context, prURL, token string) (string, error) {
	owner, repo, number, err := ParsePRURL(prURL)
	if err != nil {
		return "", err
	}
	c := NewClient(owner+"/"+repo, token)
	return c.GetDiff(ctx, number)
}

// ParsePRURL extracts owner, repo, and PR number from a PR web URL of
// the form https://github.com/{owner}/{repo}/pull/{number}.
func ParsePRURL(prURL string) (owner, repo string, number int, err error) {
	const marker = "github.com/"
	idx := strings.Index(prURL, marker)
	if idx == -1 {
		return "", "", 0, fmt.Errorf("codehost: not a github.com PR URL: %s", prURL)
	}
	rest := prURL[idx+len(marker):]
	parts := strings.Split(rest, "/")
	if len(parts) < 4 || parts[2] != "pull" {
		return "", "", 0, fmt.Errorf("codehost: malformed PR URL: %s", prURL)
	}
	n, err := strconv.Atoi(parts[3])
	if err != nil {
		return "", "", 0, fmt.Errorf("codehost: malformed PR number in URL: %s", prURL)
	}
	return parts[0], parts[1], n, nil
}
