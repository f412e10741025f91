// Package filter decides whether a raw review comment carries enough
// architectural signal to be worth collecting, and whether a PR's
// title/body matches the configured keyword vocabulary.
package filter

import "strings"

// CommentFilter excludes noise comments (bot authors, short
// approvals/acks) before a comment is written to the record file.
type CommentFilter struct {
	minLength       int
	excludePatterns []string
	excludeAuthors  []string
}

// NewCommentFilter returns a filter with the teacher's original
// noise-exclusion list: short approval/ack phrases and known bot
// accounts.
func NewCommentFilter() *CommentFilter {
	return &CommentFilter{
		minLength: 10,
		excludePatterns: []string{
			"lgtm",
			"looks good to me",
			"approved",
			"👍",
			"✅",
			"+1",
			"thanks",
			"thank you",
			"done",
			"fixed",
			"ok",
			"sure",
			"yes",
			"no",
			"nope",
			"agree",
			"agreed",
			"automatically generated",
			"bumps version",
			"dependency update",
		},
		excludeAuthors: []string{
			"github-actions[bot]",
			"dependabot[bot]",
			"renovate[bot]",
			"codecov[bot]",
		},
	}
}

// IsUseful reports whether a comment body from the given author
// should be kept.
func (f *CommentFilter) IsUseful(body, author string) bool {
	for _, excluded := range f.excludeAuthors {
		if strings.EqualFold(author, excluded) {
			return false
		}
	}

	if !f.HasMinimumLength(body) {
		return false
	}

	bodyLower := strings.ToLower(strings.TrimSpace(body))
	for _, pattern := range f.excludePatterns {
		if bodyLower == pattern || isWordMatch(bodyLower, pattern) {
			return false
		}
	}

	return true
}

// HasMinimumLength reports whether the trimmed body meets the minimum
// character count.
func (f *CommentFilter) HasMinimumLength(body string) bool {
	return len(strings.TrimSpace(body)) >= f.minLength
}

func isWordMatch(text, pattern string) bool {
	for _, word := range strings.Fields(text) {
		if strings.Trim(word, ".,!?;:") == pattern {
			return true
		}
	}
	return false
}

// MatchingConcerns returns every configured concern whose keyword list
// has a substring match in text (case-insensitive), grounded on the
// title/body keyword match the original collector uses to decide
// whether a PR is architecture-related.
func MatchingConcerns(text string, keywords map[string][]string) []string {
	lower := strings.ToLower(text)
	var matched []string
	for concern, terms := range keywords {
		for _, term := range terms {
			if strings.Contains(lower, strings.ToLower(term)) {
				matched = append(matched, concern)
				break
			}
		}
	}
	return matched
}
