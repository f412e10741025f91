// Package review applies a distilled guideline corpus to a new diff,
// producing a Markdown architectural review with no retrieval or
// ranking: the entire corpus is the prompt context.
package review

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/reviewrag/review-rag/pkg/models"
)

// DiffSource fetches a diff, either from a code host or from disk.
type DiffSource interface {
	GetDiff(ctx context.Context, number int) (string, error)
}

// LLM is the narrow prompt/response collaborator Review depends on.
type LLM interface {
	Run(ctx context.Context, prompt string) (string, error)
}

// ResolveDiff fetches the diff for a pull-request URL via host, or
// reads it from a local file when arg is not a PR URL. A fetch
// failure or missing file is fatal to the caller.
func ResolveDiff(ctx context.Context, arg string, parsePRURL func(string) (owner, repo string, number int, err error), host DiffSource) (string, error) {
	if strings.Contains(arg, "github.com") && strings.Contains(arg, "/pull/") {
		_, _, number, err := parsePRURL(arg)
		if err != nil {
			return "", fmt.Errorf("review: invalid pull request URL %q: %w", arg, err)
		}
		diff, err := host.GetDiff(ctx, number)
		if err != nil {
			return "", fmt.Errorf("review: fetch diff for PR #%d: %w", number, err)
		}
		return diff, nil
	}

	data, err := os.ReadFile(arg)
	if err != nil {
		return "", fmt.Errorf("review: read diff file %q: %w", arg, err)
	}
	return string(data), nil
}

// LoadGuidelines reads the guideline corpus written by Distill.
func LoadGuidelines(path string) ([]models.Guideline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("review: read guideline corpus %q: %w", path, err)
	}
	var guidelines []models.Guideline
	if err := json.Unmarshal(data, &guidelines); err != nil {
		return nil, fmt.Errorf("review: parse guideline corpus %q: %w", path, err)
	}
	return guidelines, nil
}

func prompt(guidelines []models.Guideline, diff string) (string, error) {
	body, err := json.MarshalIndent(guidelines, "", "  ")
	if err != nil {
		return "", fmt.Errorf("review: marshal guidelines: %w", err)
	}
	return fmt.Sprintf(`You are an expert architect reviewing a code change.

Using the following guidelines:
%s

Review this diff:
%s

Return a markdown architectural review.`, body, diff), nil
}

// Run builds the review prompt from the guideline corpus and the
// diff, and returns the LLM's Markdown response verbatim.
func Run(ctx context.Context, guidelines []models.Guideline, diff string, llm LLM) (string, error) {
	p, err := prompt(guidelines, diff)
	if err != nil {
		return "", err
	}
	out, err := llm.Run(ctx, p)
	if err != nil {
		return "", fmt.Errorf("review: llm: %w", err)
	}
	return out, nil
}
