package llmclient

import (
	"context"
	"fmt"
	"strings"
)

const summarizePromptTemplate = `You are an expert software architectural reviewer.

Summarize the architectural significance of this PR review comment, focusing on:
- correctness
- upgrade-safety
- maintainability
- ease-of-use
- performance tradeoffs
- extensibility

Write 4-6 sentences, plain text, no bullet points, no JSON.

---
Diff context:
%s

---
Comment:
%s

---
Concerns (heuristic labels):
%s
`

// Summarize asks the LLM for a free-form architectural summary of a
// review comment, given its diff context and classified concerns.
func (d *Driver) Summarize(ctx context.Context, diff, comment string, concerns []string) (string, error) {
	prompt := fmt.Sprintf(summarizePromptTemplate, diff, comment, strings.Join(concerns, ", "))

	out, err := d.Run(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("llmclient: summarize: %w", err)
	}
	return out, nil
}
