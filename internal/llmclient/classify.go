package llmclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/reviewrag/review-rag/internal/jsonx"
)

const classifyPromptTemplate = `You are an experienced software architecture reviewer.

Given the following PR review comment, identify which architectural concerns apply.
Possible concerns (pick any that fit):

%s

Return ONLY a JSON array of strings, e.g.:

["correctness", "upgrade-safety"]

Comment:
%s
`

// ClassifyConcerns asks the LLM which of the configured architectural
// concerns apply to comment. Unknown tags returned by the LLM are
// silently dropped (I3); if the LLM output cannot be parsed as a JSON
// array at all, the empty set is returned rather than falling back to
// the raw text, since an unparseable tag is not a valid concern.
func (d *Driver) ClassifyConcerns(ctx context.Context, comment string, vocabulary []string) ([]string, error) {
	prompt := fmt.Sprintf(classifyPromptTemplate, bulletList(vocabulary), comment)

	out, err := d.Run(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("llmclient: classify concerns: %w", err)
	}

	arr, err := jsonx.ExtractArray(out)
	if err != nil {
		return nil, nil
	}

	var tags []string
	if err := json.Unmarshal([]byte(arr), &tags); err != nil {
		return nil, nil
	}

	allowed := make(map[string]bool, len(vocabulary))
	for _, v := range vocabulary {
		allowed[v] = true
	}

	var kept []string
	for _, tag := range tags {
		if allowed[tag] {
			kept = append(kept, tag)
		}
	}
	return kept, nil
}

func bulletList(items []string) string {
	var b strings.Builder
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(item)
		b.WriteString("\n")
	}
	return b.String()
}
