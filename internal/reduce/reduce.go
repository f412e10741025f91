// Package reduce strips noise from raw review comment text before it
// is sent to the LLM for classification and summarization.
package reduce

import (
	"regexp"
	"strings"
)

var (
	fencedCodeBlock = regexp.MustCompile(`(?s)` + "```" + `.*?` + "```")
	quotedLine      = regexp.MustCompile(`(?m)^>.*$`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
)

// Comment strips fenced code blocks and quoted-reply lines from a raw
// comment body and collapses runs of whitespace, keeping the core
// natural-language signal for downstream classification/summarization.
func Comment(body string) string {
	c := fencedCodeBlock.ReplaceAllString(body, "")
	c = quotedLine.ReplaceAllString(c, "")
	c = whitespaceRun.ReplaceAllString(c, " ")
	return strings.TrimSpace(c)
}
