// Package distill synthesizes ArchItem rows into architectural
// guidelines, via a fixed-size chunking strategy or an embedding
// clustering strategy.
package distill

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/reviewrag/review-rag/internal/jsonx"
	"github.com/reviewrag/review-rag/internal/store"
	"github.com/reviewrag/review-rag/pkg/models"
)

const (
	maxGuidelineWords = 125
	maxRationaleWords = 240
	maxExamplesWords  = 430
)

// LLM is the narrow prompt/response collaborator chunked and clustered
// distillation depend on.
type LLM interface {
	Run(ctx context.Context, prompt string) (string, error)
}

type signal struct {
	Concerns []string `json:"concerns"`
	Summary  string   `json:"summary"`
	Evidence string   `json:"evidence"`
}

// Chunk splits rows into fixed-size groups, preserving order. The
// final group may be shorter than size.
func Chunk(rows []store.DistillRow, size int) [][]store.DistillRow {
	if size <= 0 {
		size = 1
	}
	var chunks [][]store.DistillRow
	for i := 0; i < len(rows); i += size {
		end := i + size
		if end > len(rows) {
			end = len(rows)
		}
		chunks = append(chunks, rows[i:end])
	}
	return chunks
}

func chunkedPrompt(rows []store.DistillRow) (string, error) {
	signals := make([]signal, 0, len(rows))
	for _, r := range rows {
		signals = append(signals, signal{Concerns: r.Concerns, Summary: r.ArchSummary, Evidence: r.Evidence})
	}
	body, err := json.MarshalIndent(signals, "", "  ")
	if err != nil {
		return "", fmt.Errorf("distill: marshal chunk signals: %w", err)
	}
	return fmt.Sprintf(`You are a senior cloud-native architect.

Using the following PR-derived architectural signals, generate ONLY a JSON array.
No markdown. No explanation. Only valid JSON.

Each element MUST be an object with fields:
  concern
  guideline
  rationale
  examples

HARD LENGTH LIMITS (do not exceed):
- guideline: max %d words
- rationale: max %d words
- examples: max %d words
If needed, shorten aggressively. Do NOT produce long paragraphs.
Output must always be a SMALL JSON array.

Input data:
%s`, maxGuidelineWords, maxRationaleWords, maxExamplesWords, body), nil
}

// RunChunked processes rows in fixed-size chunks, calling the LLM once
// per chunk and accumulating every chunk's guidelines. A chunk whose
// response fails to parse is skipped and does not abort the run.
func RunChunked(ctx context.Context, rows []store.DistillRow, chunkSize int, llm LLM) ([]models.Guideline, []error) {
	var all []models.Guideline
	var errs []error

	for i, chunk := range Chunk(rows, chunkSize) {
		prompt, err := chunkedPrompt(chunk)
		if err != nil {
			errs = append(errs, fmt.Errorf("distill: chunk %d: %w", i, err))
			continue
		}

		raw, err := llm.Run(ctx, prompt)
		if err != nil {
			errs = append(errs, fmt.Errorf("distill: chunk %d: llm: %w", i, err))
			continue
		}

		extracted, err := jsonx.ExtractArray(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("distill: chunk %d: extract: %w", i, err))
			continue
		}

		var guidelines []models.Guideline
		if err := json.Unmarshal([]byte(extracted), &guidelines); err != nil {
			errs = append(errs, fmt.Errorf("distill: chunk %d: unmarshal: %w", i, err))
			continue
		}

		for j := range guidelines {
			guidelines[j] = truncateWords(guidelines[j])
		}
		all = append(all, guidelines...)
	}

	return all, errs
}

func truncateWords(g models.Guideline) models.Guideline {
	g.Guideline = capWords(g.Guideline, maxGuidelineWords)
	g.Rationale = capWords(g.Rationale, maxRationaleWords)
	g.Examples = capWords(g.Examples, maxExamplesWords)
	return g
}

func capWords(text string, limit int) string {
	words := strings.Fields(text)
	if len(words) <= limit {
		return text
	}
	return strings.Join(words[:limit], " ")
}
