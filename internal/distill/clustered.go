package distill

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/reviewrag/review-rag/internal/cluster"
	"github.com/reviewrag/review-rag/internal/jsonx"
	"github.com/reviewrag/review-rag/internal/store"
	"github.com/reviewrag/review-rag/pkg/models"
)

const maxItemsPerCluster = 40

// clusteredSeed fixes the k-means initialization so repeated runs over
// the same embedding set produce the same cluster assignments.
const clusteredSeed = 42

type clusterItem struct {
	ID       int64    `json:"id"`
	Concerns []string `json:"concerns"`
	Summary  string   `json:"summary"`
	Evidence string   `json:"evidence"`
}

type clusterResponse struct {
	ClusterName string             `json:"cluster_name"`
	Guidelines  []models.Guideline `json:"guidelines"`
}

// dominantDimension returns the embedding length that occurs most
// often across rows, so mismatched dimensions (left over from a
// schema migration mid-flight) can be excluded rather than crashing
// the clustering step on a jagged matrix.
func dominantDimension(rows []store.ClusterRow) int {
	counts := make(map[int]int)
	for _, r := range rows {
		counts[len(r.Embedding)]++
	}
	best, bestCount := 0, 0
	for dim, count := range counts {
		if count > bestCount {
			best, bestCount = dim, count
		}
	}
	return best
}

func clusteredPrompt(items []clusterItem) (string, error) {
	body, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", fmt.Errorf("distill: marshal cluster items: %w", err)
	}
	return fmt.Sprintf(`You are a senior Kubernetes / OpenShift architect.

You are given a cluster of PR review comments that are semantically similar.
From these, derive *cluster-level* architectural guidelines.

Requirements:
- Focus ONLY on themes present in this cluster (do NOT invent unrelated topics).
- Merge duplicate ideas into a single guideline where possible.
- Be concrete and actionable (think of this as an internal architecture handbook).
- Emphasize upgrade-safety, maintainability, ease-of-use, performance tradeoffs,
  correctness, extensibility, and API/validation contracts as applicable.

Output format:
Return ONLY a JSON object with two fields. No markdown, no prose, no explanation.
{
  "cluster_name": "short-kebab-case-name describing the main theme",
  "guidelines": [
    {
      "concern": "short label for the primary concern",
      "guideline": "clear directive phrased as a rule",
      "rationale": "2-4 sentences explaining why this matters",
      "examples": "concrete examples or patterns from the input situations"
    }
  ]
}

Here is the input cluster data as JSON:

%s`, body), nil
}

// RunClustered embeds each row's concern/summary/evidence triple in a
// k-means cluster over its embedding, then asks the LLM once per
// cluster for cluster-level guidelines. Rows whose embedding dimension
// does not match the dominant dimension are skipped rather than
// distorting the clustering, and a cluster whose response fails to
// parse is skipped without aborting the run.
func RunClustered(ctx context.Context, rows []store.ClusterRow, llm LLM) ([]models.Guideline, []error) {
	var errs []error
	if len(rows) == 0 {
		return nil, nil
	}

	dim := dominantDimension(rows)
	var kept []store.ClusterRow
	skipped := 0
	for _, r := range rows {
		if len(r.Embedding) != dim {
			skipped++
			continue
		}
		kept = append(kept, r)
	}
	if skipped > 0 {
		errs = append(errs, fmt.Errorf("distill: skipped %d rows with embedding dimension != %d", skipped, dim))
	}
	if len(kept) < 2 {
		errs = append(errs, fmt.Errorf("distill: not enough consistently-dimensioned rows to cluster (%d)", len(kept)))
		return nil, errs
	}

	points := make([][]float64, len(kept))
	for i, r := range kept {
		pt := make([]float64, len(r.Embedding))
		for j, v := range r.Embedding {
			pt[j] = float64(v)
		}
		points[i] = pt
	}

	k := cluster.ChooseK(len(points))
	result, err := cluster.Run(points, k, clusteredSeed)
	if err != nil {
		return nil, append(errs, fmt.Errorf("distill: cluster: %w", err))
	}

	clusters := make(map[int][]clusterItem)
	for i, label := range result.Labels {
		if _, ok := result.Centroids[label]; !ok {
			continue // degenerated empty cluster; drop its points
		}
		r := kept[i]
		clusters[label] = append(clusters[label], clusterItem{
			ID: r.ID, Concerns: r.Concerns, Summary: r.ArchSummary, Evidence: r.Evidence,
		})
	}

	labels := make([]int, 0, len(clusters))
	for label := range clusters {
		labels = append(labels, label)
	}
	sort.Ints(labels)

	var all []models.Guideline
	for _, label := range labels {
		items := clusters[label]
		if len(items) > maxItemsPerCluster {
			items = items[:maxItemsPerCluster]
		}

		prompt, err := clusteredPrompt(items)
		if err != nil {
			errs = append(errs, fmt.Errorf("distill: cluster %d: %w", label, err))
			continue
		}

		raw, err := llm.Run(ctx, prompt)
		if err != nil {
			errs = append(errs, fmt.Errorf("distill: cluster %d: llm: %w", label, err))
			continue
		}

		extracted, err := jsonx.ExtractObject(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("distill: cluster %d: extract: %w", label, err))
			continue
		}

		var resp clusterResponse
		if err := json.Unmarshal([]byte(extracted), &resp); err != nil {
			errs = append(errs, fmt.Errorf("distill: cluster %d: unmarshal: %w", label, err))
			continue
		}

		id := label
		for i := range resp.Guidelines {
			resp.Guidelines[i] = truncateWords(resp.Guidelines[i])
			resp.Guidelines[i].ClusterID = &id
		}
		all = append(all, resp.Guidelines...)
	}

	return all, errs
}
