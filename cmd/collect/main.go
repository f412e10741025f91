// Command collect pulls review comments from a code host, keeps only
// the ones carrying architectural signal, and appends them to the
// record file Enrich consumes.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/reviewrag/review-rag/internal/codehost"
	"github.com/reviewrag/review-rag/internal/filter"
	"github.com/reviewrag/review-rag/internal/recordfile"
	"github.com/reviewrag/review-rag/pkg/config"
	"github.com/reviewrag/review-rag/pkg/models"
)

func main() {
	var (
		configPath    = flag.String("config", "config.yaml", "Path to config file")
		repo          = flag.String("repo", "", "Repository to collect from (overrides config)")
		output        = flag.String("output", "data/pr_records.jsonl", "Record file to append to")
		prURL         = flag.String("pr-url", "", "Collect a single PR by URL")
		allMerged     = flag.Bool("all-merged", false, "Collect every merged PR")
		searchArchPRs = flag.Bool("search-arch-prs", true, "Also collect PRs found by searching for the configured architectural keywords")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	targetRepo := *repo
	if targetRepo == "" && len(cfg.GitHub.Repositories) > 0 {
		targetRepo = cfg.GitHub.Repositories[0]
	}
	if targetRepo == "" && *prURL == "" {
		fmt.Println("Usage: collect -repo owner/repo [-all-merged] [-search-arch-prs] [-config config.yaml]")
		fmt.Println("   or: collect -pr-url https://github.com/owner/repo/pull/123")
		os.Exit(1)
	}

	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		token = os.Getenv("CODEHOST_TOKEN")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	commentFilter := filter.NewCommentFilter()
	w, err := recordfile.OpenWriter(*output)
	if err != nil {
		log.Fatalf("failed to open record file: %v", err)
	}
	defer w.Close()

	total := 0

	if *prURL != "" {
		owner, name, number, err := codehost.ParsePRURL(*prURL)
		if err != nil {
			log.Fatalf("invalid PR URL: %v", err)
		}
		targetRepo = owner + "/" + name
		host := codehost.NewClient(targetRepo, token)
		n, err := collectPR(ctx, host, commentFilter, w, targetRepo, number, cfg.Keywords)
		if err != nil {
			log.Fatalf("failed to collect PR #%d: %v", number, err)
		}
		total += n
	} else {
		host := codehost.NewClient(targetRepo, token)

		var numbers []int
		if *allMerged {
			prs, err := host.ListMergedPRs(ctx)
			if err != nil {
				log.Fatalf("failed to list merged PRs: %v", err)
			}
			for _, pr := range prs {
				numbers = append(numbers, pr.Number)
			}
		}
		if *searchArchPRs && len(cfg.Keywords) > 0 {
			matched, err := host.SearchArchitecturalPRs(ctx, cfg.Keywords)
			if err != nil {
				log.Fatalf("failed to search architectural PRs: %v", err)
			}
			numbers = dedupeInts(append(numbers, matched...))
		}

		fmt.Printf("Collecting from %s: %d candidate PRs\n", targetRepo, len(numbers))
		for _, number := range numbers {
			n, err := collectPR(ctx, host, commentFilter, w, targetRepo, number, cfg.Keywords)
			if err != nil {
				fmt.Printf("skipping PR #%d: %v\n", number, err)
				continue
			}
			total += n
		}
	}

	fmt.Printf("Wrote %d new records to %s\n", total, *output)
}

// collectPR fetches a PR's metadata and review comments and writes the
// ones carrying architectural signal. Per spec §4.1, a comment is kept
// iff it passes the noise filter AND at least one configured keyword
// matches either the PR's title/body or the comment text itself.
func collectPR(ctx context.Context, host *codehost.Client, commentFilter *filter.CommentFilter, w *recordfile.Writer, repo string, number int, keywords map[string][]string) (int, error) {
	pr, err := host.GetPR(ctx, number)
	if err != nil {
		return 0, fmt.Errorf("fetch PR metadata: %w", err)
	}
	prRelevant := len(filter.MatchingConcerns(pr.Title+" "+pr.Body, keywords)) > 0

	comments, err := host.GetReviewComments(ctx, number)
	if err != nil {
		return 0, fmt.Errorf("fetch review comments: %w", err)
	}

	written := 0
	for _, c := range comments {
		if !commentFilter.IsUseful(c.Body, c.User.Login) {
			continue
		}
		if !prRelevant && len(filter.MatchingConcerns(c.Body, keywords)) == 0 {
			continue
		}
		rec := models.ReviewRecord{
			Repo:        repo,
			PR:          number,
			FilePath:    c.Path,
			LineStart:   c.OriginalLine,
			LineEnd:     c.Line,
			CommentBody: c.Body,
			ThreadJSON:  c.Raw,
		}
		if err := w.Append(rec); err != nil {
			return written, fmt.Errorf("append record: %w", err)
		}
		written++
	}
	return written, nil
}

func dedupeInts(nums []int) []int {
	seen := make(map[int]bool, len(nums))
	out := make([]int, 0, len(nums))
	for _, n := range nums {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
