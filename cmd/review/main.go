// Command review applies a distilled guideline corpus to a pull
// request or local diff file and prints a Markdown architectural
// review to stdout.
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
	"github.com/reviewrag/review-rag/internal/llmclient"
	"github.com/reviewrag/review-rag/internal/review"
	"github.com/reviewrag/review-rag/pkg/config"
)

func main() {
	var (
		configPath   = flag.String("config", "config.yaml", "Path to config file")
		guidelinesIn = flag.String("guidelines", "data/guidelines_clustered.json", "Guideline corpus file")
	)
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: review [-config config.yaml] [-guidelines file.json] <github-pr-url|diff-file>")
		os.Exit(1)
	}
	arg := flag.Arg(0)

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	guidelines, err := review.LoadGuidelines(*guidelinesIn)
	if err != nil {
		log.Fatalf("failed to load guidelines: %v", err)
	}

	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		token = os.Getenv("CODEHOST_TOKEN")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var host *codehost.Client
	diff, err := review.ResolveDiff(ctx, arg, codehost.ParsePRURL, diffSourceFor(arg, token, &host))
	if err != nil {
		log.Fatalf("%v", err)
	}

	llm := llmclient.NewDriver(cfg.LLM.Command, cfg.LLM.Args)
	out, err := review.Run(ctx, guidelines, diff, llm)
	if err != nil {
		log.Fatalf("failed to generate review: %v", err)
	}

	fmt.Println(out)
}

// diffSourceFor constructs the codehost client lazily, only if arg
// turns out to be a PR URL, so a local-file invocation never needs a
// token or makes a network call.
func diffSourceFor(arg, token string, host **codehost.Client) review.DiffSource {
	return lazyHost{arg: arg, token: token, host: host}
}

type lazyHost struct {
	arg   string
	token string
	host  **codehost.Client
}

func (l lazyHost) GetDiff(ctx context.Context, number int) (string, error) {
	owner, repo, _, err := codehost.ParsePRURL(l.arg)
	if err != nil {
		return "", err
	}
	*l.host = codehost.NewClient(owner+"/"+repo, l.token)
	return (*l.host).GetDiff(ctx, number)
}
