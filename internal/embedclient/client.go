// Package embedclient calls the configured text-embedding HTTP
// endpoint and checks returned vectors against the schema-declared
// dimension.
package embedclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"
)

// Config configures a Client.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Dimension int
	Timeout   time.Duration
}

// Client calls an OpenAI-compatible embeddings endpoint, retrying on
// rate limits and transient server errors.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	dimension  int
	timeout    time.Duration
	httpClient *http.Client
	maxRetries int
}

// NewClient builds a Client from cfg, reading the API key from the
// named environment variable.
func NewClient(cfg Config) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := cfg.Model
	if model == "" {
		model = "text-embedding-3-small"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	apiKey := os.Getenv(cfg.APIKeyEnv)

	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		dimension:  cfg.Dimension,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: 5,
	}, nil
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type openAIResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed returns the embedding vector for text, checked against the
// configured dimension. A dimension mismatch is a fatal configuration
// error the caller should not retry past.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embeddingRequest{Model: c.model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("embedclient: marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		vec, retryable, retryAfter, err := c.doEmbed(ctx, body)
		if err == nil {
			if c.dimension > 0 && len(vec) != c.dimension {
				return nil, fmt.Errorf("embedclient: embedding dimension %d does not match configured dimension %d", len(vec), c.dimension)
			}
			return vec, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
		delay := retryDelay(attempt)
		if retryAfter > 0 {
			delay = retryAfter
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, fmt.Errorf("embedclient: exhausted retries: %w", lastErr)
}

func (c *Client) doEmbed(ctx context.Context, body []byte) ([]float32, bool, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, false, 0, fmt.Errorf("embedclient: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, 0, fmt.Errorf("embedclient: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, 0, fmt.Errorf("embedclient: read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return nil, true, retryAfter, fmt.Errorf("embedclient: transient status %d: %s", resp.StatusCode, string(respBody))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, 0, fmt.Errorf("embedclient: status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed openAIResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil || len(parsed.Data) == 0 {
		return nil, false, 0, fmt.Errorf("embedclient: unexpected response shape: %s", string(respBody))
	}

	return parsed.Data[0].Embedding, false, 0, nil
}

func retryDelay(attempt int) time.Duration {
	d := 200 * time.Millisecond << uint(attempt)
	cap := 5 * time.Second
	if d > cap {
		d = cap
	}
	return d
}

// Dimension returns the client's configured target dimension.
func (c *Client) Dimension() int {
	return c.dimension
}

func parseRetryAfter(header string) (time.Duration, bool) {
	if header == "" {
		return 0, false
	}
	secs, err := strconv.Atoi(header)
	if err != nil {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}
