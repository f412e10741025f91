package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the declarative configuration shared by every stage
// binary. Each stage reads only the sections it needs.
type Config struct {
	ArchitecturalConcerns []string            `yaml:"architectural_concerns"`
	Keywords              map[string][]string `yaml:"keywords"`
	Retrieval             RetrievalConfig     `yaml:"retrieval"`
	Batch                 BatchConfig         `yaml:"batch"`
	GitHub                GitHubConfig        `yaml:"github"`
	Database              DatabaseConfig      `yaml:"database"`
	LLM                   LLMConfig           `yaml:"llm"`
	Embedding             EmbeddingConfig     `yaml:"embedding"`
	Distill               DistillConfig       `yaml:"distill"`
}

// RetrievalConfig is reserved for future online retrieval; the current
// core does not read these fields, but they round-trip through Load.
type RetrievalConfig struct {
	TopK     int `yaml:"top_k"`
	MinChars int `yaml:"min_chars"`
	MaxChars int `yaml:"max_chars"`
}

// BatchConfig bounds per-invocation work.
type BatchConfig struct {
	CommentsLimit int `yaml:"comments_limit"`
}

// GitHubConfig names the repositories Collect operates against.
type GitHubConfig struct {
	Repositories []string `yaml:"repositories"`
}

// DatabaseConfig configures the Postgres+pgvector store. DSN is
// normally supplied via the DATABASE_URL environment variable; the
// YAML value is a fallback for local/dev use.
type DatabaseConfig struct {
	DSN             string `yaml:"dsn"`
	VectorDimension int    `yaml:"vector_dimension"`
}

// LLMConfig configures the local LLM driver subprocess.
type LLMConfig struct {
	Command string        `yaml:"command"`
	Args    []string      `yaml:"args"`
	Retry   RetryConfig   `yaml:"retry"`
}

// RetryConfig holds retry/backoff settings for the LLM driver. They are
// loaded and defaulted here, but no stage reads them: the LLM driver
// makes a single attempt per prompt.
type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
}

// EmbeddingConfig configures the text-embedding HTTP collaborator.
type EmbeddingConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
	Dimension int    `yaml:"dimension"`
	TimeoutS  int    `yaml:"timeout_secs"`
}

// DistillConfig configures the chunked distillation strategy.
type DistillConfig struct {
	ChunkSize int `yaml:"chunk_size"`
}

// Load reads a config from the given path and fills in defaults for
// any field left unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Batch.CommentsLimit == 0 {
		cfg.Batch.CommentsLimit = 500
	}
	if cfg.Database.VectorDimension == 0 {
		cfg.Database.VectorDimension = 768
	}
	if cfg.LLM.Command == "" {
		cfg.LLM.Command = "claude"
	}
	if len(cfg.LLM.Args) == 0 {
		cfg.LLM.Args = []string{"-p"}
	}
	if cfg.LLM.Retry.MaxAttempts == 0 {
		cfg.LLM.Retry.MaxAttempts = 3
	}
	if cfg.LLM.Retry.InitialDelay == 0 {
		cfg.LLM.Retry.InitialDelay = time.Second
	}
	if cfg.LLM.Retry.MaxDelay == 0 {
		cfg.LLM.Retry.MaxDelay = 10 * time.Second
	}
	if cfg.Embedding.APIKeyEnv == "" {
		cfg.Embedding.APIKeyEnv = "EMBEDDING_API_KEY"
	}
	if cfg.Embedding.Dimension == 0 {
		cfg.Embedding.Dimension = cfg.Database.VectorDimension
	}
	if cfg.Embedding.TimeoutS == 0 {
		cfg.Embedding.TimeoutS = 30
	}
	if cfg.Distill.ChunkSize == 0 {
		cfg.Distill.ChunkSize = 5
	}
}
