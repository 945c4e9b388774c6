// Package config loads tool configuration: YAML file over defaults, with
// .env / environment overrides for endpoints and secrets.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds global configuration.
type Config struct {
	LLM       LLMConfig       `yaml:"llm"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Storage   StorageConfig   `yaml:"storage"`
	Audit     AuditConfig     `yaml:"audit"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LLMConfig points at an OpenAI-compatible chat completion endpoint.
type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	// MaxOutputTokens of 0 leaves the model default in place.
	MaxOutputTokens int `yaml:"max_output_tokens"`
}

type EmbeddingConfig struct {
	Model  string `yaml:"model"`
	APIKey string `yaml:"api_key"`
}

type StorageConfig struct {
	// Backend selects the change-detection cache: "sqlite" or "redis".
	Backend   string `yaml:"backend"`
	DataDir   string `yaml:"data_dir"`
	RedisURL  string `yaml:"redis_url"`
	QdrantURL string `yaml:"qdrant_url"`
}

type AuditConfig struct {
	// CharLimit is the weighted character budget per prompt payload.
	CharLimit int      `yaml:"char_limit"`
	Workers   int      `yaml:"workers"`
	Presets   []string `yaml:"presets"`
}

type LoggingConfig struct {
	Level string `yaml:"level"` // error|warn|info|debug
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			BaseURL: "http://localhost:11434/v1",
			Model:   "gpt-oss:120b",
		},
		Embedding: EmbeddingConfig{
			Model: "voyage-code-3",
		},
		Storage: StorageConfig{
			Backend:   "sqlite",
			DataDir:   defaultDataDir(),
			RedisURL:  "",
			QdrantURL: "localhost:6334",
		},
		Audit: AuditConfig{
			CharLimit: 2000,
			Workers:   4,
			Presets:   []string{"security", "readability"},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads config from path, falling back to defaults when the file is
// absent, then applies environment overrides. A .env next to the working
// directory is honored the same way the original dotenv setup was.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	// Missing .env is fine; environment variables still apply.
	_ = godotenv.Load()
	cfg.applyEnv()

	return cfg, nil
}

// DefaultPath returns the standard config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".code-auditor.yaml"
	}
	return filepath.Join(home, ".config", "code-auditor", "config.yaml")
}

func (c *Config) applyEnv() {
	if v := os.Getenv("LLM_API_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_MODEL_NAME"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("LLM_MAX_OUTPUT_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.LLM.MaxOutputTokens = n
		}
	}
	if v := os.Getenv("VOYAGE_API_KEY"); v != "" {
		c.Embedding.APIKey = v
	}
	if v := os.Getenv("AUDIT_DATA_DIR"); v != "" {
		c.Storage.DataDir = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Storage.RedisURL = v
	}
	if v := os.Getenv("QDRANT_URL"); v != "" {
		c.Storage.QdrantURL = v
	}
}

// CachePath returns the SQLite database location, creating DataDir if
// needed.
func (c *Config) CachePath() (string, error) {
	if err := os.MkdirAll(c.Storage.DataDir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(c.Storage.DataDir, "cache.db"), nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".code-auditor"
	}
	return filepath.Join(home, ".code-auditor")
}
