// cmd/code-auditor/main.go
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/randalmurphy/code-auditor/internal/cache"
	"github.com/randalmurphy/code-auditor/internal/config"
	"github.com/randalmurphy/code-auditor/internal/llm"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "code-auditor",
	Short: "LLM-driven micro audits and skeleton reviews for source trees",
	Long: `Extract named functions and classes from Python, JavaScript, TypeScript
and Dart sources, audit only what changed, and review whole codebases
from their structural skeletons.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("code-auditor v0.1.0")
	},
}

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (defaults to ~/.config/code-auditor/config.yaml)")
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	return config.Load(path)
}

func setupLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// openCache picks the change-detection backend from config.
func openCache(cfg *config.Config) (cache.Store, error) {
	switch cfg.Storage.Backend {
	case "redis":
		if cfg.Storage.RedisURL == "" {
			return nil, fmt.Errorf("storage.backend is redis but no redis_url is configured")
		}
		return cache.NewRedis(cfg.Storage.RedisURL)
	case "", "sqlite":
		path, err := cfg.CachePath()
		if err != nil {
			return nil, err
		}
		return cache.NewSQLite(path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func newLLMClient(cfg *config.Config) llm.Client {
	return llm.NewOpenAIClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.MaxOutputTokens)
}
