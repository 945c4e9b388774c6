// cmd/code-auditor/why.go
package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/randalmurphy/code-auditor/internal/embedding"
	"github.com/randalmurphy/code-auditor/internal/rationale"
	"github.com/randalmurphy/code-auditor/internal/store"
	"github.com/spf13/cobra"
)

var whyCmd = &cobra.Command{
	Use:   "why",
	Short: "Extract and search design rationale for functions",
}

var whyExtractCmd = &cobra.Command{
	Use:   "extract [dir]",
	Short: "Infer why each function is written the way it is and index the answers",
	Args:  cobra.ExactArgs(1),
	RunE:  runWhyExtract,
}

var whySearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed rationales semantically",
	Args:  cobra.ExactArgs(1),
	RunE:  runWhySearch,
}

var whySearchLimit int

func init() {
	whySearchCmd.Flags().IntVarP(&whySearchLimit, "limit", "n", 5, "Maximum results")
	whyCmd.AddCommand(whyExtractCmd)
	whyCmd.AddCommand(whySearchCmd)
	rootCmd.AddCommand(whyCmd)
}

func newIndexer() (*rationale.Indexer, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := setupLogger(cfg)

	if cfg.Embedding.APIKey == "" {
		return nil, nil, fmt.Errorf("VOYAGE_API_KEY environment variable not set")
	}

	qdrant, err := store.NewQdrantStore(cfg.Storage.QdrantURL)
	if err != nil {
		return nil, nil, err
	}

	embedder := embedding.NewVoyageClient(cfg.Embedding.APIKey, cfg.Embedding.Model)
	idx := rationale.New(newLLMClient(cfg), embedder, qdrant, logger, cfg.Audit.CharLimit)

	return idx, func() { qdrant.Close() }, nil
}

func runWhyExtract(cmd *cobra.Command, args []string) error {
	absDir, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	idx, cleanup, err := newIndexer()
	if err != nil {
		return err
	}
	defer cleanup()

	written, err := idx.Extract(context.Background(), absDir)
	if err != nil {
		return fmt.Errorf("rationale extraction failed: %w", err)
	}

	fmt.Printf("Indexed %d rationale records\n", written)
	return nil
}

func runWhySearch(cmd *cobra.Command, args []string) error {
	idx, cleanup, err := newIndexer()
	if err != nil {
		return err
	}
	defer cleanup()

	records, err := idx.Search(context.Background(), args[0], whySearchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No matching rationales found.")
		return nil
	}

	for _, rec := range records {
		fmt.Printf("%.3f  %s (%s)\n", rec.Score, rec.Name, rec.File)
		fmt.Printf("       %s\n\n", rec.Rationale)
	}
	return nil
}
