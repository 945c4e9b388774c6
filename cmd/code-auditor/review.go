// cmd/code-auditor/review.go
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/randalmurphy/code-auditor/internal/review"
	"github.com/spf13/cobra"
)

var reviewCmd = &cobra.Command{
	Use:   "review [dir]",
	Short: "Review a codebase's architecture from its skeletons",
	Args:  cobra.ExactArgs(1),
	RunE:  runReview,
}

var reviewOutput string

func init() {
	reviewCmd.Flags().StringVarP(&reviewOutput, "output", "o", "", "Write the review to a file instead of stdout")
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := setupLogger(cfg)

	absDir, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	reviewer := review.New(newLLMClient(cfg), logger, cfg.Audit.CharLimit)

	report, err := reviewer.ReviewArchitecture(context.Background(), absDir)
	if err != nil {
		return fmt.Errorf("review failed: %w", err)
	}

	if reviewOutput != "" {
		if err := os.WriteFile(reviewOutput, []byte(report), 0o644); err != nil {
			return err
		}
		fmt.Printf("Review written to %s\n", reviewOutput)
		return nil
	}

	fmt.Println(report)
	return nil
}
