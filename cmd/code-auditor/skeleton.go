// cmd/code-auditor/skeleton.go
package main

import (
	"fmt"
	"path/filepath"

	"github.com/randalmurphy/code-auditor/internal/chunk"
	"github.com/spf13/cobra"
)

var skeletonCmd = &cobra.Command{
	Use:   "skeleton [file]",
	Short: "Print a file's skeleton with function bodies elided",
	Args:  cobra.ExactArgs(1),
	RunE:  runSkeleton,
}

func init() {
	rootCmd.AddCommand(skeletonCmd)
}

func runSkeleton(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := setupLogger(cfg)

	absPath, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	skeleton, err := chunk.NewExtractor(logger).Skeleton(absPath)
	if err != nil {
		return err
	}

	fmt.Print(skeleton)
	return nil
}
