// cmd/code-auditor/invalidate.go
package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var invalidateCmd = &cobra.Command{
	Use:   "invalidate [path]",
	Short: "Drop cached digests for a file or directory",
	Long: `Remove cached chunk digests whose IDs start with the given path, forcing
a fresh audit on the next run. Pass a file to invalidate its chunks, or
a directory to invalidate everything under it.`,
	Args: cobra.ExactArgs(1),
	RunE: runInvalidate,
}

func init() {
	rootCmd.AddCommand(invalidateCmd)
}

func runInvalidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	absPath, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	store, err := openCache(cfg)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer store.Close()

	// Chunk IDs are absolute path + ":" + name, so a path prefix matches
	// the file's own chunks and everything below a directory.
	if err := store.Forget(context.Background(), absPath); err != nil {
		return fmt.Errorf("invalidation failed: %w", err)
	}

	fmt.Printf("Invalidated cached digests under %s\n", absPath)
	return nil
}
