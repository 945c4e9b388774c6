// cmd/code-auditor/audit.go
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/randalmurphy/code-auditor/internal/audit"
	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit [path]",
	Short: "Audit changed functions in a file or directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runAudit,
}

var (
	auditForce   bool
	auditOutput  string
	auditPresets []string
	auditWorkers int
)

func init() {
	auditCmd.Flags().BoolVar(&auditForce, "force", false, "Audit every chunk, ignoring the change cache")
	auditCmd.Flags().StringVarP(&auditOutput, "output", "o", "", "Directory for JSON reports (directory audits only)")
	auditCmd.Flags().StringSliceVar(&auditPresets, "preset", nil, "Audit presets to apply (default from config)")
	auditCmd.Flags().IntVar(&auditWorkers, "workers", 0, "Concurrent file audits (default from config)")
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := setupLogger(cfg)

	absPath, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("path not found: %s", absPath)
	}

	store, err := openCache(cfg)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer store.Close()

	presets := cfg.Audit.Presets
	if len(auditPresets) > 0 {
		presets = auditPresets
	}
	workers := cfg.Audit.Workers
	if auditWorkers > 0 {
		workers = auditWorkers
	}

	auditor := audit.New(store, newLLMClient(cfg), logger, audit.Options{
		Presets:   presets,
		CharLimit: cfg.Audit.CharLimit,
		Workers:   workers,
		Force:     auditForce,
	})

	ctx := context.Background()

	if !info.IsDir() {
		result, err := auditor.AuditFile(ctx, absPath)
		if err != nil {
			return fmt.Errorf("audit failed: %w", err)
		}
		printFileResult(result)
		return nil
	}

	summary, results, err := auditor.AuditDirectory(ctx, absPath, auditOutput)
	if err != nil {
		return fmt.Errorf("audit failed: %w", err)
	}

	fmt.Printf("\nAudit complete:\n")
	fmt.Printf("  Files processed: %d\n", summary.FilesProcessed)
	fmt.Printf("  Chunks total:    %d\n", summary.ChunksTotal)
	fmt.Printf("  Chunks changed:  %d\n", summary.ChunksChanged)
	fmt.Printf("  Findings:        %d\n", summary.FindingsTotal)

	if len(summary.Errors) > 0 {
		fmt.Printf("  Errors: %d\n", len(summary.Errors))
		for _, e := range summary.Errors {
			fmt.Printf("    - %s\n", e)
		}
	}

	if auditOutput == "" {
		for _, result := range results {
			if len(result.Chunks) > 0 {
				printFileResult(result)
			}
		}
	}

	return nil
}

func printFileResult(result *audit.FileResult) {
	fmt.Printf("\n%s (%d changed)\n", result.Path, result.ChunksChanged)
	for _, c := range result.Chunks {
		status := "unchanged"
		if c.Changed {
			status = "audited"
		}
		fmt.Printf("  %s [%s] %s\n", c.Name, c.Kind, status)
		for _, f := range c.Findings {
			fmt.Printf("    %s/%s: %s\n", f.Preset, f.Severity, f.Description)
		}
	}
	for _, e := range result.Errors {
		fmt.Printf("  error: %s\n", e)
	}
}
