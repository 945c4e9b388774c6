// cmd/code-auditor/design.go
package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/randalmurphy/code-auditor/internal/review"
	"github.com/spf13/cobra"
)

var designCmd = &cobra.Command{
	Use:   "design [dir]",
	Short: "Reverse-generate design documents from skeletons",
	Long: `Generate a detail design document from the directory's skeletons, then
condense it into an overview. An existing detail document is reused so
an interrupted run resumes at the overview stage.`,
	Args: cobra.ExactArgs(1),
	RunE: runDesign,
}

var (
	designForce  bool
	designOutput string
)

func init() {
	designCmd.Flags().BoolVar(&designForce, "force", false, "Regenerate the detail document even if it exists")
	designCmd.Flags().StringVarP(&designOutput, "output", "o", "", "Output directory (defaults to the target directory)")
	rootCmd.AddCommand(designCmd)
}

func runDesign(cmd *cobra.Command, args []string) error {
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

	detailPath, overviewPath, err := reviewer.GenerateDesignDocs(context.Background(), absDir, designOutput, designForce)
	if err != nil {
		return fmt.Errorf("design generation failed: %w", err)
	}

	fmt.Printf("Design documents written:\n")
	fmt.Printf("  Detail:   %s\n", detailPath)
	fmt.Printf("  Overview: %s\n", overviewPath)
	return nil
}
