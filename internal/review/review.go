// Package review drives the skeleton-based macro workflows: whole-file
// skeletons are packed into budget-bounded batches and sent to the
// inference client to reconstruct design documentation or review the
// architecture.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/randalmurphy/code-auditor/internal/chunk"
	"github.com/randalmurphy/code-auditor/internal/llm"
	"github.com/randalmurphy/code-auditor/internal/token"
	"github.com/randalmurphy/code-auditor/internal/walker"
)

const (
	detailFileName   = "_design_detail.md"
	overviewFileName = "_design_overview.md"
)

// Reviewer runs skeleton-based reviews against the inference client.
type Reviewer struct {
	client    llm.Client
	extractor *chunk.Extractor
	logger    *slog.Logger
	charLimit int
}

// New creates a reviewer. charLimit bounds each prompt payload.
func New(client llm.Client, logger *slog.Logger, charLimit int) *Reviewer {
	if logger == nil {
		logger = slog.Default()
	}
	if charLimit <= 0 {
		charLimit = token.DefaultCharLimit
	}
	return &Reviewer{
		client:    client,
		extractor: chunk.NewExtractor(logger),
		logger:    logger,
		charLimit: charLimit,
	}
}

// collectSkeletons walks root and returns one labeled skeleton block per
// parseable file. Files with nothing to show are skipped silently.
func (r *Reviewer) collectSkeletons(root string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var blocks []string
	err = walker.New().Walk(absRoot, func(path string) error {
		skeleton, err := r.extractor.Skeleton(path)
		if err != nil {
			r.logger.Warn("skeleton failed", "path", path, "err", err)
			return nil
		}
		if skeleton == "" {
			return nil
		}
		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			rel = path
		}
		blocks = append(blocks, fmt.Sprintf("=== File: %s ===\n%s", filepath.ToSlash(rel), skeleton))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return blocks, nil
}

// GenerateDesignDocs reverse-builds design documentation for dir in two
// stages: skeletons -> detail doc, detail doc -> overview doc. Without
// force, an existing detail doc skips stage one so an interrupted run
// resumes at the overview.
func (r *Reviewer) GenerateDesignDocs(ctx context.Context, dir, outDir string, force bool) (detailPath, overviewPath string, err error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", "", err
	}
	if outDir == "" {
		outDir = absDir
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", "", err
	}

	detailPath = filepath.Join(outDir, detailFileName)
	overviewPath = filepath.Join(outDir, overviewFileName)

	if _, statErr := os.Stat(detailPath); force || os.IsNotExist(statErr) {
		if err := r.generateDetail(ctx, absDir, detailPath); err != nil {
			return "", "", err
		}
	} else {
		r.logger.Info("detail doc exists, resuming at overview", "path", detailPath)
	}

	if err := r.generateOverview(ctx, detailPath, overviewPath); err != nil {
		return "", "", err
	}

	return detailPath, overviewPath, nil
}

func (r *Reviewer) generateDetail(ctx context.Context, absDir, detailPath string) error {
	systemPrompt, _ := llm.Preset("detail_designer")

	blocks, err := r.collectSkeletons(absDir)
	if err != nil {
		return err
	}

	if len(blocks) == 0 {
		// An empty doc keeps the overview stage from failing later.
		report := "# Detail Design\n\nNo parseable source files were found.\n"
		return os.WriteFile(detailPath, []byte(report), 0o644)
	}

	batches := token.Pack(blocks, r.charLimit)
	r.logger.Info("skeletons collected", "files", len(blocks), "batches", len(batches))

	var sections []string
	for i, batch := range batches {
		r.logger.Info("generating detail design", "batch", i+1, "of", len(batches))

		userContent := "Reconstruct the internal design document for these skeletons:\n\n" + batch
		userContent = token.Truncate(userContent, r.charLimit)

		section, err := r.client.Complete(ctx, systemPrompt, userContent, false)
		if err != nil {
			r.logger.Error("detail batch failed", "batch", i+1, "err", err)
			section = fmt.Sprintf("*Generation failed for batch %d: %v*", i+1, err)
		}
		if len(batches) > 1 {
			section = fmt.Sprintf("## Part %d of %d\n\n%s", i+1, len(batches), section)
		}
		sections = append(sections, section)
	}

	header := fmt.Sprintf(
		"# Detail Design (internal)\n\n**Directory:** `%s`  \n**Generated:** %s  \n**Files:** %d\n\n---\n\n",
		absDir, time.Now().Format("2006-01-02 15:04:05"), len(blocks))

	report := header + strings.Join(sections, "\n\n---\n\n")
	return os.WriteFile(detailPath, []byte(report), 0o644)
}

func (r *Reviewer) generateOverview(ctx context.Context, detailPath, overviewPath string) error {
	systemPrompt, _ := llm.Preset("overview_designer")

	detail, err := os.ReadFile(detailPath)
	if err != nil {
		return fmt.Errorf("read detail doc: %w", err)
	}

	userContent := "Write the external design overview for this internal design document:\n\n" + string(detail)
	userContent = token.Truncate(userContent, r.charLimit)

	body, err := r.client.Complete(ctx, systemPrompt, userContent, false)
	if err != nil {
		return fmt.Errorf("overview generation: %w", err)
	}

	header := fmt.Sprintf(
		"# Design Overview (external)\n\n**Generated:** %s  \n**Source:** `%s`\n\n---\n\n",
		time.Now().Format("2006-01-02 15:04:05"), filepath.Base(detailPath))

	return os.WriteFile(overviewPath, []byte(header+body), 0o644)
}

// ReviewArchitecture produces a markdown architecture review of dir from
// its skeletons. Each batch is reviewed independently; their answers are
// concatenated.
func (r *Reviewer) ReviewArchitecture(ctx context.Context, dir string) (string, error) {
	systemPrompt, _ := llm.Preset("architect")

	blocks, err := r.collectSkeletons(dir)
	if err != nil {
		return "", err
	}
	if len(blocks) == 0 {
		return "", fmt.Errorf("no parseable source files under %s", dir)
	}

	batches := token.Pack(blocks, r.charLimit)

	var sections []string
	for i, batch := range batches {
		r.logger.Info("reviewing architecture", "batch", i+1, "of", len(batches))

		userContent := "Review the architecture visible in these skeletons:\n\n" + batch
		userContent = token.Truncate(userContent, r.charLimit)

		section, err := r.client.Complete(ctx, systemPrompt, userContent, false)
		if err != nil {
			return "", fmt.Errorf("batch %d: %w", i+1, err)
		}
		sections = append(sections, section)
	}

	return strings.Join(sections, "\n\n---\n\n"), nil
}
