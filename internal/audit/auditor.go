// Package audit implements the micro-audit pipeline: chunk a file, skip
// what the change-detection cache says is unchanged, send the rest to
// the inference client preset by preset, and persist the findings.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/randalmurphy/code-auditor/internal/cache"
	"github.com/randalmurphy/code-auditor/internal/chunk"
	"github.com/randalmurphy/code-auditor/internal/llm"
	"github.com/randalmurphy/code-auditor/internal/token"
	"github.com/randalmurphy/code-auditor/internal/walker"
)

// Options configures an audit run.
type Options struct {
	// Presets name the system prompts applied to each changed chunk.
	Presets []string
	// CharLimit is the weighted character budget per prompt payload.
	CharLimit int
	// Workers bounds file-level parallelism; files are independent, the
	// cache is the only shared resource.
	Workers int
	// Force bypasses cache lookups; digests are still recorded.
	Force bool
}

// Auditor runs micro-audits over files and directories.
type Auditor struct {
	store     cache.Store
	results   cache.ResultStore
	client    llm.Client
	extractor *chunk.Extractor
	logger    *slog.Logger
	opts      Options
}

// New creates an auditor. When store also implements cache.ResultStore,
// findings are persisted and replayed on cache hits.
func New(store cache.Store, client llm.Client, logger *slog.Logger, opts Options) *Auditor {
	if logger == nil {
		logger = slog.Default()
	}
	if len(opts.Presets) == 0 {
		opts.Presets = []string{"security", "readability"}
	}
	if opts.CharLimit <= 0 {
		opts.CharLimit = token.DefaultCharLimit
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}

	results, _ := store.(cache.ResultStore)

	return &Auditor{
		store:     store,
		results:   results,
		client:    client,
		extractor: chunk.NewExtractor(logger),
		logger:    logger,
		opts:      opts,
	}
}

// ChunkResult is the outcome for one chunk of a file.
type ChunkResult struct {
	ChunkID  string          `json:"chunk_id"`
	Name     string          `json:"name"`
	Kind     string          `json:"kind"`
	Changed  bool            `json:"changed"`
	Findings []cache.Finding `json:"findings"`
}

// FileResult is the outcome for one audited file.
type FileResult struct {
	Path          string        `json:"path"`
	Chunks        []ChunkResult `json:"chunks"`
	ChunksChanged int           `json:"chunks_changed"`
	Errors        []string      `json:"errors,omitempty"`
}

// Summary aggregates a directory run.
type Summary struct {
	FilesProcessed int      `json:"files_processed"`
	ChunksTotal    int      `json:"chunks_total"`
	ChunksChanged  int      `json:"chunks_changed"`
	FindingsTotal  int      `json:"findings_total"`
	Errors         []string `json:"errors,omitempty"`
}

// Plan splits chunks into changed and unchanged against the cache. With
// Force set every chunk is changed.
func (a *Auditor) Plan(ctx context.Context, chunks []chunk.Chunk) (changed, unchanged []chunk.Chunk, err error) {
	for _, c := range chunks {
		if a.opts.Force {
			changed = append(changed, c)
			continue
		}
		isChanged, err := cache.Changed(ctx, a.store, c.ID, cache.Hash(c.Text))
		if err != nil {
			return nil, nil, err
		}
		if isChanged {
			changed = append(changed, c)
		} else {
			unchanged = append(unchanged, c)
		}
	}
	return changed, unchanged, nil
}

// AuditFile audits one file. Per-chunk inference failures are collected
// in the result; only boundary failures (unreadable file, broken cache)
// surface as errors.
func (a *Auditor) AuditFile(ctx context.Context, path string) (*FileResult, error) {
	chunks, err := a.extractor.ExtractFile(path)
	if err != nil {
		return nil, err
	}

	result := &FileResult{Path: path}
	if len(chunks) == 0 {
		a.logger.Info("nothing to audit", "path", path)
		return result, nil
	}

	for _, c := range chunks {
		digest := cache.Hash(c.Text)

		if !a.opts.Force {
			isChanged, err := cache.Changed(ctx, a.store, c.ID, digest)
			if err != nil {
				return nil, err
			}
			if !isChanged {
				result.Chunks = append(result.Chunks, ChunkResult{
					ChunkID:  c.ID,
					Name:     c.Name,
					Kind:     string(c.Kind),
					Changed:  false,
					Findings: a.replayFindings(ctx, c.ID),
				})
				a.logger.Debug("cache hit", "chunk", c.ID)
				continue
			}
		}

		cr := ChunkResult{
			ChunkID: c.ID,
			Name:    c.Name,
			Kind:    string(c.Kind),
			Changed: true,
		}
		result.ChunksChanged++

		audited := 0
		text := token.Truncate(c.Text, a.opts.CharLimit)
		for _, preset := range a.opts.Presets {
			findings, err := a.auditChunk(ctx, c.ID, preset, text)
			if err != nil {
				result.Errors = append(result.Errors,
					fmt.Sprintf("%s [%s]: %v", c.Name, preset, err))
				continue
			}
			audited++
			cr.Findings = append(cr.Findings, findings...)
		}

		// Record only when at least one preset came back, so a fully
		// failed chunk is retried on the next run.
		if audited > 0 {
			if err := a.store.Record(ctx, c.ID, digest); err != nil {
				return nil, err
			}
		}

		result.Chunks = append(result.Chunks, cr)
	}

	return result, nil
}

func (a *Auditor) auditChunk(ctx context.Context, chunkID, preset, text string) ([]cache.Finding, error) {
	systemPrompt, ok := llm.Preset(preset)
	if !ok {
		return nil, fmt.Errorf("unknown preset %q", preset)
	}

	userContent := fmt.Sprintf("Audit the following code:\n\n```\n%s\n```", text)

	response, err := a.client.Complete(ctx, systemPrompt, userContent, true)
	if err != nil {
		return nil, err
	}

	issues, err := llm.ParseIssues(response)
	if err != nil {
		return nil, err
	}

	findings := make([]cache.Finding, 0, len(issues))
	for _, issue := range issues {
		findings = append(findings, cache.Finding{
			ChunkID:     chunkID,
			Preset:      preset,
			Severity:    issue.Severity,
			Description: issue.Description,
			Suggestion:  issue.Suggestion,
			Status:      "open",
		})
	}

	if a.results != nil {
		if err := a.results.SaveFindings(ctx, chunkID, preset, findings); err != nil {
			return nil, err
		}
	}

	return findings, nil
}

func (a *Auditor) replayFindings(ctx context.Context, chunkID string) []cache.Finding {
	if a.results == nil {
		return nil
	}
	findings, err := a.results.FindingsFor(ctx, chunkID)
	if err != nil {
		a.logger.Warn("replay findings failed", "chunk", chunkID, "err", err)
		return nil
	}
	return findings
}

// AuditDirectory audits every supported file under root with bounded
// parallelism. Per-file failures land in the summary; the pass never
// aborts because one file was bad.
func (a *Auditor) AuditDirectory(ctx context.Context, root, outputDir string) (*Summary, []*FileResult, error) {
	var paths []string
	err := walker.New().Walk(root, func(path string) error {
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	summary := &Summary{}
	var results []*FileResult
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Workers)

	for _, path := range paths {
		g.Go(func() error {
			a.logger.Info("auditing", "path", path)
			result, err := a.AuditFile(gctx, path)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", path, err))
				return nil
			}

			summary.FilesProcessed++
			summary.ChunksTotal += len(result.Chunks)
			summary.ChunksChanged += result.ChunksChanged
			for _, cr := range result.Chunks {
				summary.FindingsTotal += len(cr.Findings)
			}
			summary.Errors = append(summary.Errors, result.Errors...)
			results = append(results, result)

			if outputDir != "" {
				if err := writeFileReport(outputDir, result); err != nil {
					summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", path, err))
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return summary, results, err
	}

	if outputDir != "" {
		if err := writeSummary(outputDir, summary); err != nil {
			return summary, results, err
		}
	}

	return summary, results, nil
}
