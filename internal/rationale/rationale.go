// Package rationale extracts per-function design rationale with the
// inference client and indexes it in Qdrant for semantic search.
package rationale

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/randalmurphy/code-auditor/internal/chunk"
	"github.com/randalmurphy/code-auditor/internal/llm"
	"github.com/randalmurphy/code-auditor/internal/parser"
	"github.com/randalmurphy/code-auditor/internal/store"
	"github.com/randalmurphy/code-auditor/internal/token"
	"github.com/randalmurphy/code-auditor/internal/walker"
)

// skipAnswer is what the rationale prompt returns for functions with
// nothing worth recording.
const skipAnswer = "unremarkable"

// Embedder is the vector side of the indexer.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
	Dimension() int
}

// Indexer extracts and searches design rationale records.
type Indexer struct {
	client    llm.Client
	embedder  Embedder
	store     *store.QdrantStore
	extractor *chunk.Extractor
	logger    *slog.Logger
	charLimit int
}

// New creates an indexer over the given backends.
func New(client llm.Client, embedder Embedder, qdrant *store.QdrantStore, logger *slog.Logger, charLimit int) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	if charLimit <= 0 {
		charLimit = token.DefaultCharLimit
	}
	return &Indexer{
		client:    client,
		embedder:  embedder,
		store:     qdrant,
		extractor: chunk.NewExtractor(logger),
		logger:    logger,
		charLimit: charLimit,
	}
}

// Extract walks dir, asks the model why each function looks the way it
// does, and indexes the noteworthy answers. Returns the number of records
// written.
func (x *Indexer) Extract(ctx context.Context, dir string) (int, error) {
	systemPrompt, _ := llm.Preset("rationale")

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return 0, err
	}

	if err := x.store.EnsureCollection(ctx, store.RationaleCollection, x.embedder.Dimension()); err != nil {
		return 0, fmt.Errorf("ensure collection: %w", err)
	}

	var paths []string
	err = walker.New().Walk(absDir, func(path string) error {
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return 0, err
	}

	written := 0
	for _, path := range paths {
		chunks, err := x.extractor.ExtractFile(path)
		if err != nil {
			x.logger.Warn("extract failed", "path", path, "err", err)
			continue
		}

		var records []store.Record
		for _, c := range chunks {
			if c.Kind != parser.SymbolFunction {
				continue
			}

			answer, err := x.client.Complete(ctx, systemPrompt, token.Truncate(c.Text, x.charLimit), false)
			if err != nil {
				x.logger.Warn("rationale failed", "chunk", c.ID, "err", err)
				continue
			}

			answer = strings.TrimSpace(answer)
			if answer == "" || strings.EqualFold(strings.TrimRight(answer, "."), skipAnswer) {
				continue
			}

			records = append(records, store.Record{
				ChunkID:   c.ID,
				Name:      c.Name,
				File:      path,
				Rationale: answer,
				CreatedAt: time.Now().UTC().Format(time.RFC3339),
			})
		}

		if len(records) == 0 {
			continue
		}

		texts := make([]string, len(records))
		for i, rec := range records {
			texts[i] = rec.Rationale
		}

		vectors, err := x.embedder.Embed(ctx, texts)
		if err != nil {
			return written, fmt.Errorf("embed %s: %w", path, err)
		}

		if err := x.store.Upsert(ctx, store.RationaleCollection, records, vectors); err != nil {
			return written, fmt.Errorf("upsert %s: %w", path, err)
		}

		written += len(records)
		x.logger.Info("rationales indexed", "path", path, "count", len(records))
	}

	return written, nil
}

// Search finds stored rationales semantically close to query.
func (x *Indexer) Search(ctx context.Context, query string, limit int) ([]store.Record, error) {
	if limit <= 0 {
		limit = 5
	}

	vector, err := x.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	return x.store.Search(ctx, store.RationaleCollection, vector, limit)
}
