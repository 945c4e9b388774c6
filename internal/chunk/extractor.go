package chunk

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/randalmurphy/code-auditor/internal/parser"
)

// ErrUnsupported is returned for files whose extension maps to no
// supported grammar. The dispatcher reports this explicitly instead of
// guessing a language.
var ErrUnsupported = fmt.Errorf("unsupported file type")

// Extractor turns source files into ordered chunk lists.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor creates an extractor. A nil logger falls back to the
// default slog logger.
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// ExtractFile reads and chunks one file. The file is re-read on every
// pass; there is no watching or caching of content here.
func (e *Extractor) ExtractFile(path string) ([]Chunk, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(absPath)
	if err != nil {
		return nil, err
	}

	return e.Extract(raw, absPath)
}

// Extract chunks raw content belonging to absPath. Parse failures and
// unavailable grammars yield an empty list, not an error: both are local
// to the file and must not abort a directory pass.
func (e *Extractor) Extract(raw []byte, absPath string) ([]Chunk, error) {
	grammar, ok := parser.ForFile(absPath)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, absPath)
	}

	if !grammar.Available() {
		e.logger.Warn("grammar unavailable", "lang", grammar.Language(), "path", absPath)
		return nil, nil
	}

	src, err := parser.NewSource(absPath, raw)
	if err != nil {
		return nil, err
	}

	symbols := grammar.ExtractSymbols(src)
	if len(symbols) == 0 {
		return nil, nil
	}

	chunks := make([]Chunk, 0, len(symbols))
	for _, sym := range symbols {
		chunks = append(chunks, FromSymbol(absPath, sym))
	}
	return chunks, nil
}

// Skeleton renders the body-elided skeleton for one file. The empty
// string means there is nothing to review: unsupported or unparsable
// input, or an unavailable grammar.
func (e *Extractor) Skeleton(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	raw, err := os.ReadFile(absPath)
	if err != nil {
		return "", err
	}

	grammar, ok := parser.ForFile(absPath)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupported, absPath)
	}

	if !grammar.Available() {
		e.logger.Warn("grammar unavailable", "lang", grammar.Language(), "path", absPath)
		return "", nil
	}

	src, err := parser.NewSource(absPath, raw)
	if err != nil {
		return "", err
	}

	return grammar.RenderSkeleton(src), nil
}
