// Package chunk provides the auditable unit of source extracted from a
// file: one named function or class together with its exact text.
package chunk

import (
	"github.com/randalmurphy/code-auditor/internal/parser"
)

// Chunk is the unit of audit. Chunks are created fresh on every parse
// pass and never mutated.
type Chunk struct {
	// ID is absolute path + ":" + scope-qualified name. Qualifying with
	// the enclosing scope keeps sibling methods of different classes
	// from colliding the way a bare name key would.
	ID string `json:"chunk_id"`

	Name      string            `json:"name"`
	Kind      parser.SymbolKind `json:"kind"`
	Language  parser.Language   `json:"lang"`
	StartLine int               `json:"start_line"`
	Text      string            `json:"text"`
}

// ID builds the chunk identity key for a symbol of the given file.
func ID(absPath, qualifiedName string) string {
	return absPath + ":" + qualifiedName
}

// FromSymbol converts a parsed symbol into a chunk of the given file.
func FromSymbol(absPath string, sym parser.Symbol) Chunk {
	return Chunk{
		ID:        ID(absPath, sym.QualifiedName()),
		Name:      sym.Name,
		Kind:      sym.Kind,
		Language:  sym.Language,
		StartLine: sym.StartLine,
		Text:      sym.Text,
	}
}
