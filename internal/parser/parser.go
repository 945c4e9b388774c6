// Package parser provides tree-sitter based chunk extraction and skeleton
// generation for Python, JavaScript/TypeScript, and Dart sources.
package parser

import (
	"context"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language represents a supported programming language.
type Language string

const (
	LanguagePython     Language = "python"
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguageDart       Language = "dart"
)

// SymbolKind represents the type of extracted symbol.
type SymbolKind string

const (
	SymbolFunction SymbolKind = "function"
	SymbolClass    SymbolKind = "class"
)

// Symbol is a named function or class recovered from a parse tree.
// Text is the exact source slice from StartLine through EndLine inclusive,
// byte-faithful to the input.
type Symbol struct {
	Name      string     `json:"name"`
	Parent    string     `json:"parent,omitempty"`
	Kind      SymbolKind `json:"kind"`
	Language  Language   `json:"language"`
	StartLine int        `json:"start_line"`
	EndLine   int        `json:"end_line"`
	Text      string     `json:"text"`
	Docstring string     `json:"docstring,omitempty"`
}

// QualifiedName returns the symbol name prefixed with its enclosing scope.
func (s Symbol) QualifiedName() string {
	if s.Parent == "" {
		return s.Name
	}
	return s.Parent + "." + s.Name
}

// Grammar is the per-language adapter. Available reports whether the
// grammar binding is present in this build; when it is not, both
// operations return empty results rather than errors.
type Grammar interface {
	Language() Language
	Available() bool

	// ExtractSymbols returns the file's symbols in ascending StartLine
	// order. Malformed source yields an empty slice.
	ExtractSymbols(src *Source) []Symbol

	// RenderSkeleton returns the file with function bodies replaced by
	// stubs. Malformed source yields the empty string.
	RenderSkeleton(src *Source) string
}

// DetectLanguage determines the language from a file extension. The
// mapping is closed: unrecognized extensions report ok=false instead of
// guessing.
func DetectLanguage(path string) (Language, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py":
		return LanguagePython, true
	case ".js", ".jsx":
		return LanguageJavaScript, true
	case ".ts", ".tsx":
		return LanguageTypeScript, true
	case ".dart":
		return LanguageDart, true
	default:
		return "", false
	}
}

// ForFile selects the grammar adapter for a path. The second return is
// false when the extension is not in the supported set.
func ForFile(path string) (Grammar, bool) {
	lang, ok := DetectLanguage(path)
	if !ok {
		return nil, false
	}

	switch lang {
	case LanguagePython:
		return pythonGrammar{}, true
	case LanguageJavaScript:
		return scriptGrammar{lang: lang, sitterLang: javascript.GetLanguage()}, true
	case LanguageTypeScript:
		if strings.EqualFold(filepath.Ext(path), ".tsx") {
			return scriptGrammar{lang: lang, sitterLang: tsx.GetLanguage()}, true
		}
		return scriptGrammar{lang: lang, sitterLang: typescript.GetLanguage()}, true
	case LanguageDart:
		return dartGrammar{}, true
	default:
		return nil, false
	}
}

// GrammarAvailable reports whether the grammar for lang can be used in
// this build. Callers log unavailability separately from syntax errors.
func GrammarAvailable(lang Language) bool {
	switch lang {
	case LanguagePython:
		return python.GetLanguage() != nil
	case LanguageJavaScript:
		return javascript.GetLanguage() != nil
	case LanguageTypeScript:
		return typescript.GetLanguage() != nil
	case LanguageDart:
		return dartLanguage() != nil
	default:
		return false
	}
}

// Languages returns the closed set of supported language tags.
func Languages() []Language {
	return []Language{LanguagePython, LanguageJavaScript, LanguageTypeScript, LanguageDart}
}

// parseTree parses source with the given tree-sitter language. It returns
// nil for a missing grammar or for source the grammar cannot make sense
// of; both cases are local, non-fatal failures.
func parseTree(sitterLang *sitter.Language, src *Source) *sitter.Tree {
	if sitterLang == nil || src == nil {
		return nil
	}

	p := sitter.NewParser()
	p.SetLanguage(sitterLang)

	tree, err := p.ParseCtx(context.Background(), nil, src.Bytes)
	if err != nil || tree == nil {
		return nil
	}
	if tree.RootNode().HasError() {
		tree.Close()
		return nil
	}
	return tree
}

// Tree helpers shared by the adapters.

func findChild(node *sitter.Node, nodeType string) *sitter.Node {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == nodeType {
			return child
		}
	}
	return nil
}

func nodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}

func qualify(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

func sortSymbols(symbols []Symbol) {
	// Insertion sort: input is nearly ordered already and stability
	// matters for symbols sharing a start line.
	for i := 1; i < len(symbols); i++ {
		for j := i; j > 0 && symbols[j].StartLine < symbols[j-1].StartLine; j-- {
			symbols[j], symbols[j-1] = symbols[j-1], symbols[j]
		}
	}
}
