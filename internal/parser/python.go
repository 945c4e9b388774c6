package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// pythonGrammar walks the full tree: nested functions, methods, and inner
// classes are all extracted, unlike the top-level-only script grammars.
type pythonGrammar struct{}

func (pythonGrammar) Language() Language { return LanguagePython }

func (pythonGrammar) Available() bool { return python.GetLanguage() != nil }

func (pythonGrammar) ExtractSymbols(src *Source) []Symbol {
	tree := parseTree(python.GetLanguage(), src)
	if tree == nil {
		return nil
	}
	defer tree.Close()

	var symbols []Symbol
	collectPython(tree.RootNode(), src, "", &symbols)
	sortSymbols(symbols)
	return symbols
}

func collectPython(node *sitter.Node, src *Source, parent string, out *[]Symbol) {
	switch node.Type() {
	case "function_definition", "class_definition":
		name := ""
		if nameNode := node.ChildByFieldName("name"); nameNode != nil {
			name = nodeText(nameNode, src.Bytes)
		}
		if name == "" {
			// Anonymous constructs yield no chunk.
			return
		}

		kind := SymbolFunction
		if node.Type() == "class_definition" {
			kind = SymbolClass
		}

		startLine := int(node.StartPoint().Row) + 1
		endLine := int(node.EndPoint().Row) + 1

		*out = append(*out, Symbol{
			Name:      name,
			Parent:    parent,
			Kind:      kind,
			Language:  LanguagePython,
			StartLine: startLine,
			EndLine:   endLine,
			Text:      src.Slice(startLine, endLine),
			Docstring: pythonDocstring(node, src.Bytes),
		})

		if body := node.ChildByFieldName("body"); body != nil {
			collectPython(body, src, qualify(parent, name), out)
		}
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		collectPython(node.Child(i), src, parent, out)
	}
}

// pythonDocstring returns the cleaned leading string literal of a def or
// class body, or "".
func pythonDocstring(node *sitter.Node, source []byte) string {
	body := node.ChildByFieldName("body")
	if body == nil {
		return ""
	}
	first := body.NamedChild(0)
	if first == nil || first.Type() != "expression_statement" {
		return ""
	}
	str := findChild(first, "string")
	if str == nil {
		return ""
	}
	return cleanDocstring(nodeText(str, source))
}

func cleanDocstring(s string) string {
	for _, q := range []string{`"""`, `'''`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			return s[3 : len(s)-3]
		}
	}
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// RenderSkeleton replaces every function body with a pass statement,
// keeping a leading docstring when present. Edits are line-indexed on a
// copy of the source, so everything outside touched bodies stays
// byte-identical, and the result remains parseable Python.
func (pythonGrammar) RenderSkeleton(src *Source) string {
	tree := parseTree(python.GetLanguage(), src)
	if tree == nil {
		return ""
	}
	defer tree.Close()

	lines := src.lineView()
	var stubbed []rowRange
	stubPythonBodies(tree.RootNode(), src, lines, &stubbed)
	return strings.Join(lines, "")
}

func stubPythonBodies(node *sitter.Node, src *Source, lines []string, stubbed *[]rowRange) {
	if node.Type() == "function_definition" {
		row := int(node.StartPoint().Row)
		if !withinRanges(*stubbed, row) {
			if body := node.ChildByFieldName("body"); body != nil {
				stubPythonBody(node, body, src, lines, stubbed)
			}
		}
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		stubPythonBodies(node.Child(i), src, lines, stubbed)
	}
}

func stubPythonBody(def, body *sitter.Node, src *Source, lines []string, stubbed *[]rowRange) {
	bodyStart := int(body.StartPoint().Row)
	bodyEnd := int(body.EndPoint().Row)

	// A body sharing the def line (def f(): return 1) is left alone;
	// there is nothing line-granular to elide.
	if bodyStart == int(def.StartPoint().Row) {
		return
	}

	stubRow := bodyStart
	if first := body.NamedChild(0); first != nil && isDocstringStatement(first) {
		stubRow = int(first.EndPoint().Row) + 1
	}

	*stubbed = append(*stubbed, rowRange{start: bodyStart, end: bodyEnd})

	if stubRow > bodyEnd {
		// Body is a docstring and nothing else; already a valid stub.
		return
	}

	indent := leadingWhitespace(src.line(bodyStart))
	lines[stubRow] = indent + "pass\n"
	for row := stubRow + 1; row <= bodyEnd; row++ {
		lines[row] = ""
	}
}

func isDocstringStatement(stmt *sitter.Node) bool {
	return stmt.Type() == "expression_statement" && findChild(stmt, "string") != nil
}
