package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// scriptGrammar covers JavaScript and TypeScript; the tsx variant shares
// the same node types. Only top-level constructs become symbols: nested
// and inner functions stay inside the enclosing construct's span.
type scriptGrammar struct {
	lang       Language
	sitterLang *sitter.Language
}

func (g scriptGrammar) Language() Language { return g.lang }

func (g scriptGrammar) Available() bool { return g.sitterLang != nil }

func (g scriptGrammar) ExtractSymbols(src *Source) []Symbol {
	tree := parseTree(g.sitterLang, src)
	if tree == nil {
		return nil
	}
	defer tree.Close()

	var symbols []Symbol
	root := tree.RootNode()
	for i := 0; i < int(root.ChildCount()); i++ {
		g.collectTopLevel(root.Child(i), src, &symbols)
	}
	sortSymbols(symbols)
	return symbols
}

func (g scriptGrammar) collectTopLevel(node *sitter.Node, src *Source, out *[]Symbol) {
	switch node.Type() {
	case "function_declaration", "generator_function_declaration":
		g.emit(node, node, SymbolFunction, src, out)

	case "class_declaration":
		g.emit(node, node, SymbolClass, src, out)

	case "export_statement":
		// The chunk spans the whole export statement so the modifier is
		// part of the extracted text.
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			switch child.Type() {
			case "function_declaration", "generator_function_declaration":
				g.emitNamed(node, scriptNodeName(child, src.Bytes), SymbolFunction, src, out)
			case "class_declaration":
				g.emitNamed(node, scriptNodeName(child, src.Bytes), SymbolClass, src, out)
			case "lexical_declaration", "variable_declaration":
				g.collectArrow(node, child, src, out)
			}
		}

	case "lexical_declaration", "variable_declaration":
		g.collectArrow(node, node, src, out)
	}
}

// collectArrow emits top-level arrow-function assignments
// (const foo = () => { ... }). span carries the node whose text forms the
// chunk, which is the export statement for exported declarations.
func (g scriptGrammar) collectArrow(span, decl *sitter.Node, src *Source, out *[]Symbol) {
	for i := 0; i < int(decl.ChildCount()); i++ {
		child := decl.Child(i)
		if child.Type() != "variable_declarator" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		valueNode := child.ChildByFieldName("value")
		if nameNode == nil || valueNode == nil {
			continue
		}
		if valueNode.Type() != "arrow_function" && valueNode.Type() != "function_expression" {
			continue
		}
		g.emitNamed(span, nodeText(nameNode, src.Bytes), SymbolFunction, src, out)
	}
}

func (g scriptGrammar) emit(span, named *sitter.Node, kind SymbolKind, src *Source, out *[]Symbol) {
	g.emitNamed(span, scriptNodeName(named, src.Bytes), kind, src, out)
}

func (g scriptGrammar) emitNamed(span *sitter.Node, name string, kind SymbolKind, src *Source, out *[]Symbol) {
	if name == "" {
		return
	}
	startLine := int(span.StartPoint().Row) + 1
	endLine := int(span.EndPoint().Row) + 1
	*out = append(*out, Symbol{
		Name:      name,
		Kind:      kind,
		Language:  g.lang,
		StartLine: startLine,
		EndLine:   endLine,
		Text:      src.Slice(startLine, endLine),
	})
}

// scriptNodeName returns the declared identifier. TypeScript classes use
// type_identifier where JavaScript uses identifier, so both are checked.
func scriptNodeName(node *sitter.Node, source []byte) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "identifier" || child.Type() == "type_identifier" {
			return nodeText(child, source)
		}
	}
	return ""
}

// scriptBodyParents are the node types whose statement_block child is a
// function body eligible for elision.
var scriptBodyParents = map[string]bool{
	"function_declaration":           true,
	"function_expression":            true,
	"function":                       true,
	"arrow_function":                 true,
	"method_definition":              true,
	"generator_function_declaration": true,
	"generator_function":             true,
}

func (g scriptGrammar) RenderSkeleton(src *Source) string {
	tree := parseTree(g.sitterLang, src)
	if tree == nil {
		return ""
	}
	defer tree.Close()

	lines := src.lineView()
	var stubbed []rowRange
	stubScriptBodies(tree.RootNode(), src, lines, &stubbed)
	return strings.Join(lines, "")
}

func stubScriptBodies(node *sitter.Node, src *Source, lines []string, stubbed *[]rowRange) {
	if scriptBodyParents[node.Type()] {
		if block := findChild(node, "statement_block"); block != nil {
			if !withinRanges(*stubbed, int(block.StartPoint().Row)) {
				stubBraceBody(block, src, lines, stubbed)
			}
			// The replaced body's interior is gone; nothing inside it
			// needs visiting.
			return
		}
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		stubScriptBodies(node.Child(i), src, lines, stubbed)
	}
}
