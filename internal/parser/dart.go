package parser

import (
	"strings"

	forestdart "github.com/alexaandru/go-sitter-forest/dart"
	sitter "github.com/smacker/go-tree-sitter"
)

// dartLanguage binds the Dart grammar. smacker's grammar collection ships
// no Dart, so the language is pulled from go-sitter-forest and wrapped;
// a nil return reports the grammar as unavailable rather than failing.
func dartLanguage() *sitter.Language {
	ptr := forestdart.GetLanguage()
	if ptr == nil {
		return nil
	}
	return sitter.NewLanguage(ptr)
}

// dartGrammar extracts top-level classes and functions. In the Dart
// grammar a top-level function is a function_signature node immediately
// followed by its function_body sibling.
type dartGrammar struct{}

func (dartGrammar) Language() Language { return LanguageDart }

func (dartGrammar) Available() bool { return dartLanguage() != nil }

func (dartGrammar) ExtractSymbols(src *Source) []Symbol {
	tree := parseTree(dartLanguage(), src)
	if tree == nil {
		return nil
	}
	defer tree.Close()

	var symbols []Symbol
	root := tree.RootNode()
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)

		switch child.Type() {
		case "class_definition":
			name := dartIdentifier(child, src.Bytes)
			if name == "" {
				continue
			}
			startLine := int(child.StartPoint().Row) + 1
			endLine := int(child.EndPoint().Row) + 1
			symbols = append(symbols, Symbol{
				Name:      name,
				Kind:      SymbolClass,
				Language:  LanguageDart,
				StartLine: startLine,
				EndLine:   endLine,
				Text:      src.Slice(startLine, endLine),
			})

		case "function_signature":
			name := dartIdentifier(child, src.Bytes)
			if name == "" || i+1 >= int(root.ChildCount()) {
				continue
			}
			body := root.Child(i + 1)
			if body.Type() != "function_body" {
				continue
			}
			startLine := int(child.StartPoint().Row) + 1
			endLine := int(body.EndPoint().Row) + 1
			symbols = append(symbols, Symbol{
				Name:      name,
				Kind:      SymbolFunction,
				Language:  LanguageDart,
				StartLine: startLine,
				EndLine:   endLine,
				Text:      src.Slice(startLine, endLine),
			})
			i++ // the body sibling is consumed with its signature
		}
	}

	sortSymbols(symbols)
	return symbols
}

func dartIdentifier(node *sitter.Node, source []byte) string {
	if id := findChild(node, "identifier"); id != nil {
		return nodeText(id, source)
	}
	return ""
}

func (dartGrammar) RenderSkeleton(src *Source) string {
	tree := parseTree(dartLanguage(), src)
	if tree == nil {
		return ""
	}
	defer tree.Close()

	lines := src.lineView()
	var stubbed []rowRange
	stubDartBodies(tree.RootNode(), src, lines, &stubbed)
	return strings.Join(lines, "")
}

func stubDartBodies(node *sitter.Node, src *Source, lines []string, stubbed *[]rowRange) {
	if node.Type() == "function_body" {
		if block := findChild(node, "block"); block != nil {
			if !withinRanges(*stubbed, int(block.StartPoint().Row)) {
				stubBraceBody(block, src, lines, stubbed)
			}
			return
		}
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		stubDartBodies(node.Child(i), src, lines, stubbed)
	}
}
