package parser

import (
	"strings"
	"testing"

	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsGrammar() scriptGrammar {
	return scriptGrammar{lang: LanguageJavaScript, sitterLang: javascript.GetLanguage()}
}

func tsGrammar() scriptGrammar {
	return scriptGrammar{lang: LanguageTypeScript, sitterLang: typescript.GetLanguage()}
}

func TestJavaScriptExtractTopLevel(t *testing.T) {
	code := `import fs from "fs";

function readConfig(path) {
  const parse = (raw) => JSON.parse(raw);
  return parse(fs.readFileSync(path));
}

const formatName = (user) => {
  return user.first + " " + user.last;
};

class Store {
  get(key) {
    return this.data[key];
  }
}

export function publicApi() {
  return 42;
}

export const handler = async (event) => {
  return event.body;
};
`
	src := mustSource(t, "app.js", code)
	symbols := jsGrammar().ExtractSymbols(src)

	// Top level only: the inner arrow inside readConfig and the method
	// inside Store are not separate symbols.
	require.Len(t, symbols, 5)

	readConfig := findSymbol(symbols, "readConfig")
	require.NotNil(t, readConfig)
	assert.Equal(t, SymbolFunction, readConfig.Kind)
	assert.Equal(t, 3, readConfig.StartLine)
	assert.Equal(t, 6, readConfig.EndLine)

	formatName := findSymbol(symbols, "formatName")
	require.NotNil(t, formatName)
	assert.Equal(t, SymbolFunction, formatName.Kind)

	store := findSymbol(symbols, "Store")
	require.NotNil(t, store)
	assert.Equal(t, SymbolClass, store.Kind)
	assert.Contains(t, store.Text, "get(key)")

	// Exported chunks span the whole export statement.
	publicApi := findSymbol(symbols, "publicApi")
	require.NotNil(t, publicApi)
	assert.True(t, strings.HasPrefix(publicApi.Text, "export function"))

	handler := findSymbol(symbols, "handler")
	require.NotNil(t, handler)
	assert.True(t, strings.HasPrefix(handler.Text, "export const"))
}

func TestJavaScriptNonFunctionDeclarationsSkipped(t *testing.T) {
	code := `const limit = 10;
let name = "x";
const fn = () => limit;
`
	src := mustSource(t, "vals.js", code)
	symbols := jsGrammar().ExtractSymbols(src)

	require.Len(t, symbols, 1)
	assert.Equal(t, "fn", symbols[0].Name)
}

func TestJavaScriptBrokenSyntax(t *testing.T) {
	src := mustSource(t, "bad.js", "function ( {{{\n")

	assert.Nil(t, jsGrammar().ExtractSymbols(src))
	assert.Equal(t, "", jsGrammar().RenderSkeleton(src))
}

func TestJavaScriptSkeleton(t *testing.T) {
	code := `function add(a, b) {
  return a + b;
}

const helper = 1;
`
	src := mustSource(t, "add.js", code)
	got := jsGrammar().RenderSkeleton(src)

	want := `function add(a, b) {
  /* ... */
}

const helper = 1;
`
	assert.Equal(t, want, got)
}

func TestJavaScriptSkeletonNestedBodies(t *testing.T) {
	code := `function outer() {
  function inner() {
    return 1;
  }
  return inner();
}
`
	src := mustSource(t, "nest.js", code)
	got := jsGrammar().RenderSkeleton(src)

	want := `function outer() {
  /* ... */
}
`
	assert.Equal(t, want, got)
	assert.Equal(t, 1, strings.Count(got, "/* ... */"))
}

func TestJavaScriptSkeletonMethodBodies(t *testing.T) {
	code := `class Store {
  get(key) {
    return this.data[key];
  }

  set(key, value) {
    this.data[key] = value;
  }
}
`
	src := mustSource(t, "store.js", code)
	got := jsGrammar().RenderSkeleton(src)

	// The class shell and method signatures survive; both bodies are
	// elided independently.
	assert.Contains(t, got, "class Store {")
	assert.Contains(t, got, "get(key) {")
	assert.Contains(t, got, "set(key, value) {")
	assert.NotContains(t, got, "this.data")
	assert.Equal(t, 2, strings.Count(got, "/* ... */"))
}

func TestJavaScriptSkeletonSingleLineBody(t *testing.T) {
	code := "function one() { return 1; }\n"
	src := mustSource(t, "one.js", code)

	assert.Equal(t, code, jsGrammar().RenderSkeleton(src))
}

func TestTypeScriptExtract(t *testing.T) {
	code := `interface User {
  name: string;
}

export class UserService {
  find(id: number): User {
    return { name: "x" };
  }
}

export const load = async (id: number): Promise<User> => {
  return { name: "y" };
};
`
	src := mustSource(t, "svc.ts", code)
	symbols := tsGrammar().ExtractSymbols(src)

	// Interfaces carry no body to audit and are not extracted.
	require.Len(t, symbols, 2)

	svc := findSymbol(symbols, "UserService")
	require.NotNil(t, svc)
	assert.Equal(t, SymbolClass, svc.Kind)
	assert.Equal(t, LanguageTypeScript, svc.Language)

	load := findSymbol(symbols, "load")
	require.NotNil(t, load)
	assert.Equal(t, SymbolFunction, load.Kind)
}

func TestTSXExtract(t *testing.T) {
	code := `export function Widget(props) {
  return <div>{props.label}</div>;
}
`
	src := mustSource(t, "widget.tsx", code)

	g, ok := ForFile("widget.tsx")
	require.True(t, ok)
	symbols := g.ExtractSymbols(src)

	require.Len(t, symbols, 1)
	assert.Equal(t, "Widget", symbols[0].Name)

	// The same file fails under the plain TypeScript grammar; ForFile
	// must hand out the tsx variant.
	assert.NotNil(t, tsx.GetLanguage())
}
