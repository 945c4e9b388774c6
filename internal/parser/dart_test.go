package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDartExtractSymbols(t *testing.T) {
	if !GrammarAvailable(LanguageDart) {
		t.Skip("Dart grammar not available in this build")
	}

	code := `import 'dart:math';

int roll(int sides) {
  return Random().nextInt(sides) + 1;
}

class Dice {
  final int sides;

  Dice(this.sides);

  int roll() {
    return Random().nextInt(sides) + 1;
  }
}
`
	src := mustSource(t, "dice.dart", code)
	symbols := dartGrammar{}.ExtractSymbols(src)

	require.Len(t, symbols, 2)

	roll := findSymbol(symbols, "roll")
	require.NotNil(t, roll)
	assert.Equal(t, SymbolFunction, roll.Kind)
	assert.Equal(t, LanguageDart, roll.Language)
	assert.Equal(t, 3, roll.StartLine)
	assert.Equal(t, 5, roll.EndLine)
	assert.True(t, strings.HasPrefix(roll.Text, "int roll(int sides) {"))

	dice := findSymbol(symbols, "Dice")
	require.NotNil(t, dice)
	assert.Equal(t, SymbolClass, dice.Kind)
	assert.Contains(t, dice.Text, "Dice(this.sides);")
}

func TestDartSkeleton(t *testing.T) {
	if !GrammarAvailable(LanguageDart) {
		t.Skip("Dart grammar not available in this build")
	}

	code := `int roll(int sides) {
  var r = sides * 2;
  return r;
}
`
	src := mustSource(t, "roll.dart", code)
	got := dartGrammar{}.RenderSkeleton(src)

	want := `int roll(int sides) {
  /* ... */
}
`
	assert.Equal(t, want, got)
}

func TestDartBrokenSyntax(t *testing.T) {
	if !GrammarAvailable(LanguageDart) {
		t.Skip("Dart grammar not available in this build")
	}

	src := mustSource(t, "bad.dart", "class {{{\n")
	assert.Nil(t, dartGrammar{}.ExtractSymbols(src))
	assert.Equal(t, "", dartGrammar{}.RenderSkeleton(src))
}
