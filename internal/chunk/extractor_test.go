package chunk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/randalmurphy/code-auditor/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPythonChunks(t *testing.T) {
	code := `def get_user(user_id):
    return {"id": user_id}

class UserService:
    def create(self, name):
        return {"name": name}
`
	extractor := NewExtractor(nil)
	chunks, err := extractor.Extract([]byte(code), "/repo/users.py")
	require.NoError(t, err)

	// get_user, UserService, create
	require.Len(t, chunks, 3)

	byID := map[string]Chunk{}
	for _, c := range chunks {
		byID[c.ID] = c
	}

	fn, ok := byID["/repo/users.py:get_user"]
	require.True(t, ok)
	assert.Equal(t, "get_user", fn.Name)
	assert.Equal(t, parser.SymbolFunction, fn.Kind)
	assert.Equal(t, parser.LanguagePython, fn.Language)
	assert.Equal(t, 1, fn.StartLine)

	// Methods carry their class in the ID, so same-named methods of
	// different classes stay distinct.
	_, ok = byID["/repo/users.py:UserService.create"]
	assert.True(t, ok)
	_, ok = byID["/repo/users.py:create"]
	assert.False(t, ok)
}

func TestExtractUnsupportedExtension(t *testing.T) {
	extractor := NewExtractor(nil)

	_, err := extractor.Extract([]byte("x = 1"), "/repo/script.rb")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestExtractBrokenSourceIsEmpty(t *testing.T) {
	extractor := NewExtractor(nil)

	chunks, err := extractor.Extract([]byte("def broken(:\n"), "/repo/bad.py")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestExtractFileAndSkeleton(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "calc.py")
	code := `def add(a, b):
    return a + b
`
	require.NoError(t, os.WriteFile(path, []byte(code), 0o644))

	extractor := NewExtractor(nil)

	chunks, err := extractor.ExtractFile(path)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, path+":add", chunks[0].ID)
	assert.Equal(t, code, chunks[0].Text)

	skeleton, err := extractor.Skeleton(path)
	require.NoError(t, err)
	assert.Equal(t, "def add(a, b):\n    pass\n", skeleton)
}

func TestExtractIsIdempotent(t *testing.T) {
	code := `def alpha():
    return 1

class Beta:
    def gamma(self):
        return 2
`
	extractor := NewExtractor(nil)

	first, err := extractor.Extract([]byte(code), "/repo/m.py")
	require.NoError(t, err)
	second, err := extractor.Extract([]byte(code), "/repo/m.py")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestChunkIDFormat(t *testing.T) {
	assert.Equal(t, "/a/b.py:Outer.run", ID("/a/b.py", "Outer.run"))
}
