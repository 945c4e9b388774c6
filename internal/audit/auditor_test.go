package audit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/randalmurphy/code-auditor/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient counts calls and answers every audit with one canned issue.
type fakeClient struct {
	calls atomic.Int32
	reply string
	err   error
}

func (f *fakeClient) Complete(_ context.Context, _, _ string, _ bool) (string, error) {
	f.calls.Add(1)
	if f.err != nil {
		return "", f.err
	}
	if f.reply != "" {
		return f.reply, nil
	}
	return `{"issues":[{"severity":"low","description":"canned issue","suggestion":"fix it"}]}`, nil
}

func writeSourceFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const twoFuncs = `def alpha():
    return 1

def beta():
    return 2
`

func TestAuditFileFreshCache(t *testing.T) {
	dir := t.TempDir()
	path := writeSourceFile(t, dir, "m.py", twoFuncs)

	client := &fakeClient{}
	auditor := New(cache.NewMemory(), client, nil, Options{Presets: []string{"security"}})

	result, err := auditor.AuditFile(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, result.Chunks, 2)
	assert.Equal(t, 2, result.ChunksChanged)
	assert.Empty(t, result.Errors)

	for _, cr := range result.Chunks {
		assert.True(t, cr.Changed)
		require.Len(t, cr.Findings, 1)
		assert.Equal(t, "canned issue", cr.Findings[0].Description)
		assert.Equal(t, "security", cr.Findings[0].Preset)
		assert.Equal(t, "open", cr.Findings[0].Status)
	}

	// One inference call per chunk per preset.
	assert.Equal(t, int32(2), client.calls.Load())
}

func TestAuditFileUnchangedIsSkipped(t *testing.T) {
	dir := t.TempDir()
	path := writeSourceFile(t, dir, "m.py", twoFuncs)

	store := cache.NewMemory()
	client := &fakeClient{}
	auditor := New(store, client, nil, Options{Presets: []string{"security"}})

	ctx := context.Background()
	_, err := auditor.AuditFile(ctx, path)
	require.NoError(t, err)
	require.Equal(t, int32(2), client.calls.Load())

	// Second pass over identical content hits the cache for everything.
	result, err := auditor.AuditFile(ctx, path)
	require.NoError(t, err)

	assert.Equal(t, 0, result.ChunksChanged)
	assert.Equal(t, int32(2), client.calls.Load())
	for _, cr := range result.Chunks {
		assert.False(t, cr.Changed)
	}
}

func TestAuditFileOnlyEditedChunkReaudited(t *testing.T) {
	dir := t.TempDir()
	path := writeSourceFile(t, dir, "m.py", twoFuncs)

	store := cache.NewMemory()
	client := &fakeClient{}
	auditor := New(store, client, nil, Options{Presets: []string{"security"}})

	ctx := context.Background()
	_, err := auditor.AuditFile(ctx, path)
	require.NoError(t, err)

	edited := `def alpha():
    return 100

def beta():
    return 2
`
	writeSourceFile(t, dir, "m.py", edited)

	result, err := auditor.AuditFile(ctx, path)
	require.NoError(t, err)

	assert.Equal(t, 1, result.ChunksChanged)
	assert.Equal(t, int32(3), client.calls.Load())

	for _, cr := range result.Chunks {
		if cr.Name == "alpha" {
			assert.True(t, cr.Changed)
		} else {
			assert.False(t, cr.Changed)
		}
	}
}

func TestAuditFileForceBypassesCache(t *testing.T) {
	dir := t.TempDir()
	path := writeSourceFile(t, dir, "m.py", twoFuncs)

	store := cache.NewMemory()
	client := &fakeClient{}
	auditor := New(store, client, nil, Options{Presets: []string{"security"}, Force: true})

	ctx := context.Background()
	_, err := auditor.AuditFile(ctx, path)
	require.NoError(t, err)

	result, err := auditor.AuditFile(ctx, path)
	require.NoError(t, err)

	assert.Equal(t, 2, result.ChunksChanged)
	assert.Equal(t, int32(4), client.calls.Load())
}

func TestAuditFileBrokenSourceIsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := writeSourceFile(t, dir, "bad.py", "def broken(:\n    pass\n")

	client := &fakeClient{}
	auditor := New(cache.NewMemory(), client, nil, Options{})

	result, err := auditor.AuditFile(context.Background(), path)
	require.NoError(t, err)

	assert.Empty(t, result.Chunks)
	assert.Equal(t, int32(0), client.calls.Load())
}

func TestAuditFileInferenceFailureIsRetriedNextRun(t *testing.T) {
	dir := t.TempDir()
	path := writeSourceFile(t, dir, "m.py", "def alpha():\n    return 1\n")

	store := cache.NewMemory()
	client := &fakeClient{err: fmt.Errorf("model offline")}
	auditor := New(store, client, nil, Options{Presets: []string{"security"}})

	ctx := context.Background()
	result, err := auditor.AuditFile(ctx, path)
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)

	// The digest was not recorded, so the chunk counts as changed again.
	client.err = nil
	result, err = auditor.AuditFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ChunksChanged)
	assert.Empty(t, result.Errors)
}

func TestAuditFileReplaysFindingsFromSQLite(t *testing.T) {
	dir := t.TempDir()
	path := writeSourceFile(t, dir, "m.py", "def alpha():\n    return 1\n")

	store, err := cache.NewSQLite(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer store.Close()

	client := &fakeClient{}
	auditor := New(store, client, nil, Options{Presets: []string{"security"}})

	ctx := context.Background()
	_, err = auditor.AuditFile(ctx, path)
	require.NoError(t, err)

	result, err := auditor.AuditFile(ctx, path)
	require.NoError(t, err)

	require.Len(t, result.Chunks, 1)
	assert.False(t, result.Chunks[0].Changed)
	// The hit replays the stored findings without calling the model.
	require.Len(t, result.Chunks[0].Findings, 1)
	assert.Equal(t, "canned issue", result.Chunks[0].Findings[0].Description)
	assert.Equal(t, int32(1), client.calls.Load())
}

func TestPlan(t *testing.T) {
	dir := t.TempDir()
	path := writeSourceFile(t, dir, "m.py", twoFuncs)

	store := cache.NewMemory()
	auditor := New(store, &fakeClient{}, nil, Options{Presets: []string{"security"}})

	chunks, err := auditor.extractor.ExtractFile(path)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	ctx := context.Background()
	changed, unchanged, err := auditor.Plan(ctx, chunks)
	require.NoError(t, err)
	assert.Len(t, changed, 2)
	assert.Empty(t, unchanged)

	require.NoError(t, store.Record(ctx, chunks[0].ID, cache.Hash(chunks[0].Text)))

	changed, unchanged, err = auditor.Plan(ctx, chunks)
	require.NoError(t, err)
	assert.Len(t, changed, 1)
	assert.Len(t, unchanged, 1)
}

func TestAuditDirectory(t *testing.T) {
	root := t.TempDir()
	writeSourceFile(t, root, "a.py", twoFuncs)
	writeSourceFile(t, root, "b.js", "function gamma() {\n  return 3;\n}\n")
	writeSourceFile(t, root, "notes.txt", "not code\n")

	outDir := t.TempDir()

	client := &fakeClient{}
	auditor := New(cache.NewMemory(), client, nil, Options{Presets: []string{"security"}, Workers: 2})

	summary, results, err := auditor.AuditDirectory(context.Background(), root, outDir)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.FilesProcessed)
	assert.Equal(t, 3, summary.ChunksTotal)
	assert.Equal(t, 3, summary.ChunksChanged)
	assert.Equal(t, 3, summary.FindingsTotal)
	assert.Empty(t, summary.Errors)
	assert.Len(t, results, 2)

	// Per-file reports plus the run summary.
	assert.FileExists(t, filepath.Join(outDir, "a.py_audit.json"))
	assert.FileExists(t, filepath.Join(outDir, "b.js_audit.json"))
	assert.FileExists(t, filepath.Join(outDir, "_summary_audit.json"))
}
