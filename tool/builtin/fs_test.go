package builtin

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/lunarhue/agentic/core"
	"github.com/lunarhue/agentic/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scratchDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "main.go"), []byte("package main"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SECRET=1"), 0o644))
	return dir
}

func TestReadFile(t *testing.T) {
	dir := scratchDir(t)
	rf, err := ReadFile(Access{Root: dir, Hidden: []string{"**/.env", ".env"}})
	require.NoError(t, err)

	out, err := rf.Invoke(context.Background(), tool.Runtime{}, map[string]any{"path": "notes.txt"})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	_, err = rf.Invoke(context.Background(), tool.Runtime{}, map[string]any{"path": ".env"})
	require.Error(t, err)
	assert.Equal(t, core.CodeToolExecution, core.CodeOf(err))
	assert.Contains(t, err.Error(), "hidden")

	_, err = rf.Invoke(context.Background(), tool.Runtime{}, map[string]any{"path": "../outside.txt"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes")

	_, err = rf.Invoke(context.Background(), tool.Runtime{}, map[string]any{"path": "/etc/passwd"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absolute")
}

func TestWriteFile(t *testing.T) {
	dir := scratchDir(t)
	wf, err := WriteFile(Access{Root: dir, ReadOnly: []string{"src/**"}})
	require.NoError(t, err)

	out, err := wf.Invoke(context.Background(), tool.Runtime{}, map[string]any{
		"path":    "notes.txt",
		"content": "updated",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 7 bytes")

	data, err := os.ReadFile(filepath.Join(dir, "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "updated", string(data))

	_, err = wf.Invoke(context.Background(), tool.Runtime{}, map[string]any{
		"path":    "src/main.go",
		"content": "overwritten",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read-only")
}

func TestListFiles(t *testing.T) {
	dir := scratchDir(t)
	lf, err := ListFiles(Access{Root: dir, Hidden: []string{".env"}})
	require.NoError(t, err)

	out, err := lf.Invoke(context.Background(), tool.Runtime{}, map[string]any{"pattern": "**/*.go"})
	require.NoError(t, err)
	assert.Equal(t, "src/main.go", out)

	out, err = lf.Invoke(context.Background(), tool.Runtime{}, map[string]any{"pattern": "**"})
	require.NoError(t, err)
	assert.NotContains(t, out, ".env")
	assert.Contains(t, out, "notes.txt")

	out, err = lf.Invoke(context.Background(), tool.Runtime{}, map[string]any{"pattern": "*.md"})
	require.NoError(t, err)
	assert.Equal(t, "no files match the pattern", out)

	_, err = lf.Invoke(context.Background(), tool.Runtime{}, map[string]any{"pattern": "[bad"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid glob")
}

func TestTools(t *testing.T) {
	all, err := Tools(Access{Root: t.TempDir()})
	require.NoError(t, err)
	require.Len(t, all, 3)
	names := []string{all[0].Name(), all[1].Name(), all[2].Name()}
	assert.ElementsMatch(t, []string{"read_file", "write_file", "list_files"}, names)
}
