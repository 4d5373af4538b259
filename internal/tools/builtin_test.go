package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tlee933/talos/internal/facts"
)

func testDeps(t *testing.T) Deps {
	t.Helper()
	store, err := facts.OpenStore(t.TempDir())
	require.NoError(t, err)
	return Deps{Facts: store}
}

func TestBuildRegistryAll(t *testing.T) {
	r := BuildRegistry(testDeps(t), nil)
	names := r.Names()
	assert.Contains(t, names, "shell_exec")
	assert.Contains(t, names, "file_read")
	assert.Contains(t, names, "fact_store")
	assert.NotContains(t, names, "vault_search", "vault tool needs a configured vault")
}

func TestBuildRegistryEnabledSubset(t *testing.T) {
	r := BuildRegistry(testDeps(t), []string{"file_read", "notify"})
	assert.Equal(t, []string{"file_read", "notify"}, r.Names())
}

func TestConfirmFlags(t *testing.T) {
	r := BuildRegistry(testDeps(t), nil)
	for name, want := range map[string]bool{
		"shell_exec": true,
		"file_write": true,
		"file_read":  false,
		"fact_get":   false,
	} {
		d, ok := r.Get(name)
		require.True(t, ok, name)
		assert.Equal(t, want, d.RequiresConfirm, name)
	}
}

func TestSchemaSorted(t *testing.T) {
	r := BuildRegistry(testDeps(t), nil)
	schemas := r.Schema()
	require.Equal(t, r.Len(), len(schemas))
	for i := 1; i < len(schemas); i++ {
		assert.Less(t, schemas[i-1].Function.Name, schemas[i].Function.Name)
	}
	assert.Equal(t, "function", schemas[0].Type)
}

func TestSystemPromptFormat(t *testing.T) {
	r := BuildRegistry(testDeps(t), []string{"file_read"})
	prompt := r.SystemPrompt()
	assert.Contains(t, prompt, "<tool_call>")
	assert.Contains(t, prompt, "- file_read: Read a file and return its contents (truncated to 8K chars)")
	assert.Contains(t, prompt, "    path (string): Path to the file to read")
}

func TestShellExec(t *testing.T) {
	out, err := shellExec(context.Background(), map[string]any{"command": "echo hi; exit 3"})
	require.NoError(t, err)
	assert.Contains(t, out, "exit code: 3")
	assert.Contains(t, out, "hi")
}

func TestShellExecMissingCommand(t *testing.T) {
	out, err := shellExec(context.Background(), map[string]any{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "error:"))
}

func TestFileRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	out, err := fileRead(context.Background(), map[string]any{"path": path})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestFileReadTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", 10000)), 0o644))

	out, err := fileRead(context.Background(), map[string]any{"path": path})
	require.NoError(t, err)
	assert.Contains(t, out, "...(truncated at 8K chars)")
	assert.Less(t, len(out), 8100)
}

func TestFileReadMissing(t *testing.T) {
	out, err := fileRead(context.Background(), map[string]any{"path": "/no/such/file"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "error:"))
}

func TestFileReadDirectory(t *testing.T) {
	out, err := fileRead(context.Background(), map[string]any{"path": t.TempDir()})
	require.NoError(t, err)
	assert.Contains(t, out, "not a file")
}

func TestFileWriteCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "out.txt")
	out, err := fileWrite(context.Background(), map[string]any{"path": path, "content": "data"})
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 4 chars")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))
}

func TestFileWriteOverwriteReportsDiff(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, os.WriteFile(path, []byte("one\ntwo\n"), 0o644))

	out, err := fileWrite(context.Background(), map[string]any{"path": path, "content": "one\nthree\n"})
	require.NoError(t, err)
	assert.Contains(t, out, "diff: +1 -1 lines")
	assert.Contains(t, out, "- two")
	assert.Contains(t, out, "+ three")
}

func TestFileList(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.go", "a.go", "c.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	out, err := fileList(context.Background(), map[string]any{"directory": dir, "pattern": "*.go"})
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], "a.go"))
	assert.True(t, strings.HasSuffix(lines[1], "b.go"))
}

func TestFileListNoMatches(t *testing.T) {
	out, err := fileList(context.Background(), map[string]any{"directory": t.TempDir(), "pattern": "*.zig"})
	require.NoError(t, err)
	assert.Equal(t, "(no matches)", out)
}

func TestFileSearchMissingQuery(t *testing.T) {
	out, err := fileSearch(context.Background(), map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "error: query is required", out)
}

func TestFactTools(t *testing.T) {
	deps := testDeps(t)
	set := factStore(deps.Facts)
	get := factGet(deps.Facts)
	ctx := context.Background()

	out, err := set(ctx, map[string]any{"key": "editor", "value": "neovim"})
	require.NoError(t, err)
	assert.Equal(t, "stored: editor = neovim", out)

	out, err = get(ctx, map[string]any{"key": "editor"})
	require.NoError(t, err)
	assert.Equal(t, "editor = neovim", out)

	out, err = get(ctx, map[string]any{"key": "missing"})
	require.NoError(t, err)
	assert.Contains(t, out, "(not found)")

	set(ctx, map[string]any{"key": "shell", "value": "zsh"})
	out, err = get(ctx, map[string]any{})
	require.NoError(t, err)
	assert.Contains(t, out, "editor = neovim")
	assert.Contains(t, out, "shell = zsh")
}

func TestDiffSummary(t *testing.T) {
	summary := diffSummary("a\nb\nc\n", "a\nx\nc\n")
	assert.Contains(t, summary, "diff: +1 -1 lines")
	assert.Contains(t, summary, "- b")
	assert.Contains(t, summary, "+ x")
}

func TestDiffSummaryUnchanged(t *testing.T) {
	assert.Equal(t, "(content unchanged)", diffSummary("same\n", "same\n"))
}
