package agent

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExpandReferencesNone(t *testing.T) {
	cleaned, block := ExpandReferences(context.Background(), "what is the weather")
	if cleaned != "what is the weather" || block != "" {
		t.Errorf("got %q, %q", cleaned, block)
	}
}

func TestExpandReferencesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("remember the milk"), 0o644); err != nil {
		t.Fatal(err)
	}
	old, _ := os.Getwd()
	os.Chdir(dir)
	defer os.Chdir(old)

	cleaned, block := ExpandReferences(context.Background(), "summarize @notes.txt please")
	if cleaned != "summarize  please" {
		t.Errorf("cleaned = %q", cleaned)
	}
	if !strings.Contains(block, "[notes.txt]") || !strings.Contains(block, "remember the milk") {
		t.Errorf("block = %q", block)
	}
}

func TestExpandReferencesAbsolutePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "abs.txt")
	if err := os.WriteFile(path, []byte("absolute content"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, block := ExpandReferences(context.Background(), "read @"+path)
	if !strings.Contains(block, "absolute content") {
		t.Errorf("block = %q", block)
	}
}

func TestExpandReferencesMissingFile(t *testing.T) {
	cleaned, block := ExpandReferences(context.Background(), "look at @ghost.txt now")
	if strings.Contains(cleaned, "@ghost.txt") {
		t.Errorf("cleaned = %q", cleaned)
	}
	if !strings.Contains(block, "[ghost.txt] (file not found)") {
		t.Errorf("block = %q", block)
	}
}

func TestExpandReferencesTruncatesLargeFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.log")
	if err := os.WriteFile(path, []byte(strings.Repeat("x", 20000)), 0o644); err != nil {
		t.Fatal(err)
	}
	_, block := ExpandReferences(context.Background(), "check @"+path)
	if !strings.Contains(block, "...(truncated)") {
		t.Error("expected truncation marker")
	}
	if len(block) > maxRefChars+200 {
		t.Errorf("block too large: %d", len(block))
	}
}

func TestExpandReferencesMultiple(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("content of "+name), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	old, _ := os.Getwd()
	os.Chdir(dir)
	defer os.Chdir(old)

	_, block := ExpandReferences(context.Background(), "compare @a.txt and @b.txt")
	aIdx := strings.Index(block, "[a.txt]")
	bIdx := strings.Index(block, "[b.txt]")
	if aIdx < 0 || bIdx < 0 || aIdx > bIdx {
		t.Errorf("block = %q", block)
	}
}

func TestExpandReferencesEmailNotMatched(t *testing.T) {
	// An email-looking token still matches the extension rule; a bare word
	// without a dot must not.
	cleaned, block := ExpandReferences(context.Background(), "ping @alice about it")
	if cleaned != "ping @alice about it" || block != "" {
		t.Errorf("got %q, %q", cleaned, block)
	}
}

func TestGatherEnvironmentIncludesCwd(t *testing.T) {
	dir := t.TempDir()
	old, _ := os.Getwd()
	os.Chdir(dir)
	defer os.Chdir(old)

	env := GatherEnvironment(context.Background())
	// Outside a git repo only the cwd is known, which is not worth injecting.
	if env != "" && !strings.Contains(env, "- cwd: ") {
		t.Errorf("env = %q", env)
	}
}
