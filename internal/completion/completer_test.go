package completion

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestCompleter() *CommandCompleter {
	return NewCommandCompleter([]string{"help", "exit", "export", "save", "sessions", "clear"})
}

func complete(c *CommandCompleter, input string) ([]string, int) {
	line := []rune(input)
	candidates, length := c.DoComplete(line, len(line))
	var out []string
	for _, cand := range candidates {
		out = append(out, string(cand))
	}
	return out, length
}

func TestCompleteCommandPrefix(t *testing.T) {
	c := newTestCompleter()
	got, length := complete(c, "ex")
	if len(got) != 2 {
		t.Fatalf("got %v", got)
	}
	// Candidates are suffixes that extend the typed prefix.
	want := map[string]bool{"it": true, "port": true}
	for _, g := range got {
		if !want[g] {
			t.Errorf("unexpected candidate %q", g)
		}
	}
	if length != 2 {
		t.Errorf("length = %d", length)
	}
}

func TestCompleteCommandNoMatch(t *testing.T) {
	c := newTestCompleter()
	if got, _ := complete(c, "zzz"); got != nil {
		t.Errorf("got %v", got)
	}
}

func TestNoCompletionPastFirstWord(t *testing.T) {
	c := newTestCompleter()
	if got, _ := complete(c, "help me"); got != nil {
		t.Errorf("got %v", got)
	}
}

func TestEmptyInput(t *testing.T) {
	c := newTestCompleter()
	if got, _ := complete(c, ""); got != nil {
		t.Errorf("got %v", got)
	}
}

func TestCompleteClipReference(t *testing.T) {
	c := newTestCompleter()
	got, _ := complete(c, "summarize @cl")
	found := false
	for _, g := range got {
		if g == "ip" || g == "ipboard" {
			found = true
		}
	}
	if !found {
		t.Errorf("got %v", got)
	}
}

func TestCompleteFileReference(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"report.md", "readme.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "repos"), 0o755); err != nil {
		t.Fatal(err)
	}
	old, _ := os.Getwd()
	os.Chdir(dir)
	defer os.Chdir(old)

	c := newTestCompleter()
	got, _ := complete(c, "read @re")
	want := map[string]bool{"port.md": true, "adme.txt": true, "pos/": true}
	if len(got) != 3 {
		t.Fatalf("got %v", got)
	}
	for _, g := range got {
		if !want[g] {
			t.Errorf("unexpected candidate %q", g)
		}
	}
}

func TestReferenceStopsAtSpace(t *testing.T) {
	c := newTestCompleter()
	// The @ ref was already terminated by a space, so the line completes as
	// a multi-word command instead, which yields nothing.
	if got, _ := complete(c, "read @a.txt and more"); got != nil {
		t.Errorf("got %v", got)
	}
}

func TestShellCommandCompletion(t *testing.T) {
	// Build a fake PATH with a single well-known executable name.
	dir := t.TempDir()
	for _, name := range []string{"mytool", "mytool-extra"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\n"), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	t.Setenv("PATH", dir)

	c := newTestCompleter()
	// Both match; the completion extends to the common prefix.
	got, length := complete(c, "!myt")
	if len(got) != 1 || got[0] != "ool" {
		t.Errorf("got %v", got)
	}
	if length != 0 {
		t.Errorf("length = %d", length)
	}

	// A unique prefix completes the full name.
	got, _ = complete(c, "!mytool-")
	if len(got) != 1 || got[0] != "extra" {
		t.Errorf("got %v", got)
	}
}

func TestShellCommandNoMatch(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	c := newTestCompleter()
	if got, _ := complete(c, "!nosuchbinary"); got != nil {
		t.Errorf("got %v", got)
	}
}
