package agent

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tlee933/talos/internal/desktop"
	"github.com/tlee933/talos/internal/shell"
)

// Matches @file.py, @src/main.go, @clip, @clipboard
var refRe = regexp.MustCompile(`@(clip(?:board)?|[\w./_-]+\.\w+)`)

const maxRefChars = 8000

// GatherEnvironment collects cwd, git branch, and short diff stats for
// injection into the system prompt. Returns "" when there is nothing
// beyond the working directory worth injecting.
func GatherEnvironment(ctx context.Context) string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	parts := []string{"- cwd: " + cwd}

	branch := shell.RunTimeout(ctx, "git rev-parse --abbrev-ref HEAD", 5*time.Second, "")
	if branch.OK() && strings.TrimSpace(branch.Stdout) != "" {
		parts = append(parts, "- git branch: "+strings.TrimSpace(branch.Stdout))

		diff := shell.RunTimeout(ctx, "git diff --stat HEAD", 5*time.Second, "")
		if diff.OK() && strings.TrimSpace(diff.Stdout) != "" {
			lines := strings.Split(strings.TrimSpace(diff.Stdout), "\n")
			parts = append(parts, "- git changes: "+strings.TrimSpace(lines[len(lines)-1]))
		}
	}

	if len(parts) == 1 {
		return ""
	}
	return strings.Join(parts, "\n")
}

// ExpandReferences resolves @file and @clip references in user input. It
// returns the input with references removed plus a context block holding
// the referenced contents, in original order.
func ExpandReferences(ctx context.Context, text string) (cleaned, contextBlock string) {
	matches := refRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, ""
	}

	var blocks []string
	var b strings.Builder
	prev := 0
	for _, m := range matches {
		b.WriteString(text[prev:m[0]])
		prev = m[1]
		ref := text[m[2]:m[3]]

		if ref == "clip" || ref == "clipboard" {
			content, err := desktop.ClipRead(ctx)
			if err == nil && content != "" {
				if len(content) > maxRefChars {
					content = content[:maxRefChars]
				}
				blocks = append(blocks, "[clipboard]\n"+content)
			}
			continue
		}

		path := ref
		if !filepath.IsAbs(path) {
			if cwd, err := os.Getwd(); err == nil {
				path = filepath.Join(cwd, path)
			}
		}
		data, err := os.ReadFile(path)
		if err != nil {
			blocks = append(blocks, "["+ref+"] (file not found)")
			continue
		}
		content := string(data)
		if len(content) > maxRefChars {
			content = content[:maxRefChars] + "\n...(truncated)"
		}
		blocks = append(blocks, "["+ref+"]\n"+content)
	}
	b.WriteString(text[prev:])

	return strings.TrimSpace(b.String()), strings.Join(blocks, "\n\n")
}
