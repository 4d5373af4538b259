package tools

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// diffSummary reports how a file changed when file_write overwrites existing
// content. The output feeds back to the model, so it stays plain text with
// just counts and a short snippet of changed lines.
func diffSummary(old, new string) string {
	if old == new {
		return "(content unchanged)"
	}
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(old, new)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var added, removed int
	var changed []string
	for _, d := range diffs {
		n := strings.Count(d.Text, "\n")
		if n == 0 && d.Text != "" {
			n = 1
		}
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			added += n
			changed = appendChanged(changed, "+", d.Text)
		case diffmatchpatch.DiffDelete:
			removed += n
			changed = appendChanged(changed, "-", d.Text)
		}
	}

	summary := fmt.Sprintf("diff: +%d -%d lines", added, removed)
	if len(changed) > 0 {
		summary += "\n" + strings.Join(changed, "\n")
	}
	return summary
}

// appendChanged collects prefixed changed lines, capped so large rewrites
// do not flood the context window.
func appendChanged(out []string, prefix, text string) []string {
	const maxLines = 12
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		if len(out) >= maxLines {
			if out[len(out)-1] != "..." {
				out = append(out, "...")
			}
			return out
		}
		out = append(out, prefix+" "+line)
	}
	return out
}
