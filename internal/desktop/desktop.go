// Package desktop wraps the Linux desktop helpers talos leans on: libnotify
// notifications, the Wayland clipboard, and Baloo file search. Every helper
// is best-effort; a missing binary degrades to an error the caller can show.
package desktop

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Notify sends a desktop notification via notify-send.
func Notify(ctx context.Context, summary, body string) error {
	args := []string{"--app-name=Talos", "--urgency=normal", summary}
	if body != "" {
		args = append(args, body)
	}
	cmd := exec.CommandContext(ctx, "notify-send", args...)
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("DBUS_SESSION_BUS_ADDRESS=unix:path=/run/user/%d/bus", os.Getuid()))
	return cmd.Run()
}

// ClipRead returns the current clipboard contents via wl-paste.
func ClipRead(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, "wl-paste", "--no-newline")
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("clipboard read failed: %w", err)
	}
	return out.String(), nil
}

// ClipWrite copies text to the clipboard via wl-copy.
func ClipWrite(ctx context.Context, text string) error {
	cmd := exec.CommandContext(ctx, "wl-copy")
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("clipboard write failed: %w", err)
	}
	return nil
}

// FileSearch queries the Baloo index. Returns at most limit paths.
func FileSearch(ctx context.Context, query string, limit int) ([]string, error) {
	cmd := exec.CommandContext(ctx, "baloosearch", query)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("file search failed: %w", err)
	}

	var results []string
	for _, line := range strings.Split(out.String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		results = append(results, line)
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}
