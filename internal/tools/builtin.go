package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tlee933/talos/internal/desktop"
	"github.com/tlee933/talos/internal/facts"
	"github.com/tlee933/talos/internal/shell"
	"github.com/tlee933/talos/internal/vault"
)

// Deps are the services the built-in tools close over. Vault may be nil
// when no Obsidian vault is configured.
type Deps struct {
	Facts *facts.Store
	Vault *vault.Vault
}

// BuildRegistry registers all built-in tools enabled by name. An empty
// enabled list registers everything.
func BuildRegistry(deps Deps, enabled []string) *Registry {
	r := NewRegistry()
	allow := map[string]bool{}
	for _, name := range enabled {
		allow[name] = true
	}
	add := func(d *Def) {
		if len(allow) == 0 || allow[d.Name] {
			r.Register(d)
		}
	}

	add(&Def{
		Name:        "shell_exec",
		Description: "Execute a shell command and return the output",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"command": map[string]any{"type": "string", "description": "Shell command to execute"},
			},
			"required": []any{"command"},
		},
		Handler:         shellExec,
		RequiresConfirm: true,
	})
	add(&Def{
		Name:        "file_read",
		Description: "Read a file and return its contents (truncated to 8K chars)",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path": map[string]any{"type": "string", "description": "Path to the file to read"},
			},
			"required": []any{"path"},
		},
		Handler: fileRead,
	})
	add(&Def{
		Name:        "file_write",
		Description: "Write content to a file (creates parent dirs if needed)",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path":    map[string]any{"type": "string", "description": "Path to write to"},
				"content": map[string]any{"type": "string", "description": "Content to write"},
			},
			"required": []any{"path", "content"},
		},
		Handler:         fileWrite,
		RequiresConfirm: true,
	})
	add(&Def{
		Name:        "file_list",
		Description: "List files in a directory matching a glob pattern",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"directory": map[string]any{"type": "string", "description": "Directory to list", "default": "."},
				"pattern":   map[string]any{"type": "string", "description": "Glob pattern", "default": "*"},
			},
		},
		Handler: fileList,
	})
	add(&Def{
		Name:        "file_search",
		Description: "Search indexed files by content or name (Baloo)",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{"type": "string", "description": "Search terms"},
			},
			"required": []any{"query"},
		},
		Handler: fileSearch,
	})
	add(&Def{
		Name:        "clipboard_read",
		Description: "Read current clipboard contents (Wayland)",
		Parameters:  map[string]any{"type": "object", "properties": map[string]any{}},
		Handler:     clipboardRead,
	})
	add(&Def{
		Name:        "clipboard_write",
		Description: "Write text to the clipboard (Wayland)",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text": map[string]any{"type": "string", "description": "Text to copy to clipboard"},
			},
			"required": []any{"text"},
		},
		Handler: clipboardWrite,
	})
	add(&Def{
		Name:        "notify",
		Description: "Send a desktop notification",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title": map[string]any{"type": "string", "description": "Notification title"},
				"body":  map[string]any{"type": "string", "description": "Notification body", "default": ""},
			},
			"required": []any{"title"},
		},
		Handler: notifyTool,
	})
	add(&Def{
		Name:        "web_fetch",
		Description: "Fetch a URL and return its readable text content",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"url": map[string]any{"type": "string", "description": "URL to fetch"},
			},
			"required": []any{"url"},
		},
		Handler: webFetch,
	})
	add(&Def{
		Name:        "fact_store",
		Description: "Store a persistent fact in the knowledge base",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"key":   map[string]any{"type": "string", "description": "Fact key"},
				"value": map[string]any{"type": "string", "description": "Fact value"},
			},
			"required": []any{"key", "value"},
		},
		Handler: factStore(deps.Facts),
	})
	add(&Def{
		Name:        "fact_get",
		Description: "Retrieve a fact from the knowledge base (or all facts if no key)",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"key": map[string]any{"type": "string", "description": "Fact key (optional)", "default": ""},
			},
		},
		Handler: factGet(deps.Facts),
	})
	if deps.Vault != nil {
		add(&Def{
			Name:        "vault_search",
			Description: "Search the Obsidian vault for notes matching a query",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{"type": "string", "description": "Text to search for"},
				},
				"required": []any{"query"},
			},
			Handler: vaultSearch(deps.Vault),
		})
	}
	return r
}

func shellExec(ctx context.Context, args map[string]any) (string, error) {
	command := stringArg(args, "command", "")
	if command == "" {
		return "error: command is required", nil
	}
	result := shell.Run(ctx, command)
	output := result.Output()
	if output == "" {
		output = "(no output)"
	}
	if len(output) > 4000 {
		output = output[:2000] + "\n...(truncated)...\n" + output[len(output)-1500:]
	}
	return fmt.Sprintf("exit code: %d\n%s", result.ExitCode, output), nil
}

func fileRead(_ context.Context, args map[string]any) (string, error) {
	path := expandHome(stringArg(args, "path", ""))
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Sprintf("error: %s not found", path), nil
	}
	if info.IsDir() {
		return fmt.Sprintf("error: %s is not a file", path), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Sprintf("error: %v", err), nil
	}
	text := string(data)
	if len(text) > 8000 {
		text = text[:8000] + "\n...(truncated at 8K chars)"
	}
	return text, nil
}

func fileWrite(_ context.Context, args map[string]any) (string, error) {
	path := expandHome(stringArg(args, "path", ""))
	content := stringArg(args, "content", "")
	old, _ := os.ReadFile(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Sprintf("error: %v", err), nil
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Sprintf("error: %v", err), nil
	}
	result := fmt.Sprintf("wrote %d chars to %s", len(content), path)
	if len(old) > 0 {
		if summary := diffSummary(string(old), content); summary != "" {
			result += "\n" + summary
		}
	}
	return result, nil
}

func fileList(_ context.Context, args map[string]any) (string, error) {
	dir := expandHome(stringArg(args, "directory", "."))
	pattern := stringArg(args, "pattern", "*")
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Sprintf("error: %s not found", dir), nil
	}
	if !info.IsDir() {
		return fmt.Sprintf("error: %s is not a directory", dir), nil
	}
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return fmt.Sprintf("error: %v", err), nil
	}
	sort.Strings(matches)
	if len(matches) > 100 {
		matches = matches[:100]
	}
	if len(matches) == 0 {
		return "(no matches)", nil
	}
	return strings.Join(matches, "\n"), nil
}

func fileSearch(ctx context.Context, args map[string]any) (string, error) {
	query := stringArg(args, "query", "")
	if query == "" {
		return "error: query is required", nil
	}
	hits, err := desktop.FileSearch(ctx, query, 20)
	if err != nil {
		return fmt.Sprintf("error: %v", err), nil
	}
	if len(hits) == 0 {
		return "(no matches)", nil
	}
	return strings.Join(hits, "\n"), nil
}

func clipboardRead(ctx context.Context, _ map[string]any) (string, error) {
	text, err := desktop.ClipRead(ctx)
	if err != nil {
		return fmt.Sprintf("error: %v", err), nil
	}
	if text == "" {
		return "(clipboard empty)", nil
	}
	return text, nil
}

func clipboardWrite(ctx context.Context, args map[string]any) (string, error) {
	text := stringArg(args, "text", "")
	if err := desktop.ClipWrite(ctx, text); err != nil {
		return fmt.Sprintf("error: %v", err), nil
	}
	return fmt.Sprintf("copied %d chars to clipboard", len(text)), nil
}

func notifyTool(ctx context.Context, args map[string]any) (string, error) {
	title := stringArg(args, "title", "")
	body := stringArg(args, "body", "")
	if err := desktop.Notify(ctx, title, body); err != nil {
		return fmt.Sprintf("error: %v", err), nil
	}
	return "notification sent: " + title, nil
}

func factStore(store *facts.Store) Handler {
	return func(_ context.Context, args map[string]any) (string, error) {
		key := stringArg(args, "key", "")
		value := stringArg(args, "value", "")
		if key == "" || value == "" {
			return "error: key and value are required", nil
		}
		if err := store.Set(key, value); err != nil {
			return fmt.Sprintf("error: %v", err), nil
		}
		return fmt.Sprintf("stored: %s = %s", key, value), nil
	}
}

func factGet(store *facts.Store) Handler {
	return func(_ context.Context, args map[string]any) (string, error) {
		key := stringArg(args, "key", "")
		if key != "" {
			value, ok := store.Get(key)
			if !ok {
				return fmt.Sprintf("%s = (not found)", key), nil
			}
			return fmt.Sprintf("%s = %s", key, value), nil
		}
		all := store.All()
		if len(all) == 0 {
			return "(no facts stored)", nil
		}
		var lines []string
		for _, kv := range all {
			lines = append(lines, fmt.Sprintf("%s = %s", kv.Key, kv.Value))
		}
		return strings.Join(lines, "\n"), nil
	}
}

func vaultSearch(v *vault.Vault) Handler {
	return func(_ context.Context, args map[string]any) (string, error) {
		query := stringArg(args, "query", "")
		if query == "" {
			return "error: query is required", nil
		}
		hits := v.Search(query, 10)
		if len(hits) == 0 {
			return "(no matching notes)", nil
		}
		var lines []string
		for _, n := range hits {
			lines = append(lines, n.Relative)
		}
		return strings.Join(lines, "\n"), nil
	}
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
