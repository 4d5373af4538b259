// Package vault provides read/write access to an Obsidian markdown vault.
// Obsidian stores everything as plain markdown files, so no API is needed,
// just filesystem walks plus the obsidian:// URI for opening notes.
package vault

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Note is a search or listing hit.
type Note struct {
	Path     string // absolute path
	Name     string // stem without .md
	Relative string // path relative to the vault root
	Modified time.Time
}

// Vault is an Obsidian vault rooted at a directory.
type Vault struct {
	root string
}

// Open validates the vault directory and returns a handle.
func Open(path string) (*Vault, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("vault not found: %s", abs)
	}
	return &Vault{root: abs}, nil
}

// Root returns the vault root directory.
func (v *Vault) Root() string { return v.root }

// notes walks all .md files, skipping dot-directories like .obsidian/ and
// .trash/.
func (v *Vault) notes() []string {
	var paths []string
	_ = filepath.WalkDir(v.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != v.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), ".md") {
			paths = append(paths, path)
		}
		return nil
	})
	return paths
}

// Search does a full-text search across vault notes, using ripgrep when
// available and a brute-force scan otherwise.
func (v *Vault) Search(query string, limit int) []Note {
	if hits, err := v.searchRipgrep(query, limit); err == nil {
		return hits
	}
	return v.searchBrute(query, limit)
}

func (v *Vault) searchRipgrep(query string, limit int) ([]Note, error) {
	cmd := exec.Command("rg", "--files-with-matches", "--ignore-case",
		"--glob", "*.md", "--glob", "!.obsidian/**", "--glob", "!.trash/**",
		query, v.root)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		// Exit code 1 means no matches; anything else falls through to the
		// brute-force scan.
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
			return []Note{}, nil
		}
		return nil, err
	}

	var hits []Note
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if line == "" || len(hits) >= limit {
			continue
		}
		hits = append(hits, v.note(line))
	}
	return hits, nil
}

func (v *Vault) searchBrute(query string, limit int) []Note {
	pattern, err := regexp.Compile("(?i)" + regexp.QuoteMeta(query))
	if err != nil {
		return nil
	}
	var hits []Note
	for _, path := range v.notes() {
		if len(hits) >= limit {
			break
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if pattern.Match(data) {
			hits = append(hits, v.note(path))
		}
	}
	return hits
}

func (v *Vault) note(path string) Note {
	rel, _ := filepath.Rel(v.root, path)
	n := Note{
		Path:     path,
		Name:     strings.TrimSuffix(filepath.Base(path), ".md"),
		Relative: rel,
	}
	if info, err := os.Stat(path); err == nil {
		n.Modified = info.ModTime()
	}
	return n
}

// Read returns a note's content by name (without .md) or relative path.
func (v *Vault) Read(nameOrPath string) (string, error) {
	for _, candidate := range []string{nameOrPath, nameOrPath + ".md"} {
		path := filepath.Join(v.root, candidate)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			data, err := os.ReadFile(path)
			if err != nil {
				return "", err
			}
			return string(data), nil
		}
	}

	// Fall back to a stem match anywhere in the vault.
	for _, path := range v.notes() {
		stem := strings.TrimSuffix(filepath.Base(path), ".md")
		if strings.EqualFold(stem, nameOrPath) {
			data, err := os.ReadFile(path)
			if err != nil {
				return "", err
			}
			return string(data), nil
		}
	}
	return "", fmt.Errorf("note not found: %s", nameOrPath)
}

// Create writes a new note, failing if it already exists.
func (v *Vault) Create(name, content, folder string) (string, error) {
	dir := v.root
	if folder != "" {
		dir = filepath.Join(v.root, folder)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
	}
	path := filepath.Join(dir, name+".md")
	if _, err := os.Stat(path); err == nil {
		rel, _ := filepath.Rel(v.root, path)
		return "", fmt.Errorf("note already exists: %s", rel)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Append adds content to an existing note.
func (v *Vault) Append(nameOrPath, content string) error {
	var target string
	for _, path := range v.notes() {
		stem := strings.TrimSuffix(filepath.Base(path), ".md")
		rel, _ := filepath.Rel(v.root, path)
		if strings.EqualFold(stem, nameOrPath) || rel == nameOrPath {
			target = path
			break
		}
	}
	if target == "" {
		return fmt.Errorf("note not found: %s", nameOrPath)
	}
	f, err := os.OpenFile(target, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(content)
	return err
}

// Daily returns today's daily note path, creating it if missing.
func (v *Vault) Daily(folder string) (string, error) {
	if folder == "" {
		folder = "Daily"
	}
	today := time.Now().Format("2006-01-02")
	dir := filepath.Join(v.root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, today+".md")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte(fmt.Sprintf("# %s\n\n", today)), 0o644); err != nil {
			return "", err
		}
	}
	return path, nil
}

// ListRecent returns the most recently modified notes.
func (v *Vault) ListRecent(limit int) []Note {
	var all []Note
	for _, path := range v.notes() {
		all = append(all, v.note(path))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Modified.After(all[j].Modified) })
	if len(all) > limit {
		all = all[:limit]
	}
	return all
}

var tagRe = regexp.MustCompile(`(?m)(?:^|\s)#([a-zA-Z][\w/-]*)`)

// Tags counts all #tags across the vault, most frequent first.
func (v *Vault) Tags() []TagCount {
	counts := map[string]int{}
	for _, path := range v.notes() {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		for _, m := range tagRe.FindAllStringSubmatch(string(data), -1) {
			counts[strings.ToLower(m[1])]++
		}
	}

	tags := make([]TagCount, 0, len(counts))
	for tag, n := range counts {
		tags = append(tags, TagCount{Tag: tag, Count: n})
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Count != tags[j].Count {
			return tags[i].Count > tags[j].Count
		}
		return tags[i].Tag < tags[j].Tag
	})
	return tags
}

// TagCount is a tag with its frequency across the vault.
type TagCount struct {
	Tag   string
	Count int
}

// OpenInObsidian opens a note in the Obsidian app via its URI scheme.
func (v *Vault) OpenInObsidian(nameOrPath string) error {
	uri := fmt.Sprintf("obsidian://open?vault=%s&file=%s", filepath.Base(v.root), nameOrPath)
	return exec.Command("xdg-open", uri).Start()
}
