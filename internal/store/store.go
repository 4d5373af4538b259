// Package store persists chat conversations as JSON files so sessions can be
// resumed, listed, and exported.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tlee933/talos/internal/llm"
)

// Conversation is a saved chat session.
type Conversation struct {
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	Created time.Time  `json:"created"`
	Updated time.Time  `json:"updated"`
	Model   string     `json:"model"`
	Turns   []llm.Turn `json:"turns"`
}

// Summary is a conversation listing entry without the turns.
type Summary struct {
	ID      string
	Title   string
	Updated time.Time
	Turns   int
}

// Store keeps conversations under dataDir/conversations.
type Store struct {
	dir string
}

// OpenStore creates the conversations directory if needed.
func OpenStore(dataDir string) (*Store, error) {
	dir := filepath.Join(dataDir, "conversations")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

// NewID returns a fresh conversation id.
func NewID() string { return uuid.NewString() }

// Save writes (or overwrites) a conversation. The title defaults to the
// first user turn, truncated.
func (s *Store) Save(conv *Conversation) error {
	if conv.ID == "" {
		conv.ID = NewID()
	}
	if conv.Created.IsZero() {
		conv.Created = time.Now()
	}
	conv.Updated = time.Now()
	if conv.Title == "" {
		conv.Title = titleFrom(conv.Turns)
	}
	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(conv.ID), data, 0o644)
}

// Load reads a conversation by id, accepting unique id prefixes.
func (s *Store) Load(id string) (*Conversation, error) {
	path := s.path(id)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		resolved, rerr := s.resolve(id)
		if rerr != nil {
			return nil, rerr
		}
		path = s.path(resolved)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var conv Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("corrupt conversation %s: %w", id, err)
	}
	return &conv, nil
}

// List returns conversation summaries, most recently updated first.
func (s *Store) List() ([]Summary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var out []Summary
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		conv, err := s.Load(strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			continue
		}
		out = append(out, Summary{
			ID:      conv.ID,
			Title:   conv.Title,
			Updated: conv.Updated,
			Turns:   len(conv.Turns),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Updated.After(out[j].Updated) })
	return out, nil
}

// Delete removes a conversation by id or unique prefix.
func (s *Store) Delete(id string) error {
	resolved, err := s.resolve(id)
	if err != nil {
		return err
	}
	return os.Remove(s.path(resolved))
}

// Export renders a conversation as markdown or json.
func (s *Store) Export(id, format string) (string, error) {
	conv, err := s.Load(id)
	if err != nil {
		return "", err
	}
	switch format {
	case "json":
		data, err := json.MarshalIndent(conv, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	case "markdown", "md", "":
		var b strings.Builder
		fmt.Fprintf(&b, "# %s\n\n", conv.Title)
		fmt.Fprintf(&b, "*%s — %d turns*\n\n", conv.Updated.Format("2006-01-02 15:04"), len(conv.Turns))
		for _, t := range conv.Turns {
			switch t.Role {
			case llm.RoleUser:
				fmt.Fprintf(&b, "**You:** %s\n\n", t.Content)
			case llm.RoleAssistant:
				fmt.Fprintf(&b, "%s\n\n", t.Content)
			}
		}
		return b.String(), nil
	default:
		return "", fmt.Errorf("unknown export format: %s", format)
	}
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// resolve matches an id prefix against stored conversations.
func (s *Store) resolve(prefix string) (string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return "", err
	}
	var matches []string
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ".json")
		if strings.HasPrefix(name, prefix) {
			matches = append(matches, name)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("conversation not found: %s", prefix)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("ambiguous conversation id: %s (%d matches)", prefix, len(matches))
	}
}

func titleFrom(turns []llm.Turn) string {
	for _, t := range turns {
		if t.Role == llm.RoleUser {
			title := strings.TrimSpace(t.Content)
			if idx := strings.IndexByte(title, '\n'); idx >= 0 {
				title = title[:idx]
			}
			if len(title) > 60 {
				title = title[:57] + "..."
			}
			return title
		}
	}
	return "Untitled"
}
