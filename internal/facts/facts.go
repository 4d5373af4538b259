// Package facts is a small persistent key/value memory for user preferences
// and remembered details, stored as a single JSON file.
package facts

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Fact is one remembered entry.
type Fact struct {
	Value   string    `json:"value"`
	Updated time.Time `json:"updated"`
}

// Store is a file-backed fact store. All operations persist immediately.
type Store struct {
	mu    sync.Mutex
	path  string
	facts map[string]Fact
}

// OpenStore loads (or initializes) the fact store at dataDir/facts.json.
func OpenStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	s := &Store{
		path:  filepath.Join(dataDir, "facts.json"),
		facts: map[string]Fact{},
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, &s.facts); err != nil {
		// Corrupt store; start fresh rather than refuse to run.
		s.facts = map[string]Fact{}
	}
	return s, nil
}

func (s *Store) save() error {
	data, err := json.MarshalIndent(s.facts, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

// Set stores a fact under a normalized key.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.facts[normalize(key)] = Fact{Value: value, Updated: time.Now()}
	return s.save()
}

// Get returns a fact by key, or false if absent.
func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.facts[normalize(key)]
	return f.Value, ok
}

// Delete removes a fact. Returns whether it existed.
func (s *Store) Delete(key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := normalize(key)
	if _, ok := s.facts[k]; !ok {
		return false, nil
	}
	delete(s.facts, k)
	return true, s.save()
}

// Search returns keys whose key or value contains the query, sorted by key.
func (s *Store) Search(query string) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := strings.ToLower(query)
	out := map[string]string{}
	for k, f := range s.facts {
		if strings.Contains(k, q) || strings.Contains(strings.ToLower(f.Value), q) {
			out[k] = f.Value
		}
	}
	return out
}

// All returns every fact key in sorted order with its value.
func (s *Store) All() []KV {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]KV, 0, len(s.facts))
	for k, f := range s.facts {
		out = append(out, KV{Key: k, Value: f.Value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Len returns the number of stored facts.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.facts)
}

// KV is a key/value pair for listing.
type KV struct {
	Key   string
	Value string
}

func normalize(key string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), " ", "_")
}
