// Package learn records completed agentic interactions to a local JSONL
// queue for later review and fine-tuning dataset export.
package learn

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CommandResult is one executed command inside an interaction.
type CommandResult struct {
	Command  string `json:"command"`
	Success  bool   `json:"success"`
	ExitCode int    `json:"exit_code"`
}

// Interaction is a full request/execution cycle worth remembering.
type Interaction struct {
	ID              string          `json:"id"`
	Timestamp       time.Time       `json:"timestamp"`
	UserQuery       string          `json:"user_query"`
	Commands        []CommandResult `json:"commands"`
	ResponseSummary string          `json:"response_summary"`
	Success         bool            `json:"success"`
	Rating          int             `json:"rating"` // -1, 0, +1
}

// Build assembles an interaction record. Returns nil when no commands ran,
// since a pure-chat exchange carries no execution signal worth saving.
func Build(userQuery, response string, commands []CommandResult) *Interaction {
	if len(commands) == 0 {
		return nil
	}
	success := true
	for _, c := range commands {
		if !c.Success {
			success = false
			break
		}
	}
	summary := response
	if len(summary) > 500 {
		summary = summary[:500]
	}
	return &Interaction{
		ID:              uuid.NewString(),
		Timestamp:       time.Now(),
		UserQuery:       userQuery,
		Commands:        commands,
		ResponseSummary: summary,
		Success:         success,
	}
}

// AutoRate assigns a default rating from execution outcome: +1 when every
// command succeeded, -1 when all failed, 0 for mixed results.
func AutoRate(in *Interaction) int {
	if len(in.Commands) == 0 {
		return 0
	}
	failures := 0
	for _, c := range in.Commands {
		if !c.Success {
			failures++
		}
	}
	switch failures {
	case 0:
		return 1
	case len(in.Commands):
		return -1
	default:
		return 0
	}
}

// Queue appends interactions to a JSONL file under the data directory.
type Queue struct {
	mu   sync.Mutex
	path string
}

// OpenQueue prepares the interactions log at dataDir/interactions.jsonl.
func OpenQueue(dataDir string) (*Queue, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	return &Queue{path: filepath.Join(dataDir, "interactions.jsonl")}, nil
}

// Record appends one interaction as a JSON line.
func (q *Queue) Record(in *Interaction) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(q.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(append(data, '\n'))
	return err
}

// Recent returns the last n recorded interactions, newest last.
func (q *Queue) Recent(n int) ([]*Interaction, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	data, err := os.ReadFile(q.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var all []*Interaction
	for _, line := range splitLines(data) {
		var in Interaction
		if err := json.Unmarshal(line, &in); err != nil {
			continue
		}
		all = append(all, &in)
	}
	if len(all) > n {
		all = all[len(all)-n:]
	}
	return all, nil
}

// Stats summarizes recorded interactions.
func (q *Queue) Stats() (total, succeeded int, err error) {
	all, err := q.Recent(1 << 30)
	if err != nil {
		return 0, 0, err
	}
	for _, in := range all {
		total++
		if in.Success {
			succeeded++
		}
	}
	return total, succeeded, nil
}

func splitLines(data []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i, b := range data {
		if b == '\n' {
			if i > start {
				lines = append(lines, data[start:i])
			}
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, data[start:])
	}
	return lines
}
