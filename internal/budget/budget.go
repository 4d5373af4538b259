// Package budget keeps conversation history within the model's context
// window. Token counts are estimated from character length; the correctness
// of pruning depends only on the estimate being monotonic, not exact.
package budget

import (
	"context"
	"fmt"
	"strings"

	"github.com/tlee933/talos/internal/llm"
)

// Constants tuned for a 32K-context code model.
const (
	MaxContextTokens = 32768
	ReservedTokens   = 4096 // headroom for response generation
	CharsPerToken    = 3.5
	MinRecentTurns   = 6

	// Turns longer than turnCeilingTokens are cut to turnTruncateTokens.
	turnCeilingTokens  = 1000
	turnTruncateTokens = 500
)

// EstimateTokens approximates token count from character length.
func EstimateTokens(text string) int {
	return int(float64(len(text)) / CharsPerToken)
}

// Budget is the token accounting for the current conversation.
type Budget struct {
	SystemTokens  int
	HistoryTokens int
	Total         int
	Remaining     int
	NeedsPruning  bool
}

// Calculate computes the token budget and whether pruning is needed.
func Calculate(systemPrompt string, history []llm.Turn) Budget {
	systemTokens := EstimateTokens(systemPrompt)
	historyTokens := 0
	for _, t := range history {
		historyTokens += EstimateTokens(t.Content)
	}
	total := systemTokens + historyTokens
	remaining := MaxContextTokens - ReservedTokens - total

	return Budget{
		SystemTokens:  systemTokens,
		HistoryTokens: historyTokens,
		Total:         total,
		Remaining:     remaining,
		NeedsPruning:  remaining < 0,
	}
}

// Target returns the history size pruning aims for.
func Target() int {
	return MaxContextTokens - ReservedTokens
}

// SmartPrune reduces history to fit within target tokens:
//   - truncate any single turn over the per-turn ceiling
//   - keep the first turn and the last MinRecentTurns turns
//   - drop middle turns oldest-first
//
// A degenerate history whose first+recent turns alone exceed the target is
// returned as first+recent anyway; callers get the closest achievable fit.
func SmartPrune(history []llm.Turn, target int) []llm.Turn {
	if len(history) == 0 {
		return []llm.Turn{}
	}

	truncated := make([]llm.Turn, 0, len(history))
	for _, turn := range history {
		if EstimateTokens(turn.Content) > turnCeilingTokens {
			maxChars := int(turnTruncateTokens * CharsPerToken)
			turn = llm.Turn{
				Role:    turn.Role,
				Content: turn.Content[:maxChars] + "\n...(truncated)",
			}
		}
		truncated = append(truncated, turn)
	}

	if totalTokens(truncated) <= target {
		return truncated
	}
	if len(truncated) <= MinRecentTurns+1 {
		return truncated // too short to prune further
	}

	first := truncated[:1]
	recent := truncated[len(truncated)-MinRecentTurns:]
	middle := truncated[1 : len(truncated)-MinRecentTurns]

	for len(middle) > 0 {
		if totalTokens(first)+totalTokens(middle)+totalTokens(recent) <= target {
			break
		}
		middle = middle[1:]
	}

	result := make([]llm.Turn, 0, 1+len(middle)+len(recent))
	result = append(result, first...)
	result = append(result, middle...)
	result = append(result, recent...)

	if totalTokens(result) > target {
		result = append(first[:1:1], recent...)
	}
	return result
}

func totalTokens(turns []llm.Turn) int {
	total := 0
	for _, t := range turns {
		total += EstimateTokens(t.Content)
	}
	return total
}

// Completer is the slice of the LLM client that summarization needs.
type Completer interface {
	Complete(ctx context.Context, request llm.ChatRequest) (string, error)
	Model() string
}

// Summarize compresses old turns into a single synthetic system turn via the
// backend, keeping the recent window verbatim. Any failure degrades to
// SmartPrune; it never returns an error.
func Summarize(ctx context.Context, c Completer, history []llm.Turn) []llm.Turn {
	target := Target()

	if totalTokens(history) <= target {
		return history
	}
	if len(history) <= MinRecentTurns+1 {
		return SmartPrune(history, target)
	}

	recent := history[len(history)-MinRecentTurns:]
	old := history[:len(history)-MinRecentTurns]

	var lines []string
	for _, t := range old {
		content := t.Content
		if len(content) > 500 {
			content = content[:500]
		}
		lines = append(lines, fmt.Sprintf("%s: %s", t.Role, content))
	}
	oldText := strings.Join(lines, "\n")
	if len(oldText) > 3000 {
		oldText = oldText[:3000]
	}

	prompt := "Summarize the following conversation history in 2-3 sentences, " +
		"preserving key facts, decisions, and context:\n\n" + oldText

	request := llm.ChatRequest{
		Model: c.Model(),
		Messages: []llm.Turn{
			{Role: llm.RoleSystem, Content: "You are a concise summarizer."},
			{Role: llm.RoleUser, Content: prompt},
		},
		Temperature: 0.3,
		MaxTokens:   200,
	}

	summary, err := c.Complete(ctx, request)
	if err != nil {
		return SmartPrune(history, target)
	}

	result := make([]llm.Turn, 0, 1+len(recent))
	result = append(result, llm.Turn{
		Role:    llm.RoleSystem,
		Content: "[Conversation summary]: " + summary,
	})
	result = append(result, recent...)
	return result
}
