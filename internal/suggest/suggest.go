// Package suggest produces ghost-text completions for the prompt line,
// combining a static pool with follow-ups inferred from the last response.
package suggest

import "strings"

var baseSuggestions = []string{
	"Summarize this page",
	"Explain this code",
	"What does this do?",
	"Write a function that ",
	"Help me understand ",
	"How do I ",
	"Fix this bug",
	"Refactor this to ",
	"What are the key points?",
	"Compare these approaches",
	"Give me an example of ",
	"Debug this error",
	"Optimize this code",
	"What is the difference between ",
}

// Patterns describes content categories detected in a response.
type Patterns struct {
	HasCode        bool
	HasList        bool
	HasError       bool
	HasExplanation bool
}

// DetectPatterns inspects assistant content for follow-up cues.
func DetectPatterns(content string) Patterns {
	if content == "" {
		return Patterns{}
	}
	c := strings.ToLower(content)
	return Patterns{
		HasCode:        strings.Contains(c, "```") || strings.Contains(c, "function") || strings.Contains(c, "class "),
		HasList:        strings.Contains(c, "1.") || strings.Contains(c, "- ") || strings.Contains(c, "* "),
		HasError:       strings.Contains(c, "error") || strings.Contains(c, "bug") || strings.Contains(c, "fix") || strings.Contains(c, "issue"),
		HasExplanation: strings.Contains(c, "means") || strings.Contains(c, "because") || strings.Contains(c, "essentially"),
	}
}

// ContextSuggestions builds follow-up prompts from the last assistant reply.
func ContextSuggestions(lastContent string) []string {
	if lastContent == "" {
		return nil
	}
	p := DetectPatterns(lastContent)
	var follow []string

	if p.HasCode {
		follow = append(follow,
			"Explain this step by step",
			"Can you add error handling?",
			"Write tests for this",
			"Can you optimize this?",
			"Show me a different approach",
		)
	}
	if p.HasList {
		follow = append(follow,
			"Tell me more about the first one",
			"Which do you recommend?",
			"Can you elaborate on that?",
			"Give me a comparison table",
		)
	}
	if p.HasError {
		follow = append(follow,
			"What caused this error?",
			"How do I prevent this?",
			"Are there other edge cases?",
			"Show me the fix",
		)
	}
	if p.HasExplanation {
		follow = append(follow,
			"Can you give me an example?",
			"Explain it more simply",
			"How does this relate to ",
			"What are the tradeoffs?",
		)
	}

	follow = append(follow, "Go deeper on that", "Can you rewrite that?", "Thanks, now ", "What about ")
	return follow
}

// Match returns the remainder of the first suggestion with the input as a
// case-insensitive prefix. Inputs shorter than two characters never match.
func Match(input string, suggestions []string) string {
	if len(input) < 2 {
		return ""
	}
	lower := strings.ToLower(input)
	for _, s := range suggestions {
		if strings.HasPrefix(strings.ToLower(s), lower) {
			return s[len(input):]
		}
	}
	return ""
}

// Ghost returns suggested completion text for the current input. With empty
// input it offers the first context follow-up preemptively; while typing it
// prefix-matches with context suggestions ranked before the base pool.
func Ghost(input, lastAssistant string) string {
	ctx := ContextSuggestions(lastAssistant)
	if input == "" {
		if len(ctx) > 0 {
			return ctx[0]
		}
		return ""
	}
	return Match(input, append(ctx, baseSuggestions...))
}
