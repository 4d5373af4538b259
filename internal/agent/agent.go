// Package agent drives conversations with the model backend: it owns the
// conversation history, keeps it inside the context budget, and turns raw
// streamed responses into parsed, actionable structures.
package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/tlee933/talos/internal/budget"
	"github.com/tlee933/talos/internal/config"
	"github.com/tlee933/talos/internal/llm"
	"github.com/tlee933/talos/internal/logging"
	"github.com/tlee933/talos/internal/tools"
)

// SystemPrompt is the assistant persona sent with every request.
const SystemPrompt = "You are Talos, a local desktop AI assistant running on Fedora Kinoite with KDE Plasma 6. " +
	"You execute shell commands, search files, manage the desktop, and query an Obsidian vault. " +
	"Be direct. When a task needs a command, give the exact command."

// ReasonSuffix is appended to a query to request step-by-step reasoning.
const ReasonSuffix = "\n\nThink through this step by step inside <think> tags before giving your final answer."

// Agent holds one conversation with the backend.
type Agent struct {
	cfg        *config.Config
	client     *llm.Client
	registry   *tools.Registry
	toolPrompt string

	history        []llm.Turn
	conversationID string
}

// New creates an agent. The registry may be nil when tool use is disabled.
func New(cfg *config.Config, client *llm.Client, registry *tools.Registry) *Agent {
	a := &Agent{cfg: cfg, client: client, registry: registry}
	if registry != nil && registry.Len() > 0 {
		a.toolPrompt = registry.SystemPrompt()
	}
	return a
}

// Registry returns the tool registry, or nil.
func (a *Agent) Registry() *tools.Registry { return a.registry }

// History returns the conversation turns recorded so far.
func (a *Agent) History() []llm.Turn { return a.history }

// SetHistory replaces the conversation, used when resuming a saved session.
func (a *Agent) SetHistory(id string, turns []llm.Turn) {
	a.conversationID = id
	a.history = append([]llm.Turn(nil), turns...)
}

// ConversationID returns the current conversation id, empty until assigned.
func (a *Agent) ConversationID() string { return a.conversationID }

// SetConversationID assigns the persistent id for this session.
func (a *Agent) SetConversationID(id string) { a.conversationID = id }

// Reset drops the conversation history.
func (a *Agent) Reset() {
	a.history = nil
	a.conversationID = ""
}

// LastAssistant returns the most recent assistant turn content.
func (a *Agent) LastAssistant() string {
	for i := len(a.history) - 1; i >= 0; i-- {
		if a.history[i].Role == llm.RoleAssistant {
			return a.history[i].Content
		}
	}
	return ""
}

// Send submits a user message and streams the reply, invoking onChunk for
// each delta. The response is recorded in history and parsed. Transport
// failures come back as an error-sentinel ParsedResponse, never an error.
func (a *Agent) Send(ctx context.Context, message, envContext string, onChunk func(string)) *llm.ParsedResponse {
	a.history = append(a.history, llm.Turn{Role: llm.RoleUser, Content: message})
	return a.complete(ctx, envContext, onChunk)
}

// Resend retries the last request after a transport failure. The failed
// attempt already appended the user turn, so no new turn is recorded.
func (a *Agent) Resend(ctx context.Context, envContext string, onChunk func(string)) *llm.ParsedResponse {
	return a.complete(ctx, envContext, onChunk)
}

// FeedCommandResult reports a finished shell command back to the model as a
// user turn and streams the follow-up response.
func (a *Agent) FeedCommandResult(ctx context.Context, command string, exitCode int, output, envContext string, onChunk func(string)) *llm.ParsedResponse {
	if output == "" {
		output = "(no output)"
	}
	msg := fmt.Sprintf("Command `%s` finished with exit code %d.\nOutput:\n%s\n\nContinue with the task. If it is complete, summarize the result.", command, exitCode, output)
	a.history = append(a.history, llm.Turn{Role: llm.RoleUser, Content: msg})
	return a.complete(ctx, envContext, onChunk)
}

// FeedToolResult reports a tool's output back to the model and streams the
// follow-up response.
func (a *Agent) FeedToolResult(ctx context.Context, toolName, result, envContext string, onChunk func(string)) *llm.ParsedResponse {
	msg := fmt.Sprintf("Tool `%s` returned:\n%s\n\nContinue with the task. If it is complete, summarize the result.", toolName, result)
	a.history = append(a.history, llm.Turn{Role: llm.RoleUser, Content: msg})
	return a.complete(ctx, envContext, onChunk)
}

// complete runs one request against the backend with the budget-managed
// history and records the assistant reply.
func (a *Agent) complete(ctx context.Context, envContext string, onChunk func(string)) *llm.ParsedResponse {
	system := a.systemContent(envContext)

	if budget.Calculate(system, a.history).NeedsPruning {
		before := len(a.history)
		a.history = budget.Summarize(ctx, a.client, a.history)
		logging.Logger.Info("context pruned", "before", before, "after", len(a.history))
	}

	messages := make([]llm.Turn, 0, len(a.history)+1)
	messages = append(messages, llm.Turn{Role: llm.RoleSystem, Content: system})
	messages = append(messages, a.history...)

	req := a.client.NewRequest(messages)
	req.Stream = true
	if a.registry != nil {
		req.Tools = a.registry.Schema()
	}

	text, err := a.client.Stream(ctx, req, onChunk)
	if err != nil {
		return llm.ErrResponse(err.Error())
	}
	if strings.TrimSpace(text) == "" {
		return &llm.ParsedResponse{Segments: []llm.Segment{{Text: "(no response)"}}}
	}

	a.history = append(a.history, llm.Turn{Role: llm.RoleAssistant, Content: text})
	return llm.Parse(text)
}

func (a *Agent) systemContent(envContext string) string {
	system := SystemPrompt
	if a.toolPrompt != "" {
		system += a.toolPrompt
	}
	if envContext != "" {
		system += "\n\nCurrent environment:\n" + envContext
	}
	return system
}
