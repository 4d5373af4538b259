package agent

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/tlee933/talos/internal/config"
	"github.com/tlee933/talos/internal/learn"
	"github.com/tlee933/talos/internal/llm"
	"github.com/tlee933/talos/internal/shell"
	"github.com/tlee933/talos/internal/ui"
)

// MaxSteps bounds the agentic loop so a confused model cannot spin forever.
const MaxSteps = 8

// dangerousPatterns always trigger a confirmation prompt regardless of the
// configured confirm mode.
var dangerousPatterns = []string{
	"rm -rf",
	"dd ",
	"mkfs",
	"fdisk",
	"parted",
	"systemctl stop",
	"kill -9",
	"chmod 777",
	"> /dev/",
	":(){ :|:& };:",
}

// IsDangerous reports whether a command matches a dangerous pattern.
func IsDangerous(command string) bool {
	cmd := strings.TrimSpace(command)
	for _, p := range dangerousPatterns {
		if strings.Contains(cmd, p) {
			return true
		}
	}
	return false
}

// Prompter asks the user to approve an action. It returns the raw answer;
// an error means the prompt was interrupted and the action is skipped.
type Prompter interface {
	Confirm(prompt string) (string, error)
}

// Executor runs the agentic loop: render reasoning, confirm and execute
// commands and tools, feed results back, repeat until terminal.
type Executor struct {
	agent *Agent
	cfg   *config.Config
	out   *ui.Renderer
	ask   Prompter
}

// NewExecutor wires the loop dependencies.
func NewExecutor(a *Agent, cfg *config.Config, out *ui.Renderer, ask Prompter) *Executor {
	return &Executor{agent: a, cfg: cfg, out: out, ask: ask}
}

// Run processes a parsed response through the full agentic cycle. It
// returns an interaction record when at least one command or tool ran, and
// nil for pure-reasoning exchanges.
func (e *Executor) Run(ctx context.Context, parsed *llm.ParsedResponse, query, envContext string) *learn.Interaction {
	if parsed.Err != "" {
		e.out.Error(parsed.Err)
		return nil
	}

	autoRun := false
	step := 0
	var executed []learn.CommandResult

	for iteration := 0; iteration < MaxSteps; iteration++ {
		for _, tb := range parsed.ThinkBlocks {
			e.out.Thinking(tb)
		}

		// Tool calls take precedence over code blocks.
		if len(parsed.ToolCalls) > 0 && e.agent.Registry() != nil {
			next, done := e.runToolRound(ctx, parsed, envContext, &autoRun, &executed)
			if done != nil {
				return done.interaction(query, executed)
			}
			parsed = next
			continue
		}

		next, done := e.runCommandRound(ctx, parsed, envContext, &autoRun, &step, &executed)
		if done != nil {
			return done.interaction(query, executed)
		}
		parsed = next
	}

	e.out.Info("reached max steps")
	return learn.Build(query, "", executed)
}

// outcome marks a terminal loop state and carries the summary text.
type outcome struct {
	summary string
}

func (o *outcome) interaction(query string, executed []learn.CommandResult) *learn.Interaction {
	return learn.Build(query, o.summary, executed)
}

// runToolRound executes the response's tool calls. It returns the next
// parsed response to process, or an outcome when the cycle is over.
func (e *Executor) runToolRound(ctx context.Context, parsed *llm.ParsedResponse, envContext string, autoRun *bool, executed *[]learn.CommandResult) (*llm.ParsedResponse, *outcome) {
	for _, seg := range parsed.Segments {
		if seg.Block == nil && seg.Text != "" {
			e.out.Reasoning(seg.Text)
		}
	}

	for _, tc := range parsed.ToolCalls {
		def, ok := e.agent.Registry().Get(tc.Name)
		if !ok {
			e.out.Error("unknown tool: " + tc.Name)
			continue
		}

		args, _ := json.Marshal(tc.Arguments)
		e.out.ToolCall(tc.Name, string(args))

		if def.RequiresConfirm && !*autoRun && e.cfg.ConfirmCommands != config.ConfirmNever {
			if !e.confirm(autoRun) {
				e.out.Info("skipped")
				continue
			}
		}

		result, err := def.Handler(ctx, tc.Arguments)
		if err != nil {
			result = "error: " + err.Error()
		}
		success := !strings.HasPrefix(result, "error:")
		e.out.ToolResult(result)
		*executed = append(*executed, learn.CommandResult{
			Command:  "tool:" + tc.Name,
			Success:  success,
			ExitCode: boolExit(success),
		})

		result = truncateForModel(result)
		next := e.agent.FeedToolResult(ctx, tc.Name, result, envContext, e.out.StreamChunk)
		e.out.Plain("")
		if next.Err != "" {
			e.out.Error(next.Err)
			return nil, &outcome{}
		}
		return next, nil
	}

	// Every call handled without producing a follow-up request.
	summary := finalText(parsed)
	if summary != "" {
		e.out.Summary(summary)
	}
	return nil, &outcome{summary: summary}
}

// runCommandRound walks the response segments, executing code blocks under
// the confirmation policy.
func (e *Executor) runCommandRound(ctx context.Context, parsed *llm.ParsedResponse, envContext string, autoRun *bool, step *int, executed *[]learn.CommandResult) (*llm.ParsedResponse, *outcome) {
	for _, seg := range parsed.Segments {
		if seg.Text != "" {
			e.out.Reasoning(seg.Text)
		}
		if seg.Block == nil {
			continue
		}

		*step++
		dangerous := IsDangerous(seg.Block.Command)
		e.out.Command(*step, seg.Block.Command, dangerous)

		if e.shouldPrompt(*autoRun, dangerous) {
			if !e.confirm(autoRun) {
				e.out.Info("skipped")
				continue
			}
		}

		result := shell.Run(ctx, seg.Block.Command)
		e.out.Output(result.Output())
		*executed = append(*executed, learn.CommandResult{
			Command:  seg.Block.Command,
			Success:  result.OK(),
			ExitCode: result.ExitCode,
		})

		output := truncateForModel(result.Output())
		next := e.agent.FeedCommandResult(ctx, seg.Block.Command, result.ExitCode, output, envContext, e.out.StreamChunk)
		e.out.Plain("")
		if next.Err != "" {
			e.out.Error(next.Err)
			return nil, &outcome{}
		}
		return next, nil
	}

	// No code blocks left in this round.
	summary := finalText(parsed)
	if summary != "" {
		e.out.Summary(summary)
	}
	return nil, &outcome{summary: summary}
}

// shouldPrompt applies the confirmation policy for a code block.
func (e *Executor) shouldPrompt(autoRun, dangerous bool) bool {
	switch {
	case autoRun && !dangerous:
		return false
	case e.cfg.ConfirmCommands == config.ConfirmNever && !dangerous:
		return false
	case e.cfg.ConfirmCommands == config.ConfirmSmart && !dangerous && !autoRun:
		return false
	}
	return true
}

// confirm prompts the user. "a"/"all" enables auto-run for the rest of the
// cycle; empty, "y", and "yes" approve this action only.
func (e *Executor) confirm(autoRun *bool) bool {
	answer, err := e.ask.Confirm("run? [Y/n/a] ")
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "a", "all", "yes all":
		*autoRun = true
		return true
	case "", "y", "yes":
		return true
	default:
		return false
	}
}

// finalText joins the reasoning text of non-code segments.
func finalText(parsed *llm.ParsedResponse) string {
	var parts []string
	for _, seg := range parsed.Segments {
		if seg.Block == nil && seg.Text != "" {
			parts = append(parts, seg.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// truncateForModel bounds output fed back to the model, keeping the head
// and tail of long captures.
func truncateForModel(text string) string {
	if len(text) > 4000 {
		return text[:2000] + "\n...(truncated)...\n" + text[len(text)-1500:]
	}
	return text
}

func boolExit(success bool) int {
	if success {
		return 0
	}
	return 1
}
