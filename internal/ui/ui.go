// Package ui renders terminal output for the assistant: banner, streamed
// reasoning, command confirmations, and tool activity.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

const Logo = `
████████╗ █████╗ ██╗      ██████╗ ███████╗
╚══██╔══╝██╔══██╗██║     ██╔═══██╗██╔════╝
   ██║   ███████║██║     ██║   ██║███████╗
   ██║   ██╔══██║██║     ██║   ██║╚════██║
   ██║   ██║  ██║███████╗╚██████╔╝███████║
   ╚═╝   ╚═╝  ╚═╝╚══════╝ ╚═════╝ ╚══════╝`

// Renderer writes styled output to a terminal.
type Renderer struct {
	w io.Writer

	reasoning *color.Color
	thinking  *color.Color
	command   *color.Color
	danger    *color.Color
	output    *color.Color
	tool      *color.Color
	summary   *color.Color
	errstyle  *color.Color
	dim       *color.Color
}

// NewRenderer creates a renderer writing to stdout.
func NewRenderer() *Renderer {
	return NewRendererTo(os.Stdout)
}

// NewRendererTo creates a renderer writing to w.
func NewRendererTo(w io.Writer) *Renderer {
	return &Renderer{
		w:         w,
		reasoning: color.New(color.FgWhite),
		thinking:  color.New(color.FgHiBlack, color.Italic),
		command:   color.New(color.FgYellow, color.Bold),
		danger:    color.New(color.FgRed, color.Bold),
		output:    color.New(color.FgHiBlack),
		tool:      color.New(color.FgCyan),
		summary:   color.New(color.FgGreen),
		errstyle:  color.New(color.FgRed),
		dim:       color.New(color.FgHiBlack),
	}
}

// Banner prints the startup logo with backend info.
func (r *Renderer) Banner(model, backend string, toolCount int) {
	coral := color.New(color.FgRed, color.Bold)
	coral.Fprintln(r.w, Logo)
	r.dim.Fprintf(r.w, "  %s @ %s | %d tools | /help for commands\n\n", model, backend, toolCount)
}

// Reasoning prints assistant prose between code blocks.
func (r *Renderer) Reasoning(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	r.reasoning.Fprintln(r.w, text)
}

// Thinking prints model think-block content in a muted style.
func (r *Renderer) Thinking(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	r.thinking.Fprintf(r.w, "· %s\n", text)
}

// StreamChunk writes raw streamed text without styling or a newline.
func (r *Renderer) StreamChunk(text string) {
	fmt.Fprint(r.w, text)
}

// Command prints a command about to run, marking dangerous ones.
func (r *Renderer) Command(step int, command string, dangerous bool) {
	if dangerous {
		r.danger.Fprintf(r.w, "[%d] ! %s\n", step, command)
		return
	}
	r.command.Fprintf(r.w, "[%d] $ %s\n", step, command)
}

// Output prints command output indented and dimmed.
func (r *Renderer) Output(text string) {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return
	}
	for _, line := range strings.Split(text, "\n") {
		r.output.Fprintf(r.w, "  %s\n", line)
	}
}

// ToolCall announces a tool invocation.
func (r *Renderer) ToolCall(name string, args string) {
	r.tool.Fprintf(r.w, "⚙ %s(%s)\n", name, args)
}

// ToolResult prints truncated tool output.
func (r *Renderer) ToolResult(text string) {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return
	}
	if len(text) > 500 {
		text = text[:500] + "..."
	}
	for _, line := range strings.Split(text, "\n") {
		r.dim.Fprintf(r.w, "  %s\n", line)
	}
}

// Summary prints the final assistant message of an agentic run.
func (r *Renderer) Summary(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	r.summary.Fprintf(r.w, "\n%s\n", text)
}

// Error prints an error line.
func (r *Renderer) Error(msg string) {
	r.errstyle.Fprintf(r.w, "error: %s\n", msg)
}

// Info prints a dimmed informational line.
func (r *Renderer) Info(msg string) {
	r.dim.Fprintln(r.w, msg)
}

// Plain prints unstyled text.
func (r *Renderer) Plain(msg string) {
	fmt.Fprintln(r.w, msg)
}

// ClearScreen clears the terminal.
func (r *Renderer) ClearScreen() {
	fmt.Fprint(r.w, "\033[H\033[2J")
}
