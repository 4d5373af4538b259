// Package tools defines the function-calling tool registry: tool
// definitions, their JSON schemas for the chat completions API, and the
// textual system prompt fallback for models without native tool support.
package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tlee933/talos/internal/llm"
)

// Handler executes a tool with decoded arguments and returns output text
// destined for the model. Handlers report soft failures in the output
// string; a non-nil error means the tool itself could not run.
type Handler func(ctx context.Context, args map[string]any) (string, error)

// Def describes a callable tool.
type Def struct {
	Name            string
	Description     string
	Parameters      map[string]any // JSON Schema for arguments
	Handler         Handler
	RequiresConfirm bool
}

// Registry holds available tools keyed by name.
type Registry struct {
	defs map[string]*Def
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Def)}
}

// Register adds a tool definition.
func (r *Registry) Register(d *Def) {
	r.defs[d.Name] = d
}

// Get looks up a tool by name.
func (r *Registry) Get(name string) (*Def, bool) {
	d, ok := r.defs[name]
	return d, ok
}

// Names returns registered tool names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int { return len(r.defs) }

// Schema converts the registry to the OpenAI function-calling tools array.
func (r *Registry) Schema() []llm.ToolSchema {
	var schemas []llm.ToolSchema
	for _, name := range r.Names() {
		d := r.defs[name]
		schemas = append(schemas, llm.ToolSchema{
			Type: "function",
			Function: llm.ToolFunction{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  d.Parameters,
			},
		})
	}
	return schemas
}

// SystemPrompt renders a system prompt suffix that teaches the tool-call
// tag format and lists every tool with its parameters.
func (r *Registry) SystemPrompt() string {
	lines := []string{
		"\n\nYou have access to the following tools. To use a tool, output a <tool_call> tag:",
		`<tool_call>{"name": "tool_name", "arguments": {...}}</tool_call>`,
		"",
		"Available tools:",
	}
	for _, name := range r.Names() {
		d := r.defs[name]
		lines = append(lines, fmt.Sprintf("- %s: %s", d.Name, d.Description))
		props, _ := d.Parameters["properties"].(map[string]any)
		pnames := make([]string, 0, len(props))
		for pname := range props {
			pnames = append(pnames, pname)
		}
		sort.Strings(pnames)
		for _, pname := range pnames {
			info, _ := props[pname].(map[string]any)
			ptype, _ := info["type"].(string)
			if ptype == "" {
				ptype = "string"
			}
			pdesc, _ := info["description"].(string)
			lines = append(lines, fmt.Sprintf("    %s (%s): %s", pname, ptype, pdesc))
		}
	}
	return strings.Join(lines, "\n")
}

// stringArg extracts a string argument with a default.
func stringArg(args map[string]any, key, def string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return def
}
