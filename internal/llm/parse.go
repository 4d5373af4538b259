package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

// CodeBlock is a fenced command extracted from model output.
type CodeBlock struct {
	Command string
	Lang    string
}

// Segment is one ordered unit of a parsed response: either reasoning text or
// a code block, never both.
type Segment struct {
	Text  string
	Block *CodeBlock
}

// ToolCall is a structured tool invocation request parsed from model output.
type ToolCall struct {
	Name      string
	Arguments map[string]any
	Raw       string
}

// ParsedResponse is the structured form of one model response. Err is only
// ever set by the transport layer to mark a connection failure; parse
// problems degrade to reasoning text instead.
type ParsedResponse struct {
	Segments    []Segment
	ThinkBlocks []string
	ToolCalls   []ToolCall
	Raw         string
	Err         string
}

// Delimiters are matched non-nested, shortest-to-next-closer. A code fence
// inside a think block (or the reverse) is unsupported and will be claimed by
// whichever opener comes first.
var (
	fenceRe    = regexp.MustCompile("(?s)```([a-zA-Z0-9_.+-]*)\n(.*?)```")
	thinkRe    = regexp.MustCompile(`(?s)<think>(.*?)</think>`)
	toolCallRe = regexp.MustCompile(`(?s)<tool_call>\s*(\{.*?\})\s*</tool_call>`)
)

// ErrResponse builds the connection-failure sentinel the executor checks for.
func ErrResponse(msg string) *ParsedResponse {
	return &ParsedResponse{
		Segments: []Segment{{Text: ""}},
		Err:      msg,
	}
}

// Parse converts raw model output into an ordered sequence of reasoning text
// and code blocks, plus extracted think blocks and tool calls. It always
// yields at least one segment; an unclosed fence is kept as reasoning so that
// partial output is never executed.
func Parse(text string) *ParsedResponse {
	resp := &ParsedResponse{Raw: text}

	rest := text
	for _, m := range thinkRe.FindAllStringSubmatch(rest, -1) {
		resp.ThinkBlocks = append(resp.ThinkBlocks, strings.TrimSpace(m[1]))
	}
	rest = thinkRe.ReplaceAllString(rest, "")

	resp.ToolCalls = parseToolCalls(rest)
	rest = toolCallRe.ReplaceAllString(rest, "")

	last := 0
	for _, loc := range fenceRe.FindAllStringSubmatchIndex(rest, -1) {
		if lead := strings.TrimSpace(rest[last:loc[0]]); lead != "" {
			resp.Segments = append(resp.Segments, Segment{Text: lead})
		}
		lang := rest[loc[2]:loc[3]]
		if lang == "" {
			lang = "bash"
		}
		if body := strings.TrimSpace(rest[loc[4]:loc[5]]); body != "" {
			resp.Segments = append(resp.Segments, Segment{Block: &CodeBlock{Command: body, Lang: lang}})
		}
		last = loc[1]
	}
	if tail := strings.TrimSpace(rest[last:]); tail != "" {
		resp.Segments = append(resp.Segments, Segment{Text: tail})
	}

	if len(resp.Segments) == 0 {
		resp.Segments = append(resp.Segments, Segment{Text: strings.TrimSpace(rest)})
	}
	return resp
}

// parseToolCalls extracts <tool_call> payloads. Entries missing a name or
// failing JSON decoding at either level are skipped silently.
func parseToolCalls(text string) []ToolCall {
	var calls []ToolCall
	for _, m := range toolCallRe.FindAllStringSubmatch(text, -1) {
		var payload struct {
			Name      string          `json:"name"`
			Arguments json.RawMessage `json:"arguments"`
		}
		if err := json.Unmarshal([]byte(m[1]), &payload); err != nil || payload.Name == "" {
			continue
		}
		args := map[string]any{}
		if len(payload.Arguments) > 0 {
			if err := json.Unmarshal(payload.Arguments, &args); err != nil {
				// Arguments may arrive as a JSON-encoded string; decode twice.
				var nested string
				if err := json.Unmarshal(payload.Arguments, &nested); err != nil {
					continue
				}
				if err := json.Unmarshal([]byte(nested), &args); err != nil {
					continue
				}
			}
		}
		calls = append(calls, ToolCall{Name: payload.Name, Arguments: args, Raw: m[0]})
	}
	return calls
}

// ExtractReasoning strips tool-call tags from text for display-only contexts.
func ExtractReasoning(text string) string {
	return strings.TrimSpace(toolCallRe.ReplaceAllString(text, ""))
}
