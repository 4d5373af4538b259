package llm

import (
	"strings"
	"testing"
)

func codeBlocks(resp *ParsedResponse) []*CodeBlock {
	var blocks []*CodeBlock
	for _, seg := range resp.Segments {
		if seg.Block != nil {
			blocks = append(blocks, seg.Block)
		}
	}
	return blocks
}

func TestParsePureReasoning(t *testing.T) {
	resp := Parse("Just some explanation text.\nWith multiple lines.")
	if len(resp.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(resp.Segments))
	}
	if !strings.Contains(resp.Segments[0].Text, "Just some explanation") {
		t.Errorf("reasoning text missing: %q", resp.Segments[0].Text)
	}
	if resp.Segments[0].Block != nil {
		t.Error("expected no code block")
	}
}

func TestParseSingleCodeBlock(t *testing.T) {
	resp := Parse("Let me check:\n\n```bash\nls -la\n```\n\nDone.")
	if len(resp.Segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(resp.Segments))
	}
	if !strings.Contains(resp.Segments[0].Text, "Let me check") || resp.Segments[0].Block != nil {
		t.Errorf("bad leading segment: %+v", resp.Segments[0])
	}
	block := resp.Segments[1].Block
	if block == nil {
		t.Fatal("expected code block in second segment")
	}
	if block.Command != "ls -la" {
		t.Errorf("command = %q, want %q", block.Command, "ls -la")
	}
	if block.Lang != "bash" {
		t.Errorf("lang = %q, want bash", block.Lang)
	}
	if !strings.Contains(resp.Segments[2].Text, "Done") || resp.Segments[2].Block != nil {
		t.Errorf("bad trailing segment: %+v", resp.Segments[2])
	}
}

func TestParseMultipleCodeBlocks(t *testing.T) {
	raw := "First I'll list files:\n\n```bash\nls\n```\n\nThen check disk:\n\n```bash\ndf -h\n```\n\nAll done."
	blocks := codeBlocks(Parse(raw))
	if len(blocks) != 2 {
		t.Fatalf("expected 2 code blocks, got %d", len(blocks))
	}
	if blocks[0].Command != "ls" {
		t.Errorf("first command = %q", blocks[0].Command)
	}
	if blocks[1].Command != "df -h" {
		t.Errorf("second command = %q", blocks[1].Command)
	}
}

func TestParseDefaultLang(t *testing.T) {
	blocks := codeBlocks(Parse("Here:\n\n```\necho hello\n```"))
	if len(blocks) != 1 {
		t.Fatalf("expected 1 code block, got %d", len(blocks))
	}
	if blocks[0].Lang != "bash" {
		t.Errorf("lang = %q, want bash", blocks[0].Lang)
	}
	if blocks[0].Command != "echo hello" {
		t.Errorf("command = %q", blocks[0].Command)
	}
}

func TestParsePythonLang(t *testing.T) {
	blocks := codeBlocks(Parse("```python\nprint('hi')\n```"))
	if len(blocks) != 1 {
		t.Fatalf("expected 1 code block, got %d", len(blocks))
	}
	if blocks[0].Lang != "python" {
		t.Errorf("lang = %q, want python", blocks[0].Lang)
	}
}

func TestParseUnclosedCodeBlock(t *testing.T) {
	resp := Parse("Here is some text\n```bash\nls -la\nno closing")
	if len(codeBlocks(resp)) != 0 {
		t.Fatal("unclosed fence must not produce a code block")
	}
	if resp.Segments[0].Text == "" {
		t.Error("expected reasoning text to be preserved")
	}
}

func TestParseEmptyResponse(t *testing.T) {
	resp := Parse("")
	if len(resp.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(resp.Segments))
	}
	if resp.Segments[0].Text != "" || resp.Segments[0].Block != nil {
		t.Errorf("expected single empty reasoning segment, got %+v", resp.Segments[0])
	}
}

func TestParseEmptyCodeBlock(t *testing.T) {
	resp := Parse("Text\n\n```bash\n\n```\n\nMore text")
	if len(codeBlocks(resp)) != 0 {
		t.Error("empty code block should be skipped")
	}
}

func TestParseRawPreserved(t *testing.T) {
	resp := Parse("hello world")
	if resp.Raw != "hello world" {
		t.Errorf("raw = %q", resp.Raw)
	}
}

func TestParseMultilineCommand(t *testing.T) {
	blocks := codeBlocks(Parse("```bash\nfor f in *.txt; do\n  echo $f\ndone\n```"))
	if len(blocks) != 1 {
		t.Fatalf("expected 1 code block, got %d", len(blocks))
	}
	if !strings.Contains(blocks[0].Command, "for f in") || !strings.Contains(blocks[0].Command, "done") {
		t.Errorf("multiline command mangled: %q", blocks[0].Command)
	}
}

func TestParseToolCalls(t *testing.T) {
	raw := `Let me read that.
<tool_call>{"name": "file_read", "arguments": {"path": "/tmp/test"}}</tool_call>`
	resp := Parse(raw)
	if len(resp.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(resp.ToolCalls))
	}
	if resp.ToolCalls[0].Name != "file_read" {
		t.Errorf("name = %q", resp.ToolCalls[0].Name)
	}
	if resp.ToolCalls[0].Arguments["path"] != "/tmp/test" {
		t.Errorf("arguments = %v", resp.ToolCalls[0].Arguments)
	}
	found := false
	for _, seg := range resp.Segments {
		if strings.Contains(seg.Text, "Let me read") {
			found = true
		}
	}
	if !found {
		t.Error("reasoning around tool call lost")
	}
}

func TestParseToolCallsAndCodeBlocks(t *testing.T) {
	raw := "I will use tools and code:\n" +
		`<tool_call>{"name": "notify", "arguments": {"title": "hi"}}</tool_call>` +
		"\n```bash\necho done\n```"
	resp := Parse(raw)
	if len(resp.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(resp.ToolCalls))
	}
	if len(codeBlocks(resp)) != 1 {
		t.Error("expected code block alongside tool call")
	}
}

func TestParseToolCallStringArguments(t *testing.T) {
	// Some models double-encode arguments as a JSON string.
	raw := `<tool_call>{"name": "file_read", "arguments": "{\"path\": \"/etc/hosts\"}"}</tool_call>`
	resp := Parse(raw)
	if len(resp.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(resp.ToolCalls))
	}
	if resp.ToolCalls[0].Arguments["path"] != "/etc/hosts" {
		t.Errorf("double-decoded arguments = %v", resp.ToolCalls[0].Arguments)
	}
}

func TestParseMalformedToolCallSkipped(t *testing.T) {
	resp := Parse(`<tool_call>{not json}</tool_call> some text`)
	if len(resp.ToolCalls) != 0 {
		t.Error("malformed tool call should be skipped")
	}
}

func TestParseNoToolCalls(t *testing.T) {
	if calls := Parse("Just a normal response.").ToolCalls; len(calls) != 0 {
		t.Errorf("expected no tool calls, got %v", calls)
	}
}

func TestParseThinkBlock(t *testing.T) {
	raw := "<think>Let me analyze this step by step.\n1. First check X\n2. Then Y</think>\n\nThe answer is 42."
	resp := Parse(raw)
	if len(resp.ThinkBlocks) != 1 {
		t.Fatalf("expected 1 think block, got %d", len(resp.ThinkBlocks))
	}
	if !strings.Contains(resp.ThinkBlocks[0], "step by step") {
		t.Errorf("think block = %q", resp.ThinkBlocks[0])
	}
	reasoning := resp.Segments[0].Text
	if strings.Contains(reasoning, "<think>") {
		t.Error("think tags leaked into reasoning")
	}
	if !strings.Contains(reasoning, "The answer is 42") {
		t.Errorf("answer lost: %q", reasoning)
	}
}

func TestParseThinkBlockWithCode(t *testing.T) {
	raw := "<think>I need to list files first.</think>\n\nLet me check:\n\n```bash\nls -la\n```"
	resp := Parse(raw)
	if len(resp.ThinkBlocks) != 1 {
		t.Fatalf("expected 1 think block, got %d", len(resp.ThinkBlocks))
	}
	blocks := codeBlocks(resp)
	if len(blocks) != 1 || blocks[0].Command != "ls -la" {
		t.Errorf("code block alongside think block lost: %v", blocks)
	}
}

func TestParseMultipleThinkBlocks(t *testing.T) {
	raw := "<think>First thought.</think>\nSome text.\n<think>Second thought.</think>\nMore text."
	resp := Parse(raw)
	if len(resp.ThinkBlocks) != 2 {
		t.Fatalf("expected 2 think blocks, got %d", len(resp.ThinkBlocks))
	}
	if resp.ThinkBlocks[0] != "First thought." || resp.ThinkBlocks[1] != "Second thought." {
		t.Errorf("think blocks = %v", resp.ThinkBlocks)
	}
}

func TestErrResponseSentinel(t *testing.T) {
	resp := ErrResponse("backend unreachable")
	if resp.Err != "backend unreachable" {
		t.Errorf("err = %q", resp.Err)
	}
	if len(resp.Segments) != 1 {
		t.Error("sentinel must still carry one segment")
	}
}

func TestExtractReasoning(t *testing.T) {
	raw := `before <tool_call>{"name": "x", "arguments": {}}</tool_call> after`
	got := ExtractReasoning(raw)
	if strings.Contains(got, "tool_call") {
		t.Errorf("tags not removed: %q", got)
	}
	if !strings.Contains(got, "before") || !strings.Contains(got, "after") {
		t.Errorf("surrounding text lost: %q", got)
	}
}
