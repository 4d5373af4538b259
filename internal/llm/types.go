package llm

// Roles used in conversation turns.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single message in the conversation history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is an OpenAI-compatible chat completion request.
type ChatRequest struct {
	Model       string       `json:"model"`
	Messages    []Turn       `json:"messages"`
	Temperature float64      `json:"temperature"`
	MaxTokens   int          `json:"max_tokens"`
	Stream      bool         `json:"stream,omitempty"`
	Tools       []ToolSchema `json:"tools,omitempty"`
}

// ToolSchema describes a tool in OpenAI function-calling format.
type ToolSchema struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

// ToolFunction is the function part of a ToolSchema.
type ToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ChatResponse is a non-streaming chat completion response.
type ChatResponse struct {
	Choices []struct {
		Message Turn `json:"message"`
	} `json:"choices"`
	Error *APIError `json:"error,omitempty"`
}

// ChatChunk is one parsed SSE data payload from a streaming response.
type ChatChunk struct {
	Choices []struct {
		Delta struct {
			Content          string `json:"content"`
			ReasoningContent string `json:"reasoning_content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *APIError `json:"error,omitempty"`
}

// APIError is an error payload returned by the backend.
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}
