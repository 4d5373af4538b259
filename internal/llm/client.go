package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tlee933/talos/internal/config"
	"github.com/tlee933/talos/internal/logging"
)

// Client talks to an OpenAI-compatible chat completion backend.
type Client struct {
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
}

// NewClient creates a client from the application configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:     strings.TrimRight(cfg.BackendURL, "/"),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		httpClient:  &http.Client{Timeout: 120 * time.Second},
	}
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// NewRequest builds a ChatRequest with the client's model defaults.
func (c *Client) NewRequest(messages []Turn) ChatRequest {
	return ChatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
}

// Complete sends a non-streaming chat completion request and returns the
// assistant message content.
func (c *Client) Complete(ctx context.Context, request ChatRequest) (string, error) {
	request.Stream = false
	logging.LogLLMRequest(c.baseURL, request.Model, len(request.Messages))

	body, err := c.post(ctx, request)
	if err != nil {
		logging.LogLLMResponse(request.Model, 0, err)
		return "", err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var chatResponse ChatResponse
	if err := json.Unmarshal(data, &chatResponse); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if chatResponse.Error != nil {
		return "", fmt.Errorf("API error: %s", chatResponse.Error.Message)
	}
	if len(chatResponse.Choices) == 0 {
		return "", fmt.Errorf("no response from API")
	}

	content := chatResponse.Choices[0].Message.Content
	logging.LogLLMResponse(request.Model, len(content), nil)
	return content, nil
}

// Stream sends a streaming chat completion request, invoking callback for
// each decoded delta, and returns the accumulated response text. Reasoning
// deltas arrive wrapped in <think> tags by the StreamDecoder.
func (c *Client) Stream(ctx context.Context, request ChatRequest, callback func(string)) (string, error) {
	request.Stream = true
	logging.LogLLMRequest(c.baseURL, request.Model, len(request.Messages))

	body, err := c.post(ctx, request)
	if err != nil {
		logging.LogLLMResponse(request.Model, 0, err)
		return "", err
	}
	defer body.Close()

	reader := bufio.NewReader(body)
	decoder := &StreamDecoder{}
	var full strings.Builder

	for {
		line, err := reader.ReadString('\n')
		if err == io.EOF {
			break
		}
		if err != nil {
			return full.String(), fmt.Errorf("error reading stream: %w", err)
		}

		delta, kind := decoder.Decode(line)
		switch kind {
		case DeltaSkip:
			continue
		case DeltaText, DeltaDone:
			if delta != "" {
				full.WriteString(delta)
				if callback != nil {
					callback(delta)
				}
			}
		}
		if kind == DeltaDone {
			break
		}
	}

	logging.LogLLMResponse(request.Model, full.Len(), nil)
	return full.String(), nil
}

// Health checks backend reachability.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("backend returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, request ChatRequest) (io.ReadCloser, error) {
	jsonBody, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend unreachable: %w", err)
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, fmt.Errorf("backend returned status %d", resp.StatusCode)
	}
	return resp.Body, nil
}
