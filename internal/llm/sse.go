package llm

import (
	"encoding/json"
	"strings"
)

// DeltaKind classifies the outcome of decoding one SSE line.
type DeltaKind int

const (
	// DeltaSkip means the line carried nothing (blank, comment, malformed).
	DeltaSkip DeltaKind = iota
	// DeltaText means the returned string should be appended to the response.
	DeltaText
	// DeltaDone means the stream has ended; the returned string (possibly
	// empty) is the final text to append.
	DeltaDone
)

const dataPrefix = "data: "

// StreamDecoder decodes a newline-delimited SSE chat stream one line at a
// time. It tracks whether the model is in a "reasoning" sub-phase and wraps
// reasoning deltas in <think>...</think> so the parser can re-extract them.
// One decoder instance per request.
type StreamDecoder struct {
	inReasoning bool
}

// Decode processes a single line from the stream. A malformed JSON line never
// aborts the stream; it is reported as DeltaSkip.
func (d *StreamDecoder) Decode(line string) (string, DeltaKind) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, ":") || !strings.HasPrefix(line, dataPrefix) {
		return "", DeltaSkip
	}
	data := strings.TrimPrefix(line, dataPrefix)

	if data == "[DONE]" {
		return d.finish()
	}

	var chunk ChatChunk
	if err := json.Unmarshal([]byte(data), &chunk); err != nil {
		return "", DeltaSkip
	}
	if len(chunk.Choices) == 0 {
		return "", DeltaSkip
	}

	choice := chunk.Choices[0]
	if choice.FinishReason == "stop" || choice.FinishReason == "length" {
		return d.finish()
	}

	if rc := choice.Delta.ReasoningContent; rc != "" {
		if !d.inReasoning {
			d.inReasoning = true
			return "<think>" + rc, DeltaText
		}
		return rc, DeltaText
	}

	if content := choice.Delta.Content; content != "" {
		if d.inReasoning {
			d.inReasoning = false
			return "</think>\n" + content, DeltaText
		}
		return content, DeltaText
	}

	return "", DeltaSkip
}

// finish closes an open think block on stream end; no trailing text follows.
func (d *StreamDecoder) finish() (string, DeltaKind) {
	if d.inReasoning {
		d.inReasoning = false
		return "</think>\n", DeltaDone
	}
	return "", DeltaDone
}
