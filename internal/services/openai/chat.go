package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"subburn/internal/services"
)

// JSONSchema describes a structured-output response format.
type JSONSchema struct {
	Name   string         `json:"name"`
	Schema map[string]any `json:"schema"`
	Strict bool           `json:"strict"`
}

// ChatRequest is a two-message chat completion with a structured response.
type ChatRequest struct {
	Model        string
	Temperature  float64
	SystemPrompt string
	UserPrompt   string
	Schema       *JSONSchema
}

type chatCompletionRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

type emptyContentError struct {
	Op           string
	FinishReason string
	Refusal      string
	Snippet      string
}

func (e *emptyContentError) Error() string {
	return fmt.Sprintf(
		"%s: empty content (finish_reason=%q, refusal=%q, response_snippet=%s)",
		e.Op,
		e.FinishReason,
		e.Refusal,
		e.Snippet,
	)
}

func (e *emptyContentError) Unwrap() error { return services.ErrMalformed }

// CompleteStructured issues a chat completion and returns the raw JSON content
// of the first choice. With a Schema set the model is constrained to it.
func (c *Client) CompleteStructured(ctx context.Context, req ChatRequest) (string, error) {
	const op = "chat completion"
	if err := c.requireKey(op); err != nil {
		return "", err
	}
	systemPrompt := strings.TrimSpace(req.SystemPrompt)
	userPrompt := strings.TrimSpace(req.UserPrompt)
	if userPrompt == "" {
		return "", errors.New("chat completion: user prompt required")
	}
	payload := chatCompletionRequest{
		Model:       req.Model,
		Temperature: req.Temperature,
	}
	if systemPrompt != "" {
		payload.Messages = append(payload.Messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	payload.Messages = append(payload.Messages, chatMessage{Role: "user", Content: userPrompt})
	if req.Schema != nil {
		payload.ResponseFormat = map[string]any{
			"type":        "json_schema",
			"json_schema": req.Schema,
		}
	} else {
		payload.ResponseFormat = map[string]any{"type": "json_object"}
	}

	var completion chatCompletionResponse
	body, err := c.postJSON(ctx, op, "chat/completions", payload, &completion)
	if err != nil {
		return "", err
	}
	for _, choice := range completion.Choices {
		if content := strings.TrimSpace(choice.Message.Content); content != "" {
			return content, nil
		}
	}
	empty := &emptyContentError{Op: op, Snippet: summarizePayloadSnippet(string(body))}
	if len(completion.Choices) > 0 {
		empty.FinishReason = completion.Choices[0].FinishReason
		empty.Refusal = completion.Choices[0].Message.Refusal
	}
	return "", empty
}

// DecodeJSON decodes JSON from a model response, tolerating code fences and
// surrounding prose.
func DecodeJSON(content string, target any) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return services.Wrap(services.ErrMalformed, "openai", "decode json", "empty payload", nil)
	}

	directErr := json.Unmarshal([]byte(trimmed), target)
	if directErr == nil {
		return nil
	}

	sanitized := sanitizeJSONPayload(trimmed)
	if sanitized == "" || sanitized == trimmed {
		return services.Wrap(services.ErrMalformed, "openai", "decode json", "payload snippet: "+summarizePayloadSnippet(trimmed), directErr)
	}
	if err := json.Unmarshal([]byte(sanitized), target); err != nil {
		return services.Wrap(services.ErrMalformed, "openai", "decode json", "sanitized payload snippet: "+summarizePayloadSnippet(sanitized), err)
	}
	return nil
}

func sanitizeJSONPayload(content string) string {
	trimmed := strings.TrimSpace(stripCodeFenceBlock(content))
	if trimmed == "" {
		return ""
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return trimmed
	}
	if start := strings.Index(trimmed, "{"); start >= 0 {
		if end := strings.LastIndex(trimmed, "}"); end > start {
			return strings.TrimSpace(trimmed[start : end+1])
		}
	}
	return trimmed
}

func stripCodeFenceBlock(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	body := strings.TrimLeft(trimmed[3:], " \t\r\n")
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = strings.TrimLeft(body[4:], " \t\r\n")
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}
