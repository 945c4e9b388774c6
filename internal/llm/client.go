// Package llm provides the boundary to an OpenAI-compatible chat
// completion endpoint. The core hands it plain text; it owns retries and
// response envelope parsing, nothing else.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is the inference boundary consumed by the pipelines. JSON mode
// asks the endpoint for a JSON object response.
type Client interface {
	Complete(ctx context.Context, systemPrompt, userContent string, jsonMode bool) (string, error)
}

const (
	maxRetries = 3
	retryDelay = 2 * time.Second
)

// OpenAIClient talks to any /chat/completions endpoint (Ollama, vLLM,
// OpenAI itself).
type OpenAIClient struct {
	baseURL         string
	apiKey          string
	model           string
	maxOutputTokens int
	client          *http.Client
}

// NewOpenAIClient creates a client. maxOutputTokens of 0 leaves the
// model's default cap in place.
func NewOpenAIClient(baseURL, apiKey, model string, maxOutputTokens int) *OpenAIClient {
	return &OpenAIClient{
		baseURL:         strings.TrimRight(baseURL, "/"),
		apiKey:          apiKey,
		model:           model,
		maxOutputTokens: maxOutputTokens,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete sends one prompt and returns the response text, retrying
// transient failures a fixed number of times.
func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt, userContent string, jsonMode bool) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userContent},
		},
		MaxTokens: c.maxOutputTokens,
	}
	if jsonMode {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(retryDelay):
			}
		}

		text, err := c.send(ctx, payload)
		if err == nil {
			return text, nil
		}
		lastErr = err
	}

	return "", fmt.Errorf("llm request failed after %d attempts: %w", maxRetries, lastErr)
}

func (c *OpenAIClient) send(ctx context.Context, payload []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("API error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty response from model")
	}

	return parsed.Choices[0].Message.Content, nil
}

// ParseIssues extracts the "issues" list from a JSON-mode audit response,
// tolerating a fenced code block around the object.
func ParseIssues(response string) ([]Issue, error) {
	cleaned := stripFence(strings.TrimSpace(response))

	var parsed struct {
		Issues []Issue `json:"issues"`
	}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, fmt.Errorf("parse audit response: %w", err)
	}
	return parsed.Issues, nil
}

// Issue is one model-reported problem with a chunk.
type Issue struct {
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Suggestion  string `json:"suggestion"`
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
