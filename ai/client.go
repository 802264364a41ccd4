// Package ai is a thin client for the Anthropic Messages API.
// It carries the conversation-with-history calls the tool server makes and
// the single tool-choice call the chatbot makes, with rate limiting and
// retries on transient failures.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"legal-lab/domain"
	liberrors "legal-lab/errors"
)

const (
	DefaultModel   = "claude-3-7-sonnet-latest"
	defaultBaseURL = "https://api.anthropic.com"
	defaultTimeout = 60 * time.Second

	defaultMaxRetries  = 3
	defaultBaseBackoff = 500 * time.Millisecond
	defaultRateLimit   = 2 // requests per second
	defaultBurst       = 4
)

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Client talks to the Anthropic Messages API over plain HTTP.
type Client struct {
	model      string
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key required")
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		model:      model,
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(defaultRateLimit), defaultBurst),
		maxRetries: defaultMaxRetries,
	}, nil
}

// wire types for the Messages API

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	Messages    []anthropicMessage `json:"messages"`
	Tools       []ToolDefinition   `json:"tools,omitempty"`
	ToolChoice  *toolChoiceSpec    `json:"tool_choice,omitempty"`
}

type toolChoiceSpec struct {
	Type string `json:"type"`
}

// ToolDefinition is one entry of the request's tools array.
type ToolDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"`
}

type contentBlock struct {
	Type  string          `json:"type"`
	Text  string          `json:"text,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

type anthropicResponse struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

type anthropicError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Converse sends the full remembered history and returns the assistant's
// text answer. Temperature is pinned to 0: legal analysis should be as
// deterministic as the model allows.
func (c *Client) Converse(ctx context.Context, history []domain.ChatMessage, maxTokens int) (string, error) {
	req := anthropicRequest{
		Model:       c.model,
		MaxTokens:   maxTokens,
		Temperature: 0,
		Messages:    toWireMessages(history),
	}

	resp, err := c.callWithRetry(ctx, req)
	if err != nil {
		return "", err
	}

	for _, block := range resp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in response")
}

// ChooseTool asks the model to pick exactly one tool for the user's query.
// The caller provides the tool definitions; the first tool_use block wins.
// A response without a tool_use block is an error so the caller can fall
// back to the keyword classifier.
func (c *Client) ChooseTool(ctx context.Context, prompt string, tools []ToolDefinition) (domain.ToolChoice, error) {
	req := anthropicRequest{
		Model:       c.model,
		MaxTokens:   256,
		Temperature: 0,
		Messages:    []anthropicMessage{{Role: string(domain.RoleUser), Content: prompt}},
		Tools:       tools,
		ToolChoice:  &toolChoiceSpec{Type: "auto"},
	}

	resp, err := c.callWithRetry(ctx, req)
	if err != nil {
		return domain.ToolChoice{}, err
	}

	for _, block := range resp.Content {
		if block.Type != "tool_use" {
			continue
		}
		var input struct {
			Tool   string `json:"tool"`
			Reason string `json:"reason"`
		}
		if err := json.Unmarshal(block.Input, &input); err != nil {
			return domain.ToolChoice{}, fmt.Errorf("failed to parse tool_use input: %w", err)
		}
		tool := domain.ToolName(input.Tool)
		if !tool.IsValid() {
			return domain.ToolChoice{}, fmt.Errorf("%w: %s", liberrors.ErrUnknownTool, input.Tool)
		}
		return domain.ToolChoice{Tool: tool, Reason: input.Reason}, nil
	}

	return domain.ToolChoice{}, fmt.Errorf("model returned no tool_use block")
}

func toWireMessages(history []domain.ChatMessage) []anthropicMessage {
	out := make([]anthropicMessage, 0, len(history))
	for _, m := range history {
		out = append(out, anthropicMessage{Role: string(m.Role), Content: m.Content})
	}
	return out
}

// callWithRetry wraps doRequest with the rate limiter and an exponential
// backoff loop for transient failures (429, 5xx, network errors).
func (c *Client) callWithRetry(ctx context.Context, req anthropicRequest) (*anthropicResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := defaultBaseBackoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		resp, err := c.doRequest(ctx, req)
		if err == nil {
			return resp, nil
		}

		lastErr = err
		if !isRetryableError(err) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) doRequest(ctx context.Context, req anthropicRequest) (*anthropicResponse, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-Key", c.apiKey)
	httpReq.Header.Set("Anthropic-Version", "2023-06-01")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &retryableError{err: fmt.Errorf("API request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &retryableError{err: fmt.Errorf("rate limited (429)")}
	}

	if resp.StatusCode >= 500 {
		return nil, &retryableError{err: fmt.Errorf("server error (%d): %s", resp.StatusCode, string(body))}
	}

	if resp.StatusCode != http.StatusOK {
		var errResp anthropicError
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
			return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, errResp.Error.Message)
		}
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(body))
	}

	var claudeResp anthropicResponse
	if err := json.Unmarshal(body, &claudeResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(claudeResp.Content) == 0 {
		return nil, fmt.Errorf("empty response from API")
	}

	return &claudeResp, nil
}

type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

func isRetryableError(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}
