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

const (
	defaultAnthropicTimeout = 120 * time.Second
	anthropicVersion        = "2023-06-01"
	anthropicMaxTokens      = 4096
)

// anthropicClient speaks Anthropic's Messages API, which splits the system
// prompt into its own top-level field instead of a "system" role message.
type anthropicClient struct {
	cfg        Config
	httpClient *http.Client
	retry      *retrier
	endpoint   string
}

func newAnthropicClient(cfg Config) *anthropicClient {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://api.anthropic.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "claude-3-5-sonnet-latest"
	}
	return &anthropicClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeoutDuration(cfg.TimeoutSeconds, defaultAnthropicTimeout)},
		retry:      newRetrier(),
		endpoint:   base + "/messages",
	}
}

func (c *anthropicClient) Name() string       { return "anthropic" }
func (c *anthropicClient) Model() string      { return c.cfg.Model }
func (c *anthropicClient) RequiresAuth() bool { return true }

func (c *anthropicClient) Chat(ctx context.Context, messages []Message, params Params) (string, error) {
	if err := validateURL(c.cfg.BaseURL); err != nil {
		return "", err
	}
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return "", fmt.Errorf("llm chat: api key required")
	}
	system, turns := splitSystemPrompt(messages)
	payload := anthropicRequest{
		Model:       c.cfg.Model,
		System:      system,
		Messages:    turns,
		Temperature: params.Temperature,
		MaxTokens:   anthropicMaxTokens,
	}
	return c.retry.do(ctx, "anthropic chat", func() (string, error) {
		return c.sendOnce(ctx, payload)
	})
}

// splitSystemPrompt pulls out the leading "system" role message (Anthropic
// has no system role in the turn list) and concatenates any others found,
// in case callers pass more than one.
func splitSystemPrompt(messages []Message) (string, []anthropicMessage) {
	var system []string
	turns := make([]anthropicMessage, 0, len(messages))
	for _, m := range messages {
		if m.Role == "system" {
			system = append(system, m.Content)
			continue
		}
		turns = append(turns, anthropicMessage{Role: m.Role, Content: m.Content})
	}
	return strings.Join(system, "\n"), turns
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature float64            `json:"temperature"`
	MaxTokens   int                `json:"max_tokens"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *anthropicClient) sendOnce(ctx context.Context, payload anthropicRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("llm chat: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("llm chat: new request: %w", err)
	}
	req.Header.Set("x-api-key", c.cfg.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm chat: http error: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("llm chat: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return "", &httpStatusError{StatusCode: resp.StatusCode, Body: string(raw), RetryAfter: retryAfter}
	}
	var parsed anthropicResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("llm chat: decode response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("llm chat: api error: %s", parsed.Error.Message)
	}
	for _, block := range parsed.Content {
		if text := strings.TrimSpace(block.Text); text != "" {
			return text, nil
		}
	}
	return "", fmt.Errorf("llm chat: empty content")
}
