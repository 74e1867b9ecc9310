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

const defaultOpenAITimeout = 120 * time.Second

// openAIClient speaks the OpenAI chat-completions wire format, which
// DeepSeek's API also implements; deepseekClient is this type with
// different defaults.
type openAIClient struct {
	cfg        Config
	httpClient *http.Client
	retry      *retrier
	endpoint   string
}

func newOpenAIClient(cfg Config) *openAIClient {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	return &openAIClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeoutDuration(cfg.TimeoutSeconds, defaultOpenAITimeout)},
		retry:      newRetrier(),
		endpoint:   base + "/chat/completions",
	}
}

func (c *openAIClient) Name() string       { return "openai" }
func (c *openAIClient) Model() string      { return c.cfg.Model }
func (c *openAIClient) RequiresAuth() bool { return true }

func (c *openAIClient) Chat(ctx context.Context, messages []Message, params Params) (string, error) {
	if err := validateURL(c.cfg.BaseURL); err != nil {
		return "", err
	}
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return "", fmt.Errorf("llm chat: api key required")
	}
	payload := openAIRequest{
		Model:       c.cfg.Model,
		Messages:    toOpenAIMessages(messages),
		Temperature: params.Temperature,
	}
	return c.retry.do(ctx, "openai chat", func() (string, error) {
		return c.sendOnce(ctx, payload)
	})
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func toOpenAIMessages(messages []Message) []openAIMessage {
	out := make([]openAIMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, openAIMessage{Role: m.Role, Content: m.Content})
	}
	return out
}

func (c *openAIClient) sendOnce(ctx context.Context, payload openAIRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("llm chat: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("llm chat: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
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
	var parsed openAIResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("llm chat: decode response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("llm chat: api error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("llm chat: empty choices")
	}
	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("llm chat: empty content")
	}
	return content, nil
}
