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

const defaultOllamaTimeout = 300 * time.Second

// ollamaClient speaks Ollama's local /api/chat endpoint. No credential is
// required: Ollama serves a loopback or LAN host the operator already
// controls.
type ollamaClient struct {
	cfg        Config
	httpClient *http.Client
	retry      *retrier
	endpoint   string
}

func newOllamaClient(cfg Config) *ollamaClient {
	host := strings.TrimRight(cfg.Host, "/")
	if host == "" {
		host = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "llama3.1"
	}
	return &ollamaClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeoutDuration(cfg.TimeoutSeconds, defaultOllamaTimeout)},
		retry:      newRetrier(),
		endpoint:   host + "/api/chat",
	}
}

func (c *ollamaClient) Name() string       { return "ollama" }
func (c *ollamaClient) Model() string      { return c.cfg.Model }
func (c *ollamaClient) RequiresAuth() bool { return false }

func (c *ollamaClient) Chat(ctx context.Context, messages []Message, params Params) (string, error) {
	if err := validateURL(c.cfg.Host); err != nil {
		return "", err
	}
	payload := ollamaRequest{
		Model:    c.cfg.Model,
		Messages: toOpenAIMessages(messages),
		Stream:   false,
		Options:  ollamaOptions{Temperature: params.Temperature},
	}
	return c.retry.do(ctx, "ollama chat", func() (string, error) {
		return c.sendOnce(ctx, payload)
	})
}

type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []openAIMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  ollamaOptions   `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
}

type ollamaResponse struct {
	Message openAIMessage `json:"message"`
	Error   string        `json:"error"`
}

func (c *ollamaClient) sendOnce(ctx context.Context, payload ollamaRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("llm chat: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("llm chat: new request: %w", err)
	}
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
		return "", &httpStatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	var parsed ollamaResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("llm chat: decode response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("llm chat: api error: %s", parsed.Error)
	}
	content := strings.TrimSpace(parsed.Message.Content)
	if content == "" {
		return "", fmt.Errorf("llm chat: empty content")
	}
	return content, nil
}
