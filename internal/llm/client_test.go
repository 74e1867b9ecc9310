package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"subgen/internal/subgenerr"
)

func TestNewUnknownProviderIsBadConfig(t *testing.T) {
	_, err := New("nonexistent", Config{})
	if !errors.Is(err, subgenerr.ErrBadConfig) {
		t.Fatalf("expected ErrBadConfig, got %v", err)
	}
}

func TestValidateURLRejectsNonHTTP(t *testing.T) {
	if err := validateURL("ftp://example.com"); err == nil {
		t.Fatal("expected error for non-http(s) scheme")
	}
	if err := validateURL("https://example.com"); err != nil {
		t.Fatalf("expected valid https URL to pass, got %v", err)
	}
	if err := validateURL(""); err != nil {
		t.Fatalf("expected empty base URL to pass (use default), got %v", err)
	}
}

func TestOpenAIClientChatSendsBearerAndParsesContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization header = %q", got)
		}
		var req openAIRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		resp := openAIResponse{Choices: []struct {
			Message openAIMessage `json:"message"`
		}{{Message: openAIMessage{Role: "assistant", Content: "你好。"}}}}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client, err := New("openai", Config{APIKey: "test-key", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := client.Chat(context.Background(), []Message{
		{Role: "system", Content: "translate"},
		{Role: "user", Content: "1: Hello."},
	}, Params{Temperature: 0})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if got != "你好。" {
		t.Fatalf("Chat() = %q", got)
	}
}

func TestOpenAIClientChatRequiresAPIKey(t *testing.T) {
	client, err := New("openai", Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}, Params{}); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestAnthropicClientSplitsSystemPrompt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-api-key"); got != "ant-key" {
			t.Errorf("x-api-key header = %q", got)
		}
		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.System != "be terse" {
			t.Errorf("System = %q, want %q", req.System, "be terse")
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("unexpected turns: %+v", req.Messages)
		}
		resp := anthropicResponse{Content: []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}{{Type: "text", Text: "ok"}}}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client, err := New("anthropic", Config{APIKey: "ant-key", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := client.Chat(context.Background(), []Message{
		{Role: "system", Content: "be terse"},
		{Role: "user", Content: "hi"},
	}, Params{})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if got != "ok" {
		t.Fatalf("Chat() = %q", got)
	}
}

func TestOllamaClientDoesNotRequireAuth(t *testing.T) {
	client, err := New("ollama", Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if client.RequiresAuth() {
		t.Fatal("ollama client should not require auth")
	}
}

func TestDecodeLLMJSONStripsCodeFence(t *testing.T) {
	var out struct {
		OK bool `json:"ok"`
	}
	payload := "```json\n{\"ok\": true}\n```"
	if err := DecodeLLMJSON(payload, &out); err != nil {
		t.Fatalf("DecodeLLMJSON: %v", err)
	}
	if !out.OK {
		t.Fatal("expected ok=true after stripping code fence")
	}
}

func TestDecodeLLMJSONRejectsEmptyPayload(t *testing.T) {
	var out map[string]any
	if err := DecodeLLMJSON("   ", &out); err == nil {
		t.Fatal("expected error for empty payload")
	}
}
