// Package llm defines the uniform provider contract translation and
// proofreading call through, plus the concrete adapters (OpenAI-compatible,
// Anthropic, Ollama) behind it.
package llm

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"subgen/internal/subgenerr"
)

// Message is one turn in a chat completion request.
type Message struct {
	Role    string // "system", "user", or "assistant"
	Content string
}

// Params controls a single Chat call. Temperature is expected in the
// deterministic 0.0-0.3 range spec.md §4.8 calls for; callers that need a
// different value are free to set one, but translation/proofreading always
// pass a low, reproducible value.
type Params struct {
	Temperature    float64
	TimeoutSeconds int
}

// Client is the capability set every LLM provider adapter implements.
// Translation and proofreading code depends only on this interface, never
// on a concrete provider type.
type Client interface {
	Chat(ctx context.Context, messages []Message, params Params) (string, error)
	Name() string
	Model() string
	RequiresAuth() bool
}

// Config carries the settings needed to construct any provider's Client.
// Not every field applies to every provider: Ollama ignores APIKey, most
// providers ignore Host.
type Config struct {
	APIKey         string
	BaseURL        string
	Host           string
	Model          string
	TimeoutSeconds int
}

// New constructs a Client for the named provider. Supported names: openai,
// anthropic, deepseek, ollama. An unrecognized name is a bad-config error,
// not a panic, since the provider name usually comes straight from a
// config file.
func New(provider string, cfg Config) (Client, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	switch provider {
	case "openai":
		return newOpenAIClient(cfg), nil
	case "anthropic":
		return newAnthropicClient(cfg), nil
	case "deepseek":
		return newDeepSeekClient(cfg), nil
	case "ollama":
		return newOllamaClient(cfg), nil
	default:
		return nil, subgenerr.Wrap(subgenerr.ErrBadConfig, "", "select llm provider",
			fmt.Sprintf("unknown provider %q", provider), nil)
	}
}

// validateURL checks that base is either empty (meaning "use the
// provider's built-in default") or a well-formed http(s) URL, per spec.md
// §4.8's requirement that base_url/host values are validated before use.
func validateURL(base string) error {
	if base == "" {
		return nil
	}
	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return subgenerr.Wrap(subgenerr.ErrBadConfig, "", "validate provider url",
			fmt.Sprintf("%q is not a valid http(s) URL", base), nil)
	}
	return nil
}

func timeoutDuration(seconds int, fallback time.Duration) time.Duration {
	if seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}
