package llm

// deepseekClient wraps an openAIClient pointed at DeepSeek's
// OpenAI-compatible endpoint: DeepSeek speaks the same chat-completions
// wire format, only the default base URL, model, and reported Name differ.
type deepseekClient struct {
	*openAIClient
}

func newDeepSeekClient(cfg Config) *deepseekClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.deepseek.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "deepseek-chat"
	}
	return &deepseekClient{openAIClient: newOpenAIClient(cfg)}
}

func (c *deepseekClient) Name() string { return "deepseek" }
