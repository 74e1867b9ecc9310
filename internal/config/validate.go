package config

import (
	"fmt"

	"subgen/internal/styles"
	"subgen/internal/subgenerr"
)

// Validate ensures the configuration is usable, returning a typed
// bad-config error naming the offending dotted path when it isn't.
func (c *Config) Validate() error {
	if err := c.validateWhisper(); err != nil {
		return err
	}
	if err := c.validateTranslation(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateStyles(); err != nil {
		return err
	}
	if err := c.validateAdvanced(); err != nil {
		return err
	}
	return nil
}

func badConfig(path, message string) error {
	return subgenerr.Wrap(subgenerr.ErrBadConfig, "", "validate config", fmt.Sprintf("%s: %s", path, message), nil)
}

func (c *Config) validateWhisper() error {
	switch c.Whisper.Provider {
	case "local", "cloud":
	default:
		return badConfig("whisper.provider", "must be \"local\" or \"cloud\"")
	}
	if c.Whisper.Provider == "cloud" && c.Whisper.CloudEndpoint == "" {
		return badConfig("whisper.cloud_endpoint", "must be set when whisper.provider is \"cloud\"")
	}
	if c.Whisper.TimeoutSeconds <= 0 {
		return badConfig("whisper.timeout_seconds", "must be positive")
	}
	return nil
}

func (c *Config) validateTranslation() error {
	t := c.Translation
	if !t.Enabled {
		return nil
	}
	if t.TargetLang == "" {
		return badConfig("translation.target_lang", "is required when translation.enabled is true")
	}
	switch t.Provider {
	case "openai", "anthropic", "deepseek", "ollama":
	default:
		return badConfig("translation.provider", "must be one of openai, anthropic, deepseek, ollama")
	}
	if t.Provider == "ollama" && t.Host == "" {
		return badConfig("translation.host", "must be set when translation.provider is \"ollama\"")
	}
	for path, value := range map[string]int{
		"translation.batch_size":             t.BatchSize,
		"translation.max_chars_per_line":     t.MaxCharsPerLine,
		"translation.timeout_seconds":        t.TimeoutSeconds,
		"translation.concurrency":            t.Concurrency,
		"translation.proofread_window_size":  t.ProofreadWindowSize,
		"translation.proofread_context_chars": t.ProofreadContextChars,
	} {
		if value <= 0 {
			return badConfig(path, "must be positive")
		}
	}
	if t.ContextSize < 0 {
		return badConfig("translation.context_size", "must be >= 0")
	}
	if t.MaxRetries < 0 {
		return badConfig("translation.max_retries", "must be >= 0")
	}
	return nil
}

func (c *Config) validateOutput() error {
	switch c.Output.Format {
	case "srt", "vtt", "ass":
	default:
		return badConfig("output.format", "must be one of srt, vtt, ass")
	}
	return nil
}

func (c *Config) validateStyles() error {
	if _, ok := styles.Presets[c.Styles.Preset]; !ok {
		return badConfig("styles.preset", fmt.Sprintf("unknown preset %q", c.Styles.Preset))
	}
	if c.Styles.Alignment != nil && (*c.Styles.Alignment < 1 || *c.Styles.Alignment > 9) {
		return badConfig("styles.alignment", "must be between 1 and 9")
	}
	return nil
}

func (c *Config) validateAdvanced() error {
	if c.Advanced.DataRoot == "" {
		return badConfig("advanced.data_root", "must not be empty")
	}
	for path, value := range map[string]int{
		"advanced.download_concurrency":            c.Advanced.DownloadConcurrency,
		"advanced.extract_audio_timeout_seconds":    c.Advanced.ExtractAudioTimeoutSeconds,
		"advanced.recognizer_timeout_seconds":       c.Advanced.RecognizerTimeoutSeconds,
	} {
		if value <= 0 {
			return badConfig(path, "must be positive")
		}
	}
	switch c.Advanced.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return badConfig("advanced.log_level", "must be one of debug, info, warn, error")
	}
	switch c.Advanced.LogFormat {
	case "console", "json":
	default:
		return badConfig("advanced.log_format", "must be \"console\" or \"json\"")
	}
	return nil
}
