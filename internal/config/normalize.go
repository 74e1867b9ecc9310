package config

import (
	"os"
	"runtime"
	"strings"

	"subgen/internal/credentials"
)

func (c *Config) normalize() error {
	if err := c.normalizeAdvanced(); err != nil {
		return err
	}
	if err := c.normalizeWhisper(); err != nil {
		return err
	}
	c.normalizeTranslation()
	c.normalizeOutput()
	c.normalizeStyles()
	return nil
}

func (c *Config) normalizeAdvanced() error {
	var err error
	if strings.TrimSpace(c.Advanced.DataRoot) == "" {
		if c.Advanced.DataRoot, err = DefaultDataRoot(); err != nil {
			return err
		}
	} else if c.Advanced.DataRoot, err = expandPath(c.Advanced.DataRoot); err != nil {
		return err
	}
	if strings.TrimSpace(c.Advanced.LogDir) != "" {
		if c.Advanced.LogDir, err = expandPath(c.Advanced.LogDir); err != nil {
			return err
		}
	}
	c.Advanced.LogLevel = strings.ToLower(strings.TrimSpace(c.Advanced.LogLevel))
	if c.Advanced.LogLevel == "" {
		c.Advanced.LogLevel = defaultLogLevel
	}
	c.Advanced.LogFormat = strings.ToLower(strings.TrimSpace(c.Advanced.LogFormat))
	switch c.Advanced.LogFormat {
	case "", "console":
		c.Advanced.LogFormat = "console"
	case "json":
	default:
		c.Advanced.LogFormat = "console"
	}
	if c.Advanced.DownloadConcurrency <= 0 {
		c.Advanced.DownloadConcurrency = defaultDownloadConcurrency
	}
	if c.Advanced.ExtractAudioTimeoutSeconds <= 0 {
		c.Advanced.ExtractAudioTimeoutSeconds = defaultExtractAudioTimeoutSeconds
	}
	if c.Advanced.RecognizerTimeoutSeconds <= 0 {
		c.Advanced.RecognizerTimeoutSeconds = defaultRecognizerTimeoutSeconds
	}
	return nil
}

func (c *Config) normalizeWhisper() error {
	c.Whisper.Provider = strings.ToLower(strings.TrimSpace(c.Whisper.Provider))
	if c.Whisper.Provider == "" {
		c.Whisper.Provider = defaultWhisperProvider
	}
	c.Whisper.LocalModel = strings.TrimSpace(c.Whisper.LocalModel)
	if c.Whisper.LocalModel == "" {
		c.Whisper.LocalModel = defaultWhisperLocalModel
	}
	c.Whisper.SourceLang = strings.ToLower(strings.TrimSpace(c.Whisper.SourceLang))
	if c.Whisper.TimeoutSeconds <= 0 {
		c.Whisper.TimeoutSeconds = defaultWhisperTimeoutSeconds
	}
	if c.Whisper.Provider == "cloud" && c.Whisper.APIKey == "" {
		if value, ok := os.LookupEnv(credentials.EnvVar("whisper")); ok {
			c.Whisper.APIKey = strings.TrimSpace(value)
		}
	}
	return nil
}

func (c *Config) normalizeTranslation() {
	c.Translation.Provider = strings.ToLower(strings.TrimSpace(c.Translation.Provider))
	if c.Translation.Provider == "" {
		c.Translation.Provider = defaultTranslationProvider
	}
	c.Translation.TargetLang = strings.ToLower(strings.TrimSpace(c.Translation.TargetLang))
	if c.Translation.BatchSize <= 0 {
		c.Translation.BatchSize = defaultTranslationBatchSize
	}
	if c.Translation.ContextSize < 0 {
		c.Translation.ContextSize = defaultTranslationContextSize
	}
	if c.Translation.MaxRetries < 0 {
		c.Translation.MaxRetries = defaultTranslationMaxRetries
	}
	if c.Translation.MaxCharsPerLine <= 0 {
		c.Translation.MaxCharsPerLine = defaultTranslationMaxCharsPerLine
	}
	if c.Translation.TimeoutSeconds <= 0 {
		c.Translation.TimeoutSeconds = defaultTranslationTimeoutSeconds
	}
	if c.Translation.Concurrency <= 0 {
		c.Translation.Concurrency = min(4, runtime.NumCPU())
	}
	if c.Translation.ProofreadWindowSize <= 0 {
		c.Translation.ProofreadWindowSize = defaultProofreadWindowSize
	}
	if c.Translation.ProofreadContextChars <= 0 {
		c.Translation.ProofreadContextChars = defaultProofreadContextChars
	}
	if c.Translation.APIKey == "" {
		if value, ok := os.LookupEnv(credentials.EnvVar(c.Translation.Provider)); ok {
			c.Translation.APIKey = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeOutput() {
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	if c.Output.Format == "" {
		c.Output.Format = defaultOutputFormat
	}
}

func (c *Config) normalizeStyles() {
	c.Styles.Preset = strings.ToLower(strings.TrimSpace(c.Styles.Preset))
	if c.Styles.Preset == "" {
		c.Styles.Preset = defaultStylePreset
	}
}
