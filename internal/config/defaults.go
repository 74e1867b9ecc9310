package config

const (
	defaultWhisperProvider       = "local"
	defaultWhisperLocalModel     = "large-v3"
	defaultWhisperTimeoutSeconds = 900

	defaultTranslationProvider           = "openai"
	defaultTranslationTargetLang         = "en"
	defaultTranslationBatchSize          = 20
	defaultTranslationContextSize        = 5
	defaultTranslationMaxRetries         = 2
	defaultTranslationMaxCharsPerLine    = 40
	defaultTranslationTimeoutSeconds     = 120
	defaultProofreadWindowSize           = 50
	defaultProofreadContextChars         = 15000

	defaultOutputFormat = "srt"

	defaultStylePreset = "default"

	defaultLogLevel  = "info"
	defaultLogFormat = "console"

	defaultDownloadConcurrency        = 2
	defaultExtractAudioTimeoutSeconds = 300
	defaultRecognizerTimeoutSeconds   = 900
)

// Default returns a Config populated with subgen's repository defaults.
func Default() Config {
	return Config{
		Whisper: Whisper{
			Provider:       defaultWhisperProvider,
			LocalModel:     defaultWhisperLocalModel,
			TimeoutSeconds: defaultWhisperTimeoutSeconds,
		},
		Translation: Translation{
			Enabled:               true,
			TargetLang:            defaultTranslationTargetLang,
			Provider:              defaultTranslationProvider,
			TimeoutSeconds:        defaultTranslationTimeoutSeconds,
			SentenceAware:         true,
			BatchSize:             defaultTranslationBatchSize,
			ContextSize:           defaultTranslationContextSize,
			MaxRetries:            defaultTranslationMaxRetries,
			MaxCharsPerLine:       defaultTranslationMaxCharsPerLine,
			Redistribute:          true,
			ProofreadWindowSize:   defaultProofreadWindowSize,
			ProofreadContextChars: defaultProofreadContextChars,
		},
		Output: Output{
			Format: defaultOutputFormat,
		},
		Styles: Styles{
			Preset: defaultStylePreset,
		},
		Advanced: Advanced{
			LogLevel:                  defaultLogLevel,
			LogFormat:                 defaultLogFormat,
			DownloadConcurrency:       defaultDownloadConcurrency,
			ExtractAudioTimeoutSeconds: defaultExtractAudioTimeoutSeconds,
			RecognizerTimeoutSeconds:   defaultRecognizerTimeoutSeconds,
		},
	}
}
