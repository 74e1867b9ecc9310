package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"subgen/internal/subgenerr"
)

//go:embed sample_config.yaml
var sampleConfig string

// Whisper controls transcription: which recognizer to use and how to
// reach it.
type Whisper struct {
	Provider      string `yaml:"provider"`       // "local" or "cloud"
	LocalModel    string `yaml:"local_model"`     // e.g. "large-v3"
	LocalEngine   string `yaml:"local_engine"`    // override path to the binary; "" resolves via components.Manager
	LocalExtraArgs []string `yaml:"local_extra_args"`
	CloudEndpoint string `yaml:"cloud_endpoint"`
	APIKey        string `yaml:"api_key"`
	TimeoutSeconds int   `yaml:"timeout_seconds"`
	SourceLang    string `yaml:"source_lang"` // "" = auto-detect
}

// Translation controls the sentence-aware translator and which LLM
// provider drives it.
type Translation struct {
	Enabled            bool   `yaml:"enabled"`
	TargetLang         string `yaml:"target_lang"`
	Provider           string `yaml:"provider"` // openai, anthropic, deepseek, ollama
	Model              string `yaml:"model"`
	BaseURL            string `yaml:"base_url"`
	Host               string `yaml:"host"` // ollama
	APIKey             string `yaml:"api_key"`
	TimeoutSeconds     int    `yaml:"timeout_seconds"`
	SentenceAware      bool   `yaml:"sentence_aware"`
	BatchSize          int    `yaml:"batch_size"`
	ContextSize        int    `yaml:"context_size"`
	MaxRetries         int    `yaml:"max_retries"`
	MaxCharsPerLine    int    `yaml:"max_chars_per_line"`
	Concurrency        int    `yaml:"concurrency"` // 0 = min(4, NumCPU)
	Redistribute       bool   `yaml:"redistribute"`
	RulesDir           string `yaml:"rules_dir"`
	Proofread          bool   `yaml:"proofread"`
	ProofreadWindowSize int   `yaml:"proofread_window_size"`
	ProofreadContextChars int `yaml:"proofread_context_chars"`
}

// Output controls how the finished Project is written to disk.
type Output struct {
	Format    string `yaml:"format"` // srt, vtt, ass
	Bilingual bool   `yaml:"bilingual"`
	Embed     bool   `yaml:"embed"`
	Path      string `yaml:"path"` // "" derives from the input video path
}

// FontStyleConfig is the config-file shape of a styles.FontStyleOverride:
// every field is a pointer so an absent key leaves the preset's value
// untouched rather than zeroing it out.
type FontStyleConfig struct {
	Font         *string `yaml:"font,omitempty"`
	Size         *int    `yaml:"size,omitempty"`
	Color        *string `yaml:"color,omitempty"`
	OutlineColor *string `yaml:"outline_color,omitempty"`
	OutlineWidth *int    `yaml:"outline_width,omitempty"`
	ShadowWidth  *int    `yaml:"shadow_width,omitempty"`
	Bold         *bool   `yaml:"bold,omitempty"`
	Italic       *bool   `yaml:"italic,omitempty"`
}

// Styles controls the ASS style profile applied to exported subtitles.
type Styles struct {
	Preset       string           `yaml:"preset"`
	Primary      *FontStyleConfig `yaml:"primary,omitempty"`
	Secondary    *FontStyleConfig `yaml:"secondary,omitempty"`
	Alignment    *int             `yaml:"alignment,omitempty"`
	MarginBottom *int             `yaml:"margin_bottom,omitempty"`
	PlayResX     *int             `yaml:"play_res_x,omitempty"`
	PlayResY     *int             `yaml:"play_res_y,omitempty"`
}

// Advanced carries ambient settings that don't belong to a single
// pipeline stage: where state lives on disk, and how the process logs.
type Advanced struct {
	DataRoot             string `yaml:"data_root"`
	LogDir               string `yaml:"log_dir"`
	LogLevel             string `yaml:"log_level"`
	LogFormat            string `yaml:"log_format"`
	Debug                bool   `yaml:"debug"`
	DownloadConcurrency  int    `yaml:"download_concurrency"`
	ExtractAudioTimeoutSeconds int `yaml:"extract_audio_timeout_seconds"`
	RecognizerTimeoutSeconds   int `yaml:"recognizer_timeout_seconds"`
}

// Config is the root of subgen's YAML configuration file.
type Config struct {
	Whisper     Whisper     `yaml:"whisper"`
	Translation Translation `yaml:"translation"`
	Output      Output      `yaml:"output"`
	Styles      Styles      `yaml:"styles"`
	Advanced    Advanced    `yaml:"advanced"`
}

// DefaultConfigPath returns the absolute path to the default
// configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.subgen/config.yaml")
}

// DefaultDataRoot returns the absolute path to the default user data
// root, used when Advanced.DataRoot is unset.
func DefaultDataRoot() (string, error) {
	return expandPath("~/.subgen")
}

// Load locates, parses, normalizes, and validates the configuration
// file. The returned warnings list unknown top-level keys the file
// contained; unknown keys are not an error, per spec.md §6, but the
// caller should log them.
func Load(path string) (*Config, string, bool, []string, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, nil, err
	}

	var warnings []string
	if exists {
		data, err := os.ReadFile(resolvedPath)
		if err != nil {
			return nil, "", false, nil, subgenerr.Wrap(subgenerr.ErrIO, "", "load config", "read config file", err)
		}

		warnings, err = unknownTopLevelKeys(data)
		if err != nil {
			return nil, "", false, nil, err
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, "", false, nil, wrapYAMLTypeError(err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, nil, err
	}

	return &cfg, resolvedPath, exists, warnings, nil
}

// unknownTopLevelKeys decodes data as a generic mapping and returns the
// top-level keys that don't correspond to a known Config section.
func unknownTopLevelKeys(data []byte) ([]string, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, wrapYAMLTypeError(err)
	}
	known := map[string]bool{
		"whisper": true, "translation": true, "output": true,
		"styles": true, "advanced": true,
	}
	var unknown []string
	for key := range raw {
		if !known[key] {
			unknown = append(unknown, key)
		}
	}
	return unknown, nil
}

// wrapYAMLTypeError tags a yaml.Unmarshal type/shape mismatch as a
// bad-config error, preserving yaml.v3's own message (which names the
// offending line and field) rather than replacing it.
func wrapYAMLTypeError(err error) error {
	return subgenerr.Wrap(subgenerr.ErrBadConfig, "", "parse config", "invalid YAML", err)
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, subgenerr.Wrap(subgenerr.ErrIO, "", "load config", "stat config file", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.subgen/config.yaml")
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDataRoot creates the user data root and its standard
// subdirectories (bin, models) if they don't already exist.
func (c *Config) EnsureDataRoot() error {
	for _, dir := range []string{c.Advanced.DataRoot, filepath.Join(c.Advanced.DataRoot, "bin"), filepath.Join(c.Advanced.DataRoot, "models")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return subgenerr.Wrap(subgenerr.ErrIO, "", "ensure data root", fmt.Sprintf("create directory %q", dir), err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", subgenerr.Wrap(subgenerr.ErrIO, "", "expand path", "resolve home directory", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", subgenerr.Wrap(subgenerr.ErrIO, "", "expand path", fmt.Sprintf("resolve absolute path for %q", cleaned), err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other
// packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a commented sample configuration file, with
// owner-only permissions per spec.md §6's sensitive-file requirement.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return subgenerr.Wrap(subgenerr.ErrIO, "", "create sample config", "create config directory", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		return subgenerr.Wrap(subgenerr.ErrIO, "", "create sample config", "write sample config", err)
	}
	return nil
}
