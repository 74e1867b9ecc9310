package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"subgen/internal/cachestore"
	"subgen/internal/components"
	"subgen/internal/config"
	"subgen/internal/credentials"
	"subgen/internal/llm"
	"subgen/internal/logging"
	"subgen/internal/pipeline"
	"subgen/internal/transcribe"
	"subgen/internal/transcribe/binary"
	"subgen/internal/transcribe/cloudapi"
)

// commandContext lazily builds and caches the shared collaborators every
// subcommand needs: configuration, logger, component manager, credential
// store. Each is resolved once per process invocation.
type commandContext struct {
	configFlag *string
	debugFlag  *bool

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error

	componentsOnce sync.Once
	components     *components.Manager
	componentsErr  error
}

func newCommandContext(configFlag *string, debugFlag *bool) *commandContext {
	return &commandContext{configFlag: configFlag, debugFlag: debugFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolvedPath, _, warnings, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		for _, w := range warnings {
			fmt.Printf("warning: unknown config key %q\n", w)
		}
		if err := cfg.EnsureDataRoot(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolvedPath
	})
	return c.config, c.configErr
}

func (c *commandContext) log() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = err
			return
		}
		if c.debugFlag != nil && *c.debugFlag {
			logger = logging.WithLevelOverride(logger, slog.LevelDebug)
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) componentsManager() (*components.Manager, error) {
	c.componentsOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.componentsErr = err
			return
		}
		mgr, err := components.NewManager(cfg.Advanced.DataRoot)
		if err != nil {
			c.componentsErr = err
			return
		}
		c.components = mgr
	})
	return c.components, c.componentsErr
}

func (c *commandContext) credentialsStore() (*credentials.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return credentials.NewStore(filepath.Join(cfg.Advanced.DataRoot, "credentials.json")), nil
}

// recognizer builds the transcribe.Recognizer named by cfg.Whisper's
// provider: a local whisper.cpp binary routed through the component
// manager, or a cloud HTTP endpoint.
func (c *commandContext) recognizer(ffmpegBinary string) (transcribe.Recognizer, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.log()
	if err != nil {
		return nil, err
	}

	switch cfg.Whisper.Provider {
	case "cloud":
		store, err := c.credentialsStore()
		if err != nil {
			return nil, err
		}
		apiKey, err := credentials.Resolve("whisper", "", store, cfg.Whisper.APIKey, "", nil)
		if err != nil {
			return nil, err
		}
		return cloudapi.New(cloudapi.Config{
			Endpoint:       cfg.Whisper.CloudEndpoint,
			APIKey:         apiKey,
			TimeoutSeconds: cfg.Whisper.TimeoutSeconds,
		})
	default:
		binaryPath := cfg.Whisper.LocalEngine
		if binaryPath == "" {
			mgr, err := c.componentsManager()
			if err != nil {
				return nil, err
			}
			binaryPath, err = mgr.FindWhisperEngine()
			if err != nil {
				return nil, err
			}
		}
		modelPath := cfg.Whisper.LocalModel
		if mgr, err := c.componentsManager(); err == nil {
			if p, err := mgr.GetPath("model-whisper-" + cfg.Whisper.LocalModel); err == nil {
				modelPath = p
			}
		}
		return binary.New(binary.Config{
			BinaryPath: binaryPath,
			ModelPath:  modelPath,
			ExtraArgs:  cfg.Whisper.LocalExtraArgs,
		}, logger), nil
	}
}

// llmClient builds the llm.Client named by cfg.Translation's provider,
// resolving its API key through the credential priority chain spec.md
// §4.8 requires (explicit argument, environment, secure store, config).
func (c *commandContext) llmClient() (llm.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := c.credentialsStore()
	if err != nil {
		return nil, err
	}
	apiKey, err := credentials.Resolve(cfg.Translation.Provider, "", store, cfg.Translation.APIKey, "", nil)
	if err != nil && cfg.Translation.Provider != "ollama" {
		return nil, err
	}
	return llm.New(cfg.Translation.Provider, llm.Config{
		APIKey:         apiKey,
		BaseURL:        cfg.Translation.BaseURL,
		Host:           cfg.Translation.Host,
		Model:          cfg.Translation.Model,
		TimeoutSeconds: cfg.Translation.TimeoutSeconds,
	})
}

// ffmpegBinary resolves the ffmpeg binary path: an installed component if
// present, else whatever "ffmpeg" resolves to on PATH.
func (c *commandContext) ffmpegBinary() string {
	mgr, err := c.componentsManager()
	if err == nil {
		if path, err := mgr.FindFFmpeg(); err == nil {
			return path
		}
	}
	return "ffmpeg"
}

// ffprobeBinary resolves ffprobe alongside an installed ffmpeg binary when
// possible, since subgen's ffmpeg component archives both together; it
// falls back to "ffprobe" on PATH otherwise. There is no separate ffprobe
// component in the registry.
func (c *commandContext) ffprobeBinary(ffmpegPath string) string {
	dir := filepath.Dir(ffmpegPath)
	if dir == "." || dir == "" {
		return "ffprobe"
	}
	return filepath.Join(dir, "ffprobe")
}

// engine builds a pipeline.Engine wired against the configured recognizer
// and LLM client.
func (c *commandContext) engine() (*pipeline.Engine, error) {
	ffmpeg := c.ffmpegBinary()
	recognizer, err := c.recognizer(ffmpeg)
	if err != nil {
		return nil, err
	}
	client, err := c.llmClient()
	if err != nil {
		return nil, err
	}
	mgr, err := c.componentsManager()
	if err != nil {
		return nil, err
	}
	store, err := c.credentialsStore()
	if err != nil {
		return nil, err
	}
	logger, err := c.log()
	if err != nil {
		return nil, err
	}
	return pipeline.New(recognizer, client, mgr, store, cachestore.NewStore(), logger), nil
}

func shouldSkipConfig(annotations map[string]string) bool {
	return annotations != nil && annotations["skipConfigLoad"] == "true"
}
