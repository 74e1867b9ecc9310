// Package binary implements a transcribe.Recognizer that spawns an
// external speech-recognition binary and reads its JSON output file.
package binary

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"subgen/internal/subgenerr"
	"subgen/internal/transcribe"
)

// Config carries the settings needed to invoke the recognizer binary.
type Config struct {
	BinaryPath string
	ModelPath  string
	ExtraArgs  []string
}

// commandRunner abstracts process execution so tests can substitute a
// fake without spawning a real binary.
type commandRunner func(ctx context.Context, name string, args []string, onLine func(line string)) error

// Adapter is a transcribe.Recognizer that drives an external binary.
type Adapter struct {
	cfg    Config
	log    *slog.Logger
	runner commandRunner
}

// New returns an Adapter for the configured recognizer binary.
func New(cfg Config, log *slog.Logger) *Adapter {
	if log == nil {
		log = slog.Default()
	}
	return &Adapter{cfg: cfg, log: log, runner: runCommand}
}

// WithCommandRunner overrides how the adapter invokes the binary, for
// testing.
func (a *Adapter) WithCommandRunner(runner commandRunner) {
	a.runner = runner
}

func (a *Adapter) Name() string { return "binary" }

// Transcribe spawns the configured binary against audioPath, reading its
// JSON output file from a securely created temporary directory.
func (a *Adapter) Transcribe(ctx context.Context, audioPath string, opts transcribe.Options) (transcribe.Result, error) {
	workDir, err := os.MkdirTemp("", "subgen-transcribe-*")
	if err != nil {
		return transcribe.Result{}, subgenerr.Wrap(subgenerr.ErrIO, "", "transcribe", "create secure temp directory", err)
	}
	defer os.RemoveAll(workDir)

	outputPath := filepath.Join(workDir, "output.json")
	args := a.buildArgs(audioPath, outputPath, opts)

	if err := a.runner(ctx, a.cfg.BinaryPath, args, func(line string) {
		a.log.Debug("recognizer output", "line", line)
	}); err != nil {
		return transcribe.Result{}, subgenerr.Wrap(subgenerr.ErrTranscriptionFailed, "", "transcribe",
			fmt.Sprintf("recognizer binary %q failed", a.cfg.BinaryPath), err)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		return transcribe.Result{}, subgenerr.Wrap(subgenerr.ErrTranscriptionFailed, "", "transcribe",
			"recognizer did not produce an output file", err)
	}
	return transcribe.DecodeOutput(data)
}

func (a *Adapter) buildArgs(audioPath, outputPath string, opts transcribe.Options) []string {
	args := []string{"--input", audioPath, "--output", outputPath}
	if a.cfg.ModelPath != "" {
		args = append(args, "--model", a.cfg.ModelPath)
	}
	if opts.SourceLang != "" {
		args = append(args, "--language", opts.SourceLang)
	}
	args = append(args, a.cfg.ExtraArgs...)
	return args
}

// runCommand executes binary with args, draining stdout and stderr
// concurrently with two goroutines so a recognizer that fills one pipe's
// buffer without the other being read never deadlocks.
func runCommand(ctx context.Context, name string, args []string, onLine func(line string)) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once

	scan := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			if onLine != nil {
				onLine(scanner.Text())
			}
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() { scanErr = err })
		}
	}

	wg.Add(2)
	go scan(stdout)
	go scan(stderr)
	wg.Wait()

	if scanErr != nil {
		_ = cmd.Process.Kill()
		return fmt.Errorf("scan output: %w", scanErr)
	}
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}
