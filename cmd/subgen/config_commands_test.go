package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestConfigInitWritesSampleFile(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "nested", "config.yaml")

	cmd := newConfigInitCommand()
	cmd.SetArgs([]string{"--path", target})
	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !bytes.Contains(out.Bytes(), []byte("Wrote sample configuration")) {
		t.Fatalf("unexpected output: %s", out.String())
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
}

func TestConfigInitRefusesToOverwriteWithoutFlag(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "config.yaml")
	if err := os.WriteFile(target, []byte("whisper: {}\n"), 0o644); err != nil {
		t.Fatalf("seed config: %v", err)
	}

	cmd := newConfigInitCommand()
	cmd.SetArgs([]string{"--path", target})
	cmd.SetOut(&bytes.Buffer{})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error when config already exists")
	}
}

func TestConfigInitOverwriteFlag(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "config.yaml")
	if err := os.WriteFile(target, []byte("whisper: {}\n"), 0o644); err != nil {
		t.Fatalf("seed config: %v", err)
	}

	cmd := newConfigInitCommand()
	cmd.SetArgs([]string{"--path", target, "--overwrite"})
	cmd.SetOut(&bytes.Buffer{})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigValidateReportsDefaultsWhenMissing(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	cmd := newConfigValidateCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !bytes.Contains(out.Bytes(), []byte("Configuration valid")) {
		t.Fatalf("unexpected output: %s", out.String())
	}
}
