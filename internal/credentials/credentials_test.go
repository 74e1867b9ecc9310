package credentials

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"subgen/internal/subgenerr"
)

func TestStoreSaveLoadRoundtrip(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "credentials.json"))

	if err := store.Set("openai", "sk-test"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	creds, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if creds["openai"] != "sk-test" {
		t.Fatalf("Load() = %+v", creds)
	}
}

func TestStoreSaveWritesOwnerOnlyPermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "credentials.json")
	store := NewStore(path)
	if err := store.Set("openai", "sk-test"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("credentials file mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestStoreLoadMissingFileIsEmpty(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "credentials.json"))
	creds, err := store.Load()
	if err != nil || len(creds) != 0 {
		t.Fatalf("Load() = %+v, %v; want empty map, nil", creds, err)
	}
}

func TestResolvePrioritizesExplicitOverEverything(t *testing.T) {
	t.Setenv(EnvVar("openai"), "env-key")
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "credentials.json"))
	_ = store.Set("openai", "store-key")

	got, err := Resolve("openai", "explicit-key", store, "config-key", "legacy-key", nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "explicit-key" {
		t.Fatalf("Resolve() = %q, want explicit-key", got)
	}
}

func TestResolveFallsBackThroughChain(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "credentials.json"))

	got, err := Resolve("openai", "", store, "config-key", "legacy-key", nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "config-key" {
		t.Fatalf("Resolve() = %q, want config-key (store empty, env unset)", got)
	}
}

func TestResolveLegacyKeyInvokesCallback(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "credentials.json"))
	called := false

	got, err := Resolve("openai", "", store, "", "legacy-key", func() { called = true })
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "legacy-key" || !called {
		t.Fatalf("Resolve() = %q, called=%v", got, called)
	}
}

func TestResolveNoCredentialIsCredentialError(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "credentials.json"))
	_, err := Resolve("openai", "", store, "", "", nil)
	if !errors.Is(err, subgenerr.ErrCredential) {
		t.Fatalf("expected ErrCredential, got %v", err)
	}
}
