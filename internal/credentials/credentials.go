// Package credentials resolves and persists provider API keys: the
// ~/.subgen/credentials.json secure store, and the priority chain
// (argument, environment, store, config) spec.md §4.8 requires every LLM
// provider read through.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"subgen/internal/subgenerr"
)

// Store persists provider credentials to a single JSON file with
// owner-only permissions, set at creation rather than via a later chmod.
type Store struct {
	path string
}

// NewStore returns a Store rooted at path (typically
// "~/.subgen/credentials.json").
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the credential store, keyed by provider name. A missing file
// is an empty store, not an error.
func (s *Store) Load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, subgenerr.Wrap(subgenerr.ErrIO, "", "load credentials", "read credentials file", err)
	}
	var creds map[string]string
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, subgenerr.Wrap(subgenerr.ErrIO, "", "load credentials", "parse credentials file", err)
	}
	return creds, nil
}

// Save writes the credential map atomically, creating both the file and
// any missing parent directory with owner-only permission bits.
func (s *Store) Save(creds map[string]string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return subgenerr.Wrap(subgenerr.ErrIO, "", "save credentials", "create credentials directory", err)
	}
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return subgenerr.Wrap(subgenerr.ErrIO, "", "save credentials", "marshal credentials", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return subgenerr.Wrap(subgenerr.ErrIO, "", "save credentials", "write temp file", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return subgenerr.Wrap(subgenerr.ErrIO, "", "save credentials", "rename temp file", err)
	}
	return nil
}

// Set stores a single provider's key, loading and re-saving the store.
func (s *Store) Set(provider, apiKey string) error {
	creds, err := s.Load()
	if err != nil {
		return err
	}
	creds[provider] = apiKey
	return s.Save(creds)
}

// EnvVar returns the environment variable name checked for a provider's
// API key: SUBGEN_<PROVIDER>_API_KEY.
func EnvVar(provider string) string {
	return "SUBGEN_" + strings.ToUpper(strings.TrimSpace(provider)) + "_API_KEY"
}

// Resolve looks up a provider's API key following spec.md §4.8's priority
// chain: explicit argument, environment variable, secure store, config
// file. configKey is the key found in the config file (for example
// "translation.api_key"; empty if unset); legacyKey
// is the deprecated "llm.*" fallback. onLegacyUse, if non-nil, is called
// the first time a legacy config key is actually used so the caller can
// log a deprecation warning exactly once.
func Resolve(provider, explicit string, store *Store, configKey, legacyKey string, onLegacyUse func()) (string, error) {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return explicit, nil
	}
	if env := strings.TrimSpace(os.Getenv(EnvVar(provider))); env != "" {
		return env, nil
	}
	if store != nil {
		creds, err := store.Load()
		if err != nil {
			return "", err
		}
		if key := strings.TrimSpace(creds[provider]); key != "" {
			return key, nil
		}
	}
	if configKey = strings.TrimSpace(configKey); configKey != "" {
		return configKey, nil
	}
	if legacyKey = strings.TrimSpace(legacyKey); legacyKey != "" {
		if onLegacyUse != nil {
			onLegacyUse()
		}
		return legacyKey, nil
	}
	return "", subgenerr.Wrap(subgenerr.ErrCredential, "", "resolve credential",
		fmt.Sprintf("no credential found for provider %q", provider), nil)
}
