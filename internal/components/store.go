package components

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"subgen/internal/subgenerr"
)

// InstalledEntry records one installed component's on-disk location and
// provenance.
type InstalledEntry struct {
	ID          string    `json:"id"`
	Path        string    `json:"path"`
	SHA256      string    `json:"sha256"`
	InstalledAt time.Time `json:"installed_at"`
}

// installedState is the on-disk shape of installed.json.
type installedState struct {
	Components map[string]InstalledEntry `json:"components"`
}

// Store persists the installed-component manifest, guarding every read
// and write with an exclusive file lock so concurrent install/uninstall
// invocations from separate processes do not corrupt it.
type Store struct {
	path     string
	lockPath string
}

// NewStore returns a Store backed by installed.json in dataRoot.
func NewStore(dataRoot string) *Store {
	path := filepath.Join(dataRoot, "installed.json")
	return &Store{path: path, lockPath: path + ".lock"}
}

// Path returns the installed.json path this store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// withLock runs fn while holding an exclusive lock on s.lockPath.
func (s *Store) withLock(fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return subgenerr.Wrap(subgenerr.ErrIO, "", "lock component store", "create data directory", err)
	}
	fl := flock.New(s.lockPath)
	if err := fl.Lock(); err != nil {
		return subgenerr.Wrap(subgenerr.ErrIO, "", "lock component store", "acquire exclusive lock", err)
	}
	defer fl.Unlock()
	return fn()
}

func (s *Store) load() (installedState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return installedState{Components: map[string]InstalledEntry{}}, nil
		}
		return installedState{}, subgenerr.Wrap(subgenerr.ErrIO, "", "load component store", "read installed.json", err)
	}
	var st installedState
	if err := json.Unmarshal(data, &st); err != nil {
		return installedState{}, subgenerr.Wrap(subgenerr.ErrIO, "", "load component store", "parse installed.json", err)
	}
	if st.Components == nil {
		st.Components = map[string]InstalledEntry{}
	}
	return st, nil
}

func (s *Store) save(st installedState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return subgenerr.Wrap(subgenerr.ErrIO, "", "save component store", "marshal installed.json", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return subgenerr.Wrap(subgenerr.ErrIO, "", "save component store", "write temp file", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return subgenerr.Wrap(subgenerr.ErrIO, "", "save component store", "rename temp file", err)
	}
	return nil
}

// Get returns the installed entry for id, and whether it is present.
func (s *Store) Get(id string) (InstalledEntry, bool, error) {
	var entry InstalledEntry
	var ok bool
	err := s.withLock(func() error {
		st, err := s.load()
		if err != nil {
			return err
		}
		entry, ok = st.Components[id]
		return nil
	})
	return entry, ok, err
}

// List returns every installed entry.
func (s *Store) List() (map[string]InstalledEntry, error) {
	var out map[string]InstalledEntry
	err := s.withLock(func() error {
		st, err := s.load()
		if err != nil {
			return err
		}
		out = st.Components
		return nil
	})
	return out, err
}

// Put records or replaces an installed entry.
func (s *Store) Put(entry InstalledEntry) error {
	return s.withLock(func() error {
		st, err := s.load()
		if err != nil {
			return err
		}
		st.Components[entry.ID] = entry
		return s.save(st)
	})
}

// Remove deletes an installed entry's record.
func (s *Store) Remove(id string) error {
	return s.withLock(func() error {
		st, err := s.load()
		if err != nil {
			return err
		}
		delete(st.Components, id)
		return s.save(st)
	})
}
