package components

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"subgen/internal/fileutil"
	"subgen/internal/subgenerr"
)

// Manager ties the built-in Registry, the download/verify pipeline, and
// the on-disk installed-component Store together into the operations
// spec.md §4.4 names: list, install, uninstall, update, and locate.
type Manager struct {
	registry *Registry
	store    *Store
	dataRoot string
	platform PlatformKey
}

// NewManager returns a Manager rooted at dataRoot, which holds both the
// installed.json manifest and every installed component's files under an
// "installed/<id>/" subdirectory.
func NewManager(dataRoot string) (*Manager, error) {
	platform, err := CurrentPlatform()
	if err != nil {
		return nil, err
	}
	return &Manager{
		registry: NewRegistry(),
		store:    NewStore(dataRoot),
		dataRoot: dataRoot,
		platform: platform,
	}, nil
}

// ListAvailable returns every component the registry knows about.
func (m *Manager) ListAvailable() []Component {
	return m.registry.List()
}

// ListInstalled returns the installed entries recorded in the store.
func (m *Manager) ListInstalled() (map[string]InstalledEntry, error) {
	return m.store.List()
}

// IsInstalled reports whether id is currently installed.
func (m *Manager) IsInstalled(id string) (bool, error) {
	_, ok, err := m.store.Get(id)
	return ok, err
}

// GetPath returns the path to an installed component's binary or model
// file, as recorded in the component's installed entry (entry.Path).
func (m *Manager) GetPath(id string) (string, error) {
	entry, ok, err := m.store.Get(id)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", subgenerr.Wrap(subgenerr.ErrMissingComponent, "", "get component path",
			fmt.Sprintf("%q is not installed", id), nil)
	}
	return entry.Path, nil
}

func (m *Manager) installDir(id string) string {
	return filepath.Join(m.dataRoot, "installed", id)
}

// Install downloads, verifies, and extracts the component for the
// current platform, then records it in the store. progress may be nil.
func (m *Manager) Install(ctx context.Context, id string, progress ProgressFunc) error {
	component, err := m.registry.Get(id)
	if err != nil {
		return err
	}
	artifact, ok := component.Artifacts[m.platform]
	if !ok {
		return subgenerr.Wrap(subgenerr.ErrMissingComponent, "", "install component",
			fmt.Sprintf("%q has no artifact for platform %s", id, m.platform), nil)
	}

	tempDir := filepath.Join(m.dataRoot, "tmp")
	tempPath, err := download(ctx, artifact.URL, tempDir, artifact.SHA256, progress)
	if err != nil {
		return err
	}
	defer os.Remove(tempPath)

	destDir := m.installDir(id)
	if err := os.RemoveAll(destDir); err != nil {
		return subgenerr.Wrap(subgenerr.ErrIO, "", "install component", "clear install directory", err)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return subgenerr.Wrap(subgenerr.ErrIO, "", "install component", "create install directory", err)
	}

	relPath := artifact.RelativePath
	switch artifact.Archive {
	case ArchiveZip:
		zr, closeFn, err := openZipReader(tempPath)
		if err != nil {
			return subgenerr.Wrap(subgenerr.ErrIO, "", "install component", "open archive", err)
		}
		err = extractZip(zr, destDir)
		closeFn()
		if err != nil {
			return err
		}
	case ArchiveTarGz:
		f, err := os.Open(tempPath)
		if err != nil {
			return subgenerr.Wrap(subgenerr.ErrIO, "", "install component", "open archive", err)
		}
		err = extractTarGz(f, destDir)
		f.Close()
		if err != nil {
			return err
		}
	case ArchiveNone:
		if relPath == "" {
			relPath = filepath.Base(artifact.URL)
		}
		target := filepath.Join(destDir, relPath)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return subgenerr.Wrap(subgenerr.ErrIO, "", "install component", "create target directory", err)
		}
		if err := fileutil.CopyFileMode(tempPath, target, 0o755); err != nil {
			return subgenerr.Wrap(subgenerr.ErrIO, "", "install component", "copy artifact into place", err)
		}
	default:
		return subgenerr.Wrap(subgenerr.ErrBadConfig, "", "install component",
			fmt.Sprintf("unknown archive kind %q", artifact.Archive), nil)
	}

	finalPath := filepath.Join(destDir, relPath)
	if _, err := os.Stat(finalPath); err != nil {
		return subgenerr.Wrap(subgenerr.ErrMissingComponent, "", "install component",
			fmt.Sprintf("expected %s after extraction, not found", relPath), err)
	}

	return m.store.Put(InstalledEntry{
		ID:          id,
		Path:        finalPath,
		SHA256:      artifact.SHA256,
		InstalledAt: time.Now(),
	})
}

// Uninstall removes an installed component's files and its store entry.
// It refuses to remove anything whose recorded path does not resolve
// inside this manager's data root, guarding against a corrupted or
// hand-edited installed.json pointing outside the managed tree.
func (m *Manager) Uninstall(id string) error {
	entry, ok, err := m.store.Get(id)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	root := filepath.Clean(m.dataRoot)
	dir := filepath.Dir(filepath.Clean(entry.Path))
	if dir != root && !strings.HasPrefix(dir, root+string(filepath.Separator)) {
		return subgenerr.Wrap(subgenerr.ErrUnsafeArchive, "", "uninstall component",
			fmt.Sprintf("installed path %q for %q is outside the managed data root, refusing to remove", entry.Path, id), nil)
	}

	if err := os.RemoveAll(m.installDir(id)); err != nil {
		return subgenerr.Wrap(subgenerr.ErrIO, "", "uninstall component", "remove install directory", err)
	}
	return m.store.Remove(id)
}

// Update reinstalls id, replacing whatever is currently installed.
func (m *Manager) Update(ctx context.Context, id string, progress ProgressFunc) error {
	return m.Install(ctx, id, progress)
}

// FindFFmpeg returns the path to the installed ffmpeg binary.
func (m *Manager) FindFFmpeg() (string, error) {
	return m.GetPath("ffmpeg")
}

// FindWhisperEngine returns the path to the installed whisper.cpp engine
// binary best suited to the current platform, preferring an accelerated
// build over the CPU fallback when both are installed.
func (m *Manager) FindWhisperEngine() (string, error) {
	for _, id := range []string{"whisper-cpp-cuda", "whisper-cpp-metal", "whisper-cpp-cpu"} {
		if path, err := m.GetPath(id); err == nil {
			return path, nil
		}
	}
	return "", subgenerr.Wrap(subgenerr.ErrMissingComponent, "", "find whisper engine",
		"no whisper.cpp engine is installed", nil)
}

// FindWhisperModel returns the path to the installed whisper model named
// name (e.g. "large-v3", "base").
func (m *Manager) FindWhisperModel(name string) (string, error) {
	return m.GetPath("model-whisper-" + name)
}

