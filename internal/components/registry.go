// Package components locates, downloads, verifies, and extracts the
// on-disk binaries and models the pipeline depends on: ffmpeg, a
// whisper.cpp-family transcription engine, and its models.
package components

import (
	"fmt"
	"runtime"

	"subgen/internal/subgenerr"
)

// PlatformKey identifies an OS/architecture pair. The canonical values
// are the only ones any registry entry or on-disk state may use.
type PlatformKey string

const (
	PlatformWindowsX64 PlatformKey = "windows-x64"
	PlatformLinuxX64   PlatformKey = "linux-x64"
	PlatformLinuxArm64 PlatformKey = "linux-arm64"
	PlatformMacOSX64   PlatformKey = "macos-x64"
	PlatformMacOSArm64 PlatformKey = "macos-arm64"
)

// CurrentPlatform resolves runtime.GOOS/GOARCH to a canonical PlatformKey.
// Unrecognized pairs are a typed error, never a silent fallback.
func CurrentPlatform() (PlatformKey, error) {
	switch runtime.GOOS {
	case "windows":
		if runtime.GOARCH == "amd64" {
			return PlatformWindowsX64, nil
		}
	case "linux":
		switch runtime.GOARCH {
		case "amd64":
			return PlatformLinuxX64, nil
		case "arm64":
			return PlatformLinuxArm64, nil
		}
	case "darwin":
		switch runtime.GOARCH {
		case "amd64":
			return PlatformMacOSX64, nil
		case "arm64":
			return PlatformMacOSArm64, nil
		}
	}
	return "", subgenerr.Wrap(subgenerr.ErrBadConfig, "", "resolve platform",
		fmt.Sprintf("unsupported platform %s/%s", runtime.GOOS, runtime.GOARCH), nil)
}

// ArchiveKind identifies how a downloaded component archive is packed.
type ArchiveKind string

const (
	ArchiveZip   ArchiveKind = "zip"
	ArchiveTarGz ArchiveKind = "tar.gz"
	ArchiveNone  ArchiveKind = ""
)

// Artifact is one platform's download for a Component: its URL, expected
// SHA-256, archive format, and the relative path to the binary/model
// inside the extracted (or, for ArchiveNone, downloaded) tree.
type Artifact struct {
	URL          string
	SHA256       string
	Archive      ArchiveKind
	RelativePath string
}

// Component is one installable unit: an engine binary, a model file, or
// ffmpeg itself.
type Component struct {
	ID          string
	Kind        string // "engine", "model", or "tool"
	DisplayName string
	Artifacts   map[PlatformKey]Artifact
}

// Registry is the built-in catalog of installable components. It is a
// plain map rather than a fetched remote manifest: spec.md names a fixed
// set of components subgen ships support for.
type Registry struct {
	components map[string]Component
}

// NewRegistry returns the built-in component catalog.
func NewRegistry() *Registry {
	r := &Registry{components: map[string]Component{}}
	for _, c := range builtinComponents() {
		r.components[c.ID] = c
	}
	return r
}

// Get returns the named component, or a missing-component error.
func (r *Registry) Get(id string) (Component, error) {
	c, ok := r.components[id]
	if !ok {
		return Component{}, subgenerr.Wrap(subgenerr.ErrMissingComponent, "", "look up component",
			fmt.Sprintf("unknown component %q", id), nil)
	}
	return c, nil
}

// List returns every component the registry knows about in no particular
// order (map iteration order); sorting by ID is the caller's responsibility.
func (r *Registry) List() []Component {
	out := make([]Component, 0, len(r.components))
	for _, c := range r.components {
		out = append(out, c)
	}
	return out
}

// builtinComponents lists the fixed set of components subgen supports.
// Every built-in entry has an empty Artifacts map: no download URL or
// checksum is set for any platform, and nothing in this package fills
// them in.
func builtinComponents() []Component {
	return []Component{
		{ID: "ffmpeg", Kind: "tool", DisplayName: "FFmpeg", Artifacts: map[PlatformKey]Artifact{}},
		{ID: "whisper-cpp-cuda", Kind: "engine", DisplayName: "whisper.cpp (CUDA)", Artifacts: map[PlatformKey]Artifact{}},
		{ID: "whisper-cpp-cpu", Kind: "engine", DisplayName: "whisper.cpp (CPU)", Artifacts: map[PlatformKey]Artifact{}},
		{ID: "whisper-cpp-metal", Kind: "engine", DisplayName: "whisper.cpp (Metal)", Artifacts: map[PlatformKey]Artifact{}},
		{ID: "model-whisper-tiny", Kind: "model", DisplayName: "Whisper tiny model", Artifacts: map[PlatformKey]Artifact{}},
		{ID: "model-whisper-base", Kind: "model", DisplayName: "Whisper base model", Artifacts: map[PlatformKey]Artifact{}},
		{ID: "model-whisper-small", Kind: "model", DisplayName: "Whisper small model", Artifacts: map[PlatformKey]Artifact{}},
		{ID: "model-whisper-medium", Kind: "model", DisplayName: "Whisper medium model", Artifacts: map[PlatformKey]Artifact{}},
		{ID: "model-whisper-large-v3", Kind: "model", DisplayName: "Whisper large-v3 model", Artifacts: map[PlatformKey]Artifact{}},
	}
}
