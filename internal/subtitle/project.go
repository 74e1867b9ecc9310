package subtitle

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"subgen/internal/subgenerr"
)

// SaveProject writes a Project to path as indented JSON, atomically: the
// content is written to a sibling temp file and renamed into place so a
// reader never observes a partial write.
func SaveProject(p *Project, path string) error {
	if p == nil {
		return subgenerr.Wrap(subgenerr.ErrBadInput, "", "save project", "nil project", nil)
	}
	p.Version = ProjectSchemaVersion
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return subgenerr.Wrap(subgenerr.ErrIO, "", "save project", "create project directory", err)
		}
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return subgenerr.Wrap(subgenerr.ErrIO, "", "save project", "marshal project", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return subgenerr.Wrap(subgenerr.ErrIO, "", "save project", "write temp file", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return subgenerr.Wrap(subgenerr.ErrIO, "", "save project", "rename temp file", err)
	}
	return nil
}

// LoadProject reads a ".project" JSON file and validates its invariants.
func LoadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, subgenerr.Wrap(subgenerr.ErrIO, "", "load project", "read project file", err)
	}
	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, subgenerr.Wrap(subgenerr.ErrBadInput, "", "load project", "parse project JSON", err)
	}
	if err := ValidateProject(&p); err != nil {
		return nil, fmt.Errorf("load project %s: %w", path, err)
	}
	return &p, nil
}
