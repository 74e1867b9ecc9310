package components

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"subgen/internal/subgenerr"
)

// extractZip extracts every entry of zr into destDir, rejecting any entry
// whose normalized path would escape destDir.
func extractZip(zr *zip.Reader, destDir string) error {
	for _, f := range zr.File {
		target, err := safeJoin(destDir, f.Name)
		if err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		if err := writeEntry(target, rc, f.Mode()); err != nil {
			rc.Close()
			return err
		}
		rc.Close()
	}
	return nil
}

// extractTarGz extracts a gzip-compressed tar stream into destDir,
// rejecting path-traversal entries and symlinks that resolve outside
// destDir.
func extractTarGz(r io.Reader, destDir string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		target, err := safeJoin(destDir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			if err := writeEntry(target, tr, os.FileMode(hdr.Mode)); err != nil {
				return err
			}
		case tar.TypeSymlink:
			resolved := hdr.Linkname
			if !filepath.IsAbs(resolved) {
				resolved = filepath.Join(filepath.Dir(target), resolved)
			}
			resolved = filepath.Clean(resolved)
			if resolved != destDir && !strings.HasPrefix(resolved, destDir+string(filepath.Separator)) {
				return subgenerr.Wrap(subgenerr.ErrUnsafeArchive, "", "extract archive",
					fmt.Sprintf("symlink escaping destination: %s -> %s", hdr.Name, hdr.Linkname), nil)
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return err
			}
		default:
			return subgenerr.Wrap(subgenerr.ErrUnsafeArchive, "", "extract archive",
				fmt.Sprintf("unexpected entry type for %q", hdr.Name), nil)
		}
	}
}

// safeJoin computes destDir/name, rejecting names that escape destDir via
// ".." components or an absolute/drive-letter prefix.
func safeJoin(destDir, name string) (string, error) {
	if filepath.IsAbs(name) || isDriveAbs(name) {
		return "", subgenerr.Wrap(subgenerr.ErrUnsafeArchive, "", "extract archive",
			fmt.Sprintf("path traversal: absolute entry %q", name), nil)
	}
	cleaned := filepath.Clean(filepath.Join(destDir, name))
	if cleaned != destDir && !strings.HasPrefix(cleaned, destDir+string(filepath.Separator)) {
		return "", subgenerr.Wrap(subgenerr.ErrUnsafeArchive, "", "extract archive",
			fmt.Sprintf("path traversal: entry %q escapes destination", name), nil)
	}
	return cleaned, nil
}

// isDriveAbs reports whether name looks like a Windows drive-letter
// absolute path (e.g. "C:\evil.txt") even when running on a non-Windows
// GOOS, since filepath.IsAbs is platform-specific and an archive crafted
// on another OS may still carry one.
func isDriveAbs(name string) bool {
	return len(name) >= 2 && name[1] == ':' && ((name[0] >= 'a' && name[0] <= 'z') || (name[0] >= 'A' && name[0] <= 'Z'))
}

func writeEntry(target string, r io.Reader, mode os.FileMode) error {
	if mode == 0 {
		mode = 0o644
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, r)
	return err
}
