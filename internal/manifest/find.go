package manifest

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5"
)

const manifestFilename = "Cargo.toml"

// Find resolves the path of the manifest to operate on. When specified is
// non-empty it must exist: a file path is returned as-is and a directory is
// searched. Otherwise the search starts at workDir and walks up through
// parent directories until a Cargo.toml is found.
func Find(fsys billy.Filesystem, specified, workDir string) (string, error) {
	if specified != "" {
		info, err := fsys.Stat(specified)
		if err != nil {
			return "", fmt.Errorf("reading manifest path: %w", err)
		}
		if !info.IsDir() {
			return specified, nil
		}
		return searchUp(fsys, specified)
	}
	return searchUp(fsys, workDir)
}

func searchUp(fsys billy.Filesystem, dir string) (string, error) {
	for {
		candidate := fsys.Join(dir, manifestFilename)
		if info, err := fsys.Stat(candidate); err == nil && !info.IsDir() {
			log.Debug("found manifest", "path", candidate)
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrMissingManifest
		}
		dir = parent
	}
}
