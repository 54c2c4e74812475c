package pkggraph

import (
	"path/filepath"

	"github.com/go-git/go-billy/v5"

	"github.com/nrc/cargo-edit/internal/manifest"
)

// Entry pairs a workspace package with its opened manifest.
type Entry struct {
	Manifest *manifest.LocalManifest
	Package  Package
}

// Manifests is the set of member manifests a command operates on.
type Manifests []Entry

// GetAll resolves the starting manifest, queries cargo for the workspace,
// and opens every member manifest.
func GetAll(fsys billy.Filesystem, exec ExecFunc, manifestPath, workDir string) (Manifests, error) {
	path, err := manifest.Find(fsys, manifestPath, workDir)
	if err != nil {
		return nil, err
	}

	md, err := Command{ManifestPath: path, NoDeps: true, Exec: exec}.Metadata()
	if err != nil {
		return nil, err
	}

	out := make(Manifests, 0, len(md.Packages))
	for _, pkg := range md.Packages {
		m, err := manifest.NewLocal(fsys, pkg.ManifestPath)
		if err != nil {
			return nil, err
		}
		out = append(out, Entry{Manifest: m, Package: pkg})
	}
	return out, nil
}

// GetLocalOne opens the single manifest the invocation points at. Pointing
// at a workspace root that is not itself a package is an error.
func GetLocalOne(fsys billy.Filesystem, exec ExecFunc, manifestPath, workDir string) (Manifests, error) {
	path, err := manifest.Find(fsys, manifestPath, workDir)
	if err != nil {
		return nil, err
	}

	md, err := Command{ManifestPath: path, NoDeps: true, Exec: exec}.Metadata()
	if err != nil {
		return nil, err
	}

	resolved := filepath.Clean(path)
	for _, pkg := range md.Packages {
		if filepath.Clean(pkg.ManifestPath) != resolved {
			continue
		}
		m, err := manifest.NewLocal(fsys, pkg.ManifestPath)
		if err != nil {
			return nil, err
		}
		return Manifests{{Manifest: m, Package: pkg}}, nil
	}
	return nil, manifest.ErrUnexpectedRootManifest
}
