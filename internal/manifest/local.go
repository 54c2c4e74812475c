package manifest

import (
	"fmt"
	"os"

	"github.com/go-git/go-billy/v5"
)

// LocalManifest is a manifest tied to a file on disk.
type LocalManifest struct {
	*Manifest

	// Path is the location the manifest was read from and is written back to.
	Path string

	fsys billy.Filesystem
}

// NewLocal opens the manifest file at path.
func NewLocal(fsys billy.Filesystem, path string) (*LocalManifest, error) {
	m, err := Open(fsys, path)
	if err != nil {
		return nil, err
	}
	return &LocalManifest{Manifest: m, Path: path, fsys: fsys}, nil
}

// FindLocal locates a manifest starting from the given path or directory and
// opens it. See Find for the search rules.
func FindLocal(fsys billy.Filesystem, specified, workDir string) (*LocalManifest, error) {
	path, err := Find(fsys, specified, workDir)
	if err != nil {
		return nil, err
	}
	return NewLocal(fsys, path)
}

// Write serializes the manifest back to its file.
func (m *LocalManifest) Write() error {
	file, err := m.fsys.OpenFile(m.Path, os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("opening manifest for writing: %w", err)
	}
	defer file.Close()
	return m.WriteToFile(file)
}

// Upgrade applies dep's version to every dependency section that mentions
// the crate, under whatever key it is declared by, then writes the manifest
// back. The write happens even with dryRun so an untouched document still
// round-trips.
func (m *LocalManifest) Upgrade(dep Dependency, dryRun bool) error {
	for _, section := range m.GetSections() {
		for _, kv := range section.Table.AsTableLike().Entries() {
			name := kv.Key
			if item := kv.Item; item.IsTableLike() {
				if pkg, ok := item.AsTableLike().Get("package").Str(); ok {
					name = pkg
				}
			}
			if name != dep.Name() {
				continue
			}
			if err := m.UpdateTableNamedEntry(section.Path, kv.Key, dep, dryRun); err != nil {
				return err
			}
		}
	}
	return m.Write()
}
