// Package manifest edits Cargo.toml files while preserving their formatting.
// Lookups and mutations operate on the parsed document; nothing touches disk
// until WriteToFile.
package manifest

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/nrc/cargo-edit/internal/tomledit"
)

// Manifest is a parsed Cargo.toml.
type Manifest struct {
	Data *tomledit.Document

	// Notices receives human-readable upgrade messages. Defaults to stdout.
	Notices io.Writer
}

// Parse reads manifest contents.
func Parse(data []byte) (*Manifest, error) {
	doc, err := tomledit.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("manifest not valid TOML: %w", err)
	}
	return &Manifest{Data: doc}, nil
}

// Open reads and parses the manifest at path.
func Open(fsys billy.Filesystem, path string) (*Manifest, error) {
	data, err := util.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return Parse(data)
}

// GetTable resolves a nested table by path, creating missing intermediate
// levels as block tables along the way. Creation is a side effect even when
// a later segment fails; callers that only probe should check Data first.
func (m *Manifest) GetTable(path []string) (tomledit.TableLike, error) {
	var cur tomledit.TableLike = m.Data.Root()
	for i, seg := range path {
		item := cur.Get(seg)
		if item.IsNone() {
			switch t := cur.(type) {
			case *tomledit.Table:
				cur = t.InsertTable(seg)
			case *tomledit.InlineTable:
				it := tomledit.NewInlineTable()
				t.Set(seg, it)
				cur = it.AsInlineTable()
			}
			continue
		}
		if !item.IsTableLike() {
			return nil, &NonExistentTableError{Table: joinPath(path[:i+1])}
		}
		cur = item.AsTableLike()
	}
	return cur, nil
}

func joinPath(path []string) string {
	return strings.Join(path, ".")
}

// Section is one dependency table along with the path it lives at.
type Section struct {
	Path  []string
	Table *tomledit.Item
}

// dependency table names, in the order sections are reported.
var depTables = []string{"dev-dependencies", "build-dependencies", "dependencies"}

// GetSections returns a snapshot of every dependency section in the
// manifest: the three top-level kinds plus their per-target variants. The
// returned items are clones; edits to them do not touch the manifest.
func (m *Manifest) GetSections() []Section {
	var out []Section
	root := m.Data.Root()

	for _, kind := range depTables {
		if item := root.Get(kind); item.IsTableLike() {
			out = append(out, Section{Path: []string{kind}, Table: item.Clone()})
		}

		target := root.Get("target")
		if !target.IsTableLike() {
			continue
		}
		for _, kv := range target.AsTableLike().Entries() {
			if !kv.Item.IsTableLike() {
				continue
			}
			if item := kv.Item.AsTableLike().Get(kind); item.IsTableLike() {
				out = append(out, Section{
					Path:  []string{"target", kv.Key, kind},
					Table: item.Clone(),
				})
			}
		}
	}
	return out
}

// SortTable sorts the key/value entries of the table at path by key. The
// table is resolved via GetTable, so missing intermediates are created and a
// non-table segment is an error. Inline tables are left alone.
func (m *Manifest) SortTable(path []string) error {
	table, err := m.GetTable(path)
	if err != nil {
		return err
	}
	if t, ok := table.(*tomledit.Table); ok {
		t.SortValues()
	}
	return nil
}

// WriteToFile validates the manifest shape and replaces file's contents
// with the serialized document. A manifest with neither a package nor a
// project section is rejected; a bare workspace root gets the virtual
// manifest error. The file is truncated in place rather than swapped
// atomically, matching Cargo's own tooling.
func (m *Manifest) WriteToFile(file billy.File) error {
	root := m.Data.Root()
	if root.Get("package").IsNone() && root.Get("project").IsNone() {
		if !root.Get("workspace").IsNone() {
			return ErrUnexpectedRootManifest
		}
		return ErrInvalidManifest
	}

	if err := file.Truncate(0); err != nil {
		return fmt.Errorf("truncating manifest: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewinding manifest: %w", err)
	}
	if _, err := file.Write([]byte(m.Data.String())); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// InsertIntoTable adds dep to the table at tablePath, creating the table if
// needed. An existing entry under the same key is merged rather than
// replaced, so formatting and extra keys survive.
func (m *Manifest) InsertIntoTable(tablePath []string, dep Dependency) error {
	table, err := m.GetTable(tablePath)
	if err != nil {
		return err
	}
	key := dep.NameInManifest()

	// A rename may still refer to a crate declared under its real name;
	// relocate the old entry to the new key and clear the old one before
	// merging, so no duplicate declaration is left behind.
	if _, renamed := dep.Rename(); renamed && dep.Name() != key {
		if old := table.Get(dep.Name()); !old.IsNone() {
			if table.Get(key).IsNone() {
				table.Set(key, old.Clone())
			}
			table.Remove(dep.Name())
		}
	}

	if table.Get(key).IsNone() {
		table.Set(key, dep.toTOML())
	} else {
		mergeDependency(table, key, dep)
	}
	m.normalizeInline(tablePath)
	return nil
}

// normalizeInline re-applies inline-table formatting along path so that
// mutations made inside a nested entry reach the serialized output even when
// an ancestor is an inline table holding cached source text.
func (m *Manifest) normalizeInline(path []string) {
	var cur tomledit.TableLike = m.Data.Root()
	for _, seg := range path {
		item := cur.Get(seg)
		if !item.IsTableLike() {
			return
		}
		if it := item.AsInlineTable(); it != nil {
			it.Normalize()
		}
		cur = item.AsTableLike()
	}
}

// UpdateTableEntry merges dep into the table at tablePath if an entry for it
// exists; manifests that do not depend on the crate are left untouched.
// With dryRun only the upgrade notice is produced.
func (m *Manifest) UpdateTableEntry(tablePath []string, dep Dependency, dryRun bool) error {
	return m.UpdateTableNamedEntry(tablePath, dep.NameInManifest(), dep, dryRun)
}

// UpdateTableNamedEntry is UpdateTableEntry for a dependency stored under an
// explicit key, as with renamed dependencies.
func (m *Manifest) UpdateTableNamedEntry(tablePath []string, key string, dep Dependency, dryRun bool) error {
	table, err := m.GetTable(tablePath)
	if err != nil {
		return err
	}
	if table.Get(key).IsNone() {
		return nil
	}

	if err := m.printUpgradeIfNecessary(table.Get(key), dep); err != nil {
		log.Warn("unable to report upgrade", "dependency", dep.Name(), "err", err)
	}
	if dryRun {
		return nil
	}
	mergeDependency(table, key, dep)
	m.normalizeInline(tablePath)
	return nil
}

// RemoveFromTable deletes the named dependency from the top-level table.
// The table itself is removed once it has no entries left.
func (m *Manifest) RemoveFromTable(table string, name string) error {
	root := m.Data.Root()
	item := root.Get(table)
	if !item.IsTableLike() {
		return &NonExistentTableError{Table: table}
	}
	like := item.AsTableLike()
	if !like.Remove(name) {
		return &NonExistentDependencyError{Name: name, Table: table}
	}
	if like.Len() == 0 {
		root.Remove(table)
	}
	return nil
}

// AddDeps inserts each dependency in turn, stopping at the first error.
func (m *Manifest) AddDeps(tablePath []string, deps []Dependency) error {
	for _, dep := range deps {
		if err := m.InsertIntoTable(tablePath, dep); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manifest) notices() io.Writer {
	if m.Notices != nil {
		return m.Notices
	}
	return os.Stdout
}
