package manifest

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingManifest is returned when no Cargo.toml is found in the
	// starting directory or any of its ancestors.
	ErrMissingManifest = errors.New("unable to find Cargo.toml")

	// ErrInvalidManifest is returned when a manifest has neither a package
	// nor a project section.
	ErrInvalidManifest = errors.New("invalid manifest: no `package` or `project` section")

	// ErrMissingVersion is returned when a structured dependency entry has
	// no version field to report an upgrade against.
	ErrMissingVersion = errors.New("missing version field")

	// ErrUnexpectedRootManifest is returned when a command that operates on a
	// single package is pointed at a workspace root manifest.
	ErrUnexpectedRootManifest = errors.New("found virtual manifest, but this command requires running against an actual package in this workspace; try adding `--all`")
)

// NonExistentTableError reports a lookup of a table that is absent from the
// manifest.
type NonExistentTableError struct {
	Table string
}

func (e *NonExistentTableError) Error() string {
	return fmt.Sprintf("the table `%s` could not be found", e.Table)
}

// NonExistentDependencyError reports a removal of a dependency that is not
// present in the named table.
type NonExistentDependencyError struct {
	Name  string
	Table string
}

func (e *NonExistentDependencyError) Error() string {
	return fmt.Sprintf("the dependency `%s` could not be found in `%s`", e.Name, e.Table)
}
