package manifest

import (
	"github.com/nrc/cargo-edit/internal/tomledit"
)

// Dependency describes one crate requirement to be written into a manifest.
// The zero value is not useful; construct with NewDependency and chain the
// With* setters, which copy.
type Dependency struct {
	name               string
	rename             string
	version            string
	path               string
	git                string
	features           []string
	optional           bool
	defaultFeatures    bool
	defaultFeaturesSet bool
}

// NewDependency returns a dependency on the crate called name with no
// source or version constraint.
func NewDependency(name string) Dependency {
	return Dependency{name: name}
}

// Name returns the crate's real name, regardless of any rename.
func (d Dependency) Name() string { return d.name }

// NameInManifest returns the key the dependency is stored under: the rename
// when one is set, the crate name otherwise.
func (d Dependency) NameInManifest() string {
	if d.rename != "" {
		return d.rename
	}
	return d.name
}

// Rename returns the alias the dependency is declared under, if any.
func (d Dependency) Rename() (string, bool) {
	return d.rename, d.rename != ""
}

// Version returns the version requirement, if one is set.
func (d Dependency) Version() (string, bool) {
	return d.version, d.version != ""
}

// WithVersion sets the version requirement.
func (d Dependency) WithVersion(version string) Dependency {
	d.version = version
	return d
}

// WithRename declares the dependency under an alias. The real crate name is
// carried in a `package` key.
func (d Dependency) WithRename(rename string) Dependency {
	d.rename = rename
	return d
}

// WithPath sets a local path source.
func (d Dependency) WithPath(path string) Dependency {
	d.path = path
	return d
}

// WithGit sets a git repository source.
func (d Dependency) WithGit(repo string) Dependency {
	d.git = repo
	return d
}

// WithFeatures sets the feature list.
func (d Dependency) WithFeatures(features ...string) Dependency {
	d.features = append([]string(nil), features...)
	return d
}

// WithOptional marks the dependency optional.
func (d Dependency) WithOptional(optional bool) Dependency {
	d.optional = optional
	return d
}

// WithDefaultFeatures sets whether default features are enabled. Leaving it
// unset omits the key, which Cargo treats as enabled.
func (d Dependency) WithDefaultFeatures(on bool) Dependency {
	d.defaultFeatures = on
	d.defaultFeaturesSet = true
	return d
}

// isSimple reports whether the dependency can be written as a bare version
// string rather than a table.
func (d Dependency) isSimple() bool {
	return d.version != "" &&
		d.rename == "" &&
		d.path == "" &&
		d.git == "" &&
		len(d.features) == 0 &&
		!d.optional &&
		!d.defaultFeaturesSet
}

// toTOML renders the dependency as the value for its manifest key: a plain
// string for a version-only dependency, an inline table otherwise.
func (d Dependency) toTOML() *tomledit.Item {
	if d.isSimple() {
		return tomledit.NewString(d.version)
	}
	it := tomledit.NewInlineTable()
	table := it.AsInlineTable()
	if d.version != "" {
		table.Set("version", tomledit.NewString(d.version))
	}
	if d.path != "" {
		table.Set("path", tomledit.NewString(d.path))
	}
	if d.git != "" {
		table.Set("git", tomledit.NewString(d.git))
	}
	if len(d.features) > 0 {
		table.Set("features", tomledit.NewStringArray(d.features))
	}
	if d.defaultFeaturesSet && !d.defaultFeatures {
		table.Set("default-features", tomledit.NewBool(false))
	}
	if d.optional {
		table.Set("optional", tomledit.NewBool(true))
	}
	if d.rename != "" {
		table.Set("package", tomledit.NewString(d.name))
	}
	return it
}
