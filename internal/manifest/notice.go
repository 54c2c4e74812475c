package manifest

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/nrc/cargo-edit/internal/tomledit"
)

var upgradingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)

// printUpgradeIfNecessary reports the version change the merge is about to
// make, in Cargo's status-line format. Only a plain version-to-version
// change is reported: nothing is printed when the incoming dependency is
// structured, or when the existing entry is simple but has no version to
// compare. A customized existing entry without a version field is an error.
func (m *Manifest) printUpgradeIfNecessary(existing *tomledit.Item, dep Dependency) error {
	if !dep.isSimple() {
		return nil
	}
	newVersion, _ := dep.Version()

	var oldVersion string
	switch {
	case strOrOneLenTable(existing):
		if s, ok := existing.Str(); ok {
			oldVersion = s
		} else if s, ok := existing.AsTableLike().Get("version").Str(); ok {
			oldVersion = s
		} else {
			return nil
		}
	case existing.IsTableLike():
		s, ok := existing.AsTableLike().Get("version").Str()
		if !ok {
			return ErrMissingVersion
		}
		oldVersion = s
	default:
		return ErrMissingVersion
	}

	if oldVersion == newVersion {
		return nil
	}
	fmt.Fprintf(m.notices(), "%s %s v%s -> v%s\n",
		upgradingStyle.Render("    Upgrading"), dep.Name(), oldVersion, newVersion)
	return nil
}
