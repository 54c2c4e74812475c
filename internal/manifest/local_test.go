package manifest

import (
	"bytes"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalManifest_WriteRoundTrip(t *testing.T) {
	fsys := memfs.New()
	writeManifest(t, fsys, "/proj/Cargo.toml", basicManifest)

	m, err := NewLocal(fsys, "/proj/Cargo.toml")
	require.NoError(t, err)
	require.NoError(t, m.Write())

	got, err := util.ReadFile(fsys, "/proj/Cargo.toml")
	require.NoError(t, err)
	assert.Equal(t, basicManifest, string(got))
}

func TestLocalManifest_Upgrade(t *testing.T) {
	fsys := memfs.New()
	writeManifest(t, fsys, "/proj/Cargo.toml", `[package]
name = "demo"

[dependencies]
serde = "1.0"

[dev-dependencies]
serde = { version = "1.0", features = ["derive"] }
`)
	m, err := NewLocal(fsys, "/proj/Cargo.toml")
	require.NoError(t, err)
	m.Notices = &bytes.Buffer{}

	require.NoError(t, m.Upgrade(NewDependency("serde").WithVersion("2.0"), false))

	got, err := util.ReadFile(fsys, "/proj/Cargo.toml")
	require.NoError(t, err)
	assert.Contains(t, string(got), `serde = "2.0"`)
	assert.Contains(t, string(got), `features = ["derive"]`)
	assert.NotContains(t, string(got), "1.0")
}

func TestLocalManifest_UpgradeFindsRenamedEntry(t *testing.T) {
	fsys := memfs.New()
	writeManifest(t, fsys, "/proj/Cargo.toml", `[package]
name = "demo"

[dependencies]
io = { version = "0.9", package = "tokio" }
`)
	m, err := NewLocal(fsys, "/proj/Cargo.toml")
	require.NoError(t, err)
	m.Notices = &bytes.Buffer{}

	require.NoError(t, m.Upgrade(NewDependency("tokio").WithVersion("1.0"), false))

	got, err := util.ReadFile(fsys, "/proj/Cargo.toml")
	require.NoError(t, err)
	assert.Contains(t, string(got), `version = "1.0"`)
	assert.Contains(t, string(got), `package = "tokio"`)
	assert.Contains(t, string(got), "io =")
}

func TestLocalManifest_UpgradeDryRunDoesNotChangeFile(t *testing.T) {
	fsys := memfs.New()
	original := `[package]
name = "demo"

[dependencies]
serde = "1.0"
`
	writeManifest(t, fsys, "/proj/Cargo.toml", original)

	m, err := NewLocal(fsys, "/proj/Cargo.toml")
	require.NoError(t, err)
	var notices bytes.Buffer
	m.Notices = &notices

	require.NoError(t, m.Upgrade(NewDependency("serde").WithVersion("2.0"), true))

	got, err := util.ReadFile(fsys, "/proj/Cargo.toml")
	require.NoError(t, err)
	assert.Equal(t, original, string(got))
	assert.Contains(t, notices.String(), "serde v1.0 -> v2.0")
}

func TestLocalManifest_UpgradeUnknownCrateLeavesFileAlone(t *testing.T) {
	fsys := memfs.New()
	writeManifest(t, fsys, "/proj/Cargo.toml", basicManifest)

	m, err := NewLocal(fsys, "/proj/Cargo.toml")
	require.NoError(t, err)
	require.NoError(t, m.Upgrade(NewDependency("nope").WithVersion("9.9"), false))

	got, err := util.ReadFile(fsys, "/proj/Cargo.toml")
	require.NoError(t, err)
	assert.Equal(t, basicManifest, string(got))
}

func TestFindLocal(t *testing.T) {
	fsys := memfs.New()
	writeManifest(t, fsys, "/proj/Cargo.toml", basicManifest)
	require.NoError(t, fsys.MkdirAll("/proj/src", 0o755))

	m, err := FindLocal(fsys, "", "/proj/src")
	require.NoError(t, err)
	assert.Equal(t, "/proj/Cargo.toml", m.Path)
}
