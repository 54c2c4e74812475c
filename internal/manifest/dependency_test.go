package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDependency_Names(t *testing.T) {
	dep := NewDependency("tokio")
	assert.Equal(t, "tokio", dep.Name())
	assert.Equal(t, "tokio", dep.NameInManifest())
	_, renamed := dep.Rename()
	assert.False(t, renamed)

	dep = dep.WithRename("io")
	assert.Equal(t, "tokio", dep.Name())
	assert.Equal(t, "io", dep.NameInManifest())
	rename, renamed := dep.Rename()
	assert.True(t, renamed)
	assert.Equal(t, "io", rename)
}

func TestDependency_SettersCopy(t *testing.T) {
	base := NewDependency("serde").WithVersion("1.0")
	derived := base.WithFeatures("derive")

	v, ok := base.Version()
	assert.True(t, ok)
	assert.Equal(t, "1.0", v)
	assert.True(t, base.isSimple())
	assert.False(t, derived.isSimple())
}

func TestDependency_ToTOML(t *testing.T) {
	cases := []struct {
		name string
		dep  Dependency
		want string
	}{
		{"version only", NewDependency("a").WithVersion("1.0"), `"1.0"`},
		{"path", NewDependency("a").WithPath("../a"), `{ path = "../a" }`},
		{"git", NewDependency("a").WithGit("https://example.com/a.git"), `{ git = "https://example.com/a.git" }`},
		{
			"version with features",
			NewDependency("a").WithVersion("1.0").WithFeatures("x", "y"),
			`{ version = "1.0", features = ["x", "y"] }`,
		},
		{
			"default features off",
			NewDependency("a").WithVersion("1.0").WithDefaultFeatures(false),
			`{ version = "1.0", default-features = false }`,
		},
		{
			"default features on is omitted",
			NewDependency("a").WithVersion("1.0").WithDefaultFeatures(true),
			`{ version = "1.0" }`,
		},
		{
			"renamed",
			NewDependency("real").WithVersion("1.0").WithRename("alias"),
			`{ version = "1.0", package = "real" }`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := mustParse(t, "[package]\nname = \"demo\"\n")
			assert.NoError(t, m.InsertIntoTable([]string{"dependencies"}, tc.dep))
			assert.Contains(t, m.Data.String(), tc.dep.NameInManifest()+" = "+tc.want)
		})
	}
}
