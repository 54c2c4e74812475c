// Package pkggraph queries Cargo for workspace structure and resolves the
// set of member manifests a command should operate on.
package pkggraph

import (
	"bytes"
	"fmt"
	"os/exec"

	"github.com/charmbracelet/log"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// ExecFunc runs an external command and returns its stdout. Tests substitute
// a canned implementation.
type ExecFunc func(name string, args ...string) ([]byte, error)

func defaultExec(name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := bytes.TrimSpace(stderr.Bytes()); len(msg) > 0 {
			return nil, fmt.Errorf("%s: %s", name, msg)
		}
		return nil, fmt.Errorf("running %s: %w", name, err)
	}
	return out, nil
}

// Package is one package from `cargo metadata`.
type Package struct {
	ID           string
	Name         string
	Version      string
	ManifestPath string
}

// Metadata is the subset of `cargo metadata` output the tool uses.
type Metadata struct {
	Packages      []Package
	WorkspaceRoot string
}

// Command describes a metadata invocation.
type Command struct {
	// ManifestPath is passed through as --manifest-path when non-empty.
	ManifestPath string

	// NoDeps restricts output to workspace members.
	NoDeps bool

	// Exec overrides how the cargo binary is run. Nil uses os/exec.
	Exec ExecFunc
}

// Metadata invokes `cargo metadata` and decodes the result.
func (c Command) Metadata() (*Metadata, error) {
	args := []string{"metadata", "--format-version", "1"}
	if c.NoDeps {
		args = append(args, "--no-deps")
	}
	if c.ManifestPath != "" {
		args = append(args, "--manifest-path", c.ManifestPath)
	}

	run := c.Exec
	if run == nil {
		run = defaultExec
	}
	log.Debug("invoking cargo", "args", args)
	out, err := run("cargo", args...)
	if err != nil {
		return nil, fmt.Errorf("cargo metadata: %w", err)
	}
	return decodeMetadata(out)
}

var (
	packagesPath      = jp.MustParseString("$.packages[*]")
	workspaceRootPath = jp.MustParseString("$.workspace_root")
)

func decodeMetadata(data []byte) (*Metadata, error) {
	doc, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("decoding cargo metadata: %w", err)
	}

	md := &Metadata{}
	if root := workspaceRootPath.First(doc); root != nil {
		md.WorkspaceRoot, _ = root.(string)
	}
	for _, raw := range packagesPath.Get(doc) {
		obj, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("decoding cargo metadata: package is not an object")
		}
		pkg := Package{}
		pkg.ID, _ = obj["id"].(string)
		pkg.Name, _ = obj["name"].(string)
		pkg.Version, _ = obj["version"].(string)
		pkg.ManifestPath, _ = obj["manifest_path"].(string)
		if pkg.Name == "" || pkg.ManifestPath == "" {
			return nil, fmt.Errorf("decoding cargo metadata: package missing name or manifest_path")
		}
		md.Packages = append(md.Packages, pkg)
	}
	return md, nil
}
