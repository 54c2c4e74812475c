package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/nrc/cargo-edit/internal/pkggraph"
)

var (
	tidyManifestPath string
	tidyAll          bool
	tidyQuiet        bool
	tidyVerbose      bool
)

func init() {
	tidyCmd.Flags().StringVar(&tidyManifestPath, "manifest-path", "", "Path to the manifest to tidy")
	tidyCmd.Flags().BoolVar(&tidyAll, "all", false, "Tidy all packages in the workspace")
	tidyCmd.Flags().BoolVarP(&tidyQuiet, "quiet", "q", false, "Do not print anything on success")
	tidyCmd.Flags().BoolVar(&tidyVerbose, "verbose", false, "Enable debug logging")
	rootCmd.AddCommand(tidyCmd)
}

var tidiedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)

var tidyCmd = &cobra.Command{
	Use:   "tidy",
	Short: "Sort the [dependencies] section of each manifest",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if tidyVerbose {
			log.SetLevel(log.DebugLevel)
		}
		workDir, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("reading working directory: %w", err)
		}
		opts := tidyOptions{
			manifestPath: tidyManifestPath,
			all:          tidyAll,
			quiet:        tidyQuiet,
			workDir:      workDir,
			out:          cmd.OutOrStdout(),
		}
		return runTidy(osfs.New("/"), nil, opts)
	},
}

type tidyOptions struct {
	manifestPath string
	all          bool
	quiet        bool
	workDir      string
	out          io.Writer
}

// runTidy sorts the dependencies table of the selected manifests and writes
// them back in place.
func runTidy(fsys billy.Filesystem, exec pkggraph.ExecFunc, opts tidyOptions) error {
	var (
		manifests pkggraph.Manifests
		err       error
	)
	if opts.all {
		manifests, err = pkggraph.GetAll(fsys, exec, opts.manifestPath, opts.workDir)
	} else {
		manifests, err = pkggraph.GetLocalOne(fsys, exec, opts.manifestPath, opts.workDir)
	}
	if err != nil {
		return err
	}

	for _, entry := range manifests {
		if err := entry.Manifest.SortTable([]string{"dependencies"}); err != nil {
			return fmt.Errorf("tidying %s: %w", entry.Package.Name, err)
		}
		if err := entry.Manifest.Write(); err != nil {
			return fmt.Errorf("tidying %s: %w", entry.Package.Name, err)
		}
		if !opts.quiet {
			fmt.Fprintf(opts.out, "%s %s\n", tidiedStyle.Render("      Tidied"), entry.Package.Name)
		}
	}
	return nil
}
