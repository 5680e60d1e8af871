package main

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Set by the release build through -ldflags -X.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type buildDetails struct {
	Version   string
	Module    string
	GoVersion string
	Commit    string
	Date      string
	Modified  bool
}

// buildInfo merges the linker-set variables with what the Go toolchain
// embedded in the binary. Linker values win when present.
func buildInfo() buildDetails {
	d := buildDetails{
		Version:   version,
		Module:    "github.com/joshuapare/lozenge",
		GoVersion: runtime.Version(),
		Commit:    commit,
		Date:      date,
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return d
	}
	if bi.GoVersion != "" {
		d.GoVersion = bi.GoVersion
	}
	if bi.Main.Path != "" {
		d.Module = bi.Main.Path
	}
	if d.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		d.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if d.Commit == "none" {
				d.Commit = s.Value
			}
		case "vcs.time":
			if d.Date == "unknown" {
				d.Date = s.Value
			}
		case "vcs.modified":
			d.Modified = s.Value == "true"
		}
	}
	return d
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		d := buildInfo()
		fmt.Printf("lozengectl %s\n", d.Version)
		fmt.Printf("  module: %s\n", d.Module)
		fmt.Printf("  go: %s\n", d.GoVersion)
		if d.Modified {
			fmt.Printf("  commit: %s (modified)\n", d.Commit)
		} else {
			fmt.Printf("  commit: %s\n", d.Commit)
		}
		fmt.Printf("  built: %s\n", d.Date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
