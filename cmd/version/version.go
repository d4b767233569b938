package version

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X".
var (
	CoreVersion   = "unknown"
	GolangVersion = "unknown"
	BuildTime     = "unknown"
)

// Versions holds version information for the binary.
type Versions struct {
	Version       string `json:"version"`
	GolangVersion string `json:"golang_version"`
	BuildTime     string `json:"build_time"`
}

// Current returns the version information of the running binary.
func Current() Versions {
	goVersion := GolangVersion
	if goVersion == "unknown" {
		goVersion = runtime.Version()
	}
	return Versions{
		Version:       CoreVersion,
		GolangVersion: goVersion,
		BuildTime:     BuildTime,
	}
}

// NewVersionCmd creates a new cobra.Command for the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "version",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Print the version number of the application",
		Run: func(cmd *cobra.Command, args []string) {
			printVersionInfo(cmd.OutOrStdout(), Current())
		},
	}
}

// printVersionInfo prints the version information for the core application.
func printVersionInfo(w io.Writer, v Versions) {
	fmt.Fprintf(w, "Core Version: v%s\n", v.Version)
	fmt.Fprintf(w, "Go Version: %s\n", v.GolangVersion)
	fmt.Fprintf(w, "Build Time: %s\n", v.BuildTime)
}
