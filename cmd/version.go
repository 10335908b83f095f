package cmd

import (
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

const develVersion = "(devel)"

// buildDescription is what `deobf version` reports.
type buildDescription struct {
	Version   string
	Module    string
	GoVersion string
}

// describeBuild reads the embedded build info. Binaries built from a checkout
// carry no module version and report develVersion.
func describeBuild(info *debug.BuildInfo, ok bool) buildDescription {
	desc := buildDescription{Version: develVersion, GoVersion: runtime.Version()}
	if !ok || info == nil {
		return desc
	}

	if info.Main.Version != "" {
		desc.Version = info.Main.Version
	}

	desc.Module = info.Main.Path

	if info.GoVersion != "" {
		desc.GoVersion = info.GoVersion
	}

	return desc
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the version information",
		Long:  "Displays the deobf build version, its module path and the Go version it was built with.",
		Run: func(cmd *cobra.Command, _ []string) {
			desc := describeBuild(debug.ReadBuildInfo())

			cmd.Println("deobf version\t", desc.Version)

			if desc.Module != "" {
				cmd.Println("module\t\t", desc.Module)
			}

			cmd.Println("go version\t", desc.GoVersion)
		},
	}
}

// versionCmd represents the version command.
var versionCmd = newVersionCmd()

func init() {
	rootCmd.AddCommand(versionCmd)
}
