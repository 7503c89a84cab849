// Package main is the entry point for the statuswall CLI.
//
// Usage:
//
//	statuswall serve                       # HTTP API with background refresh
//	statuswall check -f services.yaml      # one cycle, printed as a board
//	statuswall validate -f services.yaml   # catalog checks only
//	statuswall version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/statuswall/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "statuswall",
	Short: "Aggregate third-party status pages into a single board",
	Long: `statuswall resolves the current status of every third-party service
listed in a catalog file. Each service is read from its status API, then
from the last known good status, then from its HTML status page, and
finally falls back to its configured status.

Settings come from STATUSWALL_* environment variables (a .env file in the
working directory is loaded first when present).`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "statuswall %s\n", version.Version)
		fmt.Fprintf(out, "  commit: %s\n", version.Commit)
		fmt.Fprintf(out, "  built:  %s\n", version.BuildDate)
		fmt.Fprintf(out, "  go:     %s\n", version.GoVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
