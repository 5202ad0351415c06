package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Build information, overridable via -ldflags.
var (
	Version   = "0.1.0-dev"
	GitCommit = ""
	BuildDate = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		name := color.New(color.FgCyan, color.Bold)
		if !isTerminal(os.Stdout) {
			name.DisableColor()
		}

		fmt.Fprintf(out, "%s %s (%s)\n", name.Sprint("fakenews"), Version, runtime.Version())
		if GitCommit != "" {
			fmt.Fprintf(out, "commit: %s\n", GitCommit)
		}
		if BuildDate != "" {
			fmt.Fprintf(out, "built:  %s\n", BuildDate)
		}
		return nil
	},
}
