package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var rootCmd = &cobra.Command{
	Use:   "fakenews",
	Short: "Fake news article classifier",
	Long: `fakenews classifies news articles as FAKE or REAL with a pre-trained
TF-IDF vectorizer and linear classifier, from the command line or over HTTP.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.Version = Version

	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(samplesCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("config", "", "config file (.yaml, .yml or .toml)")
	rootCmd.PersistentFlags().String("artifacts", "", "artifact directory (overrides config)")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("log-file", "", "write logs to this file")
	rootCmd.PersistentFlags().Bool("verbose", false, "write logs to stderr")
}

// main executes the root command, exiting with status 1 on error.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
