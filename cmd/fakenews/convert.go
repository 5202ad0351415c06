package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/baditaflorin/go_fakenews/internal/adapters/artifact"
)

var convertCmd = &cobra.Command{
	Use:   "convert <in> <out>",
	Short: "Validate an artifact and re-encode it",
	Long: `Validate a vectorizer or classifier blob and write it in the encoding
implied by the output name: .json for JSON, .mp or .msgpack for MessagePack,
with a trailing .zst for zstd compression. Use it to turn JSON exported from
a training environment into the artifacts the classifier loads.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := artifact.Convert(args[0], args[1])
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s)\n", args[1], format)
		return err
	},
}
