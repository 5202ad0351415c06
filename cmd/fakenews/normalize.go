package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/baditaflorin/go_fakenews/internal/adapters/normalizer"
)

var (
	normalizeFile string
	normalizeType string
)

func init() {
	normalizeCmd.Flags().StringVarP(&normalizeFile, "file", "f", "", "read the text from a file (- for stdin)")
	normalizeCmd.Flags().StringVar(&normalizeType, "type", "", "normalizer (default|optimized); empty uses the config")
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize [text...]",
	Short: "Print text as the classifier sees it",
	Long: `Print the normalized form of a text: lowercased, with every digit and
ASCII punctuation character removed. Whitespace is kept as is.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		text, err := readText(cmd, args, normalizeFile)
		if err != nil {
			return err
		}

		name := normalizeType
		if name == "" {
			name = a.cfg.Normalizer.Type
		}
		t, err := normalizer.ParseType(name)
		if err != nil {
			return err
		}

		n := normalizer.NewNormalizerFactory().CreateNormalizer(t)
		_, err = fmt.Fprintln(cmd.OutOrStdout(), n.Normalize(text))
		return err
	},
}
