package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/baditaflorin/go_fakenews/internal/render"
	"github.com/baditaflorin/go_fakenews/internal/samples"
)

var samplesJSON bool

func init() {
	samplesCmd.Flags().BoolVar(&samplesJSON, "json", false, "print the samples as JSON")
}

var samplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "Print sample articles to try",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if samplesJSON {
			return render.JSON(out, samples.All())
		}
		title := cases.Title(language.English)
		for _, s := range samples.All() {
			fmt.Fprintf(out, "%s News:\n%s\n\n", title.String(s.Name), s.Text)
		}
		return nil
	},
}
