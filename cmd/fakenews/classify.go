package main

import (
	"fmt"

	"github.com/spf13/cobra"

	fakenews "github.com/baditaflorin/go_fakenews"
	"github.com/baditaflorin/go_fakenews/internal/core/inference"
	"github.com/baditaflorin/go_fakenews/internal/render"
)

var (
	classifyFile    string
	classifyJSON    bool
	classifyExplain bool
)

func init() {
	classifyCmd.Flags().StringVarP(&classifyFile, "file", "f", "", "read the article from a file (- for stdin)")
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "print the result as JSON")
	classifyCmd.Flags().BoolVar(&classifyExplain, "explain", false, "also show the normalized text and feature count")
}

// explainedResult is the JSON output of classify --explain.
type explainedResult struct {
	render.ResultDTO
	Normalized string `json:"normalized"`
	Features   int    `json:"features"`
	Dimensions int    `json:"dimensions"`
}

var classifyCmd = &cobra.Command{
	Use:   "classify [text...]",
	Short: "Classify one news article as FAKE or REAL",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		text, err := readText(cmd, args, classifyFile)
		if err != nil {
			return err
		}

		d, err := a.detector(cmd.Context())
		if err != nil {
			return err
		}
		defer d.Close()

		var exp inference.Explanation
		var outcome fakenews.Outcome
		if classifyExplain {
			exp, err = d.Explain(text)
			outcome = fakenews.OutcomeOf(exp.Result, err)
		} else {
			outcome = d.Evaluate(cmd.Context(), text)
		}

		if !outcome.OK() {
			_ = render.Failure(cmd.ErrOrStderr(), outcome.Message(), a.renderOptions())
			return outcome.Err
		}

		out := cmd.OutOrStdout()
		if classifyJSON {
			dto := render.NewResultDTO("", outcome.Result)
			if !classifyExplain {
				return render.JSON(out, dto)
			}
			return render.JSON(out, explainedResult{
				ResultDTO:  dto,
				Normalized: exp.Normalized,
				Features:   exp.Features.NNZ(),
				Dimensions: exp.Features.Dim,
			})
		}

		if err := render.Text(out, text, outcome.Result, a.renderOptions()); err != nil {
			return err
		}
		if classifyExplain {
			fmt.Fprintf(out, "Normalized: %s\n", render.Preview(exp.Normalized, 0))
			fmt.Fprintf(out, "Features:   %d of %d\n", exp.Features.NNZ(), exp.Features.Dim)
		}
		return nil
	},
}
