package main

import (
	"io"

	"github.com/spf13/cobra"

	fakenews "github.com/baditaflorin/go_fakenews"
	"github.com/baditaflorin/go_fakenews/internal/adapters/stream"
	"github.com/baditaflorin/go_fakenews/internal/batch"
	"github.com/baditaflorin/go_fakenews/internal/render"
)

var (
	batchFile        string
	batchFormat      string
	batchConcurrency int
	batchJSON        bool
	batchStream      bool
)

// streamIDWidth is the id column width when rows are printed as they arrive.
const streamIDWidth = 12

func init() {
	batchCmd.Flags().StringVarP(&batchFile, "file", "f", "-", "input file, one article per line (- for stdin)")
	batchCmd.Flags().StringVar(&batchFormat, "format", "auto", "input format (auto|jsonl|lines)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "classifications in flight (0 = config or GOMAXPROCS)")
	batchCmd.Flags().BoolVar(&batchJSON, "json", false, "print one JSON object per article")
	batchCmd.Flags().BoolVar(&batchStream, "stream", false, "print results as they are classified instead of reading all input first")
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Classify many articles, one per line",
	Long: `Classify many articles. Each input line is either a JSON object
{"id": "...", "text": "..."} or the plain text of one article. Blank lines
are skipped; articles without an id are named line-N.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := stream.ParseFormat(batchFormat)
		if err != nil {
			return err
		}

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		if batchConcurrency > 0 {
			a.cfg.Batch.Concurrency = batchConcurrency
		}

		in, closeFn, err := openInput(cmd, batchFile)
		if err != nil {
			return err
		}
		defer closeFn()

		d, err := a.detector(cmd.Context())
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.LoadErr(); err != nil {
			_ = render.Failure(cmd.ErrOrStderr(), "The model is not available right now.", a.renderOptions())
			return err
		}

		out := cmd.OutOrStdout()
		if batchStream {
			return runStream(cmd, d, in, format, a.renderOptions())
		}

		articles, err := stream.NewReader(a.logger, stream.ReaderConfig{Format: format}).ReadArticles(cmd.Context(), in)
		if err != nil {
			return err
		}

		items, err := d.ClassifyBatch(cmd.Context(), articles)
		if err != nil {
			return err
		}

		if !batchJSON {
			return render.BatchTable(out, items, a.renderOptions())
		}
		for _, item := range items {
			if err := render.JSONLine(out, render.NewItemDTO(item)); err != nil {
				return err
			}
		}
		return nil
	},
}

func runStream(cmd *cobra.Command, d *fakenews.Detector, in io.Reader, format stream.Format, opts render.Options) error {
	out := cmd.OutOrStdout()
	emit := func(item batch.Item) error {
		if batchJSON {
			return render.JSONLine(out, render.NewItemDTO(item))
		}
		return render.BatchRow(out, item, streamIDWidth, opts)
	}

	summary, err := d.ClassifyStream(cmd.Context(), in, format, emit)
	if err != nil {
		return err
	}
	if !batchJSON {
		return render.BatchSummary(out, summary)
	}
	return nil
}
