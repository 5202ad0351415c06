package main

import (
	"github.com/spf13/cobra"

	"github.com/baditaflorin/go_fakenews/internal/server"
)

var (
	serveAddr   string
	serveWarmUp bool
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config, e.g. :8080)")
	serveCmd.Flags().BoolVar(&serveWarmUp, "warm-up", false, "warm up before serving (overrides config)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the classifier over HTTP",
	Long: `Serve the classifier over HTTP:

  GET  /health          liveness
  GET  /ready           200 once the artifacts are loaded, 503 otherwise
  POST /classify        {"text": "..."}
  POST /classify/batch  {"articles": [{"id": "...", "text": "..."}]}
  GET  /samples         sample articles`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		if serveAddr != "" {
			a.cfg.Server.Addr = serveAddr
		}
		if serveWarmUp {
			a.cfg.Warmup.Enabled = true
		}

		d, err := a.detector(cmd.Context())
		if err != nil {
			return err
		}
		defer d.Close()

		return server.New(d, a.logger, server.ConfigFromSettings(a.cfg.Server)).Run(cmd.Context())
	},
}
