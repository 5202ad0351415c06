package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	fakenews "github.com/baditaflorin/go_fakenews"
	"github.com/baditaflorin/go_fakenews/internal/adapters/logger"
	"github.com/baditaflorin/go_fakenews/internal/config"
	"github.com/baditaflorin/go_fakenews/internal/ports"
	"github.com/baditaflorin/go_fakenews/internal/render"
)

var errNoInput = errors.New("no article given: pass text, --file, or pipe it on stdin")

// app holds what every command needs: configuration, logger and output mode.
type app struct {
	cfg    *config.Config
	logger ports.Logger
	color  bool
}

func newApp(cmd *cobra.Command) (*app, error) {
	flags := cmd.Root().PersistentFlags()

	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if dir, _ := flags.GetString("artifacts"); dir != "" {
		cfg.Artifacts.Source = "file"
		cfg.Artifacts.Dir = dir
	}

	colorFlag, err := flags.GetString("color")
	if err != nil {
		return nil, err
	}
	var useColor bool
	switch colorFlag {
	case "on":
		useColor = true
	case "off":
		useColor = false
	case "auto":
		useColor = isTerminal(os.Stdout)
	default:
		return nil, fmt.Errorf("unsupported color mode %q (must be auto, on or off)", colorFlag)
	}

	logFile, _ := flags.GetString("log-file")
	if logFile == "" {
		logFile = cfg.Logging.File
	}
	verbose, _ := flags.GetBool("verbose")

	var log ports.Logger
	if logFile != "" || verbose {
		log, err = logger.NewFileLogger(logFile, cfg.Logging.JSON)
		if err != nil {
			return nil, err
		}
	} else {
		log = logger.NewNopLogger()
	}

	return &app{cfg: cfg, logger: log, color: useColor}, nil
}

func (a *app) detector(ctx context.Context) (*fakenews.Detector, error) {
	return fakenews.NewFromConfig(ctx, a.cfg, a.logger)
}

func (a *app) renderOptions() render.Options {
	return render.Options{Color: a.color}
}

func (a *app) close() {
	_ = a.logger.Close()
}

// readText returns the article from the arguments, from file ("-" means
// stdin), or from stdin when it is not a terminal.
func readText(cmd *cobra.Command, args []string, file string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if file != "" {
		r, closeFn, err := openInput(cmd, file)
		if err != nil {
			return "", err
		}
		defer closeFn()
		data, err := io.ReadAll(r)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	if !isTerminal(os.Stdin) {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return "", errNoInput
}

// openInput opens path, or stdin for "-".
func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}
