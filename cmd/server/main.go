package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	fakenews "github.com/baditaflorin/go_fakenews"
	"github.com/baditaflorin/go_fakenews/internal/adapters/logger"
	"github.com/baditaflorin/go_fakenews/internal/config"
	"github.com/baditaflorin/go_fakenews/internal/server"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "", "Config file (.yaml, .yml or .toml)")
	addr := flag.String("addr", "", "Listen address (overrides config, e.g. :8080)")
	artifactsDir := flag.String("artifacts", "", "Artifact directory (overrides config)")
	concurrency := flag.Int("concurrency", -1, "Maximum number of concurrent connections (0 = fasthttp default)")
	warmUp := flag.Bool("warm-up", true, "Perform system warm-up on startup")
	logFile := flag.String("log-file", "", "Log file path (empty = stderr)")
	jsonLogs := flag.Bool("json-logs", true, "Write logs as JSON")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *artifactsDir != "" {
		cfg.Artifacts.Source = "file"
		cfg.Artifacts.Dir = *artifactsDir
	}
	if *concurrency >= 0 {
		cfg.Server.Concurrency = *concurrency
	}
	cfg.Warmup.Enabled = cfg.Warmup.Enabled || *warmUp
	if *logFile != "" {
		cfg.Logging.File = *logFile
	}
	cfg.Logging.JSON = cfg.Logging.JSON || *jsonLogs

	log, err := logger.NewFileLogger(cfg.Logging.File, cfg.Logging.JSON)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Starting fake news HTTP server",
		"address", cfg.Server.Addr,
		"read_timeout", cfg.Server.ReadTimeout(),
		"write_timeout", cfg.Server.WriteTimeout(),
		"max_request_size", cfg.Server.MaxRequestSize,
		"concurrency", cfg.Server.Concurrency,
		"cpus", runtime.NumCPU(),
	)

	detector, err := fakenews.NewFromConfig(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to initialize detector", "error", err)
		os.Exit(1)
	}
	defer detector.Close()

	// The server starts even without artifacts; /ready reports the load error.
	srv := server.New(detector, log, server.ConfigFromSettings(cfg.Server))
	if err := srv.Run(ctx); err != nil {
		log.Error("Server error", "error", err)
	}
}
