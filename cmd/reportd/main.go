package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"datapulse/internal/app"
	"datapulse/internal/config"
	"datapulse/internal/infrastructure"
	"datapulse/internal/metrics"
	transport "datapulse/internal/transport/http"
)

// reportd runs the pipeline once on startup and then serves the resulting
// snapshot read-only until stopped.
func main() {
	input := flag.String("input", "", "input file path (CSV, Excel, JSON); overrides config")
	configPath := flag.String("config", "datapulse.yaml", "path to YAML config file")
	port := flag.Int("port", 0, "listen port; overrides config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if *input != "" {
		cfg.Input.Path = *input
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	m := metrics.New(prometheus.DefaultRegisterer)
	runner := app.NewRunner(cfg, logger, app.WithMetrics(m))

	ctx := infrastructure.EnsureTraceID(context.Background())
	result, err := runner.Run(ctx, cfg.Input.Path)
	if err != nil {
		logger.Error("Pipeline failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	server := transport.NewServer(cfg.Server, result, logger)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		logger.Info("Shutting down report server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Shutdown error", slog.String("error", err.Error()))
		}
	}()

	if err := server.ListenAndServe(); err != nil {
		logger.Error("Server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
