package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"datapulse/internal/app"
	"datapulse/internal/config"
	"datapulse/internal/infrastructure"
	"datapulse/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	input := flag.String("input", "", "input file path (CSV, Excel, JSON); overrides config")
	configPath := flag.String("config", "datapulse.yaml", "path to YAML config file")
	outDir := flag.String("out", "", "output directory for artifacts; overrides config")
	noAI := flag.Bool("no-ai", false, "skip the AI analysis even when an API key is configured")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if *input != "" {
		cfg.Input.Path = *input
	}
	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}
	if *noAI {
		cfg.AI.APIKey = ""
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	logger.Info("Starting datapulse pipeline",
		slog.String("input", cfg.Input.Path),
		slog.String("output_dir", cfg.Output.Dir))

	m := metrics.New(prometheus.DefaultRegisterer)
	runner := app.NewRunner(cfg, logger, app.WithMetrics(m))

	ctx := infrastructure.EnsureTraceID(context.Background())
	result, err := runner.Run(ctx, cfg.Input.Path)
	if err != nil {
		logger.Error("Pipeline failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Printf("Run %s complete\n", result.ID)
	fmt.Printf("  rows: %d -> %d -> %d\n",
		result.Report.RowsBefore, result.Report.RowsAfterCleaning, result.Report.RowsAfterTransform)
	fmt.Printf("  removed duplicates: %d, invalid rows: %d\n",
		result.Report.RemovedDuplicates, result.Report.RemovedInvalidRows)
	fmt.Printf("  filled missing: %d numeric, %d text\n",
		result.Report.FilledMissingNumeric, result.Report.FilledMissingText)
	fmt.Printf("  cleaned CSV: %s\n", cfg.CleanedCSVPath())
	if result.ChartPath != "" {
		fmt.Printf("  chart: %s\n", result.ChartPath)
	}
	if result.PDFPath != "" {
		fmt.Printf("  report: %s\n", result.PDFPath)
	}
}
