package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"datapulse/internal/ai"
	"datapulse/internal/config"
	"datapulse/internal/exporter"
	"datapulse/internal/loader"
	"datapulse/internal/metrics"
	"datapulse/internal/pipeline"
	"datapulse/internal/table"
)

// sampleRows is how many leading rows feed the summarizer prompt.
const sampleRows = 5

// Summarizer is the collaborator contract the runner depends on; *ai.Client
// satisfies it and tests substitute fakes.
type Summarizer interface {
	Enabled() bool
	Summarize(ctx context.Context, req ai.SummaryRequest) (string, error)
}

// RunResult is the immutable outcome of one pipeline invocation. Presentation
// consumers read it; nothing mutates it after Run returns.
type RunResult struct {
	ID          string                   `json:"id"`
	StartedAt   time.Time                `json:"started_at"`
	FinishedAt  time.Time                `json:"finished_at"`
	InputPath   string                   `json:"input_path"`
	Cleaned     *table.Table             `json:"-"`
	Transformed *table.Table             `json:"-"`
	Aggregates  *pipeline.AggregateTable `json:"aggregates"`
	Report      pipeline.Report          `json:"report"`
	Analysis    string                   `json:"analysis"`
	ChartPath   string                   `json:"chart_path,omitempty"`
	PDFPath     string                   `json:"pdf_path,omitempty"`
	Events      []pipeline.Event         `json:"events,omitempty"`
}

// Runner wires the pipeline stages to the presentation adapters.
type Runner struct {
	cfg        *config.Config
	logger     *slog.Logger
	metrics    *metrics.Metrics
	summarizer Summarizer
	csv        *exporter.CSVWriter
	chart      *exporter.ChartRenderer
	pdf        *exporter.PDFExporter
}

// Option customizes a Runner.
type Option func(*Runner)

// WithSummarizer replaces the summarizer collaborator.
func WithSummarizer(s Summarizer) Option {
	return func(r *Runner) { r.summarizer = s }
}

// WithMetrics attaches pipeline metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// NewRunner creates a runner from configuration.
func NewRunner(cfg *config.Config, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{
		cfg:        cfg,
		logger:     logger,
		summarizer: ai.NewClient(cfg.AI, logger),
		csv:        exporter.NewCSVWriter(logger),
		chart:      exporter.NewChartRenderer(logger, cfg.Output.TopN),
		pdf:        exporter.NewPDFExporter(logger),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the full pipeline on inputPath: load, clean, export the
// cleaned CSV, transform, then fan the presentation adapters (chart, AI
// analysis, PDF) out in parallel. Only loading and cleaning can fail the
// run; adapter failures are logged, recorded, and survived — the cleaned and
// aggregated data is complete whether or not any adapter delivered.
func (r *Runner) Run(ctx context.Context, inputPath string) (*RunResult, error) {
	result := &RunResult{
		ID:        uuid.New().String(),
		StartedAt: time.Now(),
		InputPath: inputPath,
	}
	logger := r.logger.With(slog.String("run_id", result.ID))
	logger.Info("Starting full pipeline", slog.String("input_path", inputPath))

	collector := pipeline.NewCollectObserver()
	observer := pipeline.MultiObserver{collector, pipeline.NewLogObserver(logger)}

	loadStart := time.Now()
	raw, err := loader.Load(inputPath)
	if err != nil {
		r.countRun("failed")
		return nil, err
	}
	r.observeStage("load", loadStart)

	cleanStart := time.Now()
	cleaner := pipeline.NewCleaner(logger, observer)
	cleaned, cleanFrag, err := cleaner.Clean(ctx, raw)
	if err != nil {
		r.countRun("failed")
		return nil, err
	}
	r.observeStage("clean", cleanStart)

	if err := r.cfg.EnsureOutputDir(); err != nil {
		r.countRun("failed")
		return nil, err
	}
	if err := r.csv.WriteTable(r.cfg.CleanedCSVPath(), cleaned, exporter.WriteOptions{BOMPrefix: true}); err != nil {
		// The cleaned table is intact in memory; keep going.
		logger.Error("Failed to write cleaned CSV", slog.String("error", err.Error()))
	} else {
		logger.Info("Cleaned data saved", slog.String("path", r.cfg.CleanedCSVPath()))
	}

	transformStart := time.Now()
	transformer := pipeline.NewTransformer(logger, observer)
	transformed, aggregates, transformFrag, err := transformer.Transform(ctx, cleaned)
	if err != nil {
		r.countRun("failed")
		return nil, err
	}
	r.observeStage("transform", transformStart)

	result.Cleaned = cleaned
	result.Transformed = transformed
	result.Aggregates = aggregates
	result.Report = pipeline.MergeReports(cleanFrag, transformFrag)
	r.recordRows(result.Report)

	r.present(ctx, logger, result)

	result.Events = collector.Events()
	result.FinishedAt = time.Now()
	r.countRun("ok")
	logger.Info("Pipeline finished",
		slog.Int("rows_after_transform", result.Report.RowsAfterTransform),
		slog.String("duration", result.FinishedAt.Sub(result.StartedAt).String()))
	return result, nil
}

// present runs the chart, AI analysis, and PDF adapters. Chart and analysis
// are independent and run concurrently; the PDF embeds both so it waits for
// them. No adapter failure propagates.
func (r *Runner) present(ctx context.Context, logger *slog.Logger, result *RunResult) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		start := time.Now()
		path, err := r.chart.RenderBarChart(result.Aggregates, r.cfg.ChartPath())
		r.observeStage("chart", start)
		if err != nil {
			logger.Error("Chart rendering failed", slog.String("error", err.Error()))
			return nil
		}
		result.ChartPath = path
		return nil
	})

	g.Go(func() error {
		start := time.Now()
		result.Analysis = r.analyze(gctx, logger, result)
		r.observeStage("summarize", start)
		return nil
	})

	_ = g.Wait()

	start := time.Now()
	if err := r.pdf.Export(result.Report, result.Aggregates, result.Analysis, result.ChartPath, r.cfg.PDFPath()); err != nil {
		logger.Error("PDF export failed", slog.String("error", err.Error()))
	} else {
		result.PDFPath = r.cfg.PDFPath()
	}
	r.observeStage("pdf", start)
}

// analyze calls the summarizer and converts any failure into the
// user-facing placeholder text.
func (r *Runner) analyze(ctx context.Context, logger *slog.Logger, result *RunResult) string {
	if !r.summarizer.Enabled() {
		logger.Warn("Summarizer disabled, no API key configured")
		return "AI analysis unavailable: summarizer not configured. Set DATAPULSE_AI_API_KEY to enable it."
	}

	req := ai.NewSummaryRequest(result.Transformed, result.Aggregates, sampleRows)
	text, err := r.summarizer.Summarize(ctx, req)
	if err != nil {
		kind := ai.ClassifyFailure(err)
		logger.Error("AI analysis failed",
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()))
		if r.metrics != nil {
			r.metrics.SummarizerFailures.WithLabelValues(string(kind)).Inc()
		}
		return ai.Placeholder(kind, err)
	}
	return text
}

func (r *Runner) countRun(status string) {
	if r.metrics != nil {
		r.metrics.RunsTotal.WithLabelValues(status).Inc()
	}
}

func (r *Runner) observeStage(stage string, start time.Time) {
	if r.metrics != nil {
		r.metrics.ObserveStage(stage, start)
	}
}

func (r *Runner) recordRows(report pipeline.Report) {
	if r.metrics == nil {
		return
	}
	r.metrics.RowsProcessed.WithLabelValues("before").Set(float64(report.RowsBefore))
	r.metrics.RowsProcessed.WithLabelValues("after_cleaning").Set(float64(report.RowsAfterCleaning))
	r.metrics.RowsProcessed.WithLabelValues("after_transform").Set(float64(report.RowsAfterTransform))
}
