package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "datapulse/internal/errors"
	"datapulse/internal/app"
)

// defaultRowLimit caps the table preview when no limit parameter is given.
const defaultRowLimit = 100

// ReportHandler serves the immutable snapshot of the most recent pipeline
// run. It holds the result by value semantics: handlers only read.
type ReportHandler struct {
	result *app.RunResult
	logger *slog.Logger
}

// NewReportHandler creates a report handler for a finished run. A nil
// result is valid; every data route then answers 404.
func NewReportHandler(result *app.RunResult, logger *slog.Logger) *ReportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportHandler{
		result: result,
		logger: logger.With(slog.String("component", "report_handler")),
	}
}

// Routes returns the report routes.
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/report", h.GetReport)
	r.Get("/aggregates", h.GetAggregates)
	r.Get("/table", h.GetTable)
	r.Get("/events", h.GetEvents)

	return r
}

// GetReport serves the processing summary of the last run.
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	if h.result == nil {
		_ = render.Render(w, r, apierrors.NotFound("pipeline run"))
		return
	}
	render.JSON(w, r, map[string]any{
		"id":          h.result.ID,
		"input_path":  h.result.InputPath,
		"started_at":  h.result.StartedAt,
		"finished_at": h.result.FinishedAt,
		"report":      h.result.Report,
		"analysis":    h.result.Analysis,
		"chart_path":  h.result.ChartPath,
		"pdf_path":    h.result.PDFPath,
	})
}

// GetAggregates serves the aggregate table of the last run.
func (h *ReportHandler) GetAggregates(w http.ResponseWriter, r *http.Request) {
	if h.result == nil || h.result.Aggregates == nil {
		_ = render.Render(w, r, apierrors.NotFound("aggregates"))
		return
	}
	render.JSON(w, r, h.result.Aggregates)
}

// GetTable serves a preview of the cleaned, transformed table. The limit
// query parameter bounds the row count.
func (h *ReportHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	if h.result == nil || h.result.Transformed == nil {
		_ = render.Render(w, r, apierrors.NotFound("table"))
		return
	}

	limit := defaultRowLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			_ = render.Render(w, r, &apierrors.HTTPError{
				StatusCode: http.StatusBadRequest,
				ErrorCode:  apierrors.ErrTypeValidation,
				Message:    "limit must be a positive integer",
			})
			return
		}
		limit = parsed
	}

	t := h.result.Transformed
	n := t.RowCount()
	if n > limit {
		n = limit
	}
	rows := make([][]string, n)
	for i := 0; i < n; i++ {
		row := t.Row(i)
		rendered := make([]string, len(row))
		for j, cell := range row {
			rendered[j] = cell.String()
		}
		rows[i] = rendered
	}

	render.JSON(w, r, map[string]any{
		"columns":    t.Names(),
		"rows":       rows,
		"total_rows": t.RowCount(),
	})
}

// GetEvents serves the stage-event trace of the last run.
func (h *ReportHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	if h.result == nil {
		_ = render.Render(w, r, apierrors.NotFound("events"))
		return
	}
	render.JSON(w, r, h.result.Events)
}
