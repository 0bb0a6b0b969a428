package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/spf13/cast"

	apierrors "retailpulse/internal/errors"
	"retailpulse/internal/report"
	"retailpulse/internal/services"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 500
)

// ReportService is what the report handler needs from the service layer
type ReportService interface {
	Latest() (*services.Snapshot, error)
	Refresh(ctx context.Context) (*services.Snapshot, error)
	Lookup(path string) (any, error)
	Runs(ctx context.Context, limit int) ([]report.RunInfo, error)
}

// ReportHandler serves the latest report
type ReportHandler struct {
	service ReportService
	logger  *slog.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(service ReportService, logger *slog.Logger) *ReportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "report")),
	}
}

// Routes returns the report routes
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.GetReport)
	r.Get("/lookup", h.Lookup)
	r.Get("/runs", h.ListRuns)
	r.Post("/refresh", h.Refresh)
	return r
}

// GetReport handles GET /api/report. The body is the report itself, in the
// same shape the file sink writes.
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Latest()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("X-Run-ID", snapshot.RunID)
	render.JSON(w, r, snapshot.Report)
}

// Lookup handles GET /api/report/lookup?path=...
func (h *ReportHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		apierrors.WriteError(w, r, apierrors.NewWithDetails(http.StatusBadRequest,
			"MISSING_PARAMETER", "Required parameter is missing", "path"))
		return
	}

	value, err := h.service.Lookup(path)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{
		"path":  path,
		"value": value,
	})
}

// ListRuns handles GET /api/report/runs?limit=N
func (h *ReportHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := cast.ToIntE(raw)
		if err != nil || n <= 0 {
			apierrors.WriteError(w, r, apierrors.NewWithDetails(http.StatusBadRequest,
				"INVALID_PARAMETER", "limit must be a positive integer", raw))
			return
		}
		limit = min(n, maxRunsLimit)
	}

	runs, err := h.service.Runs(r.Context(), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{
		"runs":  runs,
		"count": len(runs),
	})
}

// Refresh handles POST /api/report/refresh. Concurrent refreshes share one run.
func (h *ReportHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Refresh(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Report refresh failed", slog.String("error", err.Error()))
		// Unreadable datasets keep their 502; any other failure is the run's own.
		if apierrors.TypeOf(err) == apierrors.ErrTypeDatasetLoad {
			h.writeError(w, r, err)
			return
		}
		apierrors.WriteError(w, r, apierrors.ErrRunFailed(err))
		return
	}
	render.JSON(w, r, map[string]any{
		"run_id":       snapshot.RunID,
		"profile":      snapshot.Profile,
		"started_at":   snapshot.StartedAt,
		"duration_ms":  snapshot.DurationMS,
		"refreshed_at": snapshot.RefreshedAt,
	})
}

func (h *ReportHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrNoReport):
		apierrors.WriteError(w, r, apierrors.ErrReportNotReady)
	case errors.Is(err, services.ErrArchiveDisabled):
		apierrors.WriteError(w, r, apierrors.NotFoundError("report archive"))
	default:
		apierrors.WriteError(w, r, apierrors.FromError(err))
	}
}
