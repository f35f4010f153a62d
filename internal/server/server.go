// Package server exposes the valuation service over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/carllingstrom/AI-Delning-sub001/internal/metrics"
	"github.com/carllingstrom/AI-Delning-sub001/internal/project"
	"github.com/carllingstrom/AI-Delning-sub001/internal/scenario"
	"github.com/carllingstrom/AI-Delning-sub001/internal/service"
	"github.com/carllingstrom/AI-Delning-sub001/pkg/output"
	"github.com/carllingstrom/AI-Delning-sub001/pkg/roi"
	"github.com/carllingstrom/AI-Delning-sub001/pkg/scaling"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Options wires the handler's collaborators.
type Options struct {
	Service *service.Service
	Config  *Config
	Metrics *metrics.Metrics
	Logger  *zap.Logger
	Version string
	// Health reports readiness, typically a database ping. Nil means always ready.
	Health func(ctx context.Context) error
}

type handler struct {
	svc     *service.Service
	cfg     *Config
	metrics *metrics.Metrics
	logger  *zap.Logger
	version string
	health  func(ctx context.Context) error
}

// NewHandler constructs the router serving the valuation API.
// If opts.Logger is nil, it will use a no-op logger to prevent panics.
func NewHandler(opts Options) http.Handler {
	h := &handler{
		svc:     opts.Service,
		cfg:     opts.Config,
		metrics: opts.Metrics,
		logger:  opts.Logger,
		version: strings.TrimSpace(opts.Version),
		health:  opts.Health,
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	if h.cfg == nil {
		h.cfg = DefaultConfig()
	}
	if h.version == "" {
		h.version = "dev"
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(h.requestLogger)
	r.Use(h.corsHandler())

	r.Get("/healthz", h.handleHealth)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(h.rateLimiter())

		r.Get("/version", h.handleVersion)
		r.Post("/valuation/calculate", h.handleCalculate)

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.handleListProjects)
			r.Post("/", h.handleCreateProject)
			r.Route("/{projectId}", func(r chi.Router) {
				r.Get("/", h.handleGetProject)
				r.Get("/roi", h.handleProjectROI)
				r.Get("/scenario", h.handleScenarioExport)
				r.Post("/scaled-impact", h.handleScaledImpact)
				r.Post("/scaled-impact/save", h.handleSaveScaledImpact)
			})
		})
	})

	return r
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health(r.Context()); err != nil {
			h.respondErrorWithOp(w, http.StatusServiceUnavailable, fmt.Sprintf("not ready: %v", err), "server.handleHealth")
			return
		}
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

type projectResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Budget      string          `json:"budget,omitempty"`
	CostData    json.RawMessage `json:"costData"`
	EffectsData json.RawMessage `json:"effectsData"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func newProjectResponse(p *project.Project) projectResponse {
	return projectResponse{
		ID:          p.ID,
		Title:       p.Title,
		Budget:      p.Budget,
		CostData:    p.RawCostData(),
		EffectsData: p.RawEffectsData(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (h *handler) handleListProjects(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleListProjects"
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	projects, err := h.svc.ListProjects(r.Context(), limit, offset)
	if err != nil {
		h.respondServiceError(w, err, op)
		return
	}

	out := make([]projectResponse, 0, len(projects))
	for i := range projects {
		out = append(out, newProjectResponse(&projects[i]))
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *handler) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCreateProject"
	var in service.NewProject
	if !h.decodeJSON(w, r, &in, op) {
		return
	}

	p, err := h.svc.CreateProject(r.Context(), in)
	if err != nil {
		h.respondServiceError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusCreated, newProjectResponse(p))
}

func (h *handler) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetProject(r.Context(), chi.URLParam(r, "projectId"))
	if err != nil {
		h.respondServiceError(w, err, "server.handleGetProject")
		return
	}
	h.writeJSON(w, http.StatusOK, newProjectResponse(p))
}

func (h *handler) handleProjectROI(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.ComputeROI(r.Context(), chi.URLParam(r, "projectId"))
	if err != nil {
		h.respondServiceError(w, err, "server.handleProjectROI")
		return
	}
	h.writeJSON(w, http.StatusOK, m)
}

// handleScenarioExport renders a stored project as a scenario file.
func (h *handler) handleScenarioExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleScenarioExport"
	p, err := h.svc.GetProject(r.Context(), chi.URLParam(r, "projectId"))
	if err != nil {
		h.respondServiceError(w, err, op)
		return
	}

	f, err := scenario.FromProject(p)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusUnprocessableEntity, err.Error(), op)
		return
	}
	data, err := scenario.Marshal(f)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}

	w.Header().Set("Content-Type", "application/yaml")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.yaml"`, p.ID))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Error("failed to write scenario export", zap.String("op", op), zap.Error(err))
	}
}

type scaledImpactRequest struct {
	Scaling *scaling.Input `json:"scaling"`
}

func (h *handler) handleScaledImpact(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleScaledImpact"
	var req scaledImpactRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}
	if req.Scaling == nil {
		h.respondValidationError(w, "scaling configuration is required", map[string]string{"scaling": "is required"}, op)
		return
	}

	result, err := h.svc.ComputeScaledImpact(r.Context(), chi.URLParam(r, "projectId"), *req.Scaling)
	if err != nil {
		h.respondServiceError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

type saveScaledImpactRequest struct {
	ScalingInput *scaling.Input  `json:"scalingInput"`
	Result       json.RawMessage `json:"result"`
}

type saveScaledImpactResponse struct {
	Success bool      `json:"success"`
	SavedAt time.Time `json:"savedAt"`
}

func (h *handler) handleSaveScaledImpact(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSaveScaledImpact"
	var req saveScaledImpactRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}
	if req.ScalingInput == nil {
		h.respondValidationError(w, "scalingInput is required", map[string]string{"scalingInput": "is required"}, op)
		return
	}

	saved, err := h.svc.SaveScaledImpact(r.Context(), chi.URLParam(r, "projectId"), *req.ScalingInput, req.Result)
	if err != nil {
		h.respondServiceError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, saveScaledImpactResponse{Success: true, SavedAt: saved.SavedAt})
}

type calculateResponse struct {
	service.CalculationResult
	CSV      string `json:"csv"`
	Duration string `json:"duration"`
}

func (h *handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCalculate"
	start := time.Now()

	var req service.CalculationRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}

	result, err := h.svc.CalculateStateless(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err, op)
		return
	}

	report := output.Report{ROI: result.ROI, Scaled: result.Scaled}
	h.writeJSON(w, http.StatusOK, calculateResponse{
		CalculationResult: result,
		CSV:               output.CsvString(report),
		Duration:          time.Since(start).String(),
	})
}

// decodeJSON reads a size-limited JSON body into v. It writes the error
// response and returns false on failure.
func (h *handler) decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.UploadSizeBytes())
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.cfg.UploadSizeBytes()), op)
			return false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return n, nil
}

// respondServiceError maps service errors onto status codes.
func (h *handler) respondServiceError(w http.ResponseWriter, err error, op string) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		h.respondValidationError(w, ve.Message, ve.Fields, op)
	case errors.Is(err, service.ErrInvalidInput):
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
	case errors.Is(err, project.ErrNotFound):
		h.respondErrorWithOp(w, http.StatusNotFound, "project not found", op)
	case errors.Is(err, roi.ErrAggregation), errors.Is(err, roi.ErrInvalidInvestment):
		h.respondErrorWithOp(w, http.StatusUnprocessableEntity, err.Error(), op)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.respondErrorWithOp(w, http.StatusServiceUnavailable, "request cancelled", op)
	default:
		h.respondErrorWithOp(w, http.StatusInternalServerError, "internal error", op)
		h.logger.Error("unhandled service error", zap.String("op", op), zap.Error(err))
	}
}

func (h *handler) respondValidationError(w http.ResponseWriter, msg string, fields map[string]string, op string) {
	h.logger.Info("request rejected",
		zap.String("op", op),
		zap.String("error", msg),
		zap.Any("fields", fields),
	)
	h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{
		"error":  msg,
		"fields": fields,
	})
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	level := h.logger.Warn
	if status >= http.StatusInternalServerError {
		level = h.logger.Error
	}
	level("valuation request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

// Run serves handler on cfg.Address until ctx is cancelled, then shuts down
// gracefully.
func Run(ctx context.Context, cfg *Config, handler http.Handler, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("op", "server.Run"),
			zap.String("address", cfg.Address),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down server", zap.String("op", "server.Run"))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		return nil
	}
}
