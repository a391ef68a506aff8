package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"tabscan/internal/services"
)

// HubStats is the WebSocket hub surface the metrics endpoint renders.
type HubStats interface {
	GetHubMetrics() map[string]interface{}
}

// MetricsHandler serves the JSON application metrics endpoint. The
// Prometheus scrape endpoint is mounted separately by the server.
type MetricsHandler struct {
	health *services.HealthService
	hub    HubStats
	logger *slog.Logger
}

// NewMetricsHandler creates a new metrics handler. The hub is
// optional; without one the response omits WebSocket stats.
func NewMetricsHandler(health *services.HealthService, hub HubStats, logger *slog.Logger) *MetricsHandler {
	return &MetricsHandler{
		health: health,
		hub:    hub,
		logger: logger.With(slog.String("handler", "metrics")),
	}
}

// Routes sets up the metrics routes
func (h *MetricsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetMetrics)
	return r
}

// GetMetrics handles GET /api/metrics with registry, scan and hub
// statistics.
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.health.SystemStats(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to collect system stats",
			slog.String("error", err.Error()))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		})
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"system": stats,
	}
	if h.hub != nil {
		response["websocket"] = h.hub.GetHubMetrics()
	}
	render.JSON(w, r, response)
}
