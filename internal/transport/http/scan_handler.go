package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	apierrors "tabscan/internal/errors"
	"tabscan/internal/middleware"
	"tabscan/internal/services"
	api "tabscan/pkg/contracts/api/v1"
	"tabscan/pkg/contracts/domain"
)

// ScanHandler handles nullity scan HTTP requests. Scans run
// asynchronously, so starting one answers 202 and clients follow the
// scan id or the WebSocket feed.
type ScanHandler struct {
	service      ScanServiceInterface
	validator    StructValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewScanHandler creates a new scan handler.
func NewScanHandler(service ScanServiceInterface, validator StructValidator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ScanHandler {
	if service == nil {
		panic("scan handler requires a service")
	}
	return &ScanHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "scan_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the scan routes.
func (h *ScanHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/", h.StartScan)
	r.Get("/", h.ListScans)

	r.Route("/{id}", func(r chi.Router) {
		r.Use(h.ScanCtx)
		r.Get("/", h.GetScan)
		r.Get("/summary", h.GetSummary)
		r.Delete("/", h.CancelScan)
	})

	return r
}

// ScanCtx middleware validates the scan id URL parameter.
func (h *ScanHandler) ScanCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("id", "Scan id is required"))
			return
		}
		if _, err := uuid.Parse(id); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("id", "Scan id must be a UUID"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// StartScan handles POST /api/scans. The scan is queued and runs in
// the background; progress arrives over the WebSocket feed.
func (h *ScanHandler) StartScan(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var req api.ScanStartRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "starting scan",
		slog.String("request_id", reqID),
		slog.String("dataset_id", req.DatasetID),
	)

	scan, err := h.service.Start(r.Context(), req)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "scan start failed",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
			slog.String("dataset_id", req.DatasetID),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   scan,
	})
}

// ListScans handles GET /api/scans with paging and filters.
func (h *ScanHandler) ListScans(w http.ResponseWriter, r *http.Request) {
	req := api.ScanListRequest{}
	q := r.URL.Query()

	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("page", "Page must be a positive integer"))
			return
		}
		req.Page = page
	}
	if v := q.Get("page_size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size < 1 || size > 100 {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("page_size", "Page size must be between 1 and 100"))
			return
		}
		req.PageSize = size
	}
	if v := q.Get("dataset_id"); v != "" {
		if _, err := uuid.Parse(v); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("dataset_id", "Dataset id must be a UUID"))
			return
		}
		req.DatasetID = v
	}
	if v := q.Get("status"); v != "" {
		switch domain.ScanStatus(v) {
		case domain.ScanStatusPending, domain.ScanStatusRunning, domain.ScanStatusCompleted,
			domain.ScanStatusFailed, domain.ScanStatusCancelled:
			req.Status = v
		default:
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("status", "Status must be pending, running, completed, failed or cancelled"))
			return
		}
	}

	scans, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   scans,
		"count":  len(scans),
		"total":  total,
	})
}

// GetScan handles GET /api/scans/{id}.
func (h *ScanHandler) GetScan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	scan, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   scan,
	})
}

// GetSummary handles GET /api/scans/{id}/summary. Only completed
// scans carry a summary; earlier states answer 409.
func (h *ScanHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	summary, err := h.service.Summary(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrScanNotFinished) {
			h.errorHandler.HandleError(w, r, apierrors.New(
				http.StatusConflict,
				"CONFLICT",
				"Scan has not produced a summary yet",
			))
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   summary,
	})
}

// CancelScan handles DELETE /api/scans/{id}. Cancelling a scan that
// already reached a terminal state answers 409.
func (h *ScanHandler) CancelScan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	h.logger.InfoContext(r.Context(), "cancelling scan",
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.String("scan_id", id),
	)

	if err := h.service.Cancel(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrScanFinished) {
			h.errorHandler.HandleError(w, r, apierrors.New(
				http.StatusConflict,
				"CONFLICT",
				"Scan already reached a terminal state",
			))
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]string{
		"message": "Scan cancellation requested",
		"id":      id,
	})
}
